package core

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency is an ISO 4217 code supported by the settings screen.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	JPY Currency = "JPY"
	INR Currency = "INR"
)

var currencySymbols = map[Currency]string{
	USD: "$",
	EUR: "€",
	GBP: "£",
	JPY: "¥",
	INR: "₹",
}

// Currencies lists the supported codes in display order.
var Currencies = []Currency{USD, EUR, GBP, JPY, INR}

// Symbol returns the display symbol, or the code itself when unknown.
func (c Currency) Symbol() string {
	if s, ok := currencySymbols[c]; ok {
		return s
	}
	return string(c)
}

func (c Currency) IsValid() bool {
	_, ok := currencySymbols[c]
	return ok
}

// Label is the settings dropdown text, e.g. "USD ($)".
func (c Currency) Label() string {
	return fmt.Sprintf("%s (%s)", c, c.Symbol())
}

// ParseCurrency normalises a currency code.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("unsupported currency %q", s)
	}
	return c, nil
}

// CurrencyFormatter renders amounts as <symbol><grouped integer>.<2 digits>.
// It holds no mutable state and is safe for concurrent use.
type CurrencyFormatter struct {
	currency Currency
	tag      language.Tag
	places   int
	symbols  localeSymbols
}

// localeSymbols is the digit shaping of a locale as rendered by x/text.
type localeSymbols struct {
	digits    [10]string
	decimal   string
	group     string
	primary   int // size of the rightmost integer group, 0 for no grouping
	secondary int // size of the groups left of it
}

// NewCurrencyFormatter builds a formatter for currency using the digit
// grouping of locale (a BCP 47 tag such as "en-IN").
func NewCurrencyFormatter(currency Currency, locale string) (*CurrencyFormatter, error) {
	if !currency.IsValid() {
		return nil, fmt.Errorf("unsupported currency %q", currency)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return &CurrencyFormatter{
		currency: currency,
		tag:      tag,
		places:   2,
		symbols:  symbolsFor(message.NewPrinter(tag)),
	}, nil
}

// DefaultFormatter formats Indian rupees with en-IN grouping.
func DefaultFormatter() *CurrencyFormatter {
	f, err := NewCurrencyFormatter(INR, "en-IN")
	if err != nil {
		panic(err)
	}
	return f
}

// Currency returns the configured currency.
func (f *CurrencyFormatter) Currency() Currency {
	return f.currency
}

// Locale returns the configured locale tag.
func (f *CurrencyFormatter) Locale() string {
	return f.tag.String()
}

// Format renders m. Negative amounts render as -<symbol><digits>.
// Digits come from the exact decimal, never from a float.
func (f *CurrencyFormatter) Format(m Money) string {
	rounded := m.Round(int32(f.places))
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	intPart, fracPart, _ := strings.Cut(rounded.StringFixed(int32(f.places)), ".")

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString(f.currency.Symbol())
	f.symbols.writeGrouped(&b, intPart)
	if fracPart != "" {
		b.WriteString(f.symbols.decimal)
		f.symbols.writeDigits(&b, fracPart)
	}
	return b.String()
}

// symbolsFor derives separators, group sizes and digit glyphs by rendering
// sample numbers with p.
func symbolsFor(p *message.Printer) localeSymbols {
	var ls localeSymbols
	for i := range ls.digits {
		ls.digits[i] = p.Sprintf("%v", number.Decimal(i))
	}

	// 1234567890.5 has enough integer digits to expose both group sizes.
	var runs, seps []string
	var cur, sep strings.Builder
	for _, r := range p.Sprintf("%v", number.Decimal(1234567890.5, number.Scale(1))) {
		if !unicode.IsDigit(r) {
			if cur.Len() > 0 {
				runs = append(runs, cur.String())
				cur.Reset()
			}
			sep.WriteRune(r)
			continue
		}
		if sep.Len() > 0 && len(runs) > 0 {
			seps = append(seps, sep.String())
		}
		sep.Reset()
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		runs = append(runs, cur.String())
	}

	ls.decimal = "."
	if len(runs) < 2 || len(seps) != len(runs)-1 {
		return ls
	}
	ls.decimal = seps[len(seps)-1]
	groups := runs[:len(runs)-1]
	if len(groups) < 2 {
		return ls
	}
	ls.group = seps[0]
	ls.primary = len([]rune(groups[len(groups)-1]))
	ls.secondary = ls.primary
	if len(groups) >= 3 {
		ls.secondary = len([]rune(groups[len(groups)-2]))
	}
	return ls
}

func (ls localeSymbols) writeDigits(b *strings.Builder, ascii string) {
	for i := 0; i < len(ascii); i++ {
		b.WriteString(ls.digits[ascii[i]-'0'])
	}
}

// writeGrouped writes the ASCII integer digits with the locale's grouping.
func (ls localeSymbols) writeGrouped(b *strings.Builder, ascii string) {
	if ls.primary <= 0 || len(ascii) <= ls.primary {
		ls.writeDigits(b, ascii)
		return
	}
	head := ascii[:len(ascii)-ls.primary]
	tail := ascii[len(ascii)-ls.primary:]

	var chunks []string
	for len(head) > ls.secondary {
		chunks = append(chunks, head[len(head)-ls.secondary:])
		head = head[:len(head)-ls.secondary]
	}
	ls.writeDigits(b, head)
	for i := len(chunks) - 1; i >= 0; i-- {
		b.WriteString(ls.group)
		ls.writeDigits(b, chunks[i])
	}
	b.WriteString(ls.group)
	ls.writeDigits(b, tail)
}

// FormatFloat renders a float amount, as used by chart series.
// Non-finite values render as "n/a".
func (f *CurrencyFormatter) FormatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return f.Format(NewMoney(v))
}
