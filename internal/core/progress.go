package core

import (
	"math"

	"github.com/shopspring/decimal"
)

// Tier is the severity band of a progress percentage.
type Tier int

const (
	TierNormal Tier = iota
	TierWarning
	TierCritical
)

const (
	warningThreshold  = 75.0
	criticalThreshold = 90.0
)

var hundred = decimal.NewFromInt(100)

// Percentage returns consumed/total*100, unclamped.
//
// A zero total never panics: it yields +Inf or -Inf by the sign of consumed,
// and NaN when consumed is zero as well.
func Percentage(consumed, total Money) float64 {
	if total.IsZero() {
		switch consumed.Sign() {
		case 1:
			return math.Inf(1)
		case -1:
			return math.Inf(-1)
		default:
			return math.NaN()
		}
	}
	return consumed.Div(total.Decimal).Mul(hundred).InexactFloat64()
}

// TierOf maps a percentage to its band: above 90 is critical, above 75 is
// warning, everything else (including NaN) is normal.
func TierOf(pct float64) Tier {
	switch {
	case pct > criticalThreshold:
		return TierCritical
	case pct > warningThreshold:
		return TierWarning
	default:
		return TierNormal
	}
}

func (t Tier) String() string {
	switch t {
	case TierCritical:
		return "critical"
	case TierWarning:
		return "warning"
	default:
		return "normal"
	}
}

// Color is the progress-bar colour of the tier.
func (t Tier) Color() string {
	switch t {
	case TierCritical:
		return "#f44336"
	case TierWarning:
		return "#ff9800"
	default:
		return "#4caf50"
	}
}

// Clamp bounds pct to [0, 100] for progress-bar widths. Reported
// percentages stay unclamped.
func Clamp(pct float64) float64 {
	switch {
	case math.IsNaN(pct), pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}

// RoundPercent rounds half away from zero for labels such as
// "48% of goal achieved". Non-finite input returns 0 and false.
func RoundPercent(pct float64) (int, bool) {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0, false
	}
	return int(math.Round(pct)), true
}
