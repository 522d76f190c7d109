package core

import (
	"errors"
	"fmt"
)

// Setting names as used by forms and the settings screen.
const (
	SettingNotifications    = "notifications"
	SettingDarkMode         = "darkMode"
	SettingCurrency         = "currency"
	SettingLanguage         = "language"
	SettingBudgetAlerts     = "budgetAlerts"
	SettingSavingsReminders = "savingsReminders"
)

var (
	ErrUnknownSetting = errors.New("unknown setting")
	ErrInvalidChoice  = errors.New("invalid choice")
)

// Language is a UI language code.
type Language string

// Languages lists the selectable UI languages in display order.
var Languages = []Language{"en", "es", "fr", "de", "zh"}

var languageNames = map[Language]string{
	"en": "English",
	"es": "Español",
	"fr": "Français",
	"de": "Deutsch",
	"zh": "中文",
}

func (l Language) Label() string {
	if n, ok := languageNames[l]; ok {
		return n
	}
	return string(l)
}

func (l Language) IsValid() bool {
	_, ok := languageNames[l]
	return ok
}

// Settings is session-local preference state.
type Settings struct {
	Notifications    bool
	DarkMode         bool
	Currency         Currency
	Language         Language
	BudgetAlerts     bool
	SavingsReminders bool
}

// DefaultSettings returns the preferences a new session starts with.
func DefaultSettings() Settings {
	return Settings{
		Notifications:    true,
		DarkMode:         false,
		Currency:         USD,
		Language:         "en",
		BudgetAlerts:     true,
		SavingsReminders: true,
	}
}

// Toggle flips a boolean setting.
func (s *Settings) Toggle(name string) error {
	switch name {
	case SettingNotifications:
		s.Notifications = !s.Notifications
	case SettingDarkMode:
		s.DarkMode = !s.DarkMode
	case SettingBudgetAlerts:
		s.BudgetAlerts = !s.BudgetAlerts
	case SettingSavingsReminders:
		s.SavingsReminders = !s.SavingsReminders
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSetting, name)
	}
	return nil
}

// Choose sets a multi-valued setting (currency or language).
func (s *Settings) Choose(name, value string) error {
	switch name {
	case SettingCurrency:
		c, err := ParseCurrency(value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidChoice, err)
		}
		s.Currency = c
	case SettingLanguage:
		l := Language(value)
		if !l.IsValid() {
			return fmt.Errorf("%w: unsupported language %q", ErrInvalidChoice, value)
		}
		s.Language = l
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSetting, name)
	}
	return nil
}

// IsChoice reports whether name is a multi-valued setting.
func IsChoice(name string) bool {
	return name == SettingCurrency || name == SettingLanguage
}
