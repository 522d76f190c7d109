package core

import (
	"errors"
	"testing"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if !s.Notifications || s.DarkMode || s.Currency != USD || s.Language != "en" || !s.BudgetAlerts || !s.SavingsReminders {
		t.Fatalf("unexpected defaults %+v", s)
	}
}

func TestSettingsToggle(t *testing.T) {
	s := DefaultSettings()
	if err := s.Toggle(SettingDarkMode); err != nil {
		t.Fatal(err)
	}
	if !s.DarkMode {
		t.Fatal("darkMode should be on")
	}
	if err := s.Toggle(SettingCurrency); !errors.Is(err, ErrUnknownSetting) {
		t.Fatalf("currency is not a toggle, got %v", err)
	}
}

func TestSettingsChoose(t *testing.T) {
	s := DefaultSettings()
	if err := s.Choose(SettingCurrency, "INR"); err != nil || s.Currency != INR {
		t.Fatalf("choose currency: %v %v", err, s.Currency)
	}
	if err := s.Choose(SettingLanguage, "de"); err != nil || s.Language != "de" {
		t.Fatalf("choose language: %v %v", err, s.Language)
	}
	if err := s.Choose(SettingLanguage, "it"); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("got %v", err)
	}
	if err := s.Choose(SettingDarkMode, "true"); !errors.Is(err, ErrUnknownSetting) {
		t.Fatalf("got %v", err)
	}
}
