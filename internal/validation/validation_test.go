package validation

import (
	"testing"

	"offer-composer-api/internal/models"
)

func validRecord() models.OfferRecord {
	return models.OfferRecord{
		OfferType:    models.OfferCashback,
		ValueType:    models.ValueFixed,
		Value:        20,
		MinSpend:     500,
		DurationDays: 7,
		Audience:     "all",
		OfferName:    "Big Spender Bonus",
	}
}

func TestValidateOfferRecord_Valid(t *testing.T) {
	if err := ValidateOfferRecord(validRecord()); err != nil {
		t.Errorf("Expected valid record to pass, got %v", err)
	}
}

func TestValidateOfferRecord_Invalid(t *testing.T) {
	zero := 0

	cases := []struct {
		name      string
		mutate    func(*models.OfferRecord)
		wantField string
	}{
		{"unknown offer type", func(r *models.OfferRecord) { r.OfferType = "mystery" }, "offer_type"},
		{"unknown value type", func(r *models.OfferRecord) { r.ValueType = "points" }, "value_type"},
		{"negative value", func(r *models.OfferRecord) { r.Value = -5 }, "value"},
		{"percentage over 100", func(r *models.OfferRecord) {
			r.ValueType = models.ValuePercentage
			r.Value = 150
		}, "value"},
		{"negative min spend", func(r *models.OfferRecord) { r.MinSpend = -1 }, "min_spend"},
		{"zero duration", func(r *models.OfferRecord) { r.DurationDays = 0 }, "duration_days"},
		{"duration over a year", func(r *models.OfferRecord) { r.DurationDays = 400 }, "duration_days"},
		{"blank name", func(r *models.OfferRecord) { r.OfferName = "   " }, "offer_name"},
		{"zero max redemptions", func(r *models.OfferRecord) { r.MaxRedemptions = &zero }, "max_redemptions"},
	}

	for _, tc := range cases {
		rec := validRecord()
		tc.mutate(&rec)

		err := ValidateOfferRecord(rec)
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		validationErr, ok := err.(*ValidationError)
		if !ok {
			t.Errorf("%s: expected *ValidationError, got %T", tc.name, err)
			continue
		}
		if validationErr.Field != tc.wantField {
			t.Errorf("%s: expected field %s, got %s", tc.name, tc.wantField, validationErr.Field)
		}
	}
}

func TestValidateOfferRecord_PercentageBoundary(t *testing.T) {
	rec := validRecord()
	rec.ValueType = models.ValuePercentage
	rec.Value = 100

	if err := ValidateOfferRecord(rec); err != nil {
		t.Errorf("Expected 100%% to be valid, got %v", err)
	}
}

func TestValidateOfferRecord_TooManyConditions(t *testing.T) {
	rec := validRecord()
	for i := 0; i < 51; i++ {
		rec.Conditions = append(rec.Conditions, "a condition")
	}

	err := ValidateOfferRecord(rec)
	validationErr, ok := err.(*ValidationError)
	if !ok || validationErr.Field != "conditions" {
		t.Errorf("Expected conditions error, got %v", err)
	}
}

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  hello  ", "hello"},
		{"hello\x00world", "helloworld"},
		{"line1\nline2", "line1\nline2"},
		{"tab\tkept", "tab\tkept"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := SanitizeString(tc.in); got != tc.want {
			t.Errorf("SanitizeString(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeRecord(t *testing.T) {
	rec := models.OfferRecord{
		Audience:    "  vip  ",
		OfferName:   "\x00Special",
		Description: "  get cash back  ",
		Conditions:  []string{"  in store only  "},
	}

	SanitizeRecord(&rec)

	if rec.Audience != "vip" {
		t.Errorf("Unexpected audience: %q", rec.Audience)
	}
	if rec.OfferName != "Special" {
		t.Errorf("Unexpected offer name: %q", rec.OfferName)
	}
	if rec.Description != "get cash back" {
		t.Errorf("Unexpected description: %q", rec.Description)
	}
	if rec.Conditions[0] != "in store only" {
		t.Errorf("Unexpected condition: %q", rec.Conditions[0])
	}
}
