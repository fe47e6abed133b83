package validation

import (
	"fmt"
	"strings"
	"unicode"

	"offer-composer-api/internal/models"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ValidateOfferRecord checks a fully-normalized record. Out-of-range values
// must never survive past this point into the publish payload.
func ValidateOfferRecord(rec models.OfferRecord) error {
	switch rec.OfferType {
	case models.OfferCashback, models.OfferDiscount, models.OfferFreeShipping:
	default:
		return &ValidationError{
			Field:   "offer_type",
			Message: "must be one of cashback, discount, free_shipping",
		}
	}

	switch rec.ValueType {
	case models.ValuePercentage, models.ValueFixed:
	default:
		return &ValidationError{
			Field:   "value_type",
			Message: "must be one of percentage, fixed",
		}
	}

	if rec.Value < 0 {
		return &ValidationError{
			Field:   "value",
			Message: "must be non-negative",
		}
	}

	if rec.ValueType == models.ValuePercentage && rec.Value > 100 {
		return &ValidationError{
			Field:   "value",
			Message: "percentage must be between 0 and 100",
		}
	}

	if rec.MinSpend < 0 {
		return &ValidationError{
			Field:   "min_spend",
			Message: "must be non-negative",
		}
	}

	if rec.DurationDays <= 0 {
		return &ValidationError{
			Field:   "duration_days",
			Message: "must be positive",
		}
	}

	if rec.DurationDays > 365 {
		return &ValidationError{
			Field:   "duration_days",
			Message: "cannot exceed 365 days",
		}
	}

	if strings.TrimSpace(rec.OfferName) == "" {
		return &ValidationError{
			Field:   "offer_name",
			Message: "is required",
		}
	}

	if rec.MaxRedemptions != nil && *rec.MaxRedemptions <= 0 {
		return &ValidationError{
			Field:   "max_redemptions",
			Message: "must be positive when set",
		}
	}

	if len(rec.Conditions) > 50 {
		return &ValidationError{
			Field:   "conditions",
			Message: "cannot contain more than 50 entries",
		}
	}

	return nil
}

// SanitizeString strips control characters and trims whitespace.
func SanitizeString(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)

	return strings.TrimSpace(s)
}

// SanitizeRecord sanitizes all free-text fields of a record in place.
func SanitizeRecord(rec *models.OfferRecord) {
	rec.Audience = SanitizeString(rec.Audience)
	rec.OfferName = SanitizeString(rec.OfferName)
	rec.Description = SanitizeString(rec.Description)
	for i := range rec.Conditions {
		rec.Conditions[i] = SanitizeString(rec.Conditions[i])
	}
}
