package models

import (
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the fixed date-time pattern used on every display and wire
// boundary. No locale variation.
const DateLayout = "2006-01-02 15:04:05"

// FormatCurrency renders a bare amount for display. Pure; the stored value
// is never touched.
func FormatCurrency(n float64) string {
	return fmt.Sprintf("$%.2f", n)
}

// FormatPercent renders a percentage without trailing zeros.
func FormatPercent(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64) + "%"
}

// ValueDisplay renders the offer value according to its value type.
func (r OfferRecord) ValueDisplay() string {
	if r.ValueType == ValuePercentage {
		return FormatPercent(r.Value)
	}
	return FormatCurrency(r.Value)
}

// Preview builds the display-only view of the record. end_date is derived
// from now on every call.
func (r OfferRecord) Preview(now time.Time) OfferPreview {
	return OfferPreview{
		EndDate:         r.EndDate(now).Format(DateLayout),
		ValueDisplay:    r.ValueDisplay(),
		MinSpendDisplay: FormatCurrency(r.MinSpend),
	}
}
