package models

import "time"

// OfferType classifies a merchant promotion.
type OfferType string

const (
	OfferCashback     OfferType = "cashback"
	OfferDiscount     OfferType = "discount"
	OfferFreeShipping OfferType = "free_shipping"
)

// ValueType says how Value is interpreted.
type ValueType string

const (
	ValuePercentage ValueType = "percentage"
	ValueFixed      ValueType = "fixed"
)

// OfferRecord is the structured offer produced by extraction, edited by the
// operator, and consumed by publishing. Value and MinSpend are bare numbers;
// currency symbols are applied only at display boundaries.
type OfferRecord struct {
	OfferType      OfferType `json:"offer_type"`
	ValueType      ValueType `json:"value_type"`
	Value          float64   `json:"value"`
	MinSpend       float64   `json:"min_spend"`
	DurationDays   int       `json:"duration_days"`
	Audience       string    `json:"audience"`
	OfferName      string    `json:"offer_name"`
	MaxRedemptions *int      `json:"max_redemptions,omitempty"` // nil = unlimited
	Conditions     []string  `json:"conditions"`
	Description    string    `json:"description"`
}

// EndDate derives the offer end date from now. Recomputed on every call,
// never stored on the record.
func (r OfferRecord) EndDate(now time.Time) time.Time {
	return now.AddDate(0, 0, r.DurationDays)
}

// RawOfferRecord is the partially-filled record as parsed from the
// text-generation reply. Pointer fields distinguish "absent" from zero so
// normalization can apply defaults.
type RawOfferRecord struct {
	OfferType      *string  `json:"offer_type"`
	ValueType      *string  `json:"value_type"`
	Value          *float64 `json:"value"`
	MinSpend       *float64 `json:"min_spend"`
	DurationDays   *int     `json:"duration_days"`
	Audience       *string  `json:"audience"`
	OfferName      *string  `json:"offer_name"`
	MaxRedemptions *int     `json:"max_redemptions"`
	Conditions     []string `json:"conditions"`
	Description    *string  `json:"description"`
}

// OfferPreview carries display-only derived values. Formatting here never
// feeds back into the stored record.
type OfferPreview struct {
	EndDate         string `json:"end_date"`
	ValueDisplay    string `json:"value_display"`
	MinSpendDisplay string `json:"min_spend_display"`
}

// Draft is an offer record parked between extraction and publish while the
// operator reviews it.
type Draft struct {
	ID        string      `json:"id"`
	Record    OfferRecord `json:"record"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// AuthSession is the token pair returned by the LMS identity endpoint.
// Validity is reactive: a session is trusted until a downstream call
// answers 401/403. No expiry information is available from the endpoint.
type AuthSession struct {
	AuthToken       string
	PermissionToken string
	IssuedAt        time.Time
}

// ExtractRequest is the body of POST /offers/extract.
type ExtractRequest struct {
	Description string `json:"description"`
}

// DraftResponse is returned by the extract and draft endpoints.
type DraftResponse struct {
	DraftID   string       `json:"draft_id"`
	Record    OfferRecord  `json:"record"`
	Preview   OfferPreview `json:"preview"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// UpdateDraftRequest is the body of PUT /offers/drafts/{draft_id}.
type UpdateDraftRequest struct {
	Record OfferRecord `json:"record"`
}

// PublishRequest is the body of POST /offers/publish.
type PublishRequest struct {
	Record OfferRecord `json:"record"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
