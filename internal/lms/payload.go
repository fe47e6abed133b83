package lms

import (
	"fmt"
	"strings"
	"time"

	"offer-composer-api/internal/models"
)

// Fixed wire constants for the offer endpoint.
const (
	redemptionMechanism = "QR_CODE"
	codeApplicability   = "SINGLE_USAGE"
	defaultRewardLimit  = 100
	contentLanguage     = "en"
)

// Constants are the deployment-fixed identifiers carried on every payload.
// All come from configuration.
type Constants struct {
	MerchantID string
	ClientID   string
	Timezone   string
}

// PublishPayload is the offer endpoint's nested body. Built fresh from an
// OfferRecord on every publish, never persisted, never mutated after
// construction.
type PublishPayload struct {
	MerchantID string    `json:"merchant_id"`
	ClientID   string    `json:"client_id"`
	Rules      Rules     `json:"rules"`
	AddRules   AddRules  `json:"addRules"`
	Content    []Content `json:"content"`
}

type Rules struct {
	RewardType          string `json:"reward_type"`
	RedemptionMechanism string `json:"redemption_mechanism"`
	CodeApplicability   string `json:"code_applicability"`
	RewardLimit         int    `json:"reward_limit"`
}

type AddRules struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Timezone  string `json:"timezone"`
}

type Content struct {
	Language         string `json:"language"`
	OfferTitle       string `json:"offer_title"`
	OfferDescription string `json:"offer_description"`
	OfferTermsCon    string `json:"offer_terms_con"`
}

// BuildPayload maps a normalized record into the offer endpoint's schema.
// Pure: dates derive from now, everything else from the record and the
// configured constants.
func BuildPayload(rec models.OfferRecord, consts Constants, now time.Time) PublishPayload {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	end := time.Date(y, m, d, 23, 59, 59, 0, now.Location()).AddDate(0, 0, rec.DurationDays)

	limit := defaultRewardLimit
	if rec.MaxRedemptions != nil {
		limit = *rec.MaxRedemptions
	}

	return PublishPayload{
		MerchantID: consts.MerchantID,
		ClientID:   consts.ClientID,
		Rules: Rules{
			RewardType:          rewardType(rec.OfferType),
			RedemptionMechanism: redemptionMechanism,
			CodeApplicability:   codeApplicability,
			RewardLimit:         limit,
		},
		AddRules: AddRules{
			StartDate: start.Format(models.DateLayout),
			EndDate:   end.Format(models.DateLayout),
			Timezone:  consts.Timezone,
		},
		Content: []Content{
			{
				Language:         contentLanguage,
				OfferTitle:       rec.OfferName,
				OfferDescription: offerDescription(rec),
				OfferTermsCon:    offerTerms(rec),
			},
		},
	}
}

// rewardType maps the offer type onto the upstream enum. free_shipping has
// no distinct upstream value and falls through to DISCOUNT; unresolved with
// the API owner.
func rewardType(t models.OfferType) string {
	if t == models.OfferCashback {
		return "CASHBACK"
	}
	return "DISCOUNT"
}

func offerDescription(rec models.OfferRecord) string {
	var benefit string
	switch rec.OfferType {
	case models.OfferCashback:
		benefit = rec.ValueDisplay() + " cashback"
	case models.OfferFreeShipping:
		benefit = "free shipping"
	default:
		benefit = rec.ValueDisplay() + " discount"
	}

	if rec.MinSpend > 0 {
		return fmt.Sprintf("Get %s on purchases over %s.", benefit, models.FormatCurrency(rec.MinSpend))
	}
	return fmt.Sprintf("Get %s on any purchase.", benefit)
}

func offerTerms(rec models.OfferRecord) string {
	lines := []string{
		fmt.Sprintf("- Valid for %d days from the start date", rec.DurationDays),
	}
	if rec.MinSpend > 0 {
		lines = append(lines, "- Minimum spend of "+models.FormatCurrency(rec.MinSpend))
	}
	if rec.MaxRedemptions != nil {
		lines = append(lines, fmt.Sprintf("- Limited to the first %d redemptions", *rec.MaxRedemptions))
	}
	for _, c := range rec.Conditions {
		if c != "" {
			lines = append(lines, "- "+c)
		}
	}
	return strings.Join(lines, "\n")
}
