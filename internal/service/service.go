package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"offer-composer-api/internal/drafts"
	"offer-composer-api/internal/events"
	"offer-composer-api/internal/features"
	"offer-composer-api/internal/journal"
	"offer-composer-api/internal/lms"
	"offer-composer-api/internal/models"
	"offer-composer-api/internal/tracing"
	"offer-composer-api/internal/validation"
)

// Extractor turns free text into a partial offer record.
type Extractor interface {
	Extract(ctx context.Context, freeText string) (models.RawOfferRecord, error)
}

// Publisher submits a normalized record to the LMS.
type Publisher interface {
	Publish(ctx context.Context, rec models.OfferRecord) (json.RawMessage, error)
}

// Service orchestrates the extract -> review -> publish pipeline.
type Service struct {
	extractor Extractor
	publisher Publisher
	drafts    *drafts.Store
	journal   *journal.Journal // nil when the journal is disabled
	events    *events.Manager
	features  *features.Manager
}

// NewService creates a new service instance.
func NewService(extractor Extractor, publisher Publisher, draftStore *drafts.Store, jnl *journal.Journal, evts *events.Manager, flags *features.Manager) *Service {
	return &Service{
		extractor: extractor,
		publisher: publisher,
		drafts:    draftStore,
		journal:   jnl,
		events:    evts,
		features:  flags,
	}
}

// Defaults applied during normalization for fields the extraction left out.
const (
	defaultOfferType    = models.OfferCashback
	defaultValueType    = models.ValueFixed
	defaultDurationDays = 7
	defaultAudience     = "all"
	defaultOfferName    = "Special Offer"
)

// Normalize fills defaults for absent fields and enforces the record
// invariants. Percentages above 100 are clamped by default; the
// strict_percentage flag switches to rejection. Either way an out-of-range
// value never survives into a publishable record.
func (s *Service) Normalize(raw models.RawOfferRecord) (models.OfferRecord, error) {
	rec := models.OfferRecord{
		OfferType:      defaultOfferType,
		ValueType:      defaultValueType,
		DurationDays:   defaultDurationDays,
		Audience:       defaultAudience,
		OfferName:      defaultOfferName,
		MaxRedemptions: raw.MaxRedemptions,
		Conditions:     raw.Conditions,
	}
	if rec.Conditions == nil {
		rec.Conditions = []string{}
	}

	if raw.OfferType != nil {
		rec.OfferType = models.OfferType(*raw.OfferType)
	}
	if raw.ValueType != nil {
		rec.ValueType = models.ValueType(*raw.ValueType)
	}
	if raw.Value != nil {
		rec.Value = *raw.Value
	}
	if raw.MinSpend != nil {
		rec.MinSpend = *raw.MinSpend
	}
	if raw.DurationDays != nil {
		rec.DurationDays = *raw.DurationDays
	}
	if raw.Audience != nil {
		rec.Audience = *raw.Audience
	}
	if raw.OfferName != nil && *raw.OfferName != "" {
		rec.OfferName = *raw.OfferName
	}
	if raw.Description != nil {
		rec.Description = *raw.Description
	}

	if err := s.finishRecord(&rec); err != nil {
		return models.OfferRecord{}, err
	}

	return rec, nil
}

// finishRecord sanitizes, applies the percentage policy, and validates.
// Shared by extraction, operator edits, and direct publishes.
func (s *Service) finishRecord(rec *models.OfferRecord) error {
	validation.SanitizeRecord(rec)

	if rec.ValueType == models.ValuePercentage && rec.Value > 100 {
		if s.features.IsEnabled(features.FeatureStrictPercentage) {
			return &validation.ValidationError{
				Field:   "value",
				Message: "percentage must be between 0 and 100",
			}
		}
		rec.Value = 100
	}

	return validation.ValidateOfferRecord(*rec)
}

// ExtractOffer runs the extraction call, normalizes the result, and parks
// it as a draft for review.
func (s *Service) ExtractOffer(ctx context.Context, description string) (models.Draft, error) {
	ctx, span := tracing.GetTracer().StartSpan(ctx, "service.ExtractOffer")
	defer span.End()

	description = validation.SanitizeString(description)
	if description == "" {
		return models.Draft{}, &validation.ValidationError{
			Field:   "description",
			Message: "is required",
		}
	}

	raw, err := s.extractor.Extract(ctx, description)
	if err != nil {
		return models.Draft{}, fmt.Errorf("extraction failed: %w", err)
	}

	rec, err := s.Normalize(raw)
	if err != nil {
		return models.Draft{}, err
	}

	draft, err := s.drafts.Create(ctx, rec)
	if err != nil {
		return models.Draft{}, fmt.Errorf("failed to store draft: %w", err)
	}

	s.events.PublishOfferExtracted(ctx, draft.ID, rec)

	return draft, nil
}

// GetDraft returns a draft by id.
func (s *Service) GetDraft(ctx context.Context, id string) (models.Draft, error) {
	return s.drafts.Get(ctx, id)
}

// UpdateDraft applies an operator edit. The replacement record goes through
// the same sanitize/clamp/validate path as extracted ones.
func (s *Service) UpdateDraft(ctx context.Context, id string, rec models.OfferRecord) (models.Draft, error) {
	if err := s.finishRecord(&rec); err != nil {
		return models.Draft{}, err
	}

	return s.drafts.Update(ctx, id, rec)
}

// PublishDraft publishes a reviewed draft and removes it on success.
func (s *Service) PublishDraft(ctx context.Context, id string) (json.RawMessage, error) {
	draft, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	receipt, err := s.PublishRecord(ctx, draft.Record)
	if err != nil {
		return nil, err
	}

	if err := s.drafts.Delete(ctx, id); err != nil {
		log.Printf("failed to delete draft %s after publish: %v", id, err)
	}

	return receipt, nil
}

// PublishRecord validates and publishes a record, journaling the outcome.
func (s *Service) PublishRecord(ctx context.Context, rec models.OfferRecord) (json.RawMessage, error) {
	ctx, span := tracing.GetTracer().StartSpan(ctx, "service.PublishRecord")
	defer span.End()

	if err := s.finishRecord(&rec); err != nil {
		return nil, err
	}

	receipt, err := s.publisher.Publish(ctx, rec)

	outcome, detail := classifyOutcome(err)
	s.recordAttempt(rec, outcome, detail, receipt)
	s.events.PublishOfferPublished(ctx, rec, outcome, detail)

	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// ListPublishes returns recent journal entries, newest first.
func (s *Service) ListPublishes(limit int) ([]journal.Entry, error) {
	if s.journal == nil || !s.features.IsEnabled(features.FeatureJournalEnabled) {
		return []journal.Entry{}, nil
	}
	return s.journal.List(limit)
}

func (s *Service) recordAttempt(rec models.OfferRecord, outcome, detail string, receipt json.RawMessage) {
	if s.journal == nil || !s.features.IsEnabled(features.FeatureJournalEnabled) {
		return
	}

	entry := journal.Entry{
		OfferName: rec.OfferName,
		OfferType: string(rec.OfferType),
		Outcome:   outcome,
		Detail:    detail,
		Receipt:   string(receipt),
	}
	if _, err := s.journal.Record(entry); err != nil {
		log.Printf("failed to journal publish attempt: %v", err)
	}
}

func classifyOutcome(err error) (outcome, detail string) {
	if err == nil {
		return journal.OutcomePublished, ""
	}

	var authErr *lms.AuthError
	var rejectedErr *lms.RejectedError
	switch {
	case errors.Is(err, lms.ErrAuthRetryExhausted), errors.As(err, &authErr):
		return journal.OutcomeAuthError, err.Error()
	case errors.As(err, &rejectedErr):
		return journal.OutcomeRejected, err.Error()
	default:
		return journal.OutcomeTransport, err.Error()
	}
}
