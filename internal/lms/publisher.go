package lms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"offer-composer-api/internal/models"
)

// PublisherConfig holds the offer endpoint settings.
type PublisherConfig struct {
	BaseURL   string
	Constants Constants
	Timeout   time.Duration
}

// Publisher performs the authenticated offer POST. At most two attempts
// per Publish call: the original, and one retry after a re-authentication
// triggered by a 401/403.
type Publisher struct {
	auth       *AuthManager
	httpClient *http.Client
	baseURL    string
	consts     Constants
	now        func() time.Time
}

// NewPublisher creates a publisher backed by the given auth manager.
func NewPublisher(auth *AuthManager, cfg PublisherConfig) *Publisher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Publisher{
		auth:       auth,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		consts:     cfg.Constants,
		now:        time.Now,
	}
}

// Publish builds the payload and posts it to the offer endpoint. On 200
// the opaque response body is returned unmodified. On 401/403 the session
// is invalidated and the call is retried exactly once with a fresh one.
func (p *Publisher) Publish(ctx context.Context, rec models.OfferRecord) (json.RawMessage, error) {
	session, err := p.auth.ValidSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	payload := BuildPayload(rec, p.consts, p.now())

	status, body, err := p.post(ctx, session, payload)
	if err != nil {
		return nil, fmt.Errorf("publish transport error: %w", err)
	}

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		p.auth.Invalidate()

		session, err = p.auth.ValidSession(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: re-authentication failed: %v", ErrAuthRetryExhausted, err)
		}

		status, body, err = p.post(ctx, session, payload)
		if err != nil {
			return nil, fmt.Errorf("publish transport error on retry: %w", err)
		}
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return nil, fmt.Errorf("%w: status %d: %s", ErrAuthRetryExhausted, status, body)
		}
	}

	if status < 200 || status >= 300 {
		return nil, &RejectedError{Status: status, Body: body}
	}

	return json.RawMessage(body), nil
}

func (p *Publisher) post(ctx context.Context, session models.AuthSession, payload PublishPayload) (int, string, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return 0, "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/offer/show-and-save", bytes.NewReader(jsonData))
	if err != nil {
		return 0, "", fmt.Errorf("failed to create publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-ID", p.consts.ClientID)
	req.Header.Set("X-Permission-Token", session.PermissionToken)
	req.Header.Set("Authorization", "Bearer "+session.AuthToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read publish response: %w", err)
	}

	return resp.StatusCode, strings.TrimSpace(string(body)), nil
}
