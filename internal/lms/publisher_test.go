package lms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"offer-composer-api/internal/models"
)

type lmsFixture struct {
	loginCalls   int32
	publishCalls int32
	publish      func(call int32, w http.ResponseWriter, r *http.Request)
}

// newLMSServer stands in for both the identity and offer endpoints.
func newLMSServer(t *testing.T, fx *lmsFixture) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			atomic.AddInt32(&fx.loginCalls, 1)
			w.Write([]byte(`{"authToken": "auth-1", "permissionToken": "perm-1"}`))
		case "/offer/show-and-save":
			call := atomic.AddInt32(&fx.publishCalls, 1)
			fx.publish(call, w, r)
		default:
			t.Errorf("Unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestPublisher(serverURL string) *Publisher {
	auth := NewAuthManager(AuthConfig{
		BaseURL:  serverURL,
		Email:    "merchant@example.com",
		Password: "secret",
		App:      "merchant-portal",
	})
	return NewPublisher(auth, PublisherConfig{
		BaseURL:   serverURL,
		Constants: testConstants,
	})
}

func publishableRecord() models.OfferRecord {
	return models.OfferRecord{
		OfferType:    models.OfferCashback,
		ValueType:    models.ValueFixed,
		Value:        20,
		MinSpend:     500,
		DurationDays: 7,
		OfferName:    "Big Spender Bonus",
	}
}

func TestPublish_Success(t *testing.T) {
	fx := &lmsFixture{
		publish: func(call int32, w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer auth-1" {
				t.Errorf("Expected bearer auth token, got %q", r.Header.Get("Authorization"))
			}
			if r.Header.Get("X-Permission-Token") != "perm-1" {
				t.Errorf("Expected permission token header, got %q", r.Header.Get("X-Permission-Token"))
			}
			if r.Header.Get("X-Client-ID") != "client-7" {
				t.Errorf("Expected client id header, got %q", r.Header.Get("X-Client-ID"))
			}
			w.Write([]byte(`{"offer_id": "lms-123", "status": "created"}`))
		},
	}
	server := newLMSServer(t, fx)
	defer server.Close()

	p := newTestPublisher(server.URL)

	receipt, err := p.Publish(context.Background(), publishableRecord())
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if string(receipt) != `{"offer_id": "lms-123", "status": "created"}` {
		t.Errorf("Expected opaque receipt passed through, got %s", receipt)
	}
	if fx.publishCalls != 1 {
		t.Errorf("Expected 1 publish call, got %d", fx.publishCalls)
	}
}

func TestPublish_RetriesOnceAfter401(t *testing.T) {
	fx := &lmsFixture{
		publish: func(call int32, w http.ResponseWriter, r *http.Request) {
			if call == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": "token expired"}`))
				return
			}
			w.Write([]byte(`{"offer_id": "lms-456"}`))
		},
	}
	server := newLMSServer(t, fx)
	defer server.Close()

	p := newTestPublisher(server.URL)

	receipt, err := p.Publish(context.Background(), publishableRecord())
	if err != nil {
		t.Fatalf("Publish failed after retry: %v", err)
	}
	if string(receipt) != `{"offer_id": "lms-456"}` {
		t.Errorf("Unexpected receipt: %s", receipt)
	}

	if fx.publishCalls != 2 {
		t.Errorf("Expected exactly 2 publish calls (original + retry), got %d", fx.publishCalls)
	}
	// one login for the initial session, one for the re-authentication
	if fx.loginCalls != 2 {
		t.Errorf("Expected exactly 2 login calls, got %d", fx.loginCalls)
	}
}

func TestPublish_AuthRetryExhausted(t *testing.T) {
	fx := &lmsFixture{
		publish: func(call int32, w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error": "still forbidden"}`))
		},
	}
	server := newLMSServer(t, fx)
	defer server.Close()

	p := newTestPublisher(server.URL)

	_, err := p.Publish(context.Background(), publishableRecord())
	if !errors.Is(err, ErrAuthRetryExhausted) {
		t.Fatalf("Expected ErrAuthRetryExhausted, got %v", err)
	}

	// never more than two attempts total
	if fx.publishCalls != 2 {
		t.Errorf("Expected exactly 2 publish calls, got %d", fx.publishCalls)
	}
}

func TestPublish_Rejected(t *testing.T) {
	fx := &lmsFixture{
		publish: func(call int32, w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"error": "invalid reward_type"}`))
		},
	}
	server := newLMSServer(t, fx)
	defer server.Close()

	p := newTestPublisher(server.URL)

	_, err := p.Publish(context.Background(), publishableRecord())
	var rejected *RejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("Expected RejectedError, got %v", err)
	}
	if rejected.Status != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", rejected.Status)
	}
	if fx.publishCalls != 1 {
		t.Errorf("Expected 1 publish call, got %d", fx.publishCalls)
	}
}

func TestPublish_AuthFailureSkipsOfferPost(t *testing.T) {
	var publishCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": "identity down"}`))
		case "/offer/show-and-save":
			atomic.AddInt32(&publishCalls, 1)
		}
	}))
	defer server.Close()

	p := newTestPublisher(server.URL)

	_, err := p.Publish(context.Background(), publishableRecord())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Expected AuthError, got %v", err)
	}
	if publishCalls != 0 {
		t.Errorf("Expected no offer POST when authentication fails, got %d", publishCalls)
	}
}

func TestPublish_PayloadDatesUseCurrentTime(t *testing.T) {
	fixed := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)

	fx := &lmsFixture{
		publish: func(call int32, w http.ResponseWriter, r *http.Request) {
			var payload PublishPayload
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Errorf("Failed to decode payload: %v", err)
			}
			if payload.AddRules.StartDate != "2026-08-24 00:00:00" {
				t.Errorf("Expected start date from publish time, got %s", payload.AddRules.StartDate)
			}
			if payload.AddRules.EndDate != "2026-08-31 23:59:59" {
				t.Errorf("Expected end date 7 days out, got %s", payload.AddRules.EndDate)
			}
			w.Write([]byte(`{}`))
		},
	}
	server := newLMSServer(t, fx)
	defer server.Close()

	p := newTestPublisher(server.URL)
	p.now = func() time.Time { return fixed }

	if _, err := p.Publish(context.Background(), publishableRecord()); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
}
