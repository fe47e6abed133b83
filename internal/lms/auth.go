package lms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"offer-composer-api/internal/models"
)

// AuthConfig holds the identity endpoint settings.
type AuthConfig struct {
	BaseURL  string
	Email    string
	Password string
	App      string
	Timeout  time.Duration
}

// AuthManager owns the process-wide LMS session. Two states: no session
// (next ValidSession call authenticates) and cached session (returned as
// is). Sessions are never expired by wall clock; the publisher invalidates
// on 401/403 and the next call re-authenticates. The mutex guarantees at
// most one in-flight authentication; concurrent publishers serialize here.
type AuthManager struct {
	mu         sync.Mutex
	session    *models.AuthSession
	httpClient *http.Client
	baseURL    string
	email      string
	password   string
	app        string
}

// NewAuthManager creates an auth manager in the unauthenticated state.
func NewAuthManager(cfg AuthConfig) *AuthManager {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &AuthManager{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		email:      cfg.Email,
		password:   cfg.Password,
		app:        cfg.App,
	}
}

// ValidSession returns the cached session, or performs exactly one
// authentication call if none is cached.
func (m *AuthManager) ValidSession(ctx context.Context) (models.AuthSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		return *m.session, nil
	}

	session, err := m.authenticate(ctx)
	if err != nil {
		return models.AuthSession{}, err
	}

	m.session = session
	return *session, nil
}

// Invalidate drops the cached session. Called when a downstream call using
// its tokens answers 401/403.
func (m *AuthManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	App      string `json:"app"`
}

// loginResponse tolerates both observed nestings of the token fields:
// top level or inside a "data" envelope.
type loginResponse struct {
	AuthToken       string `json:"authToken"`
	PermissionToken string `json:"permissionToken"`
	Data            struct {
		AuthToken       string `json:"authToken"`
		PermissionToken string `json:"permissionToken"`
	} `json:"data"`
}

func (r loginResponse) tokens() (auth, permission string) {
	auth, permission = r.AuthToken, r.PermissionToken
	if auth == "" {
		auth = r.Data.AuthToken
	}
	if permission == "" {
		permission = r.Data.PermissionToken
	}
	return auth, permission
}

// authenticate performs a single POST to the identity endpoint. Success
// requires HTTP 200 and both token fields present; anything else is an
// AuthError with the response body retained.
func (m *AuthManager) authenticate(ctx context.Context) (*models.AuthSession, error) {
	jsonData, err := json.Marshal(loginRequest{
		Email:    m.email,
		Password: m.password,
		App:      m.app,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/auth/login", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read login response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &AuthError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var loginResp loginResponse
	if err := json.Unmarshal(body, &loginResp); err != nil {
		return nil, &AuthError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	authToken, permissionToken := loginResp.tokens()
	if authToken == "" || permissionToken == "" {
		return nil, &AuthError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return &models.AuthSession{
		AuthToken:       authToken,
		PermissionToken: permissionToken,
		IssuedAt:        time.Now().UTC(),
	}, nil
}
