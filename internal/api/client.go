package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"

	"github.com/kioskworks/kioskctl/internal/domain"
	"github.com/kioskworks/kioskctl/internal/observability"
)

// AccountService is the console's view of the remote account service. All
// mutations carry a client-generated idempotency key so a retried request
// is never applied twice.
type AccountService interface {
	GetSessionInfo(ctx context.Context) (*SessionInfo, error)
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	CreateUser(ctx context.Context, email string) (*domain.UserAccount, error)
	DeleteUser(ctx context.Context, userID uint64) error
	GetUserCapabilities(ctx context.Context, userID uint64) (domain.CapabilitySet, error)
	GrantCapabilities(ctx context.Context, userID uint64, caps []domain.Capability) error
	RevokeCapabilities(ctx context.Context, userID uint64, caps []domain.Capability) error
	EndSession(ctx context.Context) error
}

// SessionInfo is the identity payload returned for the current bearer.
type SessionInfo struct {
	UserID       uint64   `json:"user_id"`
	Capabilities []string `json:"capabilities"`
}

type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *wireError      `json:"error"`
}

// Client talks JSON over HTTP to the account service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, primarily for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger attaches a structured logger for request-level debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient builds a client authenticating with the given bearer token.
// The transport is OpenTelemetry-instrumented; spans are no-ops unless a
// tracer provider is installed.
func NewClient(baseURL, token string, timeout time.Duration, opts ...Option) *Client {
	base := otelhttp.NewTransport(http.DefaultTransport)
	var rt http.RoundTripper = base
	if token != "" {
		rt = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   base,
		}
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: rt, Timeout: timeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) GetSessionInfo(ctx context.Context) (*SessionInfo, error) {
	var info SessionInfo
	if err := c.call(ctx, http.MethodGet, "/api/v1/account/session", nil, &info); err != nil {
		return nil, err
	}
	if info.UserID == 0 {
		return nil, fmt.Errorf("api: malformed session info: missing user_id")
	}
	return &info, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	var users []domain.UserAccount
	if err := c.call(ctx, http.MethodGet, "/api/v1/account/users", nil, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == 0 {
			return nil, fmt.Errorf("api: malformed user list: entry without user_id")
		}
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, email string) (*domain.UserAccount, error) {
	body := map[string]string{"email": email}
	var user domain.UserAccount
	if err := c.call(ctx, http.MethodPost, "/api/v1/account/users", body, &user); err != nil {
		return nil, err
	}
	if user.ID == 0 || user.Email == "" {
		return nil, fmt.Errorf("api: malformed create response")
	}
	return &user, nil
}

func (c *Client) DeleteUser(ctx context.Context, userID uint64) error {
	path := fmt.Sprintf("/api/v1/account/users/%d", userID)
	return c.call(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) GetUserCapabilities(ctx context.Context, userID uint64) (domain.CapabilitySet, error) {
	path := fmt.Sprintf("/api/v1/account/users/%d/capabilities", userID)
	var caps []string
	if err := c.call(ctx, http.MethodGet, path, nil, &caps); err != nil {
		return nil, err
	}
	return domain.CapabilitiesFromStrings(caps), nil
}

func (c *Client) GrantCapabilities(ctx context.Context, userID uint64, caps []domain.Capability) error {
	path := fmt.Sprintf("/api/v1/account/users/%d/capabilities/grant", userID)
	return c.call(ctx, http.MethodPost, path, capabilityPayload(caps), nil)
}

func (c *Client) RevokeCapabilities(ctx context.Context, userID uint64, caps []domain.Capability) error {
	path := fmt.Sprintf("/api/v1/account/users/%d/capabilities/revoke", userID)
	return c.call(ctx, http.MethodPost, path, capabilityPayload(caps), nil)
}

func (c *Client) EndSession(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/api/v1/account/session/end", nil, nil)
}

func capabilityPayload(caps []domain.Capability) map[string][]string {
	out := make([]string, len(caps))
	for i, c := range caps {
		out[i] = string(c)
	}
	return map[string][]string{"capabilities": out}
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.RecordAPIRequestDuration(ctx, path, "transport_error", time.Since(start))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	observability.RecordAPIRequestDuration(ctx, path, strconv.Itoa(resp.StatusCode), time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("%s %s: malformed response (http %d): %w", method, path, resp.StatusCode, err)
		}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Debug("request rejected as unauthorized", "method", method, "path", path)
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	}
	if env.Error != nil {
		return &Error{Status: resp.StatusCode, Code: env.Error.Code, Message: env.Error.Message}
	}
	if resp.StatusCode >= 400 {
		return &Error{Status: resp.StatusCode, Code: "UNKNOWN", Message: http.StatusText(resp.StatusCode)}
	}

	if out != nil {
		if env.Data == nil {
			return fmt.Errorf("%s %s: response missing data", method, path)
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decode data: %w", method, path, err)
		}
	}
	return nil
}
