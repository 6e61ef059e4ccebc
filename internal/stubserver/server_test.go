package stubserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kioskworks/kioskctl/internal/domain"
)

func newTestServer(t *testing.T) (*httptest.Server, *Store, *TokenManager, *Account) {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "stub.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	operator, err := store.Seed("admin@kioskworks.dev")
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	tokens := NewTokenManager(strings.Repeat("k", 32), "kioskctl-stub", "kioskctl", time.Hour)
	srv := httptest.NewServer(NewServer(store, tokens, nil).Router())
	t.Cleanup(srv.Close)
	return srv, store, tokens, operator
}

func doRequest(t *testing.T, method, url, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, buf.Bytes()
}

func TestRequestsWithoutTokenAreUnauthorized(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	resp, _ := doRequest(t, http.MethodGet, srv.URL+"/api/v1/account/session", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestSessionReturnsSeededCapabilities(t *testing.T) {
	srv, _, tokens, operator := newTestServer(t)
	token, err := tokens.Issue(operator.ID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	resp, body := doRequest(t, http.MethodGet, srv.URL+"/api/v1/account/session", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var env struct {
		Data struct {
			UserID       uint64   `json:"user_id"`
			Capabilities []string `json:"capabilities"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.UserID != operator.ID {
		t.Fatalf("user_id = %d", env.Data.UserID)
	}
	if len(env.Data.Capabilities) != len(domain.KnownCapabilities()) {
		t.Fatalf("capabilities = %v", env.Data.Capabilities)
	}
}

func TestListUsersRequiresCapability(t *testing.T) {
	srv, store, tokens, _ := newTestServer(t)
	plain, err := store.GetAccountByEmail("maria@kioskworks.dev")
	if err != nil {
		t.Fatalf("GetAccountByEmail: %v", err)
	}
	token, err := tokens.Issue(plain.ID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	resp, body := doRequest(t, http.MethodGet, srv.URL+"/api/v1/account/users", token, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), "FORBIDDEN") {
		t.Fatalf("body = %s", body)
	}
}

func TestCreateUserValidatesAndConflicts(t *testing.T) {
	srv, _, tokens, operator := newTestServer(t)
	token, err := tokens.Issue(operator.ID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	resp, _ := doRequest(t, http.MethodPost, srv.URL+"/api/v1/account/users", token, map[string]string{"email": "bad"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid email status = %d", resp.StatusCode)
	}

	resp, body := doRequest(t, http.MethodPost, srv.URL+"/api/v1/account/users", token, map[string]string{"email": "new@kioskworks.dev"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d: %s", resp.StatusCode, body)
	}

	resp, _ = doRequest(t, http.MethodPost, srv.URL+"/api/v1/account/users", token, map[string]string{"email": "new@kioskworks.dev"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate status = %d", resp.StatusCode)
	}
}

func TestDeleteOwnAccountForbidden(t *testing.T) {
	srv, _, tokens, operator := newTestServer(t)
	token, err := tokens.Issue(operator.ID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	url := fmt.Sprintf("%s/api/v1/account/users/%d", srv.URL, operator.ID)
	resp, body := doRequest(t, http.MethodDelete, url, token, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
}

func TestGrantOutsideOwnSetForbidden(t *testing.T) {
	srv, store, tokens, _ := newTestServer(t)
	// A granter who can grant but holds nothing else.
	granter, err := store.CreateAccount("granter@kioskworks.dev")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if err := store.GrantCapabilities(granter.ID, []domain.Capability{domain.CapabilityGrantCapability}); err != nil {
		t.Fatalf("GrantCapabilities: %v", err)
	}
	target, err := store.GetAccountByEmail("maria@kioskworks.dev")
	if err != nil {
		t.Fatalf("GetAccountByEmail: %v", err)
	}
	token, err := tokens.Issue(granter.ID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	url := fmt.Sprintf("%s/api/v1/account/users/%d/capabilities/grant", srv.URL, target.ID)
	resp, body := doRequest(t, http.MethodPost, url, token, map[string][]string{
		"capabilities": {string(domain.CapabilityDeleteUser)},
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}

	// Granting a capability the granter holds succeeds.
	resp, body = doRequest(t, http.MethodPost, url, token, map[string][]string{
		"capabilities": {string(domain.CapabilityGrantCapability)},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	caps, err := store.Capabilities(target.ID)
	if err != nil {
		t.Fatalf("Capabilities: %v", err)
	}
	if !caps.Has(domain.CapabilityGrantCapability) {
		t.Fatal("expected granted capability persisted")
	}
}

func TestRevokeRemovesCapability(t *testing.T) {
	srv, store, tokens, operator := newTestServer(t)
	target, err := store.GetAccountByEmail("jonas@kioskworks.dev")
	if err != nil {
		t.Fatalf("GetAccountByEmail: %v", err)
	}
	if err := store.GrantCapabilities(target.ID, []domain.Capability{domain.CapabilityListUsers}); err != nil {
		t.Fatalf("GrantCapabilities: %v", err)
	}
	token, err := tokens.Issue(operator.ID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	url := fmt.Sprintf("%s/api/v1/account/users/%d/capabilities/revoke", srv.URL, target.ID)
	resp, body := doRequest(t, http.MethodPost, url, token, map[string][]string{
		"capabilities": {string(domain.CapabilityListUsers)},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	caps, err := store.Capabilities(target.ID)
	if err != nil {
		t.Fatalf("Capabilities: %v", err)
	}
	if caps.Has(domain.CapabilityListUsers) {
		t.Fatal("expected capability revoked")
	}
}

func TestIdempotencyKeyReplayRejected(t *testing.T) {
	srv, _, tokens, operator := newTestServer(t)
	token, err := tokens.Issue(operator.ID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	send := func(email string) (*http.Response, []byte) {
		raw, _ := json.Marshal(map[string]string{"email": email})
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/account/users", bytes.NewReader(raw))
		if err != nil {
			t.Fatalf("build request: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "fixed-key-1")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("do request: %v", err)
		}
		defer resp.Body.Close()
		var buf bytes.Buffer
		buf.ReadFrom(resp.Body)
		return resp, buf.Bytes()
	}

	resp, body := send("first@kioskworks.dev")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first status = %d: %s", resp.StatusCode, body)
	}
	resp, body = send("second@kioskworks.dev")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("replay status = %d: %s", resp.StatusCode, body)
	}
}
