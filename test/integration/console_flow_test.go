package integration

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kioskworks/kioskctl/internal/api"
	"github.com/kioskworks/kioskctl/internal/console"
	"github.com/kioskworks/kioskctl/internal/domain"
	"github.com/kioskworks/kioskctl/internal/session"
	"github.com/kioskworks/kioskctl/internal/stubserver"
)

type env struct {
	srv      *httptest.Server
	store    *stubserver.Store
	tokens   *stubserver.TokenManager
	operator *stubserver.Account
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store, err := stubserver.OpenStore(filepath.Join(t.TempDir(), "stub.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	operator, err := store.Seed("admin@kioskworks.dev")
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	tokens := stubserver.NewTokenManager(strings.Repeat("k", 32), "kioskctl-stub", "kioskctl", time.Hour)
	srv := httptest.NewServer(stubserver.NewServer(store, tokens, nil).Router())
	t.Cleanup(srv.Close)
	return &env{srv: srv, store: store, tokens: tokens, operator: operator}
}

func (e *env) consoleFor(t *testing.T, accountID uint64) (*console.Controller, *session.Cache) {
	t.Helper()
	token, err := e.tokens.Issue(accountID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	client := api.NewClient(e.srv.URL, token, 5*time.Second)
	cache := session.NewCache(client, session.NewMemoryStore(), nil)
	if _, err := cache.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return console.NewController(client, cache, nil), cache
}

func TestOperatorLifecycle(t *testing.T) {
	e := newEnv(t)
	ctrl, _ := e.consoleFor(t, e.operator.ID)
	ctx := context.Background()

	users, err := ctrl.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	initial := len(users)
	if initial < 3 {
		t.Fatalf("expected seeded accounts, got %d", initial)
	}

	created, err := ctrl.CreateUser(ctx, "temp@kioskworks.dev")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	users, err = ctrl.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers after create: %v", err)
	}
	if len(users) != initial+1 {
		t.Fatalf("expected %d users, got %d", initial+1, len(users))
	}

	if err := ctrl.DeleteUser(ctx, created.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	users, err = ctrl.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers after delete: %v", err)
	}
	if len(users) != initial {
		t.Fatalf("expected %d users, got %d", initial, len(users))
	}
}

func TestGrantRevokeRoundTrip(t *testing.T) {
	e := newEnv(t)
	ctrl, _ := e.consoleFor(t, e.operator.ID)
	ctx := context.Background()

	target, err := e.store.GetAccountByEmail("maria@kioskworks.dev")
	if err != nil {
		t.Fatalf("GetAccountByEmail: %v", err)
	}

	opts, err := ctrl.GrantOptions(ctx, target.ID)
	if err != nil {
		t.Fatalf("GrantOptions: %v", err)
	}
	if len(opts) != len(domain.KnownCapabilities()) {
		t.Fatalf("options = %d", len(opts))
	}
	for _, opt := range opts {
		if opt.AlreadyGranted {
			t.Fatalf("fresh account already holds %s", opt.Capability)
		}
	}

	grant := []domain.Capability{domain.CapabilityListUsers, domain.CapabilityCreateUser}
	if err := ctrl.Grant(ctx, target.ID, grant); err != nil {
		t.Fatalf("Grant: %v", err)
	}

	caps, err := ctrl.UserCapabilities(ctx, target.ID)
	if err != nil {
		t.Fatalf("UserCapabilities: %v", err)
	}
	if !caps.Has(domain.CapabilityListUsers) || !caps.Has(domain.CapabilityCreateUser) {
		t.Fatalf("capabilities = %v", caps.Sorted())
	}

	revocable, err := ctrl.RevokeOptions(ctx, target.ID)
	if err != nil {
		t.Fatalf("RevokeOptions: %v", err)
	}
	if len(revocable) != 2 {
		t.Fatalf("revocable = %v", revocable)
	}

	if err := ctrl.Revoke(ctx, target.ID, []domain.Capability{domain.CapabilityListUsers}); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	caps, err = ctrl.UserCapabilities(ctx, target.ID)
	if err != nil {
		t.Fatalf("UserCapabilities after revoke: %v", err)
	}
	if caps.Has(domain.CapabilityListUsers) {
		t.Fatal("capability still present after revoke")
	}
}

func TestLimitedOperatorSeesGatesEnforcedTwice(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// An operator who can only grant; the target temporarily receives the
	// grant capability so it can act, then loses it.
	limited, err := e.store.CreateAccount("limited@kioskworks.dev")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if err := e.store.GrantCapabilities(limited.ID, []domain.Capability{domain.CapabilityGrantCapability}); err != nil {
		t.Fatalf("GrantCapabilities: %v", err)
	}

	ctrl, _ := e.consoleFor(t, limited.ID)

	// The local gate closes list users before any request is made.
	if _, err := ctrl.ListUsers(ctx); !errors.Is(err, console.ErrNotPermitted) {
		t.Fatalf("expected ErrNotPermitted, got %v", err)
	}

	// Granting a capability outside the operator's own set fails locally.
	target, err := e.store.GetAccountByEmail("jonas@kioskworks.dev")
	if err != nil {
		t.Fatalf("GetAccountByEmail: %v", err)
	}
	err = ctrl.Grant(ctx, target.ID, []domain.Capability{domain.CapabilityDeleteUser})
	var verr *console.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Granting within the set succeeds and the server accepts it.
	if err := ctrl.Grant(ctx, target.ID, []domain.Capability{domain.CapabilityGrantCapability}); err != nil {
		t.Fatalf("Grant: %v", err)
	}
}

func TestSessionCapabilitiesPinnedUntilNextSession(t *testing.T) {
	e := newEnv(t)

	worker, err := e.store.CreateAccount("worker@kioskworks.dev")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if err := e.store.GrantCapabilities(worker.ID, []domain.Capability{domain.CapabilityListUsers}); err != nil {
		t.Fatalf("GrantCapabilities: %v", err)
	}

	_, cache := e.consoleFor(t, worker.ID)
	if !cache.HasCapability(domain.CapabilityListUsers) {
		t.Fatal("expected capability in session")
	}

	// A server-side revoke mid-session does not change the cached view.
	if err := e.store.RevokeCapabilities(worker.ID, []domain.Capability{domain.CapabilityListUsers}); err != nil {
		t.Fatalf("RevokeCapabilities: %v", err)
	}
	if !cache.HasCapability(domain.CapabilityListUsers) {
		t.Fatal("session view must stay pinned")
	}

	// A fresh session sees the revocation.
	_, fresh := e.consoleFor(t, worker.ID)
	if fresh.HasCapability(domain.CapabilityListUsers) {
		t.Fatal("fresh session must reflect the revoke")
	}
}

func TestEndSessionClearsLocalState(t *testing.T) {
	e := newEnv(t)
	_, cache := e.consoleFor(t, e.operator.ID)

	if err := cache.End(context.Background()); err != nil {
		t.Fatalf("End: %v", err)
	}
	if cache.HasCapability(domain.CapabilityListUsers) {
		t.Fatal("capabilities must be gone after logout")
	}
	if _, ok := cache.CurrentUserID(); ok {
		t.Fatal("identity must be gone after logout")
	}
}
