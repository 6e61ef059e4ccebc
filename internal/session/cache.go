// Package session holds the operator's identity and granted capability set
// for the life of a console session. The capability view is a rendering
// convenience only; the account service remains the authoritative check.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kioskworks/kioskctl/internal/api"
	"github.com/kioskworks/kioskctl/internal/domain"
	"github.com/kioskworks/kioskctl/internal/observability"
)

// ErrSessionFetchFailed marks a failed identity fetch. It is fatal for the
// current view: the caller must fall back to an unauthenticated surface
// rather than render protected content.
var ErrSessionFetchFailed = errors.New("session: identity fetch failed")

// CapabilityView is the read side consumed by gating logic. Checks are
// synchronous and fail closed before initialization completes.
// Capabilities exposes the full cached set, including tags this console
// does not predefine; grant and revoke bounds are computed from it.
type CapabilityView interface {
	HasCapability(c domain.Capability) bool
	Capabilities() domain.CapabilitySet
	CurrentUserID() (uint64, bool)
}

// Cache fetches the session identity once and answers capability checks
// from memory afterwards. Capabilities are pinned for the session's
// lifetime; a grant or revoke targeting the current operator takes effect
// on the next session, not this one.
type Cache struct {
	client api.AccountService
	store  Store
	logger *slog.Logger

	mu   sync.RWMutex
	sess *domain.Session
}

func NewCache(client api.AccountService, store Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, store: store, logger: logger}
}

// Initialize loads the session from the store, or fetches it from the
// service when the store is empty. Exactly one remote read happens per
// session lifetime. Failures wrap ErrSessionFetchFailed.
func (c *Cache) Initialize(ctx context.Context) (*domain.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess != nil {
		return cloneSession(c.sess), nil
	}

	if stored, ok := c.store.Load(); ok {
		c.sess = stored
		c.logger.Debug("session restored from store", "user_id", stored.UserID)
		return cloneSession(stored), nil
	}

	info, err := c.client.GetSessionInfo(ctx)
	if err != nil {
		observability.RecordSessionEvent(ctx, "initialize", "error")
		return nil, fmt.Errorf("%w: %v", ErrSessionFetchFailed, err)
	}
	sess := &domain.Session{
		UserID:       info.UserID,
		Capabilities: domain.CapabilitiesFromStrings(info.Capabilities),
	}
	if err := c.store.Save(sess); err != nil {
		// The cache still works from memory; persistence is best effort.
		c.logger.Warn("failed to persist session", "error", err)
	}
	c.sess = sess
	c.logger.Info("session initialized", "user_id", sess.UserID, "capabilities", sess.Capabilities.Len())
	observability.RecordSessionEvent(ctx, "initialize", "success")
	return cloneSession(sess), nil
}

// HasCapability reports membership in the cached capability set. It
// returns false when the cache was never populated.
func (c *Cache) HasCapability(cap domain.Capability) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.sess == nil {
		return false
	}
	return c.sess.Capabilities.Has(cap)
}

// Capabilities returns a snapshot of the cached capability set, empty
// before initialization.
func (c *Cache) Capabilities() domain.CapabilitySet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.sess == nil {
		return domain.NewCapabilitySet()
	}
	return c.sess.Capabilities.Clone()
}

// CurrentUserID returns the operator's identifier, or false before
// initialization.
func (c *Cache) CurrentUserID() (uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.sess == nil {
		return 0, false
	}
	return c.sess.UserID, true
}

// Session returns a copy of the cached session, or false before
// initialization.
func (c *Cache) Session() (*domain.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.sess == nil {
		return nil, false
	}
	return cloneSession(c.sess), true
}

// End terminates the remote session and clears local state. The local
// state is cleared even when the remote call fails so a stale identity is
// never reused.
func (c *Cache) End(ctx context.Context) error {
	remoteErr := c.client.EndSession(ctx)

	c.mu.Lock()
	c.sess = nil
	c.mu.Unlock()
	if err := c.store.Clear(); err != nil {
		c.logger.Warn("failed to clear session store", "error", err)
	}
	if remoteErr != nil {
		observability.RecordSessionEvent(ctx, "end", "error")
		return fmt.Errorf("end session: %w", remoteErr)
	}
	observability.RecordSessionEvent(ctx, "end", "success")
	return nil
}
