// Package console implements the capability-gated action controller: it
// decides which account actions the current operator may perform, executes
// them against the account service, and reconciles the local projections
// afterwards. Gating here is a UX convenience; the service enforces the
// authoritative policy.
package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/kioskworks/kioskctl/internal/api"
	"github.com/kioskworks/kioskctl/internal/domain"
	"github.com/kioskworks/kioskctl/internal/observability"
	"github.com/kioskworks/kioskctl/internal/session"
)

// Action identifies one manageable operation family.
type Action string

const (
	ActionListUsers  Action = "list_users"
	ActionCreateUser Action = "create_user"
	ActionDeleteUser Action = "delete_user"
	ActionGrant      Action = "grant_capability"
	ActionRevoke     Action = "revoke_capability"
)

// RequiredCapability maps an action to the capability gating it.
func (a Action) RequiredCapability() domain.Capability {
	switch a {
	case ActionListUsers:
		return domain.CapabilityListUsers
	case ActionCreateUser:
		return domain.CapabilityCreateUser
	case ActionDeleteUser:
		return domain.CapabilityDeleteUser
	case ActionGrant:
		return domain.CapabilityGrantCapability
	case ActionRevoke:
		return domain.CapabilityRevokeCapability
	}
	return ""
}

// SelfExcluded reports whether the action is forbidden against the
// operator's own account regardless of capabilities.
func (a Action) SelfExcluded() bool {
	switch a {
	case ActionDeleteUser, ActionGrant, ActionRevoke:
		return true
	}
	return false
}

// ValidationError is a locally detected input problem. It blocks the
// remote call entirely; the caller keeps the user's input for correction.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ErrNotPermitted is returned when an action is attempted past a closed
// gate. The UI renders such controls disabled, so hitting this indicates
// a caller bug or a capability lost mid-session.
var ErrNotPermitted = errors.New("console: action not permitted")

// ErrSelfAction is returned for a mutating action targeting the
// operator's own account.
var ErrSelfAction = errors.New("console: cannot act on own account")

// Decision is the outcome of gating one action against one target.
type Decision struct {
	Allowed bool
	Reason  string
}

// GrantOption is one entry of the grant dialog. Already-granted
// capabilities stay visible but are not selectable.
type GrantOption struct {
	Capability     domain.Capability
	AlreadyGranted bool
}

// Controller orchestrates the gated account actions.
type Controller struct {
	client api.AccountService
	caps   session.CapabilityView
	rows   *rowCache
	logger *slog.Logger
}

func NewController(client api.AccountService, caps session.CapabilityView, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		client: client,
		caps:   caps,
		rows:   newRowCache(client),
		logger: logger,
	}
}

// Gate evaluates whether the operator may perform action against the
// target. targetID is ignored for actions without a target (list, create).
func (c *Controller) Gate(action Action, targetID uint64) Decision {
	required := action.RequiredCapability()
	if required == "" {
		return Decision{Allowed: false, Reason: "unknown action"}
	}
	if !c.caps.HasCapability(required) {
		return Decision{Allowed: false, Reason: fmt.Sprintf("requires %s", required)}
	}
	if action.SelfExcluded() {
		if self, ok := c.caps.CurrentUserID(); ok && self == targetID {
			return Decision{Allowed: false, Reason: "cannot act on your own account"}
		}
	}
	return Decision{Allowed: true}
}

// ListUsers fetches the account list, sorted by user id ascending. On
// failure nothing is returned: callers never render a partial list.
func (c *Controller) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	if d := c.Gate(ActionListUsers, 0); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrNotPermitted, d.Reason)
	}
	users, err := c.client.ListUsers(ctx)
	if err != nil {
		observability.RecordConsoleAction(ctx, string(ActionListUsers), "error")
		return nil, fmt.Errorf("list users: %w", err)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	observability.RecordConsoleAction(ctx, string(ActionListUsers), "success")
	return users, nil
}

// CreateUser validates the email locally and creates the account. A
// validation failure never reaches the service.
func (c *Controller) CreateUser(ctx context.Context, email string) (*domain.UserAccount, error) {
	if d := c.Gate(ActionCreateUser, 0); !d.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrNotPermitted, d.Reason)
	}
	if err := domain.ValidateEmail(email); err != nil {
		return nil, &ValidationError{Reason: "please enter a valid email address"}
	}
	user, err := c.client.CreateUser(ctx, email)
	if err != nil {
		observability.RecordConsoleAction(ctx, string(ActionCreateUser), "error")
		return nil, fmt.Errorf("create user: %w", err)
	}
	c.logger.Info("user created", "user_id", user.ID, "email", user.Email)
	observability.RecordConsoleAction(ctx, string(ActionCreateUser), "success")
	return user, nil
}

// DeleteUser removes the target account. The caller re-fetches the user
// list on success; on failure the local projection is untouched.
func (c *Controller) DeleteUser(ctx context.Context, targetID uint64) error {
	if d := c.Gate(ActionDeleteUser, targetID); !d.Allowed {
		return gateError(d, targetID, c.caps)
	}
	if err := c.client.DeleteUser(ctx, targetID); err != nil {
		observability.RecordConsoleAction(ctx, string(ActionDeleteUser), "error")
		return fmt.Errorf("delete user %d: %w", targetID, err)
	}
	c.rows.invalidate(targetID)
	c.logger.Info("user deleted", "user_id", targetID)
	observability.RecordConsoleAction(ctx, string(ActionDeleteUser), "success")
	return nil
}

// UserCapabilities returns the target's capability set, fetching it on
// first use and serving later reads from the per-row cache.
func (c *Controller) UserCapabilities(ctx context.Context, targetID uint64) (domain.CapabilitySet, error) {
	return c.rows.get(ctx, targetID)
}

// RefreshUserCapabilities drops the cached row and fetches it again.
func (c *Controller) RefreshUserCapabilities(ctx context.Context, targetID uint64) (domain.CapabilitySet, error) {
	c.rows.invalidate(targetID)
	return c.rows.get(ctx, targetID)
}

// GrantOptions lists the operator's own capabilities annotated with
// whether the target already holds them. Only the not-yet-held ones are
// selectable.
func (c *Controller) GrantOptions(ctx context.Context, targetID uint64) ([]GrantOption, error) {
	if d := c.Gate(ActionGrant, targetID); !d.Allowed {
		return nil, gateError(d, targetID, c.caps)
	}
	operator, err := c.operatorCapabilities()
	if err != nil {
		return nil, err
	}
	target, err := c.rows.get(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("fetch target capabilities: %w", err)
	}
	opts := make([]GrantOption, 0, operator.Len())
	for _, cap := range operator.Sorted() {
		opts = append(opts, GrantOption{Capability: cap, AlreadyGranted: target.Has(cap)})
	}
	return opts, nil
}

// RevokeOptions lists the capabilities the operator may take away from
// the target: held by the target and within the operator's own set.
func (c *Controller) RevokeOptions(ctx context.Context, targetID uint64) ([]domain.Capability, error) {
	if d := c.Gate(ActionRevoke, targetID); !d.Allowed {
		return nil, gateError(d, targetID, c.caps)
	}
	operator, err := c.operatorCapabilities()
	if err != nil {
		return nil, err
	}
	target, err := c.rows.get(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("fetch target capabilities: %w", err)
	}
	return domain.Revocable(operator, target), nil
}

// Grant applies the selected capabilities to the target and invalidates
// the target's cached capability row.
func (c *Controller) Grant(ctx context.Context, targetID uint64, caps []domain.Capability) error {
	if d := c.Gate(ActionGrant, targetID); !d.Allowed {
		return gateError(d, targetID, c.caps)
	}
	if len(caps) == 0 {
		return &ValidationError{Reason: "select at least one capability to grant"}
	}
	operator, err := c.operatorCapabilities()
	if err != nil {
		return err
	}
	for _, cap := range caps {
		if !operator.Has(cap) {
			return &ValidationError{Reason: fmt.Sprintf("cannot grant %s: not in your own capability set", cap)}
		}
	}
	if err := c.client.GrantCapabilities(ctx, targetID, caps); err != nil {
		observability.RecordConsoleAction(ctx, string(ActionGrant), "error")
		return fmt.Errorf("grant capabilities: %w", err)
	}
	c.rows.invalidate(targetID)
	c.logger.Info("capabilities granted", "user_id", targetID, "count", len(caps))
	observability.RecordConsoleAction(ctx, string(ActionGrant), "success")
	return nil
}

// Revoke removes the selected capabilities from the target and
// invalidates the target's cached capability row.
func (c *Controller) Revoke(ctx context.Context, targetID uint64, caps []domain.Capability) error {
	if d := c.Gate(ActionRevoke, targetID); !d.Allowed {
		return gateError(d, targetID, c.caps)
	}
	if len(caps) == 0 {
		return &ValidationError{Reason: "select at least one capability to revoke"}
	}
	operator, err := c.operatorCapabilities()
	if err != nil {
		return err
	}
	for _, cap := range caps {
		if !operator.Has(cap) {
			return &ValidationError{Reason: fmt.Sprintf("cannot revoke %s: not in your own capability set", cap)}
		}
	}
	if err := c.client.RevokeCapabilities(ctx, targetID, caps); err != nil {
		observability.RecordConsoleAction(ctx, string(ActionRevoke), "error")
		return fmt.Errorf("revoke capabilities: %w", err)
	}
	c.rows.invalidate(targetID)
	c.logger.Info("capabilities revoked", "user_id", targetID, "count", len(caps))
	observability.RecordConsoleAction(ctx, string(ActionRevoke), "success")
	return nil
}

// operatorCapabilities is the full cached session set, unrecognized tags
// included: grant and revoke bounds cover everything the operator holds,
// not just what this console predefines.
func (c *Controller) operatorCapabilities() (domain.CapabilitySet, error) {
	set := c.caps.Capabilities()
	if set.Len() == 0 {
		return nil, fmt.Errorf("%w: session holds no capabilities", ErrNotPermitted)
	}
	return set, nil
}

func gateError(d Decision, targetID uint64, caps session.CapabilityView) error {
	if self, ok := caps.CurrentUserID(); ok && self == targetID {
		return fmt.Errorf("%w (user %d)", ErrSelfAction, targetID)
	}
	return fmt.Errorf("%w: %s", ErrNotPermitted, d.Reason)
}
