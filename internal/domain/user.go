package domain

import (
	"fmt"
	"strings"
)

// UserAccount is the console's read-only projection of a remote account.
// It may be stale; the remote service owns the record.
type UserAccount struct {
	ID    uint64 `json:"user_id"`
	Email string `json:"email"`
}

// Session is the authenticated context for the life of a console session.
// It is populated once and never mutated afterwards; a grant or revoke
// targeting the current operator does not refresh it.
type Session struct {
	UserID       uint64        `json:"user_id"`
	Capabilities CapabilitySet `json:"-"`
}

// ValidateEmail applies the console-side address check: longer than three
// characters and containing an '@'. The server may apply stricter rules.
func ValidateEmail(email string) error {
	if len(email) <= 3 || !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email address: %q", email)
	}
	return nil
}
