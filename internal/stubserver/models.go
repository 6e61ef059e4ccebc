// Package stubserver is a self-contained account service for local
// development and tests. It speaks the same wire protocol as the real
// fleet platform and enforces the same capability policy server-side, so
// the console's gating can be exercised end to end without a deployment.
package stubserver

import "time"

type Account struct {
	ID        uint64    `gorm:"primaryKey" json:"user_id"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AccountCapability struct {
	ID         uint64 `gorm:"primaryKey"`
	AccountID  uint64 `gorm:"index:idx_account_capability,unique,priority:1;not null"`
	Capability string `gorm:"index:idx_account_capability,unique,priority:2;size:64;not null"`
}

type IdempotencyKey struct {
	Key       string `gorm:"primaryKey;size:64"`
	CreatedAt time.Time
}
