// Package history provides read-only access to a user's prior security
// events and financial transactions. The underlying tables are owned by the
// lending platform; sentinel only ever reads them.
package history

import (
	"context"
	"time"
)

// EventKind classifies a security event row.
type EventKind string

const (
	EventLogin       EventKind = "login"
	EventFailedLogin EventKind = "failed_login"
)

// SecurityEvent is one historical security-relevant occurrence.
// Rows are append-only and ordered by CreatedAt.
type SecurityEvent struct {
	UserID            string
	Kind              EventKind
	Location          string // empty if the platform recorded none
	DeviceFingerprint string
	CreatedAt         time.Time
}

// Transaction is one historical payment.
type Transaction struct {
	UserID    string
	Amount    float64
	CreatedAt time.Time
}

// Accessor is the read-only history capability handed to the risk signals.
// Implementations must be safe for concurrent use.
type Accessor interface {
	// EventsSince returns the user's security events of the given kinds
	// created strictly after since.
	EventsSince(ctx context.Context, userID string, kinds []EventKind, since time.Time) ([]SecurityEvent, error)

	// TransactionsSince returns the user's transactions created strictly
	// after since.
	TransactionsSince(ctx context.Context, userID string, since time.Time) ([]Transaction, error)
}
