package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// PostgresAccessor reads the platform's security_events and payments tables.
type PostgresAccessor struct {
	db *sql.DB
}

// NewPostgresAccessor creates an accessor backed by the given pool.
func NewPostgresAccessor(db *sql.DB) *PostgresAccessor {
	return &PostgresAccessor{db: db}
}

// EventsSince returns the user's security events of the given kinds created
// after since, oldest first.
func (a *PostgresAccessor) EventsSince(ctx context.Context, userID string, kinds []EventKind, since time.Time) ([]SecurityEvent, error) {
	if len(kinds) == 0 {
		return nil, nil
	}

	// Build $3..$n placeholders for the kind list; database/sql has no
	// native array binding for IN clauses.
	placeholders := make([]string, len(kinds))
	args := []any{userID, since}
	for i, k := range kinds {
		placeholders[i] = fmt.Sprintf("$%d", i+3)
		args = append(args, string(k))
	}

	query := fmt.Sprintf(`
		SELECT user_id, event_type, COALESCE(location, ''), COALESCE(device_fingerprint, ''), created_at
		FROM security_events
		WHERE user_id = $1 AND created_at > $2 AND event_type IN (%s)
		ORDER BY created_at`,
		strings.Join(placeholders, ", "))

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("EventsSince: %w", err)
	}
	defer rows.Close()

	var events []SecurityEvent
	for rows.Next() {
		var e SecurityEvent
		var kind string
		if err := rows.Scan(&e.UserID, &kind, &e.Location, &e.DeviceFingerprint, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("EventsSince: %w", err)
		}
		e.Kind = EventKind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}

// TransactionsSince returns the user's payments created after since, oldest first.
func (a *PostgresAccessor) TransactionsSince(ctx context.Context, userID string, since time.Time) ([]Transaction, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT user_id, amount, created_at
		FROM payments
		WHERE user_id = $1 AND created_at > $2
		ORDER BY created_at`,
		userID, since)
	if err != nil {
		return nil, fmt.Errorf("TransactionsSince: %w", err)
	}
	defer rows.Close()

	var txns []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.UserID, &t.Amount, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("TransactionsSince: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}
