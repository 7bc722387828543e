package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Client represents a row in the clients table. A client is a calling
// service (web backend, mobile gateway) that authenticates with an API key.
type Client struct {
	ID           string
	Name         string
	APIKeyHash   string
	APIKeyPrefix string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UpdateClientParams holds optional fields for partial client updates.
type UpdateClientParams struct {
	Name     *string
	Disabled *bool
}

// GenerateAPIKey creates a new msk_ API key with its bcrypt hash and prefix.
// Returns (fullKey, hash, prefix, error). The fullKey is shown to the user once.
func GenerateAPIKey() (string, string, string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", "", fmt.Errorf("GenerateAPIKey: %w", err)
	}
	fullKey := "msk_" + hex.EncodeToString(raw) // 68 chars total

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(fullKey), bcrypt.DefaultCost)
	if err != nil {
		return "", "", "", fmt.Errorf("GenerateAPIKey: %w", err)
	}

	prefix := fullKey[:8] // "msk_abcd"
	return fullKey, string(hashBytes), prefix, nil
}

// CreateClient inserts a new client.
// Returns the client and the plaintext API key (shown once).
func (s *Store) CreateClient(ctx context.Context, name string) (*Client, string, error) {
	fullKey, keyHash, keyPrefix, err := GenerateAPIKey()
	if err != nil {
		return nil, "", fmt.Errorf("CreateClient: %w", err)
	}

	var c Client
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO clients (name, api_key_hash, api_key_prefix)
		VALUES ($1, $2, $3)
		RETURNING id, name, api_key_hash, api_key_prefix, disabled, created_at, updated_at`,
		name, keyHash, keyPrefix,
	).Scan(&c.ID, &c.Name, &c.APIKeyHash, &c.APIKeyPrefix, &c.Disabled,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, "", fmt.Errorf("CreateClient: %w", err)
	}

	return &c, fullKey, nil
}

// ListClients returns all clients ordered by created_at DESC.
func (s *Store) ListClients(ctx context.Context) ([]*Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, api_key_hash, api_key_prefix, disabled, created_at, updated_at
		FROM clients ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("ListClients: %w", err)
	}
	defer rows.Close()

	var clients []*Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.APIKeyHash, &c.APIKeyPrefix,
			&c.Disabled, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ListClients: %w", err)
		}
		clients = append(clients, &c)
	}
	return clients, rows.Err()
}

// GetClient returns a client by ID, or nil if not found.
func (s *Store) GetClient(ctx context.Context, id string) (*Client, error) {
	var c Client
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, api_key_hash, api_key_prefix, disabled, created_at, updated_at
		FROM clients WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.APIKeyHash, &c.APIKeyPrefix,
		&c.Disabled, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetClient: %w", err)
	}
	return &c, nil
}

// UpdateClient applies a partial update to a client. Only non-nil fields are changed.
func (s *Store) UpdateClient(ctx context.Context, id string, params UpdateClientParams) (*Client, error) {
	var c Client
	err := s.db.QueryRowContext(ctx, `
		UPDATE clients SET
			name       = COALESCE($2, name),
			disabled   = COALESCE($3, disabled),
			updated_at = now()
		WHERE id = $1
		RETURNING id, name, api_key_hash, api_key_prefix, disabled, created_at, updated_at`,
		id, params.Name, params.Disabled,
	).Scan(&c.ID, &c.Name, &c.APIKeyHash, &c.APIKeyPrefix,
		&c.Disabled, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("UpdateClient: %w", err)
	}
	return &c, nil
}

// DeleteClient deletes a client by ID.
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("DeleteClient: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RotateAPIKey generates a new API key for a client.
// Returns the updated client and the plaintext key (shown once).
func (s *Store) RotateAPIKey(ctx context.Context, id string) (*Client, string, error) {
	fullKey, keyHash, keyPrefix, err := GenerateAPIKey()
	if err != nil {
		return nil, "", fmt.Errorf("RotateAPIKey: %w", err)
	}

	var c Client
	err = s.db.QueryRowContext(ctx, `
		UPDATE clients SET
			api_key_hash   = $2,
			api_key_prefix = $3,
			updated_at     = now()
		WHERE id = $1
		RETURNING id, name, api_key_hash, api_key_prefix, disabled, created_at, updated_at`,
		id, keyHash, keyPrefix,
	).Scan(&c.ID, &c.Name, &c.APIKeyHash, &c.APIKeyPrefix,
		&c.Disabled, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, "", fmt.Errorf("RotateAPIKey: client not found")
	}
	if err != nil {
		return nil, "", fmt.Errorf("RotateAPIKey: %w", err)
	}

	return &c, fullKey, nil
}

// LookupByPrefix finds a client by API key prefix (first 8 chars).
// Used by auth to narrow candidates before bcrypt verify.
func (s *Store) LookupByPrefix(ctx context.Context, prefix string) (*Client, error) {
	var c Client
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, api_key_hash, api_key_prefix, disabled, created_at, updated_at
		FROM clients WHERE api_key_prefix = $1`, prefix,
	).Scan(&c.ID, &c.Name, &c.APIKeyHash, &c.APIKeyPrefix,
		&c.Disabled, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LookupByPrefix: %w", err)
	}
	return &c, nil
}
