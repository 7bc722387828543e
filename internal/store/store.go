// Package store provides access to the PostgreSQL database for API client CRUD.
package store

import "database/sql"

// Store wraps the database connection pool.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store backed by the given database connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}
