// Copyright (c) 2026 Mesh Network. All rights reserved.

package permission

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meshnetwork/mesh/internal/platform/dberr"
)

// PostgresStore implements [Store] using pgx.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a PostgreSQL backed capability store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// # Grant Queries

/*
Has checks for the existence of an exact (principal, capability) row.

Parameters:
  - context: context.Context
  - principalID: string
  - capability: Capability

Returns:
  - bool: True if the grant exists
  - error: Database retrieval failures
*/
func (store *PostgresStore) Has(context context.Context, principalID string, capability Capability) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM capability_grant
			WHERE principal_id = $1 AND token = $2
		)
	`
	var exists bool
	err := store.db.QueryRow(context, query, principalID, capability.Token()).Scan(&exists)
	if err != nil {
		return false, dberr.Wrap(err, "")
	}
	return exists, nil
}

/*
Grant inserts one grant row.

The unique index on (principal_id, token) is the backstop for the
check-then-insert race: a concurrent duplicate insert loses and surfaces
as a Conflict instead of creating a second row.

Parameters:
  - context: context.Context
  - principalID: string
  - capability: Capability

Returns:
  - error: Conflict on duplicate grant, or persistence failures
*/
func (store *PostgresStore) Grant(context context.Context, principalID string, capability Capability) error {
	const query = `
		INSERT INTO capability_grant (principal_id, token, created_at)
		VALUES ($1, $2, NOW())
	`
	_, err := store.db.Exec(context, query, principalID, capability.Token())
	return dberr.Wrap(err, "Capability already granted")
}

/*
ListByPrincipal returns all direct grants for a principal.

Rows holding tokens the current code cannot parse are skipped rather than
failing the whole listing.

Parameters:
  - context: context.Context
  - principalID: string

Returns:
  - []Capability: Direct grants ordered by token
  - error: Database retrieval failures
*/
func (store *PostgresStore) ListByPrincipal(context context.Context, principalID string) ([]Capability, error) {
	const query = `
		SELECT token FROM capability_grant
		WHERE principal_id = $1
		ORDER BY token ASC
	`
	rows, err := store.db.Query(context, query, principalID)
	if err != nil {
		return nil, dberr.Wrap(err, "")
	}
	defer rows.Close()

	var capabilities []Capability
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, dberr.Wrap(err, "")
		}

		capability, parseErr := ParseToken(token)
		if parseErr != nil {
			continue
		}
		capabilities = append(capabilities, capability)
	}

	return capabilities, rows.Err()
}
