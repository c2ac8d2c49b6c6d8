// Copyright (c) 2026 Mesh Network. All rights reserved.

package community

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meshnetwork/mesh/internal/platform/apperr"
	"github.com/meshnetwork/mesh/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed community store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Community Retrieval

/*
FindByName retrieves a community by its canonical name.

Parameters:
  - context: context.Context
  - name: string

Returns:
  - *Community: Hydrated entity
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindByName(context context.Context, name string) (*Community, error) {
	const query = `
		SELECT name, display_name, description, public, created_at
		FROM communities
		WHERE name = $1
	`
	community := &Community{}
	err := repository.db.QueryRow(context, query, name).Scan(
		&community.Name, &community.DisplayName, &community.Description,
		&community.Public, &community.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "")
	}
	return community, nil
}

/*
List returns public communities newest first, with the total count.

Parameters:
  - context: context.Context
  - limit, skip: int

Returns:
  - []*Community: Page of communities
  - int: Total matching count
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, limit, skip int) ([]*Community, int, error) {
	const query = `
		SELECT name, display_name, description, public, created_at,
			COUNT(*) OVER() AS total
		FROM communities
		WHERE public = TRUE
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := repository.db.Query(context, query, limit, skip)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "")
	}
	defer rows.Close()

	var communities []*Community
	var total int
	for rows.Next() {
		community := &Community{}
		err := rows.Scan(
			&community.Name, &community.DisplayName, &community.Description,
			&community.Public, &community.CreatedAt, &total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "")
		}
		communities = append(communities, community)
	}

	return communities, total, rows.Err()
}

// # Community Mutation

/*
Create inserts a new community row.

Parameters:
  - context: context.Context
  - community: *Community

Returns:
  - error: Conflict on duplicate name, persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, community *Community) error {
	const query = `
		INSERT INTO communities (name, display_name, description, public, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`
	err := repository.db.QueryRow(context, query,
		community.Name, community.DisplayName, community.Description, community.Public,
	).Scan(&community.CreatedAt)

	return dberr.Wrap(err, "Community already exists")
}

/*
Delete removes the community row; posts and subscriptions cascade.

Parameters:
  - context: context.Context
  - name: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Delete(context context.Context, name string) error {
	const query = `DELETE FROM communities WHERE name = $1`
	_, err := repository.db.Exec(context, query, name)
	return dberr.Wrap(err, "")
}

// # Subscription Implementation

/*
Subscribe inserts the membership pair. The primary key on
(user_id, community) turns a duplicate subscription into a Conflict.

Parameters:
  - context: context.Context
  - userID: string
  - name: string

Returns:
  - error: Conflict when already subscribed, persistence failures
*/
func (repository *PostgresRepository) Subscribe(context context.Context, userID, name string) error {
	const query = `
		INSERT INTO subscriptions (user_id, community, created_at)
		VALUES ($1, $2, NOW())
	`
	_, err := repository.db.Exec(context, query, userID, name)
	return dberr.Wrap(err, "Already subscribed")
}

/*
Unsubscribe removes the membership pair.

Parameters:
  - context: context.Context
  - userID: string
  - name: string

Returns:
  - error: NotFound when nothing was removed, persistence failures
*/
func (repository *PostgresRepository) Unsubscribe(context context.Context, userID, name string) error {
	const query = `DELETE FROM subscriptions WHERE user_id = $1 AND community = $2`

	result, err := repository.db.Exec(context, query, userID, name)
	if err != nil {
		return dberr.Wrap(err, "")
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("Subscription")
	}

	return nil
}

/*
IsSubscribed checks for the membership pair.

Parameters:
  - context: context.Context
  - userID: string
  - name: string

Returns:
  - bool: True if subscribed
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) IsSubscribed(context context.Context, userID, name string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions WHERE user_id = $1 AND community = $2
		)
	`
	var exists bool
	err := repository.db.QueryRow(context, query, userID, name).Scan(&exists)
	if err != nil {
		return false, dberr.Wrap(err, "")
	}
	return exists, nil
}

/*
ListSubscribedBy returns the user's communities, newest subscription first.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []*Community: Subscribed communities
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) ListSubscribedBy(context context.Context, userID string) ([]*Community, error) {
	const query = `
		SELECT c.name, c.display_name, c.description, c.public, c.created_at
		FROM subscriptions s
		JOIN communities c ON c.name = s.community
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC
	`
	rows, err := repository.db.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "")
	}
	defer rows.Close()

	var communities []*Community
	for rows.Next() {
		community := &Community{}
		err := rows.Scan(
			&community.Name, &community.DisplayName, &community.Description,
			&community.Public, &community.CreatedAt,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "")
		}
		communities = append(communities, community)
	}

	return communities, rows.Err()
}
