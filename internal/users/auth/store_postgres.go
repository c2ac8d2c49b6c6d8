// Copyright (c) 2026 Mesh Network. All rights reserved.

package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meshnetwork/mesh/internal/platform/dberr"
)

// PostgresUserRepository implements [UserRepository] using pgx.
type PostgresUserRepository struct {
	db *pgxpool.Pool
}

// NewPostgresUserRepository constructs a PostgreSQL backed user store.
func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// userColumns is the canonical projection for hydrating a [User].
const userColumns = `
	id, name, display_name, chosen_name, email,
	password_hash, email_verified, image, created_at
`

// scanTarget is the pgx scan destination list for userColumns.
func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.DisplayName, &user.ChosenName, &user.Email,
		&user.PasswordHash, &user.EmailVerified, &user.Image, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// # User Retrieval

/*
FindByID retrieves a single user record by its primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *User: Hydrated entity
  - error: Database retrieval failures
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "")
	}
	return user, nil
}

/*
FindByName retrieves a user by handle, ignoring case.

Parameters:
  - context: context.Context
  - name: string

Returns:
  - *User: Hydrated entity
  - error: Database retrieval failures
*/
func (repository *PostgresUserRepository) FindByName(context context.Context, name string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE LOWER(name) = LOWER($1)`

	user, err := scanUser(repository.db.QueryRow(context, query, name))
	if err != nil {
		return nil, dberr.Wrap(err, "")
	}
	return user, nil
}

/*
FindByEmail retrieves a user by email, ignoring case.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated entity
  - error: Database retrieval failures
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

	user, err := scanUser(repository.db.QueryRow(context, query, email))
	if err != nil {
		return nil, dberr.Wrap(err, "")
	}
	return user, nil
}

// # User Mutation

/*
Create inserts a new user record.

The unique indexes on LOWER(name) and LOWER(email) turn duplicate identities
into a Conflict even under concurrent registration.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: Conflict on duplicate handle/email, persistence failures
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users (
			id, name, display_name, chosen_name, email,
			password_hash, email_verified, image, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`
	err := repository.db.QueryRow(context, query,
		user.ID, user.Name, user.DisplayName, user.ChosenName, user.Email,
		user.PasswordHash, user.EmailVerified, user.Image,
	).Scan(&user.CreatedAt)

	return dberr.Wrap(err, "Username or email is already registered")
}

/*
UpdatePassword replaces the stored credential hash.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = `UPDATE users SET password_hash = $2 WHERE id = $1`
	_, err := repository.db.Exec(context, query, userID, newHash)
	return dberr.Wrap(err, "")
}

/*
UpdateImage replaces the stored avatar reference.

Parameters:
  - context: context.Context
  - userID: string
  - image: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresUserRepository) UpdateImage(context context.Context, userID, image string) error {
	const query = `UPDATE users SET image = $2 WHERE id = $1`
	_, err := repository.db.Exec(context, query, userID, image)
	return dberr.Wrap(err, "")
}

/*
MarkVerified flips email_verified to true.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresUserRepository) MarkVerified(context context.Context, userID string) error {
	const query = `UPDATE users SET email_verified = TRUE WHERE id = $1`
	_, err := repository.db.Exec(context, query, userID)
	return dberr.Wrap(err, "")
}

/*
Delete hard-deletes the user row.

Sessions, posts, subscriptions, and capability grants referencing the user
are removed by ON DELETE CASCADE foreign keys — the cascade is a correctness
requirement, not a convenience.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresUserRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`
	_, err := repository.db.Exec(context, query, id)
	return dberr.Wrap(err, "")
}

// # Session Store Implementation

// PostgresSessionRepository implements [SessionRepository] using pgx.
type PostgresSessionRepository struct {
	db *pgxpool.Pool
}

// NewPostgresSessionRepository constructs a PostgreSQL backed session store.
func NewPostgresSessionRepository(db *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

/*
Create persists a new session row.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Persistence failures
*/
func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	const query = `
		INSERT INTO sessions (token, user_id, created_at, expires_at)
		VALUES ($1, $2, NOW(), $3)
		RETURNING created_at
	`
	err := repository.db.QueryRow(context, query,
		session.Token, session.UserID, session.ExpiresAt,
	).Scan(&session.CreatedAt)

	return dberr.Wrap(err, "")
}

/*
FindByToken returns the session for an opaque token.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *Session: Hydrated entity
  - error: Database retrieval failures
*/
func (repository *PostgresSessionRepository) FindByToken(context context.Context, token string) (*Session, error) {
	const query = `
		SELECT token, user_id, created_at, expires_at
		FROM sessions
		WHERE token = $1
	`
	session := &Session{}
	err := repository.db.QueryRow(context, query, token).Scan(
		&session.Token, &session.UserID, &session.CreatedAt, &session.ExpiresAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "")
	}
	return session, nil
}

/*
Delete removes a session row at logout.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresSessionRepository) Delete(context context.Context, token string) error {
	const query = `DELETE FROM sessions WHERE token = $1`
	_, err := repository.db.Exec(context, query, token)
	return dberr.Wrap(err, "")
}

/*
DeleteExpired sweeps sessions past their lifetime.

Parameters:
  - context: context.Context

Returns:
  - error: Persistence failures
*/
func (repository *PostgresSessionRepository) DeleteExpired(context context.Context) error {
	const query = `DELETE FROM sessions WHERE expires_at < NOW()`
	_, err := repository.db.Exec(context, query)
	return dberr.Wrap(err, "")
}
