// Copyright (c) 2026 Mesh Network. All rights reserved.

package post

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meshnetwork/mesh/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed post store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Post Retrieval

/*
FindByID retrieves a single post with its author's handle.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Post: Hydrated entity
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Post, error) {
	const query = `
		SELECT p.id, p.author_id, u.name, p.community, p.title, p.content, p.created_at
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1
	`
	post := &Post{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&post.ID, &post.AuthorID, &post.AuthorName, &post.Community,
		&post.Title, &post.Content, &post.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "")
	}
	return post, nil
}

/*
ListByCommunity returns a page of a community's posts, newest first.

Parameters:
  - context: context.Context
  - community: string
  - limit, skip: int

Returns:
  - []*Post: Page of posts
  - int: Total matching count
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) ListByCommunity(context context.Context, community string, limit, skip int) ([]*Post, int, error) {
	const query = `
		SELECT p.id, p.author_id, u.name, p.community, p.title, p.content, p.created_at,
			COUNT(*) OVER() AS total
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.community = $1
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := repository.db.Query(context, query, community, limit, skip)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "")
	}
	defer rows.Close()

	return scanPostPage(rows)
}

/*
ListByAuthor returns a page of a user's posts by handle, newest first.

Parameters:
  - context: context.Context
  - authorName: string (any casing)
  - limit, skip: int

Returns:
  - []*Post: Page of posts
  - int: Total matching count
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) ListByAuthor(context context.Context, authorName string, limit, skip int) ([]*Post, int, error) {
	const query = `
		SELECT p.id, p.author_id, u.name, p.community, p.title, p.content, p.created_at,
			COUNT(*) OVER() AS total
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE LOWER(u.name) = LOWER($1)
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := repository.db.Query(context, query, authorName, limit, skip)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "")
	}
	defer rows.Close()

	return scanPostPage(rows)
}

/*
ListFrontpage returns posts from the user's subscribed communities.

Parameters:
  - context: context.Context
  - userID: string
  - limit, skip: int

Returns:
  - []*Post: Page of posts, newest first
  - int: Total matching count
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) ListFrontpage(context context.Context, userID string, limit, skip int) ([]*Post, int, error) {
	const query = `
		SELECT p.id, p.author_id, u.name, p.community, p.title, p.content, p.created_at,
			COUNT(*) OVER() AS total
		FROM posts p
		JOIN users u ON u.id = p.author_id
		JOIN subscriptions s ON s.community = p.community AND s.user_id = $1
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := repository.db.Query(context, query, userID, limit, skip)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "")
	}
	defer rows.Close()

	return scanPostPage(rows)
}

// scanPostPage hydrates a windowed post query that carries a trailing total.
func scanPostPage(rows pgx.Rows) ([]*Post, int, error) {
	var posts []*Post
	var total int
	for rows.Next() {
		post := &Post{}
		err := rows.Scan(
			&post.ID, &post.AuthorID, &post.AuthorName, &post.Community,
			&post.Title, &post.Content, &post.CreatedAt, &total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "")
		}
		posts = append(posts, post)
	}
	return posts, total, rows.Err()
}

// # Post Mutation

/*
Create inserts a new post row.

Parameters:
  - context: context.Context
  - post: *Post

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, post *Post) error {
	const query = `
		INSERT INTO posts (id, author_id, community, title, content, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`
	err := repository.db.QueryRow(context, query,
		post.ID, post.AuthorID, post.Community, post.Title, post.Content,
	).Scan(&post.CreatedAt)

	return dberr.Wrap(err, "")
}

/*
Delete removes a post row.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	const query = `DELETE FROM posts WHERE id = $1`
	_, err := repository.db.Exec(context, query, id)
	return dberr.Wrap(err, "")
}
