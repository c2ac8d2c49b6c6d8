// Copyright (c) 2026 Mesh Network. All rights reserved.

package search

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meshnetwork/mesh/internal/community"
	"github.com/meshnetwork/mesh/internal/platform/dberr"
	"github.com/meshnetwork/mesh/internal/post"
	"github.com/meshnetwork/mesh/internal/users/auth"
)

// PostgresRepository implements [Repository] with ILIKE substring matches.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed search store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// pattern widens the raw term into a contains match.
func pattern(term string) string {
	return "%" + term + "%"
}

// # Per-Entity Queries

func (repository *PostgresRepository) SearchUsers(context context.Context, term string, limit, skip int) ([]*auth.Profile, int, error) {
	const query = `
		SELECT id, name, display_name, chosen_name, image, created_at,
			COUNT(*) OVER() AS total
		FROM users
		WHERE name ILIKE $1 OR display_name ILIKE $1
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := repository.db.Query(context, query, pattern(term), limit, skip)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "")
	}
	defer rows.Close()

	var profiles []*auth.Profile
	var total int
	for rows.Next() {
		profile := &auth.Profile{}
		err := rows.Scan(
			&profile.ID, &profile.Name, &profile.DisplayName, &profile.ChosenName,
			&profile.Image, &profile.CreatedAt, &total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "")
		}
		profiles = append(profiles, profile)
	}
	return profiles, total, rows.Err()
}

func (repository *PostgresRepository) SearchCommunities(context context.Context, term string, limit, skip int) ([]*community.Community, int, error) {
	const query = `
		SELECT name, display_name, description, public, created_at,
			COUNT(*) OVER() AS total
		FROM communities
		WHERE public AND (name ILIKE $1 OR display_name ILIKE $1)
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := repository.db.Query(context, query, pattern(term), limit, skip)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "")
	}
	defer rows.Close()

	var communities []*community.Community
	var total int
	for rows.Next() {
		entity := &community.Community{}
		err := rows.Scan(
			&entity.Name, &entity.DisplayName, &entity.Description,
			&entity.Public, &entity.CreatedAt, &total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "")
		}
		communities = append(communities, entity)
	}
	return communities, total, rows.Err()
}

func (repository *PostgresRepository) SearchPosts(context context.Context, term string, limit, skip int) ([]*post.Post, int, error) {
	const query = `
		SELECT p.id, p.author_id, u.name, p.community, p.title, p.content, p.created_at,
			COUNT(*) OVER() AS total
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.title ILIKE $1
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := repository.db.Query(context, query, pattern(term), limit, skip)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "")
	}
	defer rows.Close()

	var posts []*post.Post
	var total int
	for rows.Next() {
		entity := &post.Post{}
		err := rows.Scan(
			&entity.ID, &entity.AuthorID, &entity.AuthorName, &entity.Community,
			&entity.Title, &entity.Content, &entity.CreatedAt, &total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "")
		}
		posts = append(posts, entity)
	}
	return posts, total, rows.Err()
}
