// Copyright (c) 2026 Mesh Network. All rights reserved.

package search

import (
	"context"
	"log/slog"

	"github.com/meshnetwork/mesh/internal/community"
	"github.com/meshnetwork/mesh/internal/platform/validate"
	"github.com/meshnetwork/mesh/internal/post"
	"github.com/meshnetwork/mesh/internal/users/auth"
)

// FieldQuery names the search term parameter in validation errors.
const FieldQuery = "q"

// aggregateLimit caps each entity section of the combined result.
const aggregateLimit = 5

// # Service Layer

// Service runs search queries and assembles aggregate results.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new search [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// validateTerm rejects empty queries before they hit the store.
func validateTerm(term string) error {
	validator := &validate.Validator{}
	validator.Required(FieldQuery, term)
	return validator.Err()
}

// # Per-Entity Search

/*
Users returns user profiles matching the term.

Parameters:
  - context: context.Context
  - term: string
  - limit, skip: int

Returns:
  - []*auth.Profile: Page of profiles
  - int: Total matching count
  - error: Validation or storage errors
*/
func (service *Service) Users(context context.Context, term string, limit, skip int) ([]*auth.Profile, int, error) {
	if err := validateTerm(term); err != nil {
		return nil, 0, err
	}
	return service.repo.SearchUsers(context, term, limit, skip)
}

/*
Communities returns public communities matching the term.

Parameters:
  - context: context.Context
  - term: string
  - limit, skip: int

Returns:
  - []*community.Community: Page of communities
  - int: Total matching count
  - error: Validation or storage errors
*/
func (service *Service) Communities(context context.Context, term string, limit, skip int) ([]*community.Community, int, error) {
	if err := validateTerm(term); err != nil {
		return nil, 0, err
	}
	return service.repo.SearchCommunities(context, term, limit, skip)
}

/*
Posts returns posts whose title matches the term.

Parameters:
  - context: context.Context
  - term: string
  - limit, skip: int

Returns:
  - []*post.Post: Page of posts
  - int: Total matching count
  - error: Validation or storage errors
*/
func (service *Service) Posts(context context.Context, term string, limit, skip int) ([]*post.Post, int, error) {
	if err := validateTerm(term); err != nil {
		return nil, 0, err
	}
	return service.repo.SearchPosts(context, term, limit, skip)
}

// # Aggregate Search

// AggregateResult bundles the top matches of every entity type.
type AggregateResult struct {
	Users       []*auth.Profile        `json:"users"`
	Communities []*community.Community `json:"communities"`
	Posts       []*post.Post           `json:"posts"`
}

/*
Aggregate returns the top matches across all entity types. Each section is
capped; callers wanting more page through the per-entity endpoints.

Parameters:
  - context: context.Context
  - term: string

Returns:
  - *AggregateResult: Top matches per entity
  - error: Validation or storage errors
*/
func (service *Service) Aggregate(context context.Context, term string) (*AggregateResult, error) {
	if err := validateTerm(term); err != nil {
		return nil, err
	}

	users, _, err := service.repo.SearchUsers(context, term, aggregateLimit, 0)
	if err != nil {
		return nil, err
	}

	communities, _, err := service.repo.SearchCommunities(context, term, aggregateLimit, 0)
	if err != nil {
		return nil, err
	}

	posts, _, err := service.repo.SearchPosts(context, term, aggregateLimit, 0)
	if err != nil {
		return nil, err
	}

	return &AggregateResult{Users: users, Communities: communities, Posts: posts}, nil
}
