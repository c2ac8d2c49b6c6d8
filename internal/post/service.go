// Copyright (c) 2026 Mesh Network. All rights reserved.

package post

import (
	"context"
	"log/slog"

	"github.com/meshnetwork/mesh/internal/community"
	"github.com/meshnetwork/mesh/internal/permission"
	"github.com/meshnetwork/mesh/internal/platform/apperr"
	"github.com/meshnetwork/mesh/internal/platform/validate"
	"github.com/meshnetwork/mesh/pkg/uuid"
)

// # Contracts & Types

// CommunityDirectory resolves community names to entities. Satisfied by the
// community service; an interface so tests can stub it.
type CommunityDirectory interface {
	// Get returns the community by name, any casing, or NotFound.
	Get(ctx context.Context, name string) (*community.Community, error)
}

// # Service Layer

// Service orchestrates the post lifecycle and its authorization gates.
type Service struct {
	repo        Repository
	communities CommunityDirectory
	permissions *permission.Resolver
	logger      *slog.Logger
}

// NewService constructs a new post [Service].
func NewService(repo Repository, communities CommunityDirectory, permissions *permission.Resolver, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		communities: communities,
		permissions: permissions,
		logger:      logger,
	}
}

// # Post Lifecycle

// CreateInput holds the data for publishing a post.
type CreateInput struct {
	Community string `json:"community"`
	Title     string `json:"title"`
	Content   string `json:"content"`
}

/*
Create publishes a post in a community.

Authorization: the target community must exist (404 otherwise, checked
first), and the principal must pass CanCreatePostIn — the global posting
gate plus a community-scoped right. A failed gate is a plain "No permission";
community existence was already confirmed, so nothing leaks.

Parameters:
  - context: context.Context
  - principalID: string
  - input: CreateInput

Returns:
  - *Post: Created entity
  - error: Validation, NotFound, Forbidden, or storage errors
*/
func (service *Service) Create(context context.Context, principalID string, input CreateInput) (*Post, error) {
	validator := &validate.Validator{}
	validator.Required(FieldCommunity, input.Community)
	validator.Required(FieldTitle, input.Title).MaxLen(FieldTitle, input.Title, MaxTitleLen)
	validator.MaxLen(FieldContent, input.Content, MaxContentLen)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	target, err := service.communities.Get(context, input.Community)
	if err != nil {
		return nil, err
	}

	allowed, err := service.permissions.CanCreatePostIn(context, principalID, target.Name)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("No permission")
	}

	post := &Post{
		ID:        uuid.New(),
		AuthorID:  principalID,
		Community: target.Name,
		Title:     input.Title,
		Content:   input.Content,
	}

	if err := service.repo.Create(context, post); err != nil {
		return nil, err
	}

	service.logger.Info("post_created",
		slog.String("post_id", post.ID),
		slog.String("community", post.Community),
		slog.String("author_id", principalID),
	)

	return post, nil
}

/*
Get retrieves a post by ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Post: Hydrated entity
  - error: NotFound or storage errors
*/
func (service *Service) Get(context context.Context, id string) (*Post, error) {
	post, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, apperr.NotFound("Post")
	}
	return post, nil
}

/*
Delete removes a post.

Authorization: the author, or a moderator of the post's community (admins
escalate through the moderator check).

Parameters:
  - context: context.Context
  - principalID: string
  - id: string

Returns:
  - error: NotFound, Forbidden, or storage errors
*/
func (service *Service) Delete(context context.Context, principalID, id string) error {
	post, err := service.Get(context, id)
	if err != nil {
		return err
	}

	allowed := post.AuthorID == principalID
	if !allowed {
		allowed, err = service.permissions.IsModerator(context, principalID, post.Community)
		if err != nil {
			return err
		}
	}
	if !allowed {
		return apperr.Forbidden("No permission")
	}

	if err := service.repo.Delete(context, post.ID); err != nil {
		return err
	}

	service.logger.Info("post_deleted",
		slog.String("post_id", post.ID),
		slog.String("actor_id", principalID),
	)

	return nil
}

// # Listings

/*
ListByCommunity returns a community's posts, newest first.

Parameters:
  - context: context.Context
  - name: string (community, any casing)
  - limit, skip: int

Returns:
  - []*Post: Page of posts
  - int: Total matching count
  - error: NotFound (community) or storage errors
*/
func (service *Service) ListByCommunity(context context.Context, name string, limit, skip int) ([]*Post, int, error) {
	target, err := service.communities.Get(context, name)
	if err != nil {
		return nil, 0, err
	}
	return service.repo.ListByCommunity(context, target.Name, limit, skip)
}

/*
ListByAuthor returns a user's posts by handle, newest first.

Parameters:
  - context: context.Context
  - authorName: string
  - limit, skip: int

Returns:
  - []*Post: Page of posts
  - int: Total matching count
  - error: Storage errors
*/
func (service *Service) ListByAuthor(context context.Context, authorName string, limit, skip int) ([]*Post, int, error) {
	return service.repo.ListByAuthor(context, authorName, limit, skip)
}

/*
Frontpage returns posts from the principal's subscribed communities.

Parameters:
  - context: context.Context
  - principalID: string
  - limit, skip: int

Returns:
  - []*Post: Page of posts, newest first
  - int: Total matching count
  - error: Storage errors
*/
func (service *Service) Frontpage(context context.Context, principalID string, limit, skip int) ([]*Post, int, error) {
	return service.repo.ListFrontpage(context, principalID, limit, skip)
}
