// Copyright (c) 2026 Mesh Network. All rights reserved.

package community

import (
	"context"
	"log/slog"

	"github.com/meshnetwork/mesh/internal/permission"
	"github.com/meshnetwork/mesh/internal/platform/apperr"
	"github.com/meshnetwork/mesh/internal/platform/validate"
	"github.com/meshnetwork/mesh/pkg/slug"
)

// # Service Layer

// Service orchestrates community lifecycle and subscription rules.
type Service struct {
	repo        Repository
	permissions *permission.Resolver
	logger      *slog.Logger
}

// NewService constructs a new community [Service].
func NewService(repo Repository, permissions *permission.Resolver, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		permissions: permissions,
		logger:      logger,
	}
}

// # Community Lifecycle

// CreateInput holds the data for founding a community.
type CreateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

/*
Create founds a new community and makes the creator its moderator.

Authorization: requires the create_community capability (admins escalate).
The name is slug-normalized before storage, so "Retro Gaming" and
"retro-gaming" are the same community. A Conflict from the moderator grant
(e.g. the creator is an admin, who already moderates everything) is
discarded; founding must not fail over a redundant grant.

Parameters:
  - context: context.Context
  - principalID: string
  - input: CreateInput

Returns:
  - *Community: Created entity with the canonical name
  - error: Forbidden, Validation, Conflict (name taken), or storage errors
*/
func (service *Service) Create(context context.Context, principalID string, input CreateInput) (*Community, error) {
	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).MaxLen(FieldName, input.Name, MaxNameLen)
	validator.MaxLen(FieldDescription, input.Description, MaxDescriptionLen)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	canonical := slug.From(input.Name)
	if canonical == "" {
		return nil, apperr.ValidationError("Invalid community name",
			apperr.FieldError{Field: FieldName, Message: "must contain letters or digits"})
	}

	allowed, err := service.permissions.CanCreateCommunity(context, principalID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.Forbidden("No permission")
	}

	community := &Community{
		Name:        canonical,
		DisplayName: input.Name,
		Description: input.Description,
		Public:      input.Public,
	}

	if err := service.repo.Create(context, community); err != nil {
		return nil, err
	}

	if err := service.permissions.GiveModerator(context, principalID, community.Name); err != nil && !apperr.IsConflict(err) {
		return nil, err
	}

	service.logger.Info("community_created",
		slog.String("community", community.Name),
		slog.String("creator_id", principalID),
	)

	return community, nil
}

/*
Get retrieves a community by name, any casing.

Parameters:
  - context: context.Context
  - name: string

Returns:
  - *Community: Hydrated entity
  - error: NotFound or storage errors
*/
func (service *Service) Get(context context.Context, name string) (*Community, error) {
	community, err := service.repo.FindByName(context, slug.From(name))
	if err != nil {
		return nil, apperr.NotFound("Community")
	}
	return community, nil
}

/*
List returns public communities, newest first.

Parameters:
  - context: context.Context
  - limit, skip: int

Returns:
  - []*Community: Page of communities
  - int: Total count
  - error: Storage errors
*/
func (service *Service) List(context context.Context, limit, skip int) ([]*Community, int, error) {
	return service.repo.List(context, limit, skip)
}

/*
Delete removes a community; its posts and subscriptions cascade away.

Authorization: moderators of the community only (admins escalate).
Existence is confirmed before the permission check, so a missing community
reports 404 rather than leaking through a generic denial.

Parameters:
  - context: context.Context
  - principalID: string
  - name: string

Returns:
  - error: NotFound, Forbidden, or storage errors
*/
func (service *Service) Delete(context context.Context, principalID, name string) error {
	community, err := service.Get(context, name)
	if err != nil {
		return err
	}

	allowed, err := service.permissions.IsModerator(context, principalID, community.Name)
	if err != nil {
		return err
	}
	if !allowed {
		return apperr.Forbidden("No permission")
	}

	if err := service.repo.Delete(context, community.Name); err != nil {
		return err
	}

	service.logger.Info("community_deleted",
		slog.String("community", community.Name),
		slog.String("actor_id", principalID),
	)

	return nil
}

// # Subscriptions

/*
Subscribe adds the principal to a public community and best-effort awards
the community-scoped posting capability.

Rules:
  - unknown community → NotFound
  - private community → Forbidden
  - already subscribed → Conflict ("Already subscribed")

The capability grant afterwards is deliberately best-effort: a Conflict from
the grant (already held from an earlier subscription, or the principal
moderates the community) is discarded, and any other grant failure is logged
without undoing the subscription. Subscription success must never be blocked
by a capability-grant conflict.

Parameters:
  - context: context.Context
  - principalID: string
  - name: string

Returns:
  - error: NotFound, Forbidden, Conflict, or storage errors
*/
func (service *Service) Subscribe(context context.Context, principalID, name string) error {
	community, err := service.Get(context, name)
	if err != nil {
		return err
	}

	if !community.Public {
		return apperr.Forbidden("No permission")
	}

	if err := service.repo.Subscribe(context, principalID, community.Name); err != nil {
		return err
	}

	if err := service.permissions.GiveCreatePostIn(context, principalID, community.Name); err != nil && !apperr.IsConflict(err) {
		service.logger.Warn("subscription_grant_failed",
			slog.String("community", community.Name),
			slog.String("user_id", principalID),
			slog.Any("error", err),
		)
	}

	service.logger.Info("user_subscribed",
		slog.String("community", community.Name),
		slog.String("user_id", principalID),
	)

	return nil
}

/*
Unsubscribe removes the membership pair.

The scoped posting capability is NOT revoked — grants only disappear with the
principal. Re-subscribing later simply finds the grant already in place.

Parameters:
  - context: context.Context
  - principalID: string
  - name: string

Returns:
  - error: NotFound (community or subscription), storage errors
*/
func (service *Service) Unsubscribe(context context.Context, principalID, name string) error {
	community, err := service.Get(context, name)
	if err != nil {
		return err
	}

	if err := service.repo.Unsubscribe(context, principalID, community.Name); err != nil {
		return err
	}

	service.logger.Info("user_unsubscribed",
		slog.String("community", community.Name),
		slog.String("user_id", principalID),
	)

	return nil
}

/*
ListSubscribed returns the principal's communities.

Parameters:
  - context: context.Context
  - principalID: string

Returns:
  - []*Community: Subscribed communities
  - error: Storage errors
*/
func (service *Service) ListSubscribed(context context.Context, principalID string) ([]*Community, error) {
	return service.repo.ListSubscribedBy(context, principalID)
}
