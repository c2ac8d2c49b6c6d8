// Copyright (c) 2026 Mesh Network. All rights reserved.

package permission

import (
	"context"

	"github.com/meshnetwork/mesh/internal/platform/apperr"
)

// # Permission Resolver

// Resolver computes authorization decisions from the capability [Store].
//
// Every predicate except [Resolver.CanCreatePost] escalates through admin: a
// principal holding the admin capability passes the check without holding the
// direct grant. CanCreatePost is the deliberate exception — the global posting
// gate binds admins too, so even the bootstrap admin cannot post before the
// verification bundle granted create_post.
type Resolver struct {
	store Store
}

// NewResolver constructs a [Resolver] over the given capability store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// resolve is the single escalation point: a capability is satisfied when held
// directly or when the principal holds admin. Checks that must not escalate
// query the store directly instead of going through here.
func (resolver *Resolver) resolve(ctx context.Context, principalID string, capability Capability) (bool, error) {
	held, err := resolver.store.Has(ctx, principalID, capability)
	if err != nil || held {
		return held, err
	}

	if capability.Kind == KindAdmin {
		return false, nil
	}

	return resolver.store.Has(ctx, principalID, Admin())
}

// # Decision Predicates

// IsAdmin reports whether the principal holds the admin capability.
func (resolver *Resolver) IsAdmin(ctx context.Context, principalID string) (bool, error) {
	return resolver.store.Has(ctx, principalID, Admin())
}

// CanCreateCommunity reports whether the principal may found communities.
func (resolver *Resolver) CanCreateCommunity(ctx context.Context, principalID string) (bool, error) {
	return resolver.resolve(ctx, principalID, CreateCommunity())
}

// IsModerator reports whether the principal moderates the community.
func (resolver *Resolver) IsModerator(ctx context.Context, principalID, community string) (bool, error) {
	return resolver.resolve(ctx, principalID, Moderator(community))
}

// CanUploadImage reports whether the principal may set an avatar image.
func (resolver *Resolver) CanUploadImage(ctx context.Context, principalID string) (bool, error) {
	return resolver.resolve(ctx, principalID, UploadImage())
}

// CanCreatePost reports whether the principal passed the global posting gate.
// No admin escalation here; the direct grant is required.
func (resolver *Resolver) CanCreatePost(ctx context.Context, principalID string) (bool, error) {
	return resolver.store.Has(ctx, principalID, CreatePost())
}

/*
CanCreatePostIn reports whether the principal may post in the community.

The check is a short-circuiting AND: the global create_post grant is required
first, and if absent the scoped lookups are never issued. Then any of the
community-scoped grant, moderator grant, or admin satisfies the second leg —
admin is checked last to keep the common (subscriber) path at two store
round trips.

Parameters:
  - ctx: context.Context
  - principalID: string
  - community: string (community name, any casing)

Returns:
  - bool: Authorization verdict
  - error: Store retrieval failures
*/
func (resolver *Resolver) CanCreatePostIn(ctx context.Context, principalID, community string) (bool, error) {

	// Leg 1: the global posting gate.
	globallyAllowed, err := resolver.store.Has(ctx, principalID, CreatePost())
	if err != nil || !globallyAllowed {
		return false, err
	}

	// Leg 2: scoped grant, then moderator, then admin.
	scoped, err := resolver.store.Has(ctx, principalID, CreatePostIn(community))
	if err != nil || scoped {
		return scoped, err
	}

	moderator, err := resolver.store.Has(ctx, principalID, Moderator(community))
	if err != nil || moderator {
		return moderator, err
	}

	return resolver.store.Has(ctx, principalID, Admin())
}

// ListCapabilities returns the principal's direct grants for display on the
// own-profile payload.
func (resolver *Resolver) ListCapabilities(ctx context.Context, principalID string) ([]Capability, error) {
	return resolver.store.ListByPrincipal(ctx, principalID)
}

// # Grant Lifecycle

// give runs the shared give semantics: evaluate the predicate that guards the
// capability, fail with Conflict when it is already satisfied, otherwise
// insert exactly one grant row.
func (resolver *Resolver) give(ctx context.Context, principalID string, capability Capability, satisfied bool, err error) error {
	if err != nil {
		return err
	}

	if satisfied {
		return apperr.Conflict("Capability already granted")
	}

	return resolver.store.Grant(ctx, principalID, capability)
}

// GiveAdmin grants the admin capability. Only the bootstrap flow calls this.
func (resolver *Resolver) GiveAdmin(ctx context.Context, principalID string) error {
	satisfied, err := resolver.IsAdmin(ctx, principalID)
	return resolver.give(ctx, principalID, Admin(), satisfied, err)
}

// GiveCreateCommunity grants the community-founding capability.
// Conflicts when already held directly or via admin.
func (resolver *Resolver) GiveCreateCommunity(ctx context.Context, principalID string) error {
	satisfied, err := resolver.CanCreateCommunity(ctx, principalID)
	return resolver.give(ctx, principalID, CreateCommunity(), satisfied, err)
}

// GiveModerator grants moderation rights over a community.
func (resolver *Resolver) GiveModerator(ctx context.Context, principalID, community string) error {
	satisfied, err := resolver.IsModerator(ctx, principalID, community)
	return resolver.give(ctx, principalID, Moderator(community), satisfied, err)
}

// GiveUploadImage grants the avatar-upload capability.
func (resolver *Resolver) GiveUploadImage(ctx context.Context, principalID string) error {
	satisfied, err := resolver.CanUploadImage(ctx, principalID)
	return resolver.give(ctx, principalID, UploadImage(), satisfied, err)
}

// GiveCreatePost grants the global posting capability. Mirrors the predicate:
// no admin escalation, so an admin without the direct grant can receive it.
func (resolver *Resolver) GiveCreatePost(ctx context.Context, principalID string) error {
	satisfied, err := resolver.CanCreatePost(ctx, principalID)
	return resolver.give(ctx, principalID, CreatePost(), satisfied, err)
}

/*
GiveCreatePostIn grants community-scoped posting rights.

The guarding predicate is the scoped leg only (scoped grant OR moderator OR
admin) — the global create_post gate is deliberately not consulted, so an
unverified subscriber still receives the scoped grant and becomes able to post
the moment verification unlocks create_post.

Parameters:
  - ctx: context.Context
  - principalID: string
  - community: string

Returns:
  - error: Conflict when already satisfied, or persistence failures
*/
func (resolver *Resolver) GiveCreatePostIn(ctx context.Context, principalID, community string) error {

	satisfied, err := resolver.store.Has(ctx, principalID, CreatePostIn(community))
	if err != nil {
		return err
	}

	if !satisfied {
		satisfied, err = resolver.store.Has(ctx, principalID, Moderator(community))
		if err != nil {
			return err
		}
	}

	if !satisfied {
		satisfied, err = resolver.store.Has(ctx, principalID, Admin())
		if err != nil {
			return err
		}
	}

	return resolver.give(ctx, principalID, CreatePostIn(community), satisfied, nil)
}
