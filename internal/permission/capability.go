// Copyright (c) 2026 Mesh Network. All rights reserved.

/*
Package permission implements the capability-based authorization core of Mesh.

A capability is a named permission a principal either holds or does not hold —
no quantity, no expiry. Capabilities are global (admin, create_community,
upload_image, create_post) or scoped to a single community (moderator,
community posting rights). The package provides:

  - Capability: a tagged value type replacing raw permission strings.
  - Store: the persistence contract for (principal, capability) grants.
  - Resolver: the decision logic, including admin escalation and the
    grant lifecycle ("give") operations.

# Architecture

This layer is the single authority for "may principal P do X". Domain services
(community, post, users) never inspect grant rows themselves; they ask the
[Resolver] and act on its verdict.
*/
package permission

import (
	"fmt"
	"strings"

	"github.com/meshnetwork/mesh/pkg/slug"
)

// # Capability Model

// Kind discriminates the capability variants.
type Kind uint8

const (
	// KindAdmin is the superuser capability. It satisfies every escalating
	// predicate and is only ever granted to the bootstrap admin principal.
	KindAdmin Kind = iota + 1

	// KindCreateCommunity allows founding new communities.
	KindCreateCommunity

	// KindUploadImage allows attaching an avatar image reference.
	KindUploadImage

	// KindCreatePost is the global posting gate. Without it no post can be
	// created anywhere, admin or not.
	KindCreatePost

	// KindModerator is scoped: moderation rights over one community.
	KindModerator

	// KindCreatePostIn is scoped: posting rights within one community,
	// acquired by subscribing to it.
	KindCreatePostIn
)

// Capability is a tagged permission value.
//
// Scoped kinds (Moderator, CreatePostIn) carry the community slug they apply
// to; global kinds leave it empty. Using a struct instead of concatenated
// strings keeps community names out of the token grammar, so a community
// called "moderator_x" cannot collide with or forge a grant.
type Capability struct {
	Kind      Kind
	Community string
}

// # Constructors

// Admin returns the superuser capability.
func Admin() Capability { return Capability{Kind: KindAdmin} }

// CreateCommunity returns the community-founding capability.
func CreateCommunity() Capability { return Capability{Kind: KindCreateCommunity} }

// UploadImage returns the avatar-upload capability.
func UploadImage() Capability { return Capability{Kind: KindUploadImage} }

// CreatePost returns the global posting capability.
func CreatePost() Capability { return Capability{Kind: KindCreatePost} }

// Moderator returns the moderation capability scoped to a community.
// The community name is slug-normalized so lookups are case-insensitive.
func Moderator(community string) Capability {
	return Capability{Kind: KindModerator, Community: slug.From(community)}
}

// CreatePostIn returns the posting capability scoped to a community.
func CreatePostIn(community string) Capability {
	return Capability{Kind: KindCreatePostIn, Community: slug.From(community)}
}

// # Storage Encoding

// Token prefixes for the scoped capability kinds.
const (
	tokenAdmin           = "admin"
	tokenCreateCommunity = "create_community"
	tokenUploadImage     = "upload_image"
	tokenCreatePost      = "create_post"
	prefixModerator      = "moderator_"
	prefixCreatePostIn   = "create_post_community_"
)

/*
Token renders the stable storage encoding of the capability.

The encoding is the row value persisted in the capability_grant table and the
form exposed on the "own profile" payload:

	admin | create_community | upload_image | create_post |
	moderator_<community> | create_post_community_<community>

Returns:
  - string: Storage token, or "" for the zero value
*/
func (c Capability) Token() string {
	switch c.Kind {
	case KindAdmin:
		return tokenAdmin
	case KindCreateCommunity:
		return tokenCreateCommunity
	case KindUploadImage:
		return tokenUploadImage
	case KindCreatePost:
		return tokenCreatePost
	case KindModerator:
		return prefixModerator + c.Community
	case KindCreatePostIn:
		return prefixCreatePostIn + c.Community
	}
	return ""
}

// String implements fmt.Stringer for logging.
func (c Capability) String() string { return c.Token() }

// Scoped reports whether the capability applies to a single community.
func (c Capability) Scoped() bool {
	return c.Kind == KindModerator || c.Kind == KindCreatePostIn
}

/*
ParseToken decodes a storage token back into a [Capability].

The scoped prefixes overlap textually ("create_post" is a prefix of
"create_post_community_"), so prefix matches are checked before the bare
token comparisons would be reached via the longest form first.

Parameters:
  - token: string storage encoding

Returns:
  - Capability: Decoded value
  - error: Unknown or malformed token
*/
func ParseToken(token string) (Capability, error) {
	// Longest prefixes first: create_post_community_ shadows create_post.
	if community, found := strings.CutPrefix(token, prefixCreatePostIn); found {
		if community == "" {
			return Capability{}, fmt.Errorf("permission: scoped token %q missing community", token)
		}
		return Capability{Kind: KindCreatePostIn, Community: community}, nil
	}

	if community, found := strings.CutPrefix(token, prefixModerator); found {
		if community == "" {
			return Capability{}, fmt.Errorf("permission: scoped token %q missing community", token)
		}
		return Capability{Kind: KindModerator, Community: community}, nil
	}

	switch token {
	case tokenAdmin:
		return Admin(), nil
	case tokenCreateCommunity:
		return CreateCommunity(), nil
	case tokenUploadImage:
		return UploadImage(), nil
	case tokenCreatePost:
		return CreatePost(), nil
	}

	return Capability{}, fmt.Errorf("permission: unknown capability token %q", token)
}
