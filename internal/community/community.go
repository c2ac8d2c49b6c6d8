// Copyright (c) 2026 Mesh Network. All rights reserved.

/*
Package community implements communities and membership subscriptions.

A community is identified by its slug-normalized name, unique regardless of
casing. Subscriptions relate users to communities many-to-many with no payload
beyond the pair; subscribing to a public community also awards the scoped
posting capability through the permission resolver.
*/
package community

import "time"

// # Domain Entities

// Community represents a topic space users can subscribe and post to.
type Community struct {
	// Name is the canonical slug and primary key ("retro-gaming").
	Name string `json:"name"`
	// DisplayName preserves the founder's original casing ("Retro Gaming").
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	// Public communities accept subscriptions from any verified member.
	Public    bool      `json:"public"`
	CreatedAt time.Time `json:"created_at"`
}

// Subscription is the bare (user, community) membership pair.
type Subscription struct {
	UserID    string    `json:"user_id"`
	Community string    `json:"community"`
	CreatedAt time.Time `json:"created_at"`
}

// # Field Identifiers

const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldPublic      = "public"
	FieldMessage     = "message"
)

// MaxNameLen bounds the community name before slug normalization.
const MaxNameLen = 30

// MaxDescriptionLen bounds the free-text description.
const MaxDescriptionLen = 500
