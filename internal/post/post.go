// Copyright (c) 2026 Mesh Network. All rights reserved.

/*
Package post implements posts inside communities.

Creating a post is the most heavily gated write on the platform: it requires
the global posting capability (granted at email verification) AND a
community-scoped right (subscription grant, moderator, or admin). Deletion is
open to the author and to the community's moderators.
*/
package post

import "time"

// # Domain Entities

// Post is a single piece of content published in a community.
type Post struct {
	ID       string `json:"id"`
	AuthorID string `json:"author_id"`
	// AuthorName is denormalized at read time for display.
	AuthorName string    `json:"author_name,omitempty"`
	Community  string    `json:"community"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// # Field Identifiers

const (
	FieldTitle     = "title"
	FieldContent   = "content"
	FieldCommunity = "community"
)

const (
	// MaxTitleLen bounds the post title.
	MaxTitleLen = 300
	// MaxContentLen bounds the post body.
	MaxContentLen = 10000
)
