// Copyright (c) 2026 Mesh Network. All rights reserved.

/*
Package search provides case-insensitive substring search over users,
communities, and posts, either per entity or aggregated.
*/
package search

import (
	"context"

	"github.com/meshnetwork/mesh/internal/community"
	"github.com/meshnetwork/mesh/internal/post"
	"github.com/meshnetwork/mesh/internal/users/auth"
)

// # Search Data Access

// Repository defines the search queries against the backing store.
type Repository interface {

	/*
		SearchUsers matches user handles and display names.

		Parameters:
		  - context: context.Context
		  - term: string (raw query, matched as substring)
		  - limit, skip: int

		Returns:
		  - []*auth.Profile: Public profiles, handle order
		  - int: Total matching count
		  - error: Database retrieval failures
	*/
	SearchUsers(context context.Context, term string, limit, skip int) ([]*auth.Profile, int, error)

	/*
		SearchCommunities matches public community names and display names.

		Parameters:
		  - context: context.Context
		  - term: string
		  - limit, skip: int

		Returns:
		  - []*community.Community: Name order
		  - int: Total matching count
		  - error: Database retrieval failures
	*/
	SearchCommunities(context context.Context, term string, limit, skip int) ([]*community.Community, int, error)

	/*
		SearchPosts matches post titles.

		Parameters:
		  - context: context.Context
		  - term: string
		  - limit, skip: int

		Returns:
		  - []*post.Post: Newest first
		  - int: Total matching count
		  - error: Database retrieval failures
	*/
	SearchPosts(context context.Context, term string, limit, skip int) ([]*post.Post, int, error)
}
