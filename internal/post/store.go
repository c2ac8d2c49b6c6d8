// Copyright (c) 2026 Mesh Network. All rights reserved.

package post

import "context"

// # Post Data Access

// Repository defines the data access contract for posts.
type Repository interface {

	/*
		FindByID returns the post with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Post: Hydrated entity with author name
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Post, error)

	/*
		Create persists a new post.

		Parameters:
		  - context: context.Context
		  - post: *Post

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, post *Post) error

	/*
		Delete removes a post row.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id string) error

	/*
		ListByCommunity returns a community's posts, newest first.

		Parameters:
		  - context: context.Context
		  - community: string (canonical name)
		  - limit, skip: int

		Returns:
		  - []*Post: Page of posts
		  - int: Total matching count
		  - error: Database retrieval failures
	*/
	ListByCommunity(context context.Context, community string, limit, skip int) ([]*Post, int, error)

	/*
		ListByAuthor returns a user's posts by handle, newest first.

		Parameters:
		  - context: context.Context
		  - authorName: string (any casing)
		  - limit, skip: int

		Returns:
		  - []*Post: Page of posts
		  - int: Total matching count
		  - error: Database retrieval failures
	*/
	ListByAuthor(context context.Context, authorName string, limit, skip int) ([]*Post, int, error)

	/*
		ListFrontpage returns posts from the user's subscribed communities,
		newest first.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - limit, skip: int

		Returns:
		  - []*Post: Page of posts
		  - int: Total matching count
		  - error: Database retrieval failures
	*/
	ListFrontpage(context context.Context, userID string, limit, skip int) ([]*Post, int, error)
}
