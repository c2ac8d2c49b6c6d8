// Copyright (c) 2026 Mesh Network. All rights reserved.

package community

import "context"

// # Community Data Access

// Repository defines the data access contract for communities and
// subscriptions.
type Repository interface {

	/*
		FindByName returns the community with the given canonical name.

		Parameters:
		  - context: context.Context
		  - name: string (slug)

		Returns:
		  - *Community: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByName(context context.Context, name string) (*Community, error)

	/*
		List returns public communities, newest first, with total count.

		Parameters:
		  - context: context.Context
		  - limit, skip: int

		Returns:
		  - []*Community: Page of communities
		  - int: Total matching count
		  - error: Database retrieval failures
	*/
	List(context context.Context, limit, skip int) ([]*Community, int, error)

	/*
		Create persists a new community.

		Parameters:
		  - context: context.Context
		  - community: *Community

		Returns:
		  - error: Conflict on duplicate name, persistence failures
	*/
	Create(context context.Context, community *Community) error

	/*
		Delete removes the community row. Posts and subscriptions referencing
		it are removed by the database cascade.

		Parameters:
		  - context: context.Context
		  - name: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, name string) error

	/*
		Subscribe inserts the membership pair.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - name: string

		Returns:
		  - error: Conflict when already subscribed, persistence failures
	*/
	Subscribe(context context.Context, userID, name string) error

	/*
		Unsubscribe removes the membership pair.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - name: string

		Returns:
		  - error: NotFound when no subscription exists, persistence failures
	*/
	Unsubscribe(context context.Context, userID, name string) error

	/*
		IsSubscribed reports whether the membership pair exists.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - name: string

		Returns:
		  - bool: True if subscribed
		  - error: Database retrieval failures
	*/
	IsSubscribed(context context.Context, userID, name string) (bool, error)

	/*
		ListSubscribedBy returns every community the user is subscribed to.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []*Community: Subscribed communities, newest subscription first
		  - error: Database retrieval failures
	*/
	ListSubscribedBy(context context.Context, userID string) ([]*Community, error)
}
