// Copyright (c) 2026 Mesh Network. All rights reserved.

package permission

import "context"

// # Grant Data Access

// Store defines the persistence contract for capability grants.
//
// A grant is a bare (principal, capability) pair. There is no removal
// operation: grants disappear only when the owning principal row is deleted
// and the database cascades.
type Store interface {

	/*
		Has reports whether the principal holds the exact capability.

		Parameters:
		  - context: context.Context
		  - principalID: string
		  - capability: Capability

		Returns:
		  - bool: True if the grant row exists
		  - error: Database retrieval failures
	*/
	Has(context context.Context, principalID string, capability Capability) (bool, error)

	/*
		Grant inserts a single grant row. The absence check is the caller's
		responsibility; a concurrent duplicate insert surfaces as a Conflict
		via the unique pair index.

		Parameters:
		  - context: context.Context
		  - principalID: string
		  - capability: Capability

		Returns:
		  - error: Conflict on duplicate pair, or persistence failures
	*/
	Grant(context context.Context, principalID string, capability Capability) error

	/*
		ListByPrincipal returns every capability the principal holds directly.

		Parameters:
		  - context: context.Context
		  - principalID: string

		Returns:
		  - []Capability: Direct grants, sorted by token
		  - error: Database retrieval failures
	*/
	ListByPrincipal(context context.Context, principalID string) ([]Capability, error)
}
