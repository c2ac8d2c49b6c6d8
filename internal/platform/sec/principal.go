// Copyright (c) 2026 Mesh Network. All rights reserved.

// Package sec provides security primitives for the Mesh platform: password
// hashing, secure token generation, and the resolved session principal type.
//
// # Architecture
//
// This package isolates security-sensitive code from the domain logic. The
// [Principal] snapshot lives here (not in the users domain) so that platform
// packages — middleware, request helpers — can reference the authenticated
// identity without importing domain packages.
package sec

// Principal is the identity snapshot attached to a request after session
// resolution.
//
// # Security
//
// The credential hash is deliberately absent: it never leaves the session
// manager / authorization boundary.
type Principal struct {
	// ID is the stable, immutable principal identifier (UUIDv7).
	ID string `json:"id"`
	// Name is the unique, lowercased handle.
	Name string `json:"name"`
	// DisplayName preserves the casing the principal registered with.
	DisplayName string `json:"display_name"`
	// ChosenName is the free-form name the principal chose to present.
	ChosenName string `json:"chosen_name"`
	// Email is the lowercased, unique address.
	Email string `json:"email"`
	// EmailVerified reports whether the verification flow completed.
	EmailVerified bool `json:"email_verified"`
	// Image is an opaque avatar reference, empty when unset.
	Image string `json:"image,omitempty"`
}
