// Copyright (c) 2026 Mesh Network. All rights reserved.

/*
Package auth implements the user identity and session management layer.

It defines the core domain entities (User, Session) and the logic for
registration, email verification, login, and the session state machine that
every authenticated request passes through.

# Architecture

This layer is the "Truth" of the system for identity. The password hash never
leaves this package: callers receive either a [sec.Principal] snapshot or a
sanitized [Profile].
*/
package auth

import (
	"time"

	"github.com/meshnetwork/mesh/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the Mesh platform.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	DisplayName   string    `json:"display_name"`
	ChosenName    string    `json:"chosen_name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"` // Explicitly omitted from JSON for security.
	EmailVerified bool      `json:"email_verified"`
	Image         string    `json:"image,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Session binds an opaque token to a principal.
//
// Sessions are created at login, removed at logout, and swept away by the
// database cascade when the owning user row is deleted. A session past its
// ExpiresAt is treated exactly like a missing one.
type Session struct {
	Token     string    `json:"-"` // Opaque bearer value. Never serialized.
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its lifetime at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// # Views

// Profile is the public, sanitized projection of a [User]. No email, no
// verification state, no credential.
type Profile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	ChosenName  string    `json:"chosen_name"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Principal returns the session snapshot handed to downstream layers.
// The credential hash is deliberately absent.
func (u *User) Principal() *sec.Principal {
	return &sec.Principal{
		ID:            u.ID,
		Name:          u.Name,
		DisplayName:   u.DisplayName,
		ChosenName:    u.ChosenName,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Image:         u.Image,
	}
}

// PublicProfile returns the projection safe to serve to anyone.
func (u *User) PublicProfile() *Profile {
	return &Profile{
		ID:          u.ID,
		Name:        u.Name,
		DisplayName: u.DisplayName,
		ChosenName:  u.ChosenName,
		Image:       u.Image,
		CreatedAt:   u.CreatedAt,
	}
}

// # Field Identifiers

// Global field names for validation and identity mapping in the auth domain.
const (
	FieldName            = "name"
	FieldDisplayName     = "display_name"
	FieldChosenName      = "chosen_name"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldToken           = "token"
	FieldImage           = "image"
	FieldMessage         = "message"
)
