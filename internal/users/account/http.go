// Copyright (c) 2026 Mesh Network. All rights reserved.

/*
Package account exposes the authenticated self-service surface: the /me
subtree. Every endpoint operates on the calling principal; there are no
path parameters naming other users.
*/
package account

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meshnetwork/mesh/internal/community"
	requestutil "github.com/meshnetwork/mesh/internal/platform/request"
	"github.com/meshnetwork/mesh/internal/platform/respond"
	"github.com/meshnetwork/mesh/internal/users/auth"
)

// # Contracts

// ProfileService covers the self-management operations of the auth service.
type ProfileService interface {
	// GetMe returns the caller's own record with resolved capabilities.
	GetMe(ctx context.Context, principalID string) (*auth.MeView, error)

	// SetAvatar stores a new avatar reference for the caller.
	SetAvatar(ctx context.Context, principalID, image string) error

	// ChangePassword rotates the caller's password after re-verifying the
	// current one.
	ChangePassword(ctx context.Context, principalID, currentPassword, newPassword string) error

	// DeleteAccount removes the caller's account after re-verifying the
	// password.
	DeleteAccount(ctx context.Context, principalID, password string) error
}

// SubscriptionLister returns the communities the caller subscribes to.
type SubscriptionLister interface {
	ListSubscribed(ctx context.Context, principalID string) ([]*community.Community, error)
}

// # Handler Implementation

// Handler implements the HTTP layer for account self-service.
type Handler struct {
	profiles      ProfileService
	subscriptions SubscriptionLister
}

// NewHandler constructs a new account [Handler].
func NewHandler(profiles ProfileService, subscriptions SubscriptionLister) *Handler {
	return &Handler{profiles: profiles, subscriptions: subscriptions}
}

// Routes returns a [chi.Router] with the /me endpoints. Every route
// requires an authenticated session.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.me)
	router.Post("/avatar", handler.setAvatar)
	router.Put("/password", handler.changePassword)
	router.Delete("/", handler.deleteAccount)
	router.Get("/communities", handler.listCommunities)

	return router
}

// # Account Endpoints

/*
GET /api/v1/me.

Description: The caller's own record, including the full list of
capability tokens currently granted.

Response:
  - 200: MeView: Success
  - 401: Unauthorized: Not logged in
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.profiles.GetMe(request.Context(), principal.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

/*
POST /api/v1/me/avatar.

Description: Sets the caller's avatar image reference.

Request (Body):
  - { "image" }

Response:
  - 204: No Content: Stored
  - 401: Unauthorized: Not logged in
  - 403: Forbidden: Upload capability not granted
*/
func (handler *Handler) setAvatar(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Image string `json:"image"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.profiles.SetAvatar(request.Context(), principal.ID, input.Image); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
PUT /api/v1/me/password.

Description: Rotates the caller's password. The current password must be
supplied again; a valid session alone is not enough.

Request (Body):
  - { "current_password", "new_password" }

Response:
  - 204: No Content: Rotated
  - 400: Validation: New password too weak
  - 401: Unauthorized: Not logged in or current password wrong
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.profiles.ChangePassword(request.Context(), principal.ID, input.CurrentPassword, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
DELETE /api/v1/me.

Description: Permanently removes the caller's account. Sessions,
subscriptions, posts, and capability grants go with it. The password must
be supplied again.

Request (Body):
  - { "password" }

Response:
  - 204: No Content: Removed
  - 401: Unauthorized: Not logged in or password wrong
*/
func (handler *Handler) deleteAccount(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input struct {
		Password string `json:"password"`
	}
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.profiles.DeleteAccount(request.Context(), principal.ID, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
GET /api/v1/me/communities.

Description: The communities the caller subscribes to, alphabetically.

Response:
  - 200: []Community: Success
  - 401: Unauthorized: Not logged in
*/
func (handler *Handler) listCommunities(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	communities, err := handler.subscriptions.ListSubscribed(request.Context(), principal.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, communities)
}
