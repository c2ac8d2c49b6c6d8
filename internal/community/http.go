// Copyright (c) 2026 Mesh Network. All rights reserved.

/*
HTTP interface for community discovery, lifecycle, and subscriptions.

# Routing Strategy

  - Public: listing and detail views.
  - Authenticated: create, delete, subscribe, unsubscribe — the session
    middleware resolves the principal before these handlers run; the service
    layer enforces the capability predicates.
*/
package community

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/meshnetwork/mesh/internal/platform/request"
	"github.com/meshnetwork/mesh/internal/platform/respond"
	"github.com/meshnetwork/mesh/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for community operations.
type Handler struct {
	service *Service
	// posts serves GET /{name}/posts. Injected as a plain handler func so
	// this package stays free of a dependency on the post package.
	posts http.HandlerFunc
}

// NewHandler constructs a new community [Handler].
func NewHandler(service *Service, posts http.HandlerFunc) *Handler {
	return &Handler{service: service, posts: posts}
}

// Routes returns a [chi.Router] with community endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Discovery
	router.Get("/", handler.list)
	router.Get("/{name}", handler.get)
	router.Get("/{name}/posts", handler.posts)

	// ## Authenticated
	router.Post("/", handler.create)
	router.Delete("/{name}", handler.delete)
	router.Post("/{name}/subscribe", handler.subscribe)
	router.Delete("/{name}/subscribe", handler.unsubscribe)

	return router
}

// # Community Endpoints

/*
GET /api/v1/communities.

Description: Paginated listing of public communities, newest first.

Request:
  - skip, limit: int (limit clamped to 50)

Response:
  - 200: []Community: Paginated list
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	communities, total, err := handler.service.List(request.Context(), params.Limit, params.Skip)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, communities, pagination.NewMeta(params, total))
}

/*
GET /api/v1/communities/{name}.

Description: Community detail by name, any casing.

Response:
  - 200: Community: Success
  - 404: NotFound: Community not found
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	name := requestutil.Param(request, "name")

	community, err := handler.service.Get(request.Context(), name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, community)
}

/*
POST /api/v1/communities.

Description: Founds a new community. The caller becomes its moderator.

Request (Body):
  - { "name", "description", "public" }

Response:
  - 201: Community: Created entity with canonical name
  - 400: Validation: Malformed name
  - 401: Unauthorized: Not logged in
  - 403: Forbidden: Missing create_community capability
  - 409: Conflict: Community already exists
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	community, err := handler.service.Create(request.Context(), principal.ID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, community)
}

/*
DELETE /api/v1/communities/{name}.

Description: Removes a community with all its posts and subscriptions.
Moderators only.

Response:
  - 204: No Content: Removed
  - 401: Unauthorized: Not logged in
  - 403: Forbidden: Not a moderator
  - 404: NotFound: Community not found
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	name := requestutil.Param(request, "name")

	if err := handler.service.Delete(request.Context(), principal.ID, name); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Subscription Endpoints

/*
POST /api/v1/communities/{name}/subscribe.

Description: Subscribes the caller to a public community and awards the
community-scoped posting capability.

Response:
  - 201: Message: Subscribed
  - 401: Unauthorized: Not logged in
  - 403: Forbidden: Community is private
  - 404: NotFound: Community not found
  - 409: Conflict: Already subscribed
*/
func (handler *Handler) subscribe(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	name := requestutil.Param(request, "name")

	if err := handler.service.Subscribe(request.Context(), principal.ID, name); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]string{FieldMessage: "Subscribed"})
}

/*
DELETE /api/v1/communities/{name}/subscribe.

Description: Removes the caller's subscription. The posting capability
acquired at subscription time is kept.

Response:
  - 204: No Content: Unsubscribed
  - 401: Unauthorized: Not logged in
  - 404: NotFound: Community or subscription not found
*/
func (handler *Handler) unsubscribe(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	name := requestutil.Param(request, "name")

	if err := handler.service.Unsubscribe(request.Context(), principal.ID, name); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
