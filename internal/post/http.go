// Copyright (c) 2026 Mesh Network. All rights reserved.

/*
HTTP interface for posts and the personalized frontpage.

# Routing Strategy

  - Public: post detail, plus listings mounted under the community and
    user subtrees ([Handler.ByCommunity], [Handler.ByAuthor]).
  - Authenticated: create, delete, frontpage.
*/
package post

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/meshnetwork/mesh/internal/platform/request"
	"github.com/meshnetwork/mesh/internal/platform/respond"
	"github.com/meshnetwork/mesh/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for post operations.
type Handler struct {
	service *Service
}

// NewHandler constructs a new post [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with post endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public
	router.Get("/{id}", handler.get)

	// ## Authenticated
	router.Post("/", handler.create)
	router.Delete("/{id}", handler.delete)

	return router
}

// # Post Endpoints

/*
ByCommunity handles GET /api/v1/communities/{name}/posts.

Description: Paginated listing of a community's posts, newest first.
Mounted in the community subtree; passed in as a plain handler func so the
community package needs no dependency on this one.

Response:
  - 200: []Post: Paginated list
  - 404: NotFound: Unknown community
*/
func (handler *Handler) ByCommunity(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	name := requestutil.Param(request, "name")

	posts, total, err := handler.service.ListByCommunity(request.Context(), name, params.Limit, params.Skip)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, posts, pagination.NewMeta(params, total))
}

/*
ByAuthor handles GET /api/v1/users/{name}/posts.

Description: Paginated listing of a user's posts, newest first.

Response:
  - 200: []Post: Paginated list
*/
func (handler *Handler) ByAuthor(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	name := requestutil.Param(request, "name")

	posts, total, err := handler.service.ListByAuthor(request.Context(), name, params.Limit, params.Skip)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, posts, pagination.NewMeta(params, total))
}

/*
GET /api/v1/posts/{id}.

Response:
  - 200: Post: Success
  - 404: NotFound: Post not found
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	post, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, post)
}

/*
POST /api/v1/posts.

Description: Publishes a post in a community.

Request (Body):
  - { "community", "title", "content" }

Response:
  - 201: Post: Created entity
  - 400: Validation: Malformed fields
  - 401: Unauthorized: Not logged in
  - 403: Forbidden: Posting gate not passed
  - 404: NotFound: Unknown community
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

	post, err := handler.service.Create(request.Context(), principal.ID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, post)
}

/*
DELETE /api/v1/posts/{id}.

Description: Removes a post. Author or community moderator only.

Response:
  - 204: No Content: Removed
  - 401: Unauthorized: Not logged in
  - 403: Forbidden: Neither author nor moderator
  - 404: NotFound: Post not found
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id := requestutil.Param(request, "id")

	if err := handler.service.Delete(request.Context(), principal.ID, id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Frontpage

/*
Frontpage handles GET /api/v1/frontpage.

Description: Posts from the caller's subscribed communities, newest first.
Mounted outside the /posts subtree because it is a personalized feed, not a
resource collection.

Response:
  - 200: []Post: Paginated feed
  - 401: Unauthorized: Not logged in
*/
func (handler *Handler) Frontpage(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)

	posts, total, err := handler.service.Frontpage(request.Context(), principal.ID, params.Limit, params.Skip)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, posts, pagination.NewMeta(params, total))
}
