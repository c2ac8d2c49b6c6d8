// Copyright (c) 2026 Mesh Network. All rights reserved.

package search

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meshnetwork/mesh/internal/platform/respond"
	"github.com/meshnetwork/mesh/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for search.
type Handler struct {
	service *Service
}

// NewHandler constructs a new search [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with search endpoints. All are public.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.aggregate)
	router.Get("/users", handler.users)
	router.Get("/communities", handler.communities)
	router.Get("/posts", handler.posts)

	return router
}

// term pulls the raw search query off the request.
func term(request *http.Request) string {
	return request.URL.Query().Get("q")
}

// # Search Endpoints

/*
GET /api/v1/search?q={term}.

Description: Top matches across users, communities, and posts.

Response:
  - 200: AggregateResult: Success
  - 400: Validation: Empty query
*/
func (handler *Handler) aggregate(writer http.ResponseWriter, request *http.Request) {
	result, err := handler.service.Aggregate(request.Context(), term(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
GET /api/v1/search/users?q={term}.

Response:
  - 200: []Profile: Paginated matches
  - 400: Validation: Empty query
*/
func (handler *Handler) users(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	profiles, total, err := handler.service.Users(request.Context(), term(request), params.Limit, params.Skip)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, profiles, pagination.NewMeta(params, total))
}

/*
GET /api/v1/search/communities?q={term}.

Response:
  - 200: []Community: Paginated matches, public communities only
  - 400: Validation: Empty query
*/
func (handler *Handler) communities(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	communities, total, err := handler.service.Communities(request.Context(), term(request), params.Limit, params.Skip)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, communities, pagination.NewMeta(params, total))
}

/*
GET /api/v1/search/posts?q={term}.

Response:
  - 200: []Post: Paginated matches by title, newest first
  - 400: Validation: Empty query
*/
func (handler *Handler) posts(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	posts, total, err := handler.service.Posts(request.Context(), term(request), params.Limit, params.Skip)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, posts, pagination.NewMeta(params, total))
}
