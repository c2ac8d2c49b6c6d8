// Copyright (c) 2026 Mesh Network. All rights reserved.

/*
HTTP interface for registration, verification, login, and public profiles.

# Routing Strategy

  - Public: register, login, email verification, profile lookup.
  - Authenticated: logout.

Session tokens travel in an HttpOnly cookie; handlers never echo the token in
response bodies.
*/
package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meshnetwork/mesh/internal/platform/constants"
	requestutil "github.com/meshnetwork/mesh/internal/platform/request"
	"github.com/meshnetwork/mesh/internal/platform/respond"
)

// # Handler Implementation

// Handler implements the HTTP layer for identity operations.
type Handler struct {
	service *Service
	// secureCookies marks the session cookie Secure; enabled in production.
	secureCookies bool
	// posts serves GET /{name}/posts. Injected as a plain handler func so
	// this package stays free of a dependency on the post package.
	posts http.HandlerFunc
}

// NewHandler constructs a new auth [Handler].
func NewHandler(service *Service, secureCookies bool, posts http.HandlerFunc) *Handler {
	return &Handler{service: service, secureCookies: secureCookies, posts: posts}
}

// Routes returns a [chi.Router] with identity endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public
	router.Post("/register", handler.register)
	router.Get("/verify-email/{token}", handler.verifyEmail)
	router.Post("/login", handler.login)
	router.Get("/{name}", handler.getProfile)
	router.Get("/{name}/posts", handler.posts)

	// ## Authenticated
	router.Post("/logout", handler.logout)

	return router
}

// # Cookie Helpers

func (handler *Handler) setSessionCookie(writer http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     constants.SessionCookiePath,
		Expires:  expires,
		HttpOnly: true,
		Secure:   handler.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (handler *Handler) clearSessionCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     constants.SessionCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   handler.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// # Identity Endpoints

/*
POST /api/v1/users/register.

Description: Enrolls a new member. The account starts unverified; a
verification link is mailed out of band.

Request (Body):
  - { "name", "display_name", "email", "password" }

Response:
  - 201: User: Created account (unverified)
  - 400: Validation: Malformed fields
  - 409: Conflict: Handle or email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input RegisterInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Register(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
GET /api/v1/users/verify-email/{token}.

Description: Consumes the mailed verification token, marks the account
verified, and unlocks the member capability bundle.

Request:
  - token: string (single-use)

Response:
  - 200: User: The verified account
  - 404: NotFound: Token unknown, expired, or already used
*/
func (handler *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	token := requestutil.Param(request, "token")

	user, err := handler.service.VerifyEmail(request.Context(), token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
POST /api/v1/users/login.

Description: Authenticates credentials and establishes a session, returned
as an HttpOnly cookie.

Request (Body):
  - { "name", "password" }

Response:
  - 200: User: Authenticated account
  - 400: Validation: Missing fields, or email not verified
  - 401: Unauthorized: Wrong password
  - 404: NotFound: Unknown handle
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input LoginInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, user, err := handler.service.Login(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, session.Token, session.ExpiresAt)
	respond.OK(writer, user)
}

/*
POST /api/v1/users/logout.

Description: Deletes the session row and clears the cookie. The token is
dead server-side immediately, not just forgotten by the browser.

Response:
  - 204: No Content: Session removed
  - 401: Unauthorized: No session cookie present
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	token := requestutil.SessionToken(request)

	if err := handler.service.Logout(request.Context(), token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearSessionCookie(writer)
	respond.NoContent(writer)
}

/*
GET /api/v1/users/{name}.

Description: Public profile by handle, case-insensitive. Email and
verification state are not exposed.

Response:
  - 200: Profile: Sanitized public view
  - 404: NotFound: Unknown handle
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	name := requestutil.Param(request, "name")

	profile, err := handler.service.GetProfile(request.Context(), name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}
