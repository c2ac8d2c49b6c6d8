// Copyright (c) 2026 Mesh Network. All rights reserved.

package middleware

import (
	"context"
	"net/http"

	"github.com/meshnetwork/mesh/internal/platform/apperr"
	"github.com/meshnetwork/mesh/internal/platform/constants"
	"github.com/meshnetwork/mesh/internal/platform/ctxutil"
	"github.com/meshnetwork/mesh/internal/platform/respond"
	"github.com/meshnetwork/mesh/internal/platform/sec"
)

// SessionResolver defines the interface needed to resolve session tokens in middleware.
//
// # Why an interface?
//
// Defining SessionResolver here decouples the middleware from the auth
// service implementation, allowing us to easily inject stubs during unit testing.
type SessionResolver interface {
	// Resolve maps an opaque session token to a principal snapshot.
	//
	// It fails closed: an unknown token, a session whose principal no longer
	// exists, and an unverified principal all produce an error rather than a
	// partial identity.
	Resolve(ctx context.Context, token string) (*sec.Principal, error)
}

// Authenticate resolves the session cookie into a principal.
//
// # Flow
//  1. Check for the session cookie.
//  2. If absent, the request proceeds as anonymous; endpoints that require a
//     session reject later with "Not logged in".
//  3. If present, resolve the token via [SessionResolver]. Resolution failures
//     (invalid session, dangling principal, unverified email) abort the
//     request immediately — a bad token never degrades to anonymous.
//  4. Inject the [*sec.Principal] snapshot into the request context.
func Authenticate(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Anonymous Access ───────────────────────────────────────────
			cookie, err := request.Cookie(constants.SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Session Resolution ─────────────────────────────────────────
			principal, err := resolver.Resolve(request.Context(), cookie.Value)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireSession blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetPrincipal(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Not logged in"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
