// Copyright (c) 2026 Mesh Network. All rights reserved.

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshnetwork/mesh/internal/permission"
	"github.com/meshnetwork/mesh/internal/platform/apperr"
	"github.com/meshnetwork/mesh/internal/users/auth"
)

// # In-Memory Backend
//
// backend emulates the database including the ON DELETE CASCADE behavior:
// deleting a user removes its sessions and capability grants.

type backend struct {
	users    map[string]*auth.User    // by ID
	sessions map[string]*auth.Session // by token
	tokens   map[string]string        // verification token -> userID
	grants   map[string]map[string]bool
}

func newBackend() *backend {
	return &backend{
		users:    make(map[string]*auth.User),
		sessions: make(map[string]*auth.Session),
		tokens:   make(map[string]string),
		grants:   make(map[string]map[string]bool),
	}
}

var errNotFound = apperr.NotFound("Resource")

type userRepo struct{ b *backend }

func (r userRepo) FindByID(_ context.Context, id string) (*auth.User, error) {
	if user, ok := r.b.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, errNotFound
}

func (r userRepo) FindByName(_ context.Context, name string) (*auth.User, error) {
	for _, user := range r.b.users {
		if strings.EqualFold(user.Name, name) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errNotFound
}

func (r userRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range r.b.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errNotFound
}

func (r userRepo) Create(_ context.Context, user *auth.User) error {
	for _, existing := range r.b.users {
		if strings.EqualFold(existing.Name, user.Name) || strings.EqualFold(existing.Email, user.Email) {
			return apperr.Conflict("Username or email is already registered")
		}
	}
	user.CreatedAt = time.Now()
	copied := *user
	r.b.users[user.ID] = &copied
	return nil
}

func (r userRepo) UpdatePassword(_ context.Context, userID, newHash string) error {
	if user, ok := r.b.users[userID]; ok {
		user.PasswordHash = newHash
	}
	return nil
}

func (r userRepo) UpdateImage(_ context.Context, userID, image string) error {
	if user, ok := r.b.users[userID]; ok {
		user.Image = image
	}
	return nil
}

func (r userRepo) MarkVerified(_ context.Context, userID string) error {
	if user, ok := r.b.users[userID]; ok {
		user.EmailVerified = true
	}
	return nil
}

func (r userRepo) Delete(_ context.Context, id string) error {
	delete(r.b.users, id)
	// Cascade: sessions and grants referencing the user disappear with it.
	for token, session := range r.b.sessions {
		if session.UserID == id {
			delete(r.b.sessions, token)
		}
	}
	delete(r.b.grants, id)
	return nil
}

type sessionRepo struct{ b *backend }

func (r sessionRepo) Create(_ context.Context, session *auth.Session) error {
	session.CreatedAt = time.Now()
	copied := *session
	r.b.sessions[session.Token] = &copied
	return nil
}

func (r sessionRepo) FindByToken(_ context.Context, token string) (*auth.Session, error) {
	if session, ok := r.b.sessions[token]; ok {
		copied := *session
		return &copied, nil
	}
	return nil, errNotFound
}

func (r sessionRepo) Delete(_ context.Context, token string) error {
	delete(r.b.sessions, token)
	return nil
}

func (r sessionRepo) DeleteExpired(_ context.Context) error {
	now := time.Now()
	for token, session := range r.b.sessions {
		if session.Expired(now) {
			delete(r.b.sessions, token)
		}
	}
	return nil
}

type tokenRepo struct{ b *backend }

func (r tokenRepo) Set(_ context.Context, token, userID string, _ time.Duration) error {
	r.b.tokens[token] = userID
	return nil
}

func (r tokenRepo) Get(_ context.Context, token string) (string, error) {
	if userID, ok := r.b.tokens[token]; ok {
		return userID, nil
	}
	return "", apperr.NotFound("Verification token")
}

func (r tokenRepo) Delete(_ context.Context, token string) error {
	delete(r.b.tokens, token)
	return nil
}

type grantStore struct{ b *backend }

func (s grantStore) Has(_ context.Context, principalID string, capability permission.Capability) (bool, error) {
	return s.b.grants[principalID][capability.Token()], nil
}

func (s grantStore) Grant(_ context.Context, principalID string, capability permission.Capability) error {
	if s.b.grants[principalID] == nil {
		s.b.grants[principalID] = make(map[string]bool)
	}
	if s.b.grants[principalID][capability.Token()] {
		return apperr.Conflict("Capability already granted")
	}
	s.b.grants[principalID][capability.Token()] = true
	return nil
}

func (s grantStore) ListByPrincipal(_ context.Context, principalID string) ([]permission.Capability, error) {
	var capabilities []permission.Capability
	for token := range s.b.grants[principalID] {
		capability, err := permission.ParseToken(token)
		if err != nil {
			continue
		}
		capabilities = append(capabilities, capability)
	}
	return capabilities, nil
}

// stubMailer captures the last verification token instead of delivering it.
type stubMailer struct {
	recipient string
	token     string
}

func (m *stubMailer) SendVerification(_ context.Context, recipient, token string) error {
	m.recipient = recipient
	m.token = token
	return nil
}

// # Harness

type harness struct {
	backend *backend
	mailer  *stubMailer
	service *auth.Service
}

func newHarness() *harness {
	b := newBackend()
	mailer := &stubMailer{}
	resolver := permission.NewResolver(grantStore{b})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := auth.NewService(
		userRepo{b}, sessionRepo{b}, tokenRepo{b},
		resolver, mailer, logger,
	)

	return &harness{backend: b, mailer: mailer, service: service}
}

func (h *harness) register(t *testing.T, name, email string) *auth.User {
	t.Helper()
	user, err := h.service.Register(context.Background(), auth.RegisterInput{
		Name:     name,
		Email:    email,
		Password: "longpassword1",
	})
	require.NoError(t, err)
	return user
}

// # Registration

func TestService_Register(t *testing.T) {
	h := newHarness()

	user := h.register(t, "alice", "alice@x.com")

	assert.False(t, user.EmailVerified, "accounts start unverified")
	assert.Equal(t, "alice", user.DisplayName, "display name defaults to the handle")
	assert.Empty(t, h.backend.grants[user.ID], "no capabilities before verification")
	assert.Equal(t, "alice@x.com", h.mailer.recipient)
	assert.NotEmpty(t, h.mailer.token, "verification token issued and mailed")
}

func TestService_Register_DuplicateIdentity(t *testing.T) {
	h := newHarness()
	h.register(t, "alice", "alice@x.com")

	_, err := h.service.Register(context.Background(), auth.RegisterInput{
		Name: "ALICE", Email: "other@x.com", Password: "longpassword1",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err), "handle uniqueness is case-insensitive")

	_, err = h.service.Register(context.Background(), auth.RegisterInput{
		Name: "bobby", Email: "Alice@X.com", Password: "longpassword1",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err), "email uniqueness is case-insensitive")
}

func TestService_Register_InvalidInput(t *testing.T) {
	h := newHarness()

	_, err := h.service.Register(context.Background(), auth.RegisterInput{
		Name: "a..b", Email: "alice@x.com", Password: "longpassword1",
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

// # Verification

func TestService_VerifyEmail(t *testing.T) {
	h := newHarness()
	user := h.register(t, "alice", "alice@x.com")

	verified, err := h.service.VerifyEmail(context.Background(), h.mailer.token)
	require.NoError(t, err)
	assert.True(t, verified.EmailVerified)

	grants := h.backend.grants[user.ID]
	assert.True(t, grants["upload_image"])
	assert.True(t, grants["create_post"])
	assert.True(t, grants["create_community"])
	assert.False(t, grants["admin"], "verification never grants admin")
}

func TestService_VerifyEmail_TokenIsSingleUse(t *testing.T) {
	h := newHarness()
	h.register(t, "alice", "alice@x.com")
	token := h.mailer.token

	_, err := h.service.VerifyEmail(context.Background(), token)
	require.NoError(t, err)

	_, err = h.service.VerifyEmail(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, 404, apperr.As(err).HTTPStatus)
}

// # Login

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	user := h.register(t, "alice", "alice@x.com")

	t.Run("unverified_rejected_with_400", func(t *testing.T) {
		_, _, err := h.service.Login(ctx, auth.LoginInput{Name: "alice", Password: "longpassword1"})
		require.Error(t, err)
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, 400, ae.HTTPStatus)
		assert.Equal(t, "Email not verified", ae.Message)
	})

	_, err := h.service.VerifyEmail(ctx, h.mailer.token)
	require.NoError(t, err)

	t.Run("unknown_handle_is_404", func(t *testing.T) {
		_, _, err := h.service.Login(ctx, auth.LoginInput{Name: "nobody", Password: "longpassword1"})
		require.Error(t, err)
		assert.Equal(t, 404, apperr.As(err).HTTPStatus)
	})

	t.Run("wrong_password_is_401", func(t *testing.T) {
		_, _, err := h.service.Login(ctx, auth.LoginInput{Name: "alice", Password: "wrongpassword"})
		require.Error(t, err)
		assert.Equal(t, 401, apperr.As(err).HTTPStatus)
	})

	t.Run("success_creates_session", func(t *testing.T) {
		session, loggedIn, err := h.service.Login(ctx, auth.LoginInput{Name: "alice", Password: "longpassword1"})
		require.NoError(t, err)
		assert.Equal(t, user.ID, loggedIn.ID)
		assert.NotEmpty(t, session.Token)
		assert.True(t, session.ExpiresAt.After(time.Now()))
	})
}

// # Session Resolution

func TestService_Resolve(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	user := h.register(t, "alice", "alice@x.com")
	_, err := h.service.VerifyEmail(ctx, h.mailer.token)
	require.NoError(t, err)

	session, _, err := h.service.Login(ctx, auth.LoginInput{Name: "alice", Password: "longpassword1"})
	require.NoError(t, err)

	t.Run("empty_token", func(t *testing.T) {
		_, err := h.service.Resolve(ctx, "")
		require.Error(t, err)
		ae := apperr.As(err)
		assert.Equal(t, 401, ae.HTTPStatus)
		assert.Equal(t, "Not logged in", ae.Message)
	})

	t.Run("unknown_token", func(t *testing.T) {
		_, err := h.service.Resolve(ctx, "forged-token")
		require.Error(t, err)
		ae := apperr.As(err)
		assert.Equal(t, 401, ae.HTTPStatus)
		assert.Equal(t, "Invalid session", ae.Message)
	})

	t.Run("expired_session", func(t *testing.T) {
		h.backend.sessions["stale"] = &auth.Session{
			Token: "stale", UserID: user.ID, ExpiresAt: time.Now().Add(-time.Hour),
		}
		_, err := h.service.Resolve(ctx, "stale")
		require.Error(t, err)
		assert.Equal(t, "Invalid session", apperr.As(err).Message)
		assert.NotContains(t, h.backend.sessions, "stale", "expired row cleaned up lazily")
	})

	t.Run("dangling_session", func(t *testing.T) {
		h.backend.sessions["dangling"] = &auth.Session{
			Token: "dangling", UserID: "gone", ExpiresAt: time.Now().Add(time.Hour),
		}
		_, err := h.service.Resolve(ctx, "dangling")
		require.Error(t, err)
		ae := apperr.As(err)
		assert.Equal(t, 404, ae.HTTPStatus)
		assert.Equal(t, "User not found", ae.Message)
	})

	t.Run("unverified_principal", func(t *testing.T) {
		bob := h.register(t, "bobb", "bob@x.com")
		h.backend.sessions["bob-session"] = &auth.Session{
			Token: "bob-session", UserID: bob.ID, ExpiresAt: time.Now().Add(time.Hour),
		}
		_, err := h.service.Resolve(ctx, "bob-session")
		require.Error(t, err)
		ae := apperr.As(err)
		assert.Equal(t, 400, ae.HTTPStatus, "unverified is a 400, never a generic 401")
		assert.Equal(t, "Email not verified", ae.Message)
	})

	t.Run("authenticated", func(t *testing.T) {
		principal, err := h.service.Resolve(ctx, session.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, principal.ID)
		assert.Equal(t, "alice", principal.Name)
		assert.True(t, principal.EmailVerified)
	})

	t.Run("logout_invalidates", func(t *testing.T) {
		require.NoError(t, h.service.Logout(ctx, session.Token))
		_, err := h.service.Resolve(ctx, session.Token)
		require.Error(t, err)
		assert.Equal(t, "Invalid session", apperr.As(err).Message)
	})
}

// # Self-Scoped Mutations

func TestService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	user := h.register(t, "alice", "alice@x.com")

	err := h.service.ChangePassword(ctx, user.ID, "wrongpassword", "newlongpassword1")
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus, "credential re-entry guards the rotation")

	require.NoError(t, h.service.ChangePassword(ctx, user.ID, "longpassword1", "newlongpassword1"))

	// Verify then login with the rotated credential.
	_, err = h.service.VerifyEmail(ctx, h.mailer.token)
	require.NoError(t, err)

	_, _, err = h.service.Login(ctx, auth.LoginInput{Name: "alice", Password: "newlongpassword1"})
	require.NoError(t, err)
}

func TestService_DeleteAccount_Cascades(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	user := h.register(t, "alice", "alice@x.com")
	_, err := h.service.VerifyEmail(ctx, h.mailer.token)
	require.NoError(t, err)

	session, _, err := h.service.Login(ctx, auth.LoginInput{Name: "alice", Password: "longpassword1"})
	require.NoError(t, err)

	err = h.service.DeleteAccount(ctx, user.ID, "wrongpassword")
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)

	require.NoError(t, h.service.DeleteAccount(ctx, user.ID, "longpassword1"))

	assert.NotContains(t, h.backend.users, user.ID)
	assert.Empty(t, h.backend.grants[user.ID], "capability grants removed with the principal")

	_, err = h.service.Resolve(ctx, session.Token)
	require.Error(t, err, "sessions die with the principal")
}

func TestService_SetAvatar_RequiresCapability(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	user := h.register(t, "alice", "alice@x.com")

	err := h.service.SetAvatar(ctx, user.ID, "avatars/alice.png")
	require.Error(t, err)
	assert.Equal(t, 403, apperr.As(err).HTTPStatus, "upload_image required")

	_, err = h.service.VerifyEmail(ctx, h.mailer.token)
	require.NoError(t, err)

	require.NoError(t, h.service.SetAvatar(ctx, user.ID, "avatars/alice.png"))
	assert.Equal(t, "avatars/alice.png", h.backend.users[user.ID].Image)
}

// # Bootstrap

func TestService_BootstrapAdmin(t *testing.T) {
	ctx := context.Background()
	h := newHarness()

	require.NoError(t, h.service.BootstrapAdmin(ctx))

	admin, err := h.service.GetProfile(ctx, auth.AdminName)
	require.NoError(t, err)
	assert.True(t, h.backend.grants[admin.ID]["admin"], "bootstrap grants admin directly")
	assert.False(t, h.backend.grants[admin.ID]["create_post"], "admin does not bypass the posting gate")

	// Idempotent on restart.
	require.NoError(t, h.service.BootstrapAdmin(ctx))
	assert.Len(t, h.backend.users, 1)
}
