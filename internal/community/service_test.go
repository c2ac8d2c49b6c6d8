// Copyright (c) 2026 Mesh Network. All rights reserved.

package community_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshnetwork/mesh/internal/community"
	"github.com/meshnetwork/mesh/internal/permission"
	"github.com/meshnetwork/mesh/internal/platform/apperr"
)

// # Stubs

type stubRepo struct {
	communities   map[string]*community.Community
	subscriptions map[string]map[string]bool // userID -> community -> subscribed
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		communities:   make(map[string]*community.Community),
		subscriptions: make(map[string]map[string]bool),
	}
}

func (r *stubRepo) FindByName(_ context.Context, name string) (*community.Community, error) {
	if c, ok := r.communities[name]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, apperr.NotFound("Community")
}

func (r *stubRepo) List(_ context.Context, limit, skip int) ([]*community.Community, int, error) {
	var all []*community.Community
	for _, c := range r.communities {
		if c.Public {
			all = append(all, c)
		}
	}
	total := len(all)
	if skip >= total {
		return nil, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return all[skip:end], total, nil
}

func (r *stubRepo) Create(_ context.Context, c *community.Community) error {
	if _, exists := r.communities[c.Name]; exists {
		return apperr.Conflict("Community already exists")
	}
	c.CreatedAt = time.Now()
	copied := *c
	r.communities[c.Name] = &copied
	return nil
}

func (r *stubRepo) Delete(_ context.Context, name string) error {
	delete(r.communities, name)
	// Cascade: subscriptions referencing the community disappear.
	for _, subs := range r.subscriptions {
		delete(subs, name)
	}
	return nil
}

func (r *stubRepo) Subscribe(_ context.Context, userID, name string) error {
	if r.subscriptions[userID][name] {
		return apperr.Conflict("Already subscribed")
	}
	if r.subscriptions[userID] == nil {
		r.subscriptions[userID] = make(map[string]bool)
	}
	r.subscriptions[userID][name] = true
	return nil
}

func (r *stubRepo) Unsubscribe(_ context.Context, userID, name string) error {
	if !r.subscriptions[userID][name] {
		return apperr.NotFound("Subscription")
	}
	delete(r.subscriptions[userID], name)
	return nil
}

func (r *stubRepo) IsSubscribed(_ context.Context, userID, name string) (bool, error) {
	return r.subscriptions[userID][name], nil
}

func (r *stubRepo) ListSubscribedBy(_ context.Context, userID string) ([]*community.Community, error) {
	var subscribed []*community.Community
	for name := range r.subscriptions[userID] {
		if c, ok := r.communities[name]; ok {
			subscribed = append(subscribed, c)
		}
	}
	return subscribed, nil
}

type grantStore struct {
	grants map[string]map[string]bool
}

func newGrantStore() *grantStore {
	return &grantStore{grants: make(map[string]map[string]bool)}
}

func (s *grantStore) Has(_ context.Context, principalID string, capability permission.Capability) (bool, error) {
	return s.grants[principalID][capability.Token()], nil
}

func (s *grantStore) Grant(_ context.Context, principalID string, capability permission.Capability) error {
	if s.grants[principalID] == nil {
		s.grants[principalID] = make(map[string]bool)
	}
	if s.grants[principalID][capability.Token()] {
		return apperr.Conflict("Capability already granted")
	}
	s.grants[principalID][capability.Token()] = true
	return nil
}

func (s *grantStore) ListByPrincipal(_ context.Context, principalID string) ([]permission.Capability, error) {
	var capabilities []permission.Capability
	for token := range s.grants[principalID] {
		capability, err := permission.ParseToken(token)
		if err != nil {
			continue
		}
		capabilities = append(capabilities, capability)
	}
	return capabilities, nil
}

func (s *grantStore) seed(principalID string, capabilities ...permission.Capability) {
	if s.grants[principalID] == nil {
		s.grants[principalID] = make(map[string]bool)
	}
	for _, capability := range capabilities {
		s.grants[principalID][capability.Token()] = true
	}
}

// # Harness

type harness struct {
	repo    *stubRepo
	grants  *grantStore
	service *community.Service
}

func newHarness() *harness {
	repo := newStubRepo()
	grants := newGrantStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := community.NewService(repo, permission.NewResolver(grants), logger)
	return &harness{repo: repo, grants: grants, service: service}
}

// # Community Lifecycle

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("requires_capability", func(t *testing.T) {
		h := newHarness()

		_, err := h.service.Create(ctx, "alice", community.CreateInput{Name: "bikes", Public: true})
		require.Error(t, err)
		assert.Equal(t, 403, apperr.As(err).HTTPStatus)
	})

	t.Run("creator_becomes_moderator", func(t *testing.T) {
		h := newHarness()
		h.grants.seed("alice", permission.CreateCommunity())

		created, err := h.service.Create(ctx, "alice", community.CreateInput{Name: "Retro Gaming", Public: true})
		require.NoError(t, err)
		assert.Equal(t, "retro-gaming", created.Name, "name is slug-normalized")
		assert.Equal(t, "Retro Gaming", created.DisplayName)
		assert.True(t, h.grants.grants["alice"]["moderator_retro-gaming"])
	})

	t.Run("duplicate_name_conflicts", func(t *testing.T) {
		h := newHarness()
		h.grants.seed("alice", permission.CreateCommunity())
		h.grants.seed("bob", permission.CreateCommunity())

		first, err := h.service.Create(ctx, "alice", community.CreateInput{Name: "bikes", Public: true})
		require.NoError(t, err)

		// Case variants collapse to the same canonical name.
		_, err = h.service.Create(ctx, "bob", community.CreateInput{Name: "Bikes", Public: true})
		require.Error(t, err)
		assert.True(t, apperr.IsConflict(err))

		// The original community is untouched, and bob moderates nothing.
		surviving, err := h.service.Get(ctx, "bikes")
		require.NoError(t, err)
		assert.Equal(t, first.CreatedAt, surviving.CreatedAt)
		assert.False(t, h.grants.grants["bob"]["moderator_bikes"])
	})

	t.Run("admin_creator_swallows_grant_conflict", func(t *testing.T) {
		h := newHarness()
		h.grants.seed("root", permission.Admin())

		// Admin already moderates everything via escalation; founding must
		// still succeed with the redundant grant conflict discarded.
		_, err := h.service.Create(ctx, "root", community.CreateInput{Name: "meta", Public: true})
		require.NoError(t, err)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.grants.seed("alice", permission.CreateCommunity())

	_, err := h.service.Create(ctx, "alice", community.CreateInput{Name: "bikes", Public: true})
	require.NoError(t, err)

	t.Run("unknown_community", func(t *testing.T) {
		err := h.service.Delete(ctx, "alice", "ghosts")
		require.Error(t, err)
		assert.Equal(t, 404, apperr.As(err).HTTPStatus)
	})

	t.Run("non_moderator_forbidden", func(t *testing.T) {
		err := h.service.Delete(ctx, "bob", "bikes")
		require.Error(t, err)
		assert.Equal(t, 403, apperr.As(err).HTTPStatus)
	})

	t.Run("moderator_deletes_with_cascade", func(t *testing.T) {
		require.NoError(t, h.repo.Subscribe(ctx, "carol", "bikes"))

		require.NoError(t, h.service.Delete(ctx, "alice", "bikes"))

		_, err := h.service.Get(ctx, "bikes")
		require.Error(t, err)
		assert.False(t, h.repo.subscriptions["carol"]["bikes"], "subscriptions cascade away")
	})
}

// # Subscriptions

func TestService_Subscribe(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) *harness {
		t.Helper()
		h := newHarness()
		h.grants.seed("founder", permission.CreateCommunity())
		_, err := h.service.Create(ctx, "founder", community.CreateInput{Name: "bikes", Public: true})
		require.NoError(t, err)
		return h
	}

	t.Run("grants_scoped_posting", func(t *testing.T) {
		h := setup(t)

		require.NoError(t, h.service.Subscribe(ctx, "alice", "bikes"))

		assert.True(t, h.repo.subscriptions["alice"]["bikes"])
		assert.True(t, h.grants.grants["alice"]["create_post_community_bikes"])
	})

	t.Run("double_subscribe_conflicts_without_touching_grant", func(t *testing.T) {
		h := setup(t)
		require.NoError(t, h.service.Subscribe(ctx, "alice", "bikes"))

		err := h.service.Subscribe(ctx, "alice", "bikes")
		require.Error(t, err)
		ae := apperr.As(err)
		assert.True(t, apperr.IsConflict(err))
		assert.Equal(t, "Already subscribed", ae.Message)

		assert.True(t, h.grants.grants["alice"]["create_post_community_bikes"],
			"the existing grant is neither revoked nor duplicated")
	})

	t.Run("private_community_forbidden", func(t *testing.T) {
		h := setup(t)
		_, err := h.service.Create(ctx, "founder", community.CreateInput{Name: "secret", Public: false})
		require.NoError(t, err)

		err = h.service.Subscribe(ctx, "alice", "secret")
		require.Error(t, err)
		assert.Equal(t, 403, apperr.As(err).HTTPStatus)
	})

	t.Run("unknown_community", func(t *testing.T) {
		h := setup(t)

		err := h.service.Subscribe(ctx, "alice", "ghosts")
		require.Error(t, err)
		assert.Equal(t, 404, apperr.As(err).HTTPStatus)
	})

	t.Run("moderator_subscribes_despite_redundant_grant", func(t *testing.T) {
		h := setup(t)

		// The founder already holds moderator_bikes; the scoped grant
		// conflicts, and the subscription still succeeds.
		require.NoError(t, h.service.Subscribe(ctx, "founder", "bikes"))
		assert.True(t, h.repo.subscriptions["founder"]["bikes"])
	})
}

func TestService_Unsubscribe(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.grants.seed("founder", permission.CreateCommunity())
	_, err := h.service.Create(ctx, "founder", community.CreateInput{Name: "bikes", Public: true})
	require.NoError(t, err)

	t.Run("not_subscribed", func(t *testing.T) {
		err := h.service.Unsubscribe(ctx, "alice", "bikes")
		require.Error(t, err)
		assert.Equal(t, 404, apperr.As(err).HTTPStatus)
	})

	t.Run("keeps_capability", func(t *testing.T) {
		require.NoError(t, h.service.Subscribe(ctx, "alice", "bikes"))
		require.NoError(t, h.service.Unsubscribe(ctx, "alice", "bikes"))

		assert.False(t, h.repo.subscriptions["alice"]["bikes"])
		assert.True(t, h.grants.grants["alice"]["create_post_community_bikes"],
			"capabilities are never revoked by unsubscribing")
	})
}
