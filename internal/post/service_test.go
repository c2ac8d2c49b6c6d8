// Copyright (c) 2026 Mesh Network. All rights reserved.

package post_test

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
	"github.com/meshnetwork/mesh/internal/post"
)

// # Stubs

type stubRepo struct {
	posts map[string]*post.Post
}

func newStubRepo() *stubRepo {
	return &stubRepo{posts: make(map[string]*post.Post)}
}

func (r *stubRepo) FindByID(_ context.Context, id string) (*post.Post, error) {
	if p, ok := r.posts[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, apperr.NotFound("Post")
}

func (r *stubRepo) Create(_ context.Context, p *post.Post) error {
	p.CreatedAt = time.Now()
	copied := *p
	r.posts[p.ID] = &copied
	return nil
}

func (r *stubRepo) Delete(_ context.Context, id string) error {
	delete(r.posts, id)
	return nil
}

func (r *stubRepo) ListByCommunity(_ context.Context, name string, limit, skip int) ([]*post.Post, int, error) {
	var matching []*post.Post
	for _, p := range r.posts {
		if p.Community == name {
			matching = append(matching, p)
		}
	}
	return window(matching, limit, skip)
}

func (r *stubRepo) ListByAuthor(_ context.Context, authorName string, limit, skip int) ([]*post.Post, int, error) {
	var matching []*post.Post
	for _, p := range r.posts {
		if p.AuthorName == authorName {
			matching = append(matching, p)
		}
	}
	return window(matching, limit, skip)
}

func (r *stubRepo) ListFrontpage(_ context.Context, _ string, limit, skip int) ([]*post.Post, int, error) {
	var all []*post.Post
	for _, p := range r.posts {
		all = append(all, p)
	}
	return window(all, limit, skip)
}

func window(posts []*post.Post, limit, skip int) ([]*post.Post, int, error) {
	total := len(posts)
	if skip >= total {
		return nil, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return posts[skip:end], total, nil
}

type stubDirectory struct {
	communities map[string]*community.Community
}

func (d *stubDirectory) Get(_ context.Context, name string) (*community.Community, error) {
	if c, ok := d.communities[name]; ok {
		return c, nil
	}
	return nil, apperr.NotFound("Community")
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
	service *post.Service
}

func newHarness() *harness {
	repo := newStubRepo()
	grants := newGrantStore()
	directory := &stubDirectory{communities: map[string]*community.Community{
		"bikes": {Name: "bikes", DisplayName: "Bikes", Public: true},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := post.NewService(repo, directory, permission.NewResolver(grants), logger)
	return &harness{repo: repo, grants: grants, service: service}
}

// # Creation Gates

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	input := post.CreateInput{Community: "bikes", Title: "First ride", Content: "hello"}

	t.Run("unknown_community_is_404", func(t *testing.T) {
		h := newHarness()
		h.grants.seed("alice", permission.CreatePost(), permission.CreatePostIn("ghosts"))

		_, err := h.service.Create(ctx, "alice", post.CreateInput{Community: "ghosts", Title: "t"})
		require.Error(t, err)
		assert.Equal(t, 404, apperr.As(err).HTTPStatus)
	})

	t.Run("unverified_principal_denied", func(t *testing.T) {
		h := newHarness()
		// Scoped grant from subscribing, but no create_post yet.
		h.grants.seed("alice", permission.CreatePostIn("bikes"))

		_, err := h.service.Create(ctx, "alice", input)
		require.Error(t, err)
		assert.Equal(t, 403, apperr.As(err).HTTPStatus)
	})

	t.Run("global_gate_alone_is_not_enough", func(t *testing.T) {
		h := newHarness()
		h.grants.seed("alice", permission.CreatePost())

		_, err := h.service.Create(ctx, "alice", input)
		require.Error(t, err)
		assert.Equal(t, 403, apperr.As(err).HTTPStatus)
	})

	t.Run("subscriber_posts", func(t *testing.T) {
		h := newHarness()
		h.grants.seed("alice", permission.CreatePost(), permission.CreatePostIn("bikes"))

		created, err := h.service.Create(ctx, "alice", input)
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "bikes", created.Community)
		assert.Equal(t, "alice", created.AuthorID)
	})

	t.Run("moderator_posts_without_subscription", func(t *testing.T) {
		h := newHarness()
		h.grants.seed("mod", permission.CreatePost(), permission.Moderator("bikes"))

		_, err := h.service.Create(ctx, "mod", input)
		require.NoError(t, err)
	})

	t.Run("admin_still_needs_global_gate", func(t *testing.T) {
		h := newHarness()
		h.grants.seed("root", permission.Admin())

		_, err := h.service.Create(ctx, "root", input)
		require.Error(t, err)
		assert.Equal(t, 403, apperr.As(err).HTTPStatus)

		h.grants.seed("root", permission.CreatePost())
		_, err = h.service.Create(ctx, "root", input)
		require.NoError(t, err)
	})

	t.Run("missing_title", func(t *testing.T) {
		h := newHarness()
		h.grants.seed("alice", permission.CreatePost(), permission.CreatePostIn("bikes"))

		_, err := h.service.Create(ctx, "alice", post.CreateInput{Community: "bikes"})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	})
}

// # Deletion Gates

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*harness, *post.Post) {
		t.Helper()
		h := newHarness()
		h.grants.seed("author", permission.CreatePost(), permission.CreatePostIn("bikes"))
		created, err := h.service.Create(ctx, "author", post.CreateInput{Community: "bikes", Title: "t"})
		require.NoError(t, err)
		return h, created
	}

	t.Run("author_deletes_own_post", func(t *testing.T) {
		h, created := setup(t)

		require.NoError(t, h.service.Delete(ctx, "author", created.ID))

		_, err := h.service.Get(ctx, created.ID)
		require.Error(t, err)
	})

	t.Run("moderator_deletes_any_post", func(t *testing.T) {
		h, created := setup(t)
		h.grants.seed("mod", permission.Moderator("bikes"))

		require.NoError(t, h.service.Delete(ctx, "mod", created.ID))
	})

	t.Run("admin_escalates_through_moderator_check", func(t *testing.T) {
		h, created := setup(t)
		h.grants.seed("root", permission.Admin())

		require.NoError(t, h.service.Delete(ctx, "root", created.ID))
	})

	t.Run("stranger_forbidden", func(t *testing.T) {
		h, created := setup(t)

		err := h.service.Delete(ctx, "stranger", created.ID)
		require.Error(t, err)
		assert.Equal(t, 403, apperr.As(err).HTTPStatus)
	})

	t.Run("unknown_post_is_404", func(t *testing.T) {
		h, _ := setup(t)

		err := h.service.Delete(ctx, "author", "missing")
		require.Error(t, err)
		assert.Equal(t, 404, apperr.As(err).HTTPStatus)
	})
}

// # Listings

func TestService_ListByCommunity(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.grants.seed("author", permission.CreatePost(), permission.CreatePostIn("bikes"))

	for i := 0; i < 3; i++ {
		_, err := h.service.Create(ctx, "author", post.CreateInput{Community: "bikes", Title: "t"})
		require.NoError(t, err)
	}

	posts, total, err := h.service.ListByCommunity(ctx, "bikes", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, posts, 2)

	_, _, err = h.service.ListByCommunity(ctx, "ghosts", 2, 0)
	require.Error(t, err)
	assert.Equal(t, 404, apperr.As(err).HTTPStatus)
}
