// Copyright (c) 2026 Mesh Network. All rights reserved.

package permission_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshnetwork/mesh/internal/permission"
)

/*
TestCapability_Token checks the storage encoding of every capability kind.
*/
func TestCapability_Token(t *testing.T) {
	tests := []struct {
		name       string
		capability permission.Capability
		token      string
	}{
		{"admin", permission.Admin(), "admin"},
		{"create_community", permission.CreateCommunity(), "create_community"},
		{"upload_image", permission.UploadImage(), "upload_image"},
		{"create_post", permission.CreatePost(), "create_post"},
		{"moderator_scoped", permission.Moderator("bikes"), "moderator_bikes"},
		{"create_post_scoped", permission.CreatePostIn("bikes"), "create_post_community_bikes"},
		{"zero_value", permission.Capability{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.token, tt.capability.Token())
		})
	}
}

/*
TestCapability_CommunityNormalization verifies that scoped constructors
slug-normalize the community name, so differently-cased or accented spellings
resolve to the same grant.
*/
func TestCapability_CommunityNormalization(t *testing.T) {
	assert.Equal(t, "moderator_retro-gaming", permission.Moderator("Retro Gaming").Token())
	assert.Equal(t, permission.Moderator("BIKES"), permission.Moderator("bikes"))
	assert.Equal(t, "create_post_community_cafe", permission.CreatePostIn("Café").Token())
}

/*
TestParseToken decodes storage tokens, including the overlapping prefixes:
"create_post_community_x" must never parse as the bare "create_post".
*/
func TestParseToken(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected permission.Capability
		wantErr  bool
	}{
		{"admin", "admin", permission.Admin(), false},
		{"create_community", "create_community", permission.CreateCommunity(), false},
		{"upload_image", "upload_image", permission.UploadImage(), false},
		{"create_post", "create_post", permission.CreatePost(), false},
		{"moderator_scoped", "moderator_bikes", permission.Moderator("bikes"), false},
		{"create_post_scoped", "create_post_community_bikes", permission.CreatePostIn("bikes"), false},
		{"moderator_missing_community", "moderator_", permission.Capability{}, true},
		{"scoped_post_missing_community", "create_post_community_", permission.Capability{}, true},
		{"unknown_token", "delete_everything", permission.Capability{}, true},
		{"empty", "", permission.Capability{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capability, err := permission.ParseToken(tt.token)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, capability)
		})
	}
}

/*
TestCapability_RoundTrip ensures Token and ParseToken are inverses for every
well-formed capability.
*/
func TestCapability_RoundTrip(t *testing.T) {
	capabilities := []permission.Capability{
		permission.Admin(),
		permission.CreateCommunity(),
		permission.UploadImage(),
		permission.CreatePost(),
		permission.Moderator("bikes"),
		permission.CreatePostIn("retro-gaming"),
	}

	for _, capability := range capabilities {
		decoded, err := permission.ParseToken(capability.Token())
		require.NoError(t, err)
		assert.Equal(t, capability, decoded)
	}
}
