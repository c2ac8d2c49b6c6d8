// Copyright (c) 2026 Mesh Network. All rights reserved.

package sec

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateSecureToken returns a URL-safe random token built from byteLength
// bytes of crypto/rand entropy.
//
// Used for session tokens and email verification tokens. The encoded string
// is longer than byteLength (base64 expansion).
func GenerateSecureToken(byteLength int) (string, error) {
	raw := make([]byte, byteLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
