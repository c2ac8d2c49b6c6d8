// Copyright (c) 2026 Mesh Network. All rights reserved.

package auth

import "time"

// # Authentication Constraints

const (
	// SessionTTL is the duration a session token remains valid.
	// Long-lived (30 days) to provide a good user experience; expired rows
	// are indistinguishable from missing ones at resolution time.
	SessionTTL = 30 * 24 * time.Hour

	// SessionTokenLength is the byte length of the random secure session token.
	SessionTokenLength = 32

	// VerificationTokenTTL is the duration an email verification token remains valid.
	// Long-lived (24 hours) as users might not check email immediately.
	VerificationTokenTTL = 24 * time.Hour

	// VerificationTokenLength is the byte length of the random verification token.
	VerificationTokenLength = 32

	// AdminName is the handle of the bootstrap admin principal.
	AdminName = "admin"

	// AdminPasswordLength is the byte length of the generated bootstrap password.
	AdminPasswordLength = 24
)
