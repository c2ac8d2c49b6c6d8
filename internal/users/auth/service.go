// Copyright (c) 2026 Mesh Network. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meshnetwork/mesh/internal/permission"
	"github.com/meshnetwork/mesh/internal/platform/apperr"
	"github.com/meshnetwork/mesh/internal/platform/mail"
	"github.com/meshnetwork/mesh/internal/platform/sec"
	"github.com/meshnetwork/mesh/internal/platform/validate"
	"github.com/meshnetwork/mesh/pkg/uuid"
)

// # Service Layer

// Service implements identity, session, and account lifecycle use cases.
//
// # Review Process
//
// This service is the authentication choke point. Any change to hashing,
// session resolution, or the verification grant bundle needs a security review.
type Service struct {
	users        UserRepository
	sessions     SessionRepository
	verifyTokens VerificationTokenRepository
	permissions  *permission.Resolver
	mailer       mail.Mailer
	logger       *slog.Logger
}

// NewService constructs a new auth [Service] with its dependencies.
func NewService(
	users UserRepository,
	sessions SessionRepository,
	verifyTokens VerificationTokenRepository,
	permissions *permission.Resolver,
	mailer mail.Mailer,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:        users,
		sessions:     sessions,
		verifyTokens: verifyTokens,
		permissions:  permissions,
		mailer:       mailer,
		logger:       logger,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

/*
Register validates, hashes, and persists a brand new user account.

The account starts with email_verified=false and zero capability grants; the
verification token is issued into Redis and mailed out of band. Mail delivery
failure is logged, never fatal — the user can re-register after token expiry.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - error: Validation, Conflict (identity exists), or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {
	validator := &validate.Validator{}
	validator.Username(FieldName, input.Name)
	validator.Email(FieldEmail, input.Email)
	validator.Password(FieldPassword, input.Password)
	if input.DisplayName != "" {
		validator.MaxLen(FieldDisplayName, input.DisplayName, 50)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Verify identity uniqueness up front for client-safe Conflict messages.
	// The unique indexes remain the backstop under concurrency.
	if _, err := service.users.FindByName(context, input.Name); err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	if _, err := service.users.FindByEmail(context, input.Email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Prevent storing plain-text passwords.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	displayName := input.DisplayName
	if displayName == "" {
		displayName = input.Name
	}

	user := &User{
		ID:            uuid.New(),
		Name:          input.Name,
		DisplayName:   displayName,
		ChosenName:    input.Name,
		Email:         input.Email,
		PasswordHash:  hashedPassword,
		EmailVerified: false,
	}

	if err := service.users.Create(context, user); err != nil {
		return nil, err
	}

	// Issue the verification token and deliver it out of band. Neither step
	// may fail registration; the account simply stays unverified.
	token, err := sec.GenerateSecureToken(VerificationTokenLength)
	if err == nil {
		err = service.verifyTokens.Set(context, token, user.ID, VerificationTokenTTL)
	}
	if err == nil {
		err = service.mailer.SendVerification(context, user.Email, token)
	}
	if err != nil {
		service.logger.WarnContext(context, "verification_delivery_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	service.logger.Info("user_registered", slog.String("user_id", user.ID), slog.String("name", user.Name))

	return user, nil
}

// verificationBundle is the capability set unlocked by confirming an email
// address. Everything a regular member can do flows from these three grants.
var verificationBundle = []func(*permission.Resolver, context.Context, string) error{
	(*permission.Resolver).GiveUploadImage,
	(*permission.Resolver).GiveCreatePost,
	(*permission.Resolver).GiveCreateCommunity,
}

/*
VerifyEmail consumes a verification token and unlocks the member bundle.

The token is single-use: it is deleted before the account is mutated, so a
replayed link lands on NotFound. Verification then flips email_verified and
grants {upload_image, create_post, create_community}. A Conflict from an
individual grant (capability somehow already held) is discarded; other grant
failures propagate.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *User: The now-verified entity
  - error: NotFound (token or user), or storage errors
*/
func (service *Service) VerifyEmail(context context.Context, token string) (*User, error) {
	userID, err := service.verifyTokens.Get(context, token)
	if err != nil {
		return nil, err
	}

	user, err := service.users.FindByID(context, userID)
	if err != nil {
		return nil, apperr.NotFound("User")
	}

	// Consume the token before mutating state.
	if err := service.verifyTokens.Delete(context, token); err != nil {
		return nil, err
	}

	if err := service.users.MarkVerified(context, user.ID); err != nil {
		return nil, err
	}
	user.EmailVerified = true

	for _, give := range verificationBundle {
		if err := give(service.permissions, context, user.ID); err != nil && !apperr.IsConflict(err) {
			return nil, err
		}
	}

	service.logger.Info("user_verified", slog.String("user_id", user.ID))

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

/*
Login validates credentials and establishes a session.

Failure taxonomy, in check order:
  - unknown handle → NotFound (the platform exposes handle existence anyway
    via public profiles, so there is nothing to hide)
  - wrong password → Unauthorized
  - unverified email → 400 "Email not verified"

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *Session: Established session carrying the opaque token
  - *User: The authenticated entity
  - error: NotFound, Unauthorized, ValidationError, or storage errors
*/
func (service *Service) Login(context context.Context, input LoginInput) (*Session, *User, error) {
	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name)
	validator.Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		return nil, nil, err
	}

	user, err := service.users.FindByName(context, input.Name)
	if err != nil {
		return nil, nil, apperr.NotFound("User")
	}

	// Constant-time comparison inside bcrypt guards against timing attacks.
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, nil, apperr.Unauthorized("Invalid login credentials")
	}

	if !user.EmailVerified {
		return nil, nil, apperr.ValidationError("Email not verified")
	}

	token, err := sec.GenerateSecureToken(SessionTokenLength)
	if err != nil {
		return nil, nil, fmt.Errorf("auth_service_token_failed: %w", err)
	}

	session := &Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(SessionTTL),
	}

	if err := service.sessions.Create(context, session); err != nil {
		return nil, nil, err
	}

	service.logger.Info("user_logged_in", slog.String("user_id", user.ID))

	return session, user, nil
}

/*
Logout removes the session row, invalidating the token immediately.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Persistence failures
*/
func (service *Service) Logout(context context.Context, token string) error {
	if token == "" {
		return apperr.Unauthorized("Not logged in")
	}
	return service.sessions.Delete(context, token)
}

// # Session Resolution

/*
Resolve maps an opaque session token to a principal snapshot.

State machine, evaluated in order:
  - empty token → Unauthorized "Not logged in"
  - no session row, or row past its TTL → Unauthorized "Invalid session"
  - session resolves but the user row is gone → NotFound "User not found"
    (store inconsistency; fail closed)
  - user unverified → 400 "Email not verified", regardless of operation
  - otherwise → the sanitized principal snapshot

Every authenticated operation passes through here before touching anything.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *sec.Principal: Credential-free identity snapshot
  - error: One of the rejection states above
*/
func (service *Service) Resolve(context context.Context, token string) (*sec.Principal, error) {
	if token == "" {
		return nil, apperr.Unauthorized("Not logged in")
	}

	session, err := service.sessions.FindByToken(context, token)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid session")
	}

	if session.Expired(time.Now()) {
		// Lazy cleanup; the periodic sweep handles the rest.
		_ = service.sessions.Delete(context, token)
		return nil, apperr.Unauthorized("Invalid session")
	}

	user, err := service.users.FindByID(context, session.UserID)
	if err != nil {
		return nil, apperr.NotFound("User")
	}

	if !user.EmailVerified {
		return nil, apperr.ValidationError("Email not verified")
	}

	return user.Principal(), nil
}

// # Account Views

// MeView is the owner's view of their account: private fields plus the list
// of capability tokens they hold directly.
type MeView struct {
	*User
	Capabilities []string `json:"capabilities"`
}

/*
GetMe assembles the account owner's view.

Parameters:
  - context: context.Context
  - principalID: string

Returns:
  - *MeView: Account data plus direct capability tokens
  - error: NotFound or storage errors
*/
func (service *Service) GetMe(context context.Context, principalID string) (*MeView, error) {
	user, err := service.users.FindByID(context, principalID)
	if err != nil {
		return nil, apperr.NotFound("User")
	}

	capabilities, err := service.permissions.ListCapabilities(context, principalID)
	if err != nil {
		return nil, err
	}

	tokens := make([]string, 0, len(capabilities))
	for _, capability := range capabilities {
		tokens = append(tokens, capability.Token())
	}

	return &MeView{User: user, Capabilities: tokens}, nil
}

/*
GetProfile returns the public projection of a user by handle.

Parameters:
  - context: context.Context
  - name: string

Returns:
  - *Profile: Sanitized public profile
  - error: NotFound or storage errors
*/
func (service *Service) GetProfile(context context.Context, name string) (*Profile, error) {
	user, err := service.users.FindByName(context, name)
	if err != nil {
		return nil, apperr.NotFound("User")
	}
	return user.PublicProfile(), nil
}

// # Self-Scoped Mutations

/*
SetAvatar stores a new avatar reference for the principal.

Requires the upload_image capability (admins escalate).

Parameters:
  - context: context.Context
  - principalID: string
  - image: string (opaque reference, e.g. a CDN key)

Returns:
  - error: Forbidden, Validation, or storage errors
*/
func (service *Service) SetAvatar(context context.Context, principalID, image string) error {
	validator := &validate.Validator{}
	validator.Required(FieldImage, image).MaxLen(FieldImage, image, 500)
	if err := validator.Err(); err != nil {
		return err
	}

	allowed, err := service.permissions.CanUploadImage(context, principalID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperr.Forbidden("No permission")
	}

	return service.users.UpdateImage(context, principalID, image)
}

/*
ChangePassword rotates the credential after re-verifying the current one.

Session possession alone is not enough for destructive self-operations; the
current password is the second factor against a stolen session.

Parameters:
  - context: context.Context
  - principalID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - error: Unauthorized (wrong current password), Validation, or storage errors
*/
func (service *Service) ChangePassword(context context.Context, principalID, currentPassword, newPassword string) error {
	validator := &validate.Validator{}
	validator.Required(FieldCurrentPassword, currentPassword)
	validator.Password(FieldNewPassword, newPassword)
	if err := validator.Err(); err != nil {
		return err
	}

	user, err := service.users.FindByID(context, principalID)
	if err != nil {
		return apperr.NotFound("User")
	}

	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	newHash, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	if err := service.users.UpdatePassword(context, principalID, newHash); err != nil {
		return err
	}

	service.logger.Info("password_changed", slog.String("user_id", principalID))

	return nil
}

/*
DeleteAccount removes the principal after credential re-entry.

The row deletion cascades to sessions, posts, subscriptions, and capability
grants.

Parameters:
  - context: context.Context
  - principalID: string
  - password: string

Returns:
  - error: Unauthorized (wrong password) or storage errors
*/
func (service *Service) DeleteAccount(context context.Context, principalID, password string) error {
	user, err := service.users.FindByID(context, principalID)
	if err != nil {
		return apperr.NotFound("User")
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return apperr.Unauthorized("Password is incorrect")
	}

	if err := service.users.Delete(context, principalID); err != nil {
		return err
	}

	service.logger.Info("account_deleted", slog.String("user_id", principalID))

	return nil
}

// # Bootstrap

/*
BootstrapAdmin ensures the platform's single admin principal exists.

On first run it creates the "admin" account with a random password — logged
exactly once, at startup — already verified, and gives it the admin
capability. This is the only code path that ever grants admin directly.

Parameters:
  - context: context.Context

Returns:
  - error: Storage failures
*/
func (service *Service) BootstrapAdmin(context context.Context) error {
	existing, err := service.users.FindByName(context, AdminName)
	if err == nil {
		// Account exists; make sure the grant survived as well.
		if grantErr := service.permissions.GiveAdmin(context, existing.ID); grantErr != nil && !apperr.IsConflict(grantErr) {
			return grantErr
		}
		return nil
	}

	password, err := sec.GenerateSecureToken(AdminPasswordLength)
	if err != nil {
		return fmt.Errorf("auth_service_bootstrap_failed: %w", err)
	}

	hash, err := sec.HashPassword(password)
	if err != nil {
		return fmt.Errorf("auth_service_bootstrap_failed: %w", err)
	}

	admin := &User{
		ID:            uuid.New(),
		Name:          AdminName,
		DisplayName:   AdminName,
		ChosenName:    AdminName,
		Email:         "admin@meshnetwork.app",
		PasswordHash:  hash,
		EmailVerified: true,
	}

	if err := service.users.Create(context, admin); err != nil {
		return err
	}

	if err := service.permissions.GiveAdmin(context, admin.ID); err != nil {
		return err
	}

	// The only place this password is ever visible. Rotate it after first login.
	service.logger.Warn("admin_account_bootstrapped",
		slog.String("name", AdminName),
		slog.String("password", password),
	)

	return nil
}
