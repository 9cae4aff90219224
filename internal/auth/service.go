// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Aikagi Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
)

// DefaultSignupDelay is the fixed anti-spam delay applied to every signup
// after validation passes and before storage is touched.
const DefaultSignupDelay = time.Second

// dummyPasswordHash is used when a user doesn't exist to prevent timing
// attacks: password verification still runs so response time stays
// consistent. This is NOT a real credential.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Service provides the authentication operations exposed over HTTP.
type Service struct {
	users       UserRepository
	sessions    SessionRepository
	hasher      PasswordHasher
	signupDelay time.Duration
	sessionTTL  time.Duration
}

// Option customizes a Service.
type Option func(*Service)

// WithSignupDelay overrides the anti-spam delay. Zero disables it.
func WithSignupDelay(d time.Duration) Option {
	return func(s *Service) { s.signupDelay = d }
}

// WithSessionTTL overrides the session lifetime.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Service) { s.sessionTTL = d }
}

// NewService creates a new Service.
func NewService(users UserRepository, sessions SessionRepository, hasher PasswordHasher, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("users repository is required")
	}
	if sessions == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("sessions repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("password hasher is required")
	}

	s := &Service{
		users:       users,
		sessions:    sessions,
		hasher:      hasher,
		signupDelay: DefaultSignupDelay,
		sessionTTL:  SessionTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SessionTTL returns the configured session lifetime. The HTTP boundary
// derives the cookie Max-Age from it.
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Signup validates the request, applies the anti-spam delay, checks email
// uniqueness, and creates the user. Validation failures return before any
// storage access.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Fixed delay runs after validation and before the uniqueness check.
	if err := sleep(ctx, s.signupDelay); err != nil {
		return nil, oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "anti-spam delay").
			Wrap(err)
	}

	_, err := s.users.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, oops.Code("AUTH_EMAIL_TAKEN").
			Errorf("email is already registered")
	case !errors.Is(err, ErrNotFound):
		return nil, oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(req.Name, req.Email, hash)
	if err != nil {
		return nil, oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "create user").
			Wrap(err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Two signups racing past the uniqueness pre-check resolve here.
		if errors.Is(err, ErrEmailTaken) {
			return nil, oops.Code("AUTH_EMAIL_TAKEN").Wrap(err)
		}
		return nil, oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "persist user").
			Wrap(err)
	}

	return user, nil
}

// Login authenticates a user and creates a session, deleting every prior
// session for that user first. Unknown email and wrong password return the
// same error; verification runs against a dummy hash when the user does
// not exist so response time does not leak which check failed.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, *User, error) {
	user, lookupErr := s.users.GetByEmail(ctx, email)

	targetHash := dummyPasswordHash
	userExists := false
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, nil, oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get user by email").
				Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	valid := s.hasher.Verify(password, targetHash)
	if !userExists || !valid {
		return nil, nil, oops.Code("AUTH_INVALID_CREDENTIALS").
			Errorf("email or password combination is incorrect")
	}

	// Single-session policy: drop prior sessions, then create the new one.
	// The two calls are not transactional; a crash in between leaves the
	// user with zero sessions, which the next login repairs.
	if err := s.sessions.DeleteByUser(ctx, user.ID); err != nil {
		return nil, nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "delete prior sessions").
			Wrap(err)
	}

	token, err := GenerateSessionToken()
	if err != nil {
		return nil, nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "generate session token").
			Wrap(err)
	}

	session, err := NewSession(token, user.ID, time.Now().Add(s.sessionTTL))
	if err != nil {
		return nil, nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "create session").
			Wrap(err)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, nil, oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "persist session").
			Wrap(err)
	}

	return session, user, nil
}

// ValidateSession checks that a session exists and has not expired.
// Expired sessions are rejected but not deleted; they stay in storage
// until the sweep removes them.
func (s *Service) ValidateSession(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, oops.Code("AUTH_SESSION_REQUIRED").Errorf("session cookie is missing")
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_SESSION_INVALID").Errorf("invalid session")
		}
		return nil, oops.Code("AUTH_SESSION_VALIDATE_FAILED").
			With("operation", "get session by id").
			Wrap(err)
	}

	if session.IsExpired() {
		return nil, oops.Code("AUTH_SESSION_EXPIRED").Errorf("session has expired")
	}

	return session, nil
}

// ChangePassword verifies the session and current password, then replaces
// the stored hash. The session is intentionally left in place.
func (s *Service) ChangePassword(ctx context.Context, sessionID, currentPassword, newPassword, newPasswordConfirm string) error {
	session, err := s.ValidateSession(ctx, sessionID)
	if err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		// Defensive: a live session referencing a missing user should
		// not occur, but it is a distinct outcome when it does.
		if errors.Is(err, ErrNotFound) {
			return oops.Code("AUTH_USER_NOT_FOUND").
				With("user_id", session.UserID.String()).
				Errorf("user not found")
		}
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
			With("operation", "get user by id").
			Wrap(err)
	}

	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return oops.Code("AUTH_PASSWORD_INCORRECT").Errorf("current password is incorrect")
	}

	if newPassword != newPasswordConfirm {
		return oops.Code("AUTH_PASSWORD_MISMATCH").Errorf("new passwords do not match")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
			With("operation", "hash new password").
			Wrap(err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
			With("operation", "update password hash").
			Wrap(err)
	}

	return nil
}

// Logout deletes a session. Deleting an unknown session is not an error;
// the outcome is the same either way.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, ErrNotFound) {
		return oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}
	return nil
}

// SweepExpiredSessions removes expired session rows. Session validity
// never depends on it; it only reclaims storage.
func (s *Service) SweepExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, oops.Code("AUTH_SWEEP_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	return n, nil
}

// sleep blocks for d or until the context is canceled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck // caller wraps with operation context
	}
}
