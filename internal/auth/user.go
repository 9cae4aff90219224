// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Aikagi Contributors

package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Role enumerates account roles.
type Role string

// Known roles. New accounts get RoleUser.
const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// MinPasswordLength is the minimum accepted password length at signup.
const MinPasswordLength = 6

// emailRegex matches the address shapes the signup form accepts: a local
// part, a single @, and a dotted domain. Deliverability is not checked.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)

// User represents an account. PasswordHash is never serialized; responses
// carry the Profile projection instead.
type User struct {
	ID           ulid.ULID
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the sanitized projection of a User returned to clients.
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// NewUser creates a validated User with a fresh ID and the default role.
func NewUser(name, email, passwordHash string) (*User, error) {
	if name == "" {
		return nil, oops.Code("AUTH_INVALID_USER").Errorf("name cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return nil, oops.Code("AUTH_INVALID_USER").Errorf("malformed email")
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_INVALID_USER").Errorf("password hash cannot be empty")
	}

	now := time.Now()
	return &User{
		ID:           ulid.Make(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Profile returns the sanitized projection of the user.
func (u *User) Profile() *Profile {
	return &Profile{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}

// SignupRequest carries the signup form fields.
type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// Validate checks the signup fields. The error message is the user-facing
// text for the first failing field, matching the client-side form copy.
func (r SignupRequest) Validate() error {
	if r.Name == "" {
		return oops.Code("AUTH_VALIDATION").
			With("field", "name").
			Errorf("表示名は必須です")
	}
	if !emailRegex.MatchString(r.Email) {
		return oops.Code("AUTH_VALIDATION").
			With("field", "email").
			Errorf("メールアドレスの形式が正しくありません")
	}
	if len(r.Password) < MinPasswordLength {
		return oops.Code("AUTH_VALIDATION").
			With("field", "password").
			Errorf("パスワードは%d文字以上必要です", MinPasswordLength)
	}
	if len(r.PasswordConfirm) < MinPasswordLength {
		return oops.Code("AUTH_VALIDATION").
			With("field", "passwordConfirm").
			Errorf("確認用パスワードは%d文字以上必要です", MinPasswordLength)
	}
	if r.Password != r.PasswordConfirm {
		return oops.Code("AUTH_VALIDATION").
			With("field", "passwordConfirm").
			Errorf("パスワードが一致しません")
	}
	return nil
}

// UserRepository manages user persistence. Email lookups match the stored
// value exactly (case-sensitive).
type UserRepository interface {
	// Create stores a new user. A duplicate email surfaces as ErrEmailTaken.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByEmail retrieves a user by email. Returns ErrNotFound if no
	// user has the given email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// UpdatePassword overwrites the password hash for a user.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error
}
