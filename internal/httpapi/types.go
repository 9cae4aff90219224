// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Aikagi Contributors

package httpapi

import "github.com/aikagi/aikagi/internal/auth"

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the body of POST /api/change_password.
type ChangePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	NewPasswordConfirm string `json:"newPasswordConfirm"`
}

// SignupResponse is the envelope for POST /signup. Data is null on failure.
type SignupResponse struct {
	Success bool          `json:"success"`
	Data    *auth.Profile `json:"data"`
	Message string        `json:"message"`
}

// LoginResponse is the envelope for POST /api/login. Payload is null on
// failure.
type LoginResponse struct {
	Success bool          `json:"success"`
	Payload *auth.Profile `json:"payload"`
	Message string        `json:"message"`
}

// StatusResponse is the envelope for operations that return no data.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
