// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Aikagi Contributors

// Package auth provides the authentication core: user accounts, password
// hashing, and cookie-backed sessions.
//
// # Domain Types
//
// Domain types (User, Session) should be created using their constructors:
//   - NewUser - creates a User with a fresh ULID and the default role
//   - NewSession - creates a Session with a validated owner and expiry
//
// Direct struct initialization bypasses validation and may create invalid
// state. Repository implementations receive pre-validated types from these
// constructors.
//
// # Service
//
// Service coordinates the flows exposed over HTTP: Signup, Login,
// ValidateSession, ChangePassword, and Logout. It enforces the
// single-active-session-per-user policy (login deletes every prior session
// for the user before creating the new one) and the anti-enumeration
// contract (unknown email and wrong password are indistinguishable).
package auth
