// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Aikagi Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned when creating a user whose email is already
// registered. Repositories map the store-level unique violation onto it so
// the invariant holds even when two signups race past the pre-check.
var ErrEmailTaken = errors.New("email already taken")
