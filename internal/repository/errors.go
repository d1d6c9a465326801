// Package repository defines error values that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// and services to distinguish between different failure scenarios without
// inspecting driver-specific errors.
package repository

import "errors"

// ErrUserNotFound is returned when no user row matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when an insert collides with the unique
// email index. Handlers should translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrRestaurantNotFound is returned when a restaurant cannot be found.
// Handlers should translate this into an HTTP 404 response.
var ErrRestaurantNotFound = errors.New("restaurant not found")

// ErrRequestNotFound is returned when a verification request id does not
// exist. Handlers should translate this into an HTTP 404 response.
var ErrRequestNotFound = errors.New("verification request not found")

// ErrRequestNotPending is returned when approve or reject is attempted on
// a request that has already been reviewed. The transition out of PENDING
// happens at most once; handlers translate this into an HTTP 400 response.
var ErrRequestNotPending = errors.New("verification request is not pending")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an HTTP
// 403 response.
var ErrForbidden = errors.New("forbidden")
