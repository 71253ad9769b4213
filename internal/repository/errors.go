// Package repository defines the durable stores behind the public
// registration endpoint and the error values they share. These sentinel
// values allow higher layers such as handlers to distinguish between
// different failure scenarios without knowing which backend is in use.
package repository

import "errors"

// ErrNotFound is returned when no record matches a lookup. Callers
// treat it as "absent", not as a failure.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an account with the same email is
// already stored. Handlers should translate this into an HTTP 400
// response.
var ErrEmailExists = errors.New("email already exists")
