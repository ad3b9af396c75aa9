package types

import "errors"

// Standard errors returned by the repository layer.
var (
	// ErrNotFound indicates a lookup by id, uid, or email matched nothing.
	ErrNotFound = errors.New("not found")

	// ErrInvalidID indicates an empty or malformed entity id.
	ErrInvalidID = errors.New("invalid id")

	// ErrInvalidInput indicates a create/update payload missing required fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateUID indicates a user create with an already-registered uid.
	ErrDuplicateUID = errors.New("uid already registered")

	// ErrInvalidCredentials indicates a sign-in with a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Engine lifecycle errors.
var (
	// ErrEngineClosed indicates an operation on a closed engine handle.
	ErrEngineClosed = errors.New("engine is closed")
)
