package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrAuthenticationRequired indicates the request carries no valid actor session.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrForbidden indicates the actor is not permitted to touch the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameTaken indicates a registration conflict on username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrValidation indicates missing or malformed request fields.
	ErrValidation = errors.New("validation failed")
)
