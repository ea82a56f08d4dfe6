package service

import "errors"

// Failure kinds surfaced by the services. Handlers branch on these with
// errors.Is to pick the response status; anything else maps to 500.
var (
	ErrValidation         = errors.New("all fields are required")
	ErrInvalidRole        = errors.New("invalid role")
	ErrAdminRegistration  = errors.New("cannot register with admin role")
	ErrUserExists         = errors.New("user already exists with this email or username")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)
