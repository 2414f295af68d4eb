package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Authentication errors
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrAuthFailed         = fmt.Errorf("authentication failed")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrTokenExpired       = fmt.Errorf("access token expired")

	// API and service errors
	ErrTimeout            = fmt.Errorf("operation timed out")
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
