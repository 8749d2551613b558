package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrJobNotFound indicates the job doesn't exist on the CI server
	ErrJobNotFound = errors.New("job not found on ci server")

	// ErrBuildNotFound indicates the build doesn't exist on the CI server
	ErrBuildNotFound = errors.New("build not found on ci server")

	// ErrUnauthorized indicates the CI server rejected the request
	ErrUnauthorized = errors.New("ci server rejected credentials")

	// ErrProviderUnavailable indicates the CI server or proxy is temporarily unavailable
	ErrProviderUnavailable = errors.New("ci server temporarily unavailable")
)

// ProviderError represents a CI-server-specific error
type ProviderError struct {
	Code    int
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider error %d: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
