package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPostNotFound is returned when the referenced post does not exist
	ErrPostNotFound = errors.New("post not found")

	// ErrUnauthorized is returned when the supplied credential is rejected
	ErrUnauthorized = errors.New("invalid credential")

	// ErrLaunchNotFound is returned when a launch record is not found
	ErrLaunchNotFound = errors.New("launch not found")
)

// ValidationError carries the complete list of violations found while
// parsing post content. Violations are never truncated to the first.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid post content: %s", strings.Join(e.Violations, "; "))
}

// ConflictError is returned when a post or symbol has already been consumed
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// RateLimitError is returned when an agent launches again inside the
// cooldown window. RetryAfterHours is the ceiling of the remaining wait.
type RateLimitError struct {
	RetryAfterHours int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: wait %dh before launching again", e.RetryAfterHours)
}

// DeployErrorKind classifies deployment gateway failures
type DeployErrorKind string

const (
	DeployErrorNotConfigured     DeployErrorKind = "deployer-not-configured"
	DeployErrorInsufficientFunds DeployErrorKind = "insufficient-funds"
	DeployErrorSimulation        DeployErrorKind = "simulation-revert"
	DeployErrorTimeout           DeployErrorKind = "external-timeout"
	DeployErrorUnknown           DeployErrorKind = "unknown"
)

// DeployError is a typed failure surfaced by the deployment gateway.
// Its message is persisted verbatim on the failed launch row.
type DeployError struct {
	Kind    DeployErrorKind
	Message string
}

func (e *DeployError) Error() string {
	return e.Message
}

// NewDeployError builds a DeployError with a formatted message
func NewDeployError(kind DeployErrorKind, format string, args ...any) *DeployError {
	return &DeployError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
