package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/petpad-xyz/launchpad/internal/domain"
	"github.com/petpad-xyz/launchpad/internal/logger"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	errCodeBadRequest       ErrorCode = "bad_request"
	errCodeUnauthorized     ErrorCode = "unauthorized"
	errCodeNotFound         ErrorCode = "not_found"
	errCodeConflict         ErrorCode = "conflict"
	errCodeRateLimited      ErrorCode = "rate_limited"
	errCodeValidationFailed ErrorCode = "validation_failed"

	// Server errors (5xx)
	errCodeInternalError ErrorCode = "internal_error"
	errCodeDeployFailed  ErrorCode = "deploy_failed"
)

// errorResponse represents a standardized error response
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// errorDetail contains error information. Violations carries the full
// list of parser findings for validation failures, never just the first.
type errorDetail struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	Violations []string  `json:"violations,omitempty"`
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...string) {
	response := errorResponse{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	}

	if len(details) > 0 {
		response.Error.Details = details[0]
	}

	c.JSON(statusCode, response)
}

// respondBadRequest sends a 400 Bad Request response
func respondBadRequest(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusBadRequest, errCodeBadRequest, message, details...)
}

// respondInternalError sends a 500 Internal Server Error response and
// logs the error; the caller never sees the underlying detail
func respondInternalError(c *gin.Context, err error, fields ...zap.Field) {
	logger.ErrorCtx(c.Request.Context(), err, fields...)
	respondWithError(c, http.StatusInternalServerError, errCodeInternalError, "Internal server error")
}

// respondLaunchError maps a launch failure onto its HTTP representation
func respondLaunchError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	var conflictErr *domain.ConflictError
	var rateLimitErr *domain.RateLimitError
	var deployErr *domain.DeployError

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		respondWithError(c, http.StatusUnauthorized, errCodeUnauthorized, "Invalid Moltbook API key")
	case errors.Is(err, domain.ErrPostNotFound):
		respondWithError(c, http.StatusNotFound, errCodeNotFound, "Post not found")
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, errorResponse{Error: errorDetail{
			Code:       errCodeValidationFailed,
			Message:    "Invalid post format",
			Violations: validationErr.Violations,
		}})
	case errors.As(err, &conflictErr):
		respondWithError(c, http.StatusConflict, errCodeConflict, conflictErr.Message)
	case errors.As(err, &rateLimitErr):
		respondWithError(c, http.StatusTooManyRequests, errCodeRateLimited,
			fmt.Sprintf("Rate limit: wait %dh", rateLimitErr.RetryAfterHours))
	case errors.As(err, &deployErr):
		respondWithError(c, http.StatusBadGateway, errCodeDeployFailed, "Deploy failed", deployErr.Message)
	default:
		respondInternalError(c, err)
	}
}
