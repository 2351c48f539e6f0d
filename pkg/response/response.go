// Package response centralizes HTTP response shapes and helpers.
// Handlers rely on it to keep controllers thin and uniform.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/rotation-advisor-service/internal/gameclock"
	"github.com/maxviazov/rotation-advisor-service/internal/repository"
	"github.com/maxviazov/rotation-advisor-service/internal/service"
)

// ErrorPayload is the canonical error envelope returned by the API.
type ErrorPayload struct {
	Error       string               `json:"error"`
	Message     string               `json:"message,omitempty"`
	FieldErrors []service.FieldError `json:"field_errors,omitempty"`
}

// MapError converts a domain / infrastructure error into an HTTP status and payload.
// Lineup rule violations carry the clock's message so a coach sees why the change was refused.
func MapError(err error) (int, ErrorPayload) {
	if err == nil {
		return http.StatusOK, ErrorPayload{Error: "ok"}
	}

	if errors.Is(err, service.ErrInvalidInput) {
		return http.StatusBadRequest, ErrorPayload{
			Error:       "invalid_input",
			Message:     "one or more fields are invalid",
			FieldErrors: service.FieldErrors(err),
		}
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, ErrorPayload{Error: "game_not_found"}
	case errors.Is(err, gameclock.ErrPlayerNotFound):
		return http.StatusNotFound, ErrorPayload{Error: "player_not_found", Message: err.Error()}
	case errors.Is(err, gameclock.ErrDuplicatePlayer):
		return http.StatusConflict, ErrorPayload{Error: "duplicate_player", Message: err.Error()}
	case errors.Is(err, gameclock.ErrInvalidMove):
		return http.StatusConflict, ErrorPayload{Error: "invalid_move", Message: err.Error()}
	case errors.Is(err, repository.ErrAlreadyExists):
		return http.StatusConflict, ErrorPayload{Error: "game_exists"}
	case errors.Is(err, repository.ErrConflict):
		// A lost race is worth retrying; the state the client saw is gone.
		return http.StatusConflict, ErrorPayload{Error: "concurrent_update", Message: "reload the game and retry"}
	default:
		return http.StatusInternalServerError, ErrorPayload{Error: "internal_error"}
	}
}

// WriteError writes an error response and aborts the context.
func WriteError(c *gin.Context, err error) {
	status, payload := MapError(err)
	c.AbortWithStatusJSON(status, payload)
}

// WriteData writes a successful JSON response.
func WriteData(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}
