// README: Shared handler utilities: JSON error shapes and error mapping.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stackshack/internal/http/middleware"
	"stackshack/internal/modules/order"
	"stackshack/internal/modules/shelter"
	"stackshack/internal/modules/user"
	"stackshack/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

func writeOrderError(c *gin.Context, err error) {
	var te *order.TransitionError
	switch {
	case errors.As(err, &te):
		writeError(c, http.StatusConflict, te.Error())
	case errors.Is(err, order.ErrBadRequest), errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, user.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound), errors.Is(err, shelter.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrUnauthorized):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, order.ErrNotCancelable), errors.Is(err, order.ErrNotClaimable),
		errors.Is(err, order.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// callerID returns the authenticated user id set by the auth middleware.
func callerID(c *gin.Context) types.ID {
	v, _ := c.Get(middleware.UserIDKey)
	s, _ := v.(string)
	return types.ID(s)
}
