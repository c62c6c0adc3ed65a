// README: Notification preference handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stackshack/internal/modules/user"
	"stackshack/internal/types"
)

type ProfileHandler struct {
	users *user.Service
}

func NewProfileHandler(svc *user.Service) *ProfileHandler {
	return &ProfileHandler{users: svc}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	p, err := h.users.Get(c.Request.Context(), callerID(c))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type updatePreferencesReq struct {
	Address              string       `json:"address"`
	Coords               *types.Point `json:"coords,omitempty"`
	MaxDistanceKm        float64      `json:"max_distance_km"`
	MinPrice             types.Money  `json:"min_price"`
	MaxPrice             types.Money  `json:"max_price"`
	PreferredItems       []string     `json:"preferred_items"`
	NotificationsEnabled bool         `json:"notifications_enabled"`
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var req updatePreferencesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := h.users.Update(c.Request.Context(), user.UpdateCommand{
		UserID:               callerID(c),
		Address:              req.Address,
		Coords:               req.Coords,
		MaxDistanceKm:        req.MaxDistanceKm,
		MinPrice:             req.MinPrice,
		MaxPrice:             req.MaxPrice,
		PreferredItems:       req.PreferredItems,
		NotificationsEnabled: req.NotificationsEnabled,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
