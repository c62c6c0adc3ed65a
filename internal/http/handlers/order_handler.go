// README: Order handlers: placement, payment verification, listings, and
// the lifecycle operations (status, cancel, claim, shelter assignment).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stackshack/internal/modules/order"
	"stackshack/internal/types"
)

type OrderHandler struct {
	orders *order.Service
}

func NewOrderHandler(svc *order.Service) *OrderHandler {
	return &OrderHandler{orders: svc}
}

type placeOrderReq struct {
	Items   []order.Item  `json:"items"`
	Amount  types.Money   `json:"amount"`
	Address order.Address `json:"address"`
}

func (h *OrderHandler) Place(c *gin.Context) {
	h.place(c, false)
}

func (h *OrderHandler) PlaceCOD(c *gin.Context) {
	h.place(c, true)
}

func (h *OrderHandler) place(c *gin.Context, cod bool) {
	var req placeOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	id, sessionURL, err := h.orders.Place(c.Request.Context(), order.PlaceCommand{
		UserID:         callerID(c),
		Items:          req.Items,
		Amount:         req.Amount,
		Address:        req.Address,
		CashOnDelivery: cod,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	resp := gin.H{"order_id": id, "status": order.StatusProcessing}
	if sessionURL != "" {
		resp["session_url"] = sessionURL
	}
	c.JSON(http.StatusCreated, resp)
}

type verifyReq struct {
	OrderID string `json:"order_id"`
	Success bool   `json:"success"`
}

func (h *OrderHandler) Verify(c *gin.Context) {
	var req verifyReq
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == "" {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.orders.VerifyPayment(c.Request.Context(), types.ID(req.OrderID), req.Success); err != nil {
		writeOrderError(c, err)
		return
	}
	if !req.Success {
		c.JSON(http.StatusOK, gin.H{"paid": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"paid": true})
}

func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context())
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders})
}

func (h *OrderHandler) ListMine(c *gin.Context) {
	orders, err := h.orders.ListByUser(c.Request.Context(), callerID(c))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": orders})
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	o, err := h.orders.UpdateStatus(c.Request.Context(), order.UpdateStatusCommand{
		OrderID: types.ID(c.Param("id")),
		Next:    order.Status(req.Status),
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": o.ID, "status": o.Status})
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	err := h.orders.Cancel(c.Request.Context(), order.CancelCommand{
		OrderID: types.ID(c.Param("id")),
		UserID:  callerID(c),
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": order.StatusCancelled})
}

type claimReq struct {
	Address *order.Address `json:"address,omitempty"`
}

func (h *OrderHandler) Claim(c *gin.Context) {
	var req claimReq
	// The body is optional; a claim without a new address keeps the
	// original delivery address.
	_ = c.ShouldBindJSON(&req)

	o, err := h.orders.Claim(c.Request.Context(), order.ClaimCommand{
		OrderID: types.ID(c.Param("id")),
		UserID:  callerID(c),
		Address: req.Address,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": o.ID, "status": o.Status})
}

type assignShelterReq struct {
	ShelterID string `json:"shelter_id"`
}

func (h *OrderHandler) AssignShelter(c *gin.Context) {
	var req assignShelterReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ShelterID == "" {
		writeError(c, http.StatusBadRequest, "shelter_id is required")
		return
	}
	o, already, err := h.orders.AssignShelter(c.Request.Context(), order.AssignShelterCommand{
		OrderID:   types.ID(c.Param("id")),
		ShelterID: types.ID(req.ShelterID),
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order_id":         o.ID,
		"status":           o.Status,
		"already_assigned": already,
	})
}
