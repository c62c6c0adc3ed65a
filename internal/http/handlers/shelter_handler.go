// README: Shelter directory and donation history handlers.
package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"

	"stackshack/internal/modules/donation"
	"stackshack/internal/modules/shelter"
	"stackshack/internal/types"
)

// ShelterStore is the subset of the shelter store the handlers use.
type ShelterStore interface {
	Create(ctx context.Context, sh *shelter.Shelter) error
	List(ctx context.Context) ([]shelter.Shelter, error)
}

// DonationLister reads the donation audit trail.
type DonationLister interface {
	List(ctx context.Context) ([]donation.Record, error)
}

type ShelterHandler struct {
	shelters  ShelterStore
	donations DonationLister
}

func NewShelterHandler(shelters ShelterStore, donations DonationLister) *ShelterHandler {
	return &ShelterHandler{shelters: shelters, donations: donations}
}

type createShelterReq struct {
	Name         string       `json:"name"`
	ContactEmail string       `json:"contact_email"`
	ContactPhone string       `json:"contact_phone"`
	Address      string       `json:"address"`
	Coords       *types.Point `json:"coords,omitempty"`
}

func (h *ShelterHandler) Create(c *gin.Context) {
	var req createShelterReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		writeError(c, http.StatusBadRequest, "name is required")
		return
	}
	sh := &shelter.Shelter{
		ID:           newShelterID(),
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
		Coords:       req.Coords,
	}
	if err := h.shelters.Create(c.Request.Context(), sh); err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusCreated, sh)
}

func (h *ShelterHandler) List(c *gin.Context) {
	shelters, err := h.shelters.List(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": shelters})
}

func (h *ShelterHandler) Donations(c *gin.Context) {
	records, err := h.donations.List(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

func newShelterID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}
