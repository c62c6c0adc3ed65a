// README: Order aggregate, status definitions, and the transition table.
package order

import (
	"fmt"
	"strings"
	"time"

	"stackshack/internal/types"
)

type Status string

// The six persisted status values. Anything else in storage is a
// data-integrity violation.
const (
	StatusProcessing     Status = "Processing"
	StatusOutForDelivery Status = "OutForDelivery"
	StatusDelivered      Status = "Delivered"
	StatusRedistribute   Status = "Redistribute"
	StatusCancelled      Status = "Cancelled"
	StatusDonated        Status = "Donated"
)

// ValidStatus reports whether s is one of the six defined status values.
func ValidStatus(s Status) bool {
	switch s {
	case StatusProcessing, StatusOutForDelivery, StatusDelivered,
		StatusRedistribute, StatusCancelled, StatusDonated:
		return true
	}
	return false
}

// AdminTransitions represents the operator state flow (diagram) as code.
// Delivered and Donated are terminal: no outgoing transitions.
var AdminTransitions = map[Status][]Status{
	StatusProcessing:     {StatusOutForDelivery, StatusDelivered},
	StatusOutForDelivery: {StatusDelivered},
	StatusRedistribute:   {StatusCancelled, StatusDonated},
	StatusCancelled:      {StatusRedistribute, StatusDonated},
	StatusDelivered:      {},
	StatusDonated:        {},
}

// userCancelable is the set of statuses from which the owner or claimer may
// cancel.
var userCancelable = map[Status]bool{
	StatusProcessing:     true,
	StatusOutForDelivery: true,
}

// CanTransition reports whether an operator may move an order from one
// status to another. A same-status transition is always permitted (no-op).
// When the order sits in Cancelled because a user cancelled it, the only
// legal moves are Redistribute and Donated.
func CanTransition(from, to Status, cancelledByUser bool) bool {
	if from == to {
		return true
	}
	if cancelledByUser && from == StatusCancelled {
		return to == StatusRedistribute || to == StatusDonated
	}
	for _, s := range AdminTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionError reports an illegal operator transition, naming the
// offending pair and the allowed successor set.
type TransitionError struct {
	From    Status
	To      Status
	Allowed []Status
}

func (e *TransitionError) Error() string {
	allowed := "none"
	if len(e.Allowed) > 0 {
		parts := make([]string, len(e.Allowed))
		for i, s := range e.Allowed {
			parts[i] = string(s)
		}
		allowed = strings.Join(parts, ", ")
	}
	return fmt.Sprintf("illegal transition: %q -> %q (allowed: %s)", e.From, e.To, allowed)
}

// Item is one order line.
type Item struct {
	Name     string      `json:"name"`
	Quantity int         `json:"quantity"`
	Price    types.Money `json:"price"`
}

// Address pairs a human-readable address with optional coordinates. Orders
// placed without a geocoded address simply carry nil coordinates.
type Address struct {
	Formatted string       `json:"formatted"`
	Coords    *types.Point `json:"coords,omitempty"`
}

// ShelterSnapshot is the denormalized shelter contact attached to a donated
// order at assignment time.
type ShelterSnapshot struct {
	ID           types.ID `json:"id"`
	Name         string   `json:"name"`
	ContactEmail string   `json:"contact_email"`
	ContactPhone string   `json:"contact_phone"`
	Address      Address  `json:"address"`
}

type Order struct {
	ID     types.ID
	UserID types.ID
	Status Status
	// StatusVersion guards read-modify-write updates; the store only
	// applies an update when the stored version matches.
	StatusVersion int

	Items   []Item
	Amount  types.Money
	Payment bool

	Address Address
	// OriginalAddress holds the pre-claim delivery address once a claimer
	// supplies their own.
	OriginalAddress *Address

	// OriginalUserID is the first-ever owner, set the first time the order
	// leaves their hands.
	OriginalUserID *types.ID
	ClaimedBy      *types.ID
	ClaimedAt      *time.Time

	CancelledByUser bool
	LastCancelledBy *types.ID

	RedistributionCount int
	LastRedistributedAt *time.Time

	Shelter          *ShelterSnapshot
	DonationNotified bool

	PlacedAt time.Time
}
