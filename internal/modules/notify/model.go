// README: Broadcast job and outbound message shapes for the redistribution
// dispatcher.
package notify

import (
	"stackshack/internal/types"
)

// Job is one round of claim-opportunity notifications for a single order.
// Ephemeral: it lives in the dispatcher's queue and is never persisted.
type Job struct {
	OrderID types.ID
	// ExcludedUserID is the user who most recently gave the order up; they
	// never receive the opportunity for their own order.
	ExcludedUserID types.ID
	ItemNames      []string
	Amount         types.Money
	Address        string
	// Location is nil for orders placed without coordinates; such a job
	// yields zero recipients and is discarded without error.
	Location *types.Point
}

// Message is an outbound frame destined for one or all connections; the
// transport decides the wire encoding.
type Message struct {
	Type    string
	Payload any
}

// Message types emitted by the dispatcher.
const (
	MsgOrderAvailable = "order.available"
	MsgOrderClaimed   = "order.claimed"
)

// Opportunity is the payload of an order.available message.
type Opportunity struct {
	OrderID    types.ID    `json:"order_id"`
	ItemNames  []string    `json:"item_names"`
	Amount     types.Money `json:"amount"`
	Address    string      `json:"address"`
	DistanceKm float64     `json:"distance_km"`
}

// Claimed is the payload of an order.claimed broadcast, telling every
// session the order left the pool.
type Claimed struct {
	OrderID types.ID `json:"order_id"`
	UserID  types.ID `json:"user_id"`
}

// Sender delivers messages to live connections, best effort. Offline
// recipients are the caller's problem (they get skipped).
type Sender interface {
	Send(connID types.ID, msg Message)
	Broadcast(msg Message)
}
