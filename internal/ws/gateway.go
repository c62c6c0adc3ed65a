// README: WebSocket gateway: client registration, claim frames over the
// socket, and outbound delivery for the notification dispatcher.
package ws

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"sync"

	"golang.org/x/net/websocket"

	"stackshack/internal/modules/notify"
	"stackshack/internal/modules/order"
	"stackshack/internal/types"
)

// maxDecodeErrorsPerConn bounds how many malformed frames a connection may
// send before it is dropped.
const maxDecodeErrorsPerConn = 5

// frame is the wire envelope, both directions.
type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type registerPayload struct {
	UserID string `json:"user_id"`
}

type claimPayload struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// OrderClaimer is the slice of the order service the gateway drives when a
// claim arrives over the socket.
type OrderClaimer interface {
	Claim(ctx context.Context, cmd order.ClaimCommand) (*order.Order, error)
}

// peer serializes writes to one connection.
type peer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func (p *peer) writeFrame(f frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(f)
}

// Gateway owns the live connections and implements notify.Sender.
type Gateway struct {
	presence *notify.Presence
	orders   OrderClaimer

	mu    sync.Mutex
	peers map[types.ID]*peer
}

func NewGateway(presence *notify.Presence) *Gateway {
	return &Gateway{
		presence: presence,
		peers:    make(map[types.ID]*peer),
	}
}

// BindOrders wires the order service in after construction; the gateway and
// the dispatcher reference each other, so one side binds late.
func (g *Gateway) BindOrders(orders OrderClaimer) {
	g.orders = orders
}

// Handler returns the websocket endpoint handler.
func (g *Gateway) Handler() http.Handler {
	return websocket.Handler(g.serveConn)
}

func (g *Gateway) serveConn(conn *websocket.Conn) {
	connID := newConnID()
	p := &peer{encoder: json.NewEncoder(conn)}

	g.mu.Lock()
	g.peers[connID] = p
	g.mu.Unlock()
	log.Printf("ws: connection %s opened", connID)

	defer func() {
		g.mu.Lock()
		delete(g.peers, connID)
		g.mu.Unlock()
		g.presence.Deregister(connID)
		_ = conn.Close()
		log.Printf("ws: connection %s closed", connID)
	}()

	decoder := json.NewDecoder(conn)
	decodeErrors := 0
	for {
		var f frame
		if err := decoder.Decode(&f); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			_ = writeError(p, "invalid frame payload")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		switch f.Type {
		case "register":
			g.handleRegister(connID, p, f)
		case "order.claim":
			g.handleClaim(conn.Request().Context(), connID, p, f)
		default:
			_ = writeError(p, "unsupported frame type")
		}
	}
}

func (g *Gateway) handleRegister(connID types.ID, p *peer, f frame) {
	var payload registerPayload
	if err := json.Unmarshal(f.Payload, &payload); err != nil || payload.UserID == "" {
		_ = writeError(p, "invalid register payload")
		return
	}
	g.presence.Register(connID, types.ID(payload.UserID))
	log.Printf("ws: connection %s registered as user %s (%d connected)",
		connID, payload.UserID, g.presence.Size())
	_ = p.writeFrame(frame{Type: "registered"})
}

func (g *Gateway) handleClaim(ctx context.Context, connID types.ID, p *peer, f frame) {
	var payload claimPayload
	if err := json.Unmarshal(f.Payload, &payload); err != nil || payload.OrderID == "" {
		_ = writeError(p, "invalid claim payload")
		return
	}
	if g.orders == nil {
		_ = writeError(p, "claiming is not available")
		return
	}

	userID := types.ID(payload.UserID)
	if registered, ok := g.presence.UserFor(connID); ok {
		// The registered identity wins over whatever the frame says.
		userID = registered
	}

	o, err := g.orders.Claim(ctx, order.ClaimCommand{
		OrderID: types.ID(payload.OrderID),
		UserID:  userID,
	})
	if err != nil {
		_ = writeError(p, err.Error())
		return
	}
	_ = p.writeFrame(frame{Type: "order.claim.ok", Payload: mustJSON(map[string]any{
		"order_id": o.ID,
		"status":   o.Status,
	})})
}

// Send delivers a dispatcher message to one connection, best effort.
func (g *Gateway) Send(connID types.ID, msg notify.Message) {
	g.mu.Lock()
	p, ok := g.peers[connID]
	g.mu.Unlock()
	if !ok {
		return
	}
	if err := p.writeFrame(frame{Type: msg.Type, Payload: mustJSON(msg.Payload)}); err != nil {
		log.Printf("ws: send to %s failed: %v", connID, err)
	}
}

// Broadcast delivers a dispatcher message to every live connection.
func (g *Gateway) Broadcast(msg notify.Message) {
	g.mu.Lock()
	peers := make([]*peer, 0, len(g.peers))
	for _, p := range g.peers {
		peers = append(peers, p)
	}
	g.mu.Unlock()

	f := frame{Type: msg.Type, Payload: mustJSON(msg.Payload)}
	for _, p := range peers {
		_ = p.writeFrame(f)
	}
}

func writeError(p *peer, msg string) error {
	return p.writeFrame(frame{Type: "error", Payload: mustJSON(errorPayload{Message: msg})})
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("ws: failed to marshal frame payload: %v", err)
		return nil
	}
	return b
}

func newConnID() types.ID {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return types.ID("c_" + hex.EncodeToString(b[:]))
}
