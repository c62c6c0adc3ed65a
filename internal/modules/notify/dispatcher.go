// README: Sequential, cancellable claim-opportunity dispatcher. Drains a
// FIFO of broadcast jobs one at a time, rotating through the ranked eligible
// users with a timed window per user.
package notify

import (
	"context"
	"log"
	"sync"
	"time"

	"stackshack/internal/modules/user"
	"stackshack/internal/types"
)

// DefaultInterval is how long each candidate gets to act before the
// opportunity rotates to the next one.
const DefaultInterval = 5 * time.Second

// ProfileSource resolves notification profiles for the currently-connected
// users at the start of each broadcast round.
type ProfileSource interface {
	ProfilesByIDs(ctx context.Context, ids []types.ID) ([]user.Profile, error)
}

// round is the dispatcher's active broadcast: one job plus the ranked
// recipient snapshot taken when the round started. Preference changes made
// mid-round do not alter an in-progress rotation.
type round struct {
	job        Job
	recipients []Recipient
	cursor     int
}

// Dispatcher owns the broadcast FIFO, the single active round, the
// claimed-order set, and the pending rotation timer. All state is guarded
// by one mutex; the timer continuation re-acquires it and re-checks that
// its round is still the active one before acting.
type Dispatcher struct {
	interval time.Duration
	presence *Presence
	profiles ProfileSource
	sender   Sender

	mu      sync.Mutex
	queue   []Job
	active  *round
	claimed map[types.ID]struct{}
	timer   *time.Timer
}

func NewDispatcher(interval time.Duration, presence *Presence, profiles ProfileSource, sender Sender) *Dispatcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Dispatcher{
		interval: interval,
		presence: presence,
		profiles: profiles,
		sender:   sender,
		claimed:  make(map[types.ID]struct{}),
	}
}

// Enqueue adds a broadcast job for a freshly redistributed order. Any stale
// claimed-state for the order id is cleared first so a repeat redistribution
// is not silently suppressed by an earlier claim.
func (d *Dispatcher) Enqueue(job Job) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.claimed, job.OrderID)
	d.queue = append(d.queue, job)
	log.Printf("notify: queued broadcast for order %s (queue len %d)", job.OrderID, len(d.queue))

	if d.active == nil {
		d.drainLocked()
	}
}

// OrderClaimed aborts any in-flight or queued broadcast for the order and
// tells every session the order left the pool. Once this returns, no
// further opportunity message for the order will be sent, even if a
// rotation was already scheduled.
func (d *Dispatcher) OrderClaimed(orderID, userID types.ID) {
	d.mu.Lock()
	d.stopForOrderLocked(orderID)
	d.mu.Unlock()

	d.sender.Broadcast(Message{
		Type:    MsgOrderClaimed,
		Payload: Claimed{OrderID: orderID, UserID: userID},
	})
}

// StopForOrder aborts broadcasts for an order that left the pool without
// being claimed (donated or reassigned by an operator). No broadcast is
// emitted.
func (d *Dispatcher) StopForOrder(orderID types.ID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopForOrderLocked(orderID)
}

func (d *Dispatcher) stopForOrderLocked(orderID types.ID) {
	d.claimed[orderID] = struct{}{}

	if d.active != nil && d.active.job.OrderID == orderID {
		log.Printf("notify: order %s left the pool, aborting broadcast", orderID)
		d.stopTimerLocked()
		d.active = nil
		d.drainLocked()
	}
}

// ActiveOrder reports which order is currently being broadcast, if any.
func (d *Dispatcher) ActiveOrder() (types.ID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active == nil {
		return "", false
	}
	return d.active.job.OrderID, true
}

// drainLocked pops queued jobs until one produces a non-empty recipient
// list, then starts its rotation. Caller holds d.mu.
func (d *Dispatcher) drainLocked() {
	for d.active == nil && len(d.queue) > 0 {
		job := d.queue[0]
		d.queue = d.queue[1:]

		if _, ok := d.claimed[job.OrderID]; ok {
			log.Printf("notify: order %s already claimed, dropping queued broadcast", job.OrderID)
			continue
		}

		recipients, err := d.rankRecipients(job)
		if err != nil {
			// One bad job must not stall the FIFO.
			log.Printf("notify: dropping broadcast for order %s: %v", job.OrderID, err)
			continue
		}
		if len(recipients) == 0 {
			log.Printf("notify: no eligible recipients for order %s, dropping broadcast", job.OrderID)
			continue
		}

		log.Printf("notify: broadcasting order %s to %d eligible users", job.OrderID, len(recipients))
		d.active = &round{job: job, recipients: recipients}
		d.stepLocked()
	}
}

func (d *Dispatcher) rankRecipients(job Job) ([]Recipient, error) {
	connected := d.presence.ConnectedUserIDs()
	if len(connected) == 0 {
		return nil, nil
	}
	profiles, err := d.profiles.ProfilesByIDs(context.Background(), connected)
	if err != nil {
		return nil, err
	}
	return EligibleRecipients(job, profiles), nil
}

// stepLocked delivers the opportunity to the recipient at the cursor and
// schedules the next rotation. Recipients who disconnected since the round
// snapshot are skipped without consuming a delay. Caller holds d.mu.
func (d *Dispatcher) stepLocked() {
	for {
		r := d.active
		if r == nil {
			return
		}
		if _, ok := d.claimed[r.job.OrderID]; ok {
			d.active = nil
			d.drainLocked()
			return
		}
		if r.cursor >= len(r.recipients) {
			log.Printf("notify: round exhausted for order %s (%d users notified)", r.job.OrderID, len(r.recipients))
			d.active = nil
			d.drainLocked()
			return
		}

		recipient := r.recipients[r.cursor]
		r.cursor++

		conns := d.presence.ConnectionsFor(recipient.UserID)
		if len(conns) == 0 {
			continue // disconnected mid-round
		}

		msg := Message{
			Type: MsgOrderAvailable,
			Payload: Opportunity{
				OrderID:    r.job.OrderID,
				ItemNames:  r.job.ItemNames,
				Amount:     r.job.Amount,
				Address:    r.job.Address,
				DistanceKm: recipient.DistanceKm,
			},
		}
		for _, conn := range conns {
			d.sender.Send(conn, msg)
		}
		log.Printf("notify: offered order %s to user %s (%.1f km, %d/%d)",
			r.job.OrderID, recipient.UserID, recipient.DistanceKm, r.cursor, len(r.recipients))

		d.timer = time.AfterFunc(d.interval, func() { d.continueRound(r) })
		return
	}
}

// continueRound is the delayed rotation step. It re-checks that its round
// is still the active one: a claim or a newer round invalidates it.
func (d *Dispatcher) continueRound(r *round) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active != r {
		return
	}
	d.timer = nil
	d.stepLocked()
}

func (d *Dispatcher) stopTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
