// README: Order service: state transitions, redistribution broadcasts,
// claiming, and shelter donation.
package order

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"stackshack/internal/modules/donation"
	"stackshack/internal/modules/notify"
	"stackshack/internal/modules/shelter"
	"stackshack/internal/types"
)

var (
	ErrNotFound      = errors.New("order not found")
	ErrUnauthorized  = errors.New("not the order's owner or claimer")
	ErrNotCancelable = errors.New("order cannot be cancelled in its current status")
	ErrNotClaimable  = errors.New("order not available for claim")
	ErrInvalidStatus = errors.New("invalid status value")
	ErrConflict      = errors.New("order was modified concurrently")
	ErrBadRequest    = errors.New("bad request")
)

// Repository is the persistence surface; satisfied by *Store and by
// in-memory fakes in tests.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id types.ID) (*Order, error)
	// Update applies the full record conditionally on StatusVersion and
	// reports whether the row was written.
	Update(ctx context.Context, o *Order) (bool, error)
	Delete(ctx context.Context, id types.ID) error
	List(ctx context.Context) ([]Order, error)
	ListByUser(ctx context.Context, userID types.ID) ([]Order, error)
}

// Notifier is the dispatcher surface the order service drives.
type Notifier interface {
	Enqueue(job notify.Job)
	OrderClaimed(orderID, userID types.ID)
	StopForOrder(orderID types.ID)
}

// ShelterDirectory resolves shelters for donation assignment.
type ShelterDirectory interface {
	Get(ctx context.Context, id types.ID) (*shelter.Shelter, error)
}

// DonationLog receives one audit record per successful donation.
type DonationLog interface {
	Append(ctx context.Context, r donation.Record) error
}

type Service struct {
	repo      Repository
	notifier  Notifier
	shelters  ShelterDirectory
	donations DonationLog

	// checkoutURL is the frontend base used to build the post-payment
	// redirect for card orders.
	checkoutURL string
}

func NewService(repo Repository, notifier Notifier, shelters ShelterDirectory, donations DonationLog, checkoutURL string) *Service {
	return &Service{
		repo:        repo,
		notifier:    notifier,
		shelters:    shelters,
		donations:   donations,
		checkoutURL: checkoutURL,
	}
}

type PlaceCommand struct {
	UserID  types.ID
	Items   []Item
	Amount  types.Money
	Address Address
	// COD orders are treated as paid immediately; card orders await
	// payment verification and are deleted on failure.
	CashOnDelivery bool
}

// Place creates a new order in Processing. For card orders it returns the
// checkout redirect URL the caller should send the client to.
func (s *Service) Place(ctx context.Context, cmd PlaceCommand) (types.ID, string, error) {
	if cmd.UserID == "" || len(cmd.Items) == 0 || cmd.Amount.Amount <= 0 {
		return "", "", ErrBadRequest
	}

	o := &Order{
		ID:       newID(),
		UserID:   cmd.UserID,
		Status:   StatusProcessing,
		Items:    cmd.Items,
		Amount:   cmd.Amount,
		Payment:  cmd.CashOnDelivery,
		Address:  cmd.Address,
		PlacedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return "", "", err
	}

	if cmd.CashOnDelivery {
		return o.ID, "", nil
	}
	return o.ID, fmt.Sprintf("%s/verify?success=true&orderId=%s", s.checkoutURL, o.ID), nil
}

// VerifyPayment finalizes a card order: mark it paid on success, delete the
// unpaid order on failure. This is the only path that deletes an order.
func (s *Service) VerifyPayment(ctx context.Context, orderID types.ID, paid bool) error {
	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if !paid {
		log.Printf("order: payment failed for %s, deleting", orderID)
		return s.repo.Delete(ctx, orderID)
	}
	o.Payment = true
	return s.save(ctx, o)
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.repo.List(ctx)
}

// ListByUser returns the orders a user should see: everything they
// originally placed (even after someone else claimed it) plus everything
// they claimed from others.
func (s *Service) ListByUser(ctx context.Context, userID types.ID) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

type UpdateStatusCommand struct {
	OrderID types.ID
	Next    Status
}

// UpdateStatus applies an operator transition. A same-status request is an
// idempotent no-op. Moving into Redistribute increments the redistribution
// counter and enqueues exactly one broadcast job.
func (s *Service) UpdateStatus(ctx context.Context, cmd UpdateStatusCommand) (*Order, error) {
	if !ValidStatus(cmd.Next) {
		return nil, ErrInvalidStatus
	}
	o, err := s.repo.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Status == cmd.Next {
		return o, nil
	}
	if !CanTransition(o.Status, cmd.Next, o.CancelledByUser) {
		return nil, &TransitionError{From: o.Status, To: cmd.Next, Allowed: AdminTransitions[o.Status]}
	}

	if cmd.Next == StatusRedistribute {
		o.RedistributionCount++
		now := time.Now()
		o.LastRedistributedAt = &now
	}
	o.Status = cmd.Next
	if err := s.save(ctx, o); err != nil {
		return nil, err
	}

	if cmd.Next == StatusRedistribute {
		s.notifier.Enqueue(s.broadcastJob(o))
		log.Printf("order: %s redistributed (round %d), broadcast queued", o.ID, o.RedistributionCount)
	}
	return o, nil
}

type CancelCommand struct {
	OrderID types.ID
	UserID  types.ID
}

// Cancel is the user-initiated cancel: only the current owner or claimer,
// and only from Processing or OutForDelivery.
func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) error {
	o, err := s.repo.Get(ctx, cmd.OrderID)
	if err != nil {
		return err
	}
	if o.UserID != cmd.UserID && (o.ClaimedBy == nil || *o.ClaimedBy != cmd.UserID) {
		return ErrUnauthorized
	}
	if !userCancelable[o.Status] {
		return ErrNotCancelable
	}

	o.Status = StatusCancelled
	o.CancelledByUser = true
	if o.OriginalUserID == nil {
		uid := o.UserID
		o.OriginalUserID = &uid
	}
	canceller := cmd.UserID
	o.LastCancelledBy = &canceller

	if err := s.save(ctx, o); err != nil {
		return err
	}
	log.Printf("order: %s cancelled by user %s", o.ID, cmd.UserID)
	return nil
}

type ClaimCommand struct {
	OrderID types.ID
	UserID  types.ID
	// Address optionally redirects delivery to the claimer; the previous
	// address is preserved as the original.
	Address *Address
}

// Claim transfers a redistributed order to a new owner and synchronously
// aborts the in-flight broadcast, so no stale opportunity message can
// follow a successful claim.
func (s *Service) Claim(ctx context.Context, cmd ClaimCommand) (*Order, error) {
	if cmd.UserID == "" {
		return nil, ErrBadRequest
	}
	o, err := s.repo.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusRedistribute {
		return nil, ErrNotClaimable
	}

	if o.OriginalUserID == nil {
		uid := o.UserID
		o.OriginalUserID = &uid
	}
	if cmd.Address != nil {
		if o.OriginalAddress == nil {
			prev := o.Address
			o.OriginalAddress = &prev
		}
		o.Address = *cmd.Address
	}

	claimer := cmd.UserID
	now := time.Now()
	o.UserID = claimer
	o.ClaimedBy = &claimer
	o.ClaimedAt = &now
	o.Status = StatusProcessing
	o.CancelledByUser = false

	if err := s.save(ctx, o); err != nil {
		return nil, err
	}

	s.notifier.OrderClaimed(o.ID, claimer)
	log.Printf("order: %s claimed by user %s", o.ID, claimer)
	return o, nil
}

type AssignShelterCommand struct {
	OrderID   types.ID
	ShelterID types.ID
}

// AssignShelter donates a Redistribute/Cancelled order to a shelter,
// attaches the shelter snapshot, and appends one audit record. Assigning an
// already-donated order is an idempotent success.
func (s *Service) AssignShelter(ctx context.Context, cmd AssignShelterCommand) (*Order, bool, error) {
	if cmd.OrderID == "" || cmd.ShelterID == "" {
		return nil, false, ErrBadRequest
	}
	o, err := s.repo.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, false, err
	}
	if o.Shelter != nil {
		return o, true, nil
	}
	if o.Status != StatusRedistribute && o.Status != StatusCancelled {
		return nil, false, &TransitionError{From: o.Status, To: StatusDonated, Allowed: AdminTransitions[o.Status]}
	}

	sh, err := s.shelters.Get(ctx, cmd.ShelterID)
	if err != nil {
		return nil, false, err
	}

	o.Status = StatusDonated
	o.Shelter = &ShelterSnapshot{
		ID:           sh.ID,
		Name:         sh.Name,
		ContactEmail: sh.ContactEmail,
		ContactPhone: sh.ContactPhone,
		Address:      Address{Formatted: sh.Address, Coords: sh.Coords},
	}
	o.DonationNotified = false

	if err := s.save(ctx, o); err != nil {
		return nil, false, err
	}

	// A broadcast still rotating for this order has nothing left to offer.
	s.notifier.StopForOrder(o.ID)

	items := make([]donation.Item, len(o.Items))
	for i, it := range o.Items {
		items[i] = donation.Item{Name: it.Name, Qty: it.Quantity, Price: it.Price}
	}
	err = s.donations.Append(ctx, donation.Record{
		OrderID:             o.ID,
		ShelterID:           sh.ID,
		ShelterName:         sh.Name,
		ShelterAddress:      sh.Address,
		ShelterContactEmail: sh.ContactEmail,
		ShelterContactPhone: sh.ContactPhone,
		Items:               items,
		Total:               o.Amount,
	})
	if err != nil {
		// The donation itself succeeded; a lost audit row is logged, not
		// surfaced to the operator.
		log.Printf("order: donation audit append failed for %s: %v", o.ID, err)
	}

	log.Printf("order: %s donated to shelter %s", o.ID, sh.ID)
	return o, false, nil
}

// broadcastJob snapshots the fields the dispatcher needs. The excluded user
// is whoever most recently gave the order up.
func (s *Service) broadcastJob(o *Order) notify.Job {
	excluded := o.UserID
	if o.OriginalUserID != nil {
		excluded = *o.OriginalUserID
	}
	if o.LastCancelledBy != nil {
		excluded = *o.LastCancelledBy
	}

	names := make([]string, len(o.Items))
	for i, it := range o.Items {
		names[i] = it.Name
	}
	return notify.Job{
		OrderID:        o.ID,
		ExcludedUserID: excluded,
		ItemNames:      names,
		Amount:         o.Amount,
		Address:        o.Address.Formatted,
		Location:       o.Address.Coords,
	}
}

func (s *Service) save(ctx context.Context, o *Order) error {
	ok, err := s.repo.Update(ctx, o)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

func newID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}
