// README: Order state machine and service tests (transition table, cancel,
// claim, redistribution, donation).
package order

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"stackshack/internal/modules/donation"
	"stackshack/internal/modules/notify"
	"stackshack/internal/modules/shelter"
	"stackshack/internal/types"
)

// TestCanTransition verifies the operator transition table without any
// storage behind it.
func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to        Status
		cancelledByUser bool
		want            bool
	}{
		// forward progress
		{StatusProcessing, StatusOutForDelivery, false, true},
		{StatusProcessing, StatusDelivered, false, true},
		{StatusOutForDelivery, StatusDelivered, false, true},
		// redistribution branch
		{StatusRedistribute, StatusCancelled, false, true},
		{StatusRedistribute, StatusDonated, false, true},
		{StatusCancelled, StatusRedistribute, false, true},
		{StatusCancelled, StatusDonated, false, true},
		// same-status transitions are idempotent no-ops
		{StatusProcessing, StatusProcessing, false, true},
		{StatusDelivered, StatusDelivered, false, true},
		{StatusDonated, StatusDonated, true, true},
		// user-cancelled orders can only be redistributed or donated
		{StatusCancelled, StatusRedistribute, true, true},
		{StatusCancelled, StatusDonated, true, true},
		// terminal states have no outgoing transitions
		{StatusDelivered, StatusProcessing, false, false},
		{StatusDelivered, StatusRedistribute, false, false},
		{StatusDonated, StatusProcessing, false, false},
		{StatusDonated, StatusRedistribute, false, false},
		// invalid moves
		{StatusProcessing, StatusRedistribute, false, false},
		{StatusProcessing, StatusCancelled, false, false},
		{StatusOutForDelivery, StatusProcessing, false, false},
		{StatusOutForDelivery, StatusRedistribute, false, false},
		{StatusRedistribute, StatusProcessing, false, false},
		{StatusRedistribute, StatusDelivered, false, false},
		{StatusCancelled, StatusOutForDelivery, false, false},
		{StatusCancelled, StatusDelivered, false, false},
	}
	for _, tc := range cases {
		got := CanTransition(tc.from, tc.to, tc.cancelledByUser)
		if got != tc.want {
			t.Errorf("CanTransition(%s, %s, %v) = %v, want %v",
				tc.from, tc.to, tc.cancelledByUser, got, tc.want)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusProcessing, StatusOutForDelivery, StatusDelivered,
		StatusRedistribute, StatusCancelled, StatusDonated} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%s) = false", s)
		}
	}
	for _, s := range []Status{"", "processing", "Unknown", "Shipped"} {
		if ValidStatus(s) {
			t.Errorf("ValidStatus(%s) = true", s)
		}
	}
}

func TestTransitionErrorMessage(t *testing.T) {
	err := &TransitionError{
		From:    StatusOutForDelivery,
		To:      StatusProcessing,
		Allowed: AdminTransitions[StatusOutForDelivery],
	}
	msg := err.Error()
	for _, want := range []string{"OutForDelivery", "Processing", "Delivered"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}

	terminal := &TransitionError{From: StatusDelivered, To: StatusProcessing}
	if !strings.Contains(terminal.Error(), "none") {
		t.Errorf("terminal error %q should name an empty allowed set", terminal.Error())
	}
}

// ---------------------------------------------------------------------------
// Service tests with in-memory fakes
// ---------------------------------------------------------------------------

type mockRepo struct {
	mu     sync.Mutex
	orders map[types.ID]Order
}

func newMockRepo() *mockRepo {
	return &mockRepo{orders: make(map[types.ID]Order)}
}

func (m *mockRepo) Create(_ context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = *o
	return nil
}

func (m *mockRepo) Get(_ context.Context, id types.ID) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := o
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, o *Order) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.orders[o.ID]
	if !ok || stored.StatusVersion != o.StatusVersion {
		return false, nil
	}
	o.StatusVersion++
	m.orders[o.ID] = *o
	return true, nil
}

func (m *mockRepo) Delete(_ context.Context, id types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *mockRepo) List(_ context.Context) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *mockRepo) ListByUser(_ context.Context, userID types.ID) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Order
	for _, o := range m.orders {
		if o.UserID == userID || (o.OriginalUserID != nil && *o.OriginalUserID == userID) {
			out = append(out, o)
		}
	}
	return out, nil
}

type mockNotifier struct {
	mu      sync.Mutex
	jobs    []notify.Job
	claimed []types.ID
	stopped []types.ID
}

func (m *mockNotifier) Enqueue(job notify.Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
}

func (m *mockNotifier) OrderClaimed(orderID, _ types.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claimed = append(m.claimed, orderID)
}

func (m *mockNotifier) StopForOrder(orderID types.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = append(m.stopped, orderID)
}

type mockShelters struct {
	shelters map[types.ID]shelter.Shelter
}

func (m *mockShelters) Get(_ context.Context, id types.ID) (*shelter.Shelter, error) {
	sh, ok := m.shelters[id]
	if !ok {
		return nil, shelter.ErrNotFound
	}
	return &sh, nil
}

type mockDonations struct {
	mu      sync.Mutex
	records []donation.Record
}

func (m *mockDonations) Append(_ context.Context, r donation.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

type fixture struct {
	svc       *Service
	repo      *mockRepo
	notifier  *mockNotifier
	donations *mockDonations
}

func newFixture() *fixture {
	repo := newMockRepo()
	notifier := &mockNotifier{}
	donations := &mockDonations{}
	shelters := &mockShelters{shelters: map[types.ID]shelter.Shelter{
		"s1": {ID: "s1", Name: "Raleigh Rescue", ContactEmail: "help@rescue.org", Address: "314 E Hargett St"},
	}}
	return &fixture{
		svc:       NewService(repo, notifier, shelters, donations, "http://localhost:5173"),
		repo:      repo,
		notifier:  notifier,
		donations: donations,
	}
}

func mustPlace(t *testing.T, f *fixture, userID types.ID, cod bool) types.ID {
	t.Helper()
	coords := &types.Point{Lat: 35.78, Lng: -78.64}
	id, _, err := f.svc.Place(context.Background(), PlaceCommand{
		UserID: userID,
		Items: []Item{
			{Name: "Classic Burger", Quantity: 2, Price: types.Money{Amount: 850, Currency: "usd"}},
			{Name: "Fries", Quantity: 1, Price: types.Money{Amount: 300, Currency: "usd"}},
		},
		Amount:         types.Money{Amount: 2000, Currency: "usd"},
		Address:        Address{Formatted: "2101 Hillsborough St", Coords: coords},
		CashOnDelivery: cod,
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	return id
}

func mustStatus(t *testing.T, f *fixture, id types.ID, want Status) {
	t.Helper()
	o, err := f.svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if o.Status != want {
		t.Fatalf("status = %s, want %s", o.Status, want)
	}
}

func TestPlaceCardOrderReturnsSessionURL(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	id, sessionURL, err := f.svc.Place(ctx, PlaceCommand{
		UserID:  "u1",
		Items:   []Item{{Name: "Burger", Quantity: 1, Price: types.Money{Amount: 850, Currency: "usd"}}},
		Amount:  types.Money{Amount: 850, Currency: "usd"},
		Address: Address{Formatted: "somewhere"},
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if !strings.Contains(sessionURL, string(id)) {
		t.Errorf("session url %q does not reference the order", sessionURL)
	}

	o, _ := f.svc.Get(ctx, id)
	if o.Payment {
		t.Error("card order should await payment verification")
	}
}

func TestVerifyPaymentFailureDeletesOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := mustPlace(t, f, "u1", false)

	if err := f.svc.VerifyPayment(ctx, id, false); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if _, err := f.svc.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected order deleted, got %v", err)
	}
}

func TestVerifyPaymentSuccess(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := mustPlace(t, f, "u1", false)

	if err := f.svc.VerifyPayment(ctx, id, true); err != nil {
		t.Fatalf("verify: %v", err)
	}
	o, _ := f.svc.Get(ctx, id)
	if !o.Payment {
		t.Error("expected payment flag set")
	}
}

func TestOperatorTransitions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := mustPlace(t, f, "u1", true)

	if _, err := f.svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: id, Next: StatusOutForDelivery}); err != nil {
		t.Fatalf("to OutForDelivery: %v", err)
	}
	mustStatus(t, f, id, StatusOutForDelivery)

	// Moving back to Processing is illegal; the error names the allowed set.
	_, err := f.svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: id, Next: StatusProcessing})
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if len(te.Allowed) != 1 || te.Allowed[0] != StatusDelivered {
		t.Errorf("allowed = %v, want [Delivered]", te.Allowed)
	}
}

func TestUpdateStatusSameStatusIsNoop(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := mustPlace(t, f, "u1", true)

	o, err := f.svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: id, Next: StatusProcessing})
	if err != nil {
		t.Fatalf("same-status update: %v", err)
	}
	if o.Status != StatusProcessing {
		t.Fatalf("status = %s", o.Status)
	}
	if len(f.notifier.jobs) != 0 {
		t.Error("no broadcast expected for a no-op update")
	}
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	f := newFixture()
	id := mustPlace(t, f, "u1", true)
	_, err := f.svc.UpdateStatus(context.Background(), UpdateStatusCommand{OrderID: id, Next: "Shipped"})
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestTerminalStatusRejectsFurtherTransitions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := mustPlace(t, f, "u1", true)

	if _, err := f.svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: id, Next: StatusDelivered}); err != nil {
		t.Fatalf("to Delivered: %v", err)
	}
	for _, next := range []Status{StatusProcessing, StatusOutForDelivery, StatusRedistribute, StatusCancelled, StatusDonated} {
		_, err := f.svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: id, Next: next})
		var te *TransitionError
		if !errors.As(err, &te) {
			t.Errorf("Delivered -> %s: expected TransitionError, got %v", next, err)
		}
	}
}

func TestUserCancel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	t.Run("owner_cancels_out_for_delivery", func(t *testing.T) {
		id := mustPlace(t, f, "u1", true)
		if _, err := f.svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: id, Next: StatusOutForDelivery}); err != nil {
			t.Fatalf("to OutForDelivery: %v", err)
		}
		if err := f.svc.Cancel(ctx, CancelCommand{OrderID: id, UserID: "u1"}); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		o, _ := f.svc.Get(ctx, id)
		if o.Status != StatusCancelled || !o.CancelledByUser {
			t.Fatalf("status = %s cancelledByUser = %v", o.Status, o.CancelledByUser)
		}
		if o.LastCancelledBy == nil || *o.LastCancelledBy != "u1" {
			t.Error("expected last canceller recorded")
		}
		if o.OriginalUserID == nil || *o.OriginalUserID != "u1" {
			t.Error("expected original user preserved")
		}
	})

	t.Run("stranger_cannot_cancel", func(t *testing.T) {
		id := mustPlace(t, f, "u1", true)
		if err := f.svc.Cancel(ctx, CancelCommand{OrderID: id, UserID: "u9"}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("cannot_cancel_redistributed_order", func(t *testing.T) {
		id := mustPlace(t, f, "u1", true)
		if err := f.svc.Cancel(ctx, CancelCommand{OrderID: id, UserID: "u1"}); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if _, err := f.svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: id, Next: StatusRedistribute}); err != nil {
			t.Fatalf("redistribute: %v", err)
		}
		if err := f.svc.Cancel(ctx, CancelCommand{OrderID: id, UserID: "u1"}); !errors.Is(err, ErrNotCancelable) {
			t.Fatalf("expected ErrNotCancelable, got %v", err)
		}
	})
}

func TestUserCancelledOrderRestrictsOperator(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := mustPlace(t, f, "u1", true)
	if err := f.svc.Cancel(ctx, CancelCommand{OrderID: id, UserID: "u1"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// Redistribute and Donated are the only legal moves now.
	if _, err := f.svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: id, Next: StatusOutForDelivery}); err == nil {
		t.Fatal("expected rejection of OutForDelivery after user cancel")
	}
	if _, err := f.svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: id, Next: StatusRedistribute}); err != nil {
		t.Fatalf("redistribute should be allowed: %v", err)
	}
}

func TestRedistributeEnqueuesBroadcast(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := mustPlace(t, f, "u1", true)
	if err := f.svc.Cancel(ctx, CancelCommand{OrderID: id, UserID: "u1"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: id, Next: StatusRedistribute}); err != nil {
		t.Fatalf("redistribute: %v", err)
	}

	if len(f.notifier.jobs) != 1 {
		t.Fatalf("expected 1 broadcast job, got %d", len(f.notifier.jobs))
	}
	job := f.notifier.jobs[0]
	if job.OrderID != id {
		t.Errorf("job order = %s, want %s", job.OrderID, id)
	}
	if job.ExcludedUserID != "u1" {
		t.Errorf("excluded user = %s, want the canceller u1", job.ExcludedUserID)
	}
	if len(job.ItemNames) != 2 || job.ItemNames[0] != "Classic Burger" {
		t.Errorf("unexpected item names: %v", job.ItemNames)
	}
	if job.Location == nil {
		t.Error("expected job location from the order address")
	}

	o, _ := f.svc.Get(ctx, id)
	if o.RedistributionCount != 1 || o.LastRedistributedAt == nil {
		t.Errorf("redistribution bookkeeping missing: count=%d", o.RedistributionCount)
	}
}

func TestClaim(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := mustPlace(t, f, "u1", true)
	if err := f.svc.Cancel(ctx, CancelCommand{OrderID: id, UserID: "u1"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: id, Next: StatusRedistribute}); err != nil {
		t.Fatalf("redistribute: %v", err)
	}

	newAddr := &Address{Formatted: "111 Oberlin Rd", Coords: &types.Point{Lat: 35.79, Lng: -78.66}}
	o, err := f.svc.Claim(ctx, ClaimCommand{OrderID: id, UserID: "u2", Address: newAddr})
	if err != nil {
		t.Fatalf("claim: %v", err)
	}

	if o.UserID != "u2" || o.ClaimedBy == nil || *o.ClaimedBy != "u2" {
		t.Errorf("ownership not transferred: owner=%s", o.UserID)
	}
	if o.Status != StatusProcessing {
		t.Errorf("status = %s, want Processing", o.Status)
	}
	if o.CancelledByUser {
		t.Error("cancelledByUser should reset on claim")
	}
	if o.OriginalUserID == nil || *o.OriginalUserID != "u1" {
		t.Error("original user lost on claim")
	}
	if o.OriginalAddress == nil || o.OriginalAddress.Formatted != "2101 Hillsborough St" {
		t.Error("original address not preserved")
	}
	if o.ClaimedAt == nil {
		t.Error("claimedAt not stamped")
	}

	// The dispatcher must have been told synchronously.
	if len(f.notifier.claimed) != 1 || f.notifier.claimed[0] != id {
		t.Fatalf("dispatcher not informed of the claim: %v", f.notifier.claimed)
	}
}

func TestClaimRejectedOutsideRedistribute(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for _, setup := range []struct {
		name string
		prep func(id types.ID)
	}{
		{"processing", func(types.ID) {}},
		{"cancelled", func(id types.ID) {
			_ = f.svc.Cancel(ctx, CancelCommand{OrderID: id, UserID: "u1"})
		}},
		{"delivered", func(id types.ID) {
			_, _ = f.svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: id, Next: StatusDelivered})
		}},
	} {
		t.Run(setup.name, func(t *testing.T) {
			id := mustPlace(t, f, "u1", true)
			setup.prep(id)
			if _, err := f.svc.Claim(ctx, ClaimCommand{OrderID: id, UserID: "u2"}); !errors.Is(err, ErrNotClaimable) {
				t.Fatalf("expected ErrNotClaimable, got %v", err)
			}
		})
	}
}

// TestRepeatRedistribution walks the full claim/cancel/redistribute cycle
// twice and checks each round produces its own broadcast with the right
// excluded user.
func TestRepeatRedistribution(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := mustPlace(t, f, "u1", true)

	// Round one: u1 gives the order up.
	if err := f.svc.Cancel(ctx, CancelCommand{OrderID: id, UserID: "u1"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: id, Next: StatusRedistribute}); err != nil {
		t.Fatalf("redistribute: %v", err)
	}
	if _, err := f.svc.Claim(ctx, ClaimCommand{OrderID: id, UserID: "u2"}); err != nil {
		t.Fatalf("claim: %v", err)
	}

	// Round two: u2 gives it up as well.
	if err := f.svc.Cancel(ctx, CancelCommand{OrderID: id, UserID: "u2"}); err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, UpdateStatusCommand{OrderID: id, Next: StatusRedistribute}); err != nil {
		t.Fatalf("second redistribute: %v", err)
	}

	if len(f.notifier.jobs) != 2 {
		t.Fatalf("expected 2 broadcast jobs, got %d", len(f.notifier.jobs))
	}
	if f.notifier.jobs[0].ExcludedUserID != "u1" {
		t.Errorf("round 1 excluded %s, want u1", f.notifier.jobs[0].ExcludedUserID)
	}
	if f.notifier.jobs[1].ExcludedUserID != "u2" {
		t.Errorf("round 2 excluded %s, want u2", f.notifier.jobs[1].ExcludedUserID)
	}

	o, _ := f.svc.Get(ctx, id)
	if o.RedistributionCount != 2 {
		t.Errorf("redistributionCount = %d, want 2", o.RedistributionCount)
	}
}

func TestAssignShelter(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := mustPlace(t, f, "u1", true)
	if err := f.svc.Cancel(ctx, CancelCommand{OrderID: id, UserID: "u1"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	o, already, err := f.svc.AssignShelter(ctx, AssignShelterCommand{OrderID: id, ShelterID: "s1"})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if already {
		t.Error("first assignment reported as already assigned")
	}
	if o.Status != StatusDonated {
		t.Errorf("status = %s, want Donated", o.Status)
	}
	if o.Shelter == nil || o.Shelter.Name != "Raleigh Rescue" {
		t.Error("shelter snapshot missing")
	}
	if len(f.donations.records) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(f.donations.records))
	}
	rec := f.donations.records[0]
	if rec.OrderID != id || rec.ShelterID != "s1" || len(rec.Items) != 2 {
		t.Errorf("audit record incomplete: %+v", rec)
	}
	if len(f.notifier.stopped) != 1 || f.notifier.stopped[0] != id {
		t.Error("dispatcher not told the order left the pool")
	}

	// Second identical call: idempotent success, no duplicate record.
	_, already, err = f.svc.AssignShelter(ctx, AssignShelterCommand{OrderID: id, ShelterID: "s1"})
	if err != nil {
		t.Fatalf("second assign: %v", err)
	}
	if !already {
		t.Error("second assignment should report already assigned")
	}
	if len(f.donations.records) != 1 {
		t.Errorf("duplicate audit record appended: %d", len(f.donations.records))
	}
}

func TestAssignShelterRejections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	t.Run("wrong_status", func(t *testing.T) {
		id := mustPlace(t, f, "u1", true)
		_, _, err := f.svc.AssignShelter(ctx, AssignShelterCommand{OrderID: id, ShelterID: "s1"})
		var te *TransitionError
		if !errors.As(err, &te) {
			t.Fatalf("expected TransitionError, got %v", err)
		}
	})

	t.Run("unknown_shelter", func(t *testing.T) {
		id := mustPlace(t, f, "u1", true)
		if err := f.svc.Cancel(ctx, CancelCommand{OrderID: id, UserID: "u1"}); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if _, _, err := f.svc.AssignShelter(ctx, AssignShelterCommand{OrderID: id, ShelterID: "nope"}); !errors.Is(err, shelter.ErrNotFound) {
			t.Fatalf("expected shelter.ErrNotFound, got %v", err)
		}
	})

	t.Run("unknown_order", func(t *testing.T) {
		if _, _, err := f.svc.AssignShelter(ctx, AssignShelterCommand{OrderID: "missing", ShelterID: "s1"}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
