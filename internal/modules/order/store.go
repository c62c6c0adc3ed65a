// README: Order store backed by PostgreSQL; updates are conditional on the
// status version so concurrent writers fail closed.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stackshack/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const orderColumns = `
    id, user_id, status, status_version, items, amount, currency, payment,
    address, original_address, original_user_id, claimed_by, claimed_at,
    cancelled_by_user, last_cancelled_by, redistribution_count,
    last_redistributed_at, shelter, donation_notified, placed_at`

func (s *Store) Create(ctx context.Context, o *Order) error {
	items, address, originalAddress, shelterSnap, err := marshalJSONFields(o)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
        INSERT INTO orders (`+orderColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
                $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		string(o.ID),
		string(o.UserID),
		string(o.Status),
		o.StatusVersion,
		items,
		o.Amount.Amount,
		o.Amount.Currency,
		o.Payment,
		address,
		originalAddress,
		toStringPtr(o.OriginalUserID),
		toStringPtr(o.ClaimedBy),
		o.ClaimedAt,
		o.CancelledByUser,
		toStringPtr(o.LastCancelledBy),
		o.RedistributionCount,
		o.LastRedistributedAt,
		shelterSnap,
		o.DonationNotified,
		o.PlacedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Order, error) {
	row := s.db.QueryRow(ctx, `
        SELECT `+orderColumns+`
        FROM orders
        WHERE id = $1`, string(id))
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

// Update writes the full record, guarded by the stored status version. On
// success the in-memory version is advanced to match the row.
func (s *Store) Update(ctx context.Context, o *Order) (bool, error) {
	items, address, originalAddress, shelterSnap, err := marshalJSONFields(o)
	if err != nil {
		return false, err
	}
	tag, err := s.db.Exec(ctx, `
        UPDATE orders
        SET user_id = $2,
            status = $3,
            status_version = status_version + 1,
            items = $4,
            amount = $5,
            currency = $6,
            payment = $7,
            address = $8,
            original_address = $9,
            original_user_id = $10,
            claimed_by = $11,
            claimed_at = $12,
            cancelled_by_user = $13,
            last_cancelled_by = $14,
            redistribution_count = $15,
            last_redistributed_at = $16,
            shelter = $17,
            donation_notified = $18
        WHERE id = $1 AND status_version = $19`,
		string(o.ID),
		string(o.UserID),
		string(o.Status),
		items,
		o.Amount.Amount,
		o.Amount.Currency,
		o.Payment,
		address,
		originalAddress,
		toStringPtr(o.OriginalUserID),
		toStringPtr(o.ClaimedBy),
		o.ClaimedAt,
		o.CancelledByUser,
		toStringPtr(o.LastCancelledBy),
		o.RedistributionCount,
		o.LastRedistributedAt,
		shelterSnap,
		o.DonationNotified,
		o.StatusVersion,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() != 1 {
		return false, nil
	}
	o.StatusVersion++
	return true, nil
}

func (s *Store) Delete(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]Order, error) {
	return s.queryOrders(ctx, `
        SELECT `+orderColumns+`
        FROM orders
        ORDER BY placed_at DESC`)
}

// ListByUser applies the visibility rules: orders the user originally
// placed (even if claimed away), orders they still own and never gave up,
// and orders they claimed from someone else.
func (s *Store) ListByUser(ctx context.Context, userID types.ID) ([]Order, error) {
	return s.queryOrders(ctx, `
        SELECT `+orderColumns+`
        FROM orders
        WHERE original_user_id = $1
           OR (user_id = $1 AND original_user_id IS NULL)
           OR (claimed_by = $1 AND user_id = $1 AND original_user_id IS DISTINCT FROM $1)
        ORDER BY placed_at DESC`, string(userID))
}

func (s *Store) queryOrders(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var items, address []byte
	var originalAddress, shelterSnap []byte
	var originalUserID, claimedBy, lastCancelledBy *string
	var claimedAt, lastRedistributedAt *time.Time

	err := row.Scan(
		&o.ID, &o.UserID, &o.Status, &o.StatusVersion,
		&items, &o.Amount.Amount, &o.Amount.Currency, &o.Payment,
		&address, &originalAddress, &originalUserID, &claimedBy, &claimedAt,
		&o.CancelledByUser, &lastCancelledBy, &o.RedistributionCount,
		&lastRedistributedAt, &shelterSnap, &o.DonationNotified, &o.PlacedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(address, &o.Address); err != nil {
		return nil, err
	}
	if len(originalAddress) > 0 {
		o.OriginalAddress = &Address{}
		if err := json.Unmarshal(originalAddress, o.OriginalAddress); err != nil {
			return nil, err
		}
	}
	if len(shelterSnap) > 0 {
		o.Shelter = &ShelterSnapshot{}
		if err := json.Unmarshal(shelterSnap, o.Shelter); err != nil {
			return nil, err
		}
	}
	o.OriginalUserID = toIDPtr(originalUserID)
	o.ClaimedBy = toIDPtr(claimedBy)
	o.LastCancelledBy = toIDPtr(lastCancelledBy)
	o.ClaimedAt = claimedAt
	o.LastRedistributedAt = lastRedistributedAt
	return &o, nil
}

func marshalJSONFields(o *Order) (items, address, originalAddress, shelterSnap []byte, err error) {
	if items, err = json.Marshal(o.Items); err != nil {
		return
	}
	if address, err = json.Marshal(o.Address); err != nil {
		return
	}
	if o.OriginalAddress != nil {
		if originalAddress, err = json.Marshal(o.OriginalAddress); err != nil {
			return
		}
	}
	if o.Shelter != nil {
		shelterSnap, err = json.Marshal(o.Shelter)
	}
	return
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func toIDPtr(v *string) *types.ID {
	if v == nil {
		return nil
	}
	id := types.ID(*v)
	return &id
}
