// README: Donation audit store backed by PostgreSQL (append + list only).
package donation

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, r Record) error {
	items, err := json.Marshal(r.Items)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
        INSERT INTO donation_records (
            order_id, shelter_id, shelter_name, shelter_address,
            shelter_contact_email, shelter_contact_phone,
            items, total, currency, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`,
		string(r.OrderID),
		string(r.ShelterID),
		r.ShelterName,
		r.ShelterAddress,
		r.ShelterContactEmail,
		r.ShelterContactPhone,
		items,
		r.Total.Amount,
		r.Total.Currency,
	)
	return err
}

func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, order_id, shelter_id, shelter_name, shelter_address,
               shelter_contact_email, shelter_contact_phone,
               items, total, currency, created_at
        FROM donation_records
        ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var items []byte
		err := rows.Scan(
			&r.ID, &r.OrderID, &r.ShelterID, &r.ShelterName, &r.ShelterAddress,
			&r.ShelterContactEmail, &r.ShelterContactPhone,
			&items, &r.Total.Amount, &r.Total.Currency, &r.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if len(items) > 0 {
			if err := json.Unmarshal(items, &r.Items); err != nil {
				return nil, err
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
