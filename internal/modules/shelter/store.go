// README: Shelter store backed by PostgreSQL.
package shelter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stackshack/internal/types"
)

var ErrNotFound = errors.New("shelter not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, sh *Shelter) error {
	var lat, lng *float64
	if sh.Coords != nil {
		lat, lng = &sh.Coords.Lat, &sh.Coords.Lng
	}
	_, err := s.db.Exec(ctx, `
        INSERT INTO shelters (id, name, contact_email, contact_phone, address, lat, lng)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(sh.ID), sh.Name, sh.ContactEmail, sh.ContactPhone, sh.Address, lat, lng,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Shelter, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, name, contact_email, contact_phone, address, lat, lng
        FROM shelters
        WHERE id = $1`, string(id))
	sh, err := scanShelter(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sh, err
}

func (s *Store) List(ctx context.Context) ([]Shelter, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, name, contact_email, contact_phone, address, lat, lng
        FROM shelters
        ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Shelter
	for rows.Next() {
		sh, err := scanShelter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sh)
	}
	return out, rows.Err()
}

func scanShelter(row pgx.Row) (*Shelter, error) {
	var sh Shelter
	var lat, lng *float64
	if err := row.Scan(&sh.ID, &sh.Name, &sh.ContactEmail, &sh.ContactPhone, &sh.Address, &lat, &lng); err != nil {
		return nil, err
	}
	if lat != nil && lng != nil {
		sh.Coords = &types.Point{Lat: *lat, Lng: *lng}
	}
	return &sh, nil
}
