// README: Profile store backed by PostgreSQL with a Redis read-through cache.
package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"stackshack/internal/types"
)

// cacheTTL bounds staleness of profiles read by the dispatcher; a broadcast
// round may see preferences up to this old.
const cacheTTL = 5 * time.Minute

type Store struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func NewStore(db *pgxpool.Pool, redis *redis.Client) *Store {
	return &Store{db: db, redis: redis}
}

func cacheKey(id types.ID) string {
	return fmt.Sprintf("profile:%s", string(id))
}

// Get returns the stored profile, or the default profile when the user has
// never saved preferences.
func (s *Store) Get(ctx context.Context, id types.ID) (*Profile, error) {
	if p, ok := s.cacheGet(ctx, id); ok {
		return p, nil
	}

	p, err := s.dbGet(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		def := DefaultProfile(id)
		return &def, nil
	}
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, p)
	return p, nil
}

// Save upserts the profile and refreshes the cache entry.
func (s *Store) Save(ctx context.Context, p *Profile) error {
	preferred, err := json.Marshal(p.PreferredItems)
	if err != nil {
		return err
	}
	var lat, lng *float64
	if p.Coords != nil {
		lat, lng = &p.Coords.Lat, &p.Coords.Lng
	}
	_, err = s.db.Exec(ctx, `
        INSERT INTO user_profiles (
            user_id, address, lat, lng, max_distance_km,
            min_price, max_price, preferred_items, notifications_enabled
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (user_id) DO UPDATE SET
            address = EXCLUDED.address,
            lat = EXCLUDED.lat,
            lng = EXCLUDED.lng,
            max_distance_km = EXCLUDED.max_distance_km,
            min_price = EXCLUDED.min_price,
            max_price = EXCLUDED.max_price,
            preferred_items = EXCLUDED.preferred_items,
            notifications_enabled = EXCLUDED.notifications_enabled`,
		string(p.UserID),
		p.Address,
		lat, lng,
		p.MaxDistanceKm,
		p.MinPrice.Amount,
		p.MaxPrice.Amount,
		preferred,
		p.NotificationsEnabled,
	)
	if err != nil {
		return err
	}
	s.cacheSet(ctx, p)
	return nil
}

// ProfilesByIDs resolves profiles for a set of users, serving from cache
// where possible and falling back to one batched query for the misses.
// Users without a stored row get the default profile.
func (s *Store) ProfilesByIDs(ctx context.Context, ids []types.ID) ([]Profile, error) {
	profiles := make([]Profile, 0, len(ids))
	misses := make([]string, 0, len(ids))
	seen := make(map[types.ID]bool, len(ids))

	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := s.cacheGet(ctx, id); ok {
			profiles = append(profiles, *p)
			continue
		}
		misses = append(misses, string(id))
	}
	if len(misses) == 0 {
		return profiles, nil
	}

	rows, err := s.db.Query(ctx, `
        SELECT user_id, address, lat, lng, max_distance_km,
               min_price, max_price, preferred_items, notifications_enabled
        FROM user_profiles
        WHERE user_id = ANY($1)`, misses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[types.ID]bool, len(misses))
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		found[p.UserID] = true
		s.cacheSet(ctx, p)
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range misses {
		if !found[types.ID(id)] {
			profiles = append(profiles, DefaultProfile(types.ID(id)))
		}
	}
	return profiles, nil
}

func (s *Store) dbGet(ctx context.Context, id types.ID) (*Profile, error) {
	row := s.db.QueryRow(ctx, `
        SELECT user_id, address, lat, lng, max_distance_km,
               min_price, max_price, preferred_items, notifications_enabled
        FROM user_profiles
        WHERE user_id = $1`, string(id))
	return scanProfile(row)
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	var lat, lng *float64
	var preferred []byte
	err := row.Scan(
		&p.UserID, &p.Address, &lat, &lng, &p.MaxDistanceKm,
		&p.MinPrice.Amount, &p.MaxPrice.Amount, &preferred, &p.NotificationsEnabled,
	)
	if err != nil {
		return nil, err
	}
	if lat != nil && lng != nil {
		p.Coords = &types.Point{Lat: *lat, Lng: *lng}
	}
	if len(preferred) > 0 {
		if err := json.Unmarshal(preferred, &p.PreferredItems); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func (s *Store) cacheGet(ctx context.Context, id types.ID) (*Profile, bool) {
	if s.redis == nil {
		return nil, false
	}
	val, err := s.redis.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var p Profile
	if err := json.Unmarshal(val, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (s *Store) cacheSet(ctx context.Context, p *Profile) {
	if s.redis == nil {
		return
	}
	val, err := json.Marshal(p)
	if err != nil {
		return
	}
	// Cache write failures only cost a future db round-trip.
	_ = s.redis.Set(ctx, cacheKey(p.UserID), val, cacheTTL).Err()
}
