// README: Profile service; validates preference updates and geocodes
// addresses that arrive without coordinates.
package user

import (
	"context"
	"errors"
	"log"

	"stackshack/internal/types"
)

var ErrBadRequest = errors.New("bad request")

// Repository is the persistence surface the service needs; satisfied by
// *Store and by in-memory fakes in tests.
type Repository interface {
	Get(ctx context.Context, id types.ID) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
	ProfilesByIDs(ctx context.Context, ids []types.ID) ([]Profile, error)
}

// Geocoder resolves a formatted address into coordinates. Optional: a nil
// geocoder leaves un-geocoded profiles without coordinates, which simply
// excludes them from distance ranking.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (types.Point, error)
}

type Service struct {
	repo     Repository
	geocoder Geocoder
}

func NewService(repo Repository, geocoder Geocoder) *Service {
	return &Service{repo: repo, geocoder: geocoder}
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Profile, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ProfilesByIDs(ctx context.Context, ids []types.ID) ([]Profile, error) {
	return s.repo.ProfilesByIDs(ctx, ids)
}

type UpdateCommand struct {
	UserID               types.ID
	Address              string
	Coords               *types.Point
	MaxDistanceKm        float64
	MinPrice             types.Money
	MaxPrice             types.Money
	PreferredItems       []string
	NotificationsEnabled bool
}

// Update saves the user's preferences. When the address text changed and no
// coordinates were supplied, the geocoder fills them in; geocoding failures
// are logged and the profile is saved without coordinates.
func (s *Service) Update(ctx context.Context, cmd UpdateCommand) (*Profile, error) {
	if cmd.UserID == "" {
		return nil, ErrBadRequest
	}
	if cmd.MaxDistanceKm < 0 || cmd.MinPrice.Amount < 0 || cmd.MaxPrice.Amount < 0 {
		return nil, ErrBadRequest
	}
	if cmd.MaxPrice.Amount > 0 && cmd.MinPrice.Amount > cmd.MaxPrice.Amount {
		return nil, ErrBadRequest
	}
	if cmd.MaxDistanceKm == 0 {
		cmd.MaxDistanceKm = defaultMaxDistanceKm
	}

	p := &Profile{
		UserID:               cmd.UserID,
		Address:              cmd.Address,
		Coords:               cmd.Coords,
		MaxDistanceKm:        cmd.MaxDistanceKm,
		MinPrice:             cmd.MinPrice,
		MaxPrice:             cmd.MaxPrice,
		PreferredItems:       cmd.PreferredItems,
		NotificationsEnabled: cmd.NotificationsEnabled,
	}

	if p.Coords == nil && p.Address != "" && s.geocoder != nil {
		pt, err := s.geocoder.Geocode(ctx, p.Address)
		if err != nil {
			log.Printf("profile: geocode failed for user %s: %v", cmd.UserID, err)
		} else {
			p.Coords = &pt
		}
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
