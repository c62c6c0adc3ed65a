// README: User notification profile: address plus redistribution preferences.
package user

import (
	"stackshack/internal/types"
)

// Profile holds everything the notification dispatcher is allowed to read
// about a user. Owned and mutated only by the user through their own
// preferences endpoint.
type Profile struct {
	UserID types.ID `json:"user_id"`

	// Address is the human-readable form; Coords is nil until geocoded.
	Address string       `json:"address"`
	Coords  *types.Point `json:"coords,omitempty"`

	MaxDistanceKm float64 `json:"max_distance_km"`

	// Price band for claim opportunities. MaxPrice.Amount == 0 means no
	// upper bound.
	MinPrice types.Money `json:"min_price"`
	MaxPrice types.Money `json:"max_price"`

	// PreferredItems filters opportunities by item name; empty means no
	// filter.
	PreferredItems []string `json:"preferred_items"`

	NotificationsEnabled bool `json:"notifications_enabled"`
}

const defaultMaxDistanceKm = 10

// DefaultProfile returns the profile used for users who never saved
// preferences.
func DefaultProfile(userID types.ID) Profile {
	return Profile{
		UserID:               userID,
		MaxDistanceKm:        defaultMaxDistanceKm,
		NotificationsEnabled: true,
	}
}
