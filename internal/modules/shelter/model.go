// README: Shelter directory entries for donation routing.
package shelter

import (
	"stackshack/internal/types"
)

type Shelter struct {
	ID           types.ID     `json:"id"`
	Name         string       `json:"name"`
	ContactEmail string       `json:"contact_email"`
	ContactPhone string       `json:"contact_phone"`
	Address      string       `json:"address"`
	Coords       *types.Point `json:"coords,omitempty"`
}
