// README: Append-only donation audit records, one per shelter assignment.
package donation

import (
	"time"

	"stackshack/internal/types"
)

// Item mirrors the order line items at donation time; the audit record must
// stay readable even if the order is later mutated.
type Item struct {
	Name  string      `json:"name"`
	Qty   int         `json:"qty"`
	Price types.Money `json:"price"`
}

type Record struct {
	ID                  int64       `json:"id"`
	OrderID             types.ID    `json:"order_id"`
	ShelterID           types.ID    `json:"shelter_id"`
	ShelterName         string      `json:"shelter_name"`
	ShelterAddress      string      `json:"shelter_address"`
	ShelterContactEmail string      `json:"shelter_contact_email"`
	ShelterContactPhone string      `json:"shelter_contact_phone"`
	Items               []Item      `json:"items"`
	Total               types.Money `json:"total"`
	CreatedAt           time.Time   `json:"created_at"`
}
