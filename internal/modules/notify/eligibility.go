// README: Eligibility filter: decides who may be offered a redistributed
// order and ranks survivors by distance.
package notify

import (
	"strings"

	"stackshack/internal/geo"
	"stackshack/internal/modules/user"
	"stackshack/internal/types"
)

// Recipient is one ranked candidate for a claim opportunity.
type Recipient struct {
	UserID     types.ID
	DistanceKm float64
}

// EligibleRecipients filters candidate profiles against the job and returns
// them ranked ascending by distance (closest first: nearer users are more
// likely to fulfill the order quickly, so they get first refusal).
//
// A candidate is excluded when any of the following holds:
//   - they are the user who gave the order up
//   - their notifications are disabled
//   - they have no coordinates, or the order has none
//   - they are farther away than their own max distance
//   - the order amount falls outside their price band
//   - they filter on preferred items and no order item matches
func EligibleRecipients(job Job, candidates []user.Profile) []Recipient {
	if job.Location == nil {
		return nil
	}

	out := make([]Recipient, 0, len(candidates))
	for _, p := range candidates {
		if p.UserID == job.ExcludedUserID {
			continue
		}
		if !p.NotificationsEnabled {
			continue
		}
		if p.Coords == nil {
			continue
		}
		dist := geo.DistanceKm(*p.Coords, *job.Location)
		if dist > p.MaxDistanceKm {
			continue
		}
		if !withinPriceBand(job.Amount.Amount, p) {
			continue
		}
		if !matchesPreferredItems(job.ItemNames, p.PreferredItems) {
			continue
		}
		out = append(out, Recipient{UserID: p.UserID, DistanceKm: dist})
	}

	geo.SortByDistance(out, func(r Recipient) float64 { return r.DistanceKm })
	return out
}

// withinPriceBand checks [MinPrice, MaxPrice]; a zero MaxPrice means
// unbounded above.
func withinPriceBand(amount int64, p user.Profile) bool {
	if amount < p.MinPrice.Amount {
		return false
	}
	if p.MaxPrice.Amount > 0 && amount > p.MaxPrice.Amount {
		return false
	}
	return true
}

// matchesPreferredItems reports whether any order item name contains any
// preferred term, case-insensitively. An empty preference set matches
// everything.
func matchesPreferredItems(itemNames, preferred []string) bool {
	if len(preferred) == 0 {
		return true
	}
	for _, term := range preferred {
		t := strings.ToLower(strings.TrimSpace(term))
		if t == "" {
			continue
		}
		for _, name := range itemNames {
			if strings.Contains(strings.ToLower(name), t) {
				return true
			}
		}
	}
	return false
}
