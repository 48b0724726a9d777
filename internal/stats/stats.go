// Package stats aggregates a ledger into per-user views.
//
// Every adventure is stored once per direction, so any total over "entries
// involving user" counts each shared adventure twice. Badge thresholds are
// calibrated against that doubled total and it is kept on purpose.
//
// Users match a pair side by exact name, so "Amit" does not pick up the
// counts of "Amita".
package stats

import (
	"sort"

	"github.com/oscillatelabsllc/sidequest/internal/models"
)

// TopPartners returns up to n partners of user ordered by shared count
// descending, ties broken by name ascending. n <= 0 returns every partner.
func TopPartners(l models.Ledger, user string, n int) []models.Buddy {
	counts := make(map[string]int)
	for _, day := range l {
		for k, c := range day {
			switch {
			case k.A == user:
				counts[k.B] += c
			case k.B == user:
				counts[k.A] += c
			}
		}
	}

	buddies := make([]models.Buddy, 0, len(counts))
	for name, c := range counts {
		buddies = append(buddies, models.Buddy{Name: name, Count: c})
	}
	sort.Slice(buddies, func(i, j int) bool {
		if buddies[i].Count != buddies[j].Count {
			return buddies[i].Count > buddies[j].Count
		}
		return buddies[i].Name < buddies[j].Name
	})

	if n > 0 && len(buddies) > n {
		buddies = buddies[:n]
	}
	return buddies
}

// HistoryForDate returns every entry recorded on date
func HistoryForDate(l models.Ledger, date string) []models.Entry {
	return l.Entries(date)
}

// CategoryTotals sums counts per category over entries involving user
func CategoryTotals(l models.Ledger, user string) map[models.Category]int {
	totals := make(map[models.Category]int)
	for _, day := range l {
		for k, c := range day {
			if k.Involves(user) {
				totals[k.Category] += c
			}
		}
	}
	return totals
}

// TotalAdventures sums counts over every entry involving user
func TotalAdventures(l models.Ledger, user string) int {
	total := 0
	for _, day := range l {
		for k, c := range day {
			if k.Involves(user) {
				total += c
			}
		}
	}
	return total
}

// BadgeFor maps a total to the highest tier reached
func BadgeFor(total int) models.BadgeTier {
	switch {
	case total >= models.UltimateTravelerThreshold:
		return models.BadgeUltimateTraveler
	case total >= models.ExplorerThreshold:
		return models.BadgeExplorer
	case total >= models.AdventurerThreshold:
		return models.BadgeAdventurer
	default:
		return models.BadgeNone
	}
}

// BadgeTier returns the tier for user's total adventures
func BadgeTier(l models.Ledger, user string) models.BadgeTier {
	return BadgeFor(TotalAdventures(l, user))
}

// TrendPoint is one category's share of a user's adventures
type TrendPoint struct {
	Category models.Category `json:"category"`
	Count    int             `json:"count"`
}

// Trend orders CategoryTotals for display, largest first then by category order
func Trend(totals map[models.Category]int) []TrendPoint {
	points := make([]TrendPoint, 0, len(totals))
	for c, n := range totals {
		points = append(points, TrendPoint{Category: c, Count: n})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Count != points[j].Count {
			return points[i].Count > points[j].Count
		}
		return points[i].Category < points[j].Category
	})
	return points
}
