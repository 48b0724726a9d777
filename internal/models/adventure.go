package models

import (
	"fmt"
	"sort"
)

// Category is one of the fixed adventure types
type Category uint8

const (
	CategoryRoadTrip Category = iota + 1
	CategoryMovieNight
	CategoryFoodieTour
	CategoryGamingSession
	CategoryConcert
	CategoryHiking
	CategoryBeachDay
	CategoryShoppingSpree
)

var categoryLabels = map[Category]string{
	CategoryRoadTrip:      "RoadTrip",
	CategoryMovieNight:    "Movie_Night",
	CategoryFoodieTour:    "Foodie_Tour",
	CategoryGamingSession: "Gaming_Session",
	CategoryConcert:       "Concert",
	CategoryHiking:        "Hiking",
	CategoryBeachDay:      "Beach_Day",
	CategoryShoppingSpree: "Shopping_Spree",
}

// Categories returns every valid category in declaration order
func Categories() []Category {
	return []Category{
		CategoryRoadTrip,
		CategoryMovieNight,
		CategoryFoodieTour,
		CategoryGamingSession,
		CategoryConcert,
		CategoryHiking,
		CategoryBeachDay,
		CategoryShoppingSpree,
	}
}

// ParseCategory resolves a label such as "Hiking". Matching is case-sensitive.
func ParseCategory(label string) (Category, error) {
	for c, l := range categoryLabels {
		if l == label {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCategory, label)
}

// Valid reports whether c is one of the fixed categories
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c Category) String() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

// MarshalText encodes the category as its label
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCategory, uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category label
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// PairKey identifies one directional pair count within a day.
// A and B are stored as separate fields so names may contain any character.
type PairKey struct {
	A        string
	B        string
	Category Category
}

// Reverse returns the key with A and B swapped
func (k PairKey) Reverse() PairKey {
	return PairKey{A: k.B, B: k.A, Category: k.Category}
}

// Involves reports whether user is either side of the pair
func (k PairKey) Involves(user string) bool {
	return k.A == user || k.B == user
}

// DayLedger holds the pair counts recorded on a single date
type DayLedger map[PairKey]int

// Ledger maps an ISO date (YYYY-MM-DD) to that day's pair counts
type Ledger map[string]DayLedger

// Entry is a flattened ledger row
type Entry struct {
	Date     string   `json:"date"`
	A        string   `json:"a"`
	B        string   `json:"b"`
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

// Key returns the entry's pair key
func (e Entry) Key() PairKey {
	return PairKey{A: e.A, B: e.B, Category: e.Category}
}

// Clone returns a deep copy of the ledger
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for date, day := range l {
		d := make(DayLedger, len(day))
		for k, v := range day {
			d[k] = v
		}
		out[date] = d
	}
	return out
}

// Dates returns the recorded dates in ascending order
func (l Ledger) Dates() []string {
	dates := make([]string, 0, len(l))
	for d := range l {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Add increments a pair count, creating the day if needed
func (l Ledger) Add(date string, key PairKey, delta int) {
	day, ok := l[date]
	if !ok {
		day = make(DayLedger)
		l[date] = day
	}
	day[key] += delta
	if day[key] <= 0 {
		delete(day, key)
	}
	if len(day) == 0 {
		delete(l, date)
	}
}

// Entries returns the rows for one date sorted by A, B and category
func (l Ledger) Entries(date string) []Entry {
	day := l[date]
	entries := make([]Entry, 0, len(day))
	for k, v := range day {
		entries = append(entries, Entry{Date: date, A: k.A, B: k.B, Category: k.Category, Count: v})
	}
	sortEntries(entries)
	return entries
}

// Flatten returns every row of the ledger ordered by date, A, B and category
func (l Ledger) Flatten() []Entry {
	var entries []Entry
	for _, date := range l.Dates() {
		entries = append(entries, l.Entries(date)...)
	}
	return entries
}

// Equal reports whether two ledgers hold the same counts
func (l Ledger) Equal(other Ledger) bool {
	if len(l) != len(other) {
		return false
	}
	for date, day := range l {
		od, ok := other[date]
		if !ok || len(od) != len(day) {
			return false
		}
		for k, v := range day {
			if od[k] != v {
				return false
			}
		}
	}
	return true
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.A != b.A {
			return a.A < b.A
		}
		if a.B != b.B {
			return a.B < b.B
		}
		return a.Category < b.Category
	})
}

// Buddy is a partner together with the number of shared adventure entries
type Buddy struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Names extracts buddy names preserving order
func Names(buddies []Buddy) []string {
	names := make([]string, len(buddies))
	for i, b := range buddies {
		names[i] = b.Name
	}
	return names
}
