// Package collection maintains the event listing a page displays: the base
// set fetched from the server and the filtered, date-sorted projection of it.
package collection

import (
	"sort"
	"sync"

	"eventhub/pkg/models"
)

// LoadToken identifies one fetch issued for a View. A token is superseded as
// soon as a newer one is issued; completing a superseded load is a no-op, so
// a slow response can never overwrite the result of a later fetch.
type LoadToken uint64

// View is a filterable, sortable projection over a set of events. The base
// tier holds what the server returned; the view tier is what gets displayed.
// Per-item annotations (hasJoined) live on both tiers so a filter change
// never loses them. Safe for concurrent use.
type View struct {
	mu      sync.Mutex
	base    []models.EventRecord
	filter  models.EventType
	joined  map[string]bool
	current LoadToken
}

// NewView returns an empty view with no filter set.
func NewView() *View {
	return &View{joined: make(map[string]bool)}
}

// BeginLoad marks the start of a fetch and returns its token. Issuing a new
// token supersedes all earlier ones.
func (v *View) BeginLoad() LoadToken {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current++
	return v.current
}

// CompleteLoad installs events as the base tier if token is still the latest.
// It reports whether the load was applied.
func (v *View) CompleteLoad(token LoadToken, events []models.EventRecord) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if token != v.current {
		return false
	}
	v.base = make([]models.EventRecord, len(events))
	copy(v.base, events)
	return true
}

// SetEvents replaces the base tier directly, superseding any fetch still in
// flight.
func (v *View) SetEvents(events []models.EventRecord) {
	token := v.BeginLoad()
	v.CompleteLoad(token, events)
}

// SetFilter sets the event-type filter. An empty value clears it.
func (v *View) SetFilter(t models.EventType) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = t
}

// Filter returns the current event-type filter.
func (v *View) Filter() models.EventType {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

// MarkJoined records the hasJoined annotation for an event id. The annotation
// is visible through Events regardless of the active filter.
func (v *View) MarkJoined(eventID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.joined[eventID] = true
}

// HasJoined reports the annotation for an event id.
func (v *View) HasJoined(eventID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.joined[eventID]
}

// Item is one displayable row of the view tier.
type Item struct {
	models.EventRecord
	HasJoined bool
}

// Events computes the view tier: the base events filtered by type (exact,
// case-sensitive) and sorted ascending by date, ties keeping base order.
// The projection is pure; calling it repeatedly with the same state yields
// the same sequence.
func (v *View) Events() []Item {
	v.mu.Lock()
	defer v.mu.Unlock()

	items := make([]Item, 0, len(v.base))
	for _, e := range v.base {
		if v.filter != "" && e.EventType != v.filter {
			continue
		}
		items = append(items, Item{EventRecord: e, HasJoined: v.joined[e.ID]})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.Before(items[j].Date)
	})
	return items
}

// Len returns the size of the base tier.
func (v *View) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.base)
}
