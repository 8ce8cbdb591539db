package place

import (
	"sort"
	"strings"
	"time"
)

// NoLinkSentinel is the URL value meaning "this place has no external link".
const NoLinkSentinel = "#"

// RecurrenceOnce marks an event that happens exactly once and is subject
// to time-window admission.
const RecurrenceOnce = "Once"

// Event represents a time-bound or recurring activity linked to a place
type Event struct {
	Name       string     `json:"name"`
	URL        string     `json:"url"`
	Recurrence string     `json:"recurrence"`
	When       string     `json:"when,omitempty"`
	Date       *time.Time `json:"date,omitempty"`
}

// Place represents a point of interest with location, category labels
// and descriptive metadata
type Place struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Types  []string `json:"types"`
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
	Notes  string   `json:"notes"`
	URL    string   `json:"url"`
	Events []Event  `json:"events,omitempty"`
}

// Mappable reports whether the place carries a usable coordinate pair.
// Unmappable places stay in the canonical set but are never rendered
// or counted.
func (p Place) Mappable() bool {
	return p.Lat != nil && p.Lon != nil
}

// HasLink reports whether the place URL is a real link rather than the
// no-link sentinel.
func (p Place) HasLink() bool {
	return p.URL != "" && p.URL != NoLinkSentinel
}

// Snapshot is one complete, immutable load of the place/event dataset.
// Consumers hold a reference; the loader replaces snapshots wholesale
// and never mutates a published one.
type Snapshot struct {
	PlacesByID    map[string]Place
	EventsByPlace map[string][]Event
	Categories    []string
	WindowDays    int
	LoadedAt      time.Time
}

// Places returns the snapshot's places with their events attached,
// ordered by id for deterministic iteration.
func (s *Snapshot) Places() []Place {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.PlacesByID))
	for id := range s.PlacesByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Place, 0, len(ids))
	for _, id := range ids {
		p := s.PlacesByID[id]
		p.Events = s.EventsByPlace[id]
		out = append(out, p)
	}
	return out
}

// ComputeCategories returns the sorted distinct type labels across a
// set of places.
func ComputeCategories(places []Place) []string {
	seen := make(map[string]struct{})
	for _, p := range places {
		for _, t := range p.Types {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			seen[t] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
