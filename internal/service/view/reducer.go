// internal/service/view/reducer.go

package view

import (
	"fmt"
	"sort"

	"placemap/internal/domain/filter"
	"placemap/internal/domain/geo"
	"placemap/internal/domain/place"
	"placemap/internal/metrics"
)

// EventLink is the actionable affordance of a linked event.
type EventLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Popup is the opaque popup content descriptor attached to a marker.
// The presentation layer renders it; the core only assembles it.
type Popup struct {
	Name       string     `json:"name"`
	TypeBadges []string   `json:"type_badges,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	MapsURL    string     `json:"maps_url,omitempty"`
	Event      *EventLink `json:"event,omitempty"`
}

// Marker is one plotted map point.
type Marker struct {
	ID    string  `json:"id"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Popup Popup   `json:"popup"`
}

// ListItem is one sidebar entry, ordered by distance from the viewport
// center.
type ListItem struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Types  []string      `json:"types,omitempty"`
	Lat    float64       `json:"lat"`
	Lon    float64       `json:"lon"`
	Notes  string        `json:"notes,omitempty"`
	URL    string        `json:"url,omitempty"`
	Events []place.Event `json:"events,omitempty"`
}

// Result is one complete recomputation pass: everything the
// presentation layer needs to repaint.
type Result struct {
	Markers       []Marker   `json:"markers"`
	Sidebar       []ListItem `json:"sidebar"`
	VisibleCount  int        `json:"visible_count"`
	FilteredCount int        `json:"filtered_count"`
	Status        string     `json:"status"`
}

// Reducer computes the filtered marker set, the viewport-visible subset
// and the distance-sorted sidebar from a snapshot, a selection and a
// viewport. Passes are pure and idempotent.
type Reducer struct {
	defaultCenter geo.Point
}

// New creates a reducer with the center used when no viewport exists yet.
func New(defaultCenter geo.Point) *Reducer {
	return &Reducer{defaultCenter: defaultCenter}
}

// Reduce runs one reduction pass. A nil viewport admits every filtered
// place to the sidebar and ranks from the default center.
func (r *Reducer) Reduce(snapshot *place.Snapshot, sel filter.Selection, viewport *geo.Viewport) Result {
	metrics.ViewsComputedTotal.Inc()

	filtered := filterPlaces(snapshot, sel)

	// Markers are never limited by the viewport: panning must not make
	// plotted places vanish from the map.
	markers := make([]Marker, 0, len(filtered))
	for _, p := range filtered {
		markers = append(markers, Marker{
			ID:    p.ID,
			Lat:   *p.Lat,
			Lon:   *p.Lon,
			Popup: buildPopup(p),
		})
	}

	center := r.defaultCenter
	if viewport != nil {
		center = viewport.Center()
	}

	var visible []place.Place
	for _, p := range filtered {
		if viewport.Contains(*p.Lat, *p.Lon) {
			visible = append(visible, p)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		di := geo.Distance(center, geo.Point{Lat: *visible[i].Lat, Lon: *visible[i].Lon})
		dj := geo.Distance(center, geo.Point{Lat: *visible[j].Lat, Lon: *visible[j].Lon})
		return di < dj
	})

	sidebar := make([]ListItem, 0, len(visible))
	for _, p := range visible {
		sidebar = append(sidebar, ListItem{
			ID:     p.ID,
			Name:   p.Name,
			Types:  p.Types,
			Lat:    *p.Lat,
			Lon:    *p.Lon,
			Notes:  p.Notes,
			URL:    p.URL,
			Events: p.Events,
		})
	}

	return Result{
		Markers:       markers,
		Sidebar:       sidebar,
		VisibleCount:  len(sidebar),
		FilteredCount: len(markers),
		Status:        fmt.Sprintf("Showing %d/%d locations on the map", len(sidebar), len(markers)),
	}
}

// filterPlaces applies the category and events-only filters over the
// mappable places. Places without any type labels pass the category
// test: absence of classification is not a mismatch.
func filterPlaces(snapshot *place.Snapshot, sel filter.Selection) []place.Place {
	if snapshot == nil {
		return nil
	}

	var out []place.Place
	for _, p := range snapshot.Places() {
		if !p.Mappable() {
			continue
		}
		if !sel.IsFull() && len(p.Types) > 0 && !matchesSelection(p.Types, sel) {
			continue
		}
		if sel.EventsOnlyActive() && len(p.Events) == 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesSelection(types []string, sel filter.Selection) bool {
	for _, t := range types {
		if sel.Has(t) {
			return true
		}
	}
	return false
}

// buildPopup assembles the popup descriptor: name, type badges, notes,
// the Google Maps link unless it is the no-link sentinel, and the first
// linked event that carries a URL.
func buildPopup(p place.Place) Popup {
	popup := Popup{
		Name:       p.Name,
		TypeBadges: p.Types,
		Notes:      p.Notes,
	}
	if p.HasLink() {
		popup.MapsURL = p.URL
	}
	for _, ev := range p.Events {
		if ev.URL == "" {
			continue
		}
		name := ev.Name
		if name == "" {
			name = "Event"
		}
		popup.Event = &EventLink{Name: name, URL: ev.URL}
		break
	}
	return popup
}
