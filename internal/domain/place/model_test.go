package place

import (
	"reflect"
	"testing"
)

func fptr(f float64) *float64 { return &f }

func TestMappable(t *testing.T) {
	tests := []struct {
		name string
		p    Place
		want bool
	}{
		{"both coordinates", Place{Lat: fptr(43.65), Lon: fptr(-79.38)}, true},
		{"missing lon", Place{Lat: fptr(43.65)}, false},
		{"missing lat", Place{Lon: fptr(-79.38)}, false},
		{"neither", Place{}, false},
	}
	for _, tt := range tests {
		if got := tt.p.Mappable(); got != tt.want {
			t.Errorf("%s: Mappable() = %v; want %v", tt.name, got, tt.want)
		}
	}
}

func TestHasLink(t *testing.T) {
	if (Place{URL: NoLinkSentinel}).HasLink() {
		t.Errorf("sentinel URL should not count as a link")
	}
	if (Place{URL: ""}).HasLink() {
		t.Errorf("empty URL should not count as a link")
	}
	if !(Place{URL: "https://example.com"}).HasLink() {
		t.Errorf("real URL should count as a link")
	}
}

func TestSnapshotPlacesOrderedWithEvents(t *testing.T) {
	s := &Snapshot{
		PlacesByID: map[string]Place{
			"recBBBBBBBBBBBBBB": {ID: "recBBBBBBBBBBBBBB", Name: "Library"},
			"recAAAAAAAAAAAAAA": {ID: "recAAAAAAAAAAAAAA", Name: "Cafe"},
		},
		EventsByPlace: map[string][]Event{
			"recAAAAAAAAAAAAAA": {{Name: "Open Mic"}},
		},
	}

	got := s.Places()
	if len(got) != 2 {
		t.Fatalf("len(Places()) = %d; want 2", len(got))
	}
	if got[0].Name != "Cafe" || got[1].Name != "Library" {
		t.Errorf("places out of id order: %q, %q", got[0].Name, got[1].Name)
	}
	if len(got[0].Events) != 1 || got[0].Events[0].Name != "Open Mic" {
		t.Errorf("events not attached to owning place: %+v", got[0].Events)
	}
	if got[1].Events != nil {
		t.Errorf("place without events should have nil Events, got %+v", got[1].Events)
	}
}

func TestSnapshotPlacesNilReceiver(t *testing.T) {
	var s *Snapshot
	if got := s.Places(); got != nil {
		t.Errorf("nil snapshot Places() = %v; want nil", got)
	}
}

func TestComputeCategories(t *testing.T) {
	places := []Place{
		{Types: []string{"Coffee Shop", "Coworking"}},
		{Types: []string{" Coffee Shop ", ""}},
		{Types: nil},
		{Types: []string{"Park"}},
	}
	want := []string{"Coffee Shop", "Coworking", "Park"}
	if got := ComputeCategories(places); !reflect.DeepEqual(got, want) {
		t.Errorf("ComputeCategories() = %v; want %v", got, want)
	}
}
