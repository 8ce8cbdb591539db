package geo

import "testing"

func TestNilViewportAdmitsEverything(t *testing.T) {
	var v *Viewport
	coords := [][2]float64{
		{0, 0},
		{43.65, -79.38},
		{-90, 180},
		{90, -180},
	}
	for _, c := range coords {
		if !v.Contains(c[0], c[1]) {
			t.Errorf("nil viewport rejected (%v, %v)", c[0], c[1])
		}
	}
}

func TestContainsSimpleBox(t *testing.T) {
	v := &Viewport{South: 43.0, West: -80.0, North: 44.0, East: -79.0}

	tests := []struct {
		lat, lon float64
		want     bool
	}{
		{43.65, -79.38, true},
		{43.0, -80.0, true},  // inclusive corners
		{44.0, -79.0, true},
		{42.9, -79.5, false}, // south of box
		{43.5, -78.9, false}, // east of box
	}

	for _, tt := range tests {
		if got := v.Contains(tt.lat, tt.lon); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v; want %v", tt.lat, tt.lon, got, tt.want)
		}
	}
}

func TestContainsAntimeridianWraparound(t *testing.T) {
	// West > East means the box crosses the 180 meridian
	v := &Viewport{South: -10, West: 170, North: 10, East: -170}

	tests := []struct {
		lat, lon float64
		want     bool
	}{
		{0, 180, true},
		{0, 175, true},
		{0, -175, true},
		{0, 170, true},
		{0, -170, true},
		{0, 0, false},
		{0, 160, false},
		{0, -160, false},
		{20, 180, false}, // latitude still applies
	}

	for _, tt := range tests {
		if got := v.Contains(tt.lat, tt.lon); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v; want %v", tt.lat, tt.lon, got, tt.want)
		}
	}
}

func TestCenter(t *testing.T) {
	v := &Viewport{South: 43.0, West: -80.0, North: 44.0, East: -79.0}
	c := v.Center()
	if c.Lat != 43.5 || c.Lon != -79.5 {
		t.Errorf("Center() = %+v; want (43.5, -79.5)", c)
	}
}

func TestCenterAcrossAntimeridian(t *testing.T) {
	v := &Viewport{South: -10, West: 170, North: 10, East: -170}
	c := v.Center()
	if c.Lat != 0 {
		t.Errorf("center lat = %v; want 0", c.Lat)
	}
	if c.Lon != 180 && c.Lon != -180 {
		t.Errorf("center lon = %v; want the antimeridian", c.Lon)
	}
}

func TestDistanceOrdersByProximity(t *testing.T) {
	center := Point{Lat: 43.65, Lon: -79.38}
	near := Point{Lat: 43.66, Lon: -79.39}
	far := Point{Lat: 44.5, Lon: -80.5}

	if Distance(center, near) >= Distance(center, far) {
		t.Errorf("expected near < far: %v >= %v", Distance(center, near), Distance(center, far))
	}
	if Distance(center, center) != 0 {
		t.Errorf("distance to self = %v; want 0", Distance(center, center))
	}
}
