package schema

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestCoerceString(t *testing.T) {
	tests := []struct {
		in   interface{}
		want interface{}
	}{
		{"hello", "hello"},
		{43.65, "43.65"},
		{7, "7"},
		{true, "true"},
		{nil, nil},
	}

	for _, tt := range tests {
		got := Coerce(tt.in, TypeString)
		if got != tt.want {
			t.Errorf("Coerce(%v, string) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestCoerceFloat(t *testing.T) {
	tests := []struct {
		in   interface{}
		want interface{}
	}{
		{43.65, 43.65},
		{"43.65", 43.65},
		{" -79.38 ", -79.38},
		{7, 7.0},
		{"N/A", nil},
		{"", nil},
		{nil, nil},
		{map[string]interface{}{}, nil},
	}

	for _, tt := range tests {
		got := Coerce(tt.in, TypeFloat)
		if got != tt.want {
			t.Errorf("Coerce(%v, float) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestCoerceStringList(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want []string
	}{
		{"list of strings", []interface{}{"Coffee Shop", "Library"}, []string{"Coffee Shop", "Library"}},
		{"drops falsy members", []interface{}{"Coffee Shop", "", nil}, []string{"Coffee Shop"}},
		{"stringifies members", []interface{}{1, "two"}, []string{"1", "two"}},
		{"wraps scalar", "Coffee Shop", []string{"Coffee Shop"}},
		{"falsy scalar becomes empty", "", []string{}},
	}

	for _, tt := range tests {
		got, ok := Coerce(tt.in, TypeStringList).([]string)
		if !ok {
			t.Fatalf("%s: Coerce returned %T, want []string", tt.name, Coerce(tt.in, TypeStringList))
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: Coerce(%v) = %v; want %v", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestCoerceUnknownTypePassesThrough(t *testing.T) {
	v := map[string]interface{}{"x": 1}
	got := Coerce(v, Type("geometry"))
	if !reflect.DeepEqual(got, v) {
		t.Errorf("unknown declared type should pass value through, got %v", got)
	}
}

func TestLookupCaseInsensitive(t *testing.T) {
	fields := map[string]interface{}{
		"LATITUDE": 43.65,
		"Notes":    "open late",
	}

	if got := Lookup(fields, "Latitude", "lat"); got != 43.65 {
		t.Errorf("Lookup(Latitude) = %v; want 43.65", got)
	}
	if got := Lookup(fields, "notes"); got != "open late" {
		t.Errorf("Lookup(notes) = %v; want %q", got, "open late")
	}
	if got := Lookup(fields, "Longitude", "lon"); got != nil {
		t.Errorf("Lookup(missing) = %v; want nil", got)
	}
}

func TestLookupFirstCandidateWins(t *testing.T) {
	fields := map[string]interface{}{
		"URL":  "primary",
		"Link": "secondary",
	}
	if got := Lookup(fields, "URL", "Link"); got != "primary" {
		t.Errorf("Lookup = %v; want primary", got)
	}
}

func TestResolveAppliesDefaults(t *testing.T) {
	places := Places()

	fields := map[string]interface{}{}
	if got := places.String(fields, FieldName); got != "Unnamed Location" {
		t.Errorf("missing Name resolved to %q; want default", got)
	}
	if got := places.String(fields, FieldMapLink); got != "#" {
		t.Errorf("missing map link resolved to %q; want sentinel", got)
	}
	if got := places.Float(fields, FieldLatitude); got != nil {
		t.Errorf("missing Latitude resolved to %v; want nil", got)
	}

	fields = map[string]interface{}{"Latitude": "not a number"}
	if got := places.Float(fields, FieldLatitude); got != nil {
		t.Errorf("unparseable Latitude resolved to %v; want nil", got)
	}
}

func TestResolveKeepsEmptyList(t *testing.T) {
	// An empty coerced list is a real value, not a coercion failure.
	events := Events()
	fields := map[string]interface{}{"Place": []interface{}{}}
	got := events.StringList(fields, FieldPlace)
	if len(got) != 0 {
		t.Errorf("empty Place list resolved to %v; want empty", got)
	}
}

func TestLoadFileMergesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")
	content := `
places:
  Latitude:
    keys: [Breedtegraad]
    type: float
  Name:
    keys: [Naam]
    type: string
    default: Onbekend
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	places, events, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	fields := map[string]interface{}{"Breedtegraad": "43.65", "Naam": nil}
	if got := places.Float(fields, FieldLatitude); got == nil || *got != 43.65 {
		t.Errorf("override keys not applied: got %v", got)
	}
	if got := places.String(fields, FieldName); got != "Onbekend" {
		t.Errorf("override default not applied: got %q", got)
	}

	// Untouched fields and the event schema keep their built-ins
	if got := places.String(fields, FieldMapLink); got != "#" {
		t.Errorf("untouched field changed: %q", got)
	}
	if got := events.String(map[string]interface{}{}, FieldName); got != "Event" {
		t.Errorf("event schema changed: %q", got)
	}
}

func TestLoadFileMissingPathUsesBuiltins(t *testing.T) {
	places, _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if got := places.String(map[string]interface{}{}, FieldName); got != "Unnamed Location" {
		t.Errorf("builtin default lost: %q", got)
	}
}
