// internal/service/loader/extract.go

package loader

import (
	"math"
	"regexp"
	"strings"
	"time"

	"placemap/internal/domain/place"
	"placemap/internal/schema"
)

// recordID matches the upstream store's internal record id shape.
// Entries in an event's Place field that look like ids are used
// directly; everything else goes through the name lookup.
var recordID = regexp.MustCompile(`^rec[a-zA-Z0-9]{14}$`)

// eventDateLayout is the accepted timestamp shape for one-time events,
// after the raw value is truncated to its first 19 characters (dropping
// sub-second and timezone suffixes like ".000Z").
const eventDateLayout = "2006-01-02T15:04:05"

// droppedEvent explains why an event was excluded from the result set.
type droppedEvent string

const (
	dropMissingURL  droppedEvent = "no_url"
	dropNoPlace     droppedEvent = "no_place"
	dropBadDate     droppedEvent = "bad_date"
	dropOutOfWindow droppedEvent = "out_of_window"
)

// NormalizeLatLon accepts a coordinate only as a pair: if either side is
// missing or non-finite, both come back nil. A place cannot be half
// located.
func NormalizeLatLon(lat, lon *float64) (*float64, *float64) {
	if lat == nil || lon == nil {
		return nil, nil
	}
	if math.IsNaN(*lat) || math.IsInf(*lat, 0) || math.IsNaN(*lon) || math.IsInf(*lon, 0) {
		return nil, nil
	}
	return lat, lon
}

// ExtractPlace maps a raw place row into a canonical Place using the
// given field schema. Coercion failures resolve to field defaults;
// the row always yields a Place, mappable or not.
func ExtractPlace(row place.Row, s schema.Schema) place.Place {
	lat := s.Float(row.Fields, schema.FieldLatitude)
	lon := s.Float(row.Fields, schema.FieldLongitude)
	lat, lon = NormalizeLatLon(lat, lon)

	return place.Place{
		ID:    row.ID,
		Name:  s.String(row.Fields, schema.FieldName),
		Types: s.StringList(row.Fields, schema.FieldType),
		Lat:   lat,
		Lon:   lon,
		Notes: s.String(row.Fields, schema.FieldNotes),
		URL:   s.String(row.Fields, schema.FieldMapLink),
	}
}

// extractEvent maps a raw event row into an Event plus the place ids it
// attaches to. A zero-length id list or drop reason means the event is
// excluded entirely.
func extractEvent(
	row place.Row,
	s schema.Schema,
	nameToID map[string]string,
	start, end time.Time,
) (place.Event, []string, droppedEvent) {
	f := row.Fields

	url := s.String(f, schema.FieldLink)
	if url == "" {
		return place.Event{}, nil, dropMissingURL
	}

	ev := place.Event{
		Name:       s.String(f, schema.FieldName),
		URL:        url,
		Recurrence: s.String(f, schema.FieldRecurrence),
		When:       s.String(f, schema.FieldWhen),
	}

	if ev.Recurrence == place.RecurrenceOnce {
		raw := s.String(f, schema.FieldDate)
		if raw == "" {
			return place.Event{}, nil, dropBadDate
		}
		if len(raw) > 19 {
			raw = raw[:19]
		}
		date, err := time.Parse(eventDateLayout, raw)
		if err != nil {
			return place.Event{}, nil, dropBadDate
		}
		if date.Before(start) || date.After(end) {
			return place.Event{}, nil, dropOutOfWindow
		}
		ev.Date = &date
	}

	ids := resolvePlaceIDs(
		s.StringList(f, schema.FieldPlace),
		s.StringList(f, schema.FieldPlaceName),
		nameToID,
	)
	if len(ids) == 0 {
		return place.Event{}, nil, dropNoPlace
	}

	return ev, ids, ""
}

// resolvePlaceIDs turns an event's Place field into concrete place ids.
// Entries shaped like record ids are taken as is; the rest are matched
// by trimmed name. When the Place field resolves nothing, the
// name-lookup fallback field gets the same treatment.
func resolvePlaceIDs(placeField, placeNames []string, nameToID map[string]string) []string {
	var ids []string
	seen := make(map[string]struct{})

	add := func(id string) {
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, entry := range placeField {
		if recordID.MatchString(entry) {
			add(entry)
			continue
		}
		if id, ok := nameToID[strings.TrimSpace(entry)]; ok {
			add(id)
		}
	}

	if len(ids) == 0 {
		for _, name := range placeNames {
			if id, ok := nameToID[strings.TrimSpace(name)]; ok {
				add(id)
			}
		}
	}

	return ids
}

// buildNameIndex maps trimmed place names to ids for resolving events
// that reference places by name rather than id.
func buildNameIndex(places map[string]place.Place) map[string]string {
	idx := make(map[string]string, len(places))
	for id, p := range places {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		idx[name] = id
	}
	return idx
}
