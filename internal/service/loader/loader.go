// internal/service/loader/loader.go

package loader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"placemap/internal/domain/place"
	"placemap/internal/logger"
	"placemap/internal/metrics"
	"placemap/internal/schema"
	"placemap/internal/service/notify"
)

// Config contains configuration for the snapshot loader
type Config struct {
	PlacesTable string
	EventsTable string
	TTL         time.Duration
}

// cacheEntry is one memoized snapshot with its expiry timestamp.
type cacheEntry struct {
	snapshot *place.Snapshot
	expires  time.Time
}

// Loader fetches place and event rows from the tabular store, extracts
// canonical entities, links events to places, and memoizes the result
// per time-window value. Snapshots are rebuilt from scratch on every
// load and replaced wholesale; a published snapshot never mutates.
type Loader struct {
	source       place.RowSource
	placesSchema schema.Schema
	eventsSchema schema.Schema
	config       Config
	log          *logger.Logger
	notifier     notify.Notifier

	mu    sync.RWMutex
	cache map[int]cacheEntry

	// now is swappable for tests
	now func() time.Time
}

// New creates a snapshot loader
func New(
	source place.RowSource,
	placesSchema schema.Schema,
	eventsSchema schema.Schema,
	config Config,
	log *logger.Logger,
	notifier notify.Notifier,
) *Loader {
	if config.TTL <= 0 {
		config.TTL = 10 * time.Minute
	}
	return &Loader{
		source:       source,
		placesSchema: placesSchema,
		eventsSchema: eventsSchema,
		config:       config,
		log:          log,
		notifier:     notifier,
		cache:        make(map[int]cacheEntry),
		now:          time.Now,
	}
}

// Load returns the snapshot for the given time window, serving the
// memoized copy while it is fresh. On a failed fetch the previous
// snapshot for that window, stale or not, stays authoritative and is
// returned; an error surfaces only when no snapshot exists at all.
func (l *Loader) Load(ctx context.Context, windowDays int) (*place.Snapshot, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("window days must be positive, got %d", windowDays)
	}

	l.mu.RLock()
	entry, ok := l.cache[windowDays]
	l.mu.RUnlock()

	if ok && l.now().Before(entry.expires) {
		metrics.CacheHitsTotal.Inc()
		return entry.snapshot, nil
	}
	metrics.CacheMissesTotal.Inc()

	snapshot, err := l.Refresh(ctx, windowDays)
	if err != nil {
		if ok {
			l.log.Warn("[loader] Load failed, serving previous snapshot for window %d: %v", windowDays, err)
			metrics.LoadsTotal.WithLabelValues("stale").Inc()
			return entry.snapshot, nil
		}
		return nil, err
	}
	return snapshot, nil
}

// Cached returns the memoized snapshot for a window regardless of
// freshness, or nil when none exists.
func (l *Loader) Cached(windowDays int) *place.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if entry, ok := l.cache[windowDays]; ok {
		return entry.snapshot
	}
	return nil
}

// Refresh bypasses the cache and rebuilds the snapshot for a window.
// The cache entry is only replaced on success.
func (l *Loader) Refresh(ctx context.Context, windowDays int) (*place.Snapshot, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("window days must be positive, got %d", windowDays)
	}

	began := l.now()
	snapshot, err := l.build(ctx, windowDays)
	if err != nil {
		metrics.LoadsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.LoadsTotal.WithLabelValues("ok").Inc()
	metrics.LoadDurationMs.Observe(float64(l.now().Sub(began).Milliseconds()))

	l.mu.Lock()
	l.cache[windowDays] = cacheEntry{
		snapshot: snapshot,
		expires:  snapshot.LoadedAt.Add(l.config.TTL),
	}
	l.mu.Unlock()

	linked := 0
	for _, evs := range snapshot.EventsByPlace {
		linked += len(evs)
	}
	metrics.PlacesLoaded.Set(float64(len(snapshot.PlacesByID)))
	metrics.EventsLinked.Set(float64(linked))

	l.log.Info("[loader] Snapshot refreshed: %d places, %d event links, window %dd",
		len(snapshot.PlacesByID), linked, windowDays)

	if l.notifier != nil {
		l.notifier.NotifyRefresh(notify.RefreshEvent{
			WindowDays: windowDays,
			Places:     len(snapshot.PlacesByID),
			LoadedAt:   snapshot.LoadedAt,
		})
	}

	return snapshot, nil
}

// build performs the full-table fetches and the extraction/link pass.
func (l *Loader) build(ctx context.Context, windowDays int) (*place.Snapshot, error) {
	start := l.now()
	end := start.AddDate(0, 0, windowDays)

	placeRows, err := l.source.FetchAllRows(ctx, l.config.PlacesTable)
	if err != nil {
		return nil, fmt.Errorf("fetching places: %w", err)
	}

	placesByID := make(map[string]place.Place, len(placeRows))
	for _, row := range placeRows {
		if row.ID == "" {
			l.log.Debug("[loader] Skipping place row without id")
			continue
		}
		placesByID[row.ID] = ExtractPlace(row, l.placesSchema)
	}

	eventRows, err := l.source.FetchAllRows(ctx, l.config.EventsTable)
	if err != nil {
		return nil, fmt.Errorf("fetching events: %w", err)
	}

	nameToID := buildNameIndex(placesByID)
	eventsByPlace := make(map[string][]place.Event)

	for _, row := range eventRows {
		ev, ids, reason := extractEvent(row, l.eventsSchema, nameToID, start, end)
		if reason != "" {
			metrics.EventsDroppedTotal.WithLabelValues(string(reason)).Inc()
			l.log.Debug("[loader] Dropping event row %s: %s", row.ID, reason)
			continue
		}
		for _, id := range ids {
			eventsByPlace[id] = append(eventsByPlace[id], ev)
		}
	}

	snapshot := &place.Snapshot{
		PlacesByID:    placesByID,
		EventsByPlace: eventsByPlace,
		Categories:    place.ComputeCategories(snapshotPlaces(placesByID)),
		WindowDays:    windowDays,
		LoadedAt:      start,
	}
	return snapshot, nil
}

func snapshotPlaces(placesByID map[string]place.Place) []place.Place {
	out := make([]place.Place, 0, len(placesByID))
	for _, p := range placesByID {
		out = append(out, p)
	}
	return out
}
