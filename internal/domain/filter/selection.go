package filter

import "sort"

// EventsOnly is the reserved pseudo-label. It sits outside the category
// universe and toggles independently of the Full/Partial category logic.
const EventsOnly = "events-only"

// Selection is the filter state machine's state: the set of active
// category labels over a category universe, plus the events-only flag.
// Values are immutable; every transition returns a new Selection, so the
// hosting layer can store states in ledger fashion and feed them back in.
type Selection struct {
	universe   []string
	active     map[string]struct{}
	eventsOnly bool
}

// Full returns the rest state over the given universe: every category
// active, meaning "no filter applied". events-only starts off.
func Full(universe []string) Selection {
	u := normalize(universe)
	active := make(map[string]struct{}, len(u))
	for _, label := range u {
		active[label] = struct{}{}
	}
	return Selection{universe: u, active: active}
}

// WithActive builds a selection with exactly the given labels active,
// for stateless callers that carry the active set themselves. Labels
// outside the universe are discarded; an empty surviving category set
// falls back to Full, honoring the never-empty invariant. The
// events-only pseudo-label may appear among the labels.
func WithActive(universe []string, labels []string) Selection {
	u := normalize(universe)
	s := Selection{universe: u, active: make(map[string]struct{})}
	for _, label := range labels {
		if label == EventsOnly {
			s.eventsOnly = true
			continue
		}
		if contains(u, label) {
			s.active[label] = struct{}{}
		}
	}
	if len(s.active) == 0 {
		full := Full(u)
		full.eventsOnly = s.eventsOnly
		return full
	}
	return s
}

// IsFull reports whether the category selection equals the whole
// universe, i.e. no category filter is applied.
func (s Selection) IsFull() bool {
	return len(s.active) == len(s.universe)
}

// EventsOnlyActive reports whether the events-only pseudo-filter is on.
func (s Selection) EventsOnlyActive() bool {
	return s.eventsOnly
}

// Has reports whether a label is currently active. Works for category
// labels and the events-only pseudo-label alike.
func (s Selection) Has(label string) bool {
	if label == EventsOnly {
		return s.eventsOnly
	}
	_, ok := s.active[label]
	return ok
}

// Universe returns the category universe the selection was built over.
func (s Selection) Universe() []string {
	return append([]string(nil), s.universe...)
}

// ActiveLabels returns the active set in sorted order, with events-only
// appended when on.
func (s Selection) ActiveLabels() []string {
	out := make([]string, 0, len(s.active)+1)
	for label := range s.active {
		out = append(out, label)
	}
	sort.Strings(out)
	if s.eventsOnly {
		out = append(out, EventsOnly)
	}
	return out
}

// Toggle applies one click transition and returns the next state.
//
// Clicking events-only flips that flag and nothing else. Clicking a
// category label from the Full state narrows to exactly that label.
// From a Partial state it toggles membership, except that removing the
// last active category resets to Full rather than leaving an empty
// selection. Labels outside the universe are ignored.
func (s Selection) Toggle(label string) Selection {
	if label == EventsOnly {
		next := s.clone()
		next.eventsOnly = !s.eventsOnly
		return next
	}
	if !contains(s.universe, label) {
		return s
	}

	if s.IsFull() {
		next := s.clone()
		next.active = map[string]struct{}{label: {}}
		return next
	}

	if _, on := s.active[label]; on {
		if len(s.active) == 1 {
			full := Full(s.universe)
			full.eventsOnly = s.eventsOnly
			return full
		}
		next := s.clone()
		delete(next.active, label)
		return next
	}

	next := s.clone()
	next.active[label] = struct{}{}
	return next
}

// Rebase adapts the selection to a recomputed category universe. Any
// universe change resets the category selection to Full over the new
// universe; the events-only flag survives. An unchanged universe returns
// the selection as is.
func (s Selection) Rebase(universe []string) Selection {
	u := normalize(universe)
	if sameSet(s.universe, u) {
		return s
	}
	next := Full(u)
	next.eventsOnly = s.eventsOnly
	return next
}

func (s Selection) clone() Selection {
	active := make(map[string]struct{}, len(s.active))
	for label := range s.active {
		active[label] = struct{}{}
	}
	return Selection{
		universe:   s.universe,
		active:     active,
		eventsOnly: s.eventsOnly,
	}
}

func normalize(universe []string) []string {
	seen := make(map[string]struct{}, len(universe))
	out := make([]string, 0, len(universe))
	for _, label := range universe {
		if label == "" || label == EventsOnly {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

func contains(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
