package filter

import (
	"testing"

	. "gopkg.in/check.v1"
)

// Hook up gocheck into the "go test" runner.
func Test(t *testing.T) { TestingT(t) }

type SelectionSuite struct {
	universe []string
}

var _ = Suite(&SelectionSuite{})

func (s *SelectionSuite) SetUpSuite(c *C) {
	s.universe = []string{"Coffee Shop", "Library", "Coworking", "Park"}
}

func (s *SelectionSuite) TestFullIsRestState(c *C) {
	sel := Full(s.universe)
	c.Assert(sel.IsFull(), Equals, true)
	c.Assert(sel.EventsOnlyActive(), Equals, false)
	c.Assert(sel.ActiveLabels(), DeepEquals, []string{"Coffee Shop", "Coworking", "Library", "Park"})
}

func (s *SelectionSuite) TestFirstClickNarrowsToOne(c *C) {
	sel := Full(s.universe).Toggle("Library")
	c.Assert(sel.IsFull(), Equals, false)
	c.Assert(sel.ActiveLabels(), DeepEquals, []string{"Library"})
}

func (s *SelectionSuite) TestRoundTripReturnsToFull(c *C) {
	// Full -> click L -> click L again -> Full, for every L
	for _, label := range s.universe {
		sel := Full(s.universe).Toggle(label).Toggle(label)
		c.Assert(sel.IsFull(), Equals, true)
	}
}

func (s *SelectionSuite) TestPartialToggleAddsAndRemoves(c *C) {
	sel := Full(s.universe).Toggle("Library").Toggle("Park")
	c.Assert(sel.ActiveLabels(), DeepEquals, []string{"Library", "Park"})

	sel = sel.Toggle("Park")
	c.Assert(sel.ActiveLabels(), DeepEquals, []string{"Library"})
}

func (s *SelectionSuite) TestNeverEmptyAfterAnySequence(c *C) {
	clicks := []string{"Library", "Park", "Library", "Park", "Coffee Shop", "Coffee Shop", "Coworking", "Coworking"}
	sel := Full(s.universe)
	for _, label := range clicks {
		sel = sel.Toggle(label)
		active := 0
		for _, l := range sel.ActiveLabels() {
			if l != EventsOnly {
				active++
			}
		}
		c.Assert(active > 0, Equals, true)
	}
}

func (s *SelectionSuite) TestEventsOnlyTogglesIndependently(c *C) {
	sel := Full(s.universe).Toggle(EventsOnly)
	c.Assert(sel.EventsOnlyActive(), Equals, true)
	c.Assert(sel.IsFull(), Equals, true)

	// Category transitions preserve the events-only flag
	sel = sel.Toggle("Library")
	c.Assert(sel.EventsOnlyActive(), Equals, true)
	c.Assert(sel.ActiveLabels(), DeepEquals, []string{"Library", EventsOnly})

	// Collapsing back to Full preserves it too
	sel = sel.Toggle("Library")
	c.Assert(sel.IsFull(), Equals, true)
	c.Assert(sel.EventsOnlyActive(), Equals, true)

	sel = sel.Toggle(EventsOnly)
	c.Assert(sel.EventsOnlyActive(), Equals, false)
}

func (s *SelectionSuite) TestUnknownLabelIgnored(c *C) {
	sel := Full(s.universe).Toggle("Velodrome")
	c.Assert(sel.IsFull(), Equals, true)
}

func (s *SelectionSuite) TestTransitionsDoNotMutateInputs(c *C) {
	full := Full(s.universe)
	_ = full.Toggle("Library")
	c.Assert(full.IsFull(), Equals, true)
	c.Assert(full.Has("Park"), Equals, true)
}

func (s *SelectionSuite) TestRebaseUnchangedUniverseKeepsSelection(c *C) {
	sel := Full(s.universe).Toggle("Library")
	rebased := sel.Rebase([]string{"Park", "Coworking", "Library", "Coffee Shop"})
	c.Assert(rebased.ActiveLabels(), DeepEquals, []string{"Library"})
}

func (s *SelectionSuite) TestRebaseNewUniverseResetsToFull(c *C) {
	sel := Full(s.universe).Toggle("Library").Toggle(EventsOnly)
	rebased := sel.Rebase([]string{"Coffee Shop", "Gallery"})
	c.Assert(rebased.IsFull(), Equals, true)
	c.Assert(rebased.Universe(), DeepEquals, []string{"Coffee Shop", "Gallery"})
	// events-only survives the universe change
	c.Assert(rebased.EventsOnlyActive(), Equals, true)
}

func (s *SelectionSuite) TestWithActive(c *C) {
	sel := WithActive(s.universe, []string{"Library", EventsOnly, "Velodrome"})
	c.Assert(sel.ActiveLabels(), DeepEquals, []string{"Library", EventsOnly})

	// Nothing surviving falls back to Full
	sel = WithActive(s.universe, []string{"Velodrome"})
	c.Assert(sel.IsFull(), Equals, true)
}
