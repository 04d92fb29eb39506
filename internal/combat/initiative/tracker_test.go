package initiative_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/combat-api/internal/combat/initiative"
)

func forced(v int) *int { return &v }

type TrackerTestSuite struct {
	suite.Suite

	tracker *initiative.Tracker
}

func (s *TrackerTestSuite) SetupTest() {
	s.tracker = initiative.NewTracker(nil)
}

func (s *TrackerTestSuite) add(name string, init, dexMod int) {
	_, err := s.tracker.Add(name, name, dexMod, true, forced(init))
	s.Require().NoError(err)
}

func (s *TrackerTestSuite) orderIDs() []string {
	order := s.tracker.Order()
	ids := make([]string, len(order))
	for i, entry := range order {
		ids[i] = entry.EntityID
	}
	return ids
}

func (s *TrackerTestSuite) TestOrderByInitiativeDescending() {
	s.add("slow", 5, 0)
	s.add("fast", 20, 0)
	s.add("middle", 12, 0)

	s.Equal([]string{"fast", "middle", "slow"}, s.orderIDs())
	s.Equal("fast", s.tracker.Current().EntityID)
}

func (s *TrackerTestSuite) TestDexBreaksTies() {
	s.add("clumsy", 15, 0)
	s.add("nimble", 15, 3)

	s.Equal([]string{"nimble", "clumsy"}, s.orderIDs())
}

func (s *TrackerTestSuite) TestFullTieKeepsInsertionOrder() {
	s.add("first", 15, 2)
	s.add("second", 15, 2)
	s.add("third", 15, 2)

	s.Equal([]string{"first", "second", "third"}, s.orderIDs())
}

func (s *TrackerTestSuite) TestRolledInitiativeInRange() {
	value, err := s.tracker.Add("roller", "roller", 3, true, nil)
	s.Require().NoError(err)
	s.GreaterOrEqual(value, 4)
	s.LessOrEqual(value, 23)
	s.Equal(value, s.tracker.Entry("roller").Initiative)
}

func (s *TrackerTestSuite) TestNextTurnAdvances() {
	s.add("a", 20, 0)
	s.add("b", 10, 0)
	s.add("c", 5, 0)

	s.Equal(1, s.tracker.Round())
	next := s.tracker.NextTurn()
	s.Equal("b", next.EntityID)
	s.True(s.tracker.Entry("a").HasActed)
	s.False(s.tracker.Entry("b").HasActed)
}

func (s *TrackerTestSuite) TestRoundWraparound() {
	s.add("a", 20, 0)
	s.add("b", 10, 0)

	s.tracker.NextTurn()
	next := s.tracker.NextTurn()

	s.Equal("a", next.EntityID)
	s.Equal(2, s.tracker.Round())
	s.False(s.tracker.Entry("a").HasActed, "acted flags clear on wraparound")
	s.False(s.tracker.Entry("b").HasActed)
}

func (s *TrackerTestSuite) TestEmptyTracker() {
	s.Nil(s.tracker.Current())
	s.Nil(s.tracker.NextTurn())
	s.False(s.tracker.IsPlayersTurn())
}

func (s *TrackerTestSuite) TestRemoveBeforeCurrentKeepsPointer() {
	s.add("a", 20, 0)
	s.add("b", 10, 0)
	s.add("c", 5, 0)
	s.tracker.NextTurn() // b's turn

	s.True(s.tracker.Remove("a"))
	s.Equal("b", s.tracker.Current().EntityID)
}

func (s *TrackerTestSuite) TestRemoveAfterCurrentKeepsPointer() {
	s.add("a", 20, 0)
	s.add("b", 10, 0)
	s.add("c", 5, 0)
	s.tracker.NextTurn() // b's turn

	s.True(s.tracker.Remove("c"))
	s.Equal("b", s.tracker.Current().EntityID)
}

func (s *TrackerTestSuite) TestRemoveLastEntryWhileCurrentWraps() {
	s.add("a", 20, 0)
	s.add("b", 10, 0)
	s.tracker.NextTurn() // b's turn, last in order

	s.True(s.tracker.Remove("b"))
	s.Equal("a", s.tracker.Current().EntityID)
}

func (s *TrackerTestSuite) TestRemoveUnknown() {
	s.add("a", 20, 0)
	s.False(s.tracker.Remove("ghost"))
}

func (s *TrackerTestSuite) TestSetInitiativeResorts() {
	s.add("a", 20, 0)
	s.add("b", 10, 0)
	s.add("c", 5, 0)

	s.True(s.tracker.SetInitiative("c", 15))
	s.Equal([]string{"a", "c", "b"}, s.orderIDs())
}

func (s *TrackerTestSuite) TestSetInitiativeKeepsCurrentCombatant() {
	s.add("a", 20, 0)
	s.add("b", 10, 0)
	s.add("c", 5, 0)
	s.tracker.NextTurn() // b's turn

	// b moves below c; the pointer follows b, not the index.
	s.True(s.tracker.SetInitiative("b", 1))
	s.Equal("b", s.tracker.Current().EntityID)
	s.Equal([]string{"a", "c", "b"}, s.orderIDs())
}

func (s *TrackerTestSuite) TestDelayTurnOnlyLowers() {
	s.add("a", 20, 0)
	s.add("b", 10, 0)

	s.False(s.tracker.DelayTurn("b", 15), "raising is not a delay")
	s.False(s.tracker.DelayTurn("b", 10), "equal is not a delay")
	s.True(s.tracker.DelayTurn("b", 3))
	s.Equal(3, s.tracker.Entry("b").Initiative)
}

func (s *TrackerTestSuite) TestReadyAction() {
	s.add("a", 20, 0)
	s.True(s.tracker.ReadyAction("a"))
	s.True(s.tracker.Entry("a").HasActed)
	s.False(s.tracker.ReadyAction("ghost"))
}

func (s *TrackerTestSuite) TestRemaining() {
	s.add("a", 20, 0)
	s.add("b", 10, 0)
	_, err := s.tracker.Add("mon", "mon", 0, false, forced(15))
	s.Require().NoError(err)

	s.tracker.NextTurn() // a acted

	remaining := s.tracker.Remaining(nil)
	s.Len(remaining, 2)

	players := true
	s.Len(s.tracker.Remaining(&players), 1)
	monsters := false
	s.Len(s.tracker.Remaining(&monsters), 1)
}

func (s *TrackerTestSuite) TestReset() {
	s.add("a", 20, 0)
	s.tracker.NextTurn()

	s.tracker.Reset()
	s.Nil(s.tracker.Current())
	s.Equal(1, s.tracker.Round())
}

func (s *TrackerTestSuite) TestDataRoundTrip() {
	s.add("a", 20, 2)
	s.add("b", 10, 1)
	s.tracker.NextTurn()

	data := s.tracker.ToData()
	restored := initiative.FromData(data, nil)

	s.Equal("b", restored.Current().EntityID)
	s.Equal(s.tracker.Round(), restored.Round())
	s.Equal(s.orderIDs(), func() []string {
		order := restored.Order()
		ids := make([]string, len(order))
		for i, entry := range order {
			ids[i] = entry.EntityID
		}
		return ids
	}())
	s.True(restored.Entry("a").HasActed)
}

func TestTrackerTestSuite(t *testing.T) {
	suite.Run(t, new(TrackerTestSuite))
}
