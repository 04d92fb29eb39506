package encounters_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/combat-api/internal/combat"
	"github.com/KirkDiggler/combat-api/internal/errors"
	"github.com/KirkDiggler/combat-api/internal/repositories/encounters"
)

// fakeClock returns a fixed time, advanced manually by tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func testSnapshot(state combat.State) *combat.EncounterData {
	return &combat.EncounterData{
		State:      state,
		Combatants: map[string]*combat.CombatantData{},
		CombatLog:  []string{"=== COMBAT BEGINS ==="},
	}
}

type InMemoryTestSuite struct {
	suite.Suite

	ctx   context.Context
	clock *fakeClock
	repo  *encounters.InMemoryRepository
}

func (s *InMemoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	s.repo = encounters.NewInMemory(s.clock)
}

func (s *InMemoryTestSuite) TestSaveAndGet() {
	snapshot := testSnapshot(combat.StateInProgress)

	saveOut, err := s.repo.Save(s.ctx, &encounters.SaveInput{
		EncounterID: "enc_1",
		Snapshot:    snapshot,
	})
	s.Require().NoError(err)
	s.Equal("enc_1", saveOut.Record.ID)
	s.Equal(s.clock.now, saveOut.Record.CreatedAt)

	getOut, err := s.repo.Get(s.ctx, &encounters.GetInput{EncounterID: "enc_1"})
	s.Require().NoError(err)
	s.Equal(combat.StateInProgress, getOut.Record.Snapshot.State)
}

func (s *InMemoryTestSuite) TestSaveDuplicate() {
	_, err := s.repo.Save(s.ctx, &encounters.SaveInput{
		EncounterID: "enc_1",
		Snapshot:    testSnapshot(combat.StateNotStarted),
	})
	s.Require().NoError(err)

	_, err = s.repo.Save(s.ctx, &encounters.SaveInput{
		EncounterID: "enc_1",
		Snapshot:    testSnapshot(combat.StateNotStarted),
	})
	s.True(errors.IsAlreadyExists(err))
}

func (s *InMemoryTestSuite) TestSaveValidation() {
	_, err := s.repo.Save(s.ctx, nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.Save(s.ctx, &encounters.SaveInput{Snapshot: testSnapshot(combat.StateNotStarted)})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.Save(s.ctx, &encounters.SaveInput{EncounterID: "enc_1"})
	s.True(errors.IsInvalidArgument(err))
}

func (s *InMemoryTestSuite) TestGetMissing() {
	_, err := s.repo.Get(s.ctx, &encounters.GetInput{EncounterID: "nope"})
	s.True(errors.IsNotFound(err))
}

func (s *InMemoryTestSuite) TestUpdate() {
	_, err := s.repo.Save(s.ctx, &encounters.SaveInput{
		EncounterID: "enc_1",
		Snapshot:    testSnapshot(combat.StateInProgress),
	})
	s.Require().NoError(err)

	s.clock.now = s.clock.now.Add(5 * time.Minute)
	updateOut, err := s.repo.Update(s.ctx, &encounters.UpdateInput{
		EncounterID: "enc_1",
		Snapshot:    testSnapshot(combat.StateVictory),
	})
	s.Require().NoError(err)
	s.Equal(combat.StateVictory, updateOut.Record.Snapshot.State)
	s.True(updateOut.Record.UpdatedAt.After(updateOut.Record.CreatedAt))
}

func (s *InMemoryTestSuite) TestUpdateMissing() {
	_, err := s.repo.Update(s.ctx, &encounters.UpdateInput{
		EncounterID: "nope",
		Snapshot:    testSnapshot(combat.StateVictory),
	})
	s.True(errors.IsNotFound(err))
}

func (s *InMemoryTestSuite) TestDelete() {
	_, err := s.repo.Save(s.ctx, &encounters.SaveInput{
		EncounterID: "enc_1",
		Snapshot:    testSnapshot(combat.StateInProgress),
	})
	s.Require().NoError(err)

	deleteOut, err := s.repo.Delete(s.ctx, &encounters.DeleteInput{EncounterID: "enc_1"})
	s.Require().NoError(err)
	s.True(deleteOut.Success)

	_, err = s.repo.Get(s.ctx, &encounters.GetInput{EncounterID: "enc_1"})
	s.True(errors.IsNotFound(err))
}

func (s *InMemoryTestSuite) TestDeleteMissing() {
	_, err := s.repo.Delete(s.ctx, &encounters.DeleteInput{EncounterID: "nope"})
	s.True(errors.IsNotFound(err))
}

func TestInMemoryTestSuite(t *testing.T) {
	suite.Run(t, new(InMemoryTestSuite))
}
