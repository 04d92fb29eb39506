package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/combat-api/internal/combat"
	"github.com/KirkDiggler/combat-api/internal/entities/dnd5e"
	"github.com/KirkDiggler/combat-api/internal/orchestrators/encounter"
	"github.com/KirkDiggler/combat-api/internal/pkg/idgen"
	"github.com/KirkDiggler/combat-api/internal/pkg/roll"
	"github.com/KirkDiggler/combat-api/internal/repositories/encounters"
)

// scriptedRoller pops queued rolls in order; exhausted scripts return 1.
type scriptedRoller struct {
	rolls []int
}

func (s *scriptedRoller) Roll(_ int) (int, error) {
	if len(s.rolls) == 0 {
		return 1, nil
	}
	value := s.rolls[0]
	s.rolls = s.rolls[1:]
	return value, nil
}

func (s *scriptedRoller) RollN(count, size int) ([]int, error) {
	results := make([]int, count)
	for i := range results {
		value, err := s.Roll(size)
		if err != nil {
			return nil, err
		}
		results[i] = value
	}
	return results, nil
}

// fakeClock returns a fixed time, advanced manually by tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func forced(v int) *int { return &v }

func newTestService(t *testing.T, dice *scriptedRoller) encounter.Service {
	t.Helper()
	service, err := encounter.NewOrchestrator(&encounter.Config{
		Repository:  encounters.NewInMemory(nil),
		IDGenerator: idgen.NewSequential("enc"),
		Roller:      roll.New(dice),
	})
	require.NoError(t, err)
	return service
}

func fighterConfig(id string) *dnd5e.CharacterConfig {
	return &dnd5e.CharacterConfig{
		ID:    id,
		Name:  "Bruenor",
		Class: "Fighter",
		Level: 5,
		Abilities: dnd5e.AbilityScores{
			Strength: 16, Dexterity: 14, Constitution: 15,
			Intelligence: 10, Wisdom: 12, Charisma: 8,
		},
		MaxHP:      44,
		ArmorClass: 18,
		Speed:      30,
	}
}

// createDuel builds a started fighter-vs-goblin encounter through the
// service and returns its ID.
func createDuel(t *testing.T, ctx context.Context, service encounter.Service) (encounterID, fighterID, goblinID string) {
	t.Helper()

	created, err := service.CreateEncounter(ctx, &encounter.CreateEncounterInput{})
	require.NoError(t, err)
	encounterID = created.EncounterID

	charOut, err := service.AddCharacter(ctx, &encounter.AddCharacterInput{
		EncounterID:      encounterID,
		Config:           fighterConfig("pc-1"),
		ForcedInitiative: forced(20),
	})
	require.NoError(t, err)
	fighterID = charOut.CharacterID

	monOut, err := service.AddMonster(ctx, &encounter.AddMonsterInput{
		EncounterID:      encounterID,
		StatBlock:        "goblin",
		ForcedInitiative: forced(10),
	})
	require.NoError(t, err)
	goblinID = monOut.MonsterID

	_, err = service.StartEncounter(ctx, &encounter.StartEncounterInput{EncounterID: encounterID})
	require.NoError(t, err)
	return encounterID, fighterID, goblinID
}

type HostTestSuite struct {
	suite.Suite

	ctx     context.Context
	dice    *scriptedRoller
	clock   *fakeClock
	service encounter.Service
	hub     *Hub
}

func (s *HostTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.dice = &scriptedRoller{}
	s.clock = &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	s.service = newTestService(s.T(), s.dice)
	s.hub = NewHub()
}

func (s *HostTestSuite) newHost(encounterID string) *Host {
	host, err := NewHost(&HostConfig{
		EncounterID: encounterID,
		Service:     s.service,
		Hub:         s.hub,
		Clock:       s.clock,
		TurnTimeout: time.Minute,
	})
	s.Require().NoError(err)
	return host
}

func (s *HostTestSuite) TestConfigValidation() {
	_, err := NewHost(&HostConfig{Service: s.service, Hub: s.hub})
	s.Error(err, "encounter ID is required")

	_, err = NewHost(&HostConfig{EncounterID: "enc_1", Hub: s.hub})
	s.Error(err, "service is required")
}

func (s *HostTestSuite) TestExecuteRunsIntentsOnLoop() {
	encounterID, fighterID, _ := createDuel(s.T(), s.ctx, s.service)
	host := s.newHost(encounterID)

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	go host.Run(ctx)

	var out *encounter.ActionOutput
	ran := host.Execute(func() {
		var err error
		out, err = s.service.Dodge(s.ctx, &encounter.DodgeInput{
			EncounterID: encounterID,
			CombatantID: fighterID,
		})
		s.Require().NoError(err)
	})
	s.True(ran)
	s.True(out.Result.Success)
}

func (s *HostTestSuite) TestExecuteReturnsAfterLoopStops() {
	encounterID, _, _ := createDuel(s.T(), s.ctx, s.service)
	host := s.newHost(encounterID)

	ctx, cancel := context.WithCancel(s.ctx)
	go host.Run(ctx)
	cancel()
	<-host.done

	called := false
	ran := host.Execute(func() { called = true })
	s.False(ran)
	s.False(called)
}

func (s *HostTestSuite) TestTurnTimeoutForcesAdvance() {
	encounterID, fighterID, goblinID := createDuel(s.T(), s.ctx, s.service)
	host := s.newHost(encounterID)
	host.currentCombatant = fighterID
	host.resetDeadline()

	// Before the deadline nothing happens.
	host.checkTimeout(s.ctx)
	state, err := s.service.GetEncounter(s.ctx, &encounter.GetEncounterInput{EncounterID: encounterID})
	s.Require().NoError(err)
	s.Equal(fighterID, state.CurrentCombatant)

	// Past the deadline the stalled turn is forced forward.
	s.clock.now = s.clock.now.Add(2 * time.Minute)
	host.checkTimeout(s.ctx)

	state, err = s.service.GetEncounter(s.ctx, &encounter.GetEncounterInput{EncounterID: encounterID})
	s.Require().NoError(err)
	s.Equal(goblinID, state.CurrentCombatant)
	s.Equal(goblinID, host.currentCombatant)
}

func (s *HostTestSuite) TestTimeoutIgnoredWhenCombatOver() {
	encounterID, _, _ := createDuel(s.T(), s.ctx, s.service)
	_, err := s.service.EndEncounter(s.ctx, &encounter.EndEncounterInput{
		EncounterID: encounterID,
		Reason:      "called on account of rain",
	})
	s.Require().NoError(err)

	host := s.newHost(encounterID)
	host.resetDeadline()
	s.clock.now = s.clock.now.Add(time.Hour)
	host.checkTimeout(s.ctx)

	state, err := s.service.GetEncounter(s.ctx, &encounter.GetEncounterInput{EncounterID: encounterID})
	s.Require().NoError(err)
	s.Equal(combat.StateFled, state.State)
}

func (s *HostTestSuite) TestObserveTurnResetsDeadline() {
	encounterID, fighterID, goblinID := createDuel(s.T(), s.ctx, s.service)
	host := s.newHost(encounterID)
	host.currentCombatant = fighterID
	host.resetDeadline()
	before := host.turnDeadline

	_, err := s.service.NextTurn(s.ctx, &encounter.NextTurnInput{EncounterID: encounterID})
	s.Require().NoError(err)

	s.clock.now = s.clock.now.Add(30 * time.Second)
	host.observeTurn()
	s.Equal(goblinID, host.currentCombatant)
	s.True(host.turnDeadline.After(before))
}

func TestHostTestSuite(t *testing.T) {
	suite.Run(t, new(HostTestSuite))
}
