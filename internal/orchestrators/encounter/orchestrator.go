// Package encounter implements the encounter orchestrator: it owns the live
// combat resolvers, creates the entities they fight with, and writes
// snapshots through to the repository after every mutation.
package encounter

//go:generate mockgen -destination=mock/mock_service.go -package=encountermock github.com/KirkDiggler/combat-api/internal/orchestrators/encounter Service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/KirkDiggler/combat-api/internal/combat"
	"github.com/KirkDiggler/combat-api/internal/entities"
	"github.com/KirkDiggler/combat-api/internal/entities/dnd5e"
	"github.com/KirkDiggler/combat-api/internal/errors"
	"github.com/KirkDiggler/combat-api/internal/pkg/idgen"
	"github.com/KirkDiggler/combat-api/internal/pkg/roll"
	"github.com/KirkDiggler/combat-api/internal/repositories/encounters"
)

// Service defines the interface for encounter operations
type Service interface {
	// Lifecycle
	CreateEncounter(ctx context.Context, input *CreateEncounterInput) (*CreateEncounterOutput, error)
	AddCharacter(ctx context.Context, input *AddCharacterInput) (*AddCharacterOutput, error)
	AddMonster(ctx context.Context, input *AddMonsterInput) (*AddMonsterOutput, error)
	StartEncounter(ctx context.Context, input *StartEncounterInput) (*StartEncounterOutput, error)
	NextTurn(ctx context.Context, input *NextTurnInput) (*NextTurnOutput, error)
	EndEncounter(ctx context.Context, input *EndEncounterInput) (*EndEncounterOutput, error)
	DeleteEncounter(ctx context.Context, input *DeleteEncounterInput) (*DeleteEncounterOutput, error)

	// Actions
	Attack(ctx context.Context, input *AttackInput) (*ActionOutput, error)
	CastSpell(ctx context.Context, input *CastSpellInput) (*ActionOutput, error)
	Dodge(ctx context.Context, input *DodgeInput) (*ActionOutput, error)
	Dash(ctx context.Context, input *DashInput) (*ActionOutput, error)
	Disengage(ctx context.Context, input *DisengageInput) (*ActionOutput, error)
	Help(ctx context.Context, input *HelpInput) (*ActionOutput, error)
	Hide(ctx context.Context, input *HideInput) (*ActionOutput, error)
	DeathSave(ctx context.Context, input *DeathSaveInput) (*ActionOutput, error)
	BreakConcentration(ctx context.Context, input *BreakConcentrationInput) (*ActionOutput, error)

	// Queries
	GetEncounter(ctx context.Context, input *GetEncounterInput) (*GetEncounterOutput, error)
	GetAvailableActions(ctx context.Context, input *GetAvailableActionsInput) (*GetAvailableActionsOutput, error)
	GetValidTargets(ctx context.Context, input *GetValidTargetsInput) (*GetValidTargetsOutput, error)

	// Persistence
	SaveEncounter(ctx context.Context, input *SaveEncounterInput) (*SaveEncounterOutput, error)
	LoadEncounter(ctx context.Context, input *LoadEncounterInput) (*LoadEncounterOutput, error)
}

// Config holds the dependencies for the encounter orchestrator
type Config struct {
	Repository  encounters.Repository
	IDGenerator idgen.Generator
	// Roller is optional; nil uses the default dice source.
	Roller *roll.Roller
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Repository == nil {
		vb.RequiredField("Repository")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

// session pairs a live resolver with the entities it was built from.
type session struct {
	encounter *combat.Encounter
	entities  map[string]entities.CombatEntity
}

type orchestrator struct {
	repo   encounters.Repository
	idGen  idgen.Generator
	roller *roll.Roller

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewOrchestrator creates a new encounter orchestrator with the provided
// dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	roller := cfg.Roller
	if roller == nil {
		roller = roll.New(nil)
	}

	return &orchestrator{
		repo:     cfg.Repository,
		idGen:    cfg.IDGenerator,
		roller:   roller,
		sessions: make(map[string]*session),
	}, nil
}

// CreateEncounter creates an empty encounter and persists its initial
// snapshot.
func (o *orchestrator) CreateEncounter(ctx context.Context, input *CreateEncounterInput) (*CreateEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	encounterID := o.idGen.Generate()
	sess := &session{
		encounter: combat.NewEncounter(o.roller),
		entities:  make(map[string]entities.CombatEntity),
	}

	o.mu.Lock()
	o.sessions[encounterID] = sess
	o.mu.Unlock()

	_, err := o.repo.Save(ctx, &encounters.SaveInput{
		EncounterID: encounterID,
		Snapshot:    sess.encounter.ToData(),
		TTL:         input.TTL,
	})
	if err != nil {
		o.mu.Lock()
		delete(o.sessions, encounterID)
		o.mu.Unlock()
		return nil, errors.Wrap(err, "failed to persist new encounter")
	}

	slog.Info("Encounter created", "encounter_id", encounterID)
	return &CreateEncounterOutput{
		EncounterID: encounterID,
		State:       sess.encounter.State(),
	}, nil
}

// AddCharacter builds a player character from the config and registers it.
func (o *orchestrator) AddCharacter(ctx context.Context, input *AddCharacterInput) (*AddCharacterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Config == nil {
		return nil, errors.InvalidArgument("character config is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	sess, err := o.session(input.EncounterID)
	if err != nil {
		return nil, err
	}

	cfg := *input.Config
	if cfg.ID == "" {
		cfg.ID = o.idGen.Generate()
	}

	character, err := dnd5e.NewCharacter(&cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create character")
	}

	rolled, err := sess.encounter.AddCombatant(character, true, input.ForcedInitiative)
	if err != nil {
		return nil, err
	}
	sess.entities[character.GetID()] = character

	o.persist(ctx, input.EncounterID, sess)
	slog.Info("Character added to encounter",
		"encounter_id", input.EncounterID,
		"character_id", character.GetID(),
		"initiative", rolled,
	)
	return &AddCharacterOutput{
		CharacterID: character.GetID(),
		Initiative:  rolled,
	}, nil
}

// AddMonster registers a monster built from a custom config or the stat
// block library.
func (o *orchestrator) AddMonster(ctx context.Context, input *AddMonsterInput) (*AddMonsterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Config == nil && input.StatBlock == "" {
		return nil, errors.InvalidArgument("stat block or config is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	sess, err := o.session(input.EncounterID)
	if err != nil {
		return nil, err
	}

	var monster *dnd5e.Monster
	if input.Config != nil {
		cfg := *input.Config
		if cfg.ID == "" {
			cfg.ID = o.idGen.Generate()
		}
		monster, err = dnd5e.NewMonster(&cfg)
	} else {
		monster, err = dnd5e.NewMonsterFromStatBlock(input.StatBlock, o.idGen.Generate())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create monster")
	}

	rolled, err := sess.encounter.AddCombatant(monster, false, input.ForcedInitiative)
	if err != nil {
		return nil, err
	}
	sess.entities[monster.GetID()] = monster

	o.persist(ctx, input.EncounterID, sess)
	slog.Info("Monster added to encounter",
		"encounter_id", input.EncounterID,
		"monster_id", monster.GetID(),
		"name", monster.Name(),
		"initiative", rolled,
	)
	return &AddMonsterOutput{
		MonsterID:  monster.GetID(),
		Name:       monster.Name(),
		Initiative: rolled,
	}, nil
}

// StartEncounter transitions the encounter to IN_PROGRESS.
func (o *orchestrator) StartEncounter(ctx context.Context, input *StartEncounterInput) (*StartEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	sess, err := o.session(input.EncounterID)
	if err != nil {
		return nil, err
	}

	if err := sess.encounter.Start(); err != nil {
		return nil, err
	}

	firstID := ""
	if current := sess.encounter.Current(); current != nil {
		firstID = current.EntityID
	}

	o.persist(ctx, input.EncounterID, sess)
	slog.Info("Encounter started",
		"encounter_id", input.EncounterID,
		"first_combatant", firstID,
	)
	return &StartEncounterOutput{
		State:            sess.encounter.State(),
		FirstCombatantID: firstID,
	}, nil
}

// NextTurn advances the encounter to the next combatant.
func (o *orchestrator) NextTurn(ctx context.Context, input *NextTurnInput) (*NextTurnOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	sess, err := o.session(input.EncounterID)
	if err != nil {
		return nil, err
	}

	out := &NextTurnOutput{}
	if next := sess.encounter.NextTurn(); next != nil {
		out.CombatantID = next.EntityID
	}
	out.State = sess.encounter.State()
	out.Round = sess.encounter.Round()

	o.persist(ctx, input.EncounterID, sess)
	return out, nil
}

// EndEncounter forces the encounter to a terminal state.
func (o *orchestrator) EndEncounter(ctx context.Context, input *EndEncounterInput) (*EndEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	sess, err := o.session(input.EncounterID)
	if err != nil {
		return nil, err
	}

	sess.encounter.End(input.Reason)
	o.persist(ctx, input.EncounterID, sess)
	slog.Info("Encounter ended",
		"encounter_id", input.EncounterID,
		"state", sess.encounter.State(),
	)
	return &EndEncounterOutput{State: sess.encounter.State()}, nil
}

// DeleteEncounter drops the live session and its stored snapshot.
func (o *orchestrator) DeleteEncounter(ctx context.Context, input *DeleteEncounterInput) (*DeleteEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.Lock()
	_, exists := o.sessions[input.EncounterID]
	delete(o.sessions, input.EncounterID)
	o.mu.Unlock()

	_, err := o.repo.Delete(ctx, &encounters.DeleteInput{EncounterID: input.EncounterID})
	if err != nil && !errors.IsNotFound(err) {
		return nil, err
	}
	if !exists && errors.IsNotFound(err) {
		return nil, errors.NotFoundf("encounter %s not found", input.EncounterID)
	}

	slog.Info("Encounter deleted", "encounter_id", input.EncounterID)
	return &DeleteEncounterOutput{Success: true}, nil
}

// Attack resolves a weapon attack.
func (o *orchestrator) Attack(ctx context.Context, input *AttackInput) (*ActionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.runAction(ctx, input.EncounterID, func(e *combat.Encounter) *combat.ActionResult {
		return e.Attack(input.AttackerID, input.TargetID, input.Weapon)
	})
}

// CastSpell resolves a spell cast.
func (o *orchestrator) CastSpell(ctx context.Context, input *CastSpellInput) (*ActionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.runAction(ctx, input.EncounterID, func(e *combat.Encounter) *combat.ActionResult {
		return e.CastSpell(input.CasterID, input.SpellName, input.TargetID, input.SlotLevel)
	})
}

// Dodge resolves the Dodge action.
func (o *orchestrator) Dodge(ctx context.Context, input *DodgeInput) (*ActionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.runAction(ctx, input.EncounterID, func(e *combat.Encounter) *combat.ActionResult {
		return e.Dodge(input.CombatantID)
	})
}

// Dash resolves the Dash action.
func (o *orchestrator) Dash(ctx context.Context, input *DashInput) (*ActionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.runAction(ctx, input.EncounterID, func(e *combat.Encounter) *combat.ActionResult {
		return e.Dash(input.CombatantID, input.BonusAction)
	})
}

// Disengage resolves the Disengage action.
func (o *orchestrator) Disengage(ctx context.Context, input *DisengageInput) (*ActionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.runAction(ctx, input.EncounterID, func(e *combat.Encounter) *combat.ActionResult {
		return e.Disengage(input.CombatantID, input.BonusAction)
	})
}

// Help resolves the Help action.
func (o *orchestrator) Help(ctx context.Context, input *HelpInput) (*ActionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.runAction(ctx, input.EncounterID, func(e *combat.Encounter) *combat.ActionResult {
		return e.Help(input.HelperID, input.TargetID)
	})
}

// Hide resolves the Hide action.
func (o *orchestrator) Hide(ctx context.Context, input *HideInput) (*ActionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.runAction(ctx, input.EncounterID, func(e *combat.Encounter) *combat.ActionResult {
		return e.Hide(input.CombatantID)
	})
}

// DeathSave rolls a death saving throw for an unconscious combatant.
func (o *orchestrator) DeathSave(ctx context.Context, input *DeathSaveInput) (*ActionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.runAction(ctx, input.EncounterID, func(e *combat.Encounter) *combat.ActionResult {
		return e.DeathSave(input.CombatantID)
	})
}

// BreakConcentration drops a caster's concentration.
func (o *orchestrator) BreakConcentration(ctx context.Context, input *BreakConcentrationInput) (*ActionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.runAction(ctx, input.EncounterID, func(e *combat.Encounter) *combat.ActionResult {
		return e.BreakConcentration(input.CombatantID)
	})
}

// runAction executes a combat action under the session lock and writes the
// snapshot through.
func (o *orchestrator) runAction(ctx context.Context, encounterID string, action func(*combat.Encounter) *combat.ActionResult) (*ActionOutput, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	sess, err := o.session(encounterID)
	if err != nil {
		return nil, err
	}

	result := action(sess.encounter)
	o.persist(ctx, encounterID, sess)

	return &ActionOutput{
		Result: result,
		State:  sess.encounter.State(),
	}, nil
}

// GetEncounter returns a read-only view of the encounter.
func (o *orchestrator) GetEncounter(_ context.Context, input *GetEncounterInput) (*GetEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	sess, err := o.session(input.EncounterID)
	if err != nil {
		return nil, err
	}

	currentID := ""
	if current := sess.encounter.Current(); current != nil {
		currentID = current.EntityID
	}

	return &GetEncounterOutput{
		State:            sess.encounter.State(),
		Round:            sess.encounter.Round(),
		TurnNumber:       sess.encounter.TurnNumber(),
		CurrentCombatant: currentID,
		TurnOrder:        sess.encounter.TurnOrder(),
		CombatLog:        sess.encounter.Log(),
	}, nil
}

// GetAvailableActions lists what the combatant's remaining budget allows.
func (o *orchestrator) GetAvailableActions(_ context.Context, input *GetAvailableActionsInput) (*GetAvailableActionsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	sess, err := o.session(input.EncounterID)
	if err != nil {
		return nil, err
	}
	if sess.encounter.Combatant(input.CombatantID) == nil {
		return nil, errors.NotFoundf("combatant %s not found", input.CombatantID)
	}

	return &GetAvailableActionsOutput{
		Actions: sess.encounter.AvailableActions(input.CombatantID),
	}, nil
}

// GetValidTargets lists targetable combatants for the given side.
func (o *orchestrator) GetValidTargets(_ context.Context, input *GetValidTargetsInput) (*GetValidTargetsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	sess, err := o.session(input.EncounterID)
	if err != nil {
		return nil, err
	}
	if sess.encounter.Combatant(input.CombatantID) == nil {
		return nil, errors.NotFoundf("combatant %s not found", input.CombatantID)
	}

	targets := sess.encounter.ValidTargets(input.CombatantID, input.Friendly)
	out := &GetValidTargetsOutput{Targets: make([]TargetInfo, 0, len(targets))}
	for _, t := range targets {
		out.Targets = append(out.Targets, TargetInfo{
			EntityID:  t.EntityID,
			Name:      t.Name(),
			CurrentHP: t.Entity.CurrentHP(),
			MaxHP:     t.Entity.MaxHP(),
		})
	}
	return out, nil
}

// SaveEncounter explicitly persists the current snapshot.
func (o *orchestrator) SaveEncounter(ctx context.Context, input *SaveEncounterInput) (*SaveEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	sess, err := o.session(input.EncounterID)
	if err != nil {
		return nil, err
	}

	_, err = o.repo.Update(ctx, &encounters.UpdateInput{
		EncounterID: input.EncounterID,
		Snapshot:    sess.encounter.ToData(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to persist encounter")
	}
	return &SaveEncounterOutput{Success: true}, nil
}

// LoadEncounter replaces the live resolver with the persisted snapshot,
// reattaching the session's entities. Entity state itself is owned by the
// entities and is not rewound.
func (o *orchestrator) LoadEncounter(ctx context.Context, input *LoadEncounterInput) (*LoadEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	sess, err := o.session(input.EncounterID)
	if err != nil {
		return nil, err
	}

	stored, err := o.repo.Get(ctx, &encounters.GetInput{EncounterID: input.EncounterID})
	if err != nil {
		return nil, err
	}

	restored, err := combat.Restore(stored.Record.Snapshot, sess.entities, o.roller)
	if err != nil {
		return nil, errors.Wrap(err, "failed to restore encounter")
	}
	sess.encounter = restored

	slog.Info("Encounter loaded from snapshot",
		"encounter_id", input.EncounterID,
		"state", restored.State(),
	)
	return &LoadEncounterOutput{State: restored.State()}, nil
}

// session looks up a live session. Callers must hold the lock.
func (o *orchestrator) session(encounterID string) (*session, error) {
	if encounterID == "" {
		return nil, errors.InvalidArgument("encounter ID is required")
	}
	sess, exists := o.sessions[encounterID]
	if !exists {
		return nil, errors.NotFoundf("encounter %s not found", encounterID)
	}
	return sess, nil
}

// persist writes the snapshot through to the repository. Persistence
// failures are logged rather than surfaced: the in-memory session already
// holds the authoritative state.
func (o *orchestrator) persist(ctx context.Context, encounterID string, sess *session) {
	_, err := o.repo.Update(ctx, &encounters.UpdateInput{
		EncounterID: encounterID,
		Snapshot:    sess.encounter.ToData(),
	})
	if err != nil {
		slog.Warn("Failed to persist encounter snapshot",
			"encounter_id", encounterID,
			"error", err,
		)
	}
}
