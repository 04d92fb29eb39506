package encounter

import (
	"time"

	"github.com/KirkDiggler/combat-api/internal/combat"
	"github.com/KirkDiggler/combat-api/internal/combat/initiative"
	"github.com/KirkDiggler/combat-api/internal/entities/dnd5e"
)

// CreateEncounterInput defines the request for creating an encounter
type CreateEncounterInput struct {
	// TTL bounds how long an abandoned encounter is retained; zero uses
	// the repository default.
	TTL time.Duration
}

// CreateEncounterOutput defines the response for creating an encounter
type CreateEncounterOutput struct {
	EncounterID string
	State       combat.State
}

// AddCharacterInput defines the request for adding a player character
type AddCharacterInput struct {
	EncounterID string
	Config      *dnd5e.CharacterConfig
	// ForcedInitiative skips the initiative roll when non-nil.
	ForcedInitiative *int
}

// AddCharacterOutput defines the response for adding a player character
type AddCharacterOutput struct {
	CharacterID string
	Initiative  int
}

// AddMonsterInput defines the request for adding a monster from the stat
// block library. A custom Config takes precedence over StatBlock.
type AddMonsterInput struct {
	EncounterID string
	StatBlock   string
	Config      *dnd5e.MonsterConfig
	// ForcedInitiative skips the initiative roll when non-nil.
	ForcedInitiative *int
}

// AddMonsterOutput defines the response for adding a monster
type AddMonsterOutput struct {
	MonsterID  string
	Name       string
	Initiative int
}

// StartEncounterInput defines the request for starting combat
type StartEncounterInput struct {
	EncounterID string
}

// StartEncounterOutput defines the response for starting combat
type StartEncounterOutput struct {
	State combat.State
	// FirstCombatantID is the combatant whose turn begins the encounter.
	FirstCombatantID string
}

// NextTurnInput defines the request for advancing the turn
type NextTurnInput struct {
	EncounterID string
}

// NextTurnOutput defines the response for advancing the turn
type NextTurnOutput struct {
	State combat.State
	Round int
	// CombatantID is empty when combat has ended.
	CombatantID string
}

// GetEncounterInput defines the request for reading encounter state
type GetEncounterInput struct {
	EncounterID string
}

// GetEncounterOutput defines the response for reading encounter state
type GetEncounterOutput struct {
	State            combat.State
	Round            int
	TurnNumber       int
	CurrentCombatant string
	TurnOrder        []initiative.Entry
	CombatLog        []string
}

// AttackInput defines the request for a weapon attack
type AttackInput struct {
	EncounterID string
	AttackerID  string
	TargetID    string
	Weapon      string
}

// CastSpellInput defines the request for casting a spell
type CastSpellInput struct {
	EncounterID string
	CasterID    string
	SpellName   string
	TargetID    string
	// SlotLevel 0 casts at the spell's own level.
	SlotLevel int
}

// DodgeInput defines the request for the Dodge action
type DodgeInput struct {
	EncounterID string
	CombatantID string
}

// DashInput defines the request for the Dash action
type DashInput struct {
	EncounterID string
	CombatantID string
	BonusAction bool
}

// DisengageInput defines the request for the Disengage action
type DisengageInput struct {
	EncounterID string
	CombatantID string
	BonusAction bool
}

// HelpInput defines the request for the Help action
type HelpInput struct {
	EncounterID string
	HelperID    string
	TargetID    string
}

// HideInput defines the request for the Hide action
type HideInput struct {
	EncounterID string
	CombatantID string
}

// DeathSaveInput defines the request for rolling a death saving throw
type DeathSaveInput struct {
	EncounterID string
	CombatantID string
}

// BreakConcentrationInput defines the request for dropping concentration
type BreakConcentrationInput struct {
	EncounterID string
	CombatantID string
}

// ActionOutput is the shared response for combat actions
type ActionOutput struct {
	Result *combat.ActionResult
	State  combat.State
}

// EndEncounterInput defines the request for ending combat early
type EndEncounterInput struct {
	EncounterID string
	Reason      string
}

// EndEncounterOutput defines the response for ending combat
type EndEncounterOutput struct {
	State combat.State
}

// GetAvailableActionsInput defines the request for listing available actions
type GetAvailableActionsInput struct {
	EncounterID string
	CombatantID string
}

// GetAvailableActionsOutput defines the response for listing available actions
type GetAvailableActionsOutput struct {
	Actions []combat.ActionDescriptor
}

// TargetInfo summarizes a targetable combatant
type TargetInfo struct {
	EntityID  string
	Name      string
	CurrentHP int
	MaxHP     int
}

// GetValidTargetsInput defines the request for listing valid targets
type GetValidTargetsInput struct {
	EncounterID string
	CombatantID string
	// Friendly selects same-side targets instead of hostile ones.
	Friendly bool
}

// GetValidTargetsOutput defines the response for listing valid targets
type GetValidTargetsOutput struct {
	Targets []TargetInfo
}

// SaveEncounterInput defines the request for persisting a snapshot
type SaveEncounterInput struct {
	EncounterID string
}

// SaveEncounterOutput defines the response for persisting a snapshot
type SaveEncounterOutput struct {
	Success bool
}

// LoadEncounterInput defines the request for reloading the persisted
// snapshot over the live session
type LoadEncounterInput struct {
	EncounterID string
}

// LoadEncounterOutput defines the response for reloading a snapshot
type LoadEncounterOutput struct {
	State combat.State
}

// DeleteEncounterInput defines the request for removing an encounter
type DeleteEncounterInput struct {
	EncounterID string
}

// DeleteEncounterOutput defines the response for removing an encounter
type DeleteEncounterOutput struct {
	Success bool
}
