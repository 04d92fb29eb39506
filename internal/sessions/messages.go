// Package sessions hosts multiplayer combat over websockets: a hub fans
// events out to every client watching an encounter, and a per-encounter host
// loop serializes intents so the resolver only ever sees one writer.
package sessions

import (
	"github.com/KirkDiggler/combat-api/internal/entities"
	"github.com/KirkDiggler/combat-api/internal/entities/dnd5e"
)

// Command types accepted from clients.
const (
	CmdCreateEncounter    = "create_encounter"
	CmdJoinEncounter      = "join_encounter"
	CmdAddCharacter       = "add_character"
	CmdAddMonster         = "add_monster"
	CmdStartEncounter     = "start_encounter"
	CmdNextTurn           = "next_turn"
	CmdAttack             = "attack"
	CmdCastSpell          = "cast_spell"
	CmdDodge              = "dodge"
	CmdDash               = "dash"
	CmdDisengage          = "disengage"
	CmdHelp               = "help"
	CmdHide               = "hide"
	CmdDeathSave          = "death_save"
	CmdBreakConcentration = "break_concentration"
	CmdEndEncounter       = "end_encounter"
	CmdGetState           = "get_state"
	CmdAvailableActions   = "available_actions"
	CmdValidTargets       = "valid_targets"
)

// Event types sent to clients.
const (
	EventEncounterCreated = "encounter_created"
	EventEncounterState   = "encounter_state"
	EventCombatantAdded   = "combatant_added"
	EventCombatStarted    = "combat_started"
	EventTurnChanged      = "turn_changed"
	EventActionResult     = "action_result"
	EventCombatEnded      = "combat_ended"
	EventAvailableActions = "available_actions"
	EventValidTargets     = "valid_targets"
	EventError            = "error"
)

// CharacterPayload is the wire form of a player character. Spell fields are
// optional; a character without a casting ability has no spellbook.
type CharacterPayload struct {
	ID             string              `json:"id,omitempty"`
	Name           string              `json:"name"`
	Class          string              `json:"class"`
	Level          int                 `json:"level"`
	Abilities      dnd5e.AbilityScores `json:"abilities"`
	MaxHP          int                 `json:"max_hp"`
	ArmorClass     int                 `json:"armor_class"`
	Speed          int                 `json:"speed"`
	SaveProfs      []string            `json:"save_proficiencies,omitempty"`
	CastingAbility string              `json:"casting_ability,omitempty"`
	SpellSlots     map[int]int         `json:"spell_slots,omitempty"`
	Spells         []string            `json:"spells,omitempty"`
}

// ToConfig builds the character config, including the spellbook when a
// casting ability is set.
func (p *CharacterPayload) ToConfig() *dnd5e.CharacterConfig {
	cfg := &dnd5e.CharacterConfig{
		ID:         p.ID,
		Name:       p.Name,
		Class:      p.Class,
		Level:      p.Level,
		Abilities:  p.Abilities,
		MaxHP:      p.MaxHP,
		ArmorClass: p.ArmorClass,
		Speed:      p.Speed,
	}
	for _, save := range p.SaveProfs {
		cfg.SaveProficiencies = append(cfg.SaveProficiencies, entities.Ability(save))
	}
	if p.CastingAbility != "" {
		book := dnd5e.NewSpellbook(entities.Ability(p.CastingAbility), p.SpellSlots)
		for _, spell := range p.Spells {
			book.Learn(spell)
		}
		cfg.Spellbook = book
	}
	return cfg
}

// Command is a client request over the websocket.
type Command struct {
	Type        string `json:"type"`
	EncounterID string `json:"encounter_id,omitempty"`
	CombatantID string `json:"combatant_id,omitempty"`
	TargetID    string `json:"target_id,omitempty"`
	Weapon      string `json:"weapon,omitempty"`
	Spell       string `json:"spell,omitempty"`
	SlotLevel   int    `json:"slot_level,omitempty"`
	BonusAction bool   `json:"bonus_action,omitempty"`
	Friendly    bool   `json:"friendly,omitempty"`
	Reason      string `json:"reason,omitempty"`
	StatBlock   string `json:"stat_block,omitempty"`
	// ForcedInitiative skips the initiative roll when non-nil.
	ForcedInitiative *int              `json:"forced_initiative,omitempty"`
	Character        *CharacterPayload `json:"character,omitempty"`
}

// Event is a server message pushed to clients.
type Event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// errorEvent builds the standard error payload.
func errorEvent(message string) Event {
	return Event{
		Type: EventError,
		Data: map[string]any{"message": message},
	}
}
