package combat

import (
	"github.com/KirkDiggler/combat-api/internal/combat/economy"
	"github.com/KirkDiggler/combat-api/internal/entities"
)

// Combatant wraps an externally-owned entity for the duration of an
// encounter. It owns the per-turn action budget and the transient combat
// flags; health and resources stay with the entity itself.
type Combatant struct {
	Entity   entities.CombatEntity
	EntityID string
	IsPlayer bool
	Budget   *economy.Budget

	Dodging       bool
	Hidden        bool
	HelpedBy      string
	ReadiedAction string
}

func newCombatant(entity entities.CombatEntity, isPlayer bool) *Combatant {
	return &Combatant{
		Entity:   entity,
		EntityID: entity.GetID(),
		IsPlayer: isPlayer,
		Budget:   economy.New(),
	}
}

// Name returns the wrapped entity's display name.
func (c *Combatant) Name() string {
	return c.Entity.Name()
}

// IsAlive delegates to the wrapped entity.
func (c *Combatant) IsAlive() bool {
	return c.Entity.IsAlive()
}

// IsConscious delegates to the wrapped entity.
func (c *Combatant) IsConscious() bool {
	return c.Entity.IsConscious()
}

// Spellcaster returns the entity's spellcasting capability, or nil when the
// entity cannot cast.
func (c *Combatant) Spellcaster() entities.Spellcaster {
	caster, ok := c.Entity.(entities.Spellcaster)
	if !ok {
		return nil
	}
	return caster
}

// CombatantData is the serializable per-combatant snapshot. The wrapped
// entity is persisted by its own owner and restored by reference.
type CombatantData struct {
	EntityID      string        `json:"entity_id"`
	IsPlayer      bool          `json:"is_player"`
	Budget        *economy.Data `json:"budget"`
	Dodging       bool          `json:"dodging"`
	Hidden        bool          `json:"hidden"`
	HelpedBy      string        `json:"helped_by,omitempty"`
	ReadiedAction string        `json:"readied_action,omitempty"`
}

// ToData snapshots the combatant's encounter-local state.
func (c *Combatant) ToData() *CombatantData {
	return &CombatantData{
		EntityID:      c.EntityID,
		IsPlayer:      c.IsPlayer,
		Budget:        c.Budget.ToData(),
		Dodging:       c.Dodging,
		Hidden:        c.Hidden,
		HelpedBy:      c.HelpedBy,
		ReadiedAction: c.ReadiedAction,
	}
}
