package dnd5e

import (
	"github.com/KirkDiggler/combat-api/internal/entities"
	"github.com/KirkDiggler/combat-api/internal/errors"
)

// MonsterConfig holds everything needed to create a Monster. Attack and
// damage bonuses come pre-computed from the stat block rather than derived
// from ability scores.
type MonsterConfig struct {
	ID          string
	Name        string
	MaxHP       int
	ArmorClass  int
	Speed       int
	Abilities   AbilityScores
	AttackBonus int
	DamageBonus int
	// DamageDice is the monster's primary attack damage, e.g. "1d6".
	DamageDice string
	DamageType string
	// SaveProficiencies adds a CR-derived proficiency bonus to saves for
	// these abilities.
	SaveProficiencies []entities.Ability
	ProficiencyBonus  int
}

// Validate checks the config for required fields and sane values.
func (c *MonsterConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("id", c.ID, vb)
	errors.ValidateRequired("name", c.Name, vb)
	if c.MaxHP <= 0 {
		vb.InvalidField("max_hp", "must be positive")
	}
	if c.ArmorClass <= 0 {
		vb.InvalidField("armor_class", "must be positive")
	}
	if c.Speed < 0 {
		vb.InvalidField("speed", "cannot be negative")
	}
	return vb.Build()
}

// Monster is a stat-block combatant. Unlike characters, monsters do not roll
// death saves: dropping to 0 HP kills them.
type Monster struct {
	id   string
	name string

	maxHP      int
	currentHP  int
	armorClass int
	speed      int

	abilities       AbilityScores
	attackBonus     int
	damageBonus     int
	damageDice      string
	damageType      string
	profBonus       int
	saveProficiency map[entities.Ability]bool
	conditions      map[string]bool
}

// NewMonster creates a Monster from the config at full health.
func NewMonster(cfg *MonsterConfig) (*Monster, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Monster{
		id:              cfg.ID,
		name:            cfg.Name,
		maxHP:           cfg.MaxHP,
		currentHP:       cfg.MaxHP,
		armorClass:      cfg.ArmorClass,
		speed:           cfg.Speed,
		abilities:       cfg.Abilities,
		attackBonus:     cfg.AttackBonus,
		damageBonus:     cfg.DamageBonus,
		damageDice:      cfg.DamageDice,
		damageType:      cfg.DamageType,
		profBonus:       cfg.ProficiencyBonus,
		saveProficiency: make(map[entities.Ability]bool, len(cfg.SaveProficiencies)),
		conditions:      make(map[string]bool),
	}
	for _, ability := range cfg.SaveProficiencies {
		m.saveProficiency[ability] = true
	}
	return m, nil
}

// GetID implements core.Entity.
func (m *Monster) GetID() string { return m.id }

// GetType implements core.Entity.
func (m *Monster) GetType() string { return "monster" }

// Name returns the display name.
func (m *Monster) Name() string { return m.name }

// CurrentHP returns current hit points.
func (m *Monster) CurrentHP() int { return m.currentHP }

// MaxHP returns maximum hit points.
func (m *Monster) MaxHP() int { return m.maxHP }

// ArmorClass returns the defense value attacks roll against.
func (m *Monster) ArmorClass() int { return m.armorClass }

// Speed returns movement speed in feet.
func (m *Monster) Speed() int { return m.speed }

// DexModifier returns the dexterity modifier, used for initiative ties.
func (m *Monster) DexModifier() int {
	return m.abilities.Modifier(entities.AbilityDexterity)
}

// NaturalWeapon returns the stat block's damage notation and type, used
// when an attack names no weapon.
func (m *Monster) NaturalWeapon() (string, string) {
	return m.damageDice, m.damageType
}

// IsAlive reports whether the monster has hit points remaining.
func (m *Monster) IsAlive() bool { return m.currentHP > 0 }

// IsConscious is equivalent to IsAlive for monsters.
func (m *Monster) IsConscious() bool { return m.currentHP > 0 }

// ApplyDamage reduces hit points. Monsters have no temp HP and no dying
// state; reaching 0 is death.
func (m *Monster) ApplyDamage(amount int) entities.DamageResult {
	oldHP := m.currentHP
	m.currentHP = max(0, m.currentHP-amount)
	return entities.DamageResult{
		DamageTaken:        oldHP - m.currentHP,
		KnockedUnconscious: oldHP > 0 && m.currentHP == 0,
	}
}

// Heal restores hit points up to the maximum and returns the amount healed.
func (m *Monster) Heal(amount int) int {
	oldHP := m.currentHP
	m.currentHP = min(m.maxHP, m.currentHP+amount)
	return m.currentHP - oldHP
}

// ApplyDeathSave is a no-op for monsters; a monster at 0 HP is already dead.
func (m *Monster) ApplyDeathSave(roll int) entities.DeathSaveResult {
	return entities.DeathSaveResult{Roll: roll, Died: true}
}

// AttackBonus returns the stat block's attack bonus regardless of weapon.
func (m *Monster) AttackBonus(_ string) int { return m.attackBonus }

// DamageBonus returns the stat block's damage bonus regardless of weapon.
func (m *Monster) DamageBonus(_ string) int { return m.damageBonus }

// SaveModifier returns the saving-throw modifier for an ability.
func (m *Monster) SaveModifier(ability entities.Ability) int {
	mod := m.abilities.Modifier(ability)
	if m.saveProficiency[ability] {
		mod += m.profBonus
	}
	return mod
}

// ExtraAttacksPerTurn returns 0; multiattack stat blocks are out of scope.
func (m *Monster) ExtraAttacksPerTurn() int { return 0 }

// AddCondition applies a condition by name.
func (m *Monster) AddCondition(condition string) {
	m.conditions[condition] = true
}

// RemoveCondition clears a condition by name.
func (m *Monster) RemoveCondition(condition string) {
	delete(m.conditions, condition)
}

// HasCondition reports whether a condition is active.
func (m *Monster) HasCondition(condition string) bool {
	return m.conditions[condition]
}

// Stat blocks for common low-CR monsters.
var statBlocks = map[string]MonsterConfig{
	"kobold": {
		Name: "Kobold", MaxHP: 5, ArmorClass: 12, Speed: 30,
		Abilities:   AbilityScores{Strength: 7, Dexterity: 15, Constitution: 9, Intelligence: 8, Wisdom: 7, Charisma: 8},
		AttackBonus: 4, DamageBonus: 2, DamageDice: "1d4", DamageType: "piercing",
		ProficiencyBonus: 2,
	},
	"goblin": {
		Name: "Goblin", MaxHP: 7, ArmorClass: 15, Speed: 30,
		Abilities:   AbilityScores{Strength: 8, Dexterity: 14, Constitution: 10, Intelligence: 10, Wisdom: 8, Charisma: 8},
		AttackBonus: 4, DamageBonus: 2, DamageDice: "1d6", DamageType: "slashing",
		ProficiencyBonus: 2,
	},
	"skeleton": {
		Name: "Skeleton", MaxHP: 13, ArmorClass: 13, Speed: 30,
		Abilities:   AbilityScores{Strength: 10, Dexterity: 14, Constitution: 15, Intelligence: 6, Wisdom: 8, Charisma: 5},
		AttackBonus: 4, DamageBonus: 2, DamageDice: "1d6", DamageType: "piercing",
		ProficiencyBonus: 2,
	},
	"orc": {
		Name: "Orc", MaxHP: 15, ArmorClass: 13, Speed: 30,
		Abilities:   AbilityScores{Strength: 16, Dexterity: 12, Constitution: 16, Intelligence: 7, Wisdom: 11, Charisma: 10},
		AttackBonus: 5, DamageBonus: 3, DamageDice: "1d12", DamageType: "slashing",
		ProficiencyBonus: 2,
	},
	"ogre": {
		Name: "Ogre", MaxHP: 59, ArmorClass: 11, Speed: 40,
		Abilities:   AbilityScores{Strength: 19, Dexterity: 8, Constitution: 16, Intelligence: 5, Wisdom: 7, Charisma: 7},
		AttackBonus: 6, DamageBonus: 4, DamageDice: "2d8", DamageType: "bludgeoning",
		ProficiencyBonus: 2,
	},
}

// NewMonsterFromStatBlock creates a fresh instance of a library stat block
// with the given instance ID. Returns a not-found error for unknown names.
func NewMonsterFromStatBlock(name, id string) (*Monster, error) {
	cfg, ok := statBlocks[name]
	if !ok {
		return nil, errors.NotFoundf("unknown stat block: %s", name)
	}
	cfg.ID = id
	return NewMonster(&cfg)
}
