// Package entities defines the combat entity capability contracts and shared
// rule data consumed by the combat resolver. Concrete entity kinds live in
// the dnd5e subpackage; the resolver programs only against these interfaces.
package entities

import (
	"github.com/KirkDiggler/rpg-toolkit/core"
)

// Ability identifies one of the six core abilities for saving throws
type Ability string

// Ability constants
const (
	AbilityStrength     Ability = "strength"
	AbilityDexterity    Ability = "dexterity"
	AbilityConstitution Ability = "constitution"
	AbilityIntelligence Ability = "intelligence"
	AbilityWisdom       Ability = "wisdom"
	AbilityCharisma     Ability = "charisma"
)

// Condition constants recognized by the resolver's advantage rules
const (
	ConditionProne     = "prone"
	ConditionParalyzed = "paralyzed"
	ConditionStunned   = "stunned"
)

// DamageResult reports what happened when damage was applied to an entity
type DamageResult struct {
	DamageTaken        int  `json:"damage_taken"`
	TempHPAbsorbed     int  `json:"temp_hp_absorbed"`
	KnockedUnconscious bool `json:"knocked_unconscious"`
	InstantDeath       bool `json:"instant_death"`
}

// DeathSaveResult reports the outcome of a single death saving throw
type DeathSaveResult struct {
	Roll       int  `json:"roll"`
	Success    bool `json:"success"`
	Stabilized bool `json:"stabilized"`
	Revived    bool `json:"revived"`
	Died       bool `json:"died"`
}

// CombatEntity is the capability contract every combat participant must
// satisfy. The entity owns its own health and resource state; the resolver
// mutates it only through these operations and never duplicates it.
type CombatEntity interface {
	core.Entity

	Name() string
	CurrentHP() int
	MaxHP() int
	ArmorClass() int
	Speed() int
	DexModifier() int

	// ApplyDamage applies damage, absorbing temporary HP first, and
	// reports knockouts and instant death
	ApplyDamage(amount int) DamageResult

	// Heal restores HP up to the maximum and returns the amount healed
	Heal(amount int) int

	IsAlive() bool
	IsConscious() bool

	// AttackBonus and DamageBonus are parameterized by weapon identity so
	// finesse weapons can key off dexterity
	AttackBonus(weapon string) int
	DamageBonus(weapon string) int

	// SaveModifier returns the entity's saving throw modifier for an ability
	SaveModifier(ability Ability) int

	HasCondition(condition string) bool

	// ApplyDeathSave records one death saving throw against the entity's
	// accumulated successes and failures
	ApplyDeathSave(roll int) DeathSaveResult

	// ExtraAttacksPerTurn reports attacks granted beyond the primary
	// action, checked at the start of each of the entity's turns
	ExtraAttacksPerTurn() int
}

// NaturalAttacker is the optional stat-block capability. Entities that
// implement it supply their own damage dice when the attacker names no
// weapon.
type NaturalAttacker interface {
	// NaturalWeapon returns the stat block's damage notation and damage
	// type. An empty notation means no natural attack.
	NaturalWeapon() (damageDice, damageType string)
}

// Spellcaster is the optional spellbook capability. Entities that do not
// implement it cannot cast spells.
type Spellcaster interface {
	// CanCast reports whether the named spell is known/prepared and a slot
	// is available. A slotLevel of 0 means the spell's own level.
	CanCast(spellName string, slotLevel int) bool

	// CastSpell consumes a slot (cantrips are free) and returns the spell.
	// Casting a concentration spell overwrites any prior concentration.
	CastSpell(spellName string, slotLevel int) (*Spell, bool)

	// BreakConcentration clears concentration and returns the spell name
	// that was being concentrated on, or "" if none
	BreakConcentration() string

	// ConcentratingOn returns the current concentration spell name, or ""
	ConcentratingOn() string

	SpellSaveDC() int
	SpellAttackBonus() int

	// SpellcastingModifier returns the casting ability modifier alone,
	// added to healing rolls for spells like Cure Wounds
	SpellcastingModifier() int
}
