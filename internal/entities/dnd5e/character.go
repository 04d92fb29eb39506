// Package dnd5e provides the concrete character and monster entities the
// combat engine operates on. Both implement entities.CombatEntity; characters
// with a spellbook also implement entities.Spellcaster.
package dnd5e

import (
	"strings"

	"github.com/KirkDiggler/combat-api/internal/entities"
	"github.com/KirkDiggler/combat-api/internal/errors"
)

// AbilityScores holds the six ability scores.
type AbilityScores struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// Score returns the raw score for an ability.
func (a AbilityScores) Score(ability entities.Ability) int {
	switch ability {
	case entities.AbilityStrength:
		return a.Strength
	case entities.AbilityDexterity:
		return a.Dexterity
	case entities.AbilityConstitution:
		return a.Constitution
	case entities.AbilityIntelligence:
		return a.Intelligence
	case entities.AbilityWisdom:
		return a.Wisdom
	case entities.AbilityCharisma:
		return a.Charisma
	default:
		return 10
	}
}

// Modifier returns the ability modifier for an ability.
func (a AbilityScores) Modifier(ability entities.Ability) int {
	return abilityModifier(a.Score(ability))
}

// abilityModifier floors rather than truncates: a score of 9 is -1, not 0.
func abilityModifier(score int) int {
	if score >= 10 {
		return (score - 10) / 2
	}
	return (score - 11) / 2
}

// proficiencyBonus by character level, +2 at level 1 scaling every 4 levels.
func proficiencyBonus(level int) int {
	return 2 + (level-1)/4
}

// Classes with the Extra Attack feature at level 5.
var extraAttackClasses = map[string]bool{
	"fighter":   true,
	"ranger":    true,
	"barbarian": true,
}

// CharacterConfig holds everything needed to create a Character.
type CharacterConfig struct {
	ID         string
	Name       string
	Class      string
	Level      int
	Abilities  AbilityScores
	MaxHP      int
	ArmorClass int
	Speed      int
	// SaveProficiencies adds the proficiency bonus to saves for these
	// abilities.
	SaveProficiencies []entities.Ability
	// Spellbook is optional; characters without one cannot cast.
	Spellbook *Spellbook
}

// Validate checks the config for required fields and sane values.
func (c *CharacterConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("id", c.ID, vb)
	errors.ValidateRequired("name", c.Name, vb)
	errors.ValidateRequired("class", c.Class, vb)
	errors.ValidateRange("level", c.Level, 1, 20, vb)
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

// Character is a player character. It owns its own health, death-save, and
// condition state; the combat engine mutates it only through the
// CombatEntity methods.
type Character struct {
	id        string
	name      string
	class     string
	level     int
	abilities AbilityScores

	maxHP      int
	currentHP  int
	tempHP     int
	armorClass int
	speed      int

	deathSaveSuccesses int
	deathSaveFailures  int

	saveProficiencies map[entities.Ability]bool
	conditions        map[string]bool

	spellbook *Spellbook
}

// NewCharacter creates a Character from the config at full health.
func NewCharacter(cfg *CharacterConfig) (*Character, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Character{
		id:                cfg.ID,
		name:              cfg.Name,
		class:             strings.ToLower(cfg.Class),
		level:             cfg.Level,
		abilities:         cfg.Abilities,
		maxHP:             cfg.MaxHP,
		currentHP:         cfg.MaxHP,
		armorClass:        cfg.ArmorClass,
		speed:             cfg.Speed,
		saveProficiencies: make(map[entities.Ability]bool, len(cfg.SaveProficiencies)),
		conditions:        make(map[string]bool),
		spellbook:         cfg.Spellbook,
	}
	for _, ability := range cfg.SaveProficiencies {
		c.saveProficiencies[ability] = true
	}
	if c.spellbook != nil {
		c.spellbook.setBonuses(
			proficiencyBonus(c.level),
			c.abilities.Modifier(c.spellbook.CastingAbility()),
		)
	}
	return c, nil
}

// GetID implements core.Entity.
func (c *Character) GetID() string { return c.id }

// GetType implements core.Entity.
func (c *Character) GetType() string { return "character" }

// Name returns the display name.
func (c *Character) Name() string { return c.name }

// Class returns the lowercased class name.
func (c *Character) Class() string { return c.class }

// Level returns the character level.
func (c *Character) Level() int { return c.level }

// CurrentHP returns current hit points.
func (c *Character) CurrentHP() int { return c.currentHP }

// MaxHP returns maximum hit points.
func (c *Character) MaxHP() int { return c.maxHP }

// TempHP returns current temporary hit points.
func (c *Character) TempHP() int { return c.tempHP }

// ArmorClass returns the defense value attacks roll against.
func (c *Character) ArmorClass() int { return c.armorClass }

// Speed returns movement speed in feet.
func (c *Character) Speed() int { return c.speed }

// DexModifier returns the dexterity modifier, used for initiative ties.
func (c *Character) DexModifier() int {
	return c.abilities.Modifier(entities.AbilityDexterity)
}

// ProficiencyBonus returns the level-derived proficiency bonus.
func (c *Character) ProficiencyBonus() int { return proficiencyBonus(c.level) }

// DeathSaves returns accumulated death-save successes and failures.
func (c *Character) DeathSaves() (successes, failures int) {
	return c.deathSaveSuccesses, c.deathSaveFailures
}

// IsAlive reports whether the character has not died. A character at 0 HP is
// still alive until three death-save failures accumulate.
func (c *Character) IsAlive() bool {
	return c.currentHP > 0 || c.deathSaveFailures < 3
}

// IsConscious reports whether the character is above 0 HP.
func (c *Character) IsConscious() bool { return c.currentHP > 0 }

// IsStable reports whether the character is unconscious but no longer
// rolling death saves.
func (c *Character) IsStable() bool {
	return c.currentHP == 0 && c.deathSaveSuccesses >= 3
}

// ApplyDamage applies damage. Temporary hit points absorb first. Damage to a
// conscious character that meets or exceeds current plus maximum HP kills
// instantly. Dropping to 0 HP otherwise knocks unconscious and resets
// death-save counters.
func (c *Character) ApplyDamage(amount int) entities.DamageResult {
	var result entities.DamageResult

	if c.tempHP > 0 {
		absorbed := min(c.tempHP, amount)
		c.tempHP -= absorbed
		amount -= absorbed
		result.TempHPAbsorbed = absorbed
	}

	if amount <= 0 {
		result.DamageTaken = result.TempHPAbsorbed
		return result
	}

	if c.currentHP > 0 && amount >= c.currentHP+c.maxHP {
		c.currentHP = 0
		c.deathSaveFailures = 3
		result.InstantDeath = true
		result.DamageTaken = amount
		return result
	}

	oldHP := c.currentHP
	c.currentHP = max(0, c.currentHP-amount)
	result.DamageTaken = oldHP - c.currentHP + result.TempHPAbsorbed

	if oldHP > 0 && c.currentHP == 0 {
		result.KnockedUnconscious = true
		c.deathSaveSuccesses = 0
		c.deathSaveFailures = 0
	}
	return result
}

// Heal restores hit points up to the maximum and returns the amount actually
// healed. Healing from 0 HP clears death-save counters.
func (c *Character) Heal(amount int) int {
	if c.currentHP <= 0 {
		c.deathSaveSuccesses = 0
		c.deathSaveFailures = 0
	}
	oldHP := c.currentHP
	c.currentHP = min(c.maxHP, c.currentHP+amount)
	return c.currentHP - oldHP
}

// AddTempHP grants temporary hit points. They do not stack; the higher value
// wins.
func (c *Character) AddTempHP(amount int) {
	c.tempHP = max(c.tempHP, amount)
}

// ApplyDeathSave records one death-save roll. A natural 20 revives at 1 HP
// and clears both counters. A natural 1 counts as two failures. 10 or higher
// is a success; three successes stabilize, three failures kill.
func (c *Character) ApplyDeathSave(roll int) entities.DeathSaveResult {
	result := entities.DeathSaveResult{Roll: roll}

	switch {
	case roll == 20:
		c.currentHP = 1
		c.deathSaveSuccesses = 0
		c.deathSaveFailures = 0
		result.Success = true
		result.Revived = true
	case roll == 1:
		c.deathSaveFailures += 2
		if c.deathSaveFailures >= 3 {
			result.Died = true
		}
	case roll >= 10:
		c.deathSaveSuccesses++
		result.Success = true
		if c.deathSaveSuccesses >= 3 {
			result.Stabilized = true
		}
	default:
		c.deathSaveFailures++
		if c.deathSaveFailures >= 3 {
			result.Died = true
		}
	}
	return result
}

// AttackBonus returns the to-hit bonus for the named weapon. Finesse weapons
// use the better of strength and dexterity; ranged weapons use dexterity.
func (c *Character) AttackBonus(weapon string) int {
	return c.weaponModifier(weapon) + proficiencyBonus(c.level)
}

// DamageBonus returns the flat damage modifier for the named weapon.
func (c *Character) DamageBonus(weapon string) int {
	return c.weaponModifier(weapon)
}

func (c *Character) weaponModifier(weapon string) int {
	strMod := c.abilities.Modifier(entities.AbilityStrength)
	dexMod := c.abilities.Modifier(entities.AbilityDexterity)

	if entities.IsFinesseWeapon(weapon) {
		return max(strMod, dexMod)
	}
	if entities.IsRangedWeapon(weapon) {
		return dexMod
	}
	return strMod
}

// SaveModifier returns the saving-throw modifier for an ability, including
// proficiency when the class grants it.
func (c *Character) SaveModifier(ability entities.Ability) int {
	mod := c.abilities.Modifier(ability)
	if c.saveProficiencies[ability] {
		mod += proficiencyBonus(c.level)
	}
	return mod
}

// ExtraAttacksPerTurn returns extra attacks granted by class features.
func (c *Character) ExtraAttacksPerTurn() int {
	if c.level >= 5 && extraAttackClasses[c.class] {
		return 1
	}
	return 0
}

// AddCondition applies a condition by name.
func (c *Character) AddCondition(condition string) {
	c.conditions[condition] = true
}

// RemoveCondition clears a condition by name.
func (c *Character) RemoveCondition(condition string) {
	delete(c.conditions, condition)
}

// HasCondition reports whether a condition is active.
func (c *Character) HasCondition(condition string) bool {
	return c.conditions[condition]
}

// Spellbook returns the character's spellbook, or nil for non-casters.
func (c *Character) Spellbook() *Spellbook { return c.spellbook }

// CanCast implements entities.Spellcaster.
func (c *Character) CanCast(spellName string, slotLevel int) bool {
	if c.spellbook == nil {
		return false
	}
	return c.spellbook.CanCast(spellName, slotLevel)
}

// CastSpell implements entities.Spellcaster.
func (c *Character) CastSpell(spellName string, slotLevel int) (*entities.Spell, bool) {
	if c.spellbook == nil {
		return nil, false
	}
	return c.spellbook.CastSpell(spellName, slotLevel)
}

// BreakConcentration implements entities.Spellcaster.
func (c *Character) BreakConcentration() string {
	if c.spellbook == nil {
		return ""
	}
	return c.spellbook.BreakConcentration()
}

// ConcentratingOn implements entities.Spellcaster.
func (c *Character) ConcentratingOn() string {
	if c.spellbook == nil {
		return ""
	}
	return c.spellbook.ConcentratingOn()
}

// SpellSaveDC implements entities.Spellcaster.
func (c *Character) SpellSaveDC() int {
	if c.spellbook == nil {
		return 0
	}
	return c.spellbook.SpellSaveDC()
}

// SpellAttackBonus implements entities.Spellcaster.
func (c *Character) SpellAttackBonus() int {
	if c.spellbook == nil {
		return 0
	}
	return c.spellbook.SpellAttackBonus()
}

// SpellcastingModifier implements entities.Spellcaster.
func (c *Character) SpellcastingModifier() int {
	if c.spellbook == nil {
		return 0
	}
	return c.spellbook.SpellcastingModifier()
}
