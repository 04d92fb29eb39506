package entities

import "strings"

// CastingTime is the action-economy cost of casting a spell.
type CastingTime string

const (
	CastingTimeAction      CastingTime = "action"
	CastingTimeBonusAction CastingTime = "bonus_action"
	CastingTimeReaction    CastingTime = "reaction"
)

// SpellSchool classifies a spell by school of magic.
type SpellSchool string

const (
	SchoolAbjuration    SpellSchool = "abjuration"
	SchoolConjuration   SpellSchool = "conjuration"
	SchoolDivination    SpellSchool = "divination"
	SchoolEnchantment   SpellSchool = "enchantment"
	SchoolEvocation     SpellSchool = "evocation"
	SchoolIllusion      SpellSchool = "illusion"
	SchoolNecromancy    SpellSchool = "necromancy"
	SchoolTransmutation SpellSchool = "transmutation"
)

// Spell holds the combat-relevant data for a spell. Level 0 is a cantrip.
// A spell with DamageDice set and SaveAbility empty resolves as a spell
// attack; with SaveAbility set it resolves as a save-for-half. A spell with
// HealingDice set restores hit points to the target instead.
type Spell struct {
	Name        string
	Level       int
	School      SpellSchool
	CastingTime CastingTime
	Range       int
	DamageDice  string
	DamageType  string
	SaveAbility Ability
	HealingDice string
	// AddCastingModifier adds the caster's spellcasting ability modifier to
	// the healing roll, per Cure Wounds and Healing Word.
	AddCastingModifier bool
	Concentration      bool
	Classes            []string
}

// IsCantrip reports whether the spell is a cantrip.
func (s *Spell) IsCantrip() bool {
	return s.Level == 0
}

// IsHealing reports whether the spell restores hit points.
func (s *Spell) IsHealing() bool {
	return s.HealingDice != ""
}

// RequiresSave reports whether targets roll a saving throw against this
// spell instead of the caster making a spell attack.
func (s *Spell) RequiresSave() bool {
	return s.SaveAbility != ""
}

var spellRegistry = map[string]*Spell{}

func registerSpell(s *Spell) {
	spellRegistry[strings.ToLower(s.Name)] = s
}

func init() {
	// Cantrips
	registerSpell(&Spell{
		Name: "Fire Bolt", Level: 0, School: SchoolEvocation,
		CastingTime: CastingTimeAction, Range: 120,
		DamageDice: "1d10", DamageType: "fire",
		Classes: []string{"wizard"},
	})
	registerSpell(&Spell{
		Name: "Sacred Flame", Level: 0, School: SchoolEvocation,
		CastingTime: CastingTimeAction, Range: 60,
		DamageDice: "1d8", DamageType: "radiant", SaveAbility: AbilityDexterity,
		Classes: []string{"cleric"},
	})
	registerSpell(&Spell{
		Name: "Ray of Frost", Level: 0, School: SchoolEvocation,
		CastingTime: CastingTimeAction, Range: 60,
		DamageDice: "1d8", DamageType: "cold",
		Classes: []string{"wizard"},
	})

	// Level 1
	registerSpell(&Spell{
		Name: "Magic Missile", Level: 1, School: SchoolEvocation,
		CastingTime: CastingTimeAction, Range: 120,
		DamageDice: "1d4+1", DamageType: "force",
		Classes: []string{"wizard"},
	})
	registerSpell(&Spell{
		Name: "Burning Hands", Level: 1, School: SchoolEvocation,
		CastingTime: CastingTimeAction, Range: 15,
		DamageDice: "3d6", DamageType: "fire", SaveAbility: AbilityDexterity,
		Classes: []string{"wizard"},
	})
	registerSpell(&Spell{
		Name: "Thunderwave", Level: 1, School: SchoolEvocation,
		CastingTime: CastingTimeAction, Range: 15,
		DamageDice: "2d8", DamageType: "thunder", SaveAbility: AbilityConstitution,
		Classes: []string{"wizard"},
	})
	registerSpell(&Spell{
		Name: "Guiding Bolt", Level: 1, School: SchoolEvocation,
		CastingTime: CastingTimeAction, Range: 120,
		DamageDice: "4d6", DamageType: "radiant",
		Classes: []string{"cleric"},
	})
	registerSpell(&Spell{
		Name: "Cure Wounds", Level: 1, School: SchoolEvocation,
		CastingTime: CastingTimeAction, Range: 5,
		HealingDice: "1d8", AddCastingModifier: true,
		Classes: []string{"cleric", "ranger"},
	})
	registerSpell(&Spell{
		Name: "Healing Word", Level: 1, School: SchoolEvocation,
		CastingTime: CastingTimeBonusAction, Range: 60,
		HealingDice: "1d4", AddCastingModifier: true,
		Classes: []string{"cleric"},
	})
	registerSpell(&Spell{
		Name: "Bless", Level: 1, School: SchoolEnchantment,
		CastingTime: CastingTimeAction, Range: 30,
		Concentration: true,
		Classes:       []string{"cleric"},
	})
	registerSpell(&Spell{
		Name: "Hunter's Mark", Level: 1, School: SchoolDivination,
		CastingTime: CastingTimeBonusAction, Range: 90,
		Concentration: true,
		Classes:       []string{"ranger"},
	})

	// Level 2
	registerSpell(&Spell{
		Name: "Scorching Ray", Level: 2, School: SchoolEvocation,
		CastingTime: CastingTimeAction, Range: 120,
		DamageDice: "2d6", DamageType: "fire",
		Classes: []string{"wizard"},
	})
	registerSpell(&Spell{
		Name: "Hold Person", Level: 2, School: SchoolEnchantment,
		CastingTime: CastingTimeAction, Range: 60,
		SaveAbility: AbilityWisdom, Concentration: true,
		Classes: []string{"cleric", "wizard"},
	})
	registerSpell(&Spell{
		Name: "Spiritual Weapon", Level: 2, School: SchoolEvocation,
		CastingTime: CastingTimeBonusAction, Range: 60,
		DamageDice: "1d8", DamageType: "force",
		Classes: []string{"cleric"},
	})

	// Level 3
	registerSpell(&Spell{
		Name: "Fireball", Level: 3, School: SchoolEvocation,
		CastingTime: CastingTimeAction, Range: 150,
		DamageDice: "8d6", DamageType: "fire", SaveAbility: AbilityDexterity,
		Classes: []string{"wizard"},
	})
	registerSpell(&Spell{
		Name: "Lightning Bolt", Level: 3, School: SchoolEvocation,
		CastingTime: CastingTimeAction, Range: 100,
		DamageDice: "8d6", DamageType: "lightning", SaveAbility: AbilityDexterity,
		Classes: []string{"wizard"},
	})
	registerSpell(&Spell{
		Name: "Spirit Guardians", Level: 3, School: SchoolConjuration,
		CastingTime: CastingTimeAction, Range: 15,
		DamageDice: "3d8", DamageType: "radiant", SaveAbility: AbilityWisdom,
		Concentration: true,
		Classes:       []string{"cleric"},
	})
	registerSpell(&Spell{
		Name: "Mass Healing Word", Level: 3, School: SchoolEvocation,
		CastingTime: CastingTimeBonusAction, Range: 60,
		HealingDice: "1d4", AddCastingModifier: true,
		Classes: []string{"cleric"},
	})
}

// GetSpell looks up a spell by name, case-insensitively. Returns nil for
// unknown spells.
func GetSpell(name string) *Spell {
	return spellRegistry[strings.ToLower(name)]
}

// SpellsByClass returns all registered spells available to a class.
func SpellsByClass(class string) []*Spell {
	class = strings.ToLower(class)
	var spells []*Spell
	for _, s := range spellRegistry {
		for _, c := range s.Classes {
			if c == class {
				spells = append(spells, s)
				break
			}
		}
	}
	return spells
}

// SpellsByLevel returns all registered spells of the given level.
func SpellsByLevel(level int) []*Spell {
	var spells []*Spell
	for _, s := range spellRegistry {
		if s.Level == level {
			spells = append(spells, s)
		}
	}
	return spells
}
