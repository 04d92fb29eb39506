package entities

import (
	"sort"
	"strings"
)

// Weapon holds the combat-relevant data for a weapon
type Weapon struct {
	Damage     string
	DamageType string
	Properties []string
	Range      int
}

// Weapon property constants
const (
	PropertyFinesse    = "finesse"
	PropertyLight      = "light"
	PropertyHeavy      = "heavy"
	PropertyTwoHanded  = "two-handed"
	PropertyVersatile  = "versatile"
	PropertyThrown     = "thrown"
	PropertyAmmunition = "ammunition"
	PropertyLoading    = "loading"
)

// Default policy for unrecognized weapon names: an improvised melee weapon
// dealing 1d4 bludgeoning at 5-foot range. This is deliberate and
// test-asserted, not a silent catch-all.
var defaultWeapon = Weapon{
	Damage:     "1d4",
	DamageType: "bludgeoning",
	Range:      5,
}

var weaponTable = map[string]Weapon{
	"longsword":      {Damage: "1d8", DamageType: "slashing", Properties: []string{PropertyVersatile}, Range: 5},
	"shortsword":     {Damage: "1d6", DamageType: "piercing", Properties: []string{PropertyFinesse, PropertyLight}, Range: 5},
	"greatsword":     {Damage: "2d6", DamageType: "slashing", Properties: []string{PropertyTwoHanded, PropertyHeavy}, Range: 5},
	"greataxe":       {Damage: "1d12", DamageType: "slashing", Properties: []string{PropertyTwoHanded, PropertyHeavy}, Range: 5},
	"rapier":         {Damage: "1d8", DamageType: "piercing", Properties: []string{PropertyFinesse}, Range: 5},
	"dagger":         {Damage: "1d4", DamageType: "piercing", Properties: []string{PropertyFinesse, PropertyLight, PropertyThrown}, Range: 5},
	"handaxe":        {Damage: "1d6", DamageType: "slashing", Properties: []string{PropertyLight, PropertyThrown}, Range: 5},
	"javelin":        {Damage: "1d6", DamageType: "piercing", Properties: []string{PropertyThrown}, Range: 5},
	"mace":           {Damage: "1d6", DamageType: "bludgeoning", Range: 5},
	"quarterstaff":   {Damage: "1d6", DamageType: "bludgeoning", Properties: []string{PropertyVersatile}, Range: 5},
	"warhammer":      {Damage: "1d8", DamageType: "bludgeoning", Properties: []string{PropertyVersatile}, Range: 5},
	"battleaxe":      {Damage: "1d8", DamageType: "slashing", Properties: []string{PropertyVersatile}, Range: 5},
	"longbow":        {Damage: "1d8", DamageType: "piercing", Properties: []string{PropertyTwoHanded, PropertyAmmunition}, Range: 150},
	"shortbow":       {Damage: "1d6", DamageType: "piercing", Properties: []string{PropertyTwoHanded, PropertyAmmunition}, Range: 80},
	"light_crossbow": {Damage: "1d8", DamageType: "piercing", Properties: []string{PropertyTwoHanded, PropertyAmmunition, PropertyLoading}, Range: 80},
	"hand_crossbow":  {Damage: "1d6", DamageType: "piercing", Properties: []string{PropertyLight, PropertyAmmunition, PropertyLoading}, Range: 30},
}

// WeaponData returns the weapon table entry for a name, falling back to the
// documented default for unknown weapons. Lookup is case-insensitive and
// tolerates spaces in place of underscores; a partial match on the table key
// is accepted so "silvered longsword" resolves to "longsword".
func WeaponData(name string) Weapon {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	if key == "" {
		return defaultWeapon
	}

	if weapon, ok := weaponTable[key]; ok {
		return weapon
	}

	// Sorted so ambiguous partials resolve the same way every time.
	tableKeys := make([]string, 0, len(weaponTable))
	for tableKey := range weaponTable {
		tableKeys = append(tableKeys, tableKey)
	}
	sort.Strings(tableKeys)
	for _, tableKey := range tableKeys {
		if strings.Contains(key, tableKey) || strings.Contains(tableKey, key) {
			return weaponTable[tableKey]
		}
	}

	return defaultWeapon
}

func (w Weapon) hasProperty(property string) bool {
	for _, p := range w.Properties {
		if p == property {
			return true
		}
	}
	return false
}

// IsFinesseWeapon reports whether a weapon can use dexterity for attack and
// damage rolls
func IsFinesseWeapon(name string) bool {
	return WeaponData(name).hasProperty(PropertyFinesse)
}

// IsRangedWeapon reports whether a weapon attacks at range
func IsRangedWeapon(name string) bool {
	weapon := WeaponData(name)
	return weapon.hasProperty(PropertyAmmunition) || weapon.hasProperty(PropertyThrown)
}

// WeaponRange returns the weapon's range in feet
func WeaponRange(name string) int {
	return WeaponData(name).Range
}
