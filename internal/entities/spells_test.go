package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/combat-api/internal/entities"
)

func TestGetSpell(t *testing.T) {
	spell := entities.GetSpell("Fireball")
	require.NotNil(t, spell)
	assert.Equal(t, 3, spell.Level)
	assert.Equal(t, "8d6", spell.DamageDice)
	assert.Equal(t, "fire", spell.DamageType)
	assert.Equal(t, entities.AbilityDexterity, spell.SaveAbility)
	assert.True(t, spell.RequiresSave())
}

func TestGetSpellCaseInsensitive(t *testing.T) {
	assert.NotNil(t, entities.GetSpell("fire bolt"))
	assert.NotNil(t, entities.GetSpell("FIRE BOLT"))
}

func TestGetSpellUnknown(t *testing.T) {
	assert.Nil(t, entities.GetSpell("wish"))
}

func TestSpellIsCantrip(t *testing.T) {
	require.NotNil(t, entities.GetSpell("Fire Bolt"))
	assert.True(t, entities.GetSpell("Fire Bolt").IsCantrip())
	assert.False(t, entities.GetSpell("Magic Missile").IsCantrip())
}

func TestSpellAttackVsSave(t *testing.T) {
	fireBolt := entities.GetSpell("Fire Bolt")
	require.NotNil(t, fireBolt)
	assert.False(t, fireBolt.RequiresSave(), "fire bolt is a spell attack")

	burningHands := entities.GetSpell("Burning Hands")
	require.NotNil(t, burningHands)
	assert.True(t, burningHands.RequiresSave())
}

func TestHealingSpells(t *testing.T) {
	cureWounds := entities.GetSpell("Cure Wounds")
	require.NotNil(t, cureWounds)
	assert.True(t, cureWounds.IsHealing())
	assert.Equal(t, "1d8", cureWounds.HealingDice)
	assert.True(t, cureWounds.AddCastingModifier)

	healingWord := entities.GetSpell("Healing Word")
	require.NotNil(t, healingWord)
	assert.Equal(t, entities.CastingTimeBonusAction, healingWord.CastingTime)
}

func TestConcentrationSpells(t *testing.T) {
	assert.True(t, entities.GetSpell("Bless").Concentration)
	assert.True(t, entities.GetSpell("Spirit Guardians").Concentration)
	assert.False(t, entities.GetSpell("Fireball").Concentration)
}

func TestSpellsByClass(t *testing.T) {
	clericSpells := entities.SpellsByClass("cleric")
	assert.NotEmpty(t, clericSpells)
	for _, s := range clericSpells {
		assert.Contains(t, s.Classes, "cleric")
	}
}

func TestSpellsByLevel(t *testing.T) {
	cantrips := entities.SpellsByLevel(0)
	assert.NotEmpty(t, cantrips)
	for _, s := range cantrips {
		assert.True(t, s.IsCantrip())
	}
}
