package dnd5e_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/combat-api/internal/entities"
	"github.com/KirkDiggler/combat-api/internal/entities/dnd5e"
)

type CharacterTestSuite struct {
	suite.Suite
}

func (s *CharacterTestSuite) newFighter() *dnd5e.Character {
	char, err := dnd5e.NewCharacter(&dnd5e.CharacterConfig{
		ID:    "char-1",
		Name:  "Bruenor",
		Class: "Fighter",
		Level: 5,
		Abilities: dnd5e.AbilityScores{
			Strength: 16, Dexterity: 14, Constitution: 15,
			Intelligence: 10, Wisdom: 12, Charisma: 8,
		},
		MaxHP:             44,
		ArmorClass:        18,
		Speed:             30,
		SaveProficiencies: []entities.Ability{entities.AbilityStrength, entities.AbilityConstitution},
	})
	s.Require().NoError(err)
	return char
}

func (s *CharacterTestSuite) TestNewCharacterValidation() {
	_, err := dnd5e.NewCharacter(&dnd5e.CharacterConfig{})
	s.Error(err)

	_, err = dnd5e.NewCharacter(&dnd5e.CharacterConfig{
		ID: "char-1", Name: "Bad", Class: "Fighter", Level: 25,
		MaxHP: 10, ArmorClass: 10,
	})
	s.Error(err, "level above 20 is rejected")
}

func (s *CharacterTestSuite) TestStartsAtFullHealth() {
	char := s.newFighter()
	s.Equal(44, char.CurrentHP())
	s.Equal(44, char.MaxHP())
	s.True(char.IsAlive())
	s.True(char.IsConscious())
}

func (s *CharacterTestSuite) TestEntityIdentity() {
	char := s.newFighter()
	s.Equal("char-1", char.GetID())
	s.Equal("character", char.GetType())
	s.Equal("Bruenor", char.Name())
}

func (s *CharacterTestSuite) TestApplyDamage() {
	char := s.newFighter()
	result := char.ApplyDamage(10)

	s.Equal(10, result.DamageTaken)
	s.Equal(0, result.TempHPAbsorbed)
	s.False(result.KnockedUnconscious)
	s.Equal(34, char.CurrentHP())
}

func (s *CharacterTestSuite) TestTempHPAbsorbsFirst() {
	char := s.newFighter()
	char.AddTempHP(5)

	result := char.ApplyDamage(8)
	s.Equal(5, result.TempHPAbsorbed)
	s.Equal(8, result.DamageTaken)
	s.Equal(41, char.CurrentHP())
	s.Equal(0, char.TempHP())
}

func (s *CharacterTestSuite) TestTempHPFullyAbsorbs() {
	char := s.newFighter()
	char.AddTempHP(10)

	result := char.ApplyDamage(4)
	s.Equal(4, result.TempHPAbsorbed)
	s.Equal(4, result.DamageTaken)
	s.Equal(44, char.CurrentHP())
	s.Equal(6, char.TempHP())
}

func (s *CharacterTestSuite) TestTempHPDoesNotStack() {
	char := s.newFighter()
	char.AddTempHP(8)
	char.AddTempHP(5)
	s.Equal(8, char.TempHP())
}

func (s *CharacterTestSuite) TestKnockedUnconscious() {
	char := s.newFighter()
	result := char.ApplyDamage(44)

	s.True(result.KnockedUnconscious)
	s.False(result.InstantDeath)
	s.Equal(0, char.CurrentHP())
	s.False(char.IsConscious())
	s.True(char.IsAlive())
}

func (s *CharacterTestSuite) TestInstantDeath() {
	char := s.newFighter()
	// 44 current + 44 max: 88 damage kills outright.
	result := char.ApplyDamage(88)

	s.True(result.InstantDeath)
	s.False(result.KnockedUnconscious)
	s.False(char.IsAlive())
}

func (s *CharacterTestSuite) TestInstantDeathThresholdNotMet() {
	char := s.newFighter()
	result := char.ApplyDamage(87)

	s.False(result.InstantDeath)
	s.True(result.KnockedUnconscious)
	s.True(char.IsAlive())
}

func (s *CharacterTestSuite) TestHealCapsAtMax() {
	char := s.newFighter()
	char.ApplyDamage(10)

	healed := char.Heal(20)
	s.Equal(10, healed)
	s.Equal(44, char.CurrentHP())
}

func (s *CharacterTestSuite) TestHealFromZeroClearsDeathSaves() {
	char := s.newFighter()
	char.ApplyDamage(44)
	char.ApplyDeathSave(5)
	char.ApplyDeathSave(12)

	char.Heal(8)
	successes, failures := char.DeathSaves()
	s.Equal(0, successes)
	s.Equal(0, failures)
	s.True(char.IsConscious())
}

func (s *CharacterTestSuite) TestDeathSaveAccumulation() {
	char := s.newFighter()
	char.ApplyDamage(44)

	s.True(char.ApplyDeathSave(12).Success)
	s.True(char.ApplyDeathSave(10).Success, "10 exactly is a success")
	result := char.ApplyDeathSave(15)
	s.True(result.Success)
	s.True(result.Stabilized)
	s.True(char.IsStable())
}

func (s *CharacterTestSuite) TestDeathSaveFailures() {
	char := s.newFighter()
	char.ApplyDamage(44)

	s.False(char.ApplyDeathSave(9).Success, "9 is a failure")
	s.False(char.ApplyDeathSave(4).Success)
	result := char.ApplyDeathSave(2)
	s.True(result.Died)
	s.False(char.IsAlive())
}

func (s *CharacterTestSuite) TestDeathSaveNaturalOne() {
	char := s.newFighter()
	char.ApplyDamage(44)

	char.ApplyDeathSave(1)
	_, failures := char.DeathSaves()
	s.Equal(2, failures)

	result := char.ApplyDeathSave(1)
	s.True(result.Died)
}

func (s *CharacterTestSuite) TestDeathSaveNaturalTwenty() {
	char := s.newFighter()
	char.ApplyDamage(44)
	char.ApplyDeathSave(3)
	char.ApplyDeathSave(3)

	result := char.ApplyDeathSave(20)
	s.True(result.Revived)
	s.Equal(1, char.CurrentHP())

	successes, failures := char.DeathSaves()
	s.Equal(0, successes)
	s.Equal(0, failures)
}

func (s *CharacterTestSuite) TestAttackBonus() {
	char := s.newFighter()
	// STR 16 (+3), proficiency +3 at level 5.
	s.Equal(6, char.AttackBonus("longsword"))
	s.Equal(3, char.DamageBonus("longsword"))
	// Longbow uses DEX 14 (+2).
	s.Equal(5, char.AttackBonus("longbow"))
	s.Equal(2, char.DamageBonus("longbow"))
}

func (s *CharacterTestSuite) TestFinesseUsesBetterModifier() {
	char, err := dnd5e.NewCharacter(&dnd5e.CharacterConfig{
		ID: "char-2", Name: "Shadow", Class: "Rogue", Level: 1,
		Abilities:  dnd5e.AbilityScores{Strength: 8, Dexterity: 16},
		MaxHP:      9,
		ArmorClass: 14,
		Speed:      30,
	})
	s.Require().NoError(err)

	// Rapier is finesse: DEX +3 beats STR -1.
	s.Equal(5, char.AttackBonus("rapier"))
	s.Equal(3, char.DamageBonus("rapier"))
}

func (s *CharacterTestSuite) TestSaveModifier() {
	char := s.newFighter()
	// CON 15 (+2) proficient: +2 +3 = 5.
	s.Equal(5, char.SaveModifier(entities.AbilityConstitution))
	// WIS 12 (+1) not proficient.
	s.Equal(1, char.SaveModifier(entities.AbilityWisdom))
}

func (s *CharacterTestSuite) TestExtraAttacks() {
	char := s.newFighter()
	s.Equal(1, char.ExtraAttacksPerTurn())

	wizard, err := dnd5e.NewCharacter(&dnd5e.CharacterConfig{
		ID: "char-3", Name: "Mord", Class: "Wizard", Level: 5,
		MaxHP: 22, ArmorClass: 12, Speed: 30,
	})
	s.Require().NoError(err)
	s.Equal(0, wizard.ExtraAttacksPerTurn())

	lowFighter, err := dnd5e.NewCharacter(&dnd5e.CharacterConfig{
		ID: "char-4", Name: "Squire", Class: "Fighter", Level: 4,
		MaxHP: 36, ArmorClass: 16, Speed: 30,
	})
	s.Require().NoError(err)
	s.Equal(0, lowFighter.ExtraAttacksPerTurn())
}

func (s *CharacterTestSuite) TestConditions() {
	char := s.newFighter()
	s.False(char.HasCondition(entities.ConditionProne))

	char.AddCondition(entities.ConditionProne)
	s.True(char.HasCondition(entities.ConditionProne))

	char.RemoveCondition(entities.ConditionProne)
	s.False(char.HasCondition(entities.ConditionProne))
}

func (s *CharacterTestSuite) TestNonCasterCannotCast() {
	char := s.newFighter()
	s.False(char.CanCast("Fire Bolt", 0))
	_, ok := char.CastSpell("Fire Bolt", 0)
	s.False(ok)
	s.Equal("", char.ConcentratingOn())
}

func TestCharacterTestSuite(t *testing.T) {
	suite.Run(t, new(CharacterTestSuite))
}

func TestAbilityModifiers(t *testing.T) {
	testCases := []struct {
		score int
		want  int
	}{
		{3, -4},
		{8, -1},
		{9, -1},
		{10, 0},
		{11, 0},
		{12, 1},
		{15, 2},
		{18, 4},
		{20, 5},
	}

	for _, tc := range testCases {
		scores := dnd5e.AbilityScores{Strength: tc.score}
		got := scores.Modifier(entities.AbilityStrength)
		if got != tc.want {
			t.Errorf("modifier for score %d: got %d, want %d", tc.score, got, tc.want)
		}
	}
}
