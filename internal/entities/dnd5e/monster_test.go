package dnd5e_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/combat-api/internal/entities"
	"github.com/KirkDiggler/combat-api/internal/entities/dnd5e"
)

type MonsterTestSuite struct {
	suite.Suite
}

func (s *MonsterTestSuite) newGoblin() *dnd5e.Monster {
	monster, err := dnd5e.NewMonsterFromStatBlock("goblin", "mon-1")
	s.Require().NoError(err)
	return monster
}

func (s *MonsterTestSuite) TestStatBlockLibrary() {
	goblin := s.newGoblin()
	s.Equal("mon-1", goblin.GetID())
	s.Equal("monster", goblin.GetType())
	s.Equal("Goblin", goblin.Name())
	s.Equal(7, goblin.CurrentHP())
	s.Equal(15, goblin.ArmorClass())
	s.Equal(2, goblin.DexModifier())
}

func (s *MonsterTestSuite) TestUnknownStatBlock() {
	_, err := dnd5e.NewMonsterFromStatBlock("tarrasque", "mon-2")
	s.Error(err)
}

func (s *MonsterTestSuite) TestStatBlockInstancesAreIndependent() {
	first, err := dnd5e.NewMonsterFromStatBlock("goblin", "mon-1")
	s.Require().NoError(err)
	second, err := dnd5e.NewMonsterFromStatBlock("goblin", "mon-2")
	s.Require().NoError(err)

	first.ApplyDamage(5)
	s.Equal(2, first.CurrentHP())
	s.Equal(7, second.CurrentHP())
}

func (s *MonsterTestSuite) TestNewMonsterValidation() {
	_, err := dnd5e.NewMonster(&dnd5e.MonsterConfig{})
	s.Error(err)
}

func (s *MonsterTestSuite) TestDamageKillsAtZero() {
	goblin := s.newGoblin()
	result := goblin.ApplyDamage(7)

	s.Equal(7, result.DamageTaken)
	s.True(result.KnockedUnconscious)
	s.False(goblin.IsAlive())
	s.False(goblin.IsConscious())
}

func (s *MonsterTestSuite) TestDamageClampsAtZero() {
	goblin := s.newGoblin()
	result := goblin.ApplyDamage(50)

	s.Equal(7, result.DamageTaken)
	s.Equal(0, goblin.CurrentHP())
}

func (s *MonsterTestSuite) TestHeal() {
	goblin := s.newGoblin()
	goblin.ApplyDamage(4)

	s.Equal(4, goblin.Heal(10))
	s.Equal(7, goblin.CurrentHP())
}

func (s *MonsterTestSuite) TestFlatBonusesIgnoreWeapon() {
	goblin := s.newGoblin()
	s.Equal(4, goblin.AttackBonus("scimitar"))
	s.Equal(4, goblin.AttackBonus("anything"))
	s.Equal(2, goblin.DamageBonus("scimitar"))
}

func (s *MonsterTestSuite) TestSaveModifier() {
	goblin := s.newGoblin()
	// DEX 14 (+2), no save proficiencies on the block.
	s.Equal(2, goblin.SaveModifier(entities.AbilityDexterity))
	s.Equal(-1, goblin.SaveModifier(entities.AbilityStrength))
}

func (s *MonsterTestSuite) TestDeathSaveIsNoOp() {
	goblin := s.newGoblin()
	result := goblin.ApplyDeathSave(20)
	s.True(result.Died)
}

func TestMonsterTestSuite(t *testing.T) {
	suite.Run(t, new(MonsterTestSuite))
}
