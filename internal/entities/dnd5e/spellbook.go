package dnd5e

import (
	"strings"

	"github.com/KirkDiggler/combat-api/internal/entities"
)

// SlotTracker tracks spell slots by level.
type SlotTracker struct {
	maxSlots     map[int]int
	currentSlots map[int]int
}

// NewSlotTracker creates a tracker with the given maximum slots per level.
func NewSlotTracker(maxSlots map[int]int) *SlotTracker {
	t := &SlotTracker{
		maxSlots:     make(map[int]int, len(maxSlots)),
		currentSlots: make(map[int]int, len(maxSlots)),
	}
	for level, count := range maxSlots {
		t.maxSlots[level] = count
		t.currentSlots[level] = count
	}
	return t
}

// Slots returns the remaining slots at a level.
func (t *SlotTracker) Slots(level int) int {
	return t.currentSlots[level]
}

// MaxSlots returns the maximum slots at a level.
func (t *SlotTracker) MaxSlots(level int) int {
	return t.maxSlots[level]
}

// HasSlot reports whether a slot is available at the level.
func (t *SlotTracker) HasSlot(level int) bool {
	return t.currentSlots[level] > 0
}

// UseSlot consumes a slot at the level. Returns false if none remain.
func (t *SlotTracker) UseSlot(level int) bool {
	if t.currentSlots[level] <= 0 {
		return false
	}
	t.currentSlots[level]--
	return true
}

// RestoreAll refills every slot level to its maximum.
func (t *SlotTracker) RestoreAll() {
	for level, count := range t.maxSlots {
		t.currentSlots[level] = count
	}
}

// HighestAvailableSlot returns the highest level with a slot remaining, or 0.
func (t *SlotTracker) HighestAvailableSlot() int {
	for level := 9; level >= 1; level-- {
		if t.HasSlot(level) {
			return level
		}
	}
	return 0
}

// Spellbook holds a caster's known spells, cantrips, slots, and
// concentration state. It implements the spellcasting capability the combat
// resolver programs against.
type Spellbook struct {
	castingAbility entities.Ability
	knownSpells    map[string]bool
	cantrips       map[string]bool
	slots          *SlotTracker

	// Derived bonuses, set by the owning entity.
	saveDC      int
	attackBonus int
	castingMod  int

	concentratingOn string
}

// NewSpellbook creates a spellbook for the given casting ability with the
// given maximum slots per level.
func NewSpellbook(ability entities.Ability, maxSlots map[int]int) *Spellbook {
	return &Spellbook{
		castingAbility: ability,
		knownSpells:    make(map[string]bool),
		cantrips:       make(map[string]bool),
		slots:          NewSlotTracker(maxSlots),
	}
}

// Learn adds a spell to the book. Cantrips and leveled spells are tracked
// separately. Returns false for unknown spell names.
func (b *Spellbook) Learn(spellName string) bool {
	spell := entities.GetSpell(spellName)
	if spell == nil {
		return false
	}
	key := strings.ToLower(spell.Name)
	if spell.IsCantrip() {
		b.cantrips[key] = true
	} else {
		b.knownSpells[key] = true
	}
	return true
}

// Knows reports whether the spell is in the book.
func (b *Spellbook) Knows(spellName string) bool {
	key := strings.ToLower(spellName)
	return b.knownSpells[key] || b.cantrips[key]
}

// SlotTracker exposes the underlying slot state.
func (b *Spellbook) SlotTracker() *SlotTracker {
	return b.slots
}

// CastingAbility returns the spellcasting ability for this book.
func (b *Spellbook) CastingAbility() entities.Ability {
	return b.castingAbility
}

// CanCast reports whether the spell can be cast using a slot of slotLevel.
// Pass 0 to cast at the spell's own level. Cantrips never consume a slot;
// upcasting is allowed, downcasting is not.
func (b *Spellbook) CanCast(spellName string, slotLevel int) bool {
	spell := entities.GetSpell(spellName)
	if spell == nil {
		return false
	}
	key := strings.ToLower(spell.Name)

	if spell.IsCantrip() {
		return b.cantrips[key]
	}
	if !b.knownSpells[key] {
		return false
	}

	castLevel := slotLevel
	if castLevel == 0 {
		castLevel = spell.Level
	}
	if castLevel < spell.Level {
		return false
	}
	return b.slots.HasSlot(castLevel)
}

// CastSpell consumes the slot and returns the spell. Casting a concentration
// spell replaces any spell currently concentrated on. Returns false when the
// cast is not possible; no state changes in that case.
func (b *Spellbook) CastSpell(spellName string, slotLevel int) (*entities.Spell, bool) {
	if !b.CanCast(spellName, slotLevel) {
		return nil, false
	}
	spell := entities.GetSpell(spellName)

	if !spell.IsCantrip() {
		castLevel := slotLevel
		if castLevel == 0 {
			castLevel = spell.Level
		}
		if !b.slots.UseSlot(castLevel) {
			return nil, false
		}
	}

	if spell.Concentration {
		b.concentratingOn = spell.Name
	}
	return spell, true
}

// BreakConcentration ends concentration and returns the spell name that was
// being concentrated on, or empty.
func (b *Spellbook) BreakConcentration() string {
	spell := b.concentratingOn
	b.concentratingOn = ""
	return spell
}

// ConcentratingOn returns the active concentration spell name, or empty.
func (b *Spellbook) ConcentratingOn() string {
	return b.concentratingOn
}

// SpellSaveDC returns the DC targets roll against for this caster's spells.
func (b *Spellbook) SpellSaveDC() int {
	return b.saveDC
}

// SpellAttackBonus returns the bonus added to this caster's spell attacks.
func (b *Spellbook) SpellAttackBonus() int {
	return b.attackBonus
}

// SpellcastingModifier returns the casting ability modifier alone.
func (b *Spellbook) SpellcastingModifier() int {
	return b.castingMod
}

func (b *Spellbook) setBonuses(proficiencyBonus, abilityModifier int) {
	b.saveDC = 8 + proficiencyBonus + abilityModifier
	b.attackBonus = proficiencyBonus + abilityModifier
	b.castingMod = abilityModifier
}
