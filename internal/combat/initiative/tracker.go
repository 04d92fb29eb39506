// Package initiative tracks turn order for a combat encounter. Entries sort
// by initiative roll descending with dexterity modifier breaking ties; full
// ties keep insertion order.
package initiative

import (
	"sort"

	"github.com/KirkDiggler/combat-api/internal/pkg/roll"
)

// Entry is one combatant's place in the initiative order.
type Entry struct {
	Name        string
	EntityID    string
	Initiative  int
	DexModifier int
	IsPlayer    bool
	HasActed    bool
}

// Tracker maintains the initiative order, the current-turn pointer, and the
// round counter. It is not safe for concurrent use; the owning encounter
// serializes access.
type Tracker struct {
	roller *roll.Roller

	entries      []*Entry
	currentIndex int
	roundNumber  int
}

// NewTracker creates an empty tracker. A nil roller uses the default dice
// source.
func NewTracker(roller *roll.Roller) *Tracker {
	if roller == nil {
		roller = roll.New(nil)
	}
	return &Tracker{
		roller:      roller,
		roundNumber: 1,
	}
}

// Add rolls initiative (d20 + dex modifier) for a combatant and inserts it
// into the order. Pass a non-nil forced value to skip the roll, for readied
// placements and tests. Returns the initiative value.
func (t *Tracker) Add(name, entityID string, dexModifier int, isPlayer bool, forced *int) (int, error) {
	initiative := 0
	if forced != nil {
		initiative = *forced
	} else {
		result, err := t.roller.Roll(1, 20, dexModifier)
		if err != nil {
			return 0, err
		}
		initiative = result.Total
	}

	t.entries = append(t.entries, &Entry{
		Name:        name,
		EntityID:    entityID,
		Initiative:  initiative,
		DexModifier: dexModifier,
		IsPlayer:    isPlayer,
	})
	t.sortEntries()
	return initiative, nil
}

// Remove drops a combatant from the order, keeping the current-turn pointer
// on the same combatant when possible. Returns false if the ID is unknown.
func (t *Tracker) Remove(entityID string) bool {
	for i, entry := range t.entries {
		if entry.EntityID != entityID {
			continue
		}
		t.entries = append(t.entries[:i], t.entries[i+1:]...)
		if i < t.currentIndex {
			t.currentIndex--
		} else if i == t.currentIndex && t.currentIndex >= len(t.entries) {
			t.currentIndex = 0
		}
		return true
	}
	return false
}

func (t *Tracker) sortEntries() {
	sort.SliceStable(t.entries, func(i, j int) bool {
		if t.entries[i].Initiative != t.entries[j].Initiative {
			return t.entries[i].Initiative > t.entries[j].Initiative
		}
		return t.entries[i].DexModifier > t.entries[j].DexModifier
	})
}

// relocateCurrent re-points currentIndex at the given combatant after a
// re-sort moved entries around.
func (t *Tracker) relocateCurrent(entityID string) {
	for i, entry := range t.entries {
		if entry.EntityID == entityID {
			t.currentIndex = i
			return
		}
	}
}

// Current returns the combatant whose turn it is, or nil when empty.
func (t *Tracker) Current() *Entry {
	if len(t.entries) == 0 {
		return nil
	}
	return t.entries[t.currentIndex]
}

// NextTurn marks the current combatant as having acted and advances the
// pointer. Wrapping past the end starts a new round and clears acted flags.
// Returns the new current combatant, or nil when empty.
func (t *Tracker) NextTurn() *Entry {
	if len(t.entries) == 0 {
		return nil
	}

	t.entries[t.currentIndex].HasActed = true
	t.currentIndex++

	if t.currentIndex >= len(t.entries) {
		t.currentIndex = 0
		t.roundNumber++
		for _, entry := range t.entries {
			entry.HasActed = false
		}
	}
	return t.Current()
}

// Round returns the current round number, starting at 1.
func (t *Tracker) Round() int {
	return t.roundNumber
}

// Order returns the initiative order as a copy; mutating it does not affect
// the tracker.
func (t *Tracker) Order() []Entry {
	order := make([]Entry, len(t.entries))
	for i, entry := range t.entries {
		order[i] = *entry
	}
	return order
}

// Entry returns the entry for an entity ID, or nil.
func (t *Tracker) Entry(entityID string) *Entry {
	for _, entry := range t.entries {
		if entry.EntityID == entityID {
			return entry
		}
	}
	return nil
}

// SetInitiative changes a combatant's initiative and re-sorts, keeping the
// current-turn pointer on the same combatant. Returns false if the ID is
// unknown.
func (t *Tracker) SetInitiative(entityID string, initiative int) bool {
	entry := t.Entry(entityID)
	if entry == nil {
		return false
	}

	currentID := ""
	if current := t.Current(); current != nil {
		currentID = current.EntityID
	}

	entry.Initiative = initiative
	t.sortEntries()
	if currentID != "" {
		t.relocateCurrent(currentID)
	}
	return true
}

// DelayTurn moves a combatant later in the order. The new initiative must be
// strictly lower than the current one.
func (t *Tracker) DelayTurn(entityID string, initiative int) bool {
	entry := t.Entry(entityID)
	if entry == nil || initiative >= entry.Initiative {
		return false
	}
	return t.SetInitiative(entityID, initiative)
}

// ReadyAction marks a combatant as having acted without advancing the turn.
func (t *Tracker) ReadyAction(entityID string) bool {
	entry := t.Entry(entityID)
	if entry == nil {
		return false
	}
	entry.HasActed = true
	return true
}

// IsPlayersTurn reports whether the current combatant is player-controlled.
func (t *Tracker) IsPlayersTurn() bool {
	current := t.Current()
	return current != nil && current.IsPlayer
}

// Remaining returns entries that have not acted this round. Pass a non-nil
// isPlayer to filter by side.
func (t *Tracker) Remaining(isPlayer *bool) []Entry {
	var remaining []Entry
	for _, entry := range t.entries {
		if entry.HasActed {
			continue
		}
		if isPlayer != nil && entry.IsPlayer != *isPlayer {
			continue
		}
		remaining = append(remaining, *entry)
	}
	return remaining
}

// Reset clears the tracker for a new encounter.
func (t *Tracker) Reset() {
	t.entries = nil
	t.currentIndex = 0
	t.roundNumber = 1
}

// EntryData is the serializable form of an Entry.
type EntryData struct {
	Name        string `json:"name"`
	EntityID    string `json:"entity_id"`
	Initiative  int    `json:"initiative"`
	DexModifier int    `json:"dex_modifier"`
	IsPlayer    bool   `json:"is_player"`
	HasActed    bool   `json:"has_acted"`
}

// Data is the serializable form of a Tracker.
type Data struct {
	Entries      []EntryData `json:"entries"`
	CurrentIndex int         `json:"current_index"`
	RoundNumber  int         `json:"round_number"`
}

// ToData snapshots the tracker state.
func (t *Tracker) ToData() *Data {
	data := &Data{
		Entries:      make([]EntryData, len(t.entries)),
		CurrentIndex: t.currentIndex,
		RoundNumber:  t.roundNumber,
	}
	for i, entry := range t.entries {
		data.Entries[i] = EntryData(*entry)
	}
	return data
}

// FromData rebuilds a tracker from a snapshot.
func FromData(data *Data, roller *roll.Roller) *Tracker {
	t := NewTracker(roller)
	if data == nil {
		return t
	}
	t.currentIndex = data.CurrentIndex
	t.roundNumber = data.RoundNumber
	for _, entryData := range data.Entries {
		entry := Entry(entryData)
		t.entries = append(t.entries, &entry)
	}
	return t
}
