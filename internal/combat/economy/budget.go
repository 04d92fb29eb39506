// Package economy tracks the per-turn action budget: one action, one bonus
// action, one reaction, a movement allowance, and any extra attacks granted
// by class features.
package economy

// Budget holds what a combatant can still do this turn. Spend methods
// return false without mutating when the resource is gone.
type Budget struct {
	actionAvailable      bool
	bonusActionAvailable bool
	reactionAvailable    bool
	movementRemaining    int
	extraAttacks         int
}

// New creates a budget with action, bonus action, and reaction available and
// no movement. Call BeginTurn to grant movement and extra attacks.
func New() *Budget {
	return &Budget{
		actionAvailable:      true,
		bonusActionAvailable: true,
		reactionAvailable:    true,
	}
}

// BeginTurn resets the budget for a new turn: all three action slots refresh
// and movement is set from speed. Extra attacks come from the combatant's
// class features.
func (b *Budget) BeginTurn(speed, extraAttacks int) {
	b.actionAvailable = true
	b.bonusActionAvailable = true
	b.reactionAvailable = true
	b.movementRemaining = speed
	b.extraAttacks = extraAttacks
}

// ResetReaction refreshes only the reaction, for use when the reaction
// refreshes off-turn.
func (b *Budget) ResetReaction() {
	b.reactionAvailable = true
}

// AddMovement grants additional movement this turn, as the Dash action does.
func (b *Budget) AddMovement(feet int) {
	b.movementRemaining += feet
}

// ActionAvailable reports whether the action is unspent.
func (b *Budget) ActionAvailable() bool { return b.actionAvailable }

// BonusActionAvailable reports whether the bonus action is unspent.
func (b *Budget) BonusActionAvailable() bool { return b.bonusActionAvailable }

// ReactionAvailable reports whether the reaction is unspent.
func (b *Budget) ReactionAvailable() bool { return b.reactionAvailable }

// MovementRemaining returns remaining movement in feet.
func (b *Budget) MovementRemaining() int { return b.movementRemaining }

// ExtraAttacks returns remaining feature-granted attacks.
func (b *Budget) ExtraAttacks() int { return b.extraAttacks }

// UseAction spends the action.
func (b *Budget) UseAction() bool {
	if !b.actionAvailable {
		return false
	}
	b.actionAvailable = false
	return true
}

// UseBonusAction spends the bonus action.
func (b *Budget) UseBonusAction() bool {
	if !b.bonusActionAvailable {
		return false
	}
	b.bonusActionAvailable = false
	return true
}

// UseReaction spends the reaction.
func (b *Budget) UseReaction() bool {
	if !b.reactionAvailable {
		return false
	}
	b.reactionAvailable = false
	return true
}

// UseExtraAttack spends one feature-granted attack.
func (b *Budget) UseExtraAttack() bool {
	if b.extraAttacks <= 0 {
		return false
	}
	b.extraAttacks--
	return true
}

// UseMovement spends feet of movement. Fails without spending when the
// remaining allowance is short.
func (b *Budget) UseMovement(feet int) bool {
	if feet > b.movementRemaining {
		return false
	}
	b.movementRemaining -= feet
	return true
}

// Data is the serializable form of a Budget.
type Data struct {
	ActionAvailable      bool `json:"action_available"`
	BonusActionAvailable bool `json:"bonus_action_available"`
	ReactionAvailable    bool `json:"reaction_available"`
	MovementRemaining    int  `json:"movement_remaining"`
	ExtraAttacks         int  `json:"extra_attacks"`
}

// ToData snapshots the budget state.
func (b *Budget) ToData() *Data {
	return &Data{
		ActionAvailable:      b.actionAvailable,
		BonusActionAvailable: b.bonusActionAvailable,
		ReactionAvailable:    b.reactionAvailable,
		MovementRemaining:    b.movementRemaining,
		ExtraAttacks:         b.extraAttacks,
	}
}

// FromData rebuilds a budget from a snapshot.
func FromData(data *Data) *Budget {
	if data == nil {
		return New()
	}
	return &Budget{
		actionAvailable:      data.ActionAvailable,
		bonusActionAvailable: data.BonusActionAvailable,
		reactionAvailable:    data.ReactionAvailable,
		movementRemaining:    data.MovementRemaining,
		extraAttacks:         data.ExtraAttacks,
	}
}
