// Package combat implements the encounter resolver: a single-writer state
// machine that sequences turns, enforces the per-turn action budget, and
// resolves attacks, spells, and defensive actions against combatant
// entities. The resolver is not safe for concurrent use; the host loop owns
// an Encounter and serializes access to it.
package combat

import (
	"fmt"

	"github.com/KirkDiggler/combat-api/internal/combat/economy"
	"github.com/KirkDiggler/combat-api/internal/combat/initiative"
	"github.com/KirkDiggler/combat-api/internal/entities"
	"github.com/KirkDiggler/combat-api/internal/errors"
	"github.com/KirkDiggler/combat-api/internal/pkg/roll"
)

// State is the encounter lifecycle state.
type State string

// Encounter lifecycle states. RollingInitiative is reserved for a future
// interactive-roll flow; the current flow rolls on registration.
const (
	StateNotStarted        State = "not_started"
	StateRollingInitiative State = "rolling_initiative"
	StateInProgress        State = "in_progress"
	StateVictory           State = "victory"
	StateDefeat            State = "defeat"
	StateFled              State = "fled"
)

// Terminal reports whether the state is absorbing.
func (s State) Terminal() bool {
	return s == StateVictory || s == StateDefeat || s == StateFled
}

// Encounter drives one combat from registration to a terminal outcome.
type Encounter struct {
	state      State
	tracker    *initiative.Tracker
	combatants map[string]*Combatant
	combatLog  []string
	turnNumber int
	roller     *roll.Roller
}

// NewEncounter creates an empty encounter. A nil roller uses the default
// dice source; tests inject a scripted one.
func NewEncounter(roller *roll.Roller) *Encounter {
	if roller == nil {
		roller = roll.New(nil)
	}
	return &Encounter{
		state:      StateNotStarted,
		tracker:    initiative.NewTracker(roller),
		combatants: make(map[string]*Combatant),
		roller:     roller,
	}
}

// State returns the lifecycle state.
func (e *Encounter) State() State { return e.state }

// Round returns the current round number.
func (e *Encounter) Round() int { return e.tracker.Round() }

// TurnNumber returns the count of turns begun so far.
func (e *Encounter) TurnNumber() int { return e.turnNumber }

// Log returns the append-only combat log.
func (e *Encounter) Log() []string {
	log := make([]string, len(e.combatLog))
	copy(log, e.combatLog)
	return log
}

// TurnOrder returns the initiative order.
func (e *Encounter) TurnOrder() []initiative.Entry {
	return e.tracker.Order()
}

// Combatant returns the combatant for an entity ID, or nil.
func (e *Encounter) Combatant(entityID string) *Combatant {
	return e.combatants[entityID]
}

// AddCombatant registers an entity on a side and rolls its initiative.
// Pass a non-nil forcedInitiative to skip the roll. Registration is only
// allowed before the encounter starts.
func (e *Encounter) AddCombatant(entity entities.CombatEntity, isPlayer bool, forcedInitiative *int) (int, error) {
	if e.state != StateNotStarted {
		return 0, errors.FailedPrecondition("combatants can only be added before combat starts")
	}
	if entity == nil {
		return 0, errors.InvalidArgument("entity is required")
	}
	if _, exists := e.combatants[entity.GetID()]; exists {
		return 0, errors.AlreadyExistsf("combatant %s already registered", entity.GetID())
	}

	combatant := newCombatant(entity, isPlayer)
	e.combatants[entity.GetID()] = combatant

	rolled, err := e.tracker.Add(entity.Name(), entity.GetID(), entity.DexModifier(), isPlayer, forcedInitiative)
	if err != nil {
		delete(e.combatants, entity.GetID())
		return 0, errors.Wrap(err, "failed to roll initiative")
	}

	e.log(fmt.Sprintf("%s rolls initiative: %d", entity.Name(), rolled))
	return rolled, nil
}

// Start transitions to IN_PROGRESS and begins the first turn.
func (e *Encounter) Start() error {
	if e.state != StateNotStarted {
		return errors.FailedPreconditionf("cannot start combat from state %s", e.state)
	}
	if len(e.combatants) == 0 {
		return errors.FailedPrecondition("cannot start combat with no combatants")
	}

	e.state = StateInProgress
	e.log("=== COMBAT BEGINS ===")

	if current := e.Current(); current != nil {
		e.beginTurn(current)
	}
	return nil
}

// Current returns the combatant whose turn it is, or nil.
func (e *Encounter) Current() *Combatant {
	entry := e.tracker.Current()
	if entry == nil {
		return nil
	}
	return e.combatants[entry.EntityID]
}

// NextTurn checks for termination, then advances to the next combatant and
// resets its budget and turn flags. Unconscious hostiles are skipped;
// unconscious allies are returned so the caller can resolve a death save.
// Returns nil when combat has ended.
func (e *Encounter) NextTurn() *Combatant {
	if e.state != StateInProgress {
		return nil
	}
	if e.checkEnd() {
		return nil
	}

	// Bounded by the roster size so a fully unconscious hostile side
	// cannot spin forever.
	for range e.combatants {
		e.tracker.NextTurn()
		current := e.Current()
		if current == nil {
			return nil
		}

		e.beginTurn(current)
		if current.IsConscious() {
			return current
		}
		if current.IsPlayer {
			e.log(fmt.Sprintf("%s is unconscious and must make a death saving throw.", current.Name()))
			return current
		}
	}
	return e.Current()
}

// beginTurn resets the combatant's budget and transient flags for a fresh
// turn.
func (e *Encounter) beginTurn(combatant *Combatant) {
	e.turnNumber++
	combatant.Budget.BeginTurn(combatant.Entity.Speed(), combatant.Entity.ExtraAttacksPerTurn())
	combatant.Dodging = false
	combatant.HelpedBy = ""

	e.log(fmt.Sprintf("--- %s's Turn (Round %d) ---", combatant.Name(), e.tracker.Round()))
}

// checkEnd transitions to VICTORY or DEFEAT when one side has no living
// combatants. Returns true if combat is over.
func (e *Encounter) checkEnd() bool {
	playersAlive := false
	enemiesAlive := false
	for _, c := range e.combatants {
		if !c.IsAlive() {
			continue
		}
		if c.IsPlayer {
			playersAlive = true
		} else {
			enemiesAlive = true
		}
	}

	if !enemiesAlive {
		e.state = StateVictory
		e.log("=== VICTORY! ===")
		return true
	}
	if !playersAlive {
		e.state = StateDefeat
		e.log("=== DEFEAT ===")
		return true
	}
	return false
}

// End forces the encounter out of IN_PROGRESS, recording the reason. The
// resulting state is FLED. Terminal states are unaffected.
func (e *Encounter) End(reason string) {
	if e.state == StateInProgress {
		e.state = StateFled
	}
	if reason == "" {
		reason = "Combat ended"
	}
	e.log(fmt.Sprintf("=== %s ===", reason))
}

// Attack resolves a weapon attack. It spends the primary action first,
// falling back to an extra-attack charge. Advantage and disadvantage do not
// stack and cancel when both apply. A natural 1 always misses; a natural 20
// always hits and doubles the damage dice (modifier applied once).
func (e *Encounter) Attack(attackerID, targetID, weapon string) *ActionResult {
	if e.state != StateInProgress {
		return failure("combat is not in progress")
	}

	attacker := e.combatants[attackerID]
	target := e.combatants[targetID]
	if attacker == nil || target == nil {
		return failure("invalid attacker or target")
	}

	if !attacker.Budget.UseAction() && !attacker.Budget.UseExtraAttack() {
		return failure("no attacks remaining")
	}

	weaponData := entities.WeaponData(weapon)
	damageDice := weaponData.Damage
	damageType := weaponData.DamageType
	weaponName := weapon
	if weapon == "" {
		weaponName = "unarmed strike"
		if natural, ok := attacker.Entity.(entities.NaturalAttacker); ok {
			if dice, dmgType := natural.NaturalWeapon(); dice != "" {
				damageDice = dice
				damageType = dmgType
				weaponName = "natural weapons"
			}
		}
	}
	attackBonus := attacker.Entity.AttackBonus(weapon)

	advantage := false
	disadvantage := false
	if target.Dodging && target.IsConscious() {
		disadvantage = true
	}
	if attacker.HelpedBy != "" {
		advantage = true
	}
	if attacker.Hidden {
		advantage = true
		attacker.Hidden = false
	}
	if attacker.Entity.HasCondition(entities.ConditionProne) {
		disadvantage = true
	}
	if target.Entity.HasCondition(entities.ConditionProne) ||
		target.Entity.HasCondition(entities.ConditionParalyzed) ||
		target.Entity.HasCondition(entities.ConditionStunned) {
		advantage = true
	}

	attackRoll, rollStr, err := e.rollD20(advantage, disadvantage)
	if err != nil {
		return failure(fmt.Sprintf("dice roll failed: %v", err))
	}

	totalAttack := attackRoll + attackBonus
	isCrit := attackRoll == 20
	isMiss := attackRoll == 1
	targetAC := target.Entity.ArmorClass()

	result := &ActionResult{
		RollDetails: map[string]any{
			"attack_roll":  attackRoll,
			"attack_bonus": attackBonus,
			"total":        totalAttack,
			"target_ac":    targetAC,
		},
	}

	if isMiss {
		result.Description = fmt.Sprintf("%s attacks %s with %s: %s+%d=%d - CRITICAL MISS!",
			attacker.Name(), target.Name(), weaponName, rollStr, attackBonus, totalAttack)
		e.log(result.Description)
		return result
	}
	if !isCrit && totalAttack < targetAC {
		result.Description = fmt.Sprintf("%s attacks %s with %s: %s+%d=%d vs AC %d - MISS",
			attacker.Name(), target.Name(), weaponName, rollStr, attackBonus, totalAttack, targetAC)
		e.log(result.Description)
		return result
	}

	result.Success = true
	result.Critical = isCrit

	damageTotal, err := e.rollDamage(damageDice, isCrit)
	if err != nil {
		return failure(fmt.Sprintf("dice roll failed: %v", err))
	}
	damageTotal += attacker.Entity.DamageBonus(weapon)
	damageTotal = max(0, damageTotal)

	damageResult := target.Entity.ApplyDamage(damageTotal)
	result.DamageDealt = damageResult.DamageTaken
	result.DamageType = damageType
	result.TargetID = targetID

	critStr := ""
	if isCrit {
		critStr = " CRITICAL HIT!"
	}
	result.Description = fmt.Sprintf("%s attacks %s with %s: %s+%d=%d vs AC %d - HIT!%s %d %s damage",
		attacker.Name(), target.Name(), weaponName, rollStr, attackBonus, totalAttack, targetAC,
		critStr, damageTotal, damageType)

	e.appendDamageOutcome(result, target, damageResult)
	e.log(result.Description)
	return result
}

// rollD20 rolls the attack die honoring advantage and disadvantage.
// Advantage and disadvantage cancel rather than stack.
func (e *Encounter) rollD20(advantage, disadvantage bool) (value int, rollStr string, err error) {
	switch {
	case advantage && !disadvantage:
		kept, first, second, err := e.roller.D20Advantage()
		return kept, fmt.Sprintf("(adv: %d, %d)", first, second), err
	case disadvantage && !advantage:
		kept, first, second, err := e.roller.D20Disadvantage()
		return kept, fmt.Sprintf("(dis: %d, %d)", first, second), err
	default:
		value, err := e.roller.D20()
		return value, fmt.Sprintf("(%d)", value), err
	}
}

// rollDamage rolls damage dice, doubling the dice (not the modifier) on a
// critical.
func (e *Encounter) rollDamage(notation string, critical bool) (int, error) {
	result, err := e.roller.RollNotation(notation)
	if err != nil {
		return 0, err
	}
	total := result.Total
	if critical {
		critResult, err := e.roller.RollNotation(notation)
		if err != nil {
			return 0, err
		}
		total += critResult.Total
	}
	return total, nil
}

func (e *Encounter) appendDamageOutcome(result *ActionResult, target *Combatant, damage entities.DamageResult) {
	if damage.KnockedUnconscious {
		result.Description += fmt.Sprintf(" - %s falls unconscious!", target.Name())
	}
	if damage.InstantDeath {
		result.Description += fmt.Sprintf(" - %s is killed instantly!", target.Name())
	}
}

// CastSpell resolves a spell cast. The caster's own can-cast check runs
// before any action-economy cost is charged; a failed economy spend aborts
// with no slot consumed. slotLevel 0 casts at the spell's own level.
func (e *Encounter) CastSpell(casterID, spellName, targetID string, slotLevel int) *ActionResult {
	if e.state != StateInProgress {
		return failure("combat is not in progress")
	}

	caster := e.combatants[casterID]
	if caster == nil {
		return failure("invalid caster")
	}
	spellcaster := caster.Spellcaster()
	if spellcaster == nil {
		return failure(fmt.Sprintf("%s cannot cast spells", caster.Name()))
	}

	spell := entities.GetSpell(spellName)
	if spell == nil {
		return failure(fmt.Sprintf("unknown spell: %s", spellName))
	}
	if !spellcaster.CanCast(spellName, slotLevel) {
		return failure(fmt.Sprintf("%s cannot cast %s", caster.Name(), spell.Name))
	}
	if targetID != "" && e.combatants[targetID] == nil {
		return failure(fmt.Sprintf("unknown target: %s", targetID))
	}

	switch spell.CastingTime {
	case entities.CastingTimeAction:
		if !caster.Budget.UseAction() {
			return failure("no action available")
		}
	case entities.CastingTimeBonusAction:
		if !caster.Budget.UseBonusAction() {
			return failure("no bonus action available")
		}
	case entities.CastingTimeReaction:
		if !caster.Budget.UseReaction() {
			return failure("no reaction available")
		}
	}

	castSpell, ok := spellcaster.CastSpell(spellName, slotLevel)
	if !ok {
		return failure(fmt.Sprintf("failed to cast %s", spell.Name))
	}

	slotUsed := slotLevel
	if slotUsed == 0 {
		slotUsed = castSpell.Level
	}

	result := &ActionResult{
		Success:     true,
		Description: fmt.Sprintf("%s casts %s", caster.Name(), castSpell.Name),
		SpellUsed:   castSpell.Name,
		SlotUsed:    slotUsed,
	}

	switch {
	case castSpell.IsHealing() && targetID != "":
		e.resolveHealingSpell(result, caster, spellcaster, castSpell, targetID)
	case castSpell.DamageDice != "" && targetID != "":
		if castSpell.RequiresSave() {
			e.resolveSaveSpell(result, caster, spellcaster, castSpell, targetID)
		} else {
			e.resolveSpellAttack(result, caster, spellcaster, castSpell, targetID)
		}
	}

	e.log(result.Description)
	return result
}

func (e *Encounter) resolveHealingSpell(result *ActionResult, caster *Combatant, spellcaster entities.Spellcaster, spell *entities.Spell, targetID string) {
	target := e.combatants[targetID]

	healRoll, err := e.roller.RollNotation(spell.HealingDice)
	if err != nil {
		result.Description += " (dice roll failed)"
		return
	}
	amount := healRoll.Total
	if spell.AddCastingModifier {
		amount += spellcaster.SpellcastingModifier()
	}
	amount = max(0, amount)

	healed := target.Entity.Heal(amount)
	result.HealingDone = healed
	result.TargetID = targetID
	result.RollDetails = map[string]any{"healing_roll": healRoll.Total}
	result.Description = fmt.Sprintf("%s casts %s on %s, healing %d HP",
		caster.Name(), spell.Name, target.Name(), healed)
}

func (e *Encounter) resolveSaveSpell(result *ActionResult, caster *Combatant, spellcaster entities.Spellcaster, spell *entities.Spell, targetID string) {
	target := e.combatants[targetID]

	saveDC := spellcaster.SpellSaveDC()
	saveMod := target.Entity.SaveModifier(spell.SaveAbility)

	saveRoll, err := e.roller.D20()
	if err != nil {
		result.Description += " (dice roll failed)"
		return
	}
	saved := saveRoll+saveMod >= saveDC

	damageTotal, err := e.rollDamage(spell.DamageDice, false)
	if err != nil {
		result.Description += " (dice roll failed)"
		return
	}
	if saved {
		// Half damage on save, rounded down.
		damageTotal /= 2
	}

	damageResult := target.Entity.ApplyDamage(damageTotal)
	result.DamageDealt = damageResult.DamageTaken
	result.DamageType = spell.DamageType
	result.TargetID = targetID
	result.RollDetails = map[string]any{
		"save_roll": saveRoll,
		"save_mod":  saveMod,
		"save_dc":   saveDC,
		"saved":     saved,
	}

	saveStr := "fails"
	if saved {
		saveStr = "saves"
	}
	result.Description = fmt.Sprintf("%s casts %s on %s. %s %s (DC %d). %d %s damage",
		caster.Name(), spell.Name, target.Name(), target.Name(), saveStr, saveDC,
		damageTotal, spell.DamageType)
	e.appendDamageOutcome(result, target, damageResult)
}

func (e *Encounter) resolveSpellAttack(result *ActionResult, caster *Combatant, spellcaster entities.Spellcaster, spell *entities.Spell, targetID string) {
	target := e.combatants[targetID]

	attackBonus := spellcaster.SpellAttackBonus()
	attackRoll, err := e.roller.D20()
	if err != nil {
		result.Description += " (dice roll failed)"
		return
	}

	total := attackRoll + attackBonus
	targetAC := target.Entity.ArmorClass()
	isCrit := attackRoll == 20
	isMiss := attackRoll == 1

	result.RollDetails = map[string]any{
		"attack_roll":  attackRoll,
		"attack_bonus": attackBonus,
		"total":        total,
		"target_ac":    targetAC,
	}

	if isMiss || (!isCrit && total < targetAC) {
		result.Success = false
		result.Description = fmt.Sprintf("%s casts %s at %s: %d+%d=%d vs AC %d - MISS",
			caster.Name(), spell.Name, target.Name(), attackRoll, attackBonus, total, targetAC)
		return
	}

	result.Critical = isCrit
	damageTotal, err := e.rollDamage(spell.DamageDice, isCrit)
	if err != nil {
		result.Description += " (dice roll failed)"
		return
	}

	damageResult := target.Entity.ApplyDamage(damageTotal)
	result.DamageDealt = damageResult.DamageTaken
	result.DamageType = spell.DamageType
	result.TargetID = targetID

	critStr := ""
	if isCrit {
		critStr = " CRITICAL HIT!"
	}
	result.Description = fmt.Sprintf("%s casts %s at %s: %d+%d=%d vs AC %d - HIT!%s %d %s damage",
		caster.Name(), spell.Name, target.Name(), attackRoll, attackBonus, total, targetAC,
		critStr, damageTotal, spell.DamageType)
	e.appendDamageOutcome(result, target, damageResult)
}

// BreakConcentration explicitly ends a caster's concentration. Returns the
// dropped spell name in SpellUsed.
func (e *Encounter) BreakConcentration(combatantID string) *ActionResult {
	if e.state != StateInProgress {
		return failure("combat is not in progress")
	}

	combatant := e.combatants[combatantID]
	if combatant == nil {
		return failure("invalid combatant")
	}
	spellcaster := combatant.Spellcaster()
	if spellcaster == nil {
		return failure(fmt.Sprintf("%s cannot cast spells", combatant.Name()))
	}

	broken := spellcaster.BreakConcentration()
	if broken == "" {
		return failure(fmt.Sprintf("%s is not concentrating on a spell", combatant.Name()))
	}

	result := &ActionResult{
		Success:     true,
		Description: fmt.Sprintf("%s stops concentrating on %s", combatant.Name(), broken),
		SpellUsed:   broken,
	}
	e.log(result.Description)
	return result
}

// Dodge spends the primary action; attacks against the dodger have
// disadvantage until the start of its next turn.
func (e *Encounter) Dodge(combatantID string) *ActionResult {
	if e.state != StateInProgress {
		return failure("combat is not in progress")
	}

	combatant := e.combatants[combatantID]
	if combatant == nil {
		return failure("invalid combatant")
	}
	if !combatant.Budget.UseAction() {
		return failure("no action available")
	}

	combatant.Dodging = true
	result := &ActionResult{
		Success:     true,
		Description: fmt.Sprintf("%s takes the Dodge action. Attacks against them have disadvantage.", combatant.Name()),
	}
	e.log(result.Description)
	return result
}

// Dash adds the combatant's full speed to remaining movement. Costs the
// primary action, or the bonus action when bonusAction is true.
func (e *Encounter) Dash(combatantID string, bonusAction bool) *ActionResult {
	if e.state != StateInProgress {
		return failure("combat is not in progress")
	}

	combatant := e.combatants[combatantID]
	if combatant == nil {
		return failure("invalid combatant")
	}
	if !e.spendActionOrBonus(combatant, bonusAction) {
		return failure(noCapacityDescription(bonusAction))
	}

	combatant.Budget.AddMovement(combatant.Entity.Speed())
	result := &ActionResult{
		Success: true,
		Description: fmt.Sprintf("%s Dashes! Movement increased to %d ft.",
			combatant.Name(), combatant.Budget.MovementRemaining()),
	}
	e.log(result.Description)
	return result
}

// Disengage marks movement as safe from opportunity attacks. Costs the
// primary action, or the bonus action when bonusAction is true.
func (e *Encounter) Disengage(combatantID string, bonusAction bool) *ActionResult {
	if e.state != StateInProgress {
		return failure("combat is not in progress")
	}

	combatant := e.combatants[combatantID]
	if combatant == nil {
		return failure("invalid combatant")
	}
	if !e.spendActionOrBonus(combatant, bonusAction) {
		return failure(noCapacityDescription(bonusAction))
	}

	result := &ActionResult{
		Success:     true,
		Description: fmt.Sprintf("%s Disengages. Movement won't provoke opportunity attacks.", combatant.Name()),
	}
	e.log(result.Description)
	return result
}

func (e *Encounter) spendActionOrBonus(combatant *Combatant, bonusAction bool) bool {
	if bonusAction {
		return combatant.Budget.UseBonusAction()
	}
	return combatant.Budget.UseAction()
}

func noCapacityDescription(bonusAction bool) string {
	if bonusAction {
		return "no bonus action available"
	}
	return "no action available"
}

// Help spends the helper's primary action to grant the target advantage on
// its next attack. The flag does not stack; it clears at the start of the
// target's own turn.
func (e *Encounter) Help(helperID, targetID string) *ActionResult {
	if e.state != StateInProgress {
		return failure("combat is not in progress")
	}

	helper := e.combatants[helperID]
	target := e.combatants[targetID]
	if helper == nil || target == nil {
		return failure("invalid helper or target")
	}
	if !helper.Budget.UseAction() {
		return failure("no action available")
	}

	target.HelpedBy = helperID
	result := &ActionResult{
		Success:     true,
		Description: fmt.Sprintf("%s helps %s. Their next attack has advantage.", helper.Name(), target.Name()),
	}
	e.log(result.Description)
	return result
}

// Hide spends the primary action to hide; the next attack made while hidden
// has advantage and reveals the attacker.
func (e *Encounter) Hide(combatantID string) *ActionResult {
	if e.state != StateInProgress {
		return failure("combat is not in progress")
	}

	combatant := e.combatants[combatantID]
	if combatant == nil {
		return failure("invalid combatant")
	}
	if !combatant.Budget.UseAction() {
		return failure("no action available")
	}

	combatant.Hidden = true
	result := &ActionResult{
		Success:     true,
		Description: fmt.Sprintf("%s hides.", combatant.Name()),
	}
	e.log(result.Description)
	return result
}

// DeathSave rolls one death saving throw for an unconscious combatant.
func (e *Encounter) DeathSave(combatantID string) *ActionResult {
	if e.state != StateInProgress {
		return failure("combat is not in progress")
	}

	combatant := e.combatants[combatantID]
	if combatant == nil {
		return failure("invalid combatant")
	}
	if combatant.IsConscious() {
		return failure(fmt.Sprintf("%s is not unconscious", combatant.Name()))
	}
	if !combatant.IsAlive() {
		return failure(fmt.Sprintf("%s is already dead", combatant.Name()))
	}

	rolled, err := e.roller.D20()
	if err != nil {
		return failure(fmt.Sprintf("dice roll failed: %v", err))
	}
	saveResult := combatant.Entity.ApplyDeathSave(rolled)

	result := &ActionResult{
		Success:     saveResult.Success,
		Description: fmt.Sprintf("%s makes a death save: %d", combatant.Name(), rolled),
		RollDetails: map[string]any{"roll": rolled},
	}

	switch {
	case saveResult.Revived:
		result.Description += fmt.Sprintf(" - Natural 20! %s regains 1 HP!", combatant.Name())
	case saveResult.Stabilized:
		result.Description += " - Stabilized! (3 successes)"
	case saveResult.Died:
		result.Description += fmt.Sprintf(" - %s has died. (3 failures)", combatant.Name())
	default:
		outcome := "Failure"
		if saveResult.Success {
			outcome = "Success"
		}
		result.Description += fmt.Sprintf(" - %s", outcome)
	}

	e.log(result.Description)
	return result
}

// AvailableActions lists the actions the combatant's remaining budget
// allows.
func (e *Encounter) AvailableActions(combatantID string) []ActionDescriptor {
	combatant := e.combatants[combatantID]
	if combatant == nil {
		return nil
	}

	var actions []ActionDescriptor
	budget := combatant.Budget

	if budget.ActionAvailable() || budget.ExtraAttacks() > 0 {
		actions = append(actions, standardActions["attack"])
	}
	if budget.ActionAvailable() {
		if combatant.Spellcaster() != nil {
			actions = append(actions, standardActions["cast_spell"])
		}
		actions = append(actions,
			standardActions["dash"],
			standardActions["disengage"],
			standardActions["dodge"],
			standardActions["help"],
			standardActions["hide"],
		)
	}
	return actions
}

// ValidTargets lists living combatants on the hostile side, or on the same
// side when friendly is true. The asking combatant is never included.
func (e *Encounter) ValidTargets(combatantID string, friendly bool) []*Combatant {
	combatant := e.combatants[combatantID]
	if combatant == nil {
		return nil
	}

	var targets []*Combatant
	for _, entry := range e.tracker.Order() {
		c := e.combatants[entry.EntityID]
		if c == nil || c.EntityID == combatantID || !c.IsAlive() {
			continue
		}
		if friendly == (c.IsPlayer == combatant.IsPlayer) {
			targets = append(targets, c)
		}
	}
	return targets
}

func (e *Encounter) log(message string) {
	e.combatLog = append(e.combatLog, message)
}

// EncounterData is the serializable snapshot of an encounter: lifecycle
// state, turn order, per-combatant budget and flags, and the log. Wrapped
// entities are persisted by their own owners and re-supplied on restore.
type EncounterData struct {
	State      State                     `json:"state"`
	Initiative *initiative.Data          `json:"initiative"`
	Combatants map[string]*CombatantData `json:"combatants"`
	CombatLog  []string                  `json:"combat_log"`
	TurnNumber int                       `json:"turn_number"`
}

// ToData snapshots the encounter.
func (e *Encounter) ToData() *EncounterData {
	data := &EncounterData{
		State:      e.state,
		Initiative: e.tracker.ToData(),
		Combatants: make(map[string]*CombatantData, len(e.combatants)),
		CombatLog:  e.Log(),
		TurnNumber: e.turnNumber,
	}
	for id, combatant := range e.combatants {
		data.Combatants[id] = combatant.ToData()
	}
	return data
}

// Restore rebuilds an encounter from a snapshot, reattaching the supplied
// entities by ID. Every combatant in the snapshot must have its entity
// present.
func Restore(data *EncounterData, ents map[string]entities.CombatEntity, roller *roll.Roller) (*Encounter, error) {
	if data == nil {
		return nil, errors.InvalidArgument("snapshot is required")
	}
	if roller == nil {
		roller = roll.New(nil)
	}

	e := &Encounter{
		state:      data.State,
		tracker:    initiative.FromData(data.Initiative, roller),
		combatants: make(map[string]*Combatant, len(data.Combatants)),
		combatLog:  append([]string(nil), data.CombatLog...),
		turnNumber: data.TurnNumber,
		roller:     roller,
	}

	for id, combatantData := range data.Combatants {
		entity, ok := ents[id]
		if !ok {
			return nil, errors.InvalidArgumentf("missing entity for combatant %s", id)
		}
		e.combatants[id] = &Combatant{
			Entity:        entity,
			EntityID:      id,
			IsPlayer:      combatantData.IsPlayer,
			Budget:        economy.FromData(combatantData.Budget),
			Dodging:       combatantData.Dodging,
			Hidden:        combatantData.Hidden,
			HelpedBy:      combatantData.HelpedBy,
			ReadiedAction: combatantData.ReadiedAction,
		}
	}
	return e, nil
}
