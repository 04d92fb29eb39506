package combat

// ActionCost identifies which budget capacity an action spends.
type ActionCost string

// Action cost constants
const (
	CostAction      ActionCost = "action"
	CostBonusAction ActionCost = "bonus_action"
	CostReaction    ActionCost = "reaction"
	CostMovement    ActionCost = "movement"
)

// ActionDescriptor describes an action a combatant could take right now,
// for presentation to the deciding player or AI.
type ActionDescriptor struct {
	Name           string     `json:"name"`
	Cost           ActionCost `json:"cost"`
	Description    string     `json:"description"`
	RequiresTarget bool       `json:"requires_target"`
}

var standardActions = map[string]ActionDescriptor{
	"attack": {
		Name:           "Attack",
		Cost:           CostAction,
		Description:    "Make a weapon attack against a target",
		RequiresTarget: true,
	},
	"cast_spell": {
		Name:           "Cast a Spell",
		Cost:           CostAction,
		Description:    "Cast a spell from your spellbook",
		RequiresTarget: true,
	},
	"dash": {
		Name:        "Dash",
		Cost:        CostAction,
		Description: "Gain your speed as additional movement",
	},
	"disengage": {
		Name:        "Disengage",
		Cost:        CostAction,
		Description: "Your movement doesn't provoke opportunity attacks",
	},
	"dodge": {
		Name:        "Dodge",
		Cost:        CostAction,
		Description: "Attacks against you have disadvantage until your next turn",
	},
	"help": {
		Name:           "Help",
		Cost:           CostAction,
		Description:    "Give an ally advantage on their next attack",
		RequiresTarget: true,
	},
	"hide": {
		Name:        "Hide",
		Cost:        CostAction,
		Description: "Attempt to hide from enemies",
	},
}
