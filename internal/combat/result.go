package combat

// ActionResult is the uniform return value of every encounter operation.
// Success is false on any precondition violation; Description explains the
// outcome either way. RollDetails carries the raw rolls for auditability.
type ActionResult struct {
	Success           bool           `json:"success"`
	Description       string         `json:"description"`
	DamageDealt       int            `json:"damage_dealt,omitempty"`
	DamageType        string         `json:"damage_type,omitempty"`
	HealingDone       int            `json:"healing_done,omitempty"`
	TargetID          string         `json:"target_id,omitempty"`
	ConditionsApplied []string       `json:"conditions_applied,omitempty"`
	ConditionsRemoved []string       `json:"conditions_removed,omitempty"`
	SpellUsed         string         `json:"spell_used,omitempty"`
	SlotUsed          int            `json:"slot_used,omitempty"`
	Critical          bool           `json:"critical,omitempty"`
	RollDetails       map[string]any `json:"roll_details,omitempty"`
}

func failure(description string) *ActionResult {
	return &ActionResult{Description: description}
}
