// Package roll provides dice rolling utilities built on the rpg-toolkit roller contract
package roll

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/combat-api/internal/errors"
)

// Regex for parsing dice notation like "2d6", "1d20+5", "4d6-1"
var notationRegex = regexp.MustCompile(`^(\d*)d(\d+)([+-]\d+)?$`)

// Result holds the outcome of a dice roll
type Result struct {
	Total    int   `json:"total"`
	Rolls    []int `json:"rolls"`
	Modifier int   `json:"modifier"`
}

// Roller rolls dice through an injected dice source so tests can
// substitute a scripted source for deterministic outcomes
type Roller struct {
	source dice.Roller
}

// New creates a Roller backed by the given dice source. A nil source
// falls back to the toolkit's default roller.
func New(source dice.Roller) *Roller {
	if source == nil {
		source = dice.DefaultRoller
	}
	return &Roller{source: source}
}

// Roll rolls count dice of the given size and adds a flat modifier
func (r *Roller) Roll(count, size, modifier int) (*Result, error) {
	if count <= 0 || size <= 0 {
		return nil, errors.InvalidArgumentf("dice count and size must be positive: %dd%d", count, size)
	}

	rolls, err := r.source.RollN(count, size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to roll dice")
	}

	total := modifier
	for _, roll := range rolls {
		total += roll
	}

	return &Result{
		Total:    total,
		Rolls:    rolls,
		Modifier: modifier,
	}, nil
}

// RollNotation rolls dice using standard notation (e.g. "2d6+3", "1d20-1", "4d6")
func (r *Roller) RollNotation(notation string) (*Result, error) {
	count, size, modifier, err := ParseNotation(notation)
	if err != nil {
		return nil, err
	}
	return r.Roll(count, size, modifier)
}

// D20 rolls a single twenty-sided die
func (r *Roller) D20() (int, error) {
	return r.source.Roll(20)
}

// D20Advantage rolls 2d20 and keeps the higher. Returns the kept value
// and both raw rolls for the audit record.
func (r *Roller) D20Advantage() (kept, first, second int, err error) {
	first, second, err = r.pairD20()
	if err != nil {
		return 0, 0, 0, err
	}
	kept = first
	if second > first {
		kept = second
	}
	return kept, first, second, nil
}

// D20Disadvantage rolls 2d20 and keeps the lower
func (r *Roller) D20Disadvantage() (kept, first, second int, err error) {
	first, second, err = r.pairD20()
	if err != nil {
		return 0, 0, 0, err
	}
	kept = first
	if second < first {
		kept = second
	}
	return kept, first, second, nil
}

func (r *Roller) pairD20() (int, int, error) {
	first, err := r.source.Roll(20)
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to roll d20")
	}
	second, err := r.source.Roll(20)
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to roll d20")
	}
	return first, second, nil
}

// ParseNotation parses dice notation into count, size, and modifier.
// A missing count defaults to 1 (so "d8" reads as "1d8").
func ParseNotation(notation string) (count, size, modifier int, err error) {
	normalized := strings.ToLower(strings.ReplaceAll(notation, " ", ""))

	matches := notationRegex.FindStringSubmatch(normalized)
	if matches == nil {
		return 0, 0, 0, errors.InvalidArgumentf("invalid dice notation: %s (expected format: XdY or XdY+Z)", notation)
	}

	count = 1
	if matches[1] != "" {
		count, err = strconv.Atoi(matches[1])
		if err != nil {
			return 0, 0, 0, errors.InvalidArgumentf("invalid dice count in notation: %s", notation)
		}
	}

	size, err = strconv.Atoi(matches[2])
	if err != nil {
		return 0, 0, 0, errors.InvalidArgumentf("invalid die size in notation: %s", notation)
	}

	if matches[3] != "" {
		modifier, err = strconv.Atoi(matches[3])
		if err != nil {
			return 0, 0, 0, errors.InvalidArgumentf("invalid modifier in notation: %s", notation)
		}
	}

	if count <= 0 || size <= 0 {
		return 0, 0, 0, errors.InvalidArgumentf("dice count and size must be positive: %s", notation)
	}

	return count, size, modifier, nil
}
