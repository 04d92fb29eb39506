package roll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/combat-api/internal/pkg/roll"
)

// scriptedRoller returns a fixed sequence of rolls for deterministic tests
type scriptedRoller struct {
	rolls []int
	next  int
}

func (s *scriptedRoller) Roll(_ int) (int, error) {
	if s.next >= len(s.rolls) {
		return 1, nil
	}
	v := s.rolls[s.next]
	s.next++
	return v, nil
}

func (s *scriptedRoller) RollN(count, size int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		v, err := s.Roll(size)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func TestParseNotation(t *testing.T) {
	testCases := []struct {
		notation string
		count    int
		size     int
		modifier int
		wantErr  bool
	}{
		{notation: "2d6", count: 2, size: 6},
		{notation: "1d20+5", count: 1, size: 20, modifier: 5},
		{notation: "4d6-1", count: 4, size: 6, modifier: -1},
		{notation: "d8", count: 1, size: 8},
		{notation: "8D6", count: 8, size: 6},
		{notation: "2 d 6 + 3", count: 2, size: 6, modifier: 3},
		{notation: "garbage", wantErr: true},
		{notation: "0d6", wantErr: true},
		{notation: "2d0", wantErr: true},
		{notation: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.notation, func(t *testing.T) {
			count, size, modifier, err := roll.ParseNotation(tc.notation)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.count, count)
			assert.Equal(t, tc.size, size)
			assert.Equal(t, tc.modifier, modifier)
		})
	}
}

func TestRoll(t *testing.T) {
	r := roll.New(&scriptedRoller{rolls: []int{3, 4}})

	result, err := r.Roll(2, 6, 3)
	require.NoError(t, err)
	assert.Equal(t, 10, result.Total)
	assert.Equal(t, []int{3, 4}, result.Rolls)
	assert.Equal(t, 3, result.Modifier)
}

func TestRoll_InvalidCount(t *testing.T) {
	r := roll.New(&scriptedRoller{})

	_, err := r.Roll(0, 6, 0)
	require.Error(t, err)

	_, err = r.Roll(2, -1, 0)
	require.Error(t, err)
}

func TestRollNotation(t *testing.T) {
	r := roll.New(&scriptedRoller{rolls: []int{5, 2, 6}})

	result, err := r.RollNotation("3d8+2")
	require.NoError(t, err)
	assert.Equal(t, 15, result.Total)
	assert.Equal(t, []int{5, 2, 6}, result.Rolls)
	assert.Equal(t, 2, result.Modifier)
}

func TestD20Advantage(t *testing.T) {
	r := roll.New(&scriptedRoller{rolls: []int{7, 18}})

	kept, first, second, err := r.D20Advantage()
	require.NoError(t, err)
	assert.Equal(t, 18, kept)
	assert.Equal(t, 7, first)
	assert.Equal(t, 18, second)
}

func TestD20Disadvantage(t *testing.T) {
	r := roll.New(&scriptedRoller{rolls: []int{7, 18}})

	kept, _, _, err := r.D20Disadvantage()
	require.NoError(t, err)
	assert.Equal(t, 7, kept)
}

func TestDefaultRollerInRange(t *testing.T) {
	r := roll.New(nil)

	for i := 0; i < 20; i++ {
		v, err := r.D20()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 20)
	}
}
