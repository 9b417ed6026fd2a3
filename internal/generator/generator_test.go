package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeededGeneratorIsDeterministic(t *testing.T) {
	words := []string{"river", "stone", "bread", "light", "garden"}
	a := NewSeeded(42)
	b := NewSeeded(42)
	assert.Equal(t, a.Plaintext(words, 30, DefaultOptions()), b.Plaintext(words, 30, DefaultOptions()))
	assert.Equal(t, a.Key(2, 20), b.Key(2, 20))
	assert.Equal(t, a.Shift(), b.Shift())
}

func TestWordsWithoutDecoration(t *testing.T) {
	words := []string{"alpha", "beta"}
	out := NewSeeded(1).Words(words, 50, Options{})
	require.Len(t, out, 50)
	for _, w := range out {
		assert.Contains(t, words, w)
	}
	assert.Empty(t, NewSeeded(1).Words(nil, 5, Options{}))
}

func TestDecorationAlwaysApplied(t *testing.T) {
	out := NewSeeded(7).Words([]string{"word"}, 10, Options{CapsPct: 1, PunctPct: 1, PunctSet: []rune{'!'}})
	for _, w := range out {
		assert.Equal(t, "Word!", w)
	}
}

func TestKeyLengthAndPeriod(t *testing.T) {
	g := NewSeeded(3)
	for i := 0; i < 200; i++ {
		key := g.Key(2, 6)
		assert.GreaterOrEqual(t, len(key), 2)
		assert.LessOrEqual(t, len(key), 6)
		assert.Equal(t, strings.ToUpper(key), key)
		assert.False(t, periodic(keyShifts(key)), key)
	}
}

func TestShiftRange(t *testing.T) {
	g := NewSeeded(9)
	for i := 0; i < 500; i++ {
		s := g.Shift()
		assert.GreaterOrEqual(t, s, 0)
		assert.Less(t, s, 26)
	}
}

func TestPeriodic(t *testing.T) {
	assert.True(t, periodic([]int{1, 2, 1, 2}))
	assert.True(t, periodic([]int{5, 5}))
	assert.False(t, periodic([]int{1, 2, 1}))
	assert.False(t, periodic([]int{3}))
}

func keyShifts(key string) []int {
	out := make([]int, len(key))
	for i := 0; i < len(key); i++ {
		out[i] = int(key[i] - 'A')
	}
	return out
}
