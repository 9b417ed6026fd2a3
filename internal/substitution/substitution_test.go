package substitution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/cryptology/internal/alphabet"
	"github.com/verte-zerg/cryptology/internal/reference"
	"github.com/verte-zerg/cryptology/internal/stats"
)

func isPermutation(m Map) bool {
	var seen [alphabet.Size]bool
	for _, p := range m.plain {
		if seen[p] {
			return false
		}
		seen[p] = true
	}
	return true
}

func TestIdentity(t *testing.T) {
	m := Identity()
	assert.Equal(t, "Hello, World!", m.Apply("Hello, World!"))
}

func TestFromDistribution(t *testing.T) {
	english, err := reference.English()
	require.NoError(t, err)

	// X is most frequent, then Q.
	d := stats.Analyze("xxxx qqq zz")
	m := FromDistribution(d, english.Unigrams)
	require.True(t, isPermutation(m))

	p, ok := m.Plain('x')
	require.True(t, ok)
	assert.Equal(t, byte('E'), p)
	p, _ = m.Plain('Q')
	assert.Equal(t, byte('T'), p)
	p, _ = m.Plain('z')
	assert.Equal(t, byte('A'), p)
	assert.Equal(t, "eeee ttt aa", m.Apply("xxxx qqq zz"))
}

func TestSetSwapsConflicts(t *testing.T) {
	m := Identity()
	require.NoError(t, m.Set('a', 'b'))
	assert.True(t, isPermutation(m))
	assert.Equal(t, "BA", m.Apply("AB"))

	require.NoError(t, m.Set('c', 'a'))
	assert.True(t, isPermutation(m))
	assert.Equal(t, "bca", m.Apply("abc"))

	assert.Error(t, m.Set('1', 'a'))
	assert.Error(t, m.Set('a', '?'))
}

func TestString(t *testing.T) {
	m := Identity()
	require.NoError(t, m.Set('a', 'z'))
	s := m.String()
	assert.Equal(t, "A B C D E F G H I J K L M N O P Q R S T U V W X Y Z\nZ B C D E F G H I J K L M N O P Q R S T U V W X Y A", s)
}
