// Package substitution builds and edits monoalphabetic substitution maps.
package substitution

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/cryptology/internal/alphabet"
	"github.com/verte-zerg/cryptology/internal/reference"
	"github.com/verte-zerg/cryptology/internal/stats"
)

// Map assigns a plaintext letter to each ciphertext letter. The assignment
// is always a permutation of the alphabet.
type Map struct {
	plain [alphabet.Size]int
}

// Identity returns the map that leaves every letter unchanged.
func Identity() Map {
	var m Map
	for i := range m.plain {
		m.plain[i] = i
	}
	return m
}

// FromDistribution pairs ciphertext letters ranked by observed frequency with
// reference letters ranked by expected probability. Letters absent from the
// ciphertext take the remaining reference letters in alphabet order.
func FromDistribution(d stats.Distribution, uni *reference.UnigramTable) Map {
	ranked := alphabet.Indices(string(stats.ReferenceOrder(uni)))
	var m Map
	var assigned [alphabet.Size]bool
	next := 0
	for _, lc := range d.Sorted() {
		c, _ := alphabet.Index(lc.Letter)
		m.plain[c] = ranked[next]
		assigned[c] = true
		next++
	}
	for c := 0; c < alphabet.Size; c++ {
		if assigned[c] {
			continue
		}
		m.plain[c] = ranked[next]
		next++
	}
	return m
}

// Plain returns the plaintext letter for a ciphertext letter.
func (m Map) Plain(cipher byte) (byte, bool) {
	c, ok := alphabet.Index(cipher)
	if !ok {
		return 0, false
	}
	return alphabet.Upper(m.plain[c]), true
}

// Set maps cipher to plain. The letter that previously mapped to plain takes
// over cipher's old assignment so the map stays a permutation.
func (m *Map) Set(cipher, plain byte) error {
	c, ok := alphabet.Index(cipher)
	if !ok {
		return fmt.Errorf("not a letter: %q", cipher)
	}
	p, ok := alphabet.Index(plain)
	if !ok {
		return fmt.Errorf("not a letter: %q", plain)
	}
	old := m.plain[c]
	for other := range m.plain {
		if m.plain[other] == p {
			m.plain[other] = old
			break
		}
	}
	m.plain[c] = p
	return nil
}

// Apply substitutes every letter of text, preserving case.
func (m Map) Apply(text string) string {
	out := []byte(text)
	for i, b := range out {
		c, ok := alphabet.Index(b)
		if !ok {
			continue
		}
		out[i] = alphabet.Shift(b, m.plain[c]-c)
	}
	return string(out)
}

// String renders the map as two aligned rows, ciphertext over plaintext.
func (m Map) String() string {
	var cipher, plain strings.Builder
	for i := 0; i < alphabet.Size; i++ {
		if i > 0 {
			cipher.WriteByte(' ')
			plain.WriteByte(' ')
		}
		cipher.WriteByte(alphabet.Upper(i))
		plain.WriteByte(alphabet.Upper(m.plain[i]))
	}
	return cipher.String() + "\n" + plain.String()
}
