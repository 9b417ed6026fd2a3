// Package generator builds random plaintexts and keys for self-tests.
package generator

import (
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/verte-zerg/cryptology/internal/alphabet"
)

const defaultPunctSet = ".,;:!?"

// Options controls how plaintext is decorated.
type Options struct {
	// CapsPct is the probability of capitalizing a word's first letter.
	CapsPct float64
	// PunctPct is the probability of appending punctuation to a word.
	PunctPct float64
	PunctSet []rune
}

// DefaultOptions returns light capitalization and punctuation, similar to prose.
func DefaultOptions() Options {
	return Options{CapsPct: 0.1, PunctPct: 0.1, PunctSet: []rune(defaultPunctSet)}
}

// Generator produces randomized plaintexts and keys.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Words selects count words uniformly and applies caps/punctuation rules.
func (g *Generator) Words(words []string, count int, opts Options) []string {
	result := make([]string, 0, count)
	if len(words) == 0 {
		return result
	}
	for i := 0; i < count; i++ {
		word := words[g.rnd.Intn(len(words))]
		word = applyCaps(g.rnd, word, opts.CapsPct)
		word = applyPunct(g.rnd, word, opts.PunctPct, opts.PunctSet)
		result = append(result, word)
	}
	return result
}

// Plaintext joins count generated words with spaces.
func (g *Generator) Plaintext(words []string, count int, opts Options) string {
	return strings.Join(g.Words(words, count, opts), " ")
}

// Shift returns a random Caesar shift in [0, 25].
func (g *Generator) Shift() int {
	return g.rnd.Intn(alphabet.Size)
}

// Key returns a random uppercase key whose length is drawn from [minLen, maxLen].
// The key is redrawn until it does not repeat a shorter period, so its
// length is the length a breaker should report.
func (g *Generator) Key(minLen, maxLen int) string {
	if minLen < 1 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	n := minLen + g.rnd.Intn(maxLen-minLen+1)
	shifts := make([]int, n)
	for {
		for i := range shifts {
			shifts[i] = g.rnd.Intn(alphabet.Size)
		}
		if !periodic(shifts) {
			return alphabet.KeyString(shifts)
		}
	}
}

func periodic(key []int) bool {
	n := len(key)
	for p := 1; p < n; p++ {
		if n%p != 0 {
			continue
		}
		match := true
		for i := p; i < n; i++ {
			if key[i] != key[i-p] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 {
		return word
	}
	if rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 {
		return word
	}
	if rnd.Float64() > punctPct {
		return word
	}
	punct := punctSet[rnd.Intn(len(punctSet))]
	return word + string(punct)
}
