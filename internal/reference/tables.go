// Package reference holds the expected English letter statistics that every
// scorer compares against. Tables are immutable once constructed and safe to
// share between goroutines.
package reference

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/verte-zerg/cryptology/internal/alphabet"
)

// ErrMalformedTable reports a reference table that cannot be trusted.
var ErrMalformedTable = errors.New("malformed reference table")

const (
	// PairCount is the number of ordered letter pairs.
	PairCount = alphabet.Size * alphabet.Size

	// missingMargin is how far below the worst known pair a missing pair scores.
	missingMargin = 10.0

	unigramSumTolerance = 0.02
)

// UnigramTable maps each letter to its expected probability.
type UnigramTable struct {
	probs [alphabet.Size]float64
}

// NewUnigramTable validates probabilities indexed a..z and normalizes them to sum to 1.
func NewUnigramTable(probs []float64) (*UnigramTable, error) {
	if len(probs) != alphabet.Size {
		return nil, fmt.Errorf("%w: expected %d unigram entries, got %d", ErrMalformedTable, alphabet.Size, len(probs))
	}
	var sum float64
	for i, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 || p > 1 {
			return nil, fmt.Errorf("%w: probability for %c out of range: %v", ErrMalformedTable, alphabet.Upper(i), p)
		}
		sum += p
	}
	if math.Abs(sum-1) > unigramSumTolerance {
		return nil, fmt.Errorf("%w: unigram probabilities sum to %.4f", ErrMalformedTable, sum)
	}
	t := &UnigramTable{}
	for i, p := range probs {
		t.probs[i] = p / sum
	}
	return t, nil
}

// Prob returns the expected probability of the letter at index i.
func (t *UnigramTable) Prob(i int) float64 {
	return t.probs[i]
}

// Probs returns a copy of all probabilities.
func (t *UnigramTable) Probs() [alphabet.Size]float64 {
	return t.probs
}

// BigramTable maps ordered letter pairs to log-frequency scores.
type BigramTable struct {
	scores  [PairCount]float64
	present [PairCount]bool
	size    int
	missing float64
}

// NewBigramTable builds a table from two-letter keys. Keys are case-insensitive.
func NewBigramTable(entries map[string]float64) (*BigramTable, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: bigram table is empty", ErrMalformedTable)
	}
	t := &BigramTable{}
	worst := math.Inf(1)
	for key, score := range entries {
		idx, err := pairIndex(key)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(score) || math.IsInf(score, 0) {
			return nil, fmt.Errorf("%w: bigram %q has non-finite score", ErrMalformedTable, key)
		}
		if t.present[idx] {
			return nil, fmt.Errorf("%w: duplicate bigram %q", ErrMalformedTable, strings.ToUpper(key))
		}
		t.scores[idx] = score
		t.present[idx] = true
		t.size++
		worst = math.Min(worst, score)
	}
	t.missing = worst - missingMargin
	return t, nil
}

// Score returns the score of the pair (a, b) given as alphabet indices.
func (t *BigramTable) Score(a, b int) float64 {
	idx := a*alphabet.Size + b
	if !t.present[idx] {
		return t.missing
	}
	return t.scores[idx]
}

// Lookup returns the score of a two-letter string. Unknown or invalid pairs score as missing.
func (t *BigramTable) Lookup(pair string) float64 {
	idx, err := pairIndex(pair)
	if err != nil || !t.present[idx] {
		return t.missing
	}
	return t.scores[idx]
}

// Has reports whether the pair (a, b) is present in the table.
func (t *BigramTable) Has(a, b int) bool {
	return t.present[a*alphabet.Size+b]
}

// Len returns the number of pairs present.
func (t *BigramTable) Len() int {
	return t.size
}

// Missing returns the score used for pairs absent from the table.
func (t *BigramTable) Missing() float64 {
	return t.missing
}

// Tables bundles the reference statistics passed into the breakers.
// Bigrams may be nil when only unigram scoring is needed.
type Tables struct {
	Unigrams *UnigramTable
	Bigrams  *BigramTable
}

func pairIndex(key string) (int, error) {
	if len(key) != 2 {
		return 0, fmt.Errorf("%w: bigram key %q must have two letters", ErrMalformedTable, key)
	}
	a, okA := alphabet.Index(key[0])
	b, okB := alphabet.Index(key[1])
	if !okA || !okB {
		return 0, fmt.Errorf("%w: bigram key %q must be letters", ErrMalformedTable, key)
	}
	return a*alphabet.Size + b, nil
}
