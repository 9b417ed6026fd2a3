package vigenere

import (
	"fmt"
	"math"

	"github.com/verte-zerg/cryptology/internal/alphabet"
	"github.com/verte-zerg/cryptology/internal/model"
	"github.com/verte-zerg/cryptology/internal/reference"
	"github.com/verte-zerg/cryptology/internal/stats"
)

// cipherBigram is a distinct ciphertext letter pair with its number of occurrences.
type cipherBigram struct {
	x, y int
	n    float64
}

// CrackLength recovers the key of a known length and decrypts text with it.
func CrackLength(text string, length int, tables reference.Tables) (model.VigenereKeyHypothesis, error) {
	if err := ValidateRange(length, length); err != nil {
		return model.VigenereKeyHypothesis{}, err
	}
	if err := checkTables(tables); err != nil {
		return model.VigenereKeyHypothesis{}, err
	}
	return crackLength(text, alphabet.Indices(text), length, tables), nil
}

func checkTables(tables reference.Tables) error {
	if tables.Unigrams == nil || tables.Bigrams == nil {
		return fmt.Errorf("vigenere: unigram and bigram tables are required")
	}
	return nil
}

func crackLength(text string, letters []int, length int, tables reference.Tables) model.VigenereKeyHypothesis {
	pairs := make([]model.PairKeyCandidate, length)
	for i := 0; i < length; i++ {
		pairs[i] = crackPair(letters, length, i, tables.Bigrams)
	}
	key := reconcile(pairs)

	plain := make([]int, len(letters))
	for p, c := range letters {
		plain[p] = alphabet.Mod(c - key[p%length])
	}

	return model.VigenereKeyHypothesis{
		Length:    length,
		Key:       alphabet.KeyString(key),
		Plaintext: apply(text, key, -1),
		ChiSquare: stats.ChiSquare(stats.AnalyzeIndices(plain), tables.Unigrams),
		Pairs:     pairs,
	}
}

// crackPair finds the two-letter key for key positions (i, i+1 mod length)
// that maximizes the bigram score of the ciphertext bigrams straddling those
// positions. Ties keep the first candidate in (first, second) order. A pair
// with no bigrams scores -Inf.
func crackPair(letters []int, length, i int, bi *reference.BigramTable) model.PairKeyCandidate {
	var counts [reference.PairCount]int
	total := 0
	for p := i; p+1 < len(letters); p += length {
		counts[letters[p]*alphabet.Size+letters[p+1]]++
		total++
	}
	best := model.PairKeyCandidate{Score: math.Inf(-1), Bigrams: total}
	if total == 0 {
		return best
	}

	observed := make([]cipherBigram, 0, total)
	for idx, n := range counts {
		if n > 0 {
			observed = append(observed, cipherBigram{x: idx / alphabet.Size, y: idx % alphabet.Size, n: float64(n)})
		}
	}

	first := true
	for a := 0; a < alphabet.Size; a++ {
		for b := 0; b < alphabet.Size; b++ {
			var score float64
			for _, o := range observed {
				score += o.n * bi.Score(alphabet.Mod(o.x-a), alphabet.Mod(o.y-b))
			}
			if first || score > best.Score {
				best.First, best.Second, best.Score = a, b, score
				first = false
			}
		}
	}
	return best
}

// reconcile merges pair candidates into one key. Position i is the second
// letter of pair i-1 and the first letter of pair i; the higher-scoring pair
// decides, and pair i decides on a tie.
func reconcile(pairs []model.PairKeyCandidate) []int {
	n := len(pairs)
	key := make([]int, n)
	for i := 0; i < n; i++ {
		prev := pairs[(i-1+n)%n]
		next := pairs[i]
		if prev.Score > next.Score {
			key[i] = prev.Second
		} else {
			key[i] = next.First
		}
	}
	return key
}
