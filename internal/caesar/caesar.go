// Package caesar encrypts, decrypts and breaks per-line Caesar ciphers.
package caesar

import (
	"errors"
	"fmt"
	"math"

	"github.com/verte-zerg/cryptology/internal/alphabet"
	"github.com/verte-zerg/cryptology/internal/model"
	"github.com/verte-zerg/cryptology/internal/reference"
	"github.com/verte-zerg/cryptology/internal/stats"
)

var (
	// ErrInvalidShift reports a shift outside [0, 25].
	ErrInvalidShift = errors.New("invalid caesar shift")
	// ErrInvalidLine reports a line that cannot be processed.
	ErrInvalidLine = errors.New("invalid input line")
)

// ReliableLetters is the letter count below which a line's result is flagged
// as low confidence.
const ReliableLetters = 20

// Encrypt shifts every letter of text forward by shift, preserving case.
func Encrypt(text string, shift int) (string, error) {
	if err := validateShift(shift); err != nil {
		return "", err
	}
	return shiftText(text, shift), nil
}

// Decrypt shifts every letter of text back by shift, preserving case.
func Decrypt(text string, shift int) (string, error) {
	if err := validateShift(shift); err != nil {
		return "", err
	}
	return shiftText(text, -shift), nil
}

func validateShift(shift int) error {
	if shift < 0 || shift >= alphabet.Size {
		return fmt.Errorf("%w: %d", ErrInvalidShift, shift)
	}
	return nil
}

func shiftText(text string, delta int) string {
	out := []byte(text)
	for i := range out {
		out[i] = alphabet.Shift(out[i], delta)
	}
	return string(out)
}

// BestShift picks the shift whose decryption of line fits the reference
// distribution best. Chi-square decides, lowest shift on ties. When a bigram
// table is given and the line is too short for letter counts to mean much,
// the shift with the highest bigram score wins instead.
func BestShift(line string, tables reference.Tables) model.CaesarHypothesis {
	letters := alphabet.Indices(line)
	cipher := stats.AnalyzeIndices(letters)

	var scores [alphabet.Size]float64
	best := 0
	for s := 0; s < alphabet.Size; s++ {
		scores[s] = stats.ChiSquare(shiftDistribution(cipher, s), tables.Unigrams)
		if scores[s] < scores[best] {
			best = s
		}
	}

	n := len(letters)
	if tables.Bigrams != nil && n >= 2 && n < ReliableLetters {
		best = bestByBigrams(letters, tables.Bigrams)
	}

	return model.CaesarHypothesis{
		Shift:         best,
		Plaintext:     shiftText(line, -best),
		ChiSquare:     scores[best],
		Scores:        scores,
		Letters:       n,
		LowConfidence: n < ReliableLetters,
	}
}

// shiftDistribution returns the distribution of the text decrypted with shift s.
func shiftDistribution(cipher stats.Distribution, s int) stats.Distribution {
	out := stats.Distribution{Total: cipher.Total}
	for p := 0; p < alphabet.Size; p++ {
		out.Counts[p] = cipher.Counts[alphabet.Mod(p+s)]
	}
	return out
}

func bestByBigrams(letters []int, bi *reference.BigramTable) int {
	plain := make([]int, len(letters))
	best := 0
	bestScore := math.Inf(-1)
	for s := 0; s < alphabet.Size; s++ {
		for i, l := range letters {
			plain[i] = alphabet.Mod(l - s)
		}
		score := stats.BigramScoreLetters(plain, bi)
		if score > bestScore {
			best = s
			bestScore = score
		}
	}
	return best
}
