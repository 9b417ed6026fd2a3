package stats

import (
	"sort"

	"github.com/verte-zerg/cryptology/internal/alphabet"
	"github.com/verte-zerg/cryptology/internal/reference"
)

// LetterCount is one row of a frequency table.
type LetterCount struct {
	Letter  byte
	Count   int
	Percent float64
}

// Sorted returns the letters that occur, most frequent first, ties in alphabet order.
func (d Distribution) Sorted() []LetterCount {
	out := make([]LetterCount, 0, alphabet.Size)
	for i := 0; i < alphabet.Size; i++ {
		if d.Counts[i] == 0 {
			continue
		}
		out = append(out, LetterCount{
			Letter:  alphabet.Upper(i),
			Count:   d.Counts[i],
			Percent: d.Percent(i),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// TopLetters returns up to n of the most frequent letters.
func TopLetters(d Distribution, n int) []byte {
	if n <= 0 {
		return nil
	}
	sorted := d.Sorted()
	if n > len(sorted) {
		n = len(sorted)
	}
	out := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, sorted[i].Letter)
	}
	return out
}

// ReferenceOrder returns all letters ordered by expected probability, most likely first.
func ReferenceOrder(uni *reference.UnigramTable) []byte {
	letters := make([]int, alphabet.Size)
	for i := range letters {
		letters[i] = i
	}
	sort.SliceStable(letters, func(i, j int) bool {
		return uni.Prob(letters[i]) > uni.Prob(letters[j])
	})
	out := make([]byte, alphabet.Size)
	for i, l := range letters {
		out[i] = alphabet.Upper(l)
	}
	return out
}
