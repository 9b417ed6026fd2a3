package reference

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/verte-zerg/cryptology/internal/alphabet"
)

//go:embed corpus/english.txt
var englishCorpus string

// Letter counts from a large English sample, A..Z.
var englishCounts = [alphabet.Size]float64{
	8050, 1494, 2378, 4537, 12359, 2181, 2042, 6502, 6871, 127, 853, 4030, 2591,
	6958, 7715, 1682, 99, 5746, 6290, 8952, 2805, 1032, 2354, 145, 2119, 88,
}

const englishBigramSmoothing = 0.5

var (
	englishOnce   sync.Once
	englishTables Tables
	englishErr    error
)

// English returns the built-in English tables. The unigram table comes from
// classic letter counts; the bigram table is built from an embedded corpus
// with every pair present.
func English() (Tables, error) {
	englishOnce.Do(func() {
		var total float64
		for _, n := range englishCounts {
			total += n
		}
		probs := make([]float64, alphabet.Size)
		for i, n := range englishCounts {
			probs[i] = n / total
		}
		uni, err := NewUnigramTable(probs)
		if err != nil {
			englishErr = err
			return
		}
		built, err := BuildFromText(strings.NewReader(englishCorpus), BuildOptions{Smoothing: englishBigramSmoothing})
		if err != nil {
			englishErr = err
			return
		}
		englishTables = Tables{Unigrams: uni, Bigrams: built.Bigrams}
	})
	return englishTables, englishErr
}

// EnglishCorpus returns the embedded English sample text.
func EnglishCorpus() string {
	return englishCorpus
}
