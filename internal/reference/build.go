package reference

import (
	"fmt"
	"io"
	"math"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/verte-zerg/cryptology/internal/alphabet"
)

// BuildOptions controls table construction from raw statistics.
type BuildOptions struct {
	// Smoothing is added to every bigram count. Zero keeps only observed pairs.
	Smoothing float64
}

// WordWeight is a word with its relative frequency weight.
type WordWeight struct {
	Word   string
	Weight float64
}

type counter struct {
	unigrams [alphabet.Size]float64
	bigrams  [PairCount]float64
}

// FoldAccents strips combining marks so that "café" counts as "cafe".
func FoldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// BuildFromText builds both tables from a corpus. Letters are read as one
// stream, so pairs span word boundaries the same way ciphertext letters do.
func BuildFromText(r io.Reader, opts BuildOptions) (Tables, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Tables{}, fmt.Errorf("failed to read corpus: %w", err)
	}
	letters := alphabet.Indices(FoldAccents(string(data)))
	if len(letters) < 2 {
		return Tables{}, fmt.Errorf("corpus contains fewer than two letters")
	}
	var c counter
	for i, l := range letters {
		c.unigrams[l]++
		if i > 0 {
			c.bigrams[letters[i-1]*alphabet.Size+l]++
		}
	}
	return c.tables(1, opts.Smoothing)
}

// BuildFromWords builds tables from weighted words. Pairs are counted within words only.
func BuildFromWords(words []WordWeight, opts BuildOptions) (Tables, error) {
	var c counter
	total := 0.0
	for _, w := range words {
		if w.Weight <= 0 || math.IsNaN(w.Weight) || math.IsInf(w.Weight, 0) {
			continue
		}
		letters := alphabet.Indices(FoldAccents(w.Word))
		for i, l := range letters {
			c.unigrams[l] += w.Weight
			total += w.Weight
			if i > 0 {
				c.bigrams[letters[i-1]*alphabet.Size+l] += w.Weight
			}
		}
	}
	if total == 0 {
		return Tables{}, fmt.Errorf("word list contains no weighted letters")
	}
	// Scale so that the rarest weighted letter behaves like a single count.
	minWeight := math.Inf(1)
	for _, w := range words {
		if w.Weight > 0 && w.Weight < minWeight {
			minWeight = w.Weight
		}
	}
	for i := range c.unigrams {
		c.unigrams[i] /= minWeight
	}
	for i := range c.bigrams {
		c.bigrams[i] /= minWeight
	}
	return c.tables(1, opts.Smoothing)
}

func (c *counter) tables(unigramSmoothing, bigramSmoothing float64) (Tables, error) {
	var uniTotal float64
	for _, n := range c.unigrams {
		uniTotal += n + unigramSmoothing
	}
	probs := make([]float64, alphabet.Size)
	for i, n := range c.unigrams {
		probs[i] = (n + unigramSmoothing) / uniTotal
	}
	uni, err := NewUnigramTable(probs)
	if err != nil {
		return Tables{}, err
	}

	var biTotal float64
	for _, n := range c.bigrams {
		biTotal += n + bigramSmoothing
	}
	entries := make(map[string]float64, PairCount)
	for idx, n := range c.bigrams {
		n += bigramSmoothing
		if n <= 0 {
			continue
		}
		key := string([]byte{alphabet.Upper(idx / alphabet.Size), alphabet.Upper(idx % alphabet.Size)})
		entries[key] = math.Log10(n / biTotal)
	}
	bi, err := NewBigramTable(entries)
	if err != nil {
		return Tables{}, err
	}
	return Tables{Unigrams: uni, Bigrams: bi}, nil
}
