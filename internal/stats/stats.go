// Package stats contains letter statistics, goodness-of-fit scoring and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/cryptology/internal/alphabet"
	"github.com/verte-zerg/cryptology/internal/reference"
)

const sparkChars = " .:-=+*#%@"

// Distribution holds observed letter counts for a text. Case is folded and
// non-letters are not counted.
type Distribution struct {
	Counts [alphabet.Size]int
	Total  int
}

// Analyze counts the letters in text.
func Analyze(text string) Distribution {
	var d Distribution
	for i := 0; i < len(text); i++ {
		if idx, ok := alphabet.Index(text[i]); ok {
			d.Counts[idx]++
			d.Total++
		}
	}
	return d
}

// AnalyzeIndices counts letters already converted to alphabet indices.
func AnalyzeIndices(letters []int) Distribution {
	var d Distribution
	for _, l := range letters {
		d.Counts[l]++
	}
	d.Total = len(letters)
	return d
}

// Percent returns the share of letter i among all letters, 0 when there are none.
func (d Distribution) Percent(i int) float64 {
	if d.Total == 0 {
		return 0
	}
	return float64(d.Counts[i]) / float64(d.Total) * 100
}

// ChiSquare compares observed counts with the counts expected from the
// unigram table for the same number of letters. Lower is closer to the
// reference. A distribution without letters scores 0.
func ChiSquare(d Distribution, uni *reference.UnigramTable) float64 {
	if d.Total == 0 {
		return 0
	}
	n := float64(d.Total)
	var chi float64
	for i := 0; i < alphabet.Size; i++ {
		expected := uni.Prob(i) * n
		diff := float64(d.Counts[i]) - expected
		chi += diff * diff / expected
	}
	return chi
}

// ChiSquareText analyzes text and scores it.
func ChiSquareText(text string, uni *reference.UnigramTable) float64 {
	return ChiSquare(Analyze(text), uni)
}

// BigramScore sums the log scores of two-letter strings.
func BigramScore(pairs []string, bi *reference.BigramTable) float64 {
	var total float64
	for _, p := range pairs {
		total += bi.Lookup(p)
	}
	return total
}

// BigramScoreLetters sums the log scores of every adjacent pair in a letter sequence.
func BigramScoreLetters(letters []int, bi *reference.BigramTable) float64 {
	var total float64
	for i := 1; i < len(letters); i++ {
		total += bi.Score(letters[i-1], letters[i])
	}
	return total
}

// RenderFrequencyTable prints a markdown table of letters sorted by occurrences.
func RenderFrequencyTable(w io.Writer, d Distribution) error {
	headers := []string{"Letter", "Occurrences", "Percentage"}
	sorted := d.Sorted()
	rows := make([][]string, 0, len(sorted))
	for _, lc := range sorted {
		rows = append(rows, []string{
			string(lc.Letter),
			fmt.Sprintf("%d", lc.Count),
			fmt.Sprintf("%8.3f %%", lc.Percent),
		})
	}
	for _, line := range formatMarkdownTable(headers, rows, map[int]bool{2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
