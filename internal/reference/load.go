package reference

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/verte-zerg/cryptology/internal/alphabet"
)

// LoadUnigrams reads a unigram table file: 26 lines, line i holding the probability of letter 'a'+i.
func LoadUnigrams(path string) (*UnigramTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open unigram table %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only table.
			_ = cerr
		}
	}()
	table, err := ParseUnigrams(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// ParseUnigrams parses the unigram table format from r.
func ParseUnigrams(r io.Reader) (*UnigramTable, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read unigram table: %w", err)
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) != alphabet.Size {
		return nil, fmt.Errorf("%w: expected 26 lines, got %d", ErrMalformedTable, len(lines))
	}
	probs := make([]float64, len(lines))
	for i, line := range lines {
		p, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %q is not a number", ErrMalformedTable, i+1, line)
		}
		probs[i] = p
	}
	return NewUnigramTable(probs)
}

// LoadBigrams reads a bigram table file of "XY value" lines.
func LoadBigrams(path string) (*BigramTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bigram table %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only table.
			_ = cerr
		}
	}()
	table, err := ParseBigrams(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// ParseBigrams parses the bigram table format from r. Blank lines and '#' comments are skipped.
func ParseBigrams(r io.Reader) (*BigramTable, error) {
	entries := make(map[string]float64, PairCount)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ' ' || r == '\t' || r == ','
		})
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: line %d: expected key and value, got %q", ErrMalformedTable, lineNo, line)
		}
		key := strings.ToUpper(fields[0])
		if _, err := pairIndex(key); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if _, dup := entries[key]; dup {
			return nil, fmt.Errorf("%w: line %d: duplicate bigram %q", ErrMalformedTable, lineNo, key)
		}
		score, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %q is not a number", ErrMalformedTable, lineNo, fields[1])
		}
		entries[key] = score
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bigram table: %w", err)
	}
	return NewBigramTable(entries)
}

// Load resolves the tables for a run. Empty paths fall back to the built-in English tables.
// The bigram table is only loaded when withBigrams is set.
func Load(unigramPath, bigramPath string, withBigrams bool) (Tables, error) {
	english, err := English()
	if err != nil {
		return Tables{}, err
	}
	tables := Tables{Unigrams: english.Unigrams}
	if unigramPath != "" {
		if tables.Unigrams, err = LoadUnigrams(unigramPath); err != nil {
			return Tables{}, err
		}
	}
	if !withBigrams {
		return tables, nil
	}
	tables.Bigrams = english.Bigrams
	if bigramPath != "" {
		if tables.Bigrams, err = LoadBigrams(bigramPath); err != nil {
			return Tables{}, err
		}
	}
	return tables, nil
}
