// Package wordlist loads, writes and derives plaintext word lists.
package wordlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LoadWords reads the word list at path. See ReadWords.
func LoadWords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	words, err := ReadWords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

// ReadWords reads one word per line, lowercased. Lines rejected by the
// English filter are skipped and an empty result is an error.
func ReadWords(r io.Reader) ([]string, error) {
	keep := FilterForLang("en")
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if w := strings.ToLower(strings.TrimSpace(sc.Text())); keep(w) {
			words = append(words, w)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, errEmptyList
	}
	return words, nil
}

var errEmptyList = errors.New("word list is empty")

// WriteWords writes one word per line, replacing path atomically.
func WriteWords(path string, words []string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".wordlist-*")
	if err != nil {
		return fmt.Errorf("create temp word list: %w", err)
	}
	defer os.Remove(tmp.Name())

	var body strings.Builder
	for _, w := range words {
		body.WriteString(w)
		body.WriteByte('\n')
	}
	if _, err := io.WriteString(tmp, body.String()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write word list: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close word list: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// FromText returns the distinct lowercase words of text in first-seen order.
func FromText(text string) []string {
	keep := FilterForLang("en")
	seen := make(map[string]struct{})
	var words []string
	for _, field := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	}) {
		w := strings.ToLower(field)
		if _, ok := seen[w]; ok || !keep(w) {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	return words
}
