package vigenere

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/cryptology/internal/alphabet"
	"github.com/verte-zerg/cryptology/internal/model"
	"github.com/verte-zerg/cryptology/internal/reference"
)

func readPlaintext(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "plaintext.txt"))
	require.NoError(t, err)
	return string(data)
}

func englishTables(t *testing.T) reference.Tables {
	t.Helper()
	tables, err := reference.English()
	require.NoError(t, err)
	return tables
}

func newBreaker(t *testing.T, tables reference.Tables) *Breaker {
	t.Helper()
	b, err := NewBreaker(tables, model.VigenereConfig{MinKeyLength: MinKeyLength, MaxKeyLength: MaxKeyLength})
	require.NoError(t, err)
	return b
}

func TestEncryptDecrypt(t *testing.T) {
	enc, err := Encrypt("HELLO WORLD", "KEY")
	require.NoError(t, err)
	assert.Equal(t, "RIJVS UYVJN", enc)

	dec, err := DecryptWithKey("RiJvS UyVjN", "KeY")
	require.NoError(t, err)
	assert.Equal(t, "HeLlO WoRlD", dec)
}

func TestInvalidKey(t *testing.T) {
	for _, key := range []string{"", "K3Y", "key!"} {
		_, err := Encrypt("abc", key)
		assert.ErrorIs(t, err, ErrInvalidKey, "%q", key)
		_, err = DecryptWithKey("abc", key)
		assert.ErrorIs(t, err, ErrInvalidKey, "%q", key)
	}
}

func TestValidateRange(t *testing.T) {
	require.NoError(t, ValidateRange(2, 20))
	require.NoError(t, ValidateRange(5, 5))
	for _, r := range [][2]int{{1, 20}, {2, 21}, {8, 4}} {
		assert.ErrorIs(t, ValidateRange(r[0], r[1]), ErrInvalidKeyRange, "%v", r)
	}

	_, err := NewBreaker(englishTables(t), model.VigenereConfig{MinKeyLength: 6, MaxKeyLength: 3})
	assert.ErrorIs(t, err, ErrInvalidKeyRange)
}

func TestMinimalPeriod(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"KEYKEY", "KEY"},
		{"ABAB", "AB"},
		{"AAAA", "A"},
		{"AAB", "AAB"},
		{"KEYKE", "KEYKE"},
	}
	for _, tc := range tests {
		shifts, err := alphabet.ParseKey(tc.key)
		require.NoError(t, err)
		assert.Equal(t, tc.want, alphabet.KeyString(MinimalPeriod(shifts)), tc.key)
	}
}

func TestBreakRecoversKey(t *testing.T) {
	plaintext := readPlaintext(t)
	b := newBreaker(t, englishTables(t))

	for _, key := range []string{"KEY", "LEMON", "QUIXOTIC", "SECRETKEY", "CRYPTOGRAPHYISFUN", "AB"} {
		t.Run(key, func(t *testing.T) {
			cipher, err := Encrypt(plaintext, key)
			require.NoError(t, err)

			res, err := b.Break(context.Background(), cipher)
			require.NoError(t, err)
			assert.Equal(t, len(key), res.Best.Length)
			assert.Equal(t, key, res.Best.Key)
			assert.Equal(t, key, res.Period)
			assert.Equal(t, plaintext, res.Best.Plaintext)
			assert.Len(t, res.Candidates, MaxKeyLength-MinKeyLength+1)
		})
	}
}

// breakIntoLines rewraps text every n words, alternating LF and CRLF breaks.
func breakIntoLines(text string, n int) string {
	var b strings.Builder
	for i, w := range strings.Fields(text) {
		switch {
		case i == 0:
		case i%(2*n) == 0:
			b.WriteString("\r\n")
		case i%n == 0:
			b.WriteString("\n")
		default:
			b.WriteString(" ")
		}
		b.WriteString(w)
	}
	b.WriteString("\r\n")
	return b.String()
}

func TestBreakMultilineStream(t *testing.T) {
	plaintext := breakIntoLines(readPlaintext(t), 7)
	require.Contains(t, plaintext, "\r\n")
	require.Greater(t, strings.Count(plaintext, "\n"), 10)

	cipher, err := Encrypt(plaintext, "LEMON")
	require.NoError(t, err)

	flat := strings.NewReplacer("\r\n", " ", "\n", " ")
	flatCipher, err := Encrypt(flat.Replace(plaintext), "LEMON")
	require.NoError(t, err)
	assert.Equal(t, flatCipher, flat.Replace(cipher), "key must advance across line breaks")

	res, err := newBreaker(t, englishTables(t)).Break(context.Background(), cipher)
	require.NoError(t, err)
	assert.Equal(t, "LEMON", res.Period)
	assert.Equal(t, 5, res.Best.Length)
	assert.Equal(t, plaintext, res.Best.Plaintext)
}

func TestBreakKeyScenario(t *testing.T) {
	plaintext := readPlaintext(t)
	require.GreaterOrEqual(t, len(alphabet.Indices(plaintext)), 500)

	cipher, err := Encrypt(plaintext, "KEY")
	require.NoError(t, err)

	res, err := newBreaker(t, englishTables(t)).Break(context.Background(), cipher)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Best.Length)
	assert.Equal(t, "KEY", res.Period)
	assert.False(t, res.LowConfidence)

	for _, c := range res.Candidates {
		assert.GreaterOrEqual(t, c.ChiSquare, res.Best.ChiSquare, "length %d", c.Length)
	}
}

func TestReconciliationWithSyntheticTable(t *testing.T) {
	plaintext := readPlaintext(t)
	built, err := reference.BuildFromText(strings.NewReader(plaintext), reference.BuildOptions{})
	require.NoError(t, err)
	tables := reference.Tables{Unigrams: englishTables(t).Unigrams, Bigrams: built.Bigrams}
	b := newBreaker(t, tables)

	for _, key := range []string{"KEY", "ZEBRAS", "WINTERISCOMING", "ABCDEFGHIJKLMNOPQRST"} {
		cipher, err := Encrypt(plaintext, key)
		require.NoError(t, err)
		res, err := b.Break(context.Background(), cipher)
		require.NoError(t, err)
		assert.Equal(t, key, res.Best.Key, key)
		assert.Equal(t, plaintext, res.Best.Plaintext, key)
	}
}

func TestCrackLength(t *testing.T) {
	plaintext := readPlaintext(t)
	cipher, err := Encrypt(plaintext, "LEMON")
	require.NoError(t, err)

	h, err := CrackLength(cipher, 5, englishTables(t))
	require.NoError(t, err)
	assert.Equal(t, "LEMON", h.Key)
	assert.Equal(t, plaintext, h.Plaintext)
	require.Len(t, h.Pairs, 5)
	for _, p := range h.Pairs {
		assert.Greater(t, p.Bigrams, 0)
		assert.False(t, math.IsInf(p.Score, 0))
	}

	_, err = CrackLength(cipher, 1, englishTables(t))
	assert.ErrorIs(t, err, ErrInvalidKeyRange)
}

func TestReconcilePrefersHigherScore(t *testing.T) {
	pairs := []model.PairKeyCandidate{
		{First: 1, Second: 2, Score: -10},
		{First: 3, Second: 4, Score: -20},
		{First: 5, Second: 6, Score: -5},
	}
	// Position 0: pair 2 (-5) beats pair 0 (-10), takes pair 2's second letter.
	// Position 1: pair 0 (-10) beats pair 1 (-20), takes pair 0's second letter.
	// Position 2: pair 2 (-5) beats pair 1 (-20), takes pair 2's first letter.
	assert.Equal(t, []int{6, 2, 5}, reconcile(pairs))

	tied := []model.PairKeyCandidate{
		{First: 1, Second: 2, Score: -1},
		{First: 3, Second: 4, Score: -1},
	}
	assert.Equal(t, []int{1, 3}, reconcile(tied))
}

func TestBreakShortInput(t *testing.T) {
	b := newBreaker(t, englishTables(t))
	for _, text := range []string{"", "?!", "x"} {
		res, err := b.Break(context.Background(), text)
		require.NoError(t, err)
		assert.True(t, res.LowConfidence)
		assert.Equal(t, text, res.Best.Plaintext)
	}

	res, err := b.Break(context.Background(), "Attack at dawn")
	require.NoError(t, err)
	assert.True(t, res.LowConfidence)
	assert.Len(t, res.Best.Plaintext, len("Attack at dawn"))
}

func TestBreakIsDeterministic(t *testing.T) {
	cipher, err := Encrypt(readPlaintext(t), "QUIXOTIC")
	require.NoError(t, err)
	b := newBreaker(t, englishTables(t))
	b.Workers = 4

	first, err := b.Break(context.Background(), cipher)
	require.NoError(t, err)
	b.Workers = 1
	second, err := b.Break(context.Background(), cipher)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBreakRequiresBigrams(t *testing.T) {
	b := &Breaker{
		Tables:       reference.Tables{Unigrams: englishTables(t).Unigrams},
		MinKeyLength: 2,
		MaxKeyLength: 4,
	}
	_, err := b.Break(context.Background(), "abcdef")
	assert.Error(t, err)
}
