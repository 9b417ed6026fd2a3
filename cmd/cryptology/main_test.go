package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/cryptology/internal/config"
	"github.com/verte-zerg/cryptology/internal/model"
)

const caesarPlain = "The old lighthouse stood at the edge of the harbor for more than two hundred years, " +
	"and in all that time it never once failed to show its light to the ships that passed in the night.\n"

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeWithStderr(t, args...)
	return out, err
}

func executeWithStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

// wrapEvery rewraps text every n words, alternating LF and CRLF breaks.
func wrapEvery(text string, n int) string {
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

func TestCaesarEncryptBreakRoundTrip(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "plain.txt")
	enc := filepath.Join(dir, "cipher.txt")
	dec := filepath.Join(dir, "decrypted.txt")
	require.NoError(t, os.WriteFile(in, []byte(caesarPlain), 0o644))

	_, err := execute(t, "encrypt", "caesar", "--shift", "7", "-i", in, "-o", enc)
	require.NoError(t, err)
	cipher, err := os.ReadFile(enc)
	require.NoError(t, err)
	assert.NotEqual(t, caesarPlain, string(cipher))

	_, err = execute(t, "break-caesar", "-i", enc, "-o", dec, "--no-history")
	require.NoError(t, err)
	got, err := os.ReadFile(dec)
	require.NoError(t, err)
	assert.Equal(t, caesarPlain, string(got))
}

func TestVigenereBreakRecordsHistory(t *testing.T) {
	dir := isolate(t)
	plain, err := os.ReadFile(filepath.Join("testdata", "plaintext.txt"))
	require.NoError(t, err)
	in := filepath.Join(dir, "plain.txt")
	enc := filepath.Join(dir, "cipher.txt")
	dec := filepath.Join(dir, "decrypted.txt")
	report := filepath.Join(dir, "report.yaml")
	require.NoError(t, os.WriteFile(in, plain, 0o644))

	_, err = execute(t, "encrypt", "vigenere", "--key", "KEY", "-i", in, "-o", enc)
	require.NoError(t, err)

	_, err = execute(t, "break-vigenere", "-i", enc, "-o", dec, "--report", report)
	require.NoError(t, err)
	got, err := os.ReadFile(dec)
	require.NoError(t, err)
	assert.Equal(t, string(plain), string(got))

	rep, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(rep), "period: KEY")
	assert.Contains(t, string(rep), "cipher: vigenere")

	multi := wrapEvery(string(plain), 6)
	require.NoError(t, os.WriteFile(in, []byte(multi), 0o644))
	_, err = execute(t, "encrypt", "vigenere", "--key", "LEMON", "-i", in, "-o", enc)
	require.NoError(t, err)
	_, stderr, err := executeWithStderr(t, "break-vigenere", "-i", enc, "-o", dec, "--show-key")
	require.NoError(t, err)
	got, err = os.ReadFile(dec)
	require.NoError(t, err)
	assert.Equal(t, multi, string(got))
	assert.Contains(t, stderr, "Key: LEMON (length 5")
	assert.NotContains(t, stderr, "\x1b[", "no color codes when stderr is not a terminal")

	out, err := execute(t, "history", "--cipher", "vigenere")
	require.NoError(t, err)
	assert.Contains(t, out, "vigenere")
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "LEMON")
}

func TestCaesarBreakKeepsLineEndings(t *testing.T) {
	dir := isolate(t)
	plain := strings.ReplaceAll(strings.TrimSuffix(caesarPlain, "\n"), ", ", ",\r\n") + "\r\n" +
		strings.TrimSuffix(caesarPlain, "\n")
	in := filepath.Join(dir, "plain.txt")
	enc := filepath.Join(dir, "cipher.txt")
	require.NoError(t, os.WriteFile(in, []byte(plain), 0o644))

	_, err := execute(t, "encrypt", "caesar", "--shift", "11", "-i", in, "-o", enc)
	require.NoError(t, err)
	out, err := execute(t, "break-caesar", "-i", enc, "--no-history")
	require.NoError(t, err)
	assert.Equal(t, plain, out)
}

func TestValidateShift(t *testing.T) {
	for _, shift := range []int{0, 13, 25} {
		assert.NoError(t, validateShift(shift), "%d", shift)
	}
	for _, shift := range []int{-1, 26, 256, 1 << 20} {
		assert.Error(t, validateShift(shift), "%d", shift)
	}

	isolate(t)
	_, err := execute(t, "encrypt", "caesar", "--shift=-3", "-i", "/does/not/exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--shift must be between 0 and 25")
}

func TestConfigureStderrColor(t *testing.T) {
	t.Cleanup(func() { configureStderrColor(os.Stderr) })
	configureStderrColor(&bytes.Buffer{})
	assert.Equal(t, "LEMON", keyColor.Sprint("LEMON"))

	var buf bytes.Buffer
	warnf(&buf, "careful %d\n", 3)
	assert.Equal(t, "careful 3\n", buf.String())
}

func TestDecryptVigenereWithKeyLength(t *testing.T) {
	dir := isolate(t)
	plain, err := os.ReadFile(filepath.Join("testdata", "plaintext.txt"))
	require.NoError(t, err)
	in := filepath.Join(dir, "plain.txt")
	enc := filepath.Join(dir, "cipher.txt")
	require.NoError(t, os.WriteFile(in, plain, 0o644))

	_, err = execute(t, "encrypt", "vigenere", "--key", "lemon", "-i", in, "-o", enc)
	require.NoError(t, err)
	out, err := execute(t, "decrypt", "vigenere", "--key-length", "5", "-i", enc)
	require.NoError(t, err)
	assert.Equal(t, string(plain), out)

	out, err = execute(t, "decrypt", "vigenere", "--key", "LEMON", "-i", enc)
	require.NoError(t, err)
	assert.Equal(t, string(plain), out)
}

func TestFrequencyAnalysisAlias(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "text.txt")
	require.NoError(t, os.WriteFile(in, []byte("aab"), 0o644))

	out, err := execute(t, "fa", "-i", in)
	require.NoError(t, err)
	assert.Contains(t, out, "| Letter")
	assert.Contains(t, out, "66.667 %")
}

func TestSubstituteWithoutTUI(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "text.txt")
	require.NoError(t, os.WriteFile(in, []byte("xxx, y!"), 0o644))

	out, err := execute(t, "substitute", "--no-tui", "-i", in)
	require.NoError(t, err)
	assert.Equal(t, "eee, t!", out)
}

func TestInvalidRangeFailsBeforeReadingInput(t *testing.T) {
	isolate(t)
	_, err := execute(t, "break-vigenere", "--min-key-length", "5", "--max-key-length", "3", "-i", "/does/not/exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--min-key-length")

	_, err = execute(t, "break-vigenere", "--max-key-length", "21", "-i", "/does/not/exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--max-key-length")
}

func TestMissingInputFails(t *testing.T) {
	isolate(t)
	_, err := execute(t, "break-caesar", "-i", "/does/not/exist", "--no-history")
	require.Error(t, err)
}

func TestConfigFileAppliesUnlessFlagChanged(t *testing.T) {
	isolate(t)
	path := config.DefaultConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[vigenere]\nmin-key-length = 1\n"), 0o644))

	_, err := execute(t, "break-vigenere", "-i", "/does/not/exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--min-key-length must be >= 2")

	_, err = execute(t, "break-vigenere", "--min-key-length", "3", "--max-key-length", "2", "-i", "/does/not/exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--min-key-length must be <= --max-key-length")
}

func TestUnknownConfigKeyFails(t *testing.T) {
	isolate(t)
	path := config.DefaultConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[engine]\nthreads = 4\n"), 0o644))

	_, err := execute(t, "version")
	require.Error(t, err)
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	isolate(t)
	keyLine := regexp.MustCompile(`^# [a-z-]+ = `)
	var lines []string
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		if keyLine.MatchString(line) {
			line = strings.TrimPrefix(line, "# ")
		}
		lines = append(lines, line)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Vigenere.MinKeyLength)
	assert.Equal(t, 2, *cfg.Vigenere.MinKeyLength)
	assert.Equal(t, 20, *cfg.Vigenere.MaxKeyLength)
	assert.Equal(t, 0, *cfg.Engine.Workers)
	assert.Equal(t, "warn", *cfg.Log.Level)
	assert.True(t, *cfg.History.Enabled)
	assert.Equal(t, config.DefaultDBPath(), *cfg.History.Path)
}

func TestHistoryConfig(t *testing.T) {
	cfg, err := historyConfig(" Caesar ", "2024-03-01", 5)
	require.NoError(t, err)
	assert.Equal(t, model.CipherCaesar, cfg.Cipher)
	assert.Equal(t, 5, cfg.Last)
	require.NotNil(t, cfg.Since)
	assert.Equal(t, 2024, cfg.Since.Year())

	_, err = historyConfig("enigma", "", 0)
	assert.Error(t, err)
	_, err = historyConfig("", "yesterday", 0)
	assert.Error(t, err)
	_, err = historyConfig("", "", -1)
	assert.Error(t, err)
}

func TestSplitAndJoinLines(t *testing.T) {
	lines, ends := splitLines("a\r\nb\n")
	assert.Equal(t, []string{"a", "b"}, lines)
	assert.Equal(t, []string{"\r\n", "\n"}, ends)
	assert.Equal(t, "a\r\nb\n", joinLines(lines, ends))

	lines, ends = splitLines("a\n\nb")
	assert.Equal(t, []string{"a", "", "b"}, lines)
	assert.Equal(t, []string{"\n", "\n", ""}, ends)
	assert.Equal(t, "a\n\nb", joinLines(lines, ends))

	lines, _ = splitLines("")
	assert.Empty(t, lines)
}

func TestCaesarRunSummary(t *testing.T) {
	var scores [26]float64
	scores[3] = 1
	results := []model.CaesarLineResult{
		{Line: 1, Hypothesis: model.CaesarHypothesis{Shift: 3, ChiSquare: 2, Letters: 30, Scores: scores}},
		{Line: 2, Hypothesis: model.CaesarHypothesis{Shift: 3, ChiSquare: 4, Letters: 40, Scores: scores}},
		{Line: 3, Hypothesis: model.CaesarHypothesis{Shift: 9, ChiSquare: 6, Letters: 10, Scores: scores}},
		{Line: 4},
	}
	run, candidates := caesarRun(results)
	assert.Equal(t, "D", run.Key)
	assert.Equal(t, 80, run.Letters)
	assert.Equal(t, 4, run.Lines)
	assert.InDelta(t, 4.0, run.ChiSquare, 1e-9)
	require.Len(t, candidates, 26)
	assert.InDelta(t, 3.0, candidates[3].Score, 1e-9)
	assert.Equal(t, "D", candidates[3].Key)

	_, candidates = caesarRun(nil)
	assert.Empty(t, candidates)
}
