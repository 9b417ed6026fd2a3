package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/cryptology/internal/alphabet"
	"github.com/verte-zerg/cryptology/internal/caesar"
	"github.com/verte-zerg/cryptology/internal/config"
	"github.com/verte-zerg/cryptology/internal/logging"
	"github.com/verte-zerg/cryptology/internal/model"
	"github.com/verte-zerg/cryptology/internal/stats"
	"github.com/verte-zerg/cryptology/internal/store"
	"github.com/verte-zerg/cryptology/internal/vigenere"
)

var (
	minKeyLength int
	maxKeyLength int
	showKey      bool
	reportPath   string
	plotScores   bool
	noHistory    bool
)

type caesarReport struct {
	Cipher      string                   `yaml:"cipher"`
	Fingerprint string                   `yaml:"fingerprint"`
	Lines       []model.CaesarLineResult `yaml:"lines"`
}

type vigenereReport struct {
	Cipher      string               `yaml:"cipher"`
	Fingerprint string               `yaml:"fingerprint"`
	Result      model.VigenereResult `yaml:"result"`
}

func newBreakCaesarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "break-caesar",
		Short: "Recover a Caesar shift per line by chi-square",
		Args:  cobra.NoArgs,
		RunE:  runBreakCaesarCmd,
	}
	addBreakFlags(cmd)
	return cmd
}

func newBreakVigenereCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "break-vigenere",
		Short: "Recover an unknown Vigenère key",
		Args:  cobra.NoArgs,
		RunE:  runBreakVigenereCmd,
	}
	addBreakFlags(cmd)
	cmd.Flags().IntVar(&minKeyLength, "min-key-length", vigenere.MinKeyLength, "shortest key length to try")
	cmd.Flags().IntVar(&maxKeyLength, "max-key-length", vigenere.MaxKeyLength, "longest key length to try")
	cmd.Flags().BoolVar(&showKey, "show-key", false, "print the recovered key to stderr")
	return cmd
}

func addBreakFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&reportPath, "report", "", "write every hypothesis to a YAML file")
	cmd.Flags().BoolVar(&plotScores, "plot", false, "plot candidate scores to stderr")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record the run")
}

func runBreakCaesarCmd(cmd *cobra.Command, _ []string) error {
	tables, err := loadTables(true)
	if err != nil {
		return err
	}
	text, err := readInput(cmd)
	if err != nil {
		return err
	}
	lines, ends := splitLines(text)

	startedAt := time.Now()
	breaker := caesar.NewBreaker(tables, workers)
	results, err := breaker.Break(cmd.Context(), lines)
	if err != nil {
		return err
	}
	endedAt := time.Now()

	out := make([]string, len(results))
	lowConfidence := 0
	for i, res := range results {
		out[i] = res.Output()
		if res.Err != nil {
			warnf(cmd.ErrOrStderr(), "line %d: %v\n", res.Line, res.Err)
			continue
		}
		if res.Hypothesis.LowConfidence && res.Hypothesis.Letters > 0 {
			lowConfidence++
		}
	}
	if lowConfidence > 0 {
		warnf(cmd.ErrOrStderr(), "%d of %d lines have fewer than %d letters; their shifts are unreliable\n",
			lowConfidence, len(results), caesar.ReliableLetters)
	}
	if err := writeOutput(cmd, joinLines(out, ends)); err != nil {
		return err
	}

	fingerprint := store.Fingerprint(text)
	if reportPath != "" {
		if err := writeReport(reportPath, caesarReport{
			Cipher:      model.CipherCaesar,
			Fingerprint: fingerprint,
			Lines:       results,
		}); err != nil {
			return err
		}
	}

	run, candidates := caesarRun(results)
	if plotScores {
		if err := plotCandidates(cmd.ErrOrStderr(), fmt.Sprintf("Shift chi-square summed over %d lines (lower is better):", len(results)), run.Key, candidates); err != nil {
			return err
		}
	}
	run.Fingerprint = fingerprint
	run.StartedAt = startedAt
	run.EndedAt = endedAt
	recordRun(cmd.Context(), run, candidates)
	return nil
}

// caesarRun summarizes a batch: the key is the shift chosen by most lines and
// candidate scores are chi-square values summed over the lines.
func caesarRun(results []model.CaesarLineResult) (model.RunRecord, []model.CandidateScore) {
	var votes [alphabet.Size]int
	var sums [alphabet.Size]float64
	run := model.RunRecord{Cipher: model.CipherCaesar, Lines: len(results), KeyLength: 1}
	scored := 0
	for _, res := range results {
		if res.Err != nil || res.Hypothesis.Letters == 0 {
			continue
		}
		scored++
		votes[res.Hypothesis.Shift]++
		run.Letters += res.Hypothesis.Letters
		run.ChiSquare += res.Hypothesis.ChiSquare
		for s, score := range res.Hypothesis.Scores {
			sums[s] += score
		}
	}
	if scored == 0 {
		return run, nil
	}
	run.ChiSquare /= float64(scored)
	best := 0
	for s := 1; s < alphabet.Size; s++ {
		if votes[s] > votes[best] {
			best = s
		}
	}
	run.Key = string(alphabet.Upper(best))

	candidates := make([]model.CandidateScore, alphabet.Size)
	for s := range candidates {
		candidates[s] = model.CandidateScore{
			Candidate: s,
			Key:       string(alphabet.Upper(s)),
			Score:     sums[s],
		}
	}
	return run, candidates
}

func runBreakVigenereCmd(cmd *cobra.Command, _ []string) error {
	applyIntConfig(cmd, "min-key-length", &minKeyLength, fileCfg.Vigenere.MinKeyLength)
	applyIntConfig(cmd, "max-key-length", &maxKeyLength, fileCfg.Vigenere.MaxKeyLength)
	cfg := model.VigenereConfig{
		MinKeyLength: minKeyLength,
		MaxKeyLength: maxKeyLength,
		Workers:      workers,
	}
	if err := validateVigenereConfig(cfg); err != nil {
		return err
	}

	tables, err := loadTables(true)
	if err != nil {
		return err
	}
	breaker, err := vigenere.NewBreaker(tables, cfg)
	if err != nil {
		return err
	}
	text, err := readInput(cmd)
	if err != nil {
		return err
	}

	startedAt := time.Now()
	res, err := breaker.Break(cmd.Context(), text)
	if err != nil {
		return err
	}
	endedAt := time.Now()

	if err := writeOutput(cmd, res.Best.Plaintext); err != nil {
		return err
	}
	switch {
	case res.Letters < 2:
		warnf(cmd.ErrOrStderr(), "input has %d letters; nothing to analyze\n", res.Letters)
	case res.LowConfidence:
		warnf(cmd.ErrOrStderr(), "only %d letters for a key of length %d; the key is unreliable\n", res.Letters, res.Best.Length)
	}
	if showKey && res.Period != "" {
		if _, err := fmt.Fprintf(cmd.ErrOrStderr(), "Key: %s (length %d, chi-square %.3f)\n",
			keyColor.Sprint(res.Period), len(res.Period), res.Best.ChiSquare); err != nil {
			return err
		}
	}

	fingerprint := store.Fingerprint(text)
	if reportPath != "" {
		if err := writeReport(reportPath, vigenereReport{
			Cipher:      model.CipherVigenere,
			Fingerprint: fingerprint,
			Result:      res,
		}); err != nil {
			return err
		}
	}
	if res.Letters < 2 {
		return nil
	}

	candidates := make([]model.CandidateScore, 0, len(res.Candidates))
	for _, c := range res.Candidates {
		candidates = append(candidates, model.CandidateScore{Candidate: c.Length, Key: c.Key, Score: c.ChiSquare})
	}
	if plotScores {
		if err := plotCandidates(cmd.ErrOrStderr(), "Chi-square by key length (lower is better):", res.Best.Key, candidates); err != nil {
			return err
		}
	}
	recordRun(cmd.Context(), model.RunRecord{
		Cipher:      model.CipherVigenere,
		Fingerprint: fingerprint,
		Key:         res.Best.Key,
		KeyLength:   res.Best.Length,
		ChiSquare:   res.Best.ChiSquare,
		Letters:     res.Letters,
		Lines:       lineCount(text),
		StartedAt:   startedAt,
		EndedAt:     endedAt,
	}, candidates)
	return nil
}

func validateVigenereConfig(cfg model.VigenereConfig) error {
	if cfg.MinKeyLength < vigenere.MinKeyLength {
		return fmt.Errorf("--min-key-length must be >= %d", vigenere.MinKeyLength)
	}
	if cfg.MaxKeyLength > vigenere.MaxKeyLength {
		return fmt.Errorf("--max-key-length must be <= %d", vigenere.MaxKeyLength)
	}
	if cfg.MinKeyLength > cfg.MaxKeyLength {
		return fmt.Errorf("--min-key-length must be <= --max-key-length")
	}
	return validateCommonConfig(cfg.Workers)
}

func lineCount(text string) int {
	lines, _ := splitLines(text)
	return len(lines)
}

func plotCandidates(w io.Writer, title, best string, candidates []model.CandidateScore) error {
	bars := make([]stats.Bar, 0, len(candidates))
	for _, c := range candidates {
		bars = append(bars, stats.Bar{
			Label: strconv.Itoa(c.Candidate) + " " + c.Key,
			Value: c.Score,
			Mark:  c.Key == best,
		})
	}
	return stats.PlotBars(w, title, bars, 0, true)
}

func writeReport(path string, report any) error {
	if err := writeFileAtomic(path, func(w *bufio.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	}); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

func historyEnabled() bool {
	if noHistory {
		return false
	}
	if fileCfg.History.Enabled != nil {
		return *fileCfg.History.Enabled
	}
	return true
}

func historyPath() string {
	if fileCfg.History.Path != nil && *fileCfg.History.Path != "" {
		return *fileCfg.History.Path
	}
	return config.DefaultDBPath()
}

// recordRun stores a finished run. Failures are logged and never fail the command.
func recordRun(ctx context.Context, run model.RunRecord, candidates []model.CandidateScore) {
	if !historyEnabled() {
		return
	}
	logger := logging.Component(logging.ComponentStore)
	run.DurationMs = run.EndedAt.Sub(run.StartedAt).Milliseconds()
	st, err := store.Open(historyPath())
	if err != nil {
		logger.Warn("history unavailable", "path", historyPath(), "error", err)
		return
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	id, err := st.InsertRun(ctx, run, candidates)
	if err != nil {
		logger.Warn("failed to record run", "error", err)
		return
	}
	logger.Debug("run recorded", "id", id, "cipher", run.Cipher)
	if seen, err := st.CountByFingerprint(ctx, run.Fingerprint); err == nil && seen > 1 {
		logger.Info("input analyzed before", "runs", seen, "fingerprint", run.Fingerprint[:12])
	}
}
