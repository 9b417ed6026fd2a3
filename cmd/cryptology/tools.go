package main

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/cryptology/internal/alphabet"
	"github.com/verte-zerg/cryptology/internal/config"
	"github.com/verte-zerg/cryptology/internal/reference"
	"github.com/verte-zerg/cryptology/internal/stats"
	"github.com/verte-zerg/cryptology/internal/substitution"
	"github.com/verte-zerg/cryptology/internal/tui"
	"github.com/verte-zerg/cryptology/internal/wordfreq"
	"github.com/verte-zerg/cryptology/internal/wordlist"
)

const (
	defaultWordlistSz = 10000
	defaultSmoothing  = 0.5
	wordfreqListType  = "large"
)

var (
	substituteNoTUI bool

	tablesCorpus    string
	tablesWordfreq  bool
	tablesOutDir    string
	tablesSmoothing float64

	wordlistSize  int
	wordlistForce bool
)

func newFrequencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "frequency-analysis",
		Aliases: []string{"freq", "fa"},
		Short:   "Print letter frequencies as a markdown table",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, err := readInput(cmd)
			if err != nil {
				return err
			}
			var b strings.Builder
			if err := stats.RenderFrequencyTable(&b, stats.Analyze(text)); err != nil {
				return err
			}
			return writeOutput(cmd, b.String())
		},
	}
}

func newSubstituteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "substitute",
		Short: "Solve a substitution cipher interactively",
		Args:  cobra.NoArgs,
		RunE:  runSubstituteCmd,
	}
	cmd.Flags().BoolVar(&substituteNoTUI, "no-tui", false, "print the frequency-ranked mapping and applied text")
	return cmd
}

func runSubstituteCmd(cmd *cobra.Command, _ []string) error {
	tables, err := loadTables(false)
	if err != nil {
		return err
	}
	text, err := readInput(cmd)
	if err != nil {
		return err
	}

	if substituteNoTUI {
		dist := stats.Analyze(text)
		mapping := substitution.FromDistribution(dist, tables.Unigrams)
		plain := mapping.Apply(text)
		logErrf("Ciphertext order: %s\nReference order:  %s\n",
			stats.TopLetters(dist, alphabet.Size), stats.ReferenceOrder(tables.Unigrams))
		logErrln(mapping.String())
		logErrf("Chi-square of mapped text: %.3f\n", stats.ChiSquareText(plain, tables.Unigrams))
		return writeOutput(cmd, plain)
	}

	m := tui.NewModel(text, tables.Unigrams)
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if inputPath == "" {
		// stdin carried the ciphertext, read keys from the terminal instead.
		opts = append(opts, tea.WithInputTTY())
	}
	program := tea.NewProgram(m, opts...)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if !m.Saved() {
		logErrln("Mapping discarded.")
		return nil
	}
	logErrln(m.Mapping().String())
	return writeOutput(cmd, m.Plaintext())
}

func newTablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Build reference tables from a corpus or the wordfreq dataset",
		Args:  cobra.NoArgs,
		RunE:  runTablesCmd,
	}
	cmd.Flags().StringVar(&tablesCorpus, "corpus", "", "plain-text corpus to count")
	cmd.Flags().BoolVar(&tablesWordfreq, "wordfreq", false, "build from the wordfreq English list")
	cmd.Flags().StringVar(&tablesOutDir, "out-dir", "", "output directory (default: data dir)")
	cmd.Flags().Float64Var(&tablesSmoothing, "smoothing", defaultSmoothing, "count added to every bigram (0 keeps observed pairs only)")
	cmd.MarkFlagsMutuallyExclusive("corpus", "wordfreq")
	cmd.MarkFlagsOneRequired("corpus", "wordfreq")
	return cmd
}

func runTablesCmd(cmd *cobra.Command, _ []string) error {
	if tablesSmoothing < 0 || math.IsNaN(tablesSmoothing) || math.IsInf(tablesSmoothing, 0) {
		return fmt.Errorf("--smoothing must be a finite value >= 0")
	}
	outDir := tablesOutDir
	if outDir == "" {
		outDir = config.DefaultTablesDir()
	}
	opts := reference.BuildOptions{Smoothing: tablesSmoothing}

	var tables reference.Tables
	if tablesCorpus != "" {
		file, err := os.Open(tablesCorpus)
		if err != nil {
			return fmt.Errorf("failed to open corpus: %w", err)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil {
				// Best-effort close for read-only corpus.
				_ = cerr
			}
		}()
		tables, err = reference.BuildFromText(file, opts)
		if err != nil {
			return fmt.Errorf("failed to build tables from %s: %w", tablesCorpus, err)
		}
	} else {
		wheel, err := fetchWheel(cmd)
		if err != nil {
			return err
		}
		entries, err := wordfreq.ReadEntries(wheel.Path, wordfreqListType)
		if err != nil {
			return fmt.Errorf("failed to read word frequencies: %w", err)
		}
		words := make([]reference.WordWeight, 0, len(entries))
		for _, e := range entries {
			words = append(words, reference.WordWeight{Word: e.Word, Weight: math.Pow(10, e.Zipf)})
		}
		tables, err = reference.BuildFromWords(words, opts)
		if err != nil {
			return fmt.Errorf("failed to build tables from word frequencies: %w", err)
		}
		if err := wordfreq.WriteAttribution(wheel.Path, outDir); err != nil {
			return fmt.Errorf("failed to write attribution: %w", err)
		}
	}

	uniPath := filepath.Join(outDir, "unigrams.txt")
	if err := writeFileAtomic(uniPath, func(w *bufio.Writer) error {
		return reference.WriteUnigrams(w, tables.Unigrams)
	}); err != nil {
		return fmt.Errorf("failed to write %s: %w", uniPath, err)
	}
	biPath := filepath.Join(outDir, "bigrams.txt")
	if err := writeFileAtomic(biPath, func(w *bufio.Writer) error {
		return reference.WriteBigrams(w, tables.Bigrams)
	}); err != nil {
		return fmt.Errorf("failed to write %s: %w", biPath, err)
	}
	logErrf("Wrote %s and %s (%d bigrams)\n", uniPath, biPath, tables.Bigrams.Len())
	return nil
}

func newWordlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordlist",
		Short: "Generate the English word list used by selftest",
		Args:  cobra.NoArgs,
		RunE:  runWordlistCmd,
	}
	cmd.Flags().IntVar(&wordlistSize, "size", defaultWordlistSz, "number of words")
	cmd.Flags().BoolVar(&wordlistForce, "force", false, "overwrite existing file")
	return cmd
}

func runWordlistCmd(cmd *cobra.Command, _ []string) error {
	if wordlistSize <= 0 {
		return fmt.Errorf("--size must be greater than 0")
	}
	outPath := config.DefaultWordListPath()
	if !wordlistForce {
		if _, err := os.Stat(outPath); err == nil {
			return fmt.Errorf("word list already exists: %s (use --force to overwrite)", outPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat word list: %w", err)
		}
	}

	wheel, err := fetchWheel(cmd)
	if err != nil {
		return err
	}
	logErrln("Extracting English word list...")
	words, err := wordfreq.ExtractWordlist(wheel.Path, wordfreqListType, wordlistSize)
	if err != nil {
		return fmt.Errorf("failed to extract word list: %w", err)
	}
	if err := wordlist.WriteWords(outPath, words); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	logErrf("Wrote %s (%d words)\n", outPath, len(words))

	if err := wordfreq.WriteAttribution(wheel.Path, filepath.Dir(outPath)); err != nil {
		return fmt.Errorf("failed to write attribution: %w", err)
	}
	logErrln("Wrote ATTRIBUTION.txt and LICENSE.txt")
	return nil
}

func fetchWheel(cmd *cobra.Command) (wordfreq.Wheel, error) {
	logErrln("Fetching wordfreq metadata...")
	wheel, err := wordfreq.DownloadLatestWheel(cmd.Context(), config.DefaultWordfreqCacheDir())
	if err != nil {
		return wordfreq.Wheel{}, fmt.Errorf("failed to download wordfreq wheel: %w", err)
	}
	if wheel.Cached {
		logErrf("Using cached wheel %s\n", wheel.Filename)
	} else {
		logErrf("Downloaded wheel %s\n", wheel.Filename)
	}
	return wheel, nil
}
