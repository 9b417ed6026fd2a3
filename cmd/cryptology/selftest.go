package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/cryptology/internal/caesar"
	"github.com/verte-zerg/cryptology/internal/config"
	"github.com/verte-zerg/cryptology/internal/generator"
	"github.com/verte-zerg/cryptology/internal/model"
	"github.com/verte-zerg/cryptology/internal/reference"
	"github.com/verte-zerg/cryptology/internal/stats"
	"github.com/verte-zerg/cryptology/internal/vigenere"
	"github.com/verte-zerg/cryptology/internal/wordlist"
)

const (
	defaultTrials        = 20
	defaultSelftestWords = 120
)

var (
	selftestTrials   int
	selftestWords    int
	selftestSeed     int64
	selftestWordlist string
)

func newSelftestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Measure key recovery on random plaintexts",
		Args:  cobra.NoArgs,
		RunE:  runSelftestCmd,
	}
	cmd.Flags().IntVar(&selftestTrials, "trials", defaultTrials, "trials per cipher")
	cmd.Flags().IntVar(&selftestWords, "words", defaultSelftestWords, "words per plaintext")
	cmd.Flags().Int64Var(&selftestSeed, "seed", 0, "random seed (0: time based)")
	cmd.Flags().StringVar(&selftestWordlist, "wordlist", "", "word list (default: downloaded list, else built-in corpus)")
	cmd.Flags().IntVar(&minKeyLength, "min-key-length", vigenere.MinKeyLength, "shortest Vigenère key")
	cmd.Flags().IntVar(&maxKeyLength, "max-key-length", vigenere.MaxKeyLength, "longest Vigenère key")
	return cmd
}

func runSelftestCmd(cmd *cobra.Command, _ []string) error {
	applyIntConfig(cmd, "min-key-length", &minKeyLength, fileCfg.Vigenere.MinKeyLength)
	applyIntConfig(cmd, "max-key-length", &maxKeyLength, fileCfg.Vigenere.MaxKeyLength)
	if selftestTrials <= 0 {
		return fmt.Errorf("--trials must be > 0")
	}
	if selftestWords <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	cfg := model.VigenereConfig{MinKeyLength: minKeyLength, MaxKeyLength: maxKeyLength, Workers: workers}
	if err := validateVigenereConfig(cfg); err != nil {
		return err
	}

	words, err := selftestWordList(cmd)
	if err != nil {
		return err
	}
	tables, err := loadTables(true)
	if err != nil {
		return err
	}

	gen := generator.New()
	if selftestSeed != 0 {
		gen = generator.NewSeeded(selftestSeed)
	}
	results, err := runSelftest(cmd.Context(), gen, words, tables, cfg, selftestTrials, selftestWords)
	if err != nil {
		return err
	}
	return stats.RenderSelfTest(cmd.OutOrStdout(), results)
}

func selftestWordList(cmd *cobra.Command) ([]string, error) {
	path := selftestWordlist
	if path == "" {
		path = config.DefaultWordListPath()
	}
	words, err := wordlist.LoadWords(path)
	if err == nil {
		return words, nil
	}
	if cmd.Flags().Changed("wordlist") {
		return nil, fmt.Errorf("failed to load word list %s: %w", path, err)
	}
	logErrf("No word list at %s (run: cryptology wordlist); using built-in corpus words\n", path)
	return wordlist.FromText(reference.EnglishCorpus()), nil
}

func runSelftest(ctx context.Context, gen *generator.Generator, words []string, tables reference.Tables, cfg model.VigenereConfig, trials, wordCount int) ([]model.SelfTestResult, error) {
	caesarBreaker := caesar.NewBreaker(tables, cfg.Workers)
	vigenereBreaker, err := vigenere.NewBreaker(tables, cfg)
	if err != nil {
		return nil, err
	}

	caesarRes := model.SelfTestResult{Cipher: model.CipherCaesar, Trials: trials}
	vigenereRes := model.SelfTestResult{Cipher: model.CipherVigenere, Trials: trials}
	started := time.Now()
	for i := 0; i < trials; i++ {
		plain := gen.Plaintext(words, wordCount, generator.DefaultOptions())

		shift := gen.Shift()
		ct, err := caesar.Encrypt(plain, shift)
		if err != nil {
			return nil, err
		}
		lines, err := caesarBreaker.Break(ctx, []string{ct})
		if err != nil {
			return nil, err
		}
		if lines[0].Err == nil && lines[0].Hypothesis.Shift == shift {
			caesarRes.Recovered++
		}

		key := gen.Key(cfg.MinKeyLength, cfg.MaxKeyLength)
		ct, err = vigenere.Encrypt(plain, key)
		if err != nil {
			return nil, err
		}
		res, err := vigenereBreaker.Break(ctx, ct)
		if err != nil {
			return nil, err
		}
		if res.Period == key {
			vigenereRes.Recovered++
		}
	}
	logErrf("Ran %d trials in %s\n", trials, time.Since(started).Round(time.Millisecond))
	return []model.SelfTestResult{caesarRes, vigenereRes}, nil
}
