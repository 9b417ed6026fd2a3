package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/cryptology/internal/config"
	"github.com/verte-zerg/cryptology/internal/model"
	"github.com/verte-zerg/cryptology/internal/stats"
	"github.com/verte-zerg/cryptology/internal/store"
	"github.com/verte-zerg/cryptology/internal/vigenere"
)

var (
	historyCipher string
	historySince  string
	historyLast   int
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded breaking runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyCipher, "cipher", "", "cipher filter (caesar, vigenere)")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N runs")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := historyConfig(historyCipher, historySince, historyLast)
	if err != nil {
		return err
	}

	st, err := store.Open(historyPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	return stats.RenderReport(cmd.OutOrStdout(), report, 0)
}

func historyConfig(cipher, since string, last int) (model.HistoryConfig, error) {
	cfg := model.HistoryConfig{Cipher: strings.ToLower(strings.TrimSpace(cipher)), Last: last}
	switch cfg.Cipher {
	case "", model.CipherCaesar, model.CipherVigenere:
	default:
		return model.HistoryConfig{}, fmt.Errorf("--cipher must be %q or %q", model.CipherCaesar, model.CipherVigenere)
	}
	if last < 0 {
		return model.HistoryConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return model.HistoryConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	return cfg, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# cryptology configuration
# Uncomment a value to enable it. CLI flags override config values.

[tables]
# unigrams = "%s"   # 26 probabilities, one per line (default: built-in English)
# bigrams = "%s"    # "XY value" log10 scores (default: built-in English)

[vigenere]
# min-key-length = %d     # Shortest key length to try
# max-key-length = %d    # Longest key length to try

[engine]
# workers = 0             # Parallel workers (0: number of CPUs)

[log]
# level = %q          # debug, info, warn, error
# format = %q         # text, json

[history]
# enabled = true          # Record break-caesar/break-vigenere runs
# path = "%s"
`,
		filepath.Join(config.DefaultTablesDir(), "unigrams.txt"),
		filepath.Join(config.DefaultTablesDir(), "bigrams.txt"),
		vigenere.MinKeyLength,
		vigenere.MaxKeyLength,
		defaultLogLevel,
		defaultLogFormat,
		config.DefaultDBPath(),
	)
}
