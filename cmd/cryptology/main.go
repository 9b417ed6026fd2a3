// Package main provides the CLI entrypoint for cryptology.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/cryptology/internal/config"
	"github.com/verte-zerg/cryptology/internal/logging"
	"github.com/verte-zerg/cryptology/internal/reference"
)

const (
	defaultLogLevel  = "warn"
	defaultLogFormat = "text"
)

var (
	inputPath    string
	outputPath   string
	unigramsPath string
	bigramsPath  string
	workers      int
	logLevel     string
	logFormat    string

	fileCfg config.FileConfig
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	warnColor = color.New(color.FgYellow)
	keyColor  = color.New(color.FgGreen, color.Bold)

	// Version is the semantic version of the CLI.
	Version = versionMajorColor.Sprint("0") + "." + versionMinorColor.Sprint("3") + "." + versionPatchColor.Sprint("0")
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "cryptology",
		Short:             "Statistical cryptanalysis of classical ciphers",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: loadCommonConfig,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&inputPath, "input", "i", "", "input file (default: stdin)")
	flags.StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")
	flags.StringVar(&unigramsPath, "unigrams", "", "unigram reference table (default: built-in English)")
	flags.StringVar(&bigramsPath, "bigrams", "", "bigram reference table (default: built-in English)")
	flags.IntVar(&workers, "workers", 0, "parallel workers (0: number of CPUs)")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", defaultLogFormat, "log format (text, json)")

	rootCmd.AddCommand(newFrequencyCmd())
	rootCmd.AddCommand(newBreakCaesarCmd())
	rootCmd.AddCommand(newBreakVigenereCmd())
	rootCmd.AddCommand(newEncryptCmd())
	rootCmd.AddCommand(newDecryptCmd())
	rootCmd.AddCommand(newSubstituteCmd())
	rootCmd.AddCommand(newTablesCmd())
	rootCmd.AddCommand(newWordlistCmd())
	rootCmd.AddCommand(newSelftestCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// loadCommonConfig merges the config file into the shared flags, installs the
// logger and validates the result before any command reads its input.
func loadCommonConfig(cmd *cobra.Command, _ []string) error {
	var err error
	fileCfg, err = config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "unigrams", &unigramsPath, fileCfg.Tables.Unigrams)
	applyStringConfig(cmd, "bigrams", &bigramsPath, fileCfg.Tables.Bigrams)
	applyIntConfig(cmd, "workers", &workers, fileCfg.Engine.Workers)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-format", &logFormat, fileCfg.Log.Format)

	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(logFormat)
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: level, Output: cmd.ErrOrStderr(), Format: format})
	configureStderrColor(cmd.ErrOrStderr())

	return validateCommonConfig(workers)
}

func validateCommonConfig(workers int) error {
	if workers < 0 {
		return fmt.Errorf("--workers must be >= 0")
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "cryptology %s\n", Version)
			return err
		},
	}
}

func loadTables(withBigrams bool) (reference.Tables, error) {
	tables, err := reference.Load(unigramsPath, bigramsPath, withBigrams)
	if err != nil {
		return reference.Tables{}, fmt.Errorf("failed to load reference tables: %w", err)
	}
	return tables, nil
}

func readInput(cmd *cobra.Command) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if inputPath != "" {
		file, err := os.Open(inputPath)
		if err != nil {
			return "", fmt.Errorf("failed to open input: %w", err)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil {
				// Best-effort close for read-only input.
				_ = cerr
			}
		}()
		r = file
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input %s: %w", displayPath(inputPath), err)
	}
	return string(data), nil
}

func writeOutput(cmd *cobra.Command, text string) error {
	if outputPath == "" {
		if _, err := io.WriteString(cmd.OutOrStdout(), text); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err := writeFileAtomic(outputPath, func(w *bufio.Writer) error {
		_, err := w.WriteString(text)
		return err
	}); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return nil
}

func writeFileAtomic(path string, fill func(*bufio.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".cryptology-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if err := fill(writer); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close: %w", err)
	}
	return os.Rename(tmpPath, path)
}

func displayPath(path string) string {
	if path == "" {
		return "<stdin>"
	}
	return path
}

// splitLines splits text into lines without their terminators. ends[i] is
// the terminator that followed lines[i]: "\n", "\r\n" or "" for a final
// unterminated line.
func splitLines(text string) (lines, ends []string) {
	for text != "" {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			lines = append(lines, text)
			ends = append(ends, "")
			break
		}
		line, end := text[:i], "\n"
		if strings.HasSuffix(line, "\r") {
			line, end = line[:len(line)-1], "\r\n"
		}
		lines = append(lines, line)
		ends = append(ends, end)
		text = text[i+1:]
	}
	return lines, ends
}

// joinLines reverses splitLines, restoring each line's terminator.
func joinLines(lines, ends []string) string {
	var b strings.Builder
	for i, line := range lines {
		b.WriteString(line)
		if i < len(ends) {
			b.WriteString(ends[i])
		}
	}
	return b.String()
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

// configureStderrColor colors warnings and keys only when w is a terminal.
func configureStderrColor(w io.Writer) {
	useColor := isTerminal(w) && os.Getenv("NO_COLOR") == ""
	for _, c := range []*color.Color{warnColor, keyColor} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func warnf(w io.Writer, format string, args ...any) {
	if _, err := warnColor.Fprintf(w, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
