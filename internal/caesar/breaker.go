package caesar

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/cryptology/internal/logging"
	"github.com/verte-zerg/cryptology/internal/model"
	"github.com/verte-zerg/cryptology/internal/reference"
)

// Breaker breaks a batch of independently shifted lines.
type Breaker struct {
	Tables reference.Tables
	// Workers bounds the lines evaluated at once; 0 means GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
}

// NewBreaker returns a breaker using the default component logger.
func NewBreaker(tables reference.Tables, workers int) *Breaker {
	return &Breaker{
		Tables:  tables,
		Workers: workers,
		Logger:  logging.Component(logging.ComponentCaesar),
	}
}

// Break returns one result per line, in input order. A line that cannot be
// processed carries its error and is echoed unchanged; the other lines are
// unaffected. The returned error is only set when ctx is cancelled.
func (b *Breaker) Break(ctx context.Context, lines []string) ([]model.CaesarLineResult, error) {
	if b.Tables.Unigrams == nil {
		return nil, fmt.Errorf("caesar: unigram table is required")
	}
	logger := b.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	jobs := b.Workers
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]model.CaesarLineResult, len(lines))
	if len(lines) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(lines)))

	for i, line := range lines {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			res := model.CaesarLineResult{Line: i + 1, Input: line}
			if !utf8.ValidString(line) {
				res.Err = fmt.Errorf("line %d: %w: not valid UTF-8", i+1, ErrInvalidLine)
				logger.Warn("line skipped", "line", i+1, "error", res.Err)
				results[i] = res
				return nil
			}

			res.Hypothesis = BestShift(line, b.Tables)
			logger.Debug("line scored",
				"line", i+1,
				"shift", res.Hypothesis.Shift,
				"chi_square", res.Hypothesis.ChiSquare,
				"letters", res.Hypothesis.Letters,
				"low_confidence", res.Hypothesis.LowConfidence,
			)
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Info("caesar batch done", "lines", len(lines))
	return results, nil
}
