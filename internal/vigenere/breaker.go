package vigenere

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/cryptology/internal/alphabet"
	"github.com/verte-zerg/cryptology/internal/logging"
	"github.com/verte-zerg/cryptology/internal/model"
	"github.com/verte-zerg/cryptology/internal/reference"
)

// minColumnLetters is the column size below which a result is flagged as low confidence.
const minColumnLetters = 10

// Breaker searches key lengths in [MinKeyLength, MaxKeyLength].
type Breaker struct {
	Tables       reference.Tables
	MinKeyLength int
	MaxKeyLength int
	// Workers bounds the lengths evaluated at once; 0 means GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
}

// NewBreaker validates cfg and returns a breaker using the default component logger.
func NewBreaker(tables reference.Tables, cfg model.VigenereConfig) (*Breaker, error) {
	if err := ValidateRange(cfg.MinKeyLength, cfg.MaxKeyLength); err != nil {
		return nil, err
	}
	if err := checkTables(tables); err != nil {
		return nil, err
	}
	return &Breaker{
		Tables:       tables,
		MinKeyLength: cfg.MinKeyLength,
		MaxKeyLength: cfg.MaxKeyLength,
		Workers:      cfg.Workers,
		Logger:       logging.Component(logging.ComponentVigenere),
	}, nil
}

// Break evaluates every candidate length and keeps the one whose decryption
// has the lowest chi-square, the shorter length on ties. Text with fewer than
// two letters is returned unchanged and flagged as low confidence.
func (b *Breaker) Break(ctx context.Context, text string) (model.VigenereResult, error) {
	if err := ValidateRange(b.MinKeyLength, b.MaxKeyLength); err != nil {
		return model.VigenereResult{}, err
	}
	if err := checkTables(b.Tables); err != nil {
		return model.VigenereResult{}, err
	}
	logger := b.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	letters := alphabet.Indices(text)
	if len(letters) < 2 {
		logger.Warn("too few letters to analyze", "letters", len(letters))
		return model.VigenereResult{
			Best:          model.VigenereKeyHypothesis{Plaintext: text},
			Letters:       len(letters),
			LowConfidence: true,
		}, nil
	}

	jobs := b.Workers
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	count := b.MaxKeyLength - b.MinKeyLength + 1
	candidates := make([]model.VigenereKeyHypothesis, count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, count))
	for i := 0; i < count; i++ {
		length := b.MinKeyLength + i
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			h := crackLength(text, letters, length, b.Tables)
			logger.Debug("length scored", "length", length, "key", h.Key, "chi_square", h.ChiSquare)
			candidates[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.VigenereResult{}, err
	}

	best := 0
	for i := 1; i < count; i++ {
		if candidates[i].ChiSquare < candidates[best].ChiSquare {
			best = i
		}
	}
	winner := candidates[best]
	shifts, err := alphabet.ParseKey(winner.Key)
	if err != nil {
		return model.VigenereResult{}, err
	}

	res := model.VigenereResult{
		Best:          winner,
		Period:        alphabet.KeyString(MinimalPeriod(shifts)),
		Candidates:    candidates,
		Letters:       len(letters),
		LowConfidence: len(letters)/winner.Length < minColumnLetters,
	}
	logger.Info("key recovered",
		"length", winner.Length,
		"key", res.Period,
		"chi_square", winner.ChiSquare,
		"letters", len(letters),
		"low_confidence", res.LowConfidence,
	)
	return res, nil
}
