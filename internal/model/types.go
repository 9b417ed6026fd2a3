// Package model defines shared data structures.
package model

import "time"

// Cipher names used in run records and reports.
const (
	CipherCaesar   = "caesar"
	CipherVigenere = "vigenere"
)

// CaesarHypothesis is the chosen shift for one line.
type CaesarHypothesis struct {
	Shift     int     `yaml:"shift"`
	Plaintext string  `yaml:"plaintext"`
	ChiSquare float64 `yaml:"chi_square"`
	// Scores holds the chi-square of every shift, indexed by shift.
	Scores        [26]float64 `yaml:"-"`
	Letters       int         `yaml:"letters"`
	LowConfidence bool        `yaml:"low_confidence"`
}

// CaesarLineResult is the outcome for one input line of a batch.
type CaesarLineResult struct {
	Line       int              `yaml:"line"`
	Input      string           `yaml:"-"`
	Hypothesis CaesarHypothesis `yaml:"hypothesis"`
	// Err is set when the line could not be processed; the input is echoed.
	Err error `yaml:"-"`
}

// Output returns the decrypted line, or the input when the line failed.
func (r CaesarLineResult) Output() string {
	if r.Err != nil {
		return r.Input
	}
	return r.Hypothesis.Plaintext
}

// PairKeyCandidate is the best two-letter key for adjacent key positions.
type PairKeyCandidate struct {
	First  int     `yaml:"first"`
	Second int     `yaml:"second"`
	Score  float64 `yaml:"score"`
	// Bigrams is the number of ciphertext bigrams the score was summed over.
	Bigrams int `yaml:"bigrams"`
}

// VigenereKeyHypothesis is the reconciled key for one candidate length.
type VigenereKeyHypothesis struct {
	Length    int                `yaml:"length"`
	Key       string             `yaml:"key"`
	Plaintext string             `yaml:"-"`
	ChiSquare float64            `yaml:"chi_square"`
	Pairs     []PairKeyCandidate `yaml:"pairs,omitempty"`
}

// VigenereResult is the outcome of a key-length search.
type VigenereResult struct {
	Best VigenereKeyHypothesis `yaml:"best"`
	// Period is the key reduced to its shortest repeating unit.
	Period        string                  `yaml:"period"`
	Candidates    []VigenereKeyHypothesis `yaml:"candidates"`
	Letters       int                     `yaml:"letters"`
	LowConfidence bool                    `yaml:"low_confidence"`
}

// VigenereConfig bounds the key-length search.
type VigenereConfig struct {
	MinKeyLength int
	MaxKeyLength int
	Workers      int
}

// HistoryConfig defines filters for history output.
type HistoryConfig struct {
	Cipher string
	Since  *time.Time
	Last   int
}

// RunRecord captures one completed breaking run.
type RunRecord struct {
	ID          string
	Cipher      string
	Fingerprint string
	Key         string
	KeyLength   int
	ChiSquare   float64
	Letters     int
	Lines       int
	StartedAt   time.Time
	EndedAt     time.Time
	DurationMs  int64
}

// CandidateScore is the score of one hypothesis in a run: a key length for
// Vigenère, a shift for Caesar.
type CandidateScore struct {
	Candidate int
	Key       string
	Score     float64
}

// SelfTestResult summarizes recovery rates for one cipher.
type SelfTestResult struct {
	Cipher    string
	Trials    int
	Recovered int
}
