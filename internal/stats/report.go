package stats

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/cryptology/internal/model"
	"github.com/verte-zerg/cryptology/internal/store"
)

// Report contains precomputed data for history rendering.
type Report struct {
	Runs []model.RunRecord
	// LastCandidates holds the candidate scores of the most recent run.
	LastCandidates []model.CandidateScore
}

// BuildReport loads and prepares data for history rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.HistoryConfig) (Report, error) {
	runs, err := st.ListRuns(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	report := Report{Runs: runs}
	if len(runs) == 0 {
		return report, nil
	}
	report.LastCandidates, err = st.ListCandidates(ctx, runs[len(runs)-1].ID)
	if err != nil {
		return Report{}, err
	}
	return report, nil
}

// RenderReport prints the run table, a chi-square trend and a plot of the
// last run's candidates.
func RenderReport(w io.Writer, r Report, plotWidth int) error {
	if len(r.Runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	headers := []string{"Ended", "Cipher", "Key", "Length", "Chi-square", "Letters", "Time", "Input"}
	rows := make([][]string, 0, len(r.Runs))
	chi := make([]float64, 0, len(r.Runs))
	for _, run := range r.Runs {
		rows = append(rows, []string{
			run.EndedAt.Local().Format("2006-01-02 15:04"),
			run.Cipher,
			run.Key,
			strconv.Itoa(run.KeyLength),
			fmt.Sprintf("%.2f", run.ChiSquare),
			strconv.Itoa(run.Letters),
			fmt.Sprintf("%dms", run.DurationMs),
			shortFingerprint(run.Fingerprint),
		})
		chi = append(chi, run.ChiSquare)
	}
	for _, line := range formatTable(headers, rows, map[int]bool{3: true, 4: true, 5: true, 6: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if len(chi) > 1 {
		if _, err := fmt.Fprintf(w, "\nChi-square trend: %s\n", Sparkline(chi)); err != nil {
			return err
		}
	}

	if len(r.LastCandidates) == 0 {
		return nil
	}
	last := r.Runs[len(r.Runs)-1]
	bars := make([]Bar, 0, len(r.LastCandidates))
	for _, c := range r.LastCandidates {
		label := strconv.Itoa(c.Candidate)
		if c.Key != "" {
			label += " " + c.Key
		}
		bars = append(bars, Bar{
			Label: label,
			Value: c.Score,
			Mark:  c.Key != "" && c.Key == last.Key,
		})
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return PlotBars(w, fmt.Sprintf("Candidates of the last %s run (chi-square, lower is better):", last.Cipher), bars, plotWidth, true)
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

// RenderSelfTest prints the recovery rate of every cipher.
func RenderSelfTest(w io.Writer, results []model.SelfTestResult) error {
	headers := []string{"Cipher", "Recovered", "Trials", "Rate"}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rate := 0.0
		if r.Trials > 0 {
			rate = float64(r.Recovered) / float64(r.Trials) * 100
		}
		rows = append(rows, []string{
			r.Cipher,
			strconv.Itoa(r.Recovered),
			strconv.Itoa(r.Trials),
			fmt.Sprintf("%.1f%%", rate),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
