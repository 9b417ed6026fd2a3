package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// Bar is one labelled value of a bar plot.
type Bar struct {
	Label string
	Value float64
	// Mark highlights the bar, e.g. the chosen candidate.
	Mark bool
}

const (
	minPlotWidth        = 10
	labelSeparator      = " │ "
	barRune             = '█'
	partialRune         = '▌'
	colorReset          = "\x1b[0m"
	colorMark           = "\x1b[32m"
	colorBar            = "\x1b[36m"
	terminalWidthBackup = 80
)

// PlotBars renders one horizontal bar per value. When lowerIsBetter is set
// the shortest bar belongs to the smallest value and bars are drawn as the
// distance from the worst value, so the best candidate has the longest bar.
func PlotBars(w io.Writer, title string, bars []Bar, width int, lowerIsBetter bool) error {
	return plotBars(w, title, bars, width, lowerIsBetter, shouldUseColor(w))
}

// PlotBarsWithColor renders bars with forced color output.
func PlotBarsWithColor(w io.Writer, title string, bars []Bar, width int, lowerIsBetter bool, forceColor bool) error {
	return plotBars(w, title, bars, width, lowerIsBetter, forceColor || shouldUseColor(w))
}

func plotBars(w io.Writer, title string, bars []Bar, width int, lowerIsBetter bool, useColor bool) error {
	bars = finiteBars(bars)
	if len(bars) == 0 {
		return nil
	}

	labelWidth := 0
	valueWidth := 0
	values := make([]string, len(bars))
	for i, b := range bars {
		labelWidth = max(labelWidth, displayWidth(b.Label))
		values[i] = fmt.Sprintf("%.3f", b.Value)
		valueWidth = max(valueWidth, len(values[i]))
	}

	if width <= 0 {
		width = terminalWidth()
	}
	barWidth := width - labelWidth - valueWidth - 2*displayWidth(labelSeparator)
	if barWidth < minPlotWidth {
		barWidth = minPlotWidth
	}

	minVal, maxVal := barRange(bars)
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for i, b := range bars {
		length := barLength(b.Value, minVal, maxVal, barWidth, lowerIsBetter)
		bar := renderBar(length)
		if useColor {
			code := colorBar
			if b.Mark {
				code = colorMark
			}
			bar = code + bar + colorReset
		}
		pad := strings.Repeat(" ", barWidth-int(math.Ceil(length)))
		line := padCell(b.Label, labelWidth, false) + labelSeparator + bar + pad + labelSeparator + padCell(values[i], valueWidth, true)
		if b.Mark {
			line += " *"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func finiteBars(bars []Bar) []Bar {
	out := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if math.IsNaN(b.Value) || math.IsInf(b.Value, 0) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func barRange(bars []Bar) (float64, float64) {
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for _, b := range bars {
		minVal = math.Min(minVal, b.Value)
		maxVal = math.Max(maxVal, b.Value)
	}
	return minVal, maxVal
}

// barLength returns the bar size in cells, in half-cell steps. The worst
// value still gets half a cell so every row shows something.
func barLength(v, minVal, maxVal float64, width int, lowerIsBetter bool) float64 {
	if maxVal-minVal < 1e-9 {
		return float64(width)
	}
	pos := (v - minVal) / (maxVal - minVal)
	if lowerIsBetter {
		pos = 1 - pos
	}
	halves := math.Round(pos * float64(2*width))
	if halves < 1 {
		halves = 1
	}
	return halves / 2
}

func renderBar(length float64) string {
	full := int(length)
	s := strings.Repeat(string(barRune), full)
	if length-float64(full) >= 0.5 {
		s += string(partialRune)
	}
	return s
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
