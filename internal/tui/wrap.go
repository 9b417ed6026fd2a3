package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/cryptology/internal/alphabet"
	"github.com/verte-zerg/cryptology/internal/substitution"
)

type styledRune struct {
	s         string
	width     int
	isSpace   bool
	isNewline bool
}

// buildStyledRunes renders text through mapping. Letters whose cipher letter
// was assigned by hand are bright, ranked guesses are amber, and occurrences
// of the selected cipher letter are underlined.
func buildStyledRunes(text []rune, mapping substitution.Map, pinned [alphabet.Size]bool, pending int) []styledRune {
	out := make([]styledRune, 0, len(text))
	for _, r := range text {
		if r == '\n' {
			out = append(out, styledRune{isNewline: true})
			continue
		}
		displayed := r
		style := textStyle
		if r <= 0x7f {
			if c, ok := alphabet.Index(byte(r)); ok {
				displayed = rune(mapping.Apply(string(r))[0])
				switch {
				case c == pending:
					style = selectedStyle
				case pinned[c]:
					style = pinnedStyle
				default:
					style = guessStyle
				}
			}
		}
		out = append(out, styledRune{
			s:       style.Render(string(displayed)),
			width:   runewidth.RuneWidth(displayed),
			isSpace: r == ' ',
		})
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		if item.isNewline {
			b.WriteRune('\n')
			continue
		}
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapLines wraps each input line separately so hard line breaks survive.
func wrapLines(runes []styledRune, width int) string {
	var out strings.Builder
	start := 0
	for i, item := range runes {
		if !item.isNewline {
			continue
		}
		out.WriteString(wrapStyledRunes(runes[start:i], width))
		out.WriteRune('\n')
		start = i + 1
	}
	out.WriteString(wrapStyledRunes(runes[start:], width))
	return out.String()
}

// wrapStyledRunes fills lines greedily word by word. Words wider than the
// line are split, and the gap at a break is dropped.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var (
		lines    []string
		cur      []styledRune
		curWidth int
	)
	flush := func() {
		lines = append(lines, renderStyledRunes(cur))
		cur = nil
		curWidth = 0
	}
	for _, w := range splitWords(runes) {
		gap := w.gap
		if len(cur) > 0 && curWidth+lineWidthOf(gap)+lineWidthOf(w.body) > width {
			if len(w.body) == 0 {
				continue
			}
			flush()
			gap = nil
		}
		cur = append(cur, gap...)
		curWidth += lineWidthOf(gap)
		for _, item := range w.body {
			if len(cur) > 0 && curWidth+item.width > width {
				flush()
			}
			cur = append(cur, item)
			curWidth += item.width
		}
	}
	flush()
	return strings.Join(lines, "\n")
}

type word struct {
	gap  []styledRune
	body []styledRune
}

// splitWords cuts runes into words, each carrying the spaces before it.
func splitWords(runes []styledRune) []word {
	var words []word
	for i := 0; i < len(runes); {
		start := i
		for i < len(runes) && runes[i].isSpace {
			i++
		}
		mid := i
		for i < len(runes) && !runes[i].isSpace {
			i++
		}
		words = append(words, word{gap: runes[start:mid], body: runes[mid:i]})
	}
	return words
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}
