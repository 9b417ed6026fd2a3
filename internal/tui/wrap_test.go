package tui

import (
	"testing"

	"github.com/verte-zerg/cryptology/internal/alphabet"
	"github.com/verte-zerg/cryptology/internal/substitution"
)

func TestBuildStyledRunesStyles(t *testing.T) {
	var pinned [alphabet.Size]bool
	pinned[0] = true

	runes := buildStyledRunes([]rune("Ab C"), substitution.Identity(), pinned, 1)
	if len(runes) != 4 {
		t.Fatalf("expected 4 runes, got %d", len(runes))
	}
	if runes[0].s != pinnedStyle.Render("A") {
		t.Fatalf("expected pinned style for first rune")
	}
	if runes[1].s != selectedStyle.Render("b") {
		t.Fatalf("expected selected style for second rune")
	}
	if !runes[2].isSpace || runes[2].s != textStyle.Render(" ") {
		t.Fatalf("expected plain space")
	}
	if runes[3].s != guessStyle.Render("C") {
		t.Fatalf("expected guess style for last rune")
	}
}

func TestBuildStyledRunesAppliesMapping(t *testing.T) {
	mapping := substitution.Identity()
	if err := mapping.Set('A', 'E'); err != nil {
		t.Fatalf("set: %v", err)
	}
	runes := buildStyledRunes([]rune("ae!"), mapping, [alphabet.Size]bool{}, noPending)
	if runes[0].s != guessStyle.Render("e") {
		t.Fatalf("expected a to render as e")
	}
	if runes[1].s != guessStyle.Render("a") {
		t.Fatalf("expected e to render as a")
	}
	if runes[2].s != textStyle.Render("!") {
		t.Fatalf("expected punctuation untouched")
	}
}

func TestWrapStyledRunesBreaksAtSpace(t *testing.T) {
	got := wrapStyledRunes(plainRunes("ab cd"), 3)
	if got != "ab\ncd" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapStyledRunesBreaksLongWord(t *testing.T) {
	got := wrapStyledRunes(plainRunes("abcdef"), 4)
	if got != "abcd\nef" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapLinesKeepsLineBreaks(t *testing.T) {
	got := wrapLines(plainRunes("ab\ncd ef"), 3)
	if got != "ab\ncd\nef" {
		t.Fatalf("unexpected wrap: %q", got)
	}
	if got := wrapLines(plainRunes("ab\ncd"), 0); got != "ab\ncd" {
		t.Fatalf("unexpected unwrapped output: %q", got)
	}
}

func plainRunes(text string) []styledRune {
	out := make([]styledRune, 0, len(text))
	for _, r := range text {
		if r == '\n' {
			out = append(out, styledRune{isNewline: true})
			continue
		}
		out = append(out, styledRune{s: string(r), width: 1, isSpace: r == ' '})
	}
	return out
}

func TestWrapStyledRunesDropsOverflowingTrailingSpaces(t *testing.T) {
	if got := wrapStyledRunes(plainRunes("ab  "), 3); got != "ab" {
		t.Fatalf("unexpected wrap: %q", got)
	}
	if got := wrapStyledRunes(plainRunes("a b"), 3); got != "a b" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}
