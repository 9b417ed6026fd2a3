// Package alphabet defines the 26-letter Latin alphabet used by every scorer.
package alphabet

import "fmt"

// Size is the number of letters in the alphabet.
const Size = 26

// IsLetter reports whether b is an ASCII letter.
func IsLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// Index returns the 0-based alphabet index of an ASCII letter, ignoring case.
func Index(b byte) (int, bool) {
	switch {
	case b >= 'a' && b <= 'z':
		return int(b - 'a'), true
	case b >= 'A' && b <= 'Z':
		return int(b - 'A'), true
	default:
		return 0, false
	}
}

// Upper returns the uppercase letter for an index in [0, Size).
func Upper(i int) byte {
	return 'A' + byte(Mod(i))
}

// Mod reduces n into [0, Size).
func Mod(n int) int {
	n %= Size
	if n < 0 {
		n += Size
	}
	return n
}

// Shift moves a letter by delta positions, preserving case. Non-letters are returned unchanged.
func Shift(b byte, delta int) byte {
	var base byte
	switch {
	case b >= 'a' && b <= 'z':
		base = 'a'
	case b >= 'A' && b <= 'Z':
		base = 'A'
	default:
		return b
	}
	return base + byte(Mod(int(b-base)+delta))
}

// Indices returns the alphabet indices of the letters in text, skipping everything else.
func Indices(text string) []int {
	out := make([]int, 0, len(text))
	for i := 0; i < len(text); i++ {
		if idx, ok := Index(text[i]); ok {
			out = append(out, idx)
		}
	}
	return out
}

// ParseKey converts a key string into shift values. Only letters are accepted.
func ParseKey(key string) ([]int, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}
	shifts := make([]int, 0, len(key))
	for i := 0; i < len(key); i++ {
		idx, ok := Index(key[i])
		if !ok {
			return nil, fmt.Errorf("key contains non-letter %q at position %d", key[i], i)
		}
		shifts = append(shifts, idx)
	}
	return shifts, nil
}

// KeyString renders shift values as an uppercase key.
func KeyString(shifts []int) string {
	out := make([]byte, len(shifts))
	for i, s := range shifts {
		out[i] = Upper(s)
	}
	return string(out)
}
