package wordlist

import "strings"

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// FilterForLang returns a language-specific filter for word lists. Only
// English has a filter: plaintext words must consist of a..z, because the
// ciphers work on the 26-letter alphabet.
func FilterForLang(lang string) FilterFunc {
	if strings.EqualFold(lang, "en") {
		return filterEnglishASCII
	}
	return func(string) bool { return true }
}

func filterEnglishASCII(word string) bool {
	return word != "" && strings.Trim(word, lowerLetters) == ""
}

const lowerLetters = "abcdefghijklmnopqrstuvwxyz"
