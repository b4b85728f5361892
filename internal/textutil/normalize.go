package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var reWhitespace = regexp.MustCompile(`\s+`)

// Normalize lowercases OCR output, collapses whitespace runs (spaces, tabs,
// newlines) into single spaces and trims the ends. Pure and deterministic;
// the same input always yields the same output.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToLower(s)
	s = reWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// digitConfusions maps letters that OCR commonly reads in place of digits.
// Uppercase L is deliberately absent.
var digitConfusions = map[rune]rune{
	'o': '0',
	'O': '0',
	'i': '1',
	'I': '1',
	'l': '1',
}

// CorrectDigitConfusions rewrites confusable letters to digits inside a
// single token. Callers must apply it only to tokens already classified as
// numeric-ID candidates; running it over prose would destroy real words.
func CorrectDigitConfusions(token string) string {
	return strings.Map(func(r rune) rune {
		if d, ok := digitConfusions[r]; ok {
			return d
		}
		return r
	}, token)
}

// TitleWord uppercases the first rune of a single word and lowercases the
// rest, matching how extracted names are presented.
func TitleWord(word string) string {
	if word == "" {
		return word
	}
	r := []rune(strings.ToLower(word))
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}

// IsAlphabetic reports whether s is non-empty and contains letters only.
func IsAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
