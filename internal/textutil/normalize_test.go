package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercases and collapses spaces",
			input:    "DRIVER  LICENSE\tDL: C1234567",
			expected: "driver license dl: c1234567",
		},
		{
			name:     "newlines become single spaces",
			input:    "REPUBLIC OF GHANA\n\nNATIONAL  IDENTIFICATION\r\nCARD",
			expected: "republic of ghana national identification card",
		},
		{
			name:     "trims leading and trailing whitespace",
			input:    "  \n voter id \t ",
			expected: "voter id",
		},
		{
			name:     "empty stays empty",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only collapses to empty",
			input:    " \t\n ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			assert.Equal(t, tt.expected, got)
			// same input, same output
			assert.Equal(t, got, Normalize(tt.input))
		})
	}
}

func TestCorrectDigitConfusions(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected string
	}{
		{name: "letter O to zero", token: "c12O4567", expected: "c1204567"},
		{name: "lowercase o to zero", token: "b12o4567", expected: "b1204567"},
		{name: "letter I and lowercase l to one", token: "Il23456", expected: "1123456"},
		{name: "uppercase L untouched", token: "L1234567", expected: "L1234567"},
		{name: "clean token unchanged", token: "98765432", expected: "98765432"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CorrectDigitConfusions(tt.token))
		})
	}
}

func TestTitleWord(t *testing.T) {
	assert.Equal(t, "Kwame", TitleWord("KWAME"))
	assert.Equal(t, "Mensah", TitleWord("mensah"))
	assert.Equal(t, "", TitleWord(""))
}

func TestIsAlphabetic(t *testing.T) {
	assert.True(t, IsAlphabetic("Stewart"))
	assert.False(t, IsAlphabetic("C1234567"))
	assert.False(t, IsAlphabetic(""))
	assert.False(t, IsAlphabetic("O'Brien"))
}
