package constants

import (
	"strings"
)

type CardType string

const (
	DriversLicence CardType = "Drivers Licence"
	GhanaCard      CardType = "Ghana Card"
	VoterID        CardType = "Voter ID"
	Unknown        CardType = "Unknown"
)

// allCardTypes lists the classifiable types in profile declaration order.
// Unknown is deliberately excluded; it is the absence of a classification.
var allCardTypes = []CardType{
	DriversLicence,
	GhanaCard,
	VoterID,
}

func CardTypeNames() []string {
	result := make([]string, len(allCardTypes))
	for i, ct := range allCardTypes {
		result[i] = string(ct)
	}
	return result
}

// Canonicalize maps free-form user input (CLI flags, import files) onto a
// known card type.
func Canonicalize(input string) (CardType, bool) {
	if input == "" {
		return Unknown, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]CardType{
		"dl":               DriversLicence,
		"drivers license":  DriversLicence,
		"driver's licence": DriversLicence,
		"driver's license": DriversLicence,
		"driving licence":  DriversLicence,
		"driving license":  DriversLicence,
		"ghanacard":        GhanaCard,
		"national id":      GhanaCard,
		"nia card":         GhanaCard,
		"voters id":        VoterID,
		"voter's id":       VoterID,
		"voter card":       VoterID,
	}

	if ct, ok := synonyms[normalized]; ok {
		return ct, true
	}

	// check if it matches any card type string
	for _, ct := range allCardTypes {
		if normalized == strings.ToLower(string(ct)) {
			return ct, true
		}
	}

	return Unknown, false
}
