package classify

import "github.com/victoedr/idcard-verifier/constants"

// Profile describes one recognizable card type as an ordered keyword list.
// Declaration order matters: when two profiles match the same number of
// keywords, the earlier one wins.
type Profile struct {
	Name     string
	Keywords []string
}

// DefaultProfiles returns the built-in card profiles. The keyword sets come
// from the DVLA verification deployment and are matched as substrings of
// already-normalized text, so multi-word phrases and short fragments such as
// "dl" or "lic" both count.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Name: string(constants.DriversLicence),
			Keywords: []string{
				"driver", "licence", "license", "driving", "dvla",
				"driver's licence", "driver's license", "driving licence",
				"drivers", "drive", "motor", "vehicle", "dl",
				"california", "cardholder", "dmv", "lic", "operator",
			},
		},
		{
			Name: string(constants.GhanaCard),
			Keywords: []string{
				"ghana", "nia", "national identification", "ghana card",
				"national identification authority", "republic of ghana",
				"ghanacard", "national id", "citizenship",
			},
		},
		{
			Name: string(constants.VoterID),
			Keywords: []string{
				"voter", "electoral", "commission", "voter id", "voter's id",
				"electoral commission", "voter identification", "polling",
				"vote", "election", "elector", "ballot",
			},
		},
	}
}
