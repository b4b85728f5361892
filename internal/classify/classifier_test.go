package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyConfidenceFormula(t *testing.T) {
	tests := []struct {
		name         string
		profiles     []Profile
		text         string
		wantType     string
		wantConf     float64
		wantKeywords int
	}{
		{
			name: "full coverage with boost",
			profiles: []Profile{
				{Name: "Drivers Licence", Keywords: []string{"driver", "license", "california", "dmv", "class"}},
			},
			text:         "california driver license dmv class c",
			wantType:     "Drivers Licence",
			wantConf:     45.0, // (5/5)*0.3*100 = 30, boosted by 1.5
			wantKeywords: 5,
		},
		{
			name: "single keyword hits the floor",
			profiles: []Profile{
				{Name: "Ghana Card", Keywords: []string{"ghana", "nia", "national identification", "card"}},
			},
			text:         "ghana",
			wantType:     "Ghana Card",
			wantConf:     40.0, // (1/4)*30 = 7.5, floored
			wantKeywords: 1,
		},
		{
			name: "three keywords with floor binding and no boost",
			profiles: []Profile{
				{Name: "Voter ID", Keywords: []string{"voter", "electoral", "commission", "polling", "ballot", "election"}},
			},
			text:         "voter electoral commission",
			wantType:     "Voter ID",
			wantConf:     40.0, // (3/6)*30 = 15, no boost at 3, floored
			wantKeywords: 3,
		},
		{
			name: "no keywords means Unknown at zero",
			profiles: []Profile{
				{Name: "Ghana Card", Keywords: []string{"ghana", "nia"}},
			},
			text:         "completely unrelated text",
			wantType:     "Unknown",
			wantConf:     0,
			wantKeywords: 0,
		},
		{
			name: "empty text means Unknown at zero",
			profiles: []Profile{
				{Name: "Ghana Card", Keywords: []string{"ghana"}},
			},
			text:     "",
			wantType: "Unknown",
			wantConf: 0,
		},
		{
			name: "empty keyword list can never match",
			profiles: []Profile{
				{Name: "Empty", Keywords: nil},
			},
			text:     "anything at all",
			wantType: "Unknown",
			wantConf: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(tt.profiles, DefaultHeuristics())
			got := c.Classify(tt.text)
			assert.Equal(t, tt.wantType, got.CardType)
			assert.InDelta(t, tt.wantConf, got.Confidence, 1e-9)
			assert.Equal(t, tt.wantKeywords, got.MatchedKeywordCount)
			// pure function: repeat runs agree
			assert.Equal(t, got, c.Classify(tt.text))
		})
	}
}

func TestClassifyTieKeepsDeclarationOrder(t *testing.T) {
	profiles := []Profile{
		{Name: "First", Keywords: []string{"alpha", "beta"}},
		{Name: "Second", Keywords: []string{"alpha", "beta"}},
	}
	c := NewClassifier(profiles, DefaultHeuristics())

	got := c.Classify("alpha beta gamma")
	assert.Equal(t, "First", got.CardType)
	assert.Equal(t, 2, got.MatchedKeywordCount)
}

func TestClassifyConfidenceBounds(t *testing.T) {
	// aggressive tuning that would overshoot 100 without the cap
	h := Heuristics{ScaleFactor: 0.9, BoostFactor: 1.5, BoostMinKeywords: 4, KeywordFloor: 40, MaxConfidence: 100}
	c := NewClassifier([]Profile{
		{Name: "Wide", Keywords: []string{"a1", "b2", "c3", "d4"}},
	}, h)

	got := c.Classify("a1 b2 c3 d4")
	assert.Equal(t, 100.0, got.Confidence)

	for _, text := range []string{"", "a1", "a1 b2", "a1 b2 c3 d4", "nothing"} {
		res := c.Classify(text)
		assert.GreaterOrEqual(t, res.Confidence, 0.0)
		assert.LessOrEqual(t, res.Confidence, 100.0)
	}
}

func TestClassifyDefaultProfiles(t *testing.T) {
	c := NewClassifier(nil, DefaultHeuristics())

	tests := []struct {
		name     string
		text     string
		wantType string
	}{
		{
			name:     "ghana card phrasing",
			text:     "republic of ghana national identification authority ghanacard",
			wantType: "Ghana Card",
		},
		{
			name:     "uk style driving licence",
			text:     "driving licence dvla driver",
			wantType: "Drivers Licence",
		},
		{
			name:     "voter id beats incidental ghana mention",
			text:     "electoral commission of ghana voter id",
			wantType: "Voter ID",
		},
		{
			name:     "plain prose stays unknown",
			text:     "hello world",
			wantType: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text)
			require.Equal(t, tt.wantType, got.CardType)
			if tt.wantType != "Unknown" {
				assert.GreaterOrEqual(t, got.Confidence, 40.0)
				assert.NotEmpty(t, got.KeywordsFound)
			}
		})
	}
}

func TestKeywordsFoundPreservesDeclarationOrder(t *testing.T) {
	c := NewClassifier([]Profile{
		{Name: "Drivers Licence", Keywords: []string{"dvla", "driver", "motor"}},
	}, DefaultHeuristics())

	got := c.Classify("motor vehicle driver registry dvla")
	assert.Equal(t, []string{"dvla", "driver", "motor"}, got.KeywordsFound)
}
