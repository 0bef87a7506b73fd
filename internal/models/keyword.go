package models

import "strings"

// Competition buckets a keyword's advertiser competition level.
type Competition string

const (
	CompetitionLow     Competition = "low"
	CompetitionMedium  Competition = "medium"
	CompetitionHigh    Competition = "high"
	CompetitionUnknown Competition = "unknown"
)

// NormalizeCompetition maps arbitrary provider values onto the four buckets.
func NormalizeCompetition(value string) Competition {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "low":
		return CompetitionLow
	case "medium":
		return CompetitionMedium
	case "high":
		return CompetitionHigh
	default:
		return CompetitionUnknown
	}
}

// Value returns the numeric competition level used for scoring:
// low=1, medium=2, high=3. Unknown is treated as medium.
func (c Competition) Value() float64 {
	switch c {
	case CompetitionLow:
		return 1
	case CompetitionMedium:
		return 2
	case CompetitionHigh:
		return 3
	default:
		return 2
	}
}

// Feature returns the dense vector feature for clustering:
// low=1, medium=0.5, high=0. Unknown is treated as medium.
func (c Competition) Feature() float64 {
	switch c {
	case CompetitionLow:
		return 1
	case CompetitionHigh:
		return 0
	default:
		return 0.5
	}
}

// BucketCompetition maps an average competition value back onto a bucket:
// <1.5 low, <2.5 medium, else high.
func BucketCompetition(avg float64) Competition {
	switch {
	case avg < 1.5:
		return CompetitionLow
	case avg < 2.5:
		return CompetitionMedium
	default:
		return CompetitionHigh
	}
}

// Keyword is one seed phrase with provider metrics attached. Text is held in
// canonical lowercase-trimmed form; equality is on Text.
type Keyword struct {
	Text         string      `json:"keyword"`
	SearchVolume int         `json:"searchVolume"`
	Competition  Competition `json:"competition"`
	CPCLow       float64     `json:"cpcLow"`
	CPCHigh      float64     `json:"cpcHigh"`
}

// CanonicalKeywordText normalizes keyword text for identity comparisons.
func CanonicalKeywordText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// NewKeyword builds a Keyword with canonical text and consistent CPC bounds.
func NewKeyword(text string, volume int, competition Competition, cpcLow, cpcHigh float64) Keyword {
	if volume < 0 {
		volume = 0
	}
	if cpcLow < 0 {
		cpcLow = 0
	}
	if cpcHigh < cpcLow {
		cpcHigh = cpcLow
	}
	return Keyword{
		Text:         CanonicalKeywordText(text),
		SearchVolume: volume,
		Competition:  competition,
		CPCLow:       cpcLow,
		CPCHigh:      cpcHigh,
	}
}

// WordCount returns the number of whitespace-separated words in the keyword.
func (k Keyword) WordCount() int {
	return len(strings.Fields(k.Text))
}
