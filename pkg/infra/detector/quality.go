package detector

import (
	"context"
	"strings"
	"unicode"

	"github.com/streamsentry/streamsentry/pkg/domain/moderation"
)

const (
	spamLengthThreshold = 500
	spamLinkThreshold   = 3
	shoutingRatio       = 0.7
	shoutingMinLetters  = 5
)

// hasRepeatedChars reports whether any character occurs six or more times
// in a row, matching the intent of the pattern `(.)\1{5,}` (backreferences
// are not supported by Go's regexp engine).
func hasRepeatedChars(text string) bool {
	var prev rune
	run := 0
	for _, r := range text {
		if r == prev && r != '\n' {
			run++
			if run >= 6 {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}

// QualityReport flags low-quality text that is not necessarily toxic but
// still degrades a stream chat.
type QualityReport struct {
	IsSpam           bool `json:"is_spam"`
	HasRepeatedChars bool `json:"has_repeated_chars"`
	IsShouting       bool `json:"is_shouting"`
}

func (q QualityReport) HasIssues() bool {
	return q.IsSpam || q.HasRepeatedChars || q.IsShouting
}

// CheckQuality applies the spam, repetition and shouting heuristics.
func CheckQuality(text string) QualityReport {
	return QualityReport{
		IsSpam:           len(text) > spamLengthThreshold || strings.Count(strings.ToLower(text), "http") > spamLinkThreshold,
		HasRepeatedChars: hasRepeatedChars(text),
		IsShouting:       isShouting(text),
	}
}

func isShouting(text string) bool {
	var letters, upper int
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters < shoutingMinLetters {
		return false
	}
	return float64(upper)/float64(letters) > shoutingRatio
}

// ComprehensiveResult pairs the toxicity classification with the quality
// heuristics for the on-demand check endpoint.
type ComprehensiveResult struct {
	Classification moderation.Result `json:"classification"`
	Quality        QualityReport     `json:"quality"`
}

func (d *Detector) ComprehensiveCheck(ctx context.Context, method, text string) ComprehensiveResult {
	return ComprehensiveResult{
		Classification: d.DetectWith(ctx, method, text),
		Quality:        CheckQuality(text),
	}
}
