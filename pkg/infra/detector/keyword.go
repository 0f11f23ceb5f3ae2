package detector

import (
	"context"
	"regexp"
	"strings"

	"github.com/streamsentry/streamsentry/pkg/domain/moderation"
)

const (
	severityHigh   = "high"
	severityMedium = "medium"
	severityLow    = "low"

	// harassmentTerm is the sentinel appended when a harassment pattern (as
	// opposed to a lexicon term) matches.
	harassmentTerm = "harassment_pattern"

	// scoreNormalizer divides the weighted severity sum before clamping.
	scoreNormalizer = 3.0

	keywordToxicThreshold = 0.3
)

var toxicKeywords = map[string][]string{
	severityHigh: {
		"hate", "kill", "die", "death", "nazi", "terrorist",
		"rape", "murder", "violence", "abuse", "attack",
	},
	severityMedium: {
		"stupid", "idiot", "dumb", "moron", "loser", "pathetic",
		"trash", "garbage", "worthless", "useless", "disgusting",
		"fuck", "shit", "bitch", "asshole", "fucking",
	},
	severityLow: {
		"shut up", "annoying", "boring", "lame",
		"bad", "terrible", "awful", "horrible",
	},
}

var harassmentPatterns = []string{
	`\bkys\b`,
	`go die`,
	`\bfuck(?:ing)?\b`,
	`you\s+suck`,
	`kill(?:\s+yourself)?`,
}

type keywordEntry struct {
	term     string
	severity string
	fuzzy    *regexp.Regexp
}

// KeywordClassifier is the lexicon-based classifier. It is local, pure and
// total: it performs no I/O and has no failure path, which makes it the
// guaranteed last resort for every other strategy.
type KeywordClassifier struct {
	entries    []keywordEntry
	harassment []*regexp.Regexp
}

func NewKeywordClassifier() *KeywordClassifier {
	var entries []keywordEntry
	for _, severity := range []string{severityHigh, severityMedium, severityLow} {
		for _, term := range toxicKeywords[severity] {
			entries = append(entries, keywordEntry{
				term:     term,
				severity: severity,
				fuzzy:    regexp.MustCompile(fuzzyPattern(term)),
			})
		}
	}

	harassment := make([]*regexp.Regexp, 0, len(harassmentPatterns))
	for _, pattern := range harassmentPatterns {
		harassment = append(harassment, regexp.MustCompile(pattern))
	}

	return &KeywordClassifier{
		entries:    entries,
		harassment: harassment,
	}
}

// fuzzyPattern builds a pattern that tolerates non-word separators between a
// term's characters, so "k.i.l.l" still matches "kill".
func fuzzyPattern(term string) string {
	chars := make([]string, 0, len(term))
	for _, c := range term {
		chars = append(chars, regexp.QuoteMeta(string(c)))
	}
	return `\b` + strings.Join(chars, `\W*`) + `\b`
}

func (k *KeywordClassifier) Detect(ctx context.Context, text string) moderation.Result {
	textLower := strings.ToLower(text)

	var detected []string
	severityCounts := map[string]float64{
		severityHigh:   0,
		severityMedium: 0,
		severityLow:    0,
	}

	for _, entry := range k.entries {
		if strings.Contains(textLower, entry.term) || entry.fuzzy.MatchString(textLower) {
			detected = append(detected, entry.term)
			severityCounts[entry.severity]++
		}
	}

	for _, pattern := range k.harassment {
		if pattern.MatchString(textLower) {
			detected = append(detected, harassmentTerm)
			severityCounts[severityHigh]++
		}
	}

	// Overlapping matches are counted once per pattern on purpose: the bias
	// is toward flagging rather than missing a threat.
	score := severityCounts[severityHigh]*1.0 +
		severityCounts[severityMedium]*0.6 +
		severityCounts[severityLow]*0.3
	score = moderation.Clamp(score / scoreNormalizer)

	return moderation.Result{
		IsToxic:       score > keywordToxicThreshold,
		Score:         score,
		Categories:    severityCounts,
		DetectedTerms: detected,
		Method:        moderation.MethodKeyword,
	}
}

// DetectAsync satisfies moderation.AsyncClassifier; keyword matching is CPU
// bound and runs inline, delivering on an already-ready channel.
func (k *KeywordClassifier) DetectAsync(ctx context.Context, text string) <-chan moderation.Result {
	ch := make(chan moderation.Result, 1)
	ch <- k.Detect(ctx, text)
	close(ch)
	return ch
}
