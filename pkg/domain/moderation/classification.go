package moderation

import "context"

// Method identifies which classification strategy produced a Result.
type Method string

const (
	MethodKeyword Method = "keyword"
	MethodModel   Method = "model"
	MethodRemote  Method = "remote"
)

// Result is the canonical classification result every strategy normalizes to.
// Score is always clamped to [0,1]; IsToxic is derived from Score and the
// per-method category thresholds, never set independently.
type Result struct {
	IsToxic       bool               `json:"is_toxic"`
	Score         float64            `json:"toxicity_score"`
	Categories    map[string]float64 `json:"categories"`
	DetectedTerms []string           `json:"detected_terms"`
	Method        Method             `json:"method"`
}

// Classifier is the single capability all strategies implement. Detect never
// fails: every implementation degrades internally to the keyword classifier,
// which is local and total.
type Classifier interface {
	Detect(ctx context.Context, text string) Result
}

// AsyncClassifier adds a non-blocking variant. The returned channel always
// receives exactly one Result and is then closed.
type AsyncClassifier interface {
	Classifier
	DetectAsync(ctx context.Context, text string) <-chan Result
}

// Clamp bounds a score to [0,1].
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
