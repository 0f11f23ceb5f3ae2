package detector

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/streamsentry/streamsentry/pkg/domain/moderation"
)

const (
	modelToxicLabel     = "toxic"
	modelToxicThreshold = 0.5
)

// modelFile is the on-disk format: one logistic scorer per label, with a
// bias and per-token weights.
type modelFile struct {
	Labels map[string]modelScorer `json:"labels"`
}

type modelScorer struct {
	Bias    float64            `json:"bias"`
	Weights map[string]float64 `json:"weights"`
}

// ModelClassifier scores text with a local term-weight model. The model is
// optional: if the file cannot be loaded, or the model carries no toxic
// label, every call delegates to the keyword classifier. That degradation is
// silent by contract since the model's absence is not a system error.
type ModelClassifier struct {
	scorer   *modelScorer
	fallback moderation.Classifier
	logger   *logrus.Logger
}

func NewModelClassifier(modelPath string, fallback moderation.Classifier, logger *logrus.Logger) *ModelClassifier {
	m := &ModelClassifier{
		fallback: fallback,
		logger:   logger,
	}

	if modelPath == "" {
		logger.Debug("No toxicity model configured, using keyword classifier")
		return m
	}

	data, err := os.ReadFile(modelPath)
	if err != nil {
		logger.WithError(err).WithField("model_path", modelPath).
			Warn("Toxicity model unavailable, using keyword classifier")
		return m
	}

	var file modelFile
	if err := json.Unmarshal(data, &file); err != nil {
		logger.WithError(err).WithField("model_path", modelPath).
			Warn("Toxicity model unreadable, using keyword classifier")
		return m
	}

	scorer, ok := file.Labels[modelToxicLabel]
	if !ok || len(scorer.Weights) == 0 {
		logger.WithField("model_path", modelPath).
			Warn("Toxicity model has no toxic label, using keyword classifier")
		return m
	}

	m.scorer = &scorer
	return m
}

func (m *ModelClassifier) Detect(ctx context.Context, text string) moderation.Result {
	if m.scorer == nil {
		return m.fallback.Detect(ctx, text)
	}

	score, detected := m.score(text)
	return moderation.Result{
		IsToxic:       score > modelToxicThreshold,
		Score:         score,
		Categories:    map[string]float64{modelToxicLabel: score},
		DetectedTerms: detected,
		Method:        moderation.MethodModel,
	}
}

func (m *ModelClassifier) DetectAsync(ctx context.Context, text string) <-chan moderation.Result {
	ch := make(chan moderation.Result, 1)
	ch <- m.Detect(ctx, text)
	close(ch)
	return ch
}

// score runs the logistic model over the lowercased token set.
func (m *ModelClassifier) score(text string) (float64, []string) {
	sum := m.scorer.Bias
	var detected []string
	seen := make(map[string]bool)

	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?;:\"'")
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true
		if weight, ok := m.scorer.Weights[token]; ok {
			sum += weight
			if weight > 0 {
				detected = append(detected, token)
			}
		}
	}

	return moderation.Clamp(1.0 / (1.0 + math.Exp(-sum))), detected
}
