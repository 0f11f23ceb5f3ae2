package detector_test

import (
	"context"
	"strings"
	"testing"

	"github.com/streamsentry/streamsentry/pkg/domain/moderation"
	"github.com/streamsentry/streamsentry/pkg/infra/detector"
	"github.com/stretchr/testify/assert"
)

func TestKeywordClassifier_Detect(t *testing.T) {
	classifier := detector.NewKeywordClassifier()
	ctx := context.Background()

	t.Run("Clean text scores zero", func(t *testing.T) {
		result := classifier.Detect(ctx, "what a lovely stream today")

		assert.False(t, result.IsToxic)
		assert.Equal(t, 0.0, result.Score)
		assert.Empty(t, result.DetectedTerms)
		assert.Equal(t, moderation.MethodKeyword, result.Method)
	})

	t.Run("Empty text scores zero", func(t *testing.T) {
		result := classifier.Detect(ctx, "")

		assert.False(t, result.IsToxic)
		assert.Equal(t, 0.0, result.Score)
	})

	t.Run("High severity term is toxic", func(t *testing.T) {
		result := classifier.Detect(ctx, "i will kill you")

		assert.True(t, result.IsToxic)
		assert.Contains(t, result.DetectedTerms, "kill")
		assert.Greater(t, result.Score, 0.3)
	})

	t.Run("Single low severity term stays below threshold", func(t *testing.T) {
		result := classifier.Detect(ctx, "this game is boring")

		assert.False(t, result.IsToxic)
		assert.Contains(t, result.DetectedTerms, "boring")
		assert.InDelta(t, 0.1, result.Score, 0.001)
	})

	t.Run("Obfuscated term still matches", func(t *testing.T) {
		result := classifier.Detect(ctx, "k.i.l.l yourself")

		assert.True(t, result.IsToxic)
		assert.Contains(t, result.DetectedTerms, "kill")
	})

	t.Run("Harassment pattern adds sentinel term", func(t *testing.T) {
		result := classifier.Detect(ctx, "you suck at this")

		assert.True(t, result.IsToxic)
		assert.Contains(t, result.DetectedTerms, "harassment_pattern")
		assert.GreaterOrEqual(t, result.Categories["high"], 1.0)
	})

	t.Run("Score is clamped with many matches", func(t *testing.T) {
		text := strings.Join([]string{
			"hate", "kill", "die", "nazi", "terrorist", "murder", "violence",
		}, " ")
		result := classifier.Detect(ctx, text)

		assert.True(t, result.IsToxic)
		assert.Equal(t, 1.0, result.Score)
	})

	t.Run("Case insensitive", func(t *testing.T) {
		result := classifier.Detect(ctx, "You Are An IDIOT")

		assert.Contains(t, result.DetectedTerms, "idiot")
	})
}

func TestKeywordClassifier_DetectAsync(t *testing.T) {
	classifier := detector.NewKeywordClassifier()

	ch := classifier.DetectAsync(context.Background(), "i hate you")
	result, ok := <-ch

	assert.True(t, ok)
	assert.True(t, result.IsToxic)

	_, open := <-ch
	assert.False(t, open, "channel should be closed after one result")
}
