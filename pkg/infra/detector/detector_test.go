package detector_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/streamsentry/streamsentry/pkg/config"
	"github.com/streamsentry/streamsentry/pkg/domain/moderation"
	"github.com/streamsentry/streamsentry/pkg/infra/detector"
	"github.com/stretchr/testify/assert"
)

func TestNewDetector(t *testing.T) {
	ctx := context.Background()

	t.Run("Keyword strategy", func(t *testing.T) {
		d := detector.NewDetector(&config.ModerationConfig{Strategy: "keyword"}, nil, testLogger())
		result := d.Detect(ctx, "i hate you")

		assert.Equal(t, moderation.MethodKeyword, result.Method)
		assert.True(t, result.IsToxic)
	})

	t.Run("Unknown strategy defaults to keyword", func(t *testing.T) {
		d := detector.NewDetector(&config.ModerationConfig{Strategy: "quantum"}, nil, testLogger())
		result := d.Detect(ctx, "i hate you")

		assert.Equal(t, moderation.MethodKeyword, result.Method)
	})

	t.Run("Unset strategy defaults to keyword", func(t *testing.T) {
		d := detector.NewDetector(&config.ModerationConfig{}, nil, testLogger())
		result := d.Detect(ctx, "fine text")

		assert.Equal(t, moderation.MethodKeyword, result.Method)
	})

	t.Run("Model strategy without model file degrades to keyword", func(t *testing.T) {
		cfg := &config.ModerationConfig{
			Strategy: "model",
			Settings: map[string]interface{}{"model_path": "/nonexistent/model.json"},
		}
		d := detector.NewDetector(cfg, nil, testLogger())
		result := d.Detect(ctx, "i hate you")

		assert.Equal(t, moderation.MethodKeyword, result.Method)
	})

	t.Run("Remote strategy uses configured endpoint", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"results": [{"flagged": true, "category_scores": {"hate": 0.9}}]}`))
		}))
		defer server.Close()

		cfg := &config.ModerationConfig{
			Strategy:       "remote",
			OpenAIKey:      "test-key",
			RequestTimeout: 2 * time.Second,
			Settings:       map[string]interface{}{"endpoint": server.URL},
		}
		d := detector.NewDetector(cfg, nil, testLogger())
		result := d.Detect(ctx, "some text")

		assert.Equal(t, moderation.MethodRemote, result.Method)
		assert.True(t, result.IsToxic)
	})

	t.Run("DetectAsync delivers one result", func(t *testing.T) {
		d := detector.NewDetector(&config.ModerationConfig{Strategy: "keyword"}, nil, testLogger())
		ch := d.DetectAsync(ctx, "i hate you")

		result := <-ch
		assert.True(t, result.IsToxic)

		_, open := <-ch
		assert.False(t, open)
	})
}

func TestDetector_DetectWith(t *testing.T) {
	d := detector.NewDetector(&config.ModerationConfig{Strategy: "keyword"}, nil, testLogger())
	ctx := context.Background()

	t.Run("Named keyword strategy", func(t *testing.T) {
		result := d.DetectWith(ctx, "keyword", "i hate you")
		assert.Equal(t, moderation.MethodKeyword, result.Method)
	})

	t.Run("Model without file degrades to keyword", func(t *testing.T) {
		result := d.DetectWith(ctx, "model", "i hate you")
		assert.Equal(t, moderation.MethodKeyword, result.Method)
	})

	t.Run("Unknown method uses default", func(t *testing.T) {
		result := d.DetectWith(ctx, "quantum", "i hate you")
		assert.Equal(t, moderation.MethodKeyword, result.Method)
	})
}

func TestDetector_ComprehensiveCheck(t *testing.T) {
	d := detector.NewDetector(&config.ModerationConfig{Strategy: "keyword"}, nil, testLogger())

	result := d.ComprehensiveCheck(context.Background(), "keyword", "I HATE THIS STREAM")

	assert.True(t, result.Classification.IsToxic)
	assert.True(t, result.Quality.IsShouting)
	assert.False(t, result.Quality.IsSpam)
}
