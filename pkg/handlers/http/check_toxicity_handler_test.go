package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/streamsentry/streamsentry/pkg/config"
	"github.com/streamsentry/streamsentry/pkg/infra/detector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newToxicityApp(t *testing.T) *fiber.App {
	t.Helper()
	d := detector.NewDetector(&config.ModerationConfig{Strategy: "keyword"}, nil, testLogger())
	handler := NewCheckToxicityHandler(testLogger(), d)

	app := fiber.New()
	app.Post("/api/v1/moderation/toxicity", handler.Handle)
	return app
}

func TestCheckToxicityHandler(t *testing.T) {
	t.Run("Classifies toxic text", func(t *testing.T) {
		app := newToxicityApp(t)

		body, err := json.Marshal(map[string]string{"text": "i will kill you", "method": "keyword"})
		require.NoError(t, err)

		req := httptest.NewRequest(fiber.MethodPost, "/api/v1/moderation/toxicity", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var parsed detector.ComprehensiveResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
		assert.True(t, parsed.Classification.IsToxic)
		assert.Contains(t, parsed.Classification.DetectedTerms, "kill")
	})

	t.Run("Reports quality issues", func(t *testing.T) {
		app := newToxicityApp(t)

		body, err := json.Marshal(map[string]string{"text": "STOP DOING THAT RIGHT NOW"})
		require.NoError(t, err)

		req := httptest.NewRequest(fiber.MethodPost, "/api/v1/moderation/toxicity", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)

		var parsed detector.ComprehensiveResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
		assert.True(t, parsed.Quality.IsShouting)
	})

	t.Run("Rejects empty text", func(t *testing.T) {
		app := newToxicityApp(t)

		req := httptest.NewRequest(fiber.MethodPost, "/api/v1/moderation/toxicity", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}
