package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/streamsentry/streamsentry/pkg/infra/detector"
)

type checkToxicityRequest struct {
	Text   string `json:"text"`
	Method string `json:"method"`
}

type checkToxicityHandler struct {
	logger   *logrus.Logger
	detector *detector.Detector
}

func NewCheckToxicityHandler(logger *logrus.Logger, d *detector.Detector) Handler {
	return &checkToxicityHandler{
		logger:   logger,
		detector: d,
	}
}

// Handle classifies a single text on demand. The caller may name a strategy;
// an unknown or missing one falls back to the configured default.
func (h *checkToxicityHandler) Handle(c *fiber.Ctx) error {
	var req checkToxicityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "text is required"})
	}

	result := h.detector.ComprehensiveCheck(c.Context(), req.Method, req.Text)

	h.logger.WithFields(logrus.Fields{
		"method":   req.Method,
		"is_toxic": result.Classification.IsToxic,
	}).Debug("On-demand toxicity check")

	return c.Status(fiber.StatusOK).JSON(result)
}
