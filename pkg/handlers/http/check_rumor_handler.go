package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/streamsentry/streamsentry/pkg/domain/moderation"
)

type checkRumorRequest struct {
	Text string `json:"text"`
}

type checkRumorResponse struct {
	IsRumour bool   `json:"isRumour"`
	Warning  string `json:"warning"`
}

type checkRumorHandler struct {
	logger  *logrus.Logger
	checker moderation.FactChecker
}

func NewCheckRumorHandler(logger *logrus.Logger, checker moderation.FactChecker) Handler {
	return &checkRumorHandler{
		logger:  logger,
		checker: checker,
	}
}

func (h *checkRumorHandler) Handle(c *fiber.Ctx) error {
	var req checkRumorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Text == "" {
		return c.Status(fiber.StatusOK).JSON(checkRumorResponse{IsRumour: false, Warning: ""})
	}

	result := h.checker.Check(c.Context(), req.Text)

	return c.Status(fiber.StatusOK).JSON(checkRumorResponse{
		IsRumour: !result.Verified,
		Warning:  result.Reason,
	})
}
