package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/streamsentry/streamsentry/pkg/domain/violation"
)

type listStreamViolationsHandler struct {
	logger *logrus.Logger
	repo   violation.Repository
}

func NewListStreamViolationsHandler(logger *logrus.Logger, repo violation.Repository) Handler {
	return &listStreamViolationsHandler{
		logger: logger,
		repo:   repo,
	}
}

// Handle returns the audit trail of one stream, newest first.
func (h *listStreamViolationsHandler) Handle(c *fiber.Ctx) error {
	streamID, err := uuid.Parse(c.Params("stream_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid stream_id"})
	}

	violations, err := h.repo.ListByStream(c.Context(), streamID)
	if err != nil {
		h.logger.WithError(err).WithField("stream_id", streamID).Error("Failed to list violations")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list violations"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count":      len(violations),
		"violations": violations,
	})
}
