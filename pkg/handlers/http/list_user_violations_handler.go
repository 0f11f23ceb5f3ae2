package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/streamsentry/streamsentry/pkg/domain/violation"
)

type listUserViolationsHandler struct {
	logger *logrus.Logger
	repo   violation.Repository
}

func NewListUserViolationsHandler(logger *logrus.Logger, repo violation.Repository) Handler {
	return &listUserViolationsHandler{
		logger: logger,
		repo:   repo,
	}
}

func (h *listUserViolationsHandler) Handle(c *fiber.Ctx) error {
	streamID, err := uuid.Parse(c.Params("stream_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid stream_id"})
	}
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user_id"})
	}

	violations, err := h.repo.ListByUserAndStream(c.Context(), userID, streamID)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"stream_id": streamID,
			"user_id":   userID,
		}).Error("Failed to list violations")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list violations"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count":      len(violations),
		"violations": violations,
	})
}
