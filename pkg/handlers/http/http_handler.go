package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	// Moderation
	CheckToxicityHandler Handler
	CheckRumorHandler    Handler

	// Violation audit
	ListStreamViolationsHandler Handler
	ListUserViolationsHandler   Handler
}
