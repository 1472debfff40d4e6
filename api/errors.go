package api

import (
	"errors"

	domainerrors "billybot/domain/errors"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// statusForKind maps domain error kinds to HTTP status codes. Domain errors
// are client-correctable; anything else is a 500.
var statusForKind = map[domainerrors.Kind]int{
	domainerrors.KindInvalidMove:       fiber.StatusBadRequest,
	domainerrors.KindNotEligible:       fiber.StatusForbidden,
	domainerrors.KindNotFound:          fiber.StatusNotFound,
	domainerrors.KindConflict:          fiber.StatusConflict,
	domainerrors.KindInvalidState:      fiber.StatusConflict,
	domainerrors.KindInsufficientFunds: fiber.StatusConflict,
	domainerrors.KindTooSoon:           fiber.StatusTooManyRequests,
}

func errorHandler(c *fiber.Ctx, err error) error {
	if de, ok := domainerrors.IsDomain(err); ok {
		status, found := statusForKind[de.Kind]
		if !found {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{
			"error": fiber.Map{
				"kind":    string(de.Kind),
				"message": de.Message,
			},
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error": fiber.Map{
				"kind":    "http_error",
				"message": fiberErr.Message,
			},
		})
	}

	log.WithError(err).WithFields(log.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}).Error("Request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fiber.Map{
			"kind":    "internal",
			"message": "internal server error",
		},
	})
}
