package http

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/helpdeskops/helpdesk-engine/internal/observability"
	apperrors "github.com/helpdeskops/helpdesk-engine/pkg/util"
)

// RegisterMiddlewares wires request logging, timeouts and error handling
// onto the app.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, requestTimeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	if requestTimeout > 0 {
		app.Use(timeoutMiddleware(requestTimeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func timeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware recovers panics and maps domain errors onto a
// uniform JSON error envelope.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.String("path", c.Path()),
					zap.Any("panic", r))
				err = writeError(c, metrics, apperrors.NewInternalError(fmt.Errorf("panic: %v", r)))
			}
		}()

		if err = c.Next(); err != nil {
			return writeError(c, metrics, err)
		}
		return nil
	}
}

func writeError(c *fiber.Ctx, metrics *observability.Metrics, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error": fiber.Map{"code": "HTTP_ERROR", "message": fiberErr.Message},
		})
	}

	domainErr := apperrors.ToDomainError(err)
	metrics.RecordError(c.Path(), c.Method(), domainErr.Code)

	body := fiber.Map{
		"code":      domainErr.Code,
		"message":   domainErr.Message,
		"retryable": domainErr.Retryable,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": body})
}
