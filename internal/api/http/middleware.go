package http

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/observability"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// MiddlewareConfig controls the global middleware chain.
type MiddlewareConfig struct {
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	Development bool
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, cfg MiddlewareConfig) {
	app.Use(errorHandlingMiddleware(cfg))
	app.Use(observability.RequestLogger(cfg.Logger, cfg.Metrics))
}

// errorHandlingMiddleware recovers panics and renders DomainErrors either as
// a JSON body or an error page, depending on the caller.
func errorHandlingMiddleware(cfg MiddlewareConfig) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		var stack []byte
		defer func() {
			if r := recover(); r != nil {
				stack = debug.Stack()
				cfg.Logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", stack))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				cfg.Metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				if domainErr.HTTPStatus >= 500 {
					cfg.Logger.Error("request failed", zap.Error(domainErr))
				}
				err = renderError(c, cfg, domainErr, stack)
			}
		}()
		return c.Next()
	}
}

func renderError(c *fiber.Ctx, cfg MiddlewareConfig, domainErr *apperrors.DomainError, stack []byte) error {
	c.Status(domainErr.HTTPStatus)

	if auth.WantsJSON(c) {
		response := fiber.Map{"error": domainErr.Message}
		if len(domainErr.Details) > 0 {
			response["details"] = domainErr.Details
		}
		return c.JSON(response)
	}

	switch {
	case domainErr.HTTPStatus == fiber.StatusNotFound:
		return c.Render("pages/404", fiber.Map{"current_page": "home"})
	case domainErr.HTTPStatus >= 500:
		data := fiber.Map{"current_page": "home", "message": domainErr.Message}
		// Stack traces only leak in development mode.
		if cfg.Development && len(stack) > 0 {
			data["stack"] = string(stack)
		}
		return c.Render("pages/500", data)
	default:
		return c.SendString(domainErr.Message)
	}
}
