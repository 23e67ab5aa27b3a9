package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/ougirez/certzone/internal/pkg/logger"
	"go.uber.org/zap"
)

// RequestLogger puts a logger tagged with the request id into the request context.
func RequestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		req := ctx.Request()

		id := req.Header.Get(echo.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Response().Header().Set(echo.HeaderXRequestID, id)

		l := logger.FromContext(req.Context()).With(zap.String("request_id", id))
		ctx.SetRequest(req.WithContext(logger.ToContext(req.Context(), l)))

		return next(ctx)
	}
}
