package middleware

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/trace"
)

// Logger writes one structured log line per request:
// request_id, method, path, status, latency (ms), the negotiated format and,
// when the request is traced, trace_id. Server errors are logged at error level.
func Logger(log *slog.Logger) fiber.Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := statusOf(c, err)
		level := slog.LevelInfo
		if status >= fiber.StatusInternalServerError {
			level = slog.LevelError
		}

		attrs := []slog.Attr{
			slog.String("request_id", RequestIDFromLocals(c)),
			slog.String("method", c.Method()),
			slog.String("path", c.OriginalURL()),
			slog.Int("status", status),
			slog.Float64("latency", float64(time.Since(start).Microseconds())/1000),
		}
		if f, ok := c.Locals(FormatLocalKey).(Format); ok {
			attrs = append(attrs, slog.String("format", string(f)))
		}
		if sc := trace.SpanContextFromContext(c.UserContext()); sc.HasTraceID() {
			attrs = append(attrs, slog.String("trace_id", sc.TraceID().String()))
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		log.LogAttrs(c.UserContext(), level, "http_request", attrs...)

		return err
	}
}

// statusOf reports the status the client will see. Errors returned by
// handlers are only turned into responses by the global error handler, after
// every middleware has returned.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
