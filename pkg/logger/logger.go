package logger

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. Production gets JSON output, everything
// else the colored console encoder.
func New(env string) *zap.Logger {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := cfg.Build()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	return l
}

// StdLog adapts l for libraries that expect a *log.Logger (gorm).
func StdLog(l *zap.Logger) *log.Logger {
	return zap.NewStdLog(l.WithOptions(zap.AddCallerSkip(1)))
}

const requestErrorKey = "request_error"

// RecordError attaches err to the request so RequestLogger reports it even
// when the handler already wrote the response and returned nil.
func RecordError(c *fiber.Ctx, err error) {
	c.Locals(requestErrorKey, err)
}

// RequestLogger logs one line per request with the authenticated user when known.
func RequestLogger(l *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("%d", start.UnixNano())
		}
		c.Locals("request_id", requestID)

		handlerErr := c.Next()

		err := handlerErr
		if err == nil {
			err, _ = c.Locals(requestErrorKey).(error)
		}

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.String("ip", c.IP()),
			zap.Duration("latency", time.Since(start)),
		}
		if uid, ok := c.Locals("user_id").(string); ok {
			fields = append(fields, zap.String("user_id", uid))
		}

		switch {
		case status >= 500:
			l.Error("Request completed", append(fields, zap.Error(err))...)
		case status >= 400:
			if err != nil {
				fields = append(fields, zap.Error(err))
			}
			l.Warn("Request completed", fields...)
		default:
			l.Info("Request completed", fields...)
		}
		return handlerErr
	}
}
