package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/payum-server/payum_server/internal/apperr"
)

const recoveredLocal = "recovered"

// ErrorDocument is the JSON rendering of a failure.
type ErrorDocument struct {
	Exception  string `json:"exception"`
	Message    string `json:"message"`
	Code       int    `json:"code"`
	File       string `json:"file"`
	Line       int    `json:"line"`
	StackTrace string `json:"stackTrace"`
}

// ErrorNormalize converts failures from later stages into an ErrorDocument
// when the request declares a JSON body. Other requests get the error back
// untouched so the app's error handler renders it.
func ErrorNormalize(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		if rec, ok := c.Locals(recoveredLocal).(*apperr.Error); ok {
			err = rec
		}

		status := StatusOf(err)
		logFailure(c, logger, status, err)

		if !IsJSON(c.Get(fiber.HeaderContentType)) {
			return err
		}

		doc := NewErrorDocument(err)
		return c.Status(status).JSON(doc)
	}
}

// NewErrorDocument describes err. A stack is captured here when err carries
// none.
func NewErrorDocument(err error) ErrorDocument {
	if e, ok := apperr.As(err); ok {
		doc := ErrorDocument{
			Exception:  e.Exception(),
			Message:    e.Message(),
			File:       e.File(),
			Line:       e.Line(),
			StackTrace: e.Stack(),
		}
		if doc.StackTrace == "" {
			doc.StackTrace = apperr.CaptureStack(1)
		}
		return doc
	}

	doc := ErrorDocument{
		Exception:  apperr.TypeName(rootCause(err)),
		Message:    err.Error(),
		StackTrace: apperr.CaptureStack(1),
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		doc.Message = fe.Message
	}
	return doc
}

// rootCause follows single error wrapping down to the innermost error, so a
// failure wrapped with fmt.Errorf is reported under its own type.
func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// StatusOf returns the HTTP status an error is rendered with.
func StatusOf(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return http.StatusInternalServerError
}

// Recover turns panics in later stages into errors and records where the
// panic happened for ErrorNormalize.
func Recover() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			c.Locals(recoveredLocal, apperr.Recovered(e))
		},
	})
}

// ErrorHandler is the app level fallback for errors no stage rendered. It
// answers in plain text with the error's status.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if rec, ok := c.Locals(recoveredLocal).(*apperr.Error); ok {
		err = rec
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(StatusOf(err)).SendString(err.Error())
}

func logFailure(c *fiber.Ctx, logger *slog.Logger, status int, err error) {
	if logger == nil {
		return
	}
	attrs := []any{
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Int("status", status),
		slog.Any("error", err),
	}
	if reqID, _ := c.Locals(requestIDHeader).(string); reqID != "" {
		attrs = append(attrs, slog.String("request_id", reqID))
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", attrs...)
		return
	}
	logger.Warn("request rejected", attrs...)
}
