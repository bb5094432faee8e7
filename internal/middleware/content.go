package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	"github.com/payum-server/payum_server/internal/apperr"
)

// ContentLocal is the fiber local holding the decoded request body.
const ContentLocal = "content"

var (
	errNullContent = errors.New("content decodes to null")
	errInvalidUTF8 = errors.New("content is not valid UTF-8")
)

// ContentValidation rejects mutating requests that are not JSON or whose body
// does not decode to a JSON value. On success the decoded body is stored
// under ContentLocal.
func ContentValidation() fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions, fiber.MethodDelete:
			return c.Next()
		}

		if !IsJSON(c.Get(fiber.HeaderContentType)) {
			return apperr.InvalidContentType()
		}

		content, err := DecodeJSON(c.Body())
		if err != nil {
			return apperr.MalformedJSON(err)
		}

		c.Locals(ContentLocal, content)
		return c.Next()
	}
}

// Content returns the decoded request body stored by ContentValidation.
func Content(c *fiber.Ctx) (any, bool) {
	v := c.Locals(ContentLocal)
	return v, v != nil
}

// IsJSON reports whether a Content-Type header declares JSON. Media type
// parameters are ignored.
func IsJSON(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case fiber.MIMEApplicationJSON, "application/x-json":
		return true
	default:
		return false
	}
}

// DecodeJSON decodes a single JSON value from body, keeping numbers as
// json.Number. An empty body, trailing data, a literal null and invalid UTF-8
// are errors.
func DecodeJSON(body []byte) (any, error) {
	if !utf8.Valid(body) {
		return nil, errInvalidUTF8
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	if v == nil {
		return nil, errNullContent
	}
	return v, nil
}
