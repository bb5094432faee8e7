package middleware

import (
	"bytes"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
)

const prettyIndent = "    "

// Format rewrites JSON response bodies after the chain returns: indented when
// pretty is set, compact otherwise. Only whitespace changes; bodies that are
// not valid JSON are left alone.
func Format(pretty bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		resp := c.Response()
		if !IsJSON(string(resp.Header.ContentType())) {
			return nil
		}
		body := resp.Body()
		if len(body) == 0 {
			return nil
		}

		formatted, ok := Reformat(body, pretty)
		if ok {
			resp.SetBodyRaw(formatted)
		}
		return nil
	}
}

// Reformat returns body indented or compacted. ok is false when body is not
// valid JSON.
func Reformat(body []byte, pretty bool) ([]byte, bool) {
	var buf bytes.Buffer
	var err error
	if pretty {
		err = json.Indent(&buf, body, "", prettyIndent)
	} else {
		err = json.Compact(&buf, body)
	}
	if err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}
