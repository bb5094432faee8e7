package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORSOptions configures the cross-origin stage.
type CORSOptions struct {
	AllowOrigins  []string
	AllowHeaders  []string
	ExposeHeaders []string
	MaxAge        int
}

var defaultCORSMethods = []string{
	fiber.MethodGet,
	fiber.MethodPost,
	fiber.MethodPut,
	fiber.MethodDelete,
	fiber.MethodOptions,
}

// CORS attaches cross-origin headers. It must sit outside the error stage so
// error documents carry the headers as well. Requests without an Origin
// header still get Access-Control-Allow-Origin and the exposed headers.
func CORS(opts CORSOptions) fiber.Handler {
	origins := opts.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	headers := opts.AllowHeaders
	if len(headers) == 0 {
		headers = []string{fiber.HeaderOrigin, fiber.HeaderContentType, fiber.HeaderAccept, idempotencyKeyHeader, requestIDHeader}
	}
	expose := opts.ExposeHeaders
	if len(expose) == 0 {
		expose = []string{fiber.HeaderLocation, requestIDHeader}
	}

	h := cors.New(cors.Config{
		AllowOrigins:  strings.Join(origins, ","),
		AllowMethods:  strings.Join(defaultCORSMethods, ","),
		AllowHeaders:  strings.Join(headers, ","),
		ExposeHeaders: strings.Join(expose, ","),
		MaxAge:        opts.MaxAge,
	})
	fallback := origins[0]
	for _, o := range origins {
		if o == "*" {
			fallback = "*"
			break
		}
	}
	exposed := strings.Join(expose, ",")

	return func(c *fiber.Ctx) error {
		err := h(c)
		if c.Get(fiber.HeaderOrigin) != "" {
			return err
		}
		if c.GetRespHeader(fiber.HeaderAccessControlAllowOrigin) == "" {
			c.Set(fiber.HeaderAccessControlAllowOrigin, fallback)
		}
		if c.GetRespHeader(fiber.HeaderAccessControlExposeHeaders) == "" {
			c.Set(fiber.HeaderAccessControlExposeHeaders, exposed)
		}
		return err
	}
}
