package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Format is a negotiated response representation.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// FormatLocalKey is the Fiber locals key holding the negotiated Format.
const FormatLocalKey = "response_format"

// ErrNotAcceptable is returned when no supported representation was asked for.
var ErrNotAcceptable = fiber.NewError(fiber.StatusNotAcceptable, "not acceptable")

// ParseFormat maps an extension or query value to a Format.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, true
	case "xml":
		return FormatXML, true
	default:
		return "", false
	}
}

// FormatFrom returns the format stored by NegotiateFormat, JSON when unset.
func FormatFrom(c *fiber.Ctx) Format {
	if f, ok := c.Locals(FormatLocalKey).(Format); ok && f != "" {
		return f
	}
	return FormatJSON
}

// NegotiateFormat picks the response format for requests under the given
// path prefixes. Precedence: path extension (/users/1.xml), the format query
// parameter, then the Accept header. A recognised extension is stripped
// before routing continues, so /users/1.xml is served by /users/:id.
// Unsupported formats end the request with 406.
func NegotiateFormat(prefixes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if !underPrefix(path, prefixes) {
			return c.Next()
		}

		if ext := pathExt(path); ext != "" {
			f, ok := ParseFormat(ext)
			if !ok {
				return ErrNotAcceptable
			}
			c.Path(strings.TrimSuffix(path, "."+ext))
			c.Locals(FormatLocalKey, f)
			return c.Next()
		}

		if q := c.Query("format"); q != "" {
			f, ok := ParseFormat(q)
			if !ok {
				return ErrNotAcceptable
			}
			c.Locals(FormatLocalKey, f)
			return c.Next()
		}

		switch c.Accepts(fiber.MIMEApplicationJSON, fiber.MIMEApplicationXML, fiber.MIMETextXML) {
		case fiber.MIMEApplicationJSON:
			c.Locals(FormatLocalKey, FormatJSON)
		case fiber.MIMEApplicationXML, fiber.MIMETextXML:
			c.Locals(FormatLocalKey, FormatXML)
		default:
			return ErrNotAcceptable
		}
		return c.Next()
	}
}

func underPrefix(path string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") || strings.HasPrefix(path, p+".") {
			return true
		}
	}
	return false
}

// pathExt returns the extension of the last path segment when it looks like
// a format suffix (letters only).
func pathExt(path string) string {
	seg := path[strings.LastIndexByte(path, '/')+1:]
	dot := strings.LastIndexByte(seg, '.')
	if dot <= 0 || dot == len(seg)-1 {
		return ""
	}
	ext := seg[dot+1:]
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return ""
		}
	}
	return ext
}
