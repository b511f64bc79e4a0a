package handler

import (
	"bytes"
	"encoding/xml"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"respondapi/internal/apitemplate"
	"respondapi/internal/http/middleware"
	"respondapi/internal/model"
)

// Query parameters selecting the API template.
const (
	paramTemplate = "api_template"
	paramPrefix   = "api_prefix"
	paramPostfix  = "api_postfix"
)

// Responder turns service results into HTTP responses: records are rendered
// through the requested API template in the negotiated format, validation
// failures become 422 error documents.
type Responder struct {
	renderer        *apitemplate.Renderer
	defaultTemplate string
	renders         *prometheus.CounterVec
	log             *slog.Logger
}

// NewResponder wires the renderer. defaultTemplate is used when a request
// names no template; leave it empty to make api_template mandatory.
// Render metrics are registered on reg when it is not nil.
func NewResponder(renderer *apitemplate.Renderer, defaultTemplate string, reg prometheus.Registerer, log *slog.Logger) (*Responder, error) {
	if log == nil {
		log = slog.Default()
	}
	r := &Responder{
		renderer:        renderer,
		defaultTemplate: defaultTemplate,
		renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "api_template_renders_total",
				Help: "Responses rendered through an API template.",
			},
			[]string{"model", "template", "format"},
		),
		log: log,
	}
	if reg != nil {
		if err := reg.Register(r.renders); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// selection reads the template from the query. Prefix and postfix are only
// honoured when decorated is set.
func (r *Responder) selection(c *fiber.Ctx, decorated bool) apitemplate.Selection {
	sel := apitemplate.Selection{Template: c.Query(paramTemplate, r.defaultTemplate)}
	if decorated {
		sel.Prefix = c.Query(paramPrefix)
		sel.Postfix = c.Query(paramPostfix)
	}
	return sel
}

// resolve checks that the selection names an existing template. It writes
// nothing; handlers turn a failure into a response with templateError and
// return before doing any work.
func (r *Responder) resolve(modelName string, sel apitemplate.Selection) error {
	_, err := r.renderer.Resolve(modelName, sel)
	return err
}

func (r *Responder) templateError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, apitemplate.ErrEmptySelection):
		return writeError(c, fiber.StatusBadRequest, "TEMPLATE_REQUIRED", "api_template is required")
	case errors.Is(err, apitemplate.ErrTemplateNotFound):
		return writeError(c, fiber.StatusBadRequest, "UNKNOWN_TEMPLATE", "unknown api template")
	default:
		r.log.ErrorContext(c.UserContext(), "api_template_render_failed",
			"request_id", middleware.RequestIDFromLocals(c),
			"error", err,
		)
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// one renders a single record with the given status.
func (r *Responder) one(c *fiber.Ctx, status int, modelName string, rec apitemplate.Record, sel apitemplate.Selection) error {
	doc, err := r.renderer.One(modelName, rec, sel)
	if err != nil {
		return r.templateError(c, err)
	}
	return r.send(c, status, modelName, doc)
}

// many renders a collection with 200.
func (r *Responder) many(c *fiber.Ctx, modelName string, recs []apitemplate.Record, sel apitemplate.Selection) error {
	doc, err := r.renderer.Many(modelName, recs, sel)
	if err != nil {
		return r.templateError(c, err)
	}
	return r.send(c, fiber.StatusOK, modelName, doc)
}

func (r *Responder) send(c *fiber.Ctx, status int, modelName string, doc *apitemplate.Document) error {
	format := middleware.FormatFrom(c)

	var buf bytes.Buffer
	var err error
	if format == middleware.FormatXML {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
		err = doc.EncodeXML(&buf)
	} else {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		err = doc.EncodeJSON(&buf)
	}
	if err != nil {
		return r.templateError(c, err)
	}

	r.renders.WithLabelValues(modelName, doc.Template, string(format)).Inc()
	return c.Status(status).Send(buf.Bytes())
}

type xmlErrors struct {
	XMLName  xml.Name `xml:"errors"`
	Messages []string `xml:"error"`
}

// invalid writes a 422 with the validation errors: a flat attribute object
// in JSON, full messages in XML.
func (r *Responder) invalid(c *fiber.Ctx, verrs *model.ValidationErrors) error {
	c.Status(fiber.StatusUnprocessableEntity)
	if middleware.FormatFrom(c) != middleware.FormatXML {
		return c.JSON(verrs)
	}

	body, err := xml.MarshalIndent(xmlErrors{Messages: verrs.FullMessages()}, "", "  ")
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return c.Send(append(append([]byte(xml.Header), body...), '\n'))
}
