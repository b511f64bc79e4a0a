package handler

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"respondapi/internal/apitemplate"
	"respondapi/internal/model"
	"respondapi/internal/service"
)

// userBody accepts {"user": {...}} as well as a bare attribute object.
type userBody struct {
	User *model.UserInput `json:"user"`
}

type userFormBody struct {
	User model.UserInput `form:"user"`
}

var errInvalidBody = errors.New("invalid request body")

// parseUserInput reads the user attributes from a JSON, XML or form body.
// An empty body yields empty attributes, which validation then rejects.
func parseUserInput(c *fiber.Ctx) (model.UserInput, error) {
	var in model.UserInput
	if len(c.Body()) == 0 {
		return in, nil
	}

	ctype := strings.ToLower(string(c.Request().Header.ContentType()))
	ctype, _, _ = strings.Cut(ctype, ";")
	switch strings.TrimSpace(ctype) {
	case fiber.MIMEApplicationJSON:
		var body userBody
		if err := c.App().Config().JSONDecoder(c.Body(), &body); err != nil {
			return in, errInvalidBody
		}
		if body.User != nil {
			return *body.User, nil
		}
		if err := c.App().Config().JSONDecoder(c.Body(), &in); err != nil {
			return in, errInvalidBody
		}
		return in, nil
	case fiber.MIMEApplicationXML, fiber.MIMETextXML:
		if err := decodeUserXML(c.Body(), &in); err != nil {
			return in, errInvalidBody
		}
		return in, nil
	case fiber.MIMEApplicationForm, fiber.MIMEMultipartForm:
		var body userFormBody
		if err := c.BodyParser(&body); err != nil {
			return in, errInvalidBody
		}
		if body.User != (model.UserInput{}) {
			return body.User, nil
		}
		if err := c.BodyParser(&in); err != nil {
			return in, errInvalidBody
		}
		return in, nil
	default:
		return in, fiber.ErrUnsupportedMediaType
	}
}

// decodeUserXML decodes a <user> document into in.
func decodeUserXML(body []byte, in *model.UserInput) error {
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != model.UserAPIName {
			return errInvalidBody
		}
		return dec.DecodeElement(in, &start)
	}
}

// CreateUser godoc
// @Summary Create a user
// @Description Validates and stores a user, then renders it through the selected API template.
// @Tags users
// @Accept json,xml,x-www-form-urlencoded
// @Produce json,xml
// @Param api_template query string false "API template name"
// @Param api_prefix query string false "Template prefix"
// @Param api_postfix query string false "Template postfix"
// @Success 201 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Failure 422 {object} map[string][]string
// @Router /users [post]
func CreateUser(svc service.UserService, resp *Responder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sel := resp.selection(c, true)
		if err := resp.resolve(model.UserAPIName, sel); err != nil {
			return resp.templateError(c, err)
		}

		in, err := parseUserInput(c)
		if err != nil {
			if errors.Is(err, fiber.ErrUnsupportedMediaType) {
				return writeError(c, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "body must be json, xml or form encoded")
			}
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}

		u, err := svc.Create(c.UserContext(), in)
		if err != nil {
			var verrs *model.ValidationErrors
			if errors.As(err, &verrs) {
				return resp.invalid(c, verrs)
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		c.Location(c.BaseURL() + "/users/" + u.ID)
		return resp.one(c, fiber.StatusCreated, model.UserAPIName, u, sel)
	}
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json,xml
// @Param api_template query string false "API template name"
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Router /users [get]
func ListUsers(svc service.UserService, resp *Responder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		sel := resp.selection(c, false)
		if err := resp.resolve(model.UserAPIName, sel); err != nil {
			return resp.templateError(c, err)
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		recs := make([]apitemplate.Record, len(res.Items))
		for i := range res.Items {
			recs[i] = &res.Items[i]
		}
		c.Set("X-Total-Count", strconv.Itoa(res.Total))
		return resp.many(c, model.UserAPIName, recs, sel)
	}
}

// ShowUser godoc
// @Summary Show a user
// @Tags users
// @Produce json,xml
// @Param id path string true "User ID"
// @Param api_template query string false "API template name"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /users/{id} [get]
func ShowUser(svc service.UserService, resp *Responder) fiber.Handler {
	return showUser(svc, resp, false)
}

// ShowUserPrefixPostfix godoc
// @Summary Show a user through a decorated template
// @Description Selects <api_prefix>_<api_template>_<api_postfix>.
// @Tags users
// @Produce json,xml
// @Param id path string true "User ID"
// @Param api_template query string false "API template name"
// @Param api_prefix query string false "Template prefix"
// @Param api_postfix query string false "Template postfix"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /users/{id}/show_prefix_postfix [get]
func ShowUserPrefixPostfix(svc service.UserService, resp *Responder) fiber.Handler {
	return showUser(svc, resp, true)
}

func showUser(svc service.UserService, resp *Responder, decorated bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		sel := resp.selection(c, decorated)
		if err := resp.resolve(model.UserAPIName, sel); err != nil {
			return resp.templateError(c, err)
		}

		u, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "user not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return resp.one(c, fiber.StatusOK, model.UserAPIName, u, sel)
	}
}

// DeleteUser godoc
// @Summary Delete a user
// @Tags users
// @Param id path string true "User ID"
// @Success 204
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /users/{id} [delete]
func DeleteUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "user not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
