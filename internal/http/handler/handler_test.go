package handler

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"respondapi/internal/apitemplate"
	"respondapi/internal/http/middleware"
	"respondapi/internal/model"
	"respondapi/internal/service"
	serviceMocks "respondapi/internal/service/mocks"
	"respondapi/internal/templates"
)

func newTestResponder(t *testing.T, defaultTemplate string) *Responder {
	t.Helper()
	reg, err := apitemplate.LoadFS(templates.FS)
	require.NoError(t, err)
	resp, err := NewResponder(apitemplate.NewRenderer(reg, apitemplate.DefaultOptions()), defaultTemplate, prometheus.NewRegistry(), nil)
	require.NoError(t, err)
	return resp
}

func newTestApp(svc service.UserService, resp *Responder) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})
	app.Use(middleware.RequestID())
	app.Use(middleware.NegotiateFormat("/users"))
	RegisterRoutes(app, Dependencies{Users: svc, Responder: resp})
	return app
}

func decodeError(t *testing.T, r io.Reader) errorPayload {
	t.Helper()
	var res errorPayload
	require.NoError(t, json.NewDecoder(r).Decode(&res))
	return res
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Use(middleware.RequestID())
	app.Get("/health", HealthCheck(db.PingContext))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(middleware.RequestIDHeader, "rid-1")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		body := decodeError(t, resp.Body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
		assert.Equal(t, "rid-1", body.RequestID)
	})

	t.Run("no dependency", func(t *testing.T) {
		app := fiber.New()
		app.Get("/health", HealthCheck(nil))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListUsers(t *testing.T) {
	mockSvc := new(serviceMocks.MockUserService)
	app := newTestApp(mockSvc, newTestResponder(t, "name_only"))

	t.Run("success", func(t *testing.T) {
		res := &service.UserListResult{
			Items: []model.User{
				{ID: uuid.NewString(), FirstName: "Luke", LastName: "Skywalker"},
				{ID: uuid.NewString(), FirstName: "Leia", LastName: "Organa"},
			},
			Total: 2,
		}
		mockSvc.On("List", mock.Anything, 10, 0).Return(res, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/users?limit=10&offset=0", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "2", resp.Header.Get("X-Total-Count"))

		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"users":[
			{"first_name":"Luke","last_name":"Skywalker"},
			{"first_name":"Leia","last_name":"Organa"}
		]}`, string(body))
		mockSvc.AssertExpectations(t)
	})

	t.Run("xml collection", func(t *testing.T) {
		res := &service.UserListResult{Items: []model.User{{FirstName: "Luke", LastName: "Skywalker"}}, Total: 1}
		mockSvc.On("List", mock.Anything, 10, 0).Return(res, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/users.xml", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, fiber.MIMEApplicationXMLCharsetUTF8, resp.Header.Get(fiber.HeaderContentType))
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), `<users type="array">`)
		assert.Contains(t, string(body), `<first-name>Luke</first-name>`)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_LIMIT", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("invalid offset", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users?offset=x", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_OFFSET", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("unknown template", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newTestApp(mockSvc, newTestResponder(t, "name_only"))

		req := httptest.NewRequest(http.MethodGet, "/users?api_template=everything", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Empty(t, resp.Header.Get("X-Total-Count"))
		assert.Equal(t, "UNKNOWN_TEMPLATE", decodeError(t, resp.Body).Error.Code)
		mockSvc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 0).Return(nil, errors.New("service error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestCreateUser(t *testing.T) {
	luke := model.UserInput{FirstName: "Luke", LastName: "Skywalker"}

	t.Run("created", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		responder := newTestResponder(t, "")
		app := newTestApp(mockSvc, responder)

		id := uuid.NewString()
		mockSvc.On("Create", mock.Anything, luke).
			Return(&model.User{ID: id, FirstName: "Luke", LastName: "Skywalker"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/users?api_template=name_only",
			strings.NewReader(`{"user":{"first_name":"Luke","last_name":"Skywalker"}}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "http://example.com/users/"+id, resp.Header.Get(fiber.HeaderLocation))

		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"user":{"first_name":"Luke","last_name":"Skywalker"}}`, string(body))
		assert.Equal(t, 1.0, testutil.ToFloat64(responder.renders.WithLabelValues("user", "name_only", "json")))
		mockSvc.AssertExpectations(t)
	})

	t.Run("bare attributes", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newTestApp(mockSvc, newTestResponder(t, "name_only"))

		mockSvc.On("Create", mock.Anything, luke).
			Return(&model.User{ID: uuid.NewString(), FirstName: "Luke", LastName: "Skywalker"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/users",
			strings.NewReader(`{"first_name":"Luke","last_name":"Skywalker"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("xml body", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newTestApp(mockSvc, newTestResponder(t, "name_only"))

		mockSvc.On("Create", mock.Anything, luke).
			Return(&model.User{ID: uuid.NewString(), FirstName: "Luke", LastName: "Skywalker"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/users.xml",
			strings.NewReader(`<user><first-name>Luke</first-name><last-name>Skywalker</last-name></user>`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationXML)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), `<last-name>Skywalker</last-name>`)
		mockSvc.AssertExpectations(t)
	})

	t.Run("form body", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newTestApp(mockSvc, newTestResponder(t, "name_only"))

		mockSvc.On("Create", mock.Anything, luke).
			Return(&model.User{ID: uuid.NewString(), FirstName: "Luke", LastName: "Skywalker"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/users",
			strings.NewReader("user[first_name]=Luke&user[last_name]=Skywalker"))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("validation errors as json", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newTestApp(mockSvc, newTestResponder(t, "name_only"))

		verrs := model.NewValidationErrors()
		verrs.Add("first_name", "can't be blank")
		mockSvc.On("Create", mock.Anything, model.UserInput{LastName: "Skywalker"}).Return(nil, verrs).Once()

		req := httptest.NewRequest(http.MethodPost, "/users",
			strings.NewReader(`{"user":{"last_name":"Skywalker"}}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Empty(t, resp.Header.Get(fiber.HeaderLocation))
		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"first_name":["can't be blank"]}`, string(body))
		mockSvc.AssertExpectations(t)
	})

	t.Run("validation errors as xml", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newTestApp(mockSvc, newTestResponder(t, "name_only"))

		verrs := model.NewValidationErrors()
		verrs.Add("first_name", "can't be blank")
		verrs.Add("last_name", "can't be blank")
		mockSvc.On("Create", mock.Anything, model.UserInput{}).Return(nil, verrs).Once()

		req := httptest.NewRequest(http.MethodPost, "/users.xml", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var doc struct {
			XMLName xml.Name `xml:"errors"`
			Errors  []string `xml:"error"`
		}
		require.NoError(t, xml.NewDecoder(resp.Body).Decode(&doc))
		assert.Equal(t, []string{"First name can't be blank", "Last name can't be blank"}, doc.Errors)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unknown template creates nothing", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newTestApp(mockSvc, newTestResponder(t, "name_only"))

		req := httptest.NewRequest(http.MethodPost, "/users?api_template=name_only&api_prefix=nope",
			strings.NewReader(`{"user":{"first_name":"Luke","last_name":"Skywalker"}}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Empty(t, resp.Header.Get(fiber.HeaderLocation))
		assert.Equal(t, "UNKNOWN_TEMPLATE", decodeError(t, resp.Body).Error.Code)
		mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("template required", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newTestApp(mockSvc, newTestResponder(t, ""))

		req := httptest.NewRequest(http.MethodPost, "/users",
			strings.NewReader(`{"user":{"first_name":"Luke","last_name":"Skywalker"}}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Empty(t, resp.Header.Get(fiber.HeaderLocation))
		assert.Equal(t, "TEMPLATE_REQUIRED", decodeError(t, resp.Body).Error.Code)
		mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("malformed body", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newTestApp(mockSvc, newTestResponder(t, "name_only"))

		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"user":`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("xml with another root element", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newTestApp(mockSvc, newTestResponder(t, "name_only"))

		req := httptest.NewRequest(http.MethodPost, "/users.xml",
			strings.NewReader(`<person><first-name>Luke</first-name></person>`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationXML)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp.Body).Error.Code)
		mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unsupported media type", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newTestApp(mockSvc, newTestResponder(t, "name_only"))

		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader("Luke Skywalker"))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMETextPlain)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
		assert.Equal(t, "UNSUPPORTED_MEDIA_TYPE", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newTestApp(mockSvc, newTestResponder(t, "name_only"))

		mockSvc.On("Create", mock.Anything, luke).Return(nil, errors.New("db down")).Once()

		req := httptest.NewRequest(http.MethodPost, "/users",
			strings.NewReader(`{"user":{"first_name":"Luke","last_name":"Skywalker"}}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestShowUser(t *testing.T) {
	mockSvc := new(serviceMocks.MockUserService)
	app := newTestApp(mockSvc, newTestResponder(t, "name_only"))

	t.Run("success", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Get", mock.Anything, id).Return(&model.User{ID: id, FirstName: "Luke", LastName: "Skywalker"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/users/"+id+"?api_template=rename_last_name", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, `{"user":{"first_name":"Luke","family_name":"Skywalker"}}`+"\n", string(body))
		mockSvc.AssertExpectations(t)
	})

	t.Run("prefix ignored on plain show", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Get", mock.Anything, id).Return(&model.User{ID: id, FirstName: "Luke", LastName: "Skywalker"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/users/"+id+"?api_prefix=with_prefix", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.NotContains(t, string(body), "prefix")
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/users/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unknown template", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newTestApp(mockSvc, newTestResponder(t, "name_only"))

		req := httptest.NewRequest(http.MethodGet, "/users/"+uuid.NewString()+"?api_template=everything", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "UNKNOWN_TEMPLATE", decodeError(t, resp.Body).Error.Code)
		mockSvc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/invalid-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Get", mock.Anything, id).Return(nil, errors.New("db error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/users/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestShowUserPrefixPostfix(t *testing.T) {
	mockSvc := new(serviceMocks.MockUserService)
	app := newTestApp(mockSvc, newTestResponder(t, ""))
	id := uuid.NewString()
	mockSvc.On("Get", mock.Anything, id).Return(&model.User{ID: id, FirstName: "Luke", LastName: "Skywalker"}, nil)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "prefix",
			query: "api_template=name_only&api_prefix=with_prefix",
			want:  `{"user":{"prefix":"with prefix","first_name":"Luke","last_name":"Skywalker"}}`,
		},
		{
			name:  "postfix",
			query: "api_template=name_only&api_postfix=with_postfix",
			want:  `{"user":{"first_name":"Luke","last_name":"Skywalker","postfix":"with postfix"}}`,
		},
		{
			name:  "prefix and postfix",
			query: "api_template=name_only&api_prefix=with_prefix&api_postfix=with_postfix",
			want:  `{"user":{"prefix":"with prefix","first_name":"Luke","last_name":"Skywalker","postfix":"with postfix"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/"+id+"/show_prefix_postfix?"+tt.query, nil)
			resp, _ := app.Test(req)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.want+"\n", string(body))
		})
	}

	t.Run("prefix without template", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newTestApp(mockSvc, newTestResponder(t, ""))

		req := httptest.NewRequest(http.MethodGet, "/users/"+id+"/show_prefix_postfix?api_prefix=with_prefix", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "TEMPLATE_REQUIRED", decodeError(t, resp.Body).Error.Code)
		mockSvc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("unknown decoration", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newTestApp(mockSvc, newTestResponder(t, ""))

		req := httptest.NewRequest(http.MethodGet, "/users/"+id+"/show_prefix_postfix?api_template=name_only&api_postfix=nope", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "UNKNOWN_TEMPLATE", decodeError(t, resp.Body).Error.Code)
		mockSvc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

func TestDeleteUser(t *testing.T) {
	mockSvc := new(serviceMocks.MockUserService)
	app := newTestApp(mockSvc, newTestResponder(t, "name_only"))

	t.Run("success", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Delete", mock.Anything, id).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/users/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Delete", mock.Anything, id).Return(service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/users/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/users/123", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Delete", mock.Anything, id).Return(errors.New("delete error")).Once()

		req := httptest.NewRequest(http.MethodDelete, "/users/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestRouting(t *testing.T) {
	mockSvc := new(serviceMocks.MockUserService)
	app := newTestApp(mockSvc, newTestResponder(t, "name_only"))

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("not acceptable", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/users/"+uuid.NewString()+".csv", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotAcceptable, resp.StatusCode)
		assert.Equal(t, "NOT_ACCEPTABLE", decodeError(t, resp.Body).Error.Code)
		mockSvc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}
