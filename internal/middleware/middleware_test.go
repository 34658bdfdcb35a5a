package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/service"
)

type stubAuth struct {
	id  model.Identity
	err error
}

func (s stubAuth) AuthenticateRequest(r *http.Request) (model.Identity, string, error) {
	return s.id, service.TokenFromRequest(r), s.err
}

func newEcho(auth Authenticator, roles ...model.Role) *echo.Echo {
	e := echo.New()
	g := e.Group("", SessionAuth(auth, nil))
	if len(roles) > 0 {
		g.Use(RequireRole(roles...))
	}
	g.GET("/me", func(c echo.Context) error {
		id, ok := IdentityFrom(c)
		if !ok {
			return c.NoContent(http.StatusTeapot)
		}
		return c.JSON(http.StatusOK, echo.Map{"id": id.ID, "token": TokenFrom(c)})
	})
	return e
}

func serve(e *echo.Echo, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSessionAuth_StoresIdentityAndToken(t *testing.T) {
	e := newEcho(stubAuth{id: model.Identity{ID: "u-1", Role: model.RoleUser}})

	rec := serve(e, "raw-token")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"u-1","token":"raw-token"}`, rec.Body.String())
}

func TestSessionAuth_FailuresLookIdentical(t *testing.T) {
	for _, err := range []error{service.ErrMissingToken, service.ErrRevoked, service.ErrExpired, service.ErrInvalidSignature, service.ErrMalformed} {
		rec := serve(newEcho(stubAuth{err: err}), "x")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, err.Error())
		assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String(), err.Error())
	}
}

func TestSessionAuth_DenylistOutageIs500(t *testing.T) {
	err := fmt.Errorf("%w: revocation lookup: %v", service.ErrInternal, errors.New("redis down"))
	rec := serve(newEcho(stubAuth{err: err}), "x")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "redis")
}

func TestRequireRole(t *testing.T) {
	seller := stubAuth{id: model.Identity{ID: "u-2", Role: model.RoleSeller}}

	rec := serve(newEcho(seller, model.RoleUser, model.RoleSeller), "x")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(newEcho(seller, model.RoleUser), "x")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequestLogger_RedactsCredentials(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := echo.New()
	e.Use(RequestLogger(zap.New(core)))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
	e.GET("/boom", func(c echo.Context) error { return errors.New("kaboom") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	req.AddCookie(&http.Cookie{Name: "token", Value: "sekrit"})
	e.ServeHTTP(httptest.NewRecorder(), req)

	incoming := logs.FilterMessage("incoming request").All()
	require.Len(t, incoming, 1)
	hdr := incoming[0].ContextMap()["hdr"].(http.Header)
	assert.Equal(t, "[redacted]", hdr.Get("Authorization"))
	assert.Equal(t, "[redacted]", hdr.Get("Cookie"))

	done := logs.FilterMessage("completed").All()
	require.Len(t, done, 1)
	assert.EqualValues(t, http.StatusOK, done[0].ContextMap()["status"])

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Len(t, logs.FilterMessage("request failed").All(), 1)
}
