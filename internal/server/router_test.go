package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gavv/httpexpect/v2"

	"github.com/fedutinova/tlexport/internal/config"
	httpapi "github.com/fedutinova/tlexport/internal/transport/http"
)

func newServer(t *testing.T, cfg config.Config) *httpexpect.Expect {
	t.Helper()
	srv := httptest.NewServer(NewRouter(httpapi.NewHandlers(cfg)))
	t.Cleanup(srv.Close)
	return httpexpect.Default(t, srv.URL)
}

func TestDemoService(t *testing.T) {
	e := newServer(t, config.Config{DemoRateLimit: 100})

	e.GET("/hello").Expect().
		Status(http.StatusOK).
		Text().IsEqual("Hello World!")

	e.GET("/users").Expect().
		Status(http.StatusOK).
		Text().IsEqual("Users List")

	e.GET("/users/1").Expect().
		Status(http.StatusOK).
		Text().IsEqual("User + 1")

	e.GET("/users/one").Expect().
		Status(http.StatusNotFound)

	e.GET("/users/_").Expect().
		Status(http.StatusNotFound)

	e.GET("/healthz").Expect().
		Status(http.StatusOK).
		JSON().Object().
		HasValue("status", "healthy").
		ContainsKey("system")
}

func TestDemoService_CORS(t *testing.T) {
	e := newServer(t, config.Config{})

	e.GET("/hello").WithHeader("Origin", "http://example.com").Expect().
		Status(http.StatusOK).
		Header("Access-Control-Allow-Origin").IsEqual("*")
}

func TestDemoService_RateLimit(t *testing.T) {
	e := newServer(t, config.Config{DemoRateLimit: 2})

	e.GET("/hello").Expect().Status(http.StatusOK)
	e.GET("/hello").Expect().Status(http.StatusOK)
	e.GET("/hello").Expect().Status(http.StatusTooManyRequests)
}
