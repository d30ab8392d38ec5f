package webserver

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/lapmart/lapmart/config"
	"github.com/lapmart/lapmart/internal/auth"
)

var server *WebServer

// WebServer wraps the echo instance and the guard chain used by route
// registration helpers.
type WebServer struct {
	root  *echo.Echo
	cfg   *config.AppConfig
	guard *auth.Guard
}

// Init creates the singleton web server. Must be called before any route
// registration.
func Init(cfg *config.AppConfig, guard *auth.Guard) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.System.Debug
	e.JSONSerializer = jsonSerializer{}

	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	e.HTTPErrorHandler = errorHandler

	server = &WebServer{root: e, cfg: cfg, guard: guard}
	return server
}

func Instance() *WebServer {
	return server
}

// Listen starts serving on the configured host and port, blocking until the
// server stops.
func Listen() error {
	addr := fmt.Sprintf("%s:%d", server.cfg.Web.Host, server.cfg.Web.Port)
	zap.S().Infof("Starting web server on %s", addr)
	return server.root.Start(addr)
}

// Shutdown is exposed for graceful stop from the application lifecycle.
func Shutdown() error {
	return server.root.Close()
}

// Echo exposes the raw echo instance, used by tests to drive requests.
func (s *WebServer) Echo() *echo.Echo {
	return s.root
}

// errorHandler maps failures to the response envelope. Unknown errors never
// leak their message; they become a generic 500.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	message := "internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	} else {
		zap.L().Error("unhandled request error",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	_ = c.JSON(code, map[string]interface{}{
		"code":    code,
		"message": message,
	})
}

// Public routes, no guards.

func PubGET(path string, handler echo.HandlerFunc) {
	server.root.GET(path, handler)
}

func PubPOST(path string, handler echo.HandlerFunc) {
	server.root.POST(path, handler)
}

// Authenticated routes.

func ApiGET(path string, handler echo.HandlerFunc) {
	server.root.GET(path, handler, server.guard.Authenticated())
}

func ApiPOST(path string, handler echo.HandlerFunc) {
	server.root.POST(path, handler, server.guard.Authenticated())
}

func ApiPATCH(path string, handler echo.HandlerFunc) {
	server.root.PATCH(path, handler, server.guard.Authenticated())
}

func ApiDELETE(path string, handler echo.HandlerFunc) {
	server.root.DELETE(path, handler, server.guard.Authenticated())
}

// Seller-gated routes: authenticated, then stored role must be seller.

func SellerGET(path string, handler echo.HandlerFunc) {
	server.root.GET(path, handler, server.guard.Authenticated(), server.guard.RequireSeller())
}

func SellerPOST(path string, handler echo.HandlerFunc) {
	server.root.POST(path, handler, server.guard.Authenticated(), server.guard.RequireSeller())
}

func SellerPATCH(path string, handler echo.HandlerFunc) {
	server.root.PATCH(path, handler, server.guard.Authenticated(), server.guard.RequireSeller())
}

func SellerDELETE(path string, handler echo.HandlerFunc) {
	server.root.DELETE(path, handler, server.guard.Authenticated(), server.guard.RequireSeller())
}

// Admin-gated routes: authenticated, then stored role must be admin.

func AdminGET(path string, handler echo.HandlerFunc) {
	server.root.GET(path, handler, server.guard.Authenticated(), server.guard.RequireAdmin())
}

func AdminPOST(path string, handler echo.HandlerFunc) {
	server.root.POST(path, handler, server.guard.Authenticated(), server.guard.RequireAdmin())
}

func AdminDELETE(path string, handler echo.HandlerFunc) {
	server.root.DELETE(path, handler, server.guard.Authenticated(), server.guard.RequireAdmin())
}

type jsonSerializer struct{}

func (jsonSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := jsoniter.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (jsonSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := jsoniter.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to parse request body").SetInternal(err)
	}
	return nil
}
