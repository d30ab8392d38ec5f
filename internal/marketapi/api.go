package marketapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lapmart/lapmart/internal/app"
	"github.com/lapmart/lapmart/internal/audit"
	"github.com/lapmart/lapmart/internal/auth"
	"github.com/lapmart/lapmart/internal/domain"
	"github.com/lapmart/lapmart/internal/payment"
	"github.com/lapmart/lapmart/internal/webserver"
)

var (
	appCtx    app.AppContext
	payClient *payment.Client
)

// Register wires every marketplace route against the application context.
// webserver.Init must have run first.
func Register(ctx app.AppContext) {
	appCtx = ctx
	payClient = payment.NewClient(ctx.Config().Payment)

	webserver.PubGET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Lapmart server is running")
	})

	registerAuthRoutes()
	registerUserRoutes()
	registerProductRoutes()
	registerCategoryRoutes()
	registerBookingRoutes()
	registerPaymentRoutes()
	registerReportRoutes()
	registerSystemRoutes()
}

// coll shortcuts a named collection on the application database.
func coll(model domain.Named) *mongo.Collection {
	return appCtx.DB().Collection(model.CollectionName())
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code": "OK",
		"data": data,
	})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"code":    code,
		"message": message,
		"detail":  detail,
	})
}

// isDup reports whether a write hit a unique index. The index violation is
// the only duplicate signal the handlers trust.
func isDup(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

func callerEmail(c echo.Context) string {
	return auth.Email(c)
}

func publishAudit(c echo.Context, action, detail string) {
	audit.Publish(appCtx.Bus(), audit.Entry{
		Actor:   callerEmail(c),
		ActorIP: c.RealIP(),
		Action:  action,
		Detail:  detail,
	})
}
