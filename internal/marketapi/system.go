package marketapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/lapmart/lapmart/internal/domain"
	"github.com/lapmart/lapmart/internal/webserver"
)

func registerSystemRoutes() {
	webserver.AdminGET("/system/info", systemInfo)
}

// systemInfo serves the admin dashboard: latest monitor snapshot plus
// per-collection document counts.
func systemInfo(c echo.Context) error {
	counts := map[string]int64{}
	for _, model := range domain.Collections {
		n, err := appCtx.DB().Collection(model.CollectionName()).
			CountDocuments(c.Request().Context(), bson.M{})
		if err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to count documents", nil)
		}
		counts[model.CollectionName()] = n
	}

	return ok(c, map[string]interface{}{
		"system": appCtx.SystemStats().Snapshot(),
		"counts": counts,
	})
}
