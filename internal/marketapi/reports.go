package marketapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/lapmart/lapmart/internal/domain"
	"github.com/lapmart/lapmart/internal/webserver"
	"github.com/lapmart/lapmart/pkg/common"
)

func registerReportRoutes() {
	webserver.AdminGET("/reports", listReports)
	webserver.ApiPOST("/reports", createReport)
	webserver.AdminGET("/reports/export", exportReports)
}

type reportPayload struct {
	Name      string `json:"name"`
	ProductID string `json:"product_id"`
	Reason    string `json:"reason"`
}

func listReports(c echo.Context) error {
	reports, err := findReports(c)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query reports", nil)
	}
	return ok(c, reports)
}

// createReport files a report; the unique name index rejects a repeat.
func createReport(c echo.Context) error {
	var payload reportPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse report parameters", nil)
	}
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return fail(c, http.StatusBadRequest, "MISSING_NAME", "Report name is required", nil)
	}

	report := domain.Report{
		ID:            common.UUID(),
		Name:          name,
		ProductID:     payload.ProductID,
		ReporterEmail: callerEmail(c),
		Reason:        payload.Reason,
		CreatedAt:     time.Now(),
	}
	_, err := coll(domain.Report{}).InsertOne(c.Request().Context(), report)
	if isDup(err) {
		return fail(c, http.StatusConflict, "DUPLICATE_REPORT", "Report already exists", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create report", nil)
	}
	publishAudit(c, "report.create", name)
	return ok(c, report)
}

// exportReports streams the reports collection as an xlsx workbook.
func exportReports(c echo.Context) error {
	reports, err := findReports(c)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query reports", nil)
	}

	xlsx := excelize.NewFile()
	sheet := "Sheet1"
	headers := []string{"ID", "Name", "Product", "Reporter", "Reason", "Created"}
	cols := []string{"A", "B", "C", "D", "E", "F"}
	for i, h := range headers {
		xlsx.SetCellValue(sheet, fmt.Sprintf("%s1", cols[i]), h)
	}
	for i, r := range reports {
		row := i + 2
		xlsx.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.ID)
		xlsx.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.Name)
		xlsx.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.ProductID)
		xlsx.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.ReporterEmail)
		xlsx.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.Reason)
		xlsx.SetCellValue(sheet, fmt.Sprintf("F%d", row), r.CreatedAt.Format(time.RFC3339))
	}

	c.Response().Header().Set(echo.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="reports.xlsx"`)
	c.Response().WriteHeader(http.StatusOK)
	if err := xlsx.Write(c.Response()); err != nil {
		zap.L().Error("report export failed", zap.Error(err))
		return err
	}
	return nil
}

func findReports(c echo.Context) ([]domain.Report, error) {
	cursor, err := coll(domain.Report{}).Find(c.Request().Context(), bson.M{})
	if err != nil {
		return nil, err
	}
	reports := []domain.Report{}
	if err := cursor.All(c.Request().Context(), &reports); err != nil {
		return nil, err
	}
	return reports, nil
}
