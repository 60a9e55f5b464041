package report

import (
	"bytes"

	"github.com/gofiber/fiber/v2"
)

// GET /api/admin/report?days=30&format=json|csv|xlsx
func ReportHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		days := c.QueryInt("days", DefaultDays)
		if days <= 0 || days > 366 {
			return fiber.NewError(fiber.StatusBadRequest, "days must be between 1 and 366")
		}

		rows, err := svc.Daily(c.UserContext(), days)
		if err != nil {
			return err
		}

		switch c.Query("format", "json") {
		case "json":
			return c.JSON(rows)
		case "csv":
			var buf bytes.Buffer
			if err := WriteCSV(&buf, rows); err != nil {
				return err
			}
			c.Set(fiber.HeaderContentType, "text/csv")
			c.Set(fiber.HeaderContentDisposition, `attachment; filename="monthly_report.csv"`)
			return c.Send(buf.Bytes())
		case "xlsx":
			data, err := XLSX(rows)
			if err != nil {
				return err
			}
			c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			c.Set(fiber.HeaderContentDisposition, `attachment; filename="monthly_report.xlsx"`)
			return c.Send(data)
		default:
			return fiber.NewError(fiber.StatusBadRequest, "format must be json, csv or xlsx")
		}
	}
}
