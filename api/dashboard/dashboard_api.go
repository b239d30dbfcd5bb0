package dashboard

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"vitastore.GO/api"
)

func init() {
	api.RegisterModule(RegisterDashboardRoutes)
}

func RegisterDashboardRoutes(apiGroup *echo.Group, s *api.Services) {
	g := apiGroup.Group("/dashboard")

	g.GET("/summary", func(c echo.Context) error {
		sum, err := s.Summary.Summarize(c.Request().Context())
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, sum)
	})

	// GET /api/dashboard/expiring lists items expiring within a year.
	g.GET("/expiring", func(c echo.Context) error {
		items, err := s.Summary.ExpiringItems(c.Request().Context(), time.Now())
		if err != nil {
			return api.Error(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
	})

	// GET /api/dashboard/reconcile lists items whose quantity disagrees with their ledger.
	g.GET("/reconcile", func(c echo.Context) error {
		drift, err := s.Ledger.Reconcile(c.Request().Context())
		if err != nil {
			return api.Error(c, err)
		}
		out := make([]echo.Map, len(drift))
		for i, d := range drift {
			out[i] = echo.Map{
				"item_id":      d.ItemID,
				"item_name":    d.ItemName,
				"quantity":     d.Quantity,
				"ledger_total": d.LedgerTotal,
				"difference":   d.Difference(),
			}
		}
		return c.JSON(http.StatusOK, echo.Map{"drift": out, "count": len(out)})
	})
}
