package health

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"vitastore.GO/api"
)

func init() {
	api.RegisterRoute(func(e *echo.Echo, s *api.Services) {
		e.GET("/health", func(c echo.Context) error {
			sqlDB, err := s.DB.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request().Context())
			}
			if err != nil {
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "down", "error": err.Error()})
			}
			return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
		})
	})
}
