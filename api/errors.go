package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"vitastore.GO/service/ledger"
)

// StatusOf maps ledger and catalog errors onto HTTP status codes.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrDependency):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error writes {"error": ...}; shortages also carry the available quantity.
func Error(c echo.Context, err error) error {
	status := StatusOf(err)
	body := echo.Map{"error": err.Error()}
	var ise *ledger.InsufficientStockError
	if errors.As(err, &ise) {
		body["item_id"] = ise.ItemID
		body["available"] = ise.Available
		body["requested"] = ise.Requested
	}
	var le *ledger.LineError
	if errors.As(err, &le) {
		body["line"] = le.Index
	}
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return c.JSON(status, body)
}

// BadRequest is shorthand for a 400 with message.
func BadRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
