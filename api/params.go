package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

// ParseID reads a positive numeric path parameter.
func ParseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(id), nil
}

// ParseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp; empty means nil.
func ParseDate(s string) (*datatypes.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d := datatypes.Date(t)
			return &d, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
}
