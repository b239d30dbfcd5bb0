package email

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"vitastore.GO/api"
	"vitastore.GO/service/notify"
)

func init() {
	api.RegisterModule(RegisterEmailRoutes)
}

// RegisterEmailRoutes mounts the mail bridge. It never fails the request:
// missing configuration and delivery errors come back as 200 with
// success=false so callers can fire and forget.
func RegisterEmailRoutes(apiGroup *echo.Group, s *api.Services) {
	apiGroup.POST("/email", func(c echo.Context) error {
		var msg notify.Message
		if err := c.Bind(&msg); err != nil {
			return api.BadRequest(c, err.Error())
		}
		if msg.Subject == "" || msg.HTML == "" {
			return api.BadRequest(c, "subject and html are required")
		}

		// Detached from the request so a client disconnect does not cut the SMTP session.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		sent, err := s.Mail.Send(ctx, msg)
		switch {
		case err != nil:
			c.Logger().Errorf("email bridge: %v", err)
			return c.JSON(http.StatusOK, notify.BridgeResponse{Success: false, Message: err.Error()})
		case !sent:
			c.Logger().Warn("email not configured, set SMTP_USER, SMTP_PASS and EMAIL_RECIPIENT")
			return c.JSON(http.StatusOK, notify.BridgeResponse{Success: false, Message: "Email not configured"})
		}
		return c.JSON(http.StatusOK, notify.BridgeResponse{Success: true})
	})
}
