// Package custom shows how to extend the app from init() without touching
// core packages: a GraphQL extension, a CLI command, a cron job and a route.
package custom

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"vitastore.GO/api"
	"vitastore.GO/cmd"
	"vitastore.GO/cron"
	"vitastore.GO/graphql"
	gqlregistry "vitastore.GO/graphql/registry"
)

// DaysUntilArgs are the _extension(name: "daysUntil") args.
type DaysUntilArgs struct {
	Date string `mapstructure:"date"`
}

// DaysUntil counts calendar days from the request's As-Of day to args.date.
func DaysUntil(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	var in DaysUntilArgs
	if err := gqlregistry.DecodeArgs(args, &in); err != nil {
		return nil, err
	}
	asOf := graphql.AsOfFromContext(ctx)
	target, err := time.ParseInLocation("2006-01-02", in.Date, asOf.Location())
	if err != nil {
		return nil, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	y, m, d := asOf.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, asOf.Location())
	return map[string]int{"days": int(math.Round(target.Sub(today).Hours() / 24))}, nil
}

func init() {
	// GraphQL extension
	gqlregistry.Register("ping", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return map[string]string{"pong": "ok"}, nil
	})
	gqlregistry.Register("daysUntil", DaysUntil)

	// CLI command
	cmd.Register(&cobra.Command{
		Use:   "custom:hello",
		Short: "Custom command example",
		Run: func(c *cobra.Command, args []string) {
			fmt.Fprintln(c.OutOrStdout(), "Hello from custom command")
		},
	})

	// Cron job
	cron.Register("customping", "@every 1m", func(args ...string) {
		log.Println("Custom cron: ping", args)
	})

	// HTTP route
	api.RegisterGET("/custom/ping", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"pong": "ok"})
	})
}
