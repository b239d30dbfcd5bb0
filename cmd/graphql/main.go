// Standalone GraphQL server: go run ./cmd/graphql
package main

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"vitastore.GO/api"
	graphqlApi "vitastore.GO/api/graphql"
	"vitastore.GO/config"
	"vitastore.GO/core/cache"
	"vitastore.GO/service/notify"
	"vitastore.GO/service/search"
)

func main() {
	config.LoadEnv()
	app := config.App()
	config.InitRedis()
	log.Println(config.PingRedis())

	db, err := config.NewDB()
	if err != nil {
		log.Fatal("db:", err)
	}

	// Read-only: no stock movements happen here, so nothing is dispatched.
	s := api.NewServices(db, notify.Discard{}, nil, cache.NewStore(config.RedisClient), app.SummaryCacheTTL)
	if idx, err := search.FromEnv(db); err == nil {
		s.Search = idx
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	graphqlApi.RegisterGraphQLRoutes(e, s)

	// ASCII banner on start (random font each run)
	gqlFonts := []string{"banner", "big", "block", "slant", "standard", "small", "shadow", "speed", "thick", "univers", "doom", "larry3d", "puffy", "rectangles", "bigchief", "cosmic"}
	fig := figure.NewFigure("VitaStore GQL ->", gqlFonts[rand.Intn(len(gqlFonts))], true)
	fig.Print()
	fmt.Println("Standalone GraphQL server")

	log.Printf("GraphQL at http://localhost:%s/graphql  Playground at http://localhost:%s/playground", app.Port, app.Port)
	e.Logger.Fatal(e.Start(":" + app.Port))
}
