//go:build !cli
// +build !cli

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"vitastore.GO/api"
	_ "vitastore.GO/api/dashboard"
	_ "vitastore.GO/api/email"
	_ "vitastore.GO/api/graphql"
	_ "vitastore.GO/api/health"
	_ "vitastore.GO/api/item"
	_ "vitastore.GO/api/realtime"
	_ "vitastore.GO/api/stock"
	_ "vitastore.GO/api/transaction"
	"vitastore.GO/config"
	"vitastore.GO/core/auth"
	"vitastore.GO/core/cache"
	_ "vitastore.GO/custom"
	"vitastore.GO/html"
	"vitastore.GO/migrations"
	inventoryRepo "vitastore.GO/model/repository/inventory"
	"vitastore.GO/service/notify"
	"vitastore.GO/service/search"
)

func migrate(db *gorm.DB) {
	driver := config.DBDriver()
	if driver == "sqlite" {
		if err := inventoryRepo.AutoMigrate(db); err != nil {
			log.Fatalf("sqlite migrate: %v", err)
		}
		return
	}
	if os.Getenv("AUTO_MIGRATE") != "true" {
		log.Printf("%s schema is managed by `db:migrate` (set AUTO_MIGRATE=true to apply on start)", driver)
		return
	}
	m, err := migrations.New(db, driver)
	if err == nil {
		err = migrations.Up(m)
	}
	if err != nil {
		log.Fatalf("%s migrate: %v", driver, err)
	}
}

func main() {
	config.LoadEnv()
	config.LoadAppConfig()
	app := config.App()

	config.InitRedis()
	log.Println(config.PingRedis())

	db, err := config.NewDB()
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}
	sqldb, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get DB instance: %v", err)
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	log.Println("Database connection successful.")
	migrate(db)

	// Stock-out mails go through the bridge or SMTP. The /api/email
	// endpoint only ever talks SMTP so it can never post to itself.
	mail := config.LoadMailConfig()
	renderer, err := notify.NewRenderer(app.AppName, app.TimeZone)
	if err != nil {
		log.Fatalf("mail templates: %v", err)
	}
	dispatcher := notify.NewAsyncDispatcher(notify.NewTransport(mail), renderer, mail.Recipient)
	var smtp notify.Transport = notify.NopTransport{}
	if mail.SMTPConfigured() {
		smtp = notify.NewSMTPTransport(mail)
	}
	if mail.Recipient == "" {
		log.Println("EMAIL_RECIPIENT not set, stock-out mails disabled.")
	}

	services := api.NewServices(db, dispatcher, smtp, cache.NewStore(config.RedisClient), app.SummaryCacheTTL)
	if idx, err := search.FromEnv(db); err != nil {
		log.Printf("Elasticsearch disabled: %v", err)
	} else if idx != nil {
		services.Search = idx
		log.Printf("Elasticsearch index %s enabled.", idx.Name())
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())
	e.Use(middleware.CORS())
	e.Renderer = html.NewRenderer()

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			c.Response().Before(func() {
				duration := time.Since(start).Milliseconds()
				if c.Response().Header().Get("X-Request-Duration-ms") == "" {
					c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
				}
			})
			return next(c)
		}
	})

	apiGroup := e.Group("/api")
	apiGroup.Use(auth.Middleware())
	api.ApplyModules(apiGroup, services)
	api.ApplyRoutes(e, services)

	go func() {
		log.Printf("%s running on :%s", app.AppName, app.Port)
		if err := e.Start(":" + app.Port); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	dispatcher.Wait()
}
