package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlog "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/kaamkaro/portal/internal/cache"
	"github.com/kaamkaro/portal/internal/config"
	"github.com/kaamkaro/portal/internal/handlers"
	"github.com/kaamkaro/portal/internal/lifecycle"
	"github.com/kaamkaro/portal/internal/middleware"
	"github.com/kaamkaro/portal/internal/models"
	"github.com/kaamkaro/portal/internal/session"
	"github.com/kaamkaro/portal/internal/upstream"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	sessionTTL := time.Duration(cfg.SessionExpiresMin) * time.Minute
	var store session.Store
	if cfg.RedisAddr != "" {
		rs := session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, sessionTTL)
		if err := rs.Ping(context.Background()); err != nil {
			log.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer rs.Close()
		store = rs
		log.Info("sessions in redis", "addr", cfg.RedisAddr)
	} else {
		store = session.NewMemoryStore(sessionTTL)
		log.Info("sessions in memory, set REDIS_ADDR to persist across restarts")
	}

	api := upstream.NewClient(cfg.APIBaseURL, cfg.UpstreamTimeout, log)
	sessions := session.NewManager(api, store, log)

	deps := handlers.Deps{
		API:   api,
		Cache: cache.New(log),
		Store: store,
		Gate:  lifecycle.NewRatingGate(),
		Log:   log,
	}

	authH := handlers.NewAuthHandler(deps, sessions, cfg.SessionSecret, cfg.SessionExpiresMin)
	customerH := handlers.NewCustomerHandler(deps)
	workerH := handlers.NewWorkerHandler(deps)
	ratingH := handlers.NewRatingHandler(deps)
	profileH := handlers.NewProfileHandler(deps)

	app := fiber.New()

	app.Use(fiberlog.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	portal := app.Group("/portal")

	// public
	portal.Post("/auth/register", authH.Register)
	portal.Post("/auth/login", authH.Login)

	// protected (session cookie)
	protected := portal.Group("/", middleware.SessionFromCookie(cfg.SessionSecret, store))
	// Logout needs the resolved session so it can invalidate the refresh
	// token upstream and drop the session record, not just the cookie.
	protected.Post("/auth/logout", authH.Logout)
	protected.Get("/auth/me", authH.Me)

	ratingH.Routes(protected)
	profileH.PublicRoutes(protected)

	customer := protected.Group("/customer", middleware.RequireUserType(models.UserTypeCustomer))
	customerH.Routes(customer)
	profileH.CustomerRoutes(customer)

	worker := protected.Group("/worker", middleware.RequireUserType(models.UserTypeWorker))
	workerH.Routes(worker)
	profileH.WorkerRoutes(worker)

	log.Info("portal listening", "port", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
