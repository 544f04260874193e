package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/openhall/session-registration/internal/cache"
	"github.com/openhall/session-registration/internal/config"
	"github.com/openhall/session-registration/internal/database"
	"github.com/openhall/session-registration/internal/handler"
	"github.com/openhall/session-registration/internal/mail"
	"github.com/openhall/session-registration/internal/queue"
	"github.com/openhall/session-registration/internal/repository"
	"github.com/openhall/session-registration/internal/router"
	"github.com/openhall/session-registration/internal/scheduler"
	"github.com/openhall/session-registration/internal/service"
)

func main() {
	// A .env file is a convenience for local runs; in deployment the
	// variables come from the environment itself.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	if err := database.SeedSessions(ctx, db); err != nil {
		cancel()
		log.Fatalf("seed: %v", err)
	}
	cancel()

	sessionRepo := repository.NewSessionRepo(db)
	regRepo := repository.NewRegistrationRepo(db)
	reminderRepo := repository.NewReminderRepo(db)

	var mailer mail.Mailer
	if m := mail.NewSMTPMailer(cfg); m != nil {
		mailer = m
	} else {
		log.Printf("mail: SMTP not configured, confirmation and reminder mail disabled")
	}

	rdb := config.NewRedisClient(cfg)
	listCache := cache.NewSessionListCache(rdb, 30*time.Second)
	publisher := queue.NewPublisher(cfg.AMQPURL)

	ledger := service.NewCapacityLedger(sessionRepo, regRepo)
	directory := service.NewSessionDirectory(sessionRepo, regRepo)
	pace := time.Duration(cfg.ReminderPaceMs) * time.Millisecond
	dispatcher := service.NewReminderDispatcher(sessionRepo, regRepo, reminderRepo, mailer, pace)

	if cfg.AMQPURL != "" {
		go func() {
			if err := queue.StartRegistrationConsumer(cfg.AMQPURL); err != nil {
				log.Printf("queue: consumer stopped: %v", err)
			}
		}()
	}
	if cfg.MailEnabled() {
		go scheduler.New(dispatcher, cfg.ReminderHour).Run(context.Background())
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e)
	router.RegisterPublic(e,
		handler.NewSessionHandler(directory, listCache),
		handler.NewRegistrationHandler(ledger, mailer, publisher, listCache))
	router.RegisterAdmin(e,
		handler.NewAdminHandler(cfg, directory, regRepo, dispatcher, listCache),
		cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
