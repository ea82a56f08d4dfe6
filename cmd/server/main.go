package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/akulov/points-api/internal/config"
	"github.com/akulov/points-api/internal/events"
	"github.com/akulov/points-api/internal/httpserver"
	"github.com/akulov/points-api/internal/models"
	"github.com/akulov/points-api/internal/repo"
	"github.com/akulov/points-api/internal/service"
	"github.com/akulov/points-api/pkg/db"
	"github.com/akulov/points-api/pkg/logging"
	loggingmw "github.com/akulov/points-api/pkg/middleware/logging"
)

func main() {
	logger := logging.New(config.EnvDefault("LOG_LEVEL", "info"))
	cfg := config.Load(logger)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(loggingmw.RequestLogger(logger))

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := gdb.AutoMigrate(&models.User{}, &models.RevokedToken{}); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	producer := events.NewProducer(cfg.KafkaAddress)
	defer producer.Close()

	gormRepo := &repo.GormRepo{DB: gdb}

	authSvc := &service.AuthService{
		Repo:      gormRepo,
		Events:    producer,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
	}
	userSvc := &service.UserService{
		Repo:   gormRepo,
		Events: producer,
	}

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:  &httpserver.AuthHTTP{Svc: authSvc},
		UserHandler:  &httpserver.UserHTTP{Svc: userSvc},
		AdminHandler: &httpserver.AdminHTTP{Svc: userSvc},
		JWTSecret:    cfg.JWTSecret,
		Repo:         gormRepo,
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
