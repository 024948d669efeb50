package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/vn33/ecom-backend/internal/config"
	"github.com/vn33/ecom-backend/internal/es"
	"github.com/vn33/ecom-backend/internal/handlers"
	"github.com/vn33/ecom-backend/internal/logging"
	"github.com/vn33/ecom-backend/internal/metrics"
	authmw "github.com/vn33/ecom-backend/internal/middleware/auth"
	loggingmw "github.com/vn33/ecom-backend/internal/middleware/logging"
	"github.com/vn33/ecom-backend/internal/mykafka"
	"github.com/vn33/ecom-backend/internal/service/token"
	httpserver "github.com/vn33/ecom-backend/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(configuration.JWT_SECRET, "JWT_SECRET")
	config.MustNonEmpty(configuration.REFRESH_SECRET, "REFRESH_SECRET")

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	producer := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatalf("elasticsearch init error: %v", err)
	}

	tokens := &token.TokenService{
		DB:            db,
		JWTSecret:     []byte(configuration.JWT_SECRET),
		RefreshSecret: []byte(configuration.REFRESH_SECRET),
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(metrics.Middleware(configuration.SERVICE_NAME))

	deps := httpserver.Deps{
		AuthHandler:    &handlers.AuthHandler{DB: db, Tokens: tokens},
		ProductHandler: &handlers.ProductHandler{DB: db, Producer: producer},
		CartHandler:    &handlers.CartHandler{DB: db},
		CouponHandler:  &handlers.CouponHandler{DB: db},
		OrderHandler:   &handlers.OrderHandler{DB: db, Producer: producer},
		SearchHandler:  &handlers.SearchHandler{ES: esClient, Index: "products"},
		AuthMW:         authmw.NewAuthMiddleware(tokens),
		ServiceName:    configuration.SERVICE_NAME,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.SERVER_PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
