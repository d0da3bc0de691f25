package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deliveryhub/cmd"
	httpapi "deliveryhub/internal/adapters/in/http"
	"deliveryhub/internal/adapters/out/postgres"
	"deliveryhub/internal/adapters/out/postgres/migrations"
	"deliveryhub/internal/adapters/out/redisstore"
	"deliveryhub/internal/pkg/logger"

	_ "deliveryhub/docs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// @title Delivery Hub API
// @version 1.0
// @description Assigns delivery partners to confirmed orders and tracks deliveries in real time.
// @BasePath /api/v1
func main() {
	_ = godotenv.Load(".env")

	cfg, err := cmd.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		ServiceName: cfg.App.ServiceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("service stopped")
	}
}

func run(cfg cmd.Config, log zerolog.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := postgres.Open(cfg.DB.DSN(), cfg.DB.Pool(), logger.Component(log, "gorm"))
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("getting sql.DB: %w", err)
	}
	defer func() { err = multierr.Append(err, sqlDB.Close()) }()

	if cfg.DB.AutoMigrate {
		if err := migrations.Up(ctx, sqlDB); err != nil {
			return err
		}
		log.Info().Msg("migrations applied")
	}

	redisClient, err := redisstore.New(ctx, cfg.Redis.Options())
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := cmd.NewCompositionRoot(cfg, gormDB, redisClient, reg, log)
	gateway := app.CreateGateway()

	e := httpapi.NewEcho(logger.Component(log, "http"))
	e.GET("/health", func(c echo.Context) error {
		if err := sqlDB.PingContext(c.Request().Context()); err != nil {
			return c.String(http.StatusServiceUnavailable, "Unhealthy")
		}
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/ws", echo.WrapHandler(gateway))
	app.CreateHTTPServer().Register(e)

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	// The producer outlives the other components so events raised during shutdown
	// still get flushed.
	producerCtx, stopProducer := context.WithCancel(context.Background())
	producerDone := make(chan error, 1)
	if producer := app.Producer(); producer != nil {
		go func() { producerDone <- producer.Run(producerCtx) }()
	} else {
		close(producerDone)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.HTTP.Port).Msg("http server listening")
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", cfg.HTTP.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if consumer, handler := app.CreateOrderConfirmedConsumer(); consumer != nil {
		g.Go(func() error {
			return consumer.Run(gctx, handler)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		gateway.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	err = g.Wait()

	app.Hub().Close()
	stopProducer()
	select {
	case perr := <-producerDone:
		err = multierr.Append(err, perr)
	case <-time.After(cfg.App.ShutdownTimeout):
		log.Warn().Msg("producer flush timed out")
	}
	return err
}
