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

	"shiptrack/cmd"
	"shiptrack/internal/adapters/out/postgres"
	"shiptrack/internal/pkg/logger"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configs, err := cmd.LoadConfig(os.Args[1:])
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	appLog, err := logger.New(configs.LogMode)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := openDatabase(configs)
	if err != nil {
		return err
	}

	app, err := cmd.NewCompositionRoot(ctx, configs, gormDB, appLog)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			appLog.Warn("close failed", "error", cerr)
		}
	}()

	e, err := app.NewRouter(ctx)
	if err != nil {
		return err
	}
	if configs.LogMode == "production" || configs.LogMode == "prod" {
		e.Logger.SetLevel(log.WARN)
	} else {
		e.Logger.SetLevel(log.INFO)
	}

	jobManager := app.NewJobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.RunBroadcaster(gctx)
	})
	g.Go(func() error {
		addr := fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)
		appLog.Info("http server listening", "addr", addr, "storage", configs.StorageBackend)
		if serr := e.Start(addr); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			return serr
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	appLog.Info("shutting down")
	return err
}

func openDatabase(configs cmd.Config) (*gorm.DB, error) {
	if configs.StorageBackend != cmd.StoragePostgres {
		return nil, nil
	}

	level := gormlogger.Warn
	if configs.LogMode != "production" && configs.LogMode != "prod" {
		level = gormlogger.Info
	}
	gormDB, err := gorm.Open(gormpostgres.Open(configs.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err = postgres.Migrate(gormDB); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return gormDB, nil
}
