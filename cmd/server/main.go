package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"residence/internal/config"
	"residence/internal/handler"
	"residence/internal/logger"
	"residence/internal/notify"
	"residence/internal/repository"
	"residence/internal/seed"
	"residence/internal/service"

	"github.com/gin-gonic/gin"
	flag "github.com/spf13/pflag"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	seedFile := flag.String("seed", "", "load a JSONC dataset of flats, testimonials and apartment details before serving")
	seedOnly := flag.Bool("seed-only", false, "exit after seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Setup(cfg.Env, os.Stdout)
	log.Info("starting residence relay",
		slog.String("env", cfg.Env),
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("git_commit", GitCommit),
	)

	if err := run(cfg, log, *seedFile, *seedOnly); err != nil {
		log.Error("relay stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger, seedFile string, seedOnly bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.Server.GinMode)

	repo, err := repository.NewRepository(ctx, log,
		cfg.Database.Driver,
		cfg.GetDSN(),
		cfg.Database.MaxConnections,
		cfg.Database.MaxIdleConnections,
	)
	if err != nil {
		return fmt.Errorf("connect to document store: %w", err)
	}
	defer repo.Close()

	if cfg.Database.Migrate {
		if err := repo.Migrate(ctx); err != nil {
			return err
		}
	}

	if seedFile != "" {
		ds, err := seed.LoadFile(seedFile)
		if err != nil {
			return err
		}
		if err := seed.Apply(ctx, repo, ds, log); err != nil {
			return err
		}
		if seedOnly {
			return nil
		}
	}

	publisher, err := notify.New(cfg.AMQP.URL, cfg.AMQP.Queue, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	listing := service.NewListingService(repo, log, cfg.Listing.DefaultLimit, cfg.Listing.MaxLimit)
	inquiries := service.NewInquiryService(repo, publisher, log)

	router := handler.NewRouter(log, cfg.Server.AllowedOrigins,
		handler.BuildInfo{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit},
		handler.NewFlatHandler(listing, log),
		handler.NewInquiryHandler(inquiries, log),
	)

	// Serve static files (frontend)
	// Implemented in embed.go (production) or static_dev.go (development)
	setupStaticFiles(router, cfg.Server.StaticDir, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
