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

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	httpadp "ict-ticketing/internal/adapter/http"
	"ict-ticketing/internal/adapter/repository/sqlstore"
	"ict-ticketing/internal/config"
	"ict-ticketing/internal/infrastructure/cache"
	"ict-ticketing/internal/infrastructure/db"
	"ict-ticketing/internal/infrastructure/logging"
	"ict-ticketing/internal/infrastructure/metrics"
	"ict-ticketing/internal/infrastructure/security"
	"ict-ticketing/internal/usecase/auth"
	"ict-ticketing/internal/usecase/inventory"
	"ict-ticketing/internal/usecase/ticket"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 10 * time.Second

var (
	rootCmd = &cobra.Command{
		Use:           "ict-ticketing",
		Short:         "ICT equipment request ticketing API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate()
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ict-ticketing version %s\n", version)
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cfg.LogOutput,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("logger: %w", err)
	}
	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), cfg.DBLogLevel, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, fmt.Errorf("database: %w", err)
	}
	if err := db.Migrate(gdb); err != nil {
		_ = log.Sync()
		return nil, nil, nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("database ready", zap.String("driver", cfg.DBDriver))
	return cfg, log, gdb, nil
}

func migrate() error {
	_, log, gdb, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("migrations applied")
	return nil
}

func serve(ctx context.Context) error {
	cfg, log, gdb, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer sqlDB.Close()
	checks := map[string]httpadp.HealthCheck{"database": sqlDB.PingContext}

	rdb, err := cache.OpenRedis(ctx, cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return err
	}
	if rdb == nil {
		log.Warn("REDIS_ADDR not set, Idempotency-Key replay disabled")
	} else {
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	tokens, err := security.NewJWTIssuer(cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}
	m := metrics.New(cfg.MetricsNamespace)

	authUC := auth.NewUsecase(
		sqlstore.NewUserRepository(gdb),
		security.NewBcryptHasher(cfg.BcryptCost),
		tokens,
		cfg.TokenTTL(),
		log.Named("auth"),
	)
	invUC := inventory.NewUsecase(sqlstore.NewDeviceRepository(gdb), log.Named("inventory"))
	ticketUC := ticket.NewUsecase(
		sqlstore.NewRequestRepository(gdb),
		sqlstore.NewGormUoW(gdb),
		ticket.WithStrictTransitions(cfg.StrictTransitions),
		ticket.WithObserver(m),
		ticket.WithLogger(log.Named("ticket")),
	)

	e := httpadp.NewRouter(httpadp.RouterDeps{
		Auth:           authUC,
		Inventory:      invUC,
		Tickets:        ticketUC,
		Redis:          rdb,
		IdempotencyTTL: cfg.IdempotencyTTL(),
		Metrics:        m,
		Log:            log.Named("http"),
		HealthChecks:   checks,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.AppPort
		log.Info("listening", zap.String("addr", addr), zap.String("version", version),
			zap.Bool("strict_transitions", cfg.StrictTransitions))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
