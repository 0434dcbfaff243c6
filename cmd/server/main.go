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

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"query-desk/internal/config"
	apphttp "query-desk/internal/http"
	"query-desk/internal/repository/sqlstore"
	"query-desk/internal/service"
	"query-desk/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if err := run(cfg, logger); err != nil {
		logger.Fatal(err)
	}
	logger.Info("bye")
}

// run owns the database pool; every return path closes it before main exits.
func run(cfg config.Config, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, cfg.Database.MaxOpenConns)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	accountRepo := sqlstore.NewAccountRepository(db)
	queryRepo := sqlstore.NewQueryRepository(db)

	if err := accountRepo.Init(ctx); err != nil {
		return fmt.Errorf("init account repository: %w", err)
	}
	if err := queryRepo.Init(ctx); err != nil {
		return fmt.Errorf("init query repository: %w", err)
	}

	archiver, err := buildArchiver(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("setup archive: %w", err)
	}

	authService := service.NewAuthService(accountRepo, service.NewBcryptHasher(cfg.Auth.BcryptCost))
	queryService := service.NewQueryService(queryRepo, archiver, logger)
	dashboardService := service.NewDashboardService(accountRepo, queryRepo)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(authService, queryService, dashboardService, logger, cfg.Auth.DashboardSecret)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s (%s store)", cfg.Server.Addr, cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	return nil
}

// buildArchiver returns nil when no bucket is configured; deleted queries are then dropped.
func buildArchiver(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Archiver, error) {
	if cfg.Storage.Bucket == "" {
		logger.Info("no storage bucket configured, deleted queries will not be archived")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("archiving deleted queries to s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Archiver(client, cfg.Storage.Bucket, cfg.Storage.KeyPrefix), nil
}
