package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"

	"dailyart/services/contest-service/internal/clock"
	"dailyart/services/contest-service/internal/config"
	"dailyart/services/contest-service/internal/handler"
	"dailyart/services/contest-service/internal/imagestore"
	"dailyart/services/contest-service/internal/middleware"
	"dailyart/services/contest-service/internal/repository"
	"dailyart/services/contest-service/internal/service"
	"dailyart/shared/pkg/auth"
	dbpkg "dailyart/shared/pkg/db"
	"dailyart/shared/pkg/logger"
	"dailyart/shared/pkg/metrics"
)

const serviceName = "contest"

func main() {
	cfg := config.Load("config.env", ".env")
	log := logger.New(serviceName, cfg.LogLevel, os.Stdout)

	if err := run(cfg, log); err != nil {
		log.Entry().WithError(err).Fatal("contest service stopped")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := dbpkg.NewConnection(ctx, cfg.Database.DB())
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Entry().WithField("driver", conn.Driver).Info("connected to database")

	if err := repository.Migrate(ctx, conn.DB, conn.Driver); err != nil {
		return err
	}
	if err := dbpkg.NewSchemaGuard(conn.DB, conn.Driver).ValidateTables(ctx, repository.ExpectedSchema()); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	redisClient, err := repository.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	backend, err := newImageBackend(cfg.Storage)
	if err != nil {
		return err
	}
	images := imagestore.NewStore(backend, log, imagestore.Options{
		MaxBytes:       cfg.Storage.MaxUploadBytes,
		ThumbnailWidth: cfg.Storage.ThumbnailWidth,
		MaxPixels:      cfg.Storage.MaxPixels,
	})
	defer images.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(serviceName, registry)
	go m.PollDBStats(ctx, conn.DB, 15*time.Second)

	resolver := clock.NewResolver(clock.SystemClock{})

	submissionRepo := repository.NewSubmissionRepository(conn.DB)
	voteRepo := repository.NewVoteRepository(conn.DB)
	closureRepo := repository.NewClosureRepository(conn.DB)
	promptRepo := repository.NewPromptRepository(conn.DB)
	userRepo := repository.NewUserRepository(conn.DB)
	sessions := repository.NewSessionRepository(redisClient)
	podiumCache := repository.NewPodiumCache(redisClient, cfg.Contest.PodiumCacheTTL)

	ledger := service.NewSubmissionService(submissionRepo, images, resolver)
	votes := service.NewVoteService(voteRepo, ledger, service.NewScoreAggregator(voteRepo), resolver)
	winners := service.NewWinnerService(submissionRepo, closureRepo, podiumCache, resolver, log)
	prompts := service.NewPromptService(promptRepo, resolver, cfg.Contest.DefaultPrompt)
	contestService := service.NewContestService(ledger, votes, winners, prompts, images, podiumCache, resolver, log, m)
	userService := service.NewUserService(userRepo, sessions, resolver, cfg.Contest.SessionTTL)

	if cfg.Contest.PromptSchedule != "" {
		schedule, err := config.LoadPromptSchedule(cfg.Contest.PromptSchedule)
		if err != nil {
			return err
		}
		n, err := prompts.Seed(ctx, schedule.Prompts)
		if err != nil {
			return fmt.Errorf("failed to seed prompts: %w", err)
		}
		log.Entry().WithField("prompts", n).Info("prompt schedule loaded")
	}

	validator := auth.NewSessionTokenValidator(sessions)

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		logger.UnaryServerInterceptor(log),
		metrics.UnaryServerInterceptor(m),
		auth.UnaryServerInterceptor(validator, handler.PublicMethods...),
	))
	handler.RegisterContestHandler(grpcServer, contestService, userService, resolver)

	listener, err := net.Listen("tcp", ":"+cfg.Server.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", cfg.Server.GRPCPort, err)
	}

	throttle := middleware.NewThrottle(cfg.Server.RateLimit, cfg.Server.RateWindow)
	go throttle.Run(ctx.Done(), cfg.Server.RateWindow)

	httpHandler := handler.NewHTTPHandler(
		handler.NewContestServer(contestService, userService, resolver),
		images,
		cfg.Storage.MaxUploadBytes,
		conn.Ping,
	)
	httpServer := &http.Server{
		Addr: ":" + cfg.Server.HTTPPort,
		Handler: middleware.Chain(
			httpHandler.Routes(validator, m, registry),
			logger.HTTPMiddleware(log),
			middleware.CORS(cfg.Server.AllowedOrigins),
			middleware.OptionalAuth(validator),
			throttle.Middleware,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Entry().WithField("port", cfg.Server.GRPCPort).Info("gRPC server listening")
		if err := grpcServer.Serve(listener); err != nil {
			errCh <- fmt.Errorf("gRPC server: %w", err)
		}
	}()
	go func() {
		log.Entry().WithField("port", cfg.Server.HTTPPort).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Entry().Info("shutting down")
	case err := <-errCh:
		log.Entry().WithError(err).Error("server failed, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Entry().WithError(err).Warn("HTTP shutdown incomplete")
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		grpcServer.Stop()
	}

	log.Entry().Info("server stopped")
	return nil
}

func newImageBackend(cfg config.StorageConfig) (imagestore.Backend, error) {
	switch cfg.Backend {
	case "local", "":
		return imagestore.NewLocalBackend(cfg.LocalDir)
	case "ftp":
		return imagestore.NewFTPBackend(imagestore.FTPConfig{
			Host:     cfg.FTPHost,
			Port:     cfg.FTPPort,
			User:     cfg.FTPUser,
			Password: cfg.FTPPassword,
			BaseDir:  cfg.FTPBaseDir,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}
