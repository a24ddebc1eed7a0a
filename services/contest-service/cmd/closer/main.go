// Command closer awards the podium of a finished contest period. It is meant
// to run once a day shortly after midnight UTC; without -period it closes
// yesterday.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"dailyart/services/contest-service/internal/clock"
	"dailyart/services/contest-service/internal/config"
	"dailyart/services/contest-service/internal/repository"
	"dailyart/services/contest-service/internal/service"
	dbpkg "dailyart/shared/pkg/db"
	"dailyart/shared/pkg/logger"
)

func main() {
	period := flag.String("period", "", "period to close (YYYY-MM-DD), defaults to yesterday")
	envFile := flag.String("env", "config.env", "env file to load before the environment")
	flag.Parse()

	cfg := config.Load(*envFile, ".env")
	log := logger.New("contest-closer", cfg.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := dbpkg.NewConnection(ctx, cfg.Database.DB())
	if err != nil {
		log.Entry().WithError(err).Fatal("failed to connect to database")
	}
	defer conn.Close()

	if err := repository.Migrate(ctx, conn.DB, conn.Driver); err != nil {
		log.Entry().WithError(err).Fatal("failed to migrate schema")
	}

	resolver := clock.NewResolver(clock.SystemClock{})
	target := clock.Period(*period)
	if target == "" {
		target = resolver.Yesterday()
	}

	var cache service.PodiumCache
	if redisClient, err := repository.NewRedisClient(ctx, cfg.Redis.URL); err != nil {
		log.Entry().WithError(err).Warn("redis unavailable, podium cache disabled")
	} else {
		defer redisClient.Close()
		cache = repository.NewPodiumCache(redisClient, cfg.Contest.PodiumCacheTTL)
	}

	winners := service.NewWinnerService(
		repository.NewSubmissionRepository(conn.DB),
		repository.NewClosureRepository(conn.DB),
		cache,
		resolver,
		log,
	)

	podium, err := winners.ClosePeriod(ctx, target)
	switch {
	case errors.Is(err, service.ErrPeriodAlreadyClosed):
		log.WithPeriod(string(target)).Info("period already closed")
		return
	case err != nil:
		log.WithPeriod(string(target)).WithError(err).Fatal("failed to close period")
	}

	for i, sub := range podium {
		log.WithPeriod(string(target)).WithField("place", i+1).WithField("submission_id", sub.ID).WithField("user_id", sub.UserID).Info("winner")
	}
}
