package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/vonm84/qah-app/common/database"
	logpkg "github.com/vonm84/qah-app/common/logger"
	rediscommon "github.com/vonm84/qah-app/common/redis"
	"github.com/vonm84/qah-app/internal/aggregator"
	"github.com/vonm84/qah-app/internal/config"
	"github.com/vonm84/qah-app/internal/domain"
	"github.com/vonm84/qah-app/internal/events"
	httpapi "github.com/vonm84/qah-app/internal/http"
	"github.com/vonm84/qah-app/internal/repository"
	"github.com/vonm84/qah-app/internal/schedule"
	"github.com/vonm84/qah-app/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logpkg.NewLogger(cfg.Log.Level, cfg.Log.Format, "qah-api")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 存储：DB 不可用时退回内存仓库
	var db *sql.DB
	var stores *repository.Stores
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			stores = repository.NewPostgresStores(db, logger)
			logger.Info("DB enabled for qah-api")
		} else {
			logger.Warn("DB enabled but connection failed, falling back to memory store", zap.Error(err))
		}
	}
	if stores == nil {
		stores = repository.NewMemoryStores()
	}

	// Redis：变更事件 + 名单快照
	var redisClient *goredis.Client
	var publisher events.Publisher = events.Nop{}
	var snapshots *aggregator.SnapshotCache
	if cfg.RedisEnabled {
		client := rediscommon.NewRedisClient(&cfg.Redis)
		if err := rediscommon.Ping(context.Background(), client); err == nil {
			redisClient = client
			publisher = events.NewStreamPublisher(client, cfg.Roster.EventStream, logger)
			snapshots = aggregator.NewSnapshotCache(aggregator.NewRedisKVStore(client), cfg.Roster.SnapshotTTL, logger)
			logger.Info("Redis enabled for qah-api", zap.String("event_stream", cfg.Roster.EventStream))
		} else {
			logger.Warn("Redis enabled but ping failed, change events disabled", zap.Error(err))
			_ = rediscommon.Close(client)
		}
	}

	generator := schedule.NewGenerator(stores.Dates, cfg.Schedule.Weekday.Weekday(), logger)
	members := service.NewMemberService(stores.Members, publisher, cfg.Schedule.AdminName, logger)
	attendance := service.NewAttendanceService(stores, members, generator, publisher, logger)
	assignments := service.NewAssignmentService(stores, members, publisher, logger)

	api := &httpapi.API{
		Members:     members,
		Schedule:    service.NewScheduleService(generator, publisher, logger),
		Attendance:  attendance,
		Assignments: assignments,
		Songs:       service.NewSongService(stores.Songs, publisher, logger),
		Roster:      service.NewRosterService(stores, generator, attendance, assignments, snapshots, logger),
		Today:       httpapi.TodayIn(cfg.Location()),
		Logger:      logger,
	}

	// the leader account always exists
	if _, created, err := members.Register(context.Background(), domain.Member{Name: cfg.Schedule.AdminName}); err != nil {
		logger.Warn("Failed to ensure admin member", zap.Error(err))
	} else if created {
		logger.Info("Admin member created", zap.String("member_name", cfg.Schedule.AdminName))
	}

	router := httpapi.NewRouter(logger)
	router.RegisterRoutes(api)

	srv := service.NewServer(cfg.HTTP.Addr, router, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("HTTP server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)

	if redisClient != nil {
		if err := rediscommon.Close(redisClient); err != nil {
			logger.Error("Error closing redis connection", zap.Error(err))
		}
	}
	if db != nil {
		if err := database.Close(db); err != nil {
			logger.Error("Error closing database connection", zap.Error(err))
		}
	}
}
