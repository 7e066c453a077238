package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vonm84/qah-app/common/database"
	logpkg "github.com/vonm84/qah-app/common/logger"
	mqttcommon "github.com/vonm84/qah-app/common/mqtt"
	rediscommon "github.com/vonm84/qah-app/common/redis"
	"github.com/vonm84/qah-app/internal/aggregator"
	"github.com/vonm84/qah-app/internal/config"
	"github.com/vonm84/qah-app/internal/consumer"
	"github.com/vonm84/qah-app/internal/domain"
	"github.com/vonm84/qah-app/internal/events"
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

	log, err := logpkg.NewLogger(cfg.Log.Level, cfg.Log.Format, "qah-roster")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting qah-roster service")

	// 名单快照需要数据库和 Redis
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	redisClient := rediscommon.NewRedisClient(&cfg.Redis)
	if err := rediscommon.Ping(context.Background(), redisClient); err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer rediscommon.Close(redisClient)

	stores := repository.NewPostgresStores(db, log)
	generator := schedule.NewGenerator(stores.Dates, cfg.Schedule.Weekday.Weekday(), log)
	members := service.NewMemberService(stores.Members, events.Nop{}, cfg.Schedule.AdminName, log)
	attendance := service.NewAttendanceService(stores, members, generator, events.Nop{}, log)
	assignments := service.NewAssignmentService(stores, members, events.Nop{}, log)
	snapshots := aggregator.NewSnapshotCache(aggregator.NewRedisKVStore(redisClient), cfg.Roster.SnapshotTTL, log)
	roster := service.NewRosterService(stores, generator, attendance, assignments, snapshots, log)

	// MQTT 摘要通知（可选）
	var notifier service.Notifier
	var mqttClient *mqttcommon.Client
	if cfg.MQTTEnabled {
		c, err := mqttcommon.NewClient(&cfg.MQTT, log)
		if err != nil {
			log.Warn("MQTT enabled but connection failed, digests disabled", zap.Error(err))
		} else {
			mqttClient = c
			notifier = c
		}
	}

	loc := cfg.Location()
	worker := service.NewRosterWorker(roster, notifier, service.RosterWorkerOptions{
		Interval: cfg.Roster.PollInterval,
		Topic:    cfg.Roster.MQTTTopic,
		QoS:      cfg.MQTT.QoS,
		Today:    func() domain.Date { return domain.DateOf(time.Now().In(loc)) },
	}, log)

	eventConsumer := consumer.NewEventConsumer(
		redisClient,
		worker,
		log,
		cfg.Roster.EventStream,
		cfg.Roster.ConsumerGroup,
		cfg.Roster.ConsumerName,
		int64(cfg.Roster.BatchSize),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := worker.Run(ctx, eventConsumer); err != nil {
			errChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errChan:
		log.Error("Service error", zap.Error(err))
	}
	cancel()

	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	log.Info("Service stopped")
}
