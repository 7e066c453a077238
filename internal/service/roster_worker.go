package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vonm84/qah-app/internal/aggregator"
	"github.com/vonm84/qah-app/internal/domain"
)

// Notifier publishes the roster digest (MQTT in production).
type Notifier interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// EventSource blocks delivering change events until ctx is done.
type EventSource interface {
	Start(ctx context.Context) error
}

// RosterDigest is the small summary pushed after each committed refresh.
type RosterDigest struct {
	Generation int64              `json:"generation"`
	BuiltAt    time.Time          `json:"built_at"`
	Dates      []RosterDigestDate `json:"dates"`
}

type RosterDigestDate struct {
	Date      domain.Date `json:"date"`
	Attendees int         `json:"attendees"`
}

// NewRosterDigest summarises a snapshot.
func NewRosterDigest(snap *aggregator.RosterSnapshot) RosterDigest {
	d := RosterDigest{
		Generation: snap.Generation,
		BuiltAt:    snap.BuiltAt,
		Dates:      make([]RosterDigestDate, 0, len(snap.Dates)),
	}
	for _, dr := range snap.Dates {
		d.Dates = append(d.Dates, RosterDigestDate{Date: dr.Date, Attendees: dr.AttendeeCount()})
	}
	return d
}

// RosterWorker 名单刷新后台任务（qah-roster）
type RosterWorker struct {
	roster   RosterService
	notifier Notifier // nil when MQTT is disabled
	topic    string
	qos      byte
	interval time.Duration
	today    func() domain.Date
	logger   *zap.Logger
}

// RosterWorkerOptions 后台任务参数
type RosterWorkerOptions struct {
	Interval time.Duration
	Topic    string
	QoS      byte
	Today    func() domain.Date
}

func NewRosterWorker(roster RosterService, notifier Notifier, opts RosterWorkerOptions, logger *zap.Logger) *RosterWorker {
	return &RosterWorker{
		roster:   roster,
		notifier: notifier,
		topic:    opts.Topic,
		qos:      opts.QoS,
		interval: opts.Interval,
		today:    opts.Today,
		logger:   logger,
	}
}

// Refresh rebuilds the snapshot and announces it when it was committed.
func (w *RosterWorker) Refresh(ctx context.Context) error {
	snap, committed, err := w.roster.Refresh(ctx, w.today())
	if err != nil {
		return err
	}
	if !committed {
		if snap.Generation == 0 {
			w.logger.Debug("Roster snapshot cache disabled, nothing committed")
			return nil
		}
		w.logger.Debug("Roster refresh superseded", zap.Int64("generation", snap.Generation))
		return nil
	}

	w.logger.Info("Roster snapshot refreshed",
		zap.Int64("generation", snap.Generation),
		zap.Int("date_count", len(snap.Dates)),
	)
	if w.notifier == nil {
		return nil
	}
	payload, err := json.Marshal(NewRosterDigest(snap))
	if err != nil {
		return fmt.Errorf("failed to marshal roster digest: %w", err)
	}
	// 通知失败不影响快照
	if err := w.notifier.Publish(w.topic, w.qos, true, payload); err != nil {
		w.logger.Warn("Failed to publish roster digest",
			zap.String("topic", w.topic),
			zap.Error(err),
		)
	}
	return nil
}

// Run refreshes once, then on every tick and, when events is non-nil, on
// every change event batch. Blocks until ctx is done.
func (w *RosterWorker) Run(ctx context.Context, events EventSource) error {
	w.logger.Info("Starting roster worker",
		zap.Duration("interval", w.interval),
		zap.Bool("event_driven", events != nil),
	)

	// 首次执行一次全量刷新
	if err := w.Refresh(ctx); err != nil {
		w.logger.Error("Failed to refresh roster on startup", zap.Error(err))
	}

	if events == nil {
		w.poll(ctx)
		return nil
	}
	go w.poll(ctx)
	return events.Start(ctx)
}

func (w *RosterWorker) poll(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Refresh(ctx); err != nil {
				w.logger.Error("Failed to refresh roster", zap.Error(err))
			}
		}
	}
}
