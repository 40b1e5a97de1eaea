package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-table-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-table-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-table-reservation/internal/pkg/metrics"
)

// StatusCounter はステータスごとの予約数を数える
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[reservation.Status]int, error)
}

const defaultStatsInterval = time.Minute

// ReservationStatsCollector はステータス別の予約数を定期的にゲージへ反映するワーカー
type ReservationStatsCollector struct {
	counter  StatusCounter
	metrics  *metrics.Metrics
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  atomic.Bool
	stopOnce sync.Once
}

// NewReservationStatsCollector は interval が0以下なら1分間隔にする
func NewReservationStatsCollector(counter StatusCounter, m *metrics.Metrics, interval time.Duration) *ReservationStatsCollector {
	if interval <= 0 {
		interval = defaultStatsInterval
	}
	return &ReservationStatsCollector{
		counter:  counter,
		metrics:  m,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start は起動直後に1回集計し、その後 interval ごとに集計する
// ctx のキャンセルか Stop で終了するまでブロックする
func (w *ReservationStatsCollector) Start(ctx context.Context) {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	logger.Info("予約統計ワーカー開始", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneCh)

	w.collect(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("予約統計ワーカー停止（コンテキストキャンセル）")
			return
		case <-w.stopCh:
			logger.Info("予約統計ワーカー停止（シグナル受信）")
			return
		case <-ticker.C:
			w.collect(ctx)
		}
	}
}

// Stop はワーカーを停止し、終了を待つ
// 何度呼んでもよく、Start 前に呼んだ場合は以後の Start がすぐ返る
func (w *ReservationStatsCollector) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	if !w.started.CompareAndSwap(false, true) {
		<-w.doneCh
		return
	}
	close(w.doneCh)
}

func (w *ReservationStatsCollector) collect(ctx context.Context) {
	counts, err := w.counter.CountByStatus(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Error("予約統計の集計に失敗", zap.Error(err))
		}
		return
	}
	for status, n := range counts {
		w.metrics.SetReservationsByStatus(string(status), n)
	}
	logger.Debug("予約統計を更新",
		zap.Int("reserved", counts[reservation.StatusReserved]),
		zap.Int("completed", counts[reservation.StatusCompleted]),
		zap.Int("canceled", counts[reservation.StatusCanceled]),
	)
}
