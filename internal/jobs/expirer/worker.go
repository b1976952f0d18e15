package expirer

import (
	"context"
	"time"
)

// Worker периодически переводит зависшие pending записи в expired
type Worker struct {
	service  BookingService
	interval time.Duration
	ttl      time.Duration
	logger   Logger
}

func NewWorker(service BookingService, interval, ttl time.Duration, logger Logger) *Worker {
	return &Worker{
		service:  service,
		interval: interval,
		ttl:      ttl,
		logger:   logger,
	}
}

// Run блокируется до отмены ctx. Первый проход выполняется сразу при старте.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("Expirer: started, interval=%s, ttl=%s", w.interval, w.ttl)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.sweep(ctx)

		select {
		case <-ctx.Done():
			w.logger.Info("Expirer: stopped")
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	expired, err := w.service.ExpireStale(ctx, w.ttl)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Error("Expirer: sweep failed: %v", err)
		return
	}
	if expired > 0 {
		w.logger.Info("Expirer: %d appointments expired", expired)
	}
}
