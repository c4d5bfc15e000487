// internal/app/system/workers/expiryreconciler.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ExpiryMarker is the store-side sweep the reconciler drives.
type ExpiryMarker interface {
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
}

// ExpiryReconciler is a background worker that flags overdue sessions
// and breakout rooms as ended. Correctness never depends on it — every
// read and admission path applies lazy expiry against the clock — but
// reconciling keeps listings and stored documents consistent with what
// readers already report.
type ExpiryReconciler struct {
	sessions ExpiryMarker
	rooms    ExpiryMarker
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewExpiryReconciler creates the worker. interval is how often to
// sweep (e.g. one minute).
func NewExpiryReconciler(sessions, rooms ExpiryMarker, logger *zap.Logger, interval time.Duration) *ExpiryReconciler {
	return &ExpiryReconciler{
		sessions: sessions,
		rooms:    rooms,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the sweep loop.
func (w *ExpiryReconciler) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("expiry reconciler started", zap.Duration("interval", w.interval))
}

// Stop signals the worker and waits for it to finish.
func (w *ExpiryReconciler) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("expiry reconciler stopped")
}

func (w *ExpiryReconciler) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *ExpiryReconciler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now().UTC()
	sessions, err := w.sessions.MarkExpired(ctx, now)
	if err != nil {
		w.log.Error("session expiry sweep failed", zap.Error(err))
	}
	rooms, err := w.rooms.MarkExpired(ctx, now)
	if err != nil {
		w.log.Error("breakout expiry sweep failed", zap.Error(err))
	}
	if sessions > 0 || rooms > 0 {
		w.log.Info("marked expired records",
			zap.Int64("sessions", sessions),
			zap.Int64("breakout_rooms", rooms))
	}
}
