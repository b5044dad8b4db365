package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	"github.com/nesvesk-vienas/nesvesk-server/internal/metrics"
	"github.com/nesvesk-vienas/nesvesk-server/internal/notify"
	"github.com/nesvesk-vienas/nesvesk-server/internal/store"
)

// DispatcherConfig tunes the outbox worker pool.
type DispatcherConfig struct {
	Workers      int
	PollInterval time.Duration
	MaxAttempts  int
	BaseBackoff  time.Duration
	SendTimeout  time.Duration
}

// NotificationDispatcher drains the notification outbox. Delivery failures
// are logged and retried with backoff, and never reach the mutation that
// enqueued the job.
type NotificationDispatcher struct {
	store    store.Store
	renderer *notify.Renderer
	mailer   notify.Mailer
	metrics  *metrics.Metrics
	config   DispatcherConfig
	logger   *slog.Logger
	now      func() time.Time

	// Worker management
	ctx       context.Context //nolint:containedctx // Context needed for worker lifecycle management
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	jobNotify chan struct{} // Signal that new jobs are available
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewNotificationDispatcher creates a dispatcher. Call Start to run it.
func NewNotificationDispatcher(
	store store.Store,
	renderer *notify.Renderer,
	mailer notify.Mailer,
	m *metrics.Metrics,
	cfg DispatcherConfig,
	logger *slog.Logger,
) *NotificationDispatcher {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 5
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 30 * time.Second
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &NotificationDispatcher{
		store:     store,
		renderer:  renderer,
		mailer:    mailer,
		metrics:   m,
		config:    cfg,
		logger:    logger,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		jobNotify: make(chan struct{}, 1),
	}
}

// Start recovers jobs left running by a previous process and launches the workers.
func (d *NotificationDispatcher) Start() {
	d.startOnce.Do(func() {
		d.logger.Info("starting notification workers",
			slog.Int("workers", d.config.Workers),
			slog.Duration("poll_interval", d.config.PollInterval))

		d.recoverStalledJobs()

		for i := range d.config.Workers {
			d.wg.Add(1)
			go d.worker(i)
		}
	})
}

// Stop cancels the workers and waits for in-flight deliveries to finish.
func (d *NotificationDispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.logger.Info("stopping notification workers")
		d.cancel()
		d.wg.Wait()
		d.logger.Info("notification workers stopped")
	})
}

// Shutdown implements do.Shutdowner.
func (d *NotificationDispatcher) Shutdown() error {
	d.Stop()
	return nil
}

// NotifyNewJob signals workers that a new job is available.
func (d *NotificationDispatcher) NotifyNewJob() {
	select {
	case d.jobNotify <- struct{}{}:
	default:
		// Already notified
	}
}

func (d *NotificationDispatcher) worker(id int) {
	defer d.wg.Done()

	d.logger.Debug("notification worker started", slog.Int("worker_id", id))

	for {
		select {
		case <-d.ctx.Done():
			d.logger.Debug("notification worker stopping", slog.Int("worker_id", id))
			return
		case <-d.jobNotify:
			d.drain()
		case <-time.After(d.config.PollInterval):
			// Covers missed wake-ups and retries coming due.
			d.drain()
			if id == 0 {
				d.RefreshGauges(d.ctx)
			}
		}
	}
}

// drain processes due jobs until none are left.
func (d *NotificationDispatcher) drain() {
	for d.ctx.Err() == nil {
		if !d.ProcessNext(d.ctx) {
			return
		}
	}
}

// ProcessNext claims and delivers one due job. It reports whether a job was
// claimed, so callers can keep draining.
func (d *NotificationDispatcher) ProcessNext(ctx context.Context) bool {
	job, err := d.store.ClaimNotification(ctx, d.now())
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) && ctx.Err() == nil {
			d.logger.Error("failed to claim notification", slog.String("error", err.Error()))
		}
		return false
	}

	logger := d.logger.With(
		slog.String("job_id", job.ID),
		slog.String("kind", string(job.Kind)),
		slog.Int("attempt", job.Attempts))

	email, err := d.renderer.Render(job)
	if err == nil {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.config.SendTimeout)
		err = d.mailer.Send(sendCtx, email)
		cancel()
	}

	// Bookkeeping must land even when the worker is being stopped.
	saveCtx := context.WithoutCancel(ctx)
	now := d.now()

	if err != nil {
		job.MarkAttemptFailed(err, now, d.config.MaxAttempts, d.config.BaseBackoff)
		result := "retry"
		if job.Status == domain.NotificationFailed {
			result = "failed"
			logger.Error("notification failed permanently", slog.String("error", err.Error()))
		} else {
			logger.Warn("notification attempt failed",
				slog.String("error", err.Error()),
				slog.Time("next_attempt_at", job.NextAttemptAt))
		}
		d.metrics.NotificationAttempt(string(job.Kind), result)
	} else {
		job.MarkSent(now)
		logger.Info("notification sent")
		d.metrics.NotificationAttempt(string(job.Kind), "sent")
	}

	if err := d.store.UpdateNotification(saveCtx, job); err != nil {
		logger.Error("failed to update notification", slog.String("error", err.Error()))
	}
	return true
}

// recoverStalledJobs resets jobs that were running when the server stopped.
func (d *NotificationDispatcher) recoverStalledJobs() {
	n, err := d.store.ResetRunningNotifications(d.ctx)
	if err != nil {
		d.logger.Error("failed to recover stalled notifications", slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		d.logger.Info("recovered stalled notifications", slog.Int("count", n))
		d.NotifyNewJob()
	}
}

// RefreshGauges records outbox sizes on the metrics registry.
func (d *NotificationDispatcher) RefreshGauges(ctx context.Context) {
	if d.metrics == nil {
		return
	}
	counts, err := d.store.CountNotificationsByStatus(ctx)
	if err != nil {
		d.logger.Warn("failed to count notifications", slog.String("error", err.Error()))
		return
	}
	for _, status := range []domain.NotificationStatus{
		domain.NotificationPending,
		domain.NotificationRunning,
		domain.NotificationSent,
		domain.NotificationFailed,
	} {
		d.metrics.SetOutboxJobs(string(status), counts[status])
	}
}
