package service

import (
	"context"
	"sync"
	"time"

	"lab-booking/config"
	"lab-booking/internal/domain/entity"
	"lab-booking/internal/domain/repository"
	"lab-booking/pkg/metrics"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const sendTimeout = 30 * time.Second

// Notifier delivers one HTML email
type Notifier interface {
	Send(ctx context.Context, to, subject, html string) error
}

// NotificationDispatcher delivers outbox entries in the background. Each
// entry is claimed before sending, so it is sent at most once even when the
// sweep and the queue race for it. Failed sends are recorded, not retried.
type NotificationDispatcher struct {
	tx             repository.Transactor
	log            *logrus.Logger
	outboxRepo     repository.NotificationOutboxRepository
	siteConfigRepo repository.SiteConfigRepository
	notifier       Notifier
	renderer       *EmailRenderer
	metrics        *metrics.Metrics
	cfg            config.OutboxConfig

	queue     chan uuid.UUID
	done      chan struct{}
	wg        sync.WaitGroup
	scheduler gocron.Scheduler
	stopOnce  sync.Once
	now       func() time.Time
}

func NewNotificationDispatcher(
	tx repository.Transactor,
	log *logrus.Logger,
	outboxRepo repository.NotificationOutboxRepository,
	siteConfigRepo repository.SiteConfigRepository,
	notifier Notifier,
	renderer *EmailRenderer,
	m *metrics.Metrics,
	cfg config.OutboxConfig,
) *NotificationDispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}

	return &NotificationDispatcher{
		tx:             tx,
		log:            log,
		outboxRepo:     outboxRepo,
		siteConfigRepo: siteConfigRepo,
		notifier:       notifier,
		renderer:       renderer,
		metrics:        m,
		cfg:            cfg,
		queue:          make(chan uuid.UUID, cfg.QueueSize),
		done:           make(chan struct{}),
		now:            time.Now,
	}
}

// Enqueue schedules committed outbox entries for delivery. It never blocks;
// ids that do not fit in the queue are picked up by the next sweep.
func (d *NotificationDispatcher) Enqueue(ids ...uuid.UUID) {
	for _, id := range ids {
		select {
		case d.queue <- id:
		default:
			d.log.Warnf("Notification queue full, leaving %s for the sweep", id)
		}
	}
}

// Start runs the delivery worker and the periodic sweep of pending entries
func (d *NotificationDispatcher) Start() error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(d.cfg.SweepInterval),
		gocron.NewTask(func() {
			d.sweep(context.Background())
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	d.scheduler = scheduler
	d.wg.Add(1)
	go d.run()
	scheduler.Start()

	d.log.Infof("Notification dispatcher started (sweep every %s)", d.cfg.SweepInterval)
	return nil
}

// Stop halts the sweep, delivers whatever is already queued and waits for
// the worker to exit
func (d *NotificationDispatcher) Stop() {
	d.stopOnce.Do(func() {
		if d.scheduler != nil {
			if err := d.scheduler.Shutdown(); err != nil {
				d.log.Warnf("Failed to stop notification sweep: %+v", err)
			}
		}
		close(d.done)
		d.wg.Wait()
		d.log.Info("Notification dispatcher stopped")
	})
}

func (d *NotificationDispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case id := <-d.queue:
			d.deliver(context.Background(), id)
		case <-d.done:
			for {
				select {
				case id := <-d.queue:
					d.deliver(context.Background(), id)
				default:
					return
				}
			}
		}
	}
}

// sweep re-enqueues pending entries old enough to have missed the queue
func (d *NotificationDispatcher) sweep(ctx context.Context) {
	before := d.now().Add(-d.cfg.SweepInterval)
	ids, err := d.outboxRepo.FindPendingIDs(ctx, d.tx.Conn(ctx), before, d.cfg.BatchSize)
	if err != nil {
		d.log.Warnf("Failed to find pending notifications: %+v", err)
		return
	}
	if len(ids) == 0 {
		return
	}
	d.log.Infof("Sweeping %d pending notifications", len(ids))
	d.Enqueue(ids...)
}

func (d *NotificationDispatcher) deliver(ctx context.Context, id uuid.UUID) {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	conn := d.tx.Conn(ctx)

	entry, err := d.outboxRepo.Claim(ctx, conn, id)
	if err != nil {
		d.log.Warnf("Failed to claim notification %s: %+v", id, err)
		return
	}
	if entry == nil {
		return
	}

	siteConfig, err := d.siteConfigRepo.FindFirst(ctx, conn)
	if err != nil {
		// the default lab name is good enough for the footer
		d.log.Warnf("Failed to load site config for notification %s: %+v", id, err)
	}

	email, err := d.renderer.Render(entry, siteConfig.DisplayName())
	if err != nil {
		d.fail(ctx, entry, err)
		return
	}

	if err := d.notifier.Send(ctx, entry.Recipient, email.Subject, email.HTML); err != nil {
		d.fail(ctx, entry, err)
		return
	}

	if err := d.outboxRepo.MarkSent(ctx, conn, entry.ID, d.now().UTC()); err != nil {
		d.log.Warnf("Failed to mark notification %s sent: %+v", entry.ID, err)
	}
	d.metrics.Notification(string(entry.Kind), "sent")
	d.log.WithFields(logrus.Fields{
		"notification_id": entry.ID,
		"kind":            entry.Kind,
	}).Info("Notification sent")
}

func (d *NotificationDispatcher) fail(ctx context.Context, entry *entity.NotificationOutbox, cause error) {
	d.log.WithFields(logrus.Fields{
		"notification_id": entry.ID,
		"kind":            entry.Kind,
	}).Warnf("Failed to send notification: %+v", cause)

	if err := d.outboxRepo.MarkFailed(ctx, d.tx.Conn(ctx), entry.ID, cause.Error()); err != nil {
		d.log.Warnf("Failed to mark notification %s failed: %+v", entry.ID, err)
	}
	d.metrics.Notification(string(entry.Kind), "failed")
}
