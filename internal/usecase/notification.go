package usecase

import (
	"context"

	"lab-booking/internal/domain/entity"
	"lab-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationPublisher hands committed outbox ids to the dispatcher.
// Enqueue must not block.
type NotificationPublisher interface {
	Enqueue(ids ...uuid.UUID)
}

// stageNotifications writes events to the outbox inside tx and returns the
// ids to publish once tx has committed
func stageNotifications(ctx context.Context, tx *gorm.DB, outboxRepo repository.NotificationOutboxRepository, events []entity.NotificationEvent) ([]uuid.UUID, error) {
	if len(events) == 0 {
		return nil, nil
	}

	entries := make([]*entity.NotificationOutbox, 0, len(events))
	ids := make([]uuid.UUID, 0, len(events))
	for _, event := range events {
		entry := entity.NewNotificationOutbox(event)
		entries = append(entries, entry)
		ids = append(ids, entry.ID)
	}

	if err := outboxRepo.CreateBatch(ctx, tx, entries); err != nil {
		return nil, err
	}
	return ids, nil
}

func publish(publisher NotificationPublisher, ids []uuid.UUID) {
	if publisher == nil || len(ids) == 0 {
		return
	}
	publisher.Enqueue(ids...)
}
