// Package outboxrepo stores outbox messages in the outbox_messages table.
package outboxrepo

import (
	"context"
	"time"

	"lastmile/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OutboxMessageDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EventName   string     `gorm:"type:varchar(128);not null"`
	AggregateID string     `gorm:"type:varchar(64);not null"`
	Payload     []byte     `gorm:"type:jsonb;not null"`
	OccurredAt  time.Time  `gorm:"not null"`
	CreatedAt   time.Time  `gorm:"not null;index"`
	PublishedAt *time.Time `gorm:"index"`
}

func (OutboxMessageDTO) TableName() string {
	return "outbox_messages"
}

// GormOutboxRepository implements ports.OutboxStore.
type GormOutboxRepository struct {
	db *gorm.DB
}

func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// Insert writes messages with db, which is the committing transaction when
// called from the unit of work.
func Insert(ctx context.Context, db *gorm.DB, messages []ports.OutboxMessage) error {
	if len(messages) == 0 {
		return nil
	}
	dtos := make([]OutboxMessageDTO, 0, len(messages))
	for _, m := range messages {
		dtos = append(dtos, fromPort(m))
	}
	return db.WithContext(ctx).Create(&dtos).Error
}

// GetUnpublished returns up to limit unpublished messages, oldest first.
func (r *GormOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	var dtos []OutboxMessageDTO
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("created_at, occurred_at, id").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	messages := make([]ports.OutboxMessage, 0, len(dtos))
	for _, dto := range dtos {
		messages = append(messages, toPort(dto))
	}
	return messages, nil
}

func (r *GormOutboxRepository) MarkPublished(ctx context.Context, ids []uuid.UUID, publishedAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&OutboxMessageDTO{}).
		Where("id IN ? AND published_at IS NULL", ids).
		Update("published_at", publishedAt.UTC()).Error
}

func fromPort(m ports.OutboxMessage) OutboxMessageDTO {
	return OutboxMessageDTO{
		ID:          m.ID,
		EventName:   m.EventName,
		AggregateID: m.AggregateID,
		Payload:     m.Payload,
		OccurredAt:  m.OccurredAt.UTC(),
		CreatedAt:   m.CreatedAt.UTC(),
		PublishedAt: m.PublishedAt,
	}
}

func toPort(dto OutboxMessageDTO) ports.OutboxMessage {
	return ports.OutboxMessage{
		ID:          dto.ID,
		EventName:   dto.EventName,
		AggregateID: dto.AggregateID,
		Payload:     dto.Payload,
		OccurredAt:  dto.OccurredAt.UTC(),
		CreatedAt:   dto.CreatedAt.UTC(),
		PublishedAt: dto.PublishedAt,
	}
}
