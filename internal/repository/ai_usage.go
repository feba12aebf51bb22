package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/vladimiradmaev/diabetes-webapp/internal/errors"
)

// AIUsageRecord counts AI requests of one Telegram account on one day.
type AIUsageRecord struct {
	TelegramID   int64  `gorm:"primaryKey;autoIncrement:false"`
	Day          string `gorm:"primaryKey;size:10"`
	RequestCount int    `gorm:"not null"`
	UpdatedAt    time.Time
}

// TableName overrides the gorm default
func (AIUsageRecord) TableName() string {
	return "ai_usage"
}

// AIUsageRepository keeps daily AI request counters in a SQL database
type AIUsageRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAIUsageRepository creates a new AI usage repository
func NewAIUsageRepository(db *gorm.DB) *AIUsageRepository {
	return &AIUsageRepository{db: db, now: time.Now}
}

// Increment adds one request to the counter of day and returns the new value
func (r *AIUsageRepository) Increment(ctx context.Context, telegramID int64, day string) (int, error) {
	now := r.now().UTC()
	var stored AIUsageRecord

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := AIUsageRecord{TelegramID: telegramID, Day: day, RequestCount: 1, UpdatedAt: now}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "telegram_id"}, {Name: "day"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"request_count": gorm.Expr("ai_usage.request_count + 1"),
				"updated_at":    now,
			}),
		}).Create(&rec).Error
		if err != nil {
			return err
		}
		return tx.Where("telegram_id = ? AND day = ?", telegramID, day).First(&stored).Error
	})
	if err != nil {
		return 0, apperrors.NewStorageError(err)
	}
	return stored.RequestCount, nil
}

// Count returns the counter of day, zero when nothing was recorded
func (r *AIUsageRepository) Count(ctx context.Context, telegramID int64, day string) (int, error) {
	var stored AIUsageRecord
	res := r.db.WithContext(ctx).
		Where("telegram_id = ? AND day = ?", telegramID, day).
		Limit(1).
		Find(&stored)
	if res.Error != nil {
		return 0, apperrors.NewStorageError(res.Error)
	}
	return stored.RequestCount, nil
}

// PurgeBefore deletes counters of days before day
func (r *AIUsageRepository) PurgeBefore(ctx context.Context, day string) (int64, error) {
	res := r.db.WithContext(ctx).Where("day < ?", day).Delete(&AIUsageRecord{})
	if res.Error != nil {
		return 0, apperrors.NewStorageError(res.Error)
	}
	return res.RowsAffected, nil
}
