package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	apperrors "github.com/vladimiradmaev/diabetes-webapp/internal/errors"
)

// SessionRecord is a stored copy of the current user of a Telegram account.
type SessionRecord struct {
	TelegramID int64     `gorm:"primaryKey;autoIncrement:false"`
	Payload    string    `gorm:"not null"`
	ExpiresAt  time.Time `gorm:"not null;index"`
	UpdatedAt  time.Time
}

// TableName overrides the gorm default
func (SessionRecord) TableName() string {
	return "user_sessions"
}

// SessionRepository keeps sessions in a SQL database
type SessionRepository struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB, ttl time.Duration) *SessionRepository {
	return &SessionRepository{db: db, ttl: ttl, now: time.Now}
}

// DB exposes the connection so other repositories can share it
func (r *SessionRepository) DB() *gorm.DB {
	return r.db
}

// Get returns the stored user, or ErrSessionNotFound when absent or expired
func (r *SessionRepository) Get(ctx context.Context, telegramID int64) (*domain.User, error) {
	var rec SessionRecord
	err := r.db.WithContext(ctx).
		Where("telegram_id = ? AND expires_at > ?", telegramID, r.now().UTC()).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	var user domain.User
	if err := json.Unmarshal([]byte(rec.Payload), &user); err != nil {
		return nil, apperrors.NewStorageError(fmt.Errorf("corrupt session payload: %w", err))
	}
	return &user, nil
}

// Set replaces the stored user and renews its expiry
func (r *SessionRepository) Set(ctx context.Context, user *domain.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return apperrors.NewStorageError(err)
	}

	now := r.now().UTC()
	rec := SessionRecord{
		TelegramID: user.TelegramID,
		Payload:    string(payload),
		ExpiresAt:  now.Add(r.ttl),
		UpdatedAt:  now,
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "telegram_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "expires_at", "updated_at"}),
		}).
		Create(&rec).Error
	if err != nil {
		return apperrors.NewStorageError(err)
	}
	return nil
}

// Delete removes the stored user
func (r *SessionRepository) Delete(ctx context.Context, telegramID int64) error {
	if err := r.db.WithContext(ctx).Delete(&SessionRecord{}, "telegram_id = ?", telegramID).Error; err != nil {
		return apperrors.NewStorageError(err)
	}
	return nil
}

// PurgeExpired deletes expired sessions and reports how many were removed
func (r *SessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", r.now().UTC()).Delete(&SessionRecord{})
	if res.Error != nil {
		return 0, apperrors.NewStorageError(res.Error)
	}
	return res.RowsAffected, nil
}
