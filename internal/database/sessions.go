package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func CreateSession(ctx context.Context, txn *gorm.DB, session *Session) error {
	if err := txn.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("error creating session for user %d: %w", session.UserId, err)
	}
	return nil
}

func GetSession(ctx context.Context, txn *gorm.DB, sessionId uuid.UUID) (*Session, error) {
	var session Session
	if err := txn.WithContext(ctx).First(&session, "id = ?", sessionId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting session %s: %w", sessionId, err)
	}
	return &session, nil
}

func DeleteSession(ctx context.Context, txn *gorm.DB, sessionId uuid.UUID) error {
	if err := txn.WithContext(ctx).Delete(&Session{}, "id = ?", sessionId).Error; err != nil {
		return fmt.Errorf("error deleting session %s: %w", sessionId, err)
	}
	return nil
}

// DeleteUserSessions removes every session of the user except keep, which may
// be uuid.Nil to remove all of them.
func DeleteUserSessions(ctx context.Context, txn *gorm.DB, userId uint, keep uuid.UUID) error {
	query := txn.WithContext(ctx).Where("user_id = ?", userId)
	if keep != uuid.Nil {
		query = query.Where("id <> ?", keep)
	}
	if err := query.Delete(&Session{}).Error; err != nil {
		return fmt.Errorf("error deleting sessions for user %d: %w", userId, err)
	}
	return nil
}

func DeleteExpiredSessions(ctx context.Context, txn *gorm.DB, now time.Time) (int64, error) {
	result := txn.WithContext(ctx).Where("expires_at <= ?", now).Delete(&Session{})
	if result.Error != nil {
		slog.Error("error deleting expired sessions", "error", result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
