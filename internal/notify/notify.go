// Package notify appends user-targeted notifications. Writers take the
// caller's transaction so a notification commits with the action that
// triggered it or not at all.
package notify

import (
	"context"

	"canteen-backend/internal/models"

	"gorm.io/gorm"
)

const DefaultLimit = 10

// User appends one notification for userID.
func User(tx *gorm.DB, userID uint, message string) error {
	return tx.Create(&models.Notification{UserID: userID, Message: message}).Error
}

// Role fans message out to every user holding role.
func Role(tx *gorm.DB, role models.UserRole, message string) error {
	var ids []uint
	if err := tx.Model(&models.User{}).Where("role = ?", role).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	rows := make([]models.Notification, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.Notification{UserID: id, Message: message})
	}
	return tx.Create(&rows).Error
}

// UserOnce appends message unless the user already has an identical one.
// Used for reminders raised on every dashboard load.
func UserOnce(tx *gorm.DB, userID uint, message string) (bool, error) {
	var n int64
	if err := tx.Model(&models.Notification{}).
		Where("user_id = ? AND message = ?", userID, message).
		Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	return true, User(tx, userID, message)
}

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

type Feed struct {
	Unread        int64                 `json:"count"`
	Notifications []models.Notification `json:"notifications"`
}

// List returns the latest notifications, unread first then newest first.
func (s *Service) List(ctx context.Context, userID uint, limit int) (*Feed, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	db := s.DB.WithContext(ctx)

	feed := &Feed{Notifications: []models.Notification{}}
	if err := db.Where("user_id = ?", userID).
		Order("is_read asc").
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&feed.Notifications).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&feed.Unread).Error; err != nil {
		return nil, err
	}
	return feed, nil
}

// MarkAllRead flips every unread notification of userID.
func (s *Service) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
