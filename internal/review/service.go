package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"canteen-backend/internal/apperr"
	"canteen-backend/internal/models"
	"canteen-backend/internal/notify"

	"gorm.io/gorm"
)

type Sort string

const (
	SortNewest     Sort = "newest"
	SortOldest     Sort = "oldest"
	SortRatingHigh Sort = "rating_high"
	SortRatingLow  Sort = "rating_low"
)

const MaxCommentLen = 1000

type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db, Now: time.Now}
}

// Create stores a review of an item and alerts the admins.
func (s *Service) Create(ctx context.Context, userID, itemID uint, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", apperr.ErrInvalidInput)
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > MaxCommentLen {
		return nil, fmt.Errorf("comment must be at most %d characters: %w", MaxCommentLen, apperr.ErrInvalidInput)
	}

	rev := models.Review{
		UserID:    userID,
		ItemID:    itemID,
		Rating:    rating,
		Comment:   comment,
		Timestamp: s.Now(),
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.MenuItem
		if err := tx.Select("id").First(&item, itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("menu item %d: %w", itemID, apperr.ErrNotFound)
			}
			return err
		}
		if err := tx.Create(&rev).Error; err != nil {
			return err
		}
		return notify.Role(tx, models.RoleAdmin,
			fmt.Sprintf("New review from a student (rating %d/5). Check the reviews tab", rating))
	})
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

type Entry struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	ItemID    uint      `json:"item_id"`
	ItemName  string    `json:"item_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
}

// List returns every review in the requested order; unknown sorts fall back
// to newest first.
func (s *Service) List(ctx context.Context, sort Sort) ([]Entry, error) {
	q := s.DB.WithContext(ctx).Preload("User").Preload("Item")
	switch sort {
	case SortOldest:
		q = q.Order("timestamp asc")
	case SortRatingHigh:
		q = q.Order("rating desc").Order("timestamp desc")
	case SortRatingLow:
		q = q.Order("rating asc").Order("timestamp desc")
	default:
		q = q.Order("timestamp desc")
	}

	var reviews []models.Review
	if err := q.Order("id asc").Find(&reviews).Error; err != nil {
		return nil, err
	}

	res := make([]Entry, 0, len(reviews))
	for _, r := range reviews {
		res = append(res, Entry{
			ID:        r.ID,
			Username:  r.User.Username,
			ItemID:    r.ItemID,
			ItemName:  r.Item.Name,
			Rating:    r.Rating,
			Comment:   r.Comment,
			Timestamp: r.Timestamp,
		})
	}
	return res, nil
}
