package account

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"canteen-backend/internal/apperr"
	"canteen-backend/internal/models"

	"gorm.io/gorm"
)

// matches the size of users.allergies, counted in characters
const maxAllergiesLen = 200

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// TopUp credits amount to the user's balance and returns the new balance.
func (s *Service) TopUp(ctx context.Context, userID uint, amount float64) (float64, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("amount must be positive: %w", apperr.ErrInvalidInput)
	}

	var user models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("balance", gorm.Expr("balance + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user %d: %w", userID, apperr.ErrNotFound)
		}
		return tx.First(&user, userID).Error
	})
	if err != nil {
		return 0, err
	}
	return user.Balance, nil
}

// UpdateAllergies replaces the free-text allergy notes shown to cooks.
func (s *Service) UpdateAllergies(ctx context.Context, userID uint, allergies string) (*models.User, error) {
	allergies = strings.TrimSpace(allergies)
	if utf8.RuneCountInString(allergies) > maxAllergiesLen {
		return nil, fmt.Errorf("allergies must be at most %d characters: %w", maxAllergiesLen, apperr.ErrInvalidInput)
	}

	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", userID, apperr.ErrNotFound)
		}
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&user).Update("allergies", allergies).Error; err != nil {
		return nil, err
	}
	user.Allergies = allergies
	return &user, nil
}
