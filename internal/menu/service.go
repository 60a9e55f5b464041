// Package menu owns the stock and publish lifecycle of menu items:
// cooks create or restock dishes as drafts, publish them, and correct
// stock counts by hand.
package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"canteen-backend/internal/apperr"
	"canteen-backend/internal/audit"
	"canteen-backend/internal/models"
	"canteen-backend/internal/notify"

	"gorm.io/gorm"
)

// Limits follow the column sizes of menu_items, counted in characters.
const (
	MaxNameLen      = 100
	maxAllergensLen = 200
)

type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db, Now: time.Now}
}

type DishInput struct {
	Name      string
	Price     float64
	Category  models.Category
	Quantity  int
	Date      time.Time // zero means today
	Allergens string
}

// CreateDish creates a draft dish or restocks the dish with the same name and
// category. A restock adds quantity, overwrites price, date and allergens, and
// never changes the publish state.
func (s *Service) CreateDish(ctx context.Context, in DishInput) (*models.MenuItem, bool, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Allergens = strings.TrimSpace(in.Allergens)
	if in.Name == "" {
		return nil, false, fmt.Errorf("dish name is required: %w", apperr.ErrInvalidInput)
	}
	if utf8.RuneCountInString(in.Name) > MaxNameLen {
		return nil, false, fmt.Errorf("dish name must be at most %d characters: %w", MaxNameLen, apperr.ErrInvalidInput)
	}
	if utf8.RuneCountInString(in.Allergens) > maxAllergensLen {
		return nil, false, fmt.Errorf("allergens must be at most %d characters: %w", maxAllergensLen, apperr.ErrInvalidInput)
	}
	if !in.Category.IsDish() {
		return nil, false, fmt.Errorf("category must be breakfast or lunch: %w", apperr.ErrInvalidInput)
	}
	if in.Price < 0 || in.Quantity < 0 {
		return nil, false, fmt.Errorf("price and quantity cannot be negative: %w", apperr.ErrInvalidInput)
	}
	if in.Date.IsZero() {
		in.Date = s.Now()
	}
	in.Date = dateOnly(in.Date)

	var (
		item   models.MenuItem
		merged bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("name = ? AND category = ?", in.Name, in.Category).First(&item).Error
		switch {
		case err == nil:
			before := item
			item.Quantity += in.Quantity
			item.Price = in.Price
			item.Date = in.Date
			item.Allergens = in.Allergens
			if err := tx.Save(&item).Error; err != nil {
				return err
			}
			merged = true
			return audit.WriteLog(ctx, tx, audit.LogOptions{
				EntityType:  "menu_item",
				EntityID:    item.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("restocked %s by %d", item.Name, in.Quantity),
				Before:      before,
				After:       item,
			})
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.MenuItem{
				Name:      in.Name,
				Price:     in.Price,
				Category:  in.Category,
				Quantity:  in.Quantity,
				Date:      in.Date,
				Allergens: in.Allergens,
				IsActive:  false,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			return audit.WriteLog(ctx, tx, audit.LogOptions{
				EntityType:  "menu_item",
				EntityID:    item.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("draft dish %s created", item.Name),
				After:       item,
			})
		default:
			return err
		}
	})
	if err != nil {
		return nil, false, err
	}
	return &item, merged, nil
}

// PublishDish makes a dish visible to students and tells them about it.
func (s *Service) PublishDish(ctx context.Context, itemID uint) (*models.MenuItem, error) {
	var item models.MenuItem
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("menu item %d: %w", itemID, apperr.ErrNotFound)
			}
			return err
		}
		if !item.Category.IsDish() {
			return fmt.Errorf("%s is not a dish: %w", item.Name, apperr.ErrInvalidState)
		}

		if err := tx.Model(&item).Update("is_active", true).Error; err != nil {
			return err
		}
		item.IsActive = true
		if err := notify.Role(tx, models.RoleStudent,
			fmt.Sprintf("Menu updated! '%s' is now available to order", item.Name)); err != nil {
			return err
		}
		return audit.WriteLog(ctx, tx, audit.LogOptions{
			EntityType:  "menu_item",
			EntityID:    item.ID,
			Action:      models.AuditActionPublish,
			Description: fmt.Sprintf("%s published", item.Name),
		})
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateStock sets an absolute stock count and warns cooks when it is low.
func (s *Service) UpdateStock(ctx context.Context, itemID uint, quantity int) (*models.MenuItem, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative: %w", apperr.ErrInvalidInput)
	}

	var item models.MenuItem
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("menu item %d: %w", itemID, apperr.ErrNotFound)
			}
			return err
		}
		before := item.Quantity

		if err := tx.Model(&item).Update("quantity", quantity).Error; err != nil {
			return err
		}
		item.Quantity = quantity
		if quantity < models.LowStockThreshold {
			if err := notify.Role(tx, models.RoleCook, LowStockMessage(item.Name, quantity)); err != nil {
				return err
			}
		}
		return audit.WriteLog(ctx, tx, audit.LogOptions{
			EntityType:  "menu_item",
			EntityID:    item.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("stock of %s set %d -> %d", item.Name, before, quantity),
		})
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// LowStockMessage is the warning cooks receive when an item runs low.
func LowStockMessage(name string, left int) string {
	return fmt.Sprintf("Warning! %s is running out. Only %d portions left", name, left)
}

// ListMenu returns dishes students can order right now.
func (s *Service) ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := s.DB.WithContext(ctx).
		Where("is_active = ? AND quantity > 0", true).
		Where("category IN ?", []models.Category{models.CategoryBreakfast, models.CategoryLunch}).
		Order("category asc").Order("name asc").
		Find(&items).Error
	return items, err
}

// ListWarehouse returns raw products.
func (s *Service) ListWarehouse(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := s.DB.WithContext(ctx).
		Where("category = ?", models.CategoryProduct).
		Order("name asc").
		Find(&items).Error
	return items, err
}

// ListDishes returns drafts (newest relevance date first) or published
// dishes (largest stock first).
func (s *Service) ListDishes(ctx context.Context, active bool) ([]models.MenuItem, error) {
	q := s.DB.WithContext(ctx).
		Where("category IN ?", []models.Category{models.CategoryBreakfast, models.CategoryLunch}).
		Where("is_active = ?", active)
	if active {
		q = q.Order("quantity desc")
	} else {
		q = q.Order("date desc")
	}
	var items []models.MenuItem
	err := q.Order("id asc").Find(&items).Error
	return items, err
}

// DishNames lists distinct dish names for autocompletion.
func (s *Service) DishNames(ctx context.Context) ([]string, error) {
	var names []string
	err := s.DB.WithContext(ctx).Model(&models.MenuItem{}).
		Where("category IN ?", []models.Category{models.CategoryBreakfast, models.CategoryLunch}).
		Distinct("name").
		Order("name asc").
		Pluck("name", &names).Error
	return names, err
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
