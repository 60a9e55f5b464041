// Package supply handles procurement: cooks propose purchases, admins
// approve or reject them, and approval moves stock into the warehouse.
package supply

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"canteen-backend/internal/apperr"
	"canteen-backend/internal/audit"
	"canteen-backend/internal/menu"
	"canteen-backend/internal/models"
	"canteen-backend/internal/notify"

	"gorm.io/gorm"
)

// AutoRequestQuantity is what an auto-generated request asks for.
const AutoRequestQuantity = 50

type Decision string

const (
	Approve Decision = "approve"
	Reject  Decision = "reject"
)

type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db, Now: time.Now}
}

type RequestInput struct {
	ProductName string
	Quantity    int
	Priority    models.SupplyPriority
	TotalCost   float64
}

// CreateRequest files a manual supply request and alerts the admins.
func (s *Service) CreateRequest(ctx context.Context, in RequestInput) (*models.SupplyRequest, error) {
	in.ProductName = strings.TrimSpace(in.ProductName)
	if in.ProductName == "" {
		return nil, fmt.Errorf("product name is required: %w", apperr.ErrInvalidInput)
	}
	if utf8.RuneCountInString(in.ProductName) > menu.MaxNameLen {
		return nil, fmt.Errorf("product name must be at most %d characters: %w", menu.MaxNameLen, apperr.ErrInvalidInput)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", apperr.ErrInvalidInput)
	}
	if in.Priority == "" {
		in.Priority = models.PriorityPlanned
	}
	if !in.Priority.Valid() {
		return nil, fmt.Errorf("priority must be Urgent or Planned: %w", apperr.ErrInvalidInput)
	}
	if in.TotalCost < 0 {
		return nil, fmt.Errorf("total cost cannot be negative: %w", apperr.ErrInvalidInput)
	}

	req := models.SupplyRequest{
		ProductName: in.ProductName,
		Quantity:    in.Quantity,
		Priority:    in.Priority,
		Status:      models.SupplyPending,
		TotalCost:   in.TotalCost,
		CreatedAt:   s.Now(),
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&req).Error; err != nil {
			return err
		}
		if err := notify.Role(tx, models.RoleAdmin, "The cook sent a new purchase request for approval"); err != nil {
			return err
		}
		return audit.WriteLog(ctx, tx, audit.LogOptions{
			EntityType:  "supply_request",
			EntityID:    req.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("request %s x%d", req.ProductName, req.Quantity),
			After:       req,
		})
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// AutoGenerateLowStock files one urgent request per warehouse product below
// the low stock threshold. Auto requests carry a zero cost, so approving them
// adds nothing to the expenses of the financial report.
func (s *Service) AutoGenerateLowStock(ctx context.Context) ([]models.SupplyRequest, error) {
	var created []models.SupplyRequest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var names []string
		if err := tx.Model(&models.MenuItem{}).
			Where("category = ? AND quantity < ?", models.CategoryProduct, models.LowStockThreshold).
			Distinct("name").
			Order("name asc").
			Pluck("name", &names).Error; err != nil {
			return err
		}
		if len(names) == 0 {
			return nil
		}

		now := s.Now()
		created = make([]models.SupplyRequest, 0, len(names))
		for _, name := range names {
			created = append(created, models.SupplyRequest{
				ProductName: name,
				Quantity:    AutoRequestQuantity,
				Priority:    models.PriorityUrgent,
				Status:      models.SupplyPending,
				CreatedAt:   now,
			})
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}
		return notify.Role(tx, models.RoleAdmin,
			fmt.Sprintf("The cook generated %d automatic purchase requests", len(created)))
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Decide approves or rejects a pending request. Only Pending requests can be
// decided; the status flip is guarded so a request is decided exactly once.
func (s *Service) Decide(ctx context.Context, requestID uint, decision Decision) (*models.SupplyRequest, error) {
	target := models.SupplyApproved
	action := models.AuditActionApprove
	switch decision {
	case Approve:
	case Reject:
		target = models.SupplyRejected
		action = models.AuditActionReject
	default:
		return nil, fmt.Errorf("unknown decision %q: %w", decision, apperr.ErrInvalidInput)
	}

	var req models.SupplyRequest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&req, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("supply request %d: %w", requestID, apperr.ErrNotFound)
			}
			return err
		}
		if req.Status != models.SupplyPending {
			return fmt.Errorf("supply request %d is %s: %w", req.ID, req.Status, apperr.ErrInvalidState)
		}

		now := s.Now()
		res := tx.Model(&models.SupplyRequest{}).
			Where("id = ? AND status = ?", req.ID, models.SupplyPending).
			Updates(map[string]any{"status": target, "decided_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("supply request %d already decided: %w", req.ID, apperr.ErrInvalidState)
		}
		req.Status = target
		req.DecidedAt = &now

		var msg string
		if decision == Approve {
			if err := receive(tx, req.ProductName, req.Quantity, now); err != nil {
				return err
			}
			msg = fmt.Sprintf("The admin approved your purchase request for %s (%d). The products were added to the warehouse", req.ProductName, req.Quantity)
		} else {
			msg = fmt.Sprintf("The admin rejected your purchase request for %s", req.ProductName)
		}

		if err := notify.Role(tx, models.RoleCook, msg); err != nil {
			return err
		}
		return audit.WriteLog(ctx, tx, audit.LogOptions{
			EntityType:  "supply_request",
			EntityID:    req.ID,
			Action:      action,
			Description: fmt.Sprintf("%s x%d %s", req.ProductName, req.Quantity, strings.ToLower(string(target))),
			After:       req,
		})
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// receive books quantity units of a product into the warehouse, creating a
// zero priced product the first time it is bought.
func receive(tx *gorm.DB, name string, quantity int, now time.Time) error {
	res := tx.Model(&models.MenuItem{}).
		Where("name = ? AND category = ?", name, models.CategoryProduct).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	y, m, d := now.Date()
	return tx.Create(&models.MenuItem{
		Name:     name,
		Price:    0,
		Category: models.CategoryProduct,
		Quantity: quantity,
		Date:     time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		IsActive: false,
	}).Error
}

// List returns requests newest first, optionally filtered by status.
func (s *Service) List(ctx context.Context, status models.SupplyStatus) ([]models.SupplyRequest, error) {
	q := s.DB.WithContext(ctx).Model(&models.SupplyRequest{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var reqs []models.SupplyRequest
	err := q.Order("created_at desc").Order("id desc").Find(&reqs).Error
	return reqs, err
}
