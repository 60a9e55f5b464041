// Package ordering runs the student side of the canteen: buying dishes,
// buying subscriptions, and the cook's fulfilment queue.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"canteen-backend/internal/apperr"
	"canteen-backend/internal/audit"
	"canteen-backend/internal/menu"
	"canteen-backend/internal/models"
	"canteen-backend/internal/notify"

	"gorm.io/gorm"
)

const (
	SubscriptionPrice    = 1499.0
	SubscriptionDuration = 30 * 24 * time.Hour
	SubscriptionItemName = "Subscription (30 days)"

	// service item stock is never decremented, the number only has to look unbounded
	subscriptionItemStock = 999999
)

type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db, Now: time.Now}
}

type Confirmation struct {
	ItemID    uint               `json:"item_id"`
	ItemName  string             `json:"item_name"`
	Quantity  int                `json:"quantity"`
	Status    models.OrderStatus `json:"status"`
	Total     float64            `json:"total"` // amount charged, 0 under a subscription
	Balance   float64            `json:"balance"`
	OrderIDs  []uint             `json:"order_ids"`
	Timestamp time.Time          `json:"timestamp"`
}

// PlaceOrder buys quantity portions of a published dish for a student.
// Stock and balance are taken with conditional updates so the preconditions
// hold at commit time; any failure leaves every row untouched.
func (s *Service) PlaceOrder(ctx context.Context, userID, itemID uint, quantity int) (*Confirmation, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", apperr.ErrInvalidInput)
	}

	now := s.Now()
	var conf *Confirmation
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return notFound(err, "user", userID)
		}
		var item models.MenuItem
		if err := tx.First(&item, itemID).Error; err != nil {
			return notFound(err, "menu item", itemID)
		}

		if !item.Orderable(quantity) {
			return fmt.Errorf("%s: %d requested, %d in stock: %w", item.Name, quantity, item.Quantity, apperr.ErrUnavailable)
		}

		status := models.OrderPaid
		total := 0.0
		if user.HasSubscription(now) {
			status = models.OrderIssuedSub
		} else {
			total = item.Price * float64(quantity)
			if user.Balance < total {
				return fmt.Errorf("cost %.2f, balance %.2f: %w", total, user.Balance, apperr.ErrInsufficientFunds)
			}
			if err := debit(tx, user.ID, total); err != nil {
				return err
			}
			user.Balance -= total
		}

		res := tx.Model(&models.MenuItem{}).
			Where("id = ? AND is_active = ? AND quantity >= ?", item.ID, true, quantity).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%s sold out meanwhile: %w", item.Name, apperr.ErrUnavailable)
		}
		// concurrent orders may have taken stock since the read above
		var left int
		if err := tx.Model(&models.MenuItem{}).Where("id = ?", item.ID).
			Select("quantity").Scan(&left).Error; err != nil {
			return err
		}

		orders := make([]models.Order, quantity)
		for i := range orders {
			orders[i] = models.Order{UserID: user.ID, ItemID: item.ID, Status: status, Timestamp: now}
		}
		if err := tx.Create(&orders).Error; err != nil {
			return err
		}

		if err := notify.Role(tx, models.RoleCook,
			fmt.Sprintf("New order: %s (%d pcs.)", item.Name, quantity)); err != nil {
			return err
		}
		if left < models.LowStockThreshold {
			if err := notify.Role(tx, models.RoleCook, menu.LowStockMessage(item.Name, left)); err != nil {
				return err
			}
		}

		conf = &Confirmation{
			ItemID:    item.ID,
			ItemName:  item.Name,
			Quantity:  quantity,
			Status:    status,
			Total:     total,
			Balance:   user.Balance,
			OrderIDs:  make([]uint, 0, len(orders)),
			Timestamp: now,
		}
		for _, o := range orders {
			conf.OrderIDs = append(conf.OrderIDs, o.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conf, nil
}

type SubscriptionConfirmation struct {
	OrderID         uint      `json:"order_id"`
	Price           float64   `json:"price"`
	Balance         float64   `json:"balance"`
	SubscriptionEnd time.Time `json:"subscription_end"`
}

// PurchaseSubscription charges the fixed price and sets the expiry to
// now + 30 days, replacing any running subscription.
func (s *Service) PurchaseSubscription(ctx context.Context, userID uint) (*SubscriptionConfirmation, error) {
	now := s.Now()
	var conf *SubscriptionConfirmation
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return notFound(err, "user", userID)
		}
		if user.Balance < SubscriptionPrice {
			return fmt.Errorf("subscription costs %.0f, balance %.2f: %w", SubscriptionPrice, user.Balance, apperr.ErrInsufficientFunds)
		}
		if err := debit(tx, user.ID, SubscriptionPrice); err != nil {
			return err
		}

		end := now.Add(SubscriptionDuration)
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
			UpdateColumn("subscription_end", end).Error; err != nil {
			return err
		}

		item, err := subscriptionItem(tx)
		if err != nil {
			return err
		}
		order := models.Order{UserID: user.ID, ItemID: item.ID, Status: models.OrderPaidSubscription, Timestamp: now}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		conf = &SubscriptionConfirmation{
			OrderID:         order.ID,
			Price:           SubscriptionPrice,
			Balance:         user.Balance - SubscriptionPrice,
			SubscriptionEnd: end,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conf, nil
}

// subscriptionItem returns the hidden service item subscriptions are booked
// against, creating it on first use.
func subscriptionItem(tx *gorm.DB) (*models.MenuItem, error) {
	item := models.MenuItem{
		Name:     SubscriptionItemName,
		Category: models.CategoryService,
	}
	err := tx.Where(&item).
		Attrs(models.MenuItem{Price: SubscriptionPrice, Quantity: subscriptionItemStock, IsActive: false}).
		FirstOrCreate(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CompleteOrder marks one portion as handed out and tells its owner.
func (s *Service) CompleteOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Item").First(&order, orderID).Error; err != nil {
			return notFound(err, "order", orderID)
		}

		res := tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Where(models.PendingOrderScope).
			Update("status", models.OrderCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order %d is %s: %w", order.ID, order.Status, apperr.ErrInvalidState)
		}
		order.Status = models.OrderCompleted

		if err := notify.User(tx, order.UserID,
			fmt.Sprintf("Your order '%s' is ready for pickup!", order.Item.Name)); err != nil {
			return err
		}
		return audit.WriteLog(ctx, tx, audit.LogOptions{
			EntityType:  "order",
			EntityID:    order.ID,
			Action:      models.AuditActionUpdate,
			Description: "order completed",
		})
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CompleteAllPending closes the whole queue. Owners are not notified,
// unlike CompleteOrder.
func (s *Service) CompleteAllPending(ctx context.Context) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where(models.PendingOrderScope).
			Update("status", models.OrderCompleted)
		if res.Error != nil {
			return res.Error
		}
		n = res.RowsAffected
		if n == 0 {
			return nil
		}
		return audit.WriteLog(ctx, tx, audit.LogOptions{
			EntityType:  "order",
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("%d pending orders completed", n),
		})
	})
	return n, err
}

type PendingOrder struct {
	ID        uint               `json:"id"`
	Username  string             `json:"username"`
	ItemName  string             `json:"item_name"`
	Status    models.OrderStatus `json:"status"`
	Timestamp time.Time          `json:"timestamp"`
}

// ListPending is the cook's queue, oldest first.
func (s *Service) ListPending(ctx context.Context) ([]PendingOrder, error) {
	var orders []models.Order
	if err := s.DB.WithContext(ctx).
		Preload("User").Preload("Item").
		Where(models.PendingOrderScope).
		Order("timestamp asc").Order("id asc").
		Find(&orders).Error; err != nil {
		return nil, err
	}

	res := make([]PendingOrder, 0, len(orders))
	for _, o := range orders {
		res = append(res, PendingOrder{
			ID:        o.ID,
			Username:  o.User.Username,
			ItemName:  o.Item.Name,
			Status:    o.Status,
			Timestamp: o.Timestamp,
		})
	}
	return res, nil
}

// debit takes amount from the user only if the balance still covers it.
func debit(tx *gorm.DB, userID uint, amount float64) error {
	res := tx.Model(&models.User{}).
		Where("id = ? AND balance >= ?", userID, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("balance changed meanwhile: %w", apperr.ErrInsufficientFunds)
	}
	return nil
}

func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, apperr.ErrNotFound)
	}
	return err
}
