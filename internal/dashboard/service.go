// Package dashboard assembles the per-role landing views from the
// workflow services.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"canteen-backend/internal/apperr"
	"canteen-backend/internal/menu"
	"canteen-backend/internal/models"
	"canteen-backend/internal/notify"
	"canteen-backend/internal/ordering"
	"canteen-backend/internal/report"
	"canteen-backend/internal/review"
	"canteen-backend/internal/supply"

	"gorm.io/gorm"
)

const (
	chartDays = 7
	// students get a reminder this many days (or fewer) before expiry
	reminderDays = 2
)

type Service struct {
	DB       *gorm.DB
	Now      func() time.Time
	Menu     *menu.Service
	Ordering *ordering.Service
	Supply   *supply.Service
	Report   *report.Service
	Reviews  *review.Service
}

type StudentView struct {
	Menu            []models.MenuItem `json:"menu"`
	Balance         float64           `json:"balance"`
	Allergies       string            `json:"allergies"`
	IsSubscribed    bool              `json:"is_subscribed"`
	SubscriptionEnd *time.Time        `json:"subscription_end"`
	OrderedItemIDs  []uint            `json:"ordered_item_ids"`
}

// Student builds the student view and raises the subscription expiry
// reminder once per distinct message.
func (s *Service) Student(ctx context.Context, userID uint) (*StudentView, error) {
	now := s.Now()
	db := s.DB.WithContext(ctx)

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", userID, apperr.ErrNotFound)
		}
		return nil, err
	}

	items, err := s.Menu.ListMenu(ctx)
	if err != nil {
		return nil, err
	}

	view := &StudentView{
		Menu:            items,
		Balance:         user.Balance,
		Allergies:       user.Allergies,
		IsSubscribed:    user.HasSubscription(now),
		SubscriptionEnd: user.SubscriptionEnd,
		OrderedItemIDs:  []uint{},
	}

	if view.IsSubscribed {
		daysLeft := int(user.SubscriptionEnd.Sub(now).Hours() / 24)
		if daysLeft <= reminderDays {
			err := db.Transaction(func(tx *gorm.DB) error {
				_, err := notify.UserOnce(tx, user.ID, ExpiryReminder(daysLeft))
				return err
			})
			if err != nil {
				return nil, err
			}
		}
	}

	dayStart := startOfDay(now)
	if err := db.Model(&models.Order{}).
		Where("user_id = ? AND timestamp >= ? AND timestamp < ?", user.ID, dayStart, dayStart.AddDate(0, 0, 1)).
		Distinct("item_id").
		Pluck("item_id", &view.OrderedItemIDs).Error; err != nil {
		return nil, err
	}
	return view, nil
}

func ExpiryReminder(daysLeft int) string {
	return fmt.Sprintf("Your subscription expires in %d days. Don't forget to renew it", daysLeft)
}

type CookView struct {
	Products     []models.MenuItem       `json:"products"`
	DraftDishes  []models.MenuItem       `json:"draft_dishes"`
	ActiveDishes []models.MenuItem       `json:"active_dishes"`
	Orders       []ordering.PendingOrder `json:"orders"`
	Requests     []models.SupplyRequest  `json:"requests"`
	DishNames    []string                `json:"dish_names"`
}

func (s *Service) Cook(ctx context.Context) (*CookView, error) {
	var (
		view CookView
		err  error
	)
	if view.Products, err = s.Menu.ListWarehouse(ctx); err != nil {
		return nil, err
	}
	if view.DraftDishes, err = s.Menu.ListDishes(ctx, false); err != nil {
		return nil, err
	}
	if view.ActiveDishes, err = s.Menu.ListDishes(ctx, true); err != nil {
		return nil, err
	}
	if view.Orders, err = s.Ordering.ListPending(ctx); err != nil {
		return nil, err
	}
	if view.Requests, err = s.Supply.List(ctx, ""); err != nil {
		return nil, err
	}
	if view.DishNames, err = s.Menu.DishNames(ctx); err != nil {
		return nil, err
	}
	return &view, nil
}

type AdminStats struct {
	RevenueToday   float64 `json:"revenue_today"`
	RevenueMonth   float64 `json:"revenue_month"`
	PortionsSold   int64   `json:"portions_sold"`
	UniqueStudents int64   `json:"unique_students"`
	TotalStudents  int64   `json:"total_students"`
}

type ChartPoint struct {
	Label   string  `json:"label"`
	Revenue float64 `json:"revenue"`
}

type AdminView struct {
	Stats           AdminStats             `json:"stats"`
	Products        []models.MenuItem      `json:"products"`
	Dishes          []models.MenuItem      `json:"dishes"`
	PendingRequests []models.SupplyRequest `json:"requests"`
	Reviews         []review.Entry         `json:"reviews"`
	Chart           []ChartPoint           `json:"chart"`
	Sort            review.Sort            `json:"sort_by"`
}

func (s *Service) Admin(ctx context.Context, sort review.Sort) (*AdminView, error) {
	now := s.Now()
	db := s.DB.WithContext(ctx)
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	view := AdminView{Sort: sort}
	var err error

	if view.Stats.RevenueToday, err = s.Report.Revenue(ctx, today, tomorrow); err != nil {
		return nil, err
	}
	if view.Stats.RevenueMonth, err = s.Report.Revenue(ctx, monthStart, tomorrow); err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).
		Where("timestamp >= ? AND timestamp < ?", today, tomorrow).
		Count(&view.Stats.PortionsSold).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).
		Where("timestamp >= ? AND timestamp < ?", today, tomorrow).
		Distinct("user_id").
		Count(&view.Stats.UniqueStudents).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).
		Where("role = ?", models.RoleStudent).
		Count(&view.Stats.TotalStudents).Error; err != nil {
		return nil, err
	}

	if view.Products, err = s.Menu.ListWarehouse(ctx); err != nil {
		return nil, err
	}
	if err := db.Where("category IN ?", []models.Category{models.CategoryBreakfast, models.CategoryLunch}).
		Order("name asc").Find(&view.Dishes).Error; err != nil {
		return nil, err
	}
	if view.PendingRequests, err = s.Supply.List(ctx, models.SupplyPending); err != nil {
		return nil, err
	}
	if view.Reviews, err = s.Reviews.List(ctx, sort); err != nil {
		return nil, err
	}

	days, err := s.Report.Daily(ctx, chartDays)
	if err != nil {
		return nil, err
	}
	// oldest first for the chart
	view.Chart = make([]ChartPoint, 0, len(days))
	for i := len(days) - 1; i >= 0; i-- {
		view.Chart = append(view.Chart, ChartPoint{
			Label:   days[i].Date.Format("02.01"),
			Revenue: days[i].Sales,
		})
	}
	return &view, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
