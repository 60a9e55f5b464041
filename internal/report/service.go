// Package report derives read-only financial rollups from orders and
// approved supply requests.
package report

import (
	"context"
	"time"

	"canteen-backend/internal/models"

	"gorm.io/gorm"
)

const DefaultDays = 30

type Service struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db, Now: time.Now}
}

type DayRow struct {
	Date     time.Time `json:"-"`
	Day      string    `json:"date"`
	Sales    float64   `json:"sales"`
	Expenses float64   `json:"expenses"`
	Profit   float64   `json:"profit"`
}

// Daily returns one row per day for the last days days, today first.
// Sales sum the item price of every order except subscription-issued ones;
// expenses sum the cost of approved supply requests created that day.
func (s *Service) Daily(ctx context.Context, days int) ([]DayRow, error) {
	if days <= 0 {
		days = DefaultDays
	}
	today := startOfDay(s.Now())
	from := today.AddDate(0, 0, -(days - 1))
	to := today.AddDate(0, 0, 1)

	rows := make([]DayRow, days)
	index := make(map[string]int, days)
	for i := range rows {
		d := today.AddDate(0, 0, -i)
		rows[i] = DayRow{Date: d, Day: d.Format("2006-01-02")}
		index[rows[i].Day] = i
	}

	sales, err := s.sales(ctx, from, to)
	if err != nil {
		return nil, err
	}
	for _, sl := range sales {
		if i, ok := index[sl.Timestamp.In(today.Location()).Format("2006-01-02")]; ok {
			rows[i].Sales += sl.Price
		}
	}

	var reqs []models.SupplyRequest
	if err := s.DB.WithContext(ctx).
		Where("status = ? AND created_at >= ? AND created_at < ?", models.SupplyApproved, from, to).
		Find(&reqs).Error; err != nil {
		return nil, err
	}
	for _, r := range reqs {
		if i, ok := index[r.CreatedAt.In(today.Location()).Format("2006-01-02")]; ok {
			rows[i].Expenses += r.TotalCost
		}
	}

	for i := range rows {
		rows[i].Profit = rows[i].Sales - rows[i].Expenses
	}
	return rows, nil
}

// Revenue sums sales in [from, to).
func (s *Service) Revenue(ctx context.Context, from, to time.Time) (float64, error) {
	sales, err := s.sales(ctx, from, to)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, sl := range sales {
		total += sl.Price
	}
	return total, nil
}

type sale struct {
	Timestamp time.Time
	Price     float64
}

func (s *Service) sales(ctx context.Context, from, to time.Time) ([]sale, error) {
	var out []sale
	err := s.DB.WithContext(ctx).
		Table("orders").
		Select("orders.timestamp AS timestamp, menu_items.price AS price").
		Joins("JOIN menu_items ON menu_items.id = orders.item_id").
		Where("orders.timestamp >= ? AND orders.timestamp < ?", from, to).
		Where("orders.status <> ?", models.OrderIssuedSub).
		Scan(&out).Error
	return out, err
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
