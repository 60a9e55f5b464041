package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"canteen-backend/internal/models"
	"canteen-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func seed(t *testing.T, db *gorm.DB) {
	ann := testutil.CreateUser(t, db, "ann", models.RoleStudent, 0)
	borscht := testutil.CreateItem(t, db, models.MenuItem{Name: "Borscht", Price: 150, Category: models.CategoryLunch, IsActive: true})
	sub := testutil.CreateItem(t, db, models.MenuItem{Name: "Subscription (30 days)", Price: 1499, Category: models.CategoryService})

	today := testutil.Now
	yesterday := testutil.Now.AddDate(0, 0, -1)
	orders := []models.Order{
		{UserID: ann.ID, ItemID: borscht.ID, Status: models.OrderPaid, Timestamp: today},
		{UserID: ann.ID, ItemID: borscht.ID, Status: models.OrderCompleted, Timestamp: today},
		{UserID: ann.ID, ItemID: borscht.ID, Status: models.OrderIssuedSub, Timestamp: today},
		{UserID: ann.ID, ItemID: sub.ID, Status: models.OrderPaidSubscription, Timestamp: yesterday},
		{UserID: ann.ID, ItemID: borscht.ID, Status: models.OrderPaid, Timestamp: testutil.Now.AddDate(0, 0, -40)},
	}
	require.NoError(t, db.Create(&orders).Error)

	reqs := []models.SupplyRequest{
		{ProductName: "Beets", Quantity: 10, Priority: models.PriorityPlanned, Status: models.SupplyApproved, TotalCost: 100, CreatedAt: today},
		{ProductName: "Oil", Quantity: 10, Priority: models.PriorityPlanned, Status: models.SupplyPending, TotalCost: 999, CreatedAt: today},
		{ProductName: "Salt", Quantity: 10, Priority: models.PriorityPlanned, Status: models.SupplyRejected, TotalCost: 999, CreatedAt: yesterday},
		{ProductName: "Flour", Quantity: 50, Priority: models.PriorityUrgent, Status: models.SupplyApproved, CreatedAt: yesterday},
	}
	require.NoError(t, db.Create(&reqs).Error)
}

func TestDaily(t *testing.T) {
	db := testutil.NewDB(t)
	seed(t, db)
	svc := &Service{DB: db, Now: testutil.Clock}

	rows, err := svc.Daily(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, rows, 7)

	assert.Equal(t, "2026-03-10", rows[0].Day)
	assert.Equal(t, 300.0, rows[0].Sales, "subscription-issued portions are not sales")
	assert.Equal(t, 100.0, rows[0].Expenses)
	assert.Equal(t, 200.0, rows[0].Profit)

	assert.Equal(t, "2026-03-09", rows[1].Day)
	assert.Equal(t, 1499.0, rows[1].Sales)
	// approved auto request carries no cost
	assert.Zero(t, rows[1].Expenses)

	for _, r := range rows[2:] {
		assert.Zero(t, r.Sales)
		assert.Zero(t, r.Expenses)
	}
}

func TestRevenue(t *testing.T) {
	db := testutil.NewDB(t)
	seed(t, db)
	svc := &Service{DB: db, Now: testutil.Clock}

	total, err := svc.Revenue(context.Background(), startOfDay(testutil.Now).AddDate(0, 0, -1), testutil.Now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1799.0, total)
}

func TestExports(t *testing.T) {
	rows := []DayRow{
		{Day: "2026-03-10", Sales: 300, Expenses: 100, Profit: 200},
		{Day: "2026-03-09", Sales: 0, Expenses: 50.5, Profit: -50.5},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"Date,Sales,Expenses,Profit",
		"2026-03-10,300.00,100.00,200.00",
		"2026-03-09,0.00,50.50,-50.50",
	}, lines)

	data, err := XLSX(rows)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, header, got[0])
	assert.Equal(t, "2026-03-10", got[1][0])
}
