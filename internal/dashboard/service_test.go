package dashboard

import (
	"context"
	"testing"
	"time"

	"canteen-backend/internal/menu"
	"canteen-backend/internal/models"
	"canteen-backend/internal/ordering"
	"canteen-backend/internal/report"
	"canteen-backend/internal/review"
	"canteen-backend/internal/supply"
	"canteen-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(db *gorm.DB) *Service {
	return &Service{
		DB:       db,
		Now:      testutil.Clock,
		Menu:     &menu.Service{DB: db, Now: testutil.Clock},
		Ordering: &ordering.Service{DB: db, Now: testutil.Clock},
		Supply:   &supply.Service{DB: db, Now: testutil.Clock},
		Report:   &report.Service{DB: db, Now: testutil.Clock},
		Reviews:  &review.Service{DB: db, Now: testutil.Clock},
	}
}

func TestStudentViewRemindsOnceBeforeExpiry(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(db)
	ctx := context.Background()
	ann := testutil.CreateUser(t, db, "ann", models.RoleStudent, 500)
	end := testutil.Now.Add(36 * time.Hour)
	require.NoError(t, db.Model(ann).Update("subscription_end", end).Error)
	item := testutil.CreateItem(t, db, models.MenuItem{Name: "Borscht", Price: 150, Category: models.CategoryLunch, Quantity: 10, IsActive: true})

	_, err := svc.Ordering.PlaceOrder(ctx, ann.ID, item.ID, 2)
	require.NoError(t, err)

	view, err := svc.Student(ctx, ann.ID)
	require.NoError(t, err)
	assert.True(t, view.IsSubscribed)
	assert.Equal(t, []uint{item.ID}, view.OrderedItemIDs)
	require.Len(t, view.Menu, 1)

	_, err = svc.Student(ctx, ann.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, testutil.Count[models.Notification](t, db, "user_id = ? AND message = ?", ann.ID, ExpiryReminder(1)))
}

func TestStudentViewNoReminderWhenFarFromExpiry(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(db)
	ann := testutil.CreateUser(t, db, "ann", models.RoleStudent, 0)
	require.NoError(t, db.Model(ann).Update("subscription_end", testutil.Now.Add(10*24*time.Hour)).Error)

	view, err := svc.Student(context.Background(), ann.ID)
	require.NoError(t, err)
	assert.True(t, view.IsSubscribed)
	assert.Empty(t, view.OrderedItemIDs)
	assert.EqualValues(t, 0, testutil.Count[models.Notification](t, db, nil))
}

func TestCookView(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(db)
	testutil.CreateItem(t, db, models.MenuItem{Name: "Flour", Category: models.CategoryProduct, Quantity: 2})
	testutil.CreateItem(t, db, models.MenuItem{Name: "Soup", Category: models.CategoryLunch, Quantity: 2})
	testutil.CreateItem(t, db, models.MenuItem{Name: "Tea", Category: models.CategoryBreakfast, Quantity: 2, IsActive: true})
	_, err := svc.Supply.AutoGenerateLowStock(context.Background())
	require.NoError(t, err)

	view, err := svc.Cook(context.Background())
	require.NoError(t, err)
	assert.Len(t, view.Products, 1)
	assert.Len(t, view.DraftDishes, 1)
	assert.Len(t, view.ActiveDishes, 1)
	assert.Len(t, view.Requests, 1)
	assert.Empty(t, view.Orders)
	assert.Equal(t, []string{"Soup", "Tea"}, view.DishNames)
}

func TestAdminView(t *testing.T) {
	db := testutil.NewDB(t)
	svc := newService(db)
	ctx := context.Background()
	ann := testutil.CreateUser(t, db, "ann", models.RoleStudent, 1000)
	bob := testutil.CreateUser(t, db, "bob", models.RoleStudent, 1000)
	testutil.CreateUser(t, db, "cat", models.RoleStudent, 0)
	item := testutil.CreateItem(t, db, models.MenuItem{Name: "Borscht", Price: 150, Category: models.CategoryLunch, Quantity: 10, IsActive: true})

	_, err := svc.Ordering.PlaceOrder(ctx, ann.ID, item.ID, 2)
	require.NoError(t, err)
	_, err = svc.Ordering.PlaceOrder(ctx, bob.ID, item.ID, 1)
	require.NoError(t, err)
	_, err = svc.Reviews.Create(ctx, ann.ID, item.ID, 5, "great")
	require.NoError(t, err)

	view, err := svc.Admin(ctx, review.SortNewest)
	require.NoError(t, err)

	assert.Equal(t, 450.0, view.Stats.RevenueToday)
	assert.Equal(t, 450.0, view.Stats.RevenueMonth)
	assert.EqualValues(t, 3, view.Stats.PortionsSold)
	assert.EqualValues(t, 2, view.Stats.UniqueStudents)
	assert.EqualValues(t, 3, view.Stats.TotalStudents)
	assert.Len(t, view.Dishes, 1)
	assert.Len(t, view.Reviews, 1)

	require.Len(t, view.Chart, 7)
	assert.Equal(t, "10.03", view.Chart[6].Label)
	assert.Equal(t, 450.0, view.Chart[6].Revenue)
	assert.Equal(t, "04.03", view.Chart[0].Label)
}
