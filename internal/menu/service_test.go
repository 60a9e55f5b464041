package menu

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"canteen-backend/internal/apperr"
	"canteen-backend/internal/models"
	"canteen-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *Service {
	db := testutil.NewDB(t)
	return &Service{DB: db, Now: testutil.Clock}
}

func TestCreateDishStartsAsDraft(t *testing.T) {
	svc := newService(t)

	item, merged, err := svc.CreateDish(context.Background(), DishInput{
		Name: " Borscht ", Price: 150, Category: models.CategoryLunch, Quantity: 10, Allergens: "celery",
	})
	require.NoError(t, err)

	assert.False(t, merged)
	assert.Equal(t, "Borscht", item.Name)
	assert.False(t, item.IsActive)
	assert.Equal(t, 10, item.Quantity)
	assert.Equal(t, "2026-03-10", item.Date.Format("2006-01-02"))
	assert.EqualValues(t, 1, testutil.Count[models.AuditLog](t, svc.DB, "entity_type = ?", "menu_item"))
}

func TestCreateDishMergesSameNameAndCategory(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	first, _, err := svc.CreateDish(ctx, DishInput{Name: "Porridge", Price: 60, Category: models.CategoryBreakfast, Quantity: 4})
	require.NoError(t, err)
	_, err = svc.PublishDish(ctx, first.ID)
	require.NoError(t, err)

	d := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	second, merged, err := svc.CreateDish(ctx, DishInput{
		Name: "Porridge", Price: 70, Category: models.CategoryBreakfast, Quantity: 6, Date: d, Allergens: "milk",
	})
	require.NoError(t, err)

	assert.True(t, merged)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 10, second.Quantity)
	assert.Equal(t, 70.0, second.Price)
	assert.Equal(t, "milk", second.Allergens)
	assert.Equal(t, "2026-03-12", second.Date.Format("2006-01-02"))
	assert.True(t, second.IsActive, "restock keeps an active dish published")

	// same name, other category is a different dish
	other, merged, err := svc.CreateDish(ctx, DishInput{Name: "Porridge", Price: 60, Category: models.CategoryLunch, Quantity: 1})
	require.NoError(t, err)
	assert.False(t, merged)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestCreateDishRestockKeepsDraftUnpublished(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, _, err := svc.CreateDish(ctx, DishInput{Name: "Soup", Price: 90, Category: models.CategoryLunch, Quantity: 2})
	require.NoError(t, err)
	item, merged, err := svc.CreateDish(ctx, DishInput{Name: "Soup", Price: 90, Category: models.CategoryLunch, Quantity: 3})
	require.NoError(t, err)

	assert.True(t, merged)
	assert.False(t, item.IsActive)
	assert.Equal(t, 5, item.Quantity)
}

func TestCreateDishValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for _, in := range []DishInput{
		{Name: "", Price: 1, Category: models.CategoryLunch},
		{Name: "Flour", Price: 1, Category: models.CategoryProduct},
		{Name: "Tea", Price: -1, Category: models.CategoryBreakfast},
		{Name: "Tea", Price: 1, Category: models.CategoryBreakfast, Quantity: -3},
		{Name: strings.Repeat("щ", MaxNameLen+1), Price: 1, Category: models.CategoryLunch},
		{Name: "Tea", Price: 1, Category: models.CategoryBreakfast, Allergens: strings.Repeat("x", 201)},
	} {
		_, _, err := svc.CreateDish(ctx, in)
		assert.ErrorIs(t, err, apperr.ErrInvalidInput, "%+v", in)
	}

	// limits count characters, not bytes
	item, _, err := svc.CreateDish(ctx, DishInput{
		Name: strings.Repeat("щ", MaxNameLen), Price: 1, Category: models.CategoryLunch,
	})
	require.NoError(t, err)
	assert.Equal(t, MaxNameLen, utf8.RuneCountInString(item.Name))
}

func TestPublishDishNotifiesStudents(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	s1 := testutil.CreateUser(t, svc.DB, "ann", models.RoleStudent, 0)
	testutil.CreateUser(t, svc.DB, "bob", models.RoleStudent, 0)
	testutil.CreateUser(t, svc.DB, "chef", models.RoleCook, 0)

	item, _, err := svc.CreateDish(ctx, DishInput{Name: "Cutlet", Price: 120, Category: models.CategoryLunch, Quantity: 8})
	require.NoError(t, err)

	published, err := svc.PublishDish(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, published.IsActive)
	assert.True(t, testutil.Reload[models.MenuItem](t, svc.DB, item.ID).IsActive)

	assert.EqualValues(t, 2, testutil.Count[models.Notification](t, svc.DB, nil))
	assert.EqualValues(t, 1, testutil.Count[models.Notification](t, svc.DB, "user_id = ? AND message LIKE ?", s1.ID, "%Cutlet%"))

	_, err = svc.PublishDish(ctx, 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPublishRejectsWarehouseProducts(t *testing.T) {
	svc := newService(t)
	flour := testutil.CreateItem(t, svc.DB, models.MenuItem{Name: "Flour", Category: models.CategoryProduct, Quantity: 20})

	_, err := svc.PublishDish(context.Background(), flour.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
	assert.False(t, testutil.Reload[models.MenuItem](t, svc.DB, flour.ID).IsActive)
}

func TestUpdateStockWarnsCooksWhenLow(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	testutil.CreateUser(t, svc.DB, "chef", models.RoleCook, 0)
	item := testutil.CreateItem(t, svc.DB, models.MenuItem{Name: "Salad", Price: 80, Category: models.CategoryLunch, Quantity: 20, IsActive: true})

	updated, err := svc.UpdateStock(ctx, item.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, updated.Quantity)
	assert.EqualValues(t, 0, testutil.Count[models.Notification](t, svc.DB, nil))

	_, err = svc.UpdateStock(ctx, item.ID, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 1, testutil.Count[models.Notification](t, svc.DB, "message = ?", LowStockMessage("Salad", 3)))

	_, err = svc.UpdateStock(ctx, item.ID, -1)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	_, err = svc.UpdateStock(ctx, 404, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListings(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	testutil.CreateItem(t, svc.DB, models.MenuItem{Name: "Borscht", Category: models.CategoryLunch, Quantity: 3, IsActive: true})
	testutil.CreateItem(t, svc.DB, models.MenuItem{Name: "Pancakes", Category: models.CategoryBreakfast, Quantity: 9, IsActive: true})
	testutil.CreateItem(t, svc.DB, models.MenuItem{Name: "Sold out", Category: models.CategoryLunch, Quantity: 0, IsActive: true})
	testutil.CreateItem(t, svc.DB, models.MenuItem{Name: "Draft", Category: models.CategoryLunch, Quantity: 5})
	testutil.CreateItem(t, svc.DB, models.MenuItem{Name: "Flour", Category: models.CategoryProduct, Quantity: 2})
	testutil.CreateItem(t, svc.DB, models.MenuItem{Name: "Subscription", Category: models.CategoryService, Quantity: 999999})

	menu, err := svc.ListMenu(ctx)
	require.NoError(t, err)
	require.Len(t, menu, 2)
	assert.Equal(t, "Pancakes", menu[0].Name)

	warehouse, err := svc.ListWarehouse(ctx)
	require.NoError(t, err)
	require.Len(t, warehouse, 1)
	assert.Equal(t, "Flour", warehouse[0].Name)

	active, err := svc.ListDishes(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, "Pancakes", active[0].Name)

	drafts, err := svc.ListDishes(ctx, false)
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	names, err := svc.DishNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Borscht", "Draft", "Pancakes", "Sold out"}, names)
}
