package models

import "time"

type Category string

const (
	CategoryProduct   Category = "product" // raw warehouse stock, never sold
	CategoryBreakfast Category = "breakfast"
	CategoryLunch     Category = "lunch"
	CategoryService   Category = "service" // synthetic items such as the subscription
)

func (c Category) IsDish() bool {
	return c == CategoryBreakfast || c == CategoryLunch
}

// LowStockThreshold: below this many units cooks get warned.
const LowStockThreshold = 5

// MenuItem covers warehouse products, dishes and service items.
type MenuItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;index:idx_menu_items_name_category" json:"name"`
	Price     float64   `gorm:"not null" json:"price"`
	Category  Category  `gorm:"size:50;not null;index:idx_menu_items_name_category" json:"category"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`
	Date      time.Time `gorm:"type:date" json:"date"`
	Allergens string    `gorm:"size:200" json:"allergens"`
	IsActive  bool      `gorm:"not null;default:false" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Orderable reports whether qty units can be sold right now.
func (m *MenuItem) Orderable(qty int) bool {
	return m.IsActive && qty > 0 && m.Quantity >= qty
}
