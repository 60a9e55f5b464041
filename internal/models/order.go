package models

import "time"

type OrderStatus string

const (
	OrderPaid             OrderStatus = "Paid"
	OrderPaidSubscription OrderStatus = "Paid (Subscription)"
	OrderIssued           OrderStatus = "Issued"
	OrderIssuedSub        OrderStatus = "Issued (Sub)"
	OrderCompleted        OrderStatus = "Completed"
)

// PendingOrderScope is the where clause selecting orders still awaiting the cook.
const PendingOrderScope = "(status LIKE 'Paid%' OR status LIKE 'Issued%')"

// Order is one purchased unit; a purchase of n portions creates n rows.
type Order struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    uint        `gorm:"index;not null" json:"user_id"`
	User      User        `json:"-"`
	ItemID    uint        `gorm:"index;not null" json:"item_id"`
	Item      MenuItem    `json:"-"`
	Status    OrderStatus `gorm:"size:50;index;not null" json:"status"`
	Timestamp time.Time   `gorm:"index;not null" json:"timestamp"`
}
