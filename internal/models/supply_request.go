package models

import "time"

type SupplyStatus string

const (
	SupplyPending  SupplyStatus = "Pending"
	SupplyApproved SupplyStatus = "Approved"
	SupplyRejected SupplyStatus = "Rejected"
)

type SupplyPriority string

const (
	PriorityUrgent  SupplyPriority = "Urgent"
	PriorityPlanned SupplyPriority = "Planned"
)

func (p SupplyPriority) Valid() bool {
	return p == PriorityUrgent || p == PriorityPlanned
}

// SupplyRequest: cook's purchase proposal, decided once by an admin.
type SupplyRequest struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ProductName string         `gorm:"size:100;not null" json:"product_name"`
	Quantity    int            `gorm:"not null" json:"quantity"`
	Priority    SupplyPriority `gorm:"size:20;not null" json:"priority"`
	Status      SupplyStatus   `gorm:"size:20;index;not null;default:Pending" json:"status"`
	TotalCost   float64        `gorm:"not null;default:0" json:"total_cost"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	DecidedAt   *time.Time     `json:"decided_at"`
}
