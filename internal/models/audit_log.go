package models

import "time"

type AuditAction string

const (
	AuditActionCreate  AuditAction = "create"
	AuditActionUpdate  AuditAction = "update"
	AuditActionPublish AuditAction = "publish"
	AuditActionApprove AuditAction = "approve"
	AuditActionReject  AuditAction = "reject"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID   uint     `gorm:"index" json:"user_id"`
	UserRole UserRole `gorm:"size:20" json:"user_role"`

	// e.g. "menu_item", "supply_request", "order"
	EntityType string `gorm:"size:50;index" json:"entity_type"`
	EntityID   uint   `gorm:"index" json:"entity_id"`

	Action      AuditAction `gorm:"size:20" json:"action"`
	Description string      `gorm:"size:255" json:"description"`

	// before/after snapshots as JSON text
	BeforeData string `gorm:"type:text" json:"before_data"`
	AfterData  string `gorm:"type:text" json:"after_data"`
}
