package models

import "time"

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleCook    UserRole = "cook"
	RoleAdmin   UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleCook, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Username        string     `gorm:"size:100;uniqueIndex;not null" json:"username"`
	PasswordHash    string     `gorm:"size:255;not null" json:"-"`
	Role            UserRole   `gorm:"size:20;index;not null" json:"role"`
	Allergies       string     `gorm:"size:200" json:"allergies"`
	SubscriptionEnd *time.Time `json:"subscription_end"`
	Balance         float64    `gorm:"not null;default:0" json:"balance"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// HasSubscription reports whether the subscription is still running at now.
func (u *User) HasSubscription(now time.Time) bool {
	return u.SubscriptionEnd != nil && u.SubscriptionEnd.After(now)
}
