package models

import "time"

type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	User      User      `json:"-"`
	ItemID    uint      `gorm:"index;not null" json:"item_id"`
	Item      MenuItem  `json:"-"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
}
