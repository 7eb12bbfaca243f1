package models

import "time"

// RecipientGroup selects the audience of a broadcast notification.
type RecipientGroup string

const (
	RecipientAll    RecipientGroup = "all"
	RecipientUsers  RecipientGroup = "users"
	RecipientAdmins RecipientGroup = "admins"
)

// Notification is a per-user materialized copy of a broadcast message.
// Fan-out happens at send time, one row per target user.
type Notification struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	UserID  uint   `json:"user_id" gorm:"not null;index"`
	Subject string `json:"subject" gorm:"not null;size:255"`
	Message string `json:"message" gorm:"not null;type:text"`
	IsRead  bool   `json:"is_read" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

func (Notification) TableName() string {
	return "notifications"
}
