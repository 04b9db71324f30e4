package model

import "time"

// Alert states.
const (
	AlertUnread = "unread"
	AlertRead   = "read"
)

// Alert is a message shown on the alerts page until acknowledged.
type Alert struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Message   string    `json:"message"`
	Status    string    `gorm:"not null;default:'unread';index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
