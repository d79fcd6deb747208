package model

import "github.com/google/uuid"

type NotificationStatus string

const (
	NotificationUnread NotificationStatus = "unread"
	NotificationRead   NotificationStatus = "read"
)

const NotificationTypeStockWarning = "stock_warning"

type Notification struct {
	BaseModel
	RecipientID uuid.UUID          `gorm:"type:uuid;not null;index" json:"recipient_id"`
	SenderID    *uuid.UUID         `gorm:"type:uuid" json:"sender_id,omitempty"`
	Type        string             `gorm:"type:varchar(50);not null" json:"type"`
	Title       string             `gorm:"type:varchar(255);not null" json:"title"`
	Message     string             `gorm:"type:text;not null" json:"message"`
	Status      NotificationStatus `gorm:"type:varchar(20);default:'unread'" json:"status"`
}
