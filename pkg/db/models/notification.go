package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pestilink/pestilink-backend/pkg/enums"
)

// Notification is an append-only feed entry. Exactly one of ShopOwnerID or
// FarmerID is set for addressed entries; Broadcast entries reach every
// farmer. Payload fields never change after insert; ReadAt is the only
// mutable column and applies to addressed entries only. Broadcast entries
// are a single shared row, so their read state lives in NotificationRead,
// one receipt per recipient.
type Notification struct {
	ID          uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Type        enums.NotificationType `gorm:"column:type;type:text;not null"`
	Title       string                 `gorm:"type:text;not null"`
	Message     string                 `gorm:"type:text;not null"`
	ProductID   *uuid.UUID             `gorm:"column:product_id;type:uuid"`
	OrderID     *uuid.UUID             `gorm:"column:order_id;type:uuid"`
	ShopOwnerID *uuid.UUID             `gorm:"column:shop_owner_id;type:uuid;index"`
	FarmerID    *uuid.UUID             `gorm:"column:farmer_id;type:uuid;index"`
	Broadcast   bool                   `gorm:"column:broadcast;not null;default:false"`
	ReadAt      *time.Time             `gorm:"column:read_at"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
}

// NotificationRead is one recipient's read receipt for a broadcast entry.
type NotificationRead struct {
	NotificationID uuid.UUID `gorm:"column:notification_id;type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	ReadAt         time.Time `gorm:"column:read_at;not null"`
}
