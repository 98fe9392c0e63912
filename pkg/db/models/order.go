package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pestilink/pestilink-backend/pkg/enums"
)

// Order captures a farmer's purchase. UnitPrice and TotalAmount snapshot
// the product cost at placement time and are never rewritten; Status is the
// only field that changes after creation.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code            string            `gorm:"column:code;not null;uniqueIndex"`
	FarmerID        uuid.UUID         `gorm:"column:farmer_id;type:uuid;not null;index"`
	FarmerName      string            `gorm:"column:farmer_name;not null"`
	ProductID       uuid.UUID         `gorm:"column:product_id;type:uuid;not null"`
	ProductName     string            `gorm:"column:product_name;not null"`
	ShopOwnerID     uuid.UUID         `gorm:"column:shop_owner_id;type:uuid;not null;index"`
	ShopName        string            `gorm:"column:shop_name;not null"`
	Quantity        int               `gorm:"column:quantity;not null"`
	UnitPrice       decimal.Decimal   `gorm:"column:unit_price;type:numeric(12,2);not null"`
	TotalAmount     decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	DeliveryAddress string            `gorm:"column:delivery_address;not null"`
	ContactNumber   string            `gorm:"column:contact_number;not null"`
	Notes           string            `gorm:"column:notes"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
