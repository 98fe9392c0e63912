package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a shop owner's pesticide listing. Quantity is the
// mutable stock counter; it is adjusted only through the catalog's guarded
// decrement, never by a plain read-then-write.
type Product struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string          `gorm:"column:name;not null"`
	Specifications string          `gorm:"column:specifications"`
	Chemicals      string          `gorm:"column:chemicals"`
	CropType       string          `gorm:"column:crop_type;not null"`
	Cost           decimal.Decimal `gorm:"column:cost;type:numeric(12,2);not null"`
	Quantity       int             `gorm:"column:quantity;not null;default:0"`
	ShopOwnerID    uuid.UUID       `gorm:"column:shop_owner_id;type:uuid;not null;index"`
	ShopName       string          `gorm:"column:shop_name;not null"`
	ImageFilename  *string         `gorm:"column:image_filename"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
