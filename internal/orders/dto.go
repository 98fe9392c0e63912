package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pestilink/pestilink-backend/pkg/db/models"
	"github.com/pestilink/pestilink-backend/pkg/enums"
)

// Actor identifies who is reading or mutating orders.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// PlaceOrderInput captures everything a farmer submits at checkout.
type PlaceOrderInput struct {
	FarmerID        uuid.UUID
	FarmerName      string
	ProductID       uuid.UUID
	Quantity        int
	DeliveryAddress string
	ContactNumber   string
	Notes           string
}

// UpdateStatusInput carries a shop owner's status change for one of their orders.
type UpdateStatusInput struct {
	ShopOwnerID uuid.UUID
	OrderCode   string
	Status      string
}

// OrderDTO is the transport shape for order reads.
type OrderDTO struct {
	ID              uuid.UUID         `json:"id"`
	Code            string            `json:"order_id"`
	FarmerID        uuid.UUID         `json:"farmer_id"`
	FarmerName      string            `json:"farmer_name"`
	ProductID       uuid.UUID         `json:"product_id"`
	ProductName     string            `json:"product_name"`
	ShopOwnerID     uuid.UUID         `json:"shop_owner_id"`
	ShopName        string            `json:"shop_name"`
	Quantity        int               `json:"quantity"`
	UnitPrice       decimal.Decimal   `json:"unit_price"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	DeliveryAddress string            `json:"delivery_address"`
	ContactNumber   string            `json:"contact_number"`
	Notes           string            `json:"order_notes"`
	Status          enums.OrderStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// InsufficientStockDetails is attached to stock rejections so clients can
// show how much remains.
type InsufficientStockDetails struct {
	Available int `json:"available"`
	Requested int `json:"requested"`
}

// FromModel maps the persistence model to the transport shape.
func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	return &OrderDTO{
		ID:              o.ID,
		Code:            o.Code,
		FarmerID:        o.FarmerID,
		FarmerName:      o.FarmerName,
		ProductID:       o.ProductID,
		ProductName:     o.ProductName,
		ShopOwnerID:     o.ShopOwnerID,
		ShopName:        o.ShopName,
		Quantity:        o.Quantity,
		UnitPrice:       o.UnitPrice,
		TotalAmount:     o.TotalAmount,
		DeliveryAddress: o.DeliveryAddress,
		ContactNumber:   o.ContactNumber,
		Notes:           o.Notes,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// FromModels maps a slice of orders to transport shapes.
func FromModels(orders []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		out = append(out, *FromModel(&orders[i]))
	}
	return out
}
