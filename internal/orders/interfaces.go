package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pestilink/pestilink-backend/pkg/db/models"
	"github.com/pestilink/pestilink-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByCode(ctx context.Context, code string) (*models.Order, error)
	ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]models.Order, error)
	ListByShopOwner(ctx context.Context, shopOwnerID uuid.UUID) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, now time.Time) error
}

// ProductGateway is the slice of catalog behavior order placement needs.
// Both calls run on tx when one is provided, so a placement transaction
// never waits on a second pool connection for its own reads.
type ProductGateway interface {
	FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Product, error)
	// Decrement atomically takes qty off the product's stock inside tx and
	// reports whether enough stock was available.
	Decrement(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) (bool, error)
}

// NotificationSink receives the order workflow's fire-and-forget notifications.
type NotificationSink interface {
	OrderPlaced(ctx context.Context, order *models.Order) error
	OrderStatusChanged(ctx context.Context, order *models.Order) error
}
