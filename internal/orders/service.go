package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pestilink/pestilink-backend/internal/catalog"
	"github.com/pestilink/pestilink-backend/pkg/db/models"
	"github.com/pestilink/pestilink-backend/pkg/enums"
	pkgerrors "github.com/pestilink/pestilink-backend/pkg/errors"
	"github.com/pestilink/pestilink-backend/pkg/logger"
	"github.com/pestilink/pestilink-backend/pkg/metrics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the order workflow.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error)
	UpdateOrderStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error)
	ListOrders(ctx context.Context, actor Actor) ([]OrderDTO, error)
	GetOrderByCode(ctx context.Context, actor Actor, code string) (*OrderDTO, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	products ProductGateway
	notifier NotificationSink
	logg     *logger.Logger
	metrics  *metrics.OrderMetrics
	now      func() time.Time
	newCode  func() string
}

// NewService builds the order service with the required dependencies.
// The metrics argument may be nil.
func NewService(repo Repository, tx txRunner, products ProductGateway, notifier NotificationSink, logg *logger.Logger, orderMetrics *metrics.OrderMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product gateway required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notification sink required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		products: products,
		notifier: notifier,
		logg:     logg,
		metrics:  orderMetrics,
		now:      time.Now,
		newCode:  NewOrderCode,
	}, nil
}

// NewOrderCode produces the short uppercase code shown to users, e.g. "3F9A1C2B".
func NewOrderCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderDTO, error) {
	if input.FarmerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.DeliveryAddress == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address required")
	}
	if input.ContactNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact number required")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		product, err := s.products.FindByID(ctx, tx, input.ProductID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		// The guarded UPDATE is the only stock authority. Losing the race
		// between two concurrent orders shows up here as zero rows updated.
		ok, err := s.products.Decrement(ctx, tx, product.ID, input.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			s.rejected("insufficient_stock")
			// A lost race means the first read is stale; report what is
			// actually left on the shelf.
			available := product.Quantity
			if current, rerr := s.products.FindByID(ctx, tx, product.ID); rerr == nil {
				available = current.Quantity
			} else {
				s.logg.Error(ctx, "re-read stock after rejected decrement", rerr)
			}
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
				WithDetails(InsufficientStockDetails{
					Available: available,
					Requested: input.Quantity,
				})
		}

		unitPrice := product.Cost
		total := unitPrice.Mul(decimal.NewFromInt(int64(input.Quantity)))

		order = &models.Order{
			ID:              uuid.New(),
			Code:            s.newCode(),
			FarmerID:        input.FarmerID,
			FarmerName:      input.FarmerName,
			ProductID:       product.ID,
			ProductName:     product.Name,
			ShopOwnerID:     product.ShopOwnerID,
			ShopName:        product.ShopName,
			Quantity:        input.Quantity,
			UnitPrice:       unitPrice,
			TotalAmount:     total,
			DeliveryAddress: input.DeliveryAddress,
			ContactNumber:   input.ContactNumber,
			Notes:           input.Notes,
			Status:          enums.OrderStatusPending,
		}
		if _, err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPlaced()

	// The order is committed; a failed notification must not undo it.
	if err := s.notifier.OrderPlaced(ctx, order); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "order_code", order.Code), "notify shop owner of new order", err)
	}

	return FromModel(order), nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error) {
	if input.ShopOwnerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.OrderCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order code required")
	}
	status, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	order, err := s.repo.FindByCode(ctx, input.OrderCode)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	// Orders outside the shop's scope read as missing, not forbidden.
	if order.ShopOwnerID != input.ShopOwnerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	now := s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, order.ID, status, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	order.Status = status
	order.UpdatedAt = now

	if err := s.notifier.OrderStatusChanged(ctx, order); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "order_code", order.Code), "notify farmer of status change", err)
	}

	return FromModel(order), nil
}

func (s *service) ListOrders(ctx context.Context, actor Actor) ([]OrderDTO, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var (
		found []models.Order
		err   error
	)
	switch actor.Role {
	case enums.UserRoleFarmer:
		found, err = s.repo.ListByFarmer(ctx, actor.UserID)
	case enums.UserRoleShopOwner:
		found, err = s.repo.ListByShopOwner(ctx, actor.UserID)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown role")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return FromModels(found), nil
}

func (s *service) GetOrderByCode(ctx context.Context, actor Actor, code string) (*OrderDTO, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order code required")
	}

	order, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	switch actor.Role {
	case enums.UserRoleFarmer:
		if order.FarmerID != actor.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
	case enums.UserRoleShopOwner:
		if order.ShopOwnerID != actor.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown role")
	}

	return FromModel(order), nil
}

func (s *service) rejected(reason string) {
	s.metrics.IncRejected(reason)
}

type catalogGateway struct {
	repo *catalog.Repository
}

// NewProductGateway adapts the catalog repository to the order workflow.
func NewProductGateway(repo *catalog.Repository) ProductGateway {
	return catalogGateway{repo: repo}
}

func (g catalogGateway) FindByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Product, error) {
	return g.repo.WithTx(tx).FindByID(ctx, id)
}

func (g catalogGateway) Decrement(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) (bool, error) {
	return g.repo.WithTx(tx).ConditionalDecrement(ctx, productID, qty)
}
