package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pestilink/pestilink-backend/pkg/db/models"
	"github.com/pestilink/pestilink-backend/pkg/enums"
	pkgerrors "github.com/pestilink/pestilink-backend/pkg/errors"
	"github.com/pestilink/pestilink-backend/pkg/pagination"
)

// Service defines notification list/read operations plus the domain emitters
// called by the catalog and order workflows.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, actor Actor, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, actor Actor) (int64, error)

	ProductListed(ctx context.Context, product *models.Product) error
	OrderPlaced(ctx context.Context, order *models.Order) error
	OrderStatusChanged(ctx context.Context, order *models.Order) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

// ListParams configures pagination for notifications.
type ListParams struct {
	Actor      Actor
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor id required")
	}
	if !params.Actor.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor role required")
	}

	query := listNotificationsParams{
		Actor:      params.Actor,
		Limit:      params.Limit,
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	items, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	result := &ListResult{Items: items}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) MarkRead(ctx context.Context, actor Actor, notificationID uuid.UUID) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	mark, err := s.repo.MarkRead(ctx, actor, notificationID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !mark.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, actor Actor) (int64, error) {
	if actor.UserID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "actor id required")
	}
	updated, err := s.repo.MarkAllRead(ctx, actor, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark all notifications read")
	}
	return updated, nil
}

// ProductListed broadcasts a new listing to every farmer.
func (s *service) ProductListed(ctx context.Context, product *models.Product) error {
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product required")
	}
	productID := product.ID
	notification := &models.Notification{
		ID:        uuid.New(),
		Type:      enums.NotificationTypeNewProduct,
		Title:     fmt.Sprintf("New Product: %s", product.Name),
		Message:   fmt.Sprintf("%s is now available at %s", product.Name, product.ShopName),
		ProductID: &productID,
		Broadcast: true,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert product notification")
	}
	return nil
}

// OrderPlaced addresses the shop owner who received the order.
func (s *service) OrderPlaced(ctx context.Context, order *models.Order) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	orderID := order.ID
	shopOwnerID := order.ShopOwnerID
	notification := &models.Notification{
		ID:          uuid.New(),
		Type:        enums.NotificationTypeNewOrder,
		Title:       fmt.Sprintf("New Order: %s", order.ProductName),
		Message:     fmt.Sprintf("Order #%s: %d units of %s ordered by %s", order.Code, order.Quantity, order.ProductName, order.FarmerName),
		OrderID:     &orderID,
		ShopOwnerID: &shopOwnerID,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order notification")
	}
	return nil
}

// OrderStatusChanged addresses the farmer who placed the order.
func (s *service) OrderStatusChanged(ctx context.Context, order *models.Order) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	orderID := order.ID
	farmerID := order.FarmerID
	notification := &models.Notification{
		ID:       uuid.New(),
		Type:     enums.NotificationTypeOrderUpdate,
		Title:    fmt.Sprintf("Order #%s Update", order.Code),
		Message:  fmt.Sprintf("Your order status has been updated to: %s", titleCase(order.Status.String())),
		OrderID:  &orderID,
		FarmerID: &farmerID,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert status notification")
	}
	return nil
}

func titleCase(value string) string {
	if value == "" {
		return value
	}
	return strings.ToUpper(value[:1]) + value[1:]
}
