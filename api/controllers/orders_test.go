package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/pestilink/pestilink-backend/internal/orders"
	"github.com/pestilink/pestilink-backend/pkg/enums"
	pkgerrors "github.com/pestilink/pestilink-backend/pkg/errors"
)

type testOrdersService struct {
	placeFn        func(ctx context.Context, input orders.PlaceOrderInput) (*orders.OrderDTO, error)
	updateStatusFn func(ctx context.Context, input orders.UpdateStatusInput) (*orders.OrderDTO, error)
	listFn         func(ctx context.Context, actor orders.Actor) ([]orders.OrderDTO, error)
	getFn          func(ctx context.Context, actor orders.Actor, code string) (*orders.OrderDTO, error)
}

func (s *testOrdersService) PlaceOrder(ctx context.Context, input orders.PlaceOrderInput) (*orders.OrderDTO, error) {
	if s.placeFn != nil {
		return s.placeFn(ctx, input)
	}
	return nil, nil
}

func (s *testOrdersService) UpdateOrderStatus(ctx context.Context, input orders.UpdateStatusInput) (*orders.OrderDTO, error) {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, input)
	}
	return nil, nil
}

func (s *testOrdersService) ListOrders(ctx context.Context, actor orders.Actor) ([]orders.OrderDTO, error) {
	if s.listFn != nil {
		return s.listFn(ctx, actor)
	}
	return nil, nil
}

func (s *testOrdersService) GetOrderByCode(ctx context.Context, actor orders.Actor, code string) (*orders.OrderDTO, error) {
	if s.getFn != nil {
		return s.getFn(ctx, actor, code)
	}
	return nil, nil
}

func TestPlaceOrderSuccess(t *testing.T) {
	farmerID := uuid.New()
	productID := uuid.New()
	svc := &testOrdersService{
		placeFn: func(ctx context.Context, input orders.PlaceOrderInput) (*orders.OrderDTO, error) {
			if input.FarmerID != farmerID {
				t.Fatalf("unexpected farmer %s", input.FarmerID)
			}
			if input.FarmerName != "juan.delacruz" {
				t.Fatalf("expected username as farmer name, got %q", input.FarmerName)
			}
			if input.ProductID != productID || input.Quantity != 3 {
				t.Fatalf("unexpected order input %+v", input)
			}
			return &orders.OrderDTO{Code: "A1B2C3D4", Quantity: 3, Status: enums.OrderStatusPending}, nil
		},
	}

	payload := `{"product_id":"` + productID.String() + `","quantity":3,"delivery_address":"Purok 4, Nueva Ecija","contact_number":"+63 912 555 0101","order_notes":"deliver in the morning"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(payload))
	req = withTestIdentity(t, req, farmerID, "juan.delacruz", enums.UserRoleFarmer)
	resp := httptest.NewRecorder()

	PlaceOrder(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data orders.OrderDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Code != "A1B2C3D4" {
		t.Fatalf("expected order code in payload, got %q", envelope.Data.Code)
	}
}

func TestPlaceOrderInsufficientStockConflicts(t *testing.T) {
	svc := &testOrdersService{
		placeFn: func(ctx context.Context, input orders.PlaceOrderInput) (*orders.OrderDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
				WithDetails(orders.InsufficientStockDetails{Available: 2, Requested: 10})
		},
	}

	payload := `{"product_id":"` + uuid.NewString() + `","quantity":10,"delivery_address":"Purok 4","contact_number":"0912"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(payload))
	req = withTestIdentity(t, req, uuid.New(), "juan.delacruz", enums.UserRoleFarmer)
	resp := httptest.NewRecorder()

	PlaceOrder(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]int `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeInsufficientStock) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
	if envelope.Error.Details["available"] != 2 || envelope.Error.Details["requested"] != 10 {
		t.Fatalf("expected shortfall details, got %v", envelope.Error.Details)
	}
}

func TestPlaceOrderRejectsMissingQuantity(t *testing.T) {
	svc := &testOrdersService{
		placeFn: func(ctx context.Context, input orders.PlaceOrderInput) (*orders.OrderDTO, error) {
			t.Fatal("service must not run on invalid input")
			return nil, nil
		},
	}

	payload := `{"product_id":"` + uuid.NewString() + `","delivery_address":"Purok 4","contact_number":"0912"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(payload))
	req = withTestIdentity(t, req, uuid.New(), "juan.delacruz", enums.UserRoleFarmer)
	resp := httptest.NewRecorder()

	PlaceOrder(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPlaceOrderRequiresIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()

	PlaceOrder(&testOrdersService{}, testControllerLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestUpdateOrderStatusPassesCodeAndOwner(t *testing.T) {
	ownerID := uuid.New()
	svc := &testOrdersService{
		updateStatusFn: func(ctx context.Context, input orders.UpdateStatusInput) (*orders.OrderDTO, error) {
			if input.ShopOwnerID != ownerID {
				t.Fatalf("unexpected owner %s", input.ShopOwnerID)
			}
			if input.OrderCode != "A1B2C3D4" || input.Status != "shipped" {
				t.Fatalf("unexpected input %+v", input)
			}
			return &orders.OrderDTO{Code: input.OrderCode, Status: enums.OrderStatusShipped}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/A1B2C3D4/status", strings.NewReader(`{"status":"shipped"}`))
	req = withTestIdentity(t, req, ownerID, "greengrow", enums.UserRoleShopOwner)
	req = addRouteParam(req, "orderCode", "A1B2C3D4")
	resp := httptest.NewRecorder()

	UpdateOrderStatus(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestListOrdersUsesActorRole(t *testing.T) {
	farmerID := uuid.New()
	svc := &testOrdersService{
		listFn: func(ctx context.Context, actor orders.Actor) ([]orders.OrderDTO, error) {
			if actor.UserID != farmerID || actor.Role != enums.UserRoleFarmer {
				t.Fatalf("unexpected actor %+v", actor)
			}
			return []orders.OrderDTO{{Code: "A1B2C3D4"}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req = withTestIdentity(t, req, farmerID, "juan.delacruz", enums.UserRoleFarmer)
	resp := httptest.NewRecorder()

	ListOrders(svc, testControllerLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
