package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/pestilink/pestilink-backend/internal/auth"
	"github.com/pestilink/pestilink-backend/internal/catalog"
	"github.com/pestilink/pestilink-backend/internal/notifications"
	"github.com/pestilink/pestilink-backend/internal/orders"
	"github.com/pestilink/pestilink-backend/internal/users"
	pkgauth "github.com/pestilink/pestilink-backend/pkg/auth"
	"github.com/pestilink/pestilink-backend/pkg/auth/session"
	"github.com/pestilink/pestilink-backend/pkg/config"
	"github.com/pestilink/pestilink-backend/pkg/db/models"
	"github.com/pestilink/pestilink-backend/pkg/enums"
	"github.com/pestilink/pestilink-backend/pkg/logger"
	"github.com/pestilink/pestilink-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessions struct{}

func (stubSessions) HasSession(context.Context, string) (bool, error) { return true, nil }

type stubAuthService struct{}

func (stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.LoginResponse, error) {
	return &auth.LoginResponse{}, nil
}

func (stubAuthService) Refresh(context.Context, auth.RefreshRequest) (*auth.RefreshResponse, error) {
	return &auth.RefreshResponse{}, nil
}

func (stubAuthService) Logout(context.Context, string) error { return nil }

type stubRegisterService struct{}

func (stubRegisterService) Register(context.Context, auth.RegisterRequest) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}

type stubCatalogService struct{}

func (stubCatalogService) CreateProduct(context.Context, catalog.CreateProductInput) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{}, nil
}

func (stubCatalogService) GetProduct(context.Context, uuid.UUID) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{}, nil
}

func (stubCatalogService) ListProducts(context.Context) ([]catalog.ProductDTO, error) {
	return nil, nil
}

func (stubCatalogService) ListShopProducts(context.Context, uuid.UUID) ([]catalog.ProductDTO, error) {
	return nil, nil
}

func (stubCatalogService) SearchProducts(context.Context, string) ([]catalog.ProductDTO, error) {
	return nil, nil
}

func (stubCatalogService) UpdateProduct(context.Context, catalog.UpdateProductInput) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{}, nil
}

func (stubCatalogService) DeleteProduct(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type stubMediaService struct{}

func (stubMediaService) Save(context.Context, io.Reader) (string, error) { return "img.png", nil }
func (stubMediaService) Remove(context.Context, string) error            { return nil }
func (stubMediaService) Path(string) (string, error)                     { return "", nil }

type stubOrdersService struct{}

func (stubOrdersService) PlaceOrder(context.Context, orders.PlaceOrderInput) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{Code: "A1B2C3D4"}, nil
}

func (stubOrdersService) UpdateOrderStatus(context.Context, orders.UpdateStatusInput) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

func (stubOrdersService) ListOrders(context.Context, orders.Actor) ([]orders.OrderDTO, error) {
	return nil, nil
}

func (stubOrdersService) GetOrderByCode(context.Context, orders.Actor, string) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{}, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) List(context.Context, notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) MarkRead(context.Context, notifications.Actor, uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(context.Context, notifications.Actor) (int64, error) {
	return 0, nil
}

func (stubNotificationsService) ProductListed(context.Context, *models.Product) error { return nil }
func (stubNotificationsService) OrderPlaced(context.Context, *models.Order) error     { return nil }
func (stubNotificationsService) OrderStatusChanged(context.Context, *models.Order) error {
	return nil
}

func routerJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "pestilink", ExpirationMinutes: 60}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	registry := prometheus.NewRegistry()
	return NewRouter(Deps{
		Config: &config.Config{
			App: config.AppConfig{Env: "test"},
			JWT: routerJWTConfig(),
		},
		Logger:          logger.New(logger.Options{ServiceName: "router-test", Level: zerolog.Disabled, Output: io.Discard}),
		DB:              stubPinger{},
		Sessions:        stubSessions{},
		AuthService:     stubAuthService{},
		RegisterService: stubRegisterService{},
		CatalogService:  stubCatalogService{},
		MediaService:    stubMediaService{},
		OrdersService:   stubOrdersService{},
		Notifications:   stubNotificationsService{},
		HTTPMetrics:     metrics.NewHTTPMetrics(registry),
		Gatherer:        registry,
	})
}

func mintRouterToken(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(routerJWTConfig(), time.Now(), pkgauth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "tester",
		Role:     role,
		JTI:      session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestProtectedGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestFarmerCannotCreateProducts(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{"name":"Spray","cost":"10","quantity":1}`))
	req.Header.Set("Authorization", "Bearer "+mintRouterToken(t, enums.UserRoleFarmer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestShopOwnerCannotPlaceOrders(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+mintRouterToken(t, enums.UserRoleShopOwner))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestFarmerPlacesOrderThroughRouter(t *testing.T) {
	router := newTestRouter(t)
	payload := `{"product_id":"` + uuid.NewString() + `","quantity":2,"delivery_address":"Purok 4","contact_number":"0912"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+mintRouterToken(t, enums.UserRoleFarmer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}
