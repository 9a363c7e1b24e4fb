package routes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/common/auth"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/controllers"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/models"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/routes"
	"github.com/sumasri3003/Smart-Inventory-Project/backend/services/inventory-service/services"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type okCatalog struct{ services.CatalogService }

func (okCatalog) ListProducts(context.Context) ([]models.Product, error) { return nil, nil }
func (okCatalog) ListSuppliers(context.Context) ([]models.Supplier, error) {
	return nil, nil
}

type okOrders struct{ services.OrderService }

func (okOrders) CancelOrder(context.Context, uint) error { return nil }
func (okOrders) ListOrders(_ context.Context, page, limit int, _ string) (*services.OrderListResponse, error) {
	return &services.OrderListResponse{Meta: services.MetaData{Page: page, Limit: limit}}, nil
}

func setup(t *testing.T) (*gin.Engine, map[string]string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := auth.NewStaticStore([]auth.SeedUser{
		{Username: "admin", Password: "admin123", Role: auth.RoleAdmin},
		{Username: "clerk", Password: "clerk123", Role: auth.RoleWarehouse},
	}, bcrypt.MinCost)
	guard, err := auth.NewGuard(store, "routes-secret", time.Hour)
	require.NoError(t, err)

	r := gin.New()
	routes.RegisterRoutes(r, guard, routes.Controllers{
		Auth:    controllers.NewAuthController(guard, zap.NewNop()),
		Catalog: controllers.NewCatalogController(okCatalog{}),
		Orders:  controllers.NewOrderController(okOrders{}),
	})

	tokens := map[string]string{}
	for user, pass := range map[string]string{"admin": "admin123", "clerk": "clerk123"} {
		tok, _, err := guard.Authenticate(context.Background(), user, pass)
		require.NoError(t, err)
		tokens[user] = tok
	}
	return r, tokens
}

func TestRoleGates(t *testing.T) {
	r, tokens := setup(t)

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		status int
	}{
		{"products anonymous", http.MethodGet, "/products", "", http.StatusUnauthorized},
		{"products admin", http.MethodGet, "/products", "admin", http.StatusOK},
		{"products warehouse", http.MethodGet, "/products", "clerk", http.StatusOK},
		{"suppliers warehouse", http.MethodGet, "/suppliers", "clerk", http.StatusOK},
		{"create product warehouse", http.MethodPost, "/products", "clerk", http.StatusForbidden},
		{"delete order warehouse", http.MethodDelete, "/orders/1", "clerk", http.StatusForbidden},
		{"delete order admin", http.MethodDelete, "/orders/1", "admin", http.StatusOK},
		{"confirm order warehouse", http.MethodPost, "/orders/1/confirm", "clerk", http.StatusForbidden},
		{"list orders warehouse", http.MethodGet, "/orders", "clerk", http.StatusOK},
		{"me warehouse", http.MethodGet, "/auth/me", "clerk", http.StatusOK},
		{"me anonymous", http.MethodGet, "/auth/me", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.user != "" {
				req.Header.Set("Authorization", "Bearer "+tokens[tt.user])
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
