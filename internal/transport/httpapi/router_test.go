package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analyticscatalog "github.com/Apurer/storekeeper/internal/domains/analytics/adapters/catalog"
	analyticsorders "github.com/Apurer/storekeeper/internal/domains/analytics/adapters/orders"
	analyticsapp "github.com/Apurer/storekeeper/internal/domains/analytics/application"
	catalogmemory "github.com/Apurer/storekeeper/internal/domains/catalog/adapters/memory"
	catalogapp "github.com/Apurer/storekeeper/internal/domains/catalog/application"
	ordercatalog "github.com/Apurer/storekeeper/internal/domains/orders/adapters/catalog"
	ordermemory "github.com/Apurer/storekeeper/internal/domains/orders/adapters/memory"
	ordersapp "github.com/Apurer/storekeeper/internal/domains/orders/application"
	ownersmemory "github.com/Apurer/storekeeper/internal/domains/owners/adapters/memory"
	ownersapp "github.com/Apurer/storekeeper/internal/domains/owners/application"
	apierrors "github.com/Apurer/storekeeper/internal/shared/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type server struct {
	t      *testing.T
	router *gin.Engine
	owners *ownersapp.Service
}

func newServer(t *testing.T) *server {
	t.Helper()
	catalogRepo := catalogmemory.NewRepository()
	orderRepo := ordermemory.NewRepository(catalogRepo)
	baskets := ordermemory.NewBasketStore()
	owners := ownersapp.NewService(ownersmemory.NewRepository(),
		ownersapp.WithDependents(orderRepo, baskets, catalogRepo),
		ownersapp.WithCounters(catalogRepo, orderRepo),
	)
	services := Services{
		Owners:    owners,
		Catalog:   catalogapp.NewService(catalogRepo),
		Orders:    ordersapp.NewService(orderRepo, ordercatalog.NewStockReader(catalogRepo), baskets),
		Analytics: analyticsapp.NewService(analyticsorders.NewSalesReader(orderRepo), analyticscatalog.NewStockReader(catalogRepo)),
	}
	return &server{t: t, router: NewRouter(services), owners: owners}
}

func (s *server) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *server) registerOwner(chatID int64) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/v1/owners", map[string]any{
		"chatId":    chatID,
		"email":     fmt.Sprintf("owner%d@example.com", chatID),
		"storeName": "Corner Shop",
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	owner := decode[map[string]any](s.t, rec)
	return fmt.Sprintf("/v1/owners/%d", int64(owner["id"].(float64)))
}

func (s *server) createProduct(base string, body map[string]any) map[string]any {
	s.t.Helper()
	rec := s.do(http.MethodPost, base+"/products", body)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]any](s.t, rec)
}

func assertProblem(t *testing.T, rec *httptest.ResponseRecorder, status int, problemType string) apierrors.ProblemDetail {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), apierrors.ContentTypeProblemJSON)
	problem := decode[apierrors.ProblemDetail](t, rec)
	assert.Equal(t, problemType, problem.Type)
	return problem
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	rec := s.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRegisterOwner(t *testing.T) {
	s := newServer(t)
	base := s.registerOwner(42)

	rec := s.do(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	owner := decode[map[string]any](t, rec)
	assert.Equal(t, "owner42@example.com", owner["email"])
	assert.Equal(t, "ru", owner["language"])

	rec = s.do(http.MethodPost, "/v1/owners", map[string]any{"chatId": 42, "email": "other@example.com", "storeName": "Other"})
	problem := assertProblem(t, rec, http.StatusConflict, apierrors.TypeConflict)
	assert.Equal(t, "chatId", problem.Extensions["field"])

	rec = s.do(http.MethodPost, "/v1/owners", map[string]any{"chatId": 7, "email": "broken", "storeName": "Other"})
	problem = assertProblem(t, rec, http.StatusBadRequest, apierrors.TypeValidation)
	assert.Contains(t, problem.Extensions["fields"], "email")

	rec = s.do(http.MethodPost, "/v1/owners", "{not json")
	assertProblem(t, rec, http.StatusBadRequest, apierrors.TypeBadRequest)
}

func TestOwnerLookupFailures(t *testing.T) {
	s := newServer(t)
	assertProblem(t, s.do(http.MethodGet, "/v1/owners/abc", nil), http.StatusBadRequest, apierrors.TypeValidation)
	assertProblem(t, s.do(http.MethodGet, "/v1/owners/99/products", nil), http.StatusNotFound, apierrors.TypeNotFound)
}

func TestDeactivatedOwnerIsForbidden(t *testing.T) {
	s := newServer(t)
	base := s.registerOwner(42)
	owner, err := s.owners.GetByChatID(context.Background(), 42)
	require.NoError(t, err)
	_, err = s.owners.Deactivate(context.Background(), owner.ID)
	require.NoError(t, err)

	assertProblem(t, s.do(http.MethodGet, base+"/products", nil), http.StatusForbidden, apierrors.TypeForbidden)
	assertProblem(t, s.do(http.MethodPatch, base, map[string]any{"storeName": "New"}), http.StatusForbidden, apierrors.TypeForbidden)

	rec := s.do(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec)["active"])
}

func TestUpdateOwnerSettings(t *testing.T) {
	s := newServer(t)
	base := s.registerOwner(42)

	rec := s.do(http.MethodPatch, base, map[string]any{"storeName": " Tea House ", "language": "en"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	owner := decode[map[string]any](t, rec)
	assert.Equal(t, "Tea House", owner["storeName"])
	assert.Equal(t, "en", owner["language"])

	rec = s.do(http.MethodPatch, base, map[string]any{"language": "xx"})
	assertProblem(t, rec, http.StatusBadRequest, apierrors.TypeValidation)
}

func TestCatalogEndpoints(t *testing.T) {
	s := newServer(t)
	base := s.registerOwner(42)

	rec := s.do(http.MethodPost, base+"/categories", map[string]any{"name": "Tea"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	category := decode[map[string]any](t, rec)
	categoryID := int64(category["id"].(float64))

	product := s.createProduct(base, map[string]any{
		"name": "Green tea", "purchasePrice": "10", "salePrice": 15.5, "quantity": 5, "categoryId": categoryID,
	})
	assert.Equal(t, "10.00", product["purchasePrice"])
	assert.Equal(t, "15.50", product["salePrice"])
	assert.Equal(t, "5.50", product["profitPerUnit"])
	assert.Equal(t, "27.50", product["potentialProfit"])
	productPath := fmt.Sprintf("%s/products/%d", base, int64(product["id"].(float64)))

	s.createProduct(base, map[string]any{"name": "Mug", "purchasePrice": "2", "salePrice": "4", "quantity": 1})

	rec = s.do(http.MethodGet, fmt.Sprintf("%s/products?categoryId=%d", base, categoryID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)
	rec = s.do(http.MethodGet, base+"/products", nil)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)
	assertProblem(t, s.do(http.MethodGet, base+"/products?categoryId=x", nil), http.StatusBadRequest, apierrors.TypeValidation)

	rec = s.do(http.MethodPatch, productPath, map[string]any{"salePrice": "8", "name": "Sencha"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[map[string]any](t, rec)
	assert.Equal(t, "Sencha", updated["name"])
	assert.Equal(t, []any{"sale_price_below_cost"}, updated["warnings"])

	rec = s.do(http.MethodPatch, productPath, map[string]any{"name": "Matcha", "quantity": "-1"})
	problem := assertProblem(t, rec, http.StatusBadRequest, apierrors.TypeValidation)
	assert.Contains(t, problem.Extensions["fields"], "quantity")
	rec = s.do(http.MethodGet, productPath, nil)
	assert.Equal(t, "Sencha", decode[map[string]any](t, rec)["name"])

	rec = s.do(http.MethodPost, productPath+"/adjustments", map[string]any{"delta": 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(8), decode[map[string]any](t, rec)["quantity"])
	rec = s.do(http.MethodPost, productPath+"/adjustments", map[string]any{"delta": -9})
	assertProblem(t, rec, http.StatusConflict, apierrors.TypeInsufficientStock)

	categoryPath := fmt.Sprintf("%s/categories/%d", base, categoryID)
	assertProblem(t, s.do(http.MethodDelete, categoryPath, nil), http.StatusConflict, apierrors.TypeConflict)
	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, productPath, nil).Code)
	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, categoryPath, nil).Code)
	assertProblem(t, s.do(http.MethodGet, categoryPath, nil), http.StatusNotFound, apierrors.TypeNotFound)
}

func TestCatalogIsOwnerScoped(t *testing.T) {
	s := newServer(t)
	mine := s.registerOwner(42)
	theirs := s.registerOwner(43)
	product := s.createProduct(mine, map[string]any{"name": "Green tea", "purchasePrice": "10", "salePrice": "15", "quantity": 5})

	rec := s.do(http.MethodGet, fmt.Sprintf("%s/products/%d", theirs, int64(product["id"].(float64))), nil)
	assertProblem(t, rec, http.StatusNotFound, apierrors.TypeNotFound)
}

func TestBasketConversation(t *testing.T) {
	s := newServer(t)
	base := s.registerOwner(42)
	s.createProduct(base, map[string]any{"name": "Green tea", "purchasePrice": "10", "salePrice": "15", "quantity": 5})
	s.createProduct(base, map[string]any{"name": "Empty", "purchasePrice": "1", "salePrice": "2", "quantity": 0})
	s.createProduct(base, map[string]any{"name": "Mug", "purchasePrice": "2", "salePrice": "4", "quantity": 3})

	rec := s.do(http.MethodPost, base+"/baskets", map[string]any{"conversationId": "chat-1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	basket := decode[map[string]any](t, rec)
	assert.Equal(t, "empty", basket["state"])
	require.Len(t, basket["offer"], 2)
	assert.Contains(t, basket["prompt"], "1. Green tea - 15.00 (5 in stock)")
	basketPath := base + "/baskets/chat-1"

	assertProblem(t, s.do(http.MethodPut, basketPath+"/selection", map[string]any{"text": "4"}), http.StatusBadRequest, apierrors.TypeSelection)

	rec = s.do(http.MethodPut, basketPath+"/selection", map[string]any{"text": "1, 2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "products_selected", decode[map[string]any](t, rec)["state"])

	rec = s.do(http.MethodPut, basketPath+"/quantities", map[string]any{"text": "2, 9"})
	problem := assertProblem(t, rec, http.StatusBadRequest, apierrors.TypeValidation)
	assert.NotEmpty(t, problem.Extensions["shortages"])

	rec = s.do(http.MethodPut, basketPath+"/quantities", map[string]any{"text": "2, 1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	basket = decode[map[string]any](t, rec)
	assert.Equal(t, "quantities_entered", basket["state"])
	assert.Equal(t, "34.00", basket["totalAmount"])
	assert.Equal(t, "12.00", basket["totalProfit"])

	rec = s.do(http.MethodPost, basketPath+"/confirm", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[map[string]any](t, rec)
	assert.Equal(t, "34.00", order["totalAmount"])
	number := order["number"].(string)
	assert.Len(t, number, 8)

	assertProblem(t, s.do(http.MethodGet, basketPath, nil), http.StatusNotFound, apierrors.TypeNotFound)

	rec = s.do(http.MethodGet, base+"/orders/"+number, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, base+"/orders?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = s.do(http.MethodGet, base+"/products", nil)
	products := decode[[]map[string]any](t, rec)
	assert.Equal(t, float64(3), products[0]["quantity"])
	assert.Equal(t, float64(2), products[2]["quantity"])
}

func TestBasketWithoutBody(t *testing.T) {
	s := newServer(t)
	base := s.registerOwner(42)

	rec := s.do(http.MethodPost, base+"/baskets", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	basket := decode[map[string]any](t, rec)
	conversation := basket["conversationId"].(string)
	require.NotEmpty(t, conversation)
	assert.Equal(t, "No products are in stock.", basket["prompt"])

	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, base+"/baskets/"+conversation, nil).Code)
	assertProblem(t, s.do(http.MethodGet, base+"/baskets/"+conversation, nil), http.StatusNotFound, apierrors.TypeNotFound)
}

func TestConfirmBeforeQuantitiesIsRejected(t *testing.T) {
	s := newServer(t)
	base := s.registerOwner(42)
	s.createProduct(base, map[string]any{"name": "Green tea", "purchasePrice": "10", "salePrice": "15", "quantity": 5})
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, base+"/baskets", map[string]any{"conversationId": "c"}).Code)

	problem := assertProblem(t, s.do(http.MethodPost, base+"/baskets/c/confirm", nil), http.StatusBadRequest, apierrors.TypeValidation)
	assert.Contains(t, problem.Extensions["fields"], "basket")
}

func TestPlaceOrder(t *testing.T) {
	s := newServer(t)
	base := s.registerOwner(42)
	product := s.createProduct(base, map[string]any{"name": "Green tea", "purchasePrice": "10", "salePrice": "15", "quantity": 5})
	id := product["id"]

	body := map[string]any{"lines": []map[string]any{{"productId": id, "quantity": 2}}}
	first := s.do(http.MethodPost, base+"/orders", body, IdempotencyKeyHeader, "req-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := s.do(http.MethodPost, base+"/orders", body, IdempotencyKeyHeader, "req-1")
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())
	assert.Equal(t, decode[map[string]any](t, first)["number"], decode[map[string]any](t, second)["number"])

	rec := s.do(http.MethodPost, base+"/orders", map[string]any{"lines": []map[string]any{{"productId": id, "quantity": 4}}})
	problem := assertProblem(t, rec, http.StatusConflict, apierrors.TypeInsufficientStock)
	assert.NotEmpty(t, problem.Extensions["shortages"])

	assertProblem(t, s.do(http.MethodGet, base+"/orders?limit=zero", nil), http.StatusBadRequest, apierrors.TypeValidation)
	assertProblem(t, s.do(http.MethodGet, base+"/orders/NOPE2345", nil), http.StatusNotFound, apierrors.TypeNotFound)
}

func TestReportEndpoint(t *testing.T) {
	s := newServer(t)
	base := s.registerOwner(42)
	product := s.createProduct(base, map[string]any{"name": "Green tea", "purchasePrice": "10", "salePrice": "15", "quantity": 5})
	rec := s.do(http.MethodPost, base+"/orders", map[string]any{"lines": []map[string]any{{"productId": product["id"], "quantity": 3}}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, base+"/reports?period=all", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[map[string]any](t, rec)
	assert.Equal(t, float64(1), report["totalOrders"])
	assert.Equal(t, "45.00", report["totalRevenue"])
	assert.Equal(t, "15.00", report["totalProfit"])
	assert.Equal(t, "30.00", report["totalExpenses"])
	assert.Equal(t, "20.00", report["inventoryValue"])

	rec = s.do(http.MethodGet, base+"/reports?period=custom&start=2024-02-01&end=2024-01-01", nil)
	problem := assertProblem(t, rec, http.StatusBadRequest, apierrors.TypeValidation)
	assert.Contains(t, problem.Extensions["fields"], "start")
}

func TestStoreInfoAndOwnerDelete(t *testing.T) {
	s := newServer(t)
	base := s.registerOwner(42)
	s.createProduct(base, map[string]any{"name": "Green tea", "purchasePrice": "10", "salePrice": "15", "quantity": 5})

	rec := s.do(http.MethodGet, base+"/store", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[map[string]any](t, rec)
	assert.Equal(t, float64(1), info["productCount"])
	assert.Equal(t, float64(0), info["orderCount"])

	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, base, nil).Code)
	assertProblem(t, s.do(http.MethodGet, base, nil), http.StatusNotFound, apierrors.TypeNotFound)
}

func TestUnknownRoute(t *testing.T) {
	s := newServer(t)
	assertProblem(t, s.do(http.MethodGet, "/v2/catalogue", nil), http.StatusNotFound, apierrors.TypeNotFound)
}
