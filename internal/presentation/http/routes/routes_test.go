package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/checkout-api/internal/application/service"
	"github.com/sangkips/checkout-api/internal/config"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	"github.com/sangkips/checkout-api/internal/infrastructure/lock"
	"github.com/sangkips/checkout-api/internal/infrastructure/memory"
	"github.com/sangkips/checkout-api/internal/presentation/http/handler"
	"github.com/sangkips/checkout-api/internal/presentation/http/middleware"
	"github.com/sangkips/checkout-api/pkg/printer"
	"github.com/sangkips/checkout-api/pkg/receipt"
	"github.com/sangkips/checkout-api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiEnv struct {
	router  *gin.Engine
	store   *memory.Store
	jwt     *utils.JWTManager
	cashier string
	manager string
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
	Details map[string]any  `json:"details"`
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	uow := store.UnitOfWork()
	require.NoError(t, store.Customers().Ensure(context.Background(), &entity.Customer{ID: entity.WalkInCustomerID, Name: "Walk-in"}))

	inventory := service.NewInventoryLedger(store.Catalog(), store.Batches(), store.Movements(), uow, nil)
	credit := service.NewCreditLedger(store.Credit(), store.Customers(), uow, entity.WalkInCustomerID)
	catalog := service.NewCatalogService(store.Catalog(), inventory)
	printerSvc := service.NewPrinterService(printer.NewNullPrinter(), store.Sales(), store.Receipts(),
		receipt.StoreInfo{Name: "API Store", Currency: "Afghanis"},
		service.PrinterConfig{Type: "none", Codepage: printer.CodepageCP437})
	checkout := service.NewCheckoutService(inventory, credit, store.Catalog(), store.Customers(), store.Sales(),
		uow, lock.NewLocalLocker(), printerSvc, service.CheckoutConfig{})

	jwt := utils.NewJWTManager("test-secret", time.Hour)
	cashier, err := jwt.GenerateAccessToken(uuid.New(), "Nadia", "till-1", []string{"cashier"})
	require.NoError(t, err)
	manager, err := jwt.GenerateAccessToken(uuid.New(), "Omar", "office", []string{"manager"})
	require.NoError(t, err)

	router := Setup(&Handlers{
		Checkout:  handler.NewCheckoutHandler(checkout, catalog),
		Catalog:   handler.NewCatalogHandler(catalog),
		Inventory: handler.NewInventoryHandler(inventory),
		Sale:      handler.NewSaleHandler(service.NewSaleService(store.Sales())),
		Credit:    handler.NewCreditHandler(credit),
		Printer:   handler.NewPrinterHandler(printerSvc),
	}, &Deps{
		JWTManager:      jwt,
		Cfg:             &config.Config{App: config.AppConfig{Name: "checkout-api"}},
		IdempotencyRepo: store.Idempotency(),
	})

	return &apiEnv{router: router, store: store, jwt: jwt, cashier: cashier, manager: manager}
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "" && bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("{")) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestAPI_RequiresToken(t *testing.T) {
	e := newAPI(t)

	w, _ := e.do(t, http.MethodPost, "/api/v1/checkouts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = e.do(t, http.MethodPost, "/api/v1/checkouts", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_CashierCannotReceiveStock(t *testing.T) {
	e := newAPI(t)

	w, _ := e.do(t, http.MethodPost, "/api/v1/catalog", e.cashier, map[string]any{"name": "Tea", "sale_price": "10"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAPI_CheckoutFlow(t *testing.T) {
	e := newAPI(t)

	w, env := e.do(t, http.MethodPost, "/api/v1/catalog", e.manager, map[string]any{
		"barcode": "6161", "name": "Green Tea", "sale_price": "45.50",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	product := decode[entity.Product](t, env.Data)

	w, _ = e.do(t, http.MethodPost, "/api/v1/batches", e.manager, map[string]any{
		"product_id": product.ID, "label": "GT-1", "quantity": "3",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env = e.do(t, http.MethodPost, "/api/v1/checkouts", e.cashier, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	co := decode[service.CheckoutView](t, env.Data)

	// more than is on hand
	w, env = e.do(t, http.MethodPost, "/api/v1/checkouts/"+co.ID.String()+"/lines", e.cashier, map[string]any{
		"barcode": "6161", "quantity": "5",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "OUT_OF_STOCK", env.Kind)
	assert.Equal(t, "3", env.Details["available"])

	w, env = e.do(t, http.MethodPost, "/api/v1/checkouts/"+co.ID.String()+"/lines", e.cashier, map[string]any{
		"barcode": "6161", "quantity": "2",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view := decode[service.CheckoutView](t, env.Data)
	require.Len(t, view.Lines, 1)
	assert.True(t, view.GrossAmount.Equal(decimal.RequireFromString("91")))

	commit := map[string]any{"payment_kind": "cash", "print": false}
	w, env = e.do(t, http.MethodPost, "/api/v1/checkouts/"+co.ID.String()+"/commit", e.cashier, commit,
		middleware.IdempotencyKeyHeader, "commit-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	result := decode[service.CommitResult](t, env.Data)
	assert.Equal(t, "INV-00000001", result.Sale.InvoiceNo)
	require.NotNil(t, result.Receipt)
	assert.Contains(t, result.Receipt.Text, "Ninety One Afghanis Only")

	// a retried request replays the stored response
	w, env = e.do(t, http.MethodPost, "/api/v1/checkouts/"+co.ID.String()+"/commit", e.cashier, commit,
		middleware.IdempotencyKeyHeader, "commit-1")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Idempotency-Replayed"))
	replayed := decode[service.CommitResult](t, env.Data)
	assert.Equal(t, result.Sale.ID, replayed.Sale.ID)

	// without the key the committed checkout refuses a second commit
	w, env = e.do(t, http.MethodPost, "/api/v1/checkouts/"+co.ID.String()+"/commit", e.cashier, commit)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_STATE", env.Kind)

	w, _ = e.do(t, http.MethodGet, "/api/v1/sales/"+result.Sale.ID.String()+"/receipt", e.cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, result.Receipt.Text, w.Body.String())

	w, env = e.do(t, http.MethodGet, "/api/v1/sales/INV-00000001", e.cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, result.Sale.ID, decode[entity.Sale](t, env.Data).ID)

	w, env = e.do(t, http.MethodGet, "/api/v1/catalog?q=6161", e.cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode[[]service.CatalogItem](t, env.Data)
	require.Len(t, items, 1)
	assert.True(t, items[0].Available.Equal(decimal.NewFromInt(1)))
}

func TestAPI_CreditSaleRejectedOverLimit(t *testing.T) {
	e := newAPI(t)
	ctx := context.Background()

	customer := &entity.Customer{Name: "Karim"}
	require.NoError(t, e.store.Customers().Ensure(ctx, customer))
	product := &entity.Product{Barcode: "RICE", Name: "Rice", SalePrice: decimal.NewFromInt(150), Active: true}
	require.NoError(t, e.store.Catalog().Save(ctx, product))
	w, _ := e.do(t, http.MethodPost, "/api/v1/batches", e.manager, map[string]any{
		"product_id": product.ID, "label": "R1", "quantity": "10", "expires_on": "2099-01-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	path := "/api/v1/credit-accounts/" + customer.ID.String()
	w, _ = e.do(t, http.MethodPut, path, e.manager, map[string]any{"credit_limit": "100", "enabled": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	_, env := e.do(t, http.MethodPost, "/api/v1/checkouts", e.cashier, nil)
	co := decode[service.CheckoutView](t, env.Data)
	w, _ = e.do(t, http.MethodPost, "/api/v1/checkouts/"+co.ID.String()+"/lines", e.cashier, map[string]any{
		"product_id": product.ID, "quantity": "1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, env = e.do(t, http.MethodPost, "/api/v1/checkouts/"+co.ID.String()+"/commit", e.cashier, map[string]any{
		"payment_kind": "credit", "customer_id": customer.ID,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "LIMIT_EXCEEDED", env.Kind)
	assert.Equal(t, "100.00", env.Details["credit_limit"])

	w, env = e.do(t, http.MethodGet, "/api/v1/checkouts/"+co.ID.String(), e.cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OPEN", decode[map[string]any](t, env.Data)["state"])

	w, env = e.do(t, http.MethodGet, path+"/entries", e.cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[map[string]any](t, env.Data)
	assert.Empty(t, page["items"])
}

func TestAPI_InvalidPathParams(t *testing.T) {
	e := newAPI(t)

	w, _ := e.do(t, http.MethodGet, "/api/v1/checkouts/not-a-uuid", e.cashier, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := e.do(t, http.MethodGet, "/api/v1/checkouts/"+uuid.NewString(), e.cashier, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Kind)
}

func TestAPI_AddLineDefaultsToOneUnit(t *testing.T) {
	e := newAPI(t)
	ctx := context.Background()

	product := &entity.Product{Barcode: "77", Name: "Matches", SalePrice: decimal.NewFromInt(5), Active: true}
	require.NoError(t, e.store.Catalog().Save(ctx, product))
	w, _ := e.do(t, http.MethodPost, "/api/v1/batches", e.manager, map[string]any{
		"product_id": product.ID, "label": "M1", "quantity": "10",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	_, env := e.do(t, http.MethodPost, "/api/v1/checkouts", e.cashier, nil)
	co := decode[service.CheckoutView](t, env.Data)
	linesPath := "/api/v1/checkouts/" + co.ID.String() + "/lines"

	w, env = e.do(t, http.MethodPost, linesPath, e.cashier, map[string]any{"barcode": "77"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view := decode[service.CheckoutView](t, env.Data)
	require.Len(t, view.Lines, 1)
	assert.True(t, view.Lines[0].Quantity.Equal(decimal.NewFromInt(1)))
	assert.True(t, view.GrossAmount.Equal(decimal.NewFromInt(5)))

	// an explicit zero is still rejected
	w, env = e.do(t, http.MethodPost, linesPath, e.cashier, map[string]any{"barcode": "77", "quantity": "0"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_QUANTITY", env.Kind)

	w, env = e.do(t, http.MethodPost, linesPath, e.cashier, map[string]any{"barcode": "77", "quantity": "-2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_QUANTITY", env.Kind)
}

func TestAPI_RejectedCommitCanRetrySameKey(t *testing.T) {
	e := newAPI(t)
	ctx := context.Background()

	customer := &entity.Customer{Name: "Farid"}
	require.NoError(t, e.store.Customers().Ensure(ctx, customer))
	product := &entity.Product{Barcode: "OIL", Name: "Oil", SalePrice: decimal.NewFromInt(150), Active: true}
	require.NoError(t, e.store.Catalog().Save(ctx, product))
	w, _ := e.do(t, http.MethodPost, "/api/v1/batches", e.manager, map[string]any{
		"product_id": product.ID, "label": "O1", "quantity": "4",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	account := "/api/v1/credit-accounts/" + customer.ID.String()
	w, _ = e.do(t, http.MethodPut, account, e.manager, map[string]any{"credit_limit": "100", "enabled": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	_, env := e.do(t, http.MethodPost, "/api/v1/checkouts", e.cashier, nil)
	co := decode[service.CheckoutView](t, env.Data)
	w, _ = e.do(t, http.MethodPost, "/api/v1/checkouts/"+co.ID.String()+"/lines", e.cashier, map[string]any{
		"product_id": product.ID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	commitPath := "/api/v1/checkouts/" + co.ID.String() + "/commit"
	commit := map[string]any{"payment_kind": "credit", "customer_id": customer.ID, "print": false}
	w, env = e.do(t, http.MethodPost, commitPath, e.cashier, commit, middleware.IdempotencyKeyHeader, "k1")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "LIMIT_EXCEEDED", env.Kind)

	w, _ = e.do(t, http.MethodPut, account, e.manager, map[string]any{"credit_limit": "200", "enabled": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = e.do(t, http.MethodPost, commitPath, e.cashier, commit, middleware.IdempotencyKeyHeader, "k1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Empty(t, w.Header().Get("X-Idempotency-Replayed"))
	committed := decode[service.CommitResult](t, env.Data)

	// now the success is what replays
	w, env = e.do(t, http.MethodPost, commitPath, e.cashier, commit, middleware.IdempotencyKeyHeader, "k1")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, committed.Sale.ID, decode[service.CommitResult](t, env.Data).Sale.ID)

	w, env = e.do(t, http.MethodGet, "/api/v1/sales?customer_id="+customer.ID.String(), e.cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[struct{ Items []any }](t, env.Data).Items, 1)

	w, env = e.do(t, http.MethodGet, "/api/v1/sales?customer_id="+uuid.NewString(), e.cashier, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[struct{ Items []any }](t, env.Data).Items)
}

func TestAPI_CommitRejectsMalformedCustomer(t *testing.T) {
	e := newAPI(t)

	_, env := e.do(t, http.MethodPost, "/api/v1/checkouts", e.cashier, nil)
	co := decode[service.CheckoutView](t, env.Data)

	w, _ := e.do(t, http.MethodPost, "/api/v1/checkouts/"+co.ID.String()+"/commit", e.cashier, map[string]any{
		"payment_kind": "cash", "customer_id": "not-a-uuid",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
