package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmkt/marketplace/internal/adapter/storage"
	"github.com/openmkt/marketplace/internal/core/service"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	svc := service.NewMarketService(
		storage.NewMemoryAdapter(),
		storage.NewMemoryCache(),
		storage.NewMemoryMetrics(),
		zerolog.Nop(),
		service.Options{AdminAccount: "admin", QueueSize: 100},
	)
	go func() {
		for range svc.TradeEvents() {
		}
	}()
	t.Cleanup(svc.Close)

	e := echo.New()
	e.Validator = &CustomValidator{Validator: validator.New()}
	NewMarketHandler(svc).Register(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestHTTP_MintAndQuery(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodPost, "/v1/assets", MintRequest{
		ID:          "a1",
		Owner:       "alice",
		RoyaltyRate: 10,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodGet, "/v1/assets/a1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var asset AssetResponse
	decode(t, rec, &asset)
	assert.Equal(t, "alice", asset.Owner)

	rec = do(t, e, http.MethodGet, "/v1/assets/a1/royalty", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var royalty RoyaltyResponse
	decode(t, rec, &royalty)
	assert.Equal(t, "alice", royalty.Creator)
	assert.Equal(t, 10, royalty.Rate)
}

func TestHTTP_MintConflictAndValidation(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodPost, "/v1/assets", MintRequest{ID: "a1", Owner: "alice"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, e, http.MethodPost, "/v1/assets", MintRequest{ID: "a1", Owner: "bob"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Missing owner fails request validation.
	rec = do(t, e, http.MethodPost, "/v1/assets", MintRequest{ID: "a2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Royalty above the cap is rejected by the registry.
	rec = do(t, e, http.MethodPost, "/v1/assets", MintRequest{ID: "a3", Owner: "alice", RoyaltyRate: 21})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTP_FullSettlementFlow(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodPost, "/v1/assets", MintRequest{ID: "a1", Owner: "alice", RoyaltyRate: 10})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, e, http.MethodPost, "/v1/accounts/bob/deposit", DepositRequest{Amount: 1500})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, e, http.MethodPost, "/v1/assets/a1/list", ListRequest{Seller: "alice", Price: 1000})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, e, http.MethodPost, "/v1/assets/a1/purchase", PurchaseRequest{Buyer: "bob"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var trade TradeResponse
	decode(t, rec, &trade)
	assert.Equal(t, int64(50), trade.Fee)
	assert.Equal(t, int64(100), trade.Royalty)
	assert.Equal(t, int64(850), trade.SellerProceeds)

	rec = do(t, e, http.MethodGet, "/v1/accounts/bob/balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balance BalanceResponse
	decode(t, rec, &balance)
	assert.Equal(t, int64(500), balance.Balance)

	rec = do(t, e, http.MethodGet, "/v1/assets/a1", nil)
	var asset AssetResponse
	decode(t, rec, &asset)
	assert.Equal(t, "bob", asset.Owner)

	rec = do(t, e, http.MethodGet, "/v1/assets/a1/listing", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing ListingResponse
	decode(t, rec, &listing)
	assert.False(t, listing.Active)
	assert.Equal(t, int64(0), listing.Price)
	assert.Equal(t, "bob", listing.Seller)

	rec = do(t, e, http.MethodGet, "/v1/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var metrics MetricsResponse
	decode(t, rec, &metrics)
	assert.Equal(t, MetricsResponse{Volume: 1000, Royalties: 100, Fees: 50}, metrics)
}

func TestHTTP_PurchaseErrors(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodPost, "/v1/assets", MintRequest{ID: "a1", Owner: "alice"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Not listed yet.
	rec = do(t, e, http.MethodPost, "/v1/assets/a1/purchase", PurchaseRequest{Buyer: "bob"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, e, http.MethodPost, "/v1/assets/a1/list", ListRequest{Seller: "alice", Price: 1000})
	require.Equal(t, http.StatusOK, rec.Code)

	// Broke buyer.
	rec = do(t, e, http.MethodPost, "/v1/assets/a1/purchase", PurchaseRequest{Buyer: "bob"})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	// Replayed request id.
	do(t, e, http.MethodPost, "/v1/accounts/bob/deposit", DepositRequest{Amount: 5000})
	rec = do(t, e, http.MethodPost, "/v1/assets/a1/purchase", PurchaseRequest{Buyer: "bob", RequestID: "r1"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, e, http.MethodPost, "/v1/assets/a1/purchase", PurchaseRequest{Buyer: "bob", RequestID: "r1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHTTP_ListingAuthorization(t *testing.T) {
	e := newTestServer(t)

	do(t, e, http.MethodPost, "/v1/assets", MintRequest{ID: "a1", Owner: "alice"})

	rec := do(t, e, http.MethodPost, "/v1/assets/a1/list", ListRequest{Seller: "bob", Price: 100})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, e, http.MethodPost, "/v1/assets/a1/list", ListRequest{Seller: "alice", Price: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPost, "/v1/assets/a1/delist", DelistRequest{Caller: "alice"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	do(t, e, http.MethodPost, "/v1/assets/a1/list", ListRequest{Seller: "alice", Price: 100})
	rec = do(t, e, http.MethodPost, "/v1/assets/a1/delist", DelistRequest{Caller: "bob"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHTTP_BridgeImport(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodPost, "/v1/bridge/import", ImportRequest{
		ID:         "br-1",
		Owner:      "alice",
		Chain:      "ethereum",
		ExternalID: "0xabc",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var asset AssetResponse
	decode(t, rec, &asset)
	assert.Equal(t, "ethereum", asset.Chain)

	rec = do(t, e, http.MethodGet, "/v1/assets/br-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &asset)
	assert.Equal(t, "ethereum", asset.Chain)
}

func TestHTTP_UnknownAssetAndBadID(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodGet, "/v1/assets/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// 101 characters exceeds the default string-mode bound.
	longID := make([]byte, 101)
	for i := range longID {
		longID[i] = 'x'
	}
	rec = do(t, e, http.MethodGet, "/v1/assets/"+string(longID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTP_TransferEndpoint(t *testing.T) {
	e := newTestServer(t)

	do(t, e, http.MethodPost, "/v1/assets", MintRequest{ID: "a1", Owner: "alice"})

	rec := do(t, e, http.MethodPost, "/v1/assets/a1/transfer", TransferRequest{From: "alice", To: "bob"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, e, http.MethodPost, "/v1/assets/a1/transfer", TransferRequest{From: "alice", To: "carol"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHTTP_Health(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
