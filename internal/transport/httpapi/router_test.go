package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/coinwallet/internal/platform/asset"
	"github.com/kislikjeka/coinwallet/internal/platform/simulation"
	"github.com/kislikjeka/coinwallet/internal/platform/user"
	"github.com/kislikjeka/coinwallet/internal/platform/wallet"
	apperrors "github.com/kislikjeka/coinwallet/internal/shared/errors"
	"github.com/kislikjeka/coinwallet/internal/transport/httpapi"
	"github.com/kislikjeka/coinwallet/internal/transport/httpapi/handler"
	"github.com/kislikjeka/coinwallet/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/coinwallet/pkg/logger"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// =============================================================================
// Mocks
// =============================================================================

type MockUserService struct{ mock.Mock }

var _ handler.UserService = (*MockUserService)(nil)

func (m *MockUserService) Register(ctx context.Context, email, password string) (*user.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (*user.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type MockWalletService struct{ mock.Mock }

var _ handler.WalletService = (*MockWalletService)(nil)

func (m *MockWalletService) AddAsset(ctx context.Context, userID uuid.UUID, in wallet.AddAssetInput) (*wallet.Holding, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Holding), args.Error(1)
}

func (m *MockWalletService) UpdateAsset(ctx context.Context, userID uuid.UUID, in wallet.UpdateAssetInput) (*wallet.Holding, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Holding), args.Error(1)
}

func (m *MockWalletService) Info(ctx context.Context, userID uuid.UUID) (*wallet.Info, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Info), args.Error(1)
}

type MockSimulator struct{ mock.Mock }

var _ handler.Simulator = (*MockSimulator)(nil)

func (m *MockSimulator) Simulate(ctx context.Context, req simulation.Request) (*simulation.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*simulation.Result), args.Error(1)
}

type MockPriceService struct{ mock.Mock }

var _ handler.PriceService = (*MockPriceService)(nil)

func (m *MockPriceService) GetCurrentPriceBySymbol(ctx context.Context, symbol string) (asset.AssetPrice, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(asset.AssetPrice), args.Error(1)
}

func (m *MockPriceService) GetHistoricalPrices(ctx context.Context, symbol string, start, end *time.Time) ([]asset.AssetPrice, error) {
	args := m.Called(ctx, symbol, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]asset.AssetPrice), args.Error(1)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

// =============================================================================
// Fixture
// =============================================================================

type fixture struct {
	router  http.Handler
	jwt     *middleware.JWTService
	users   *MockUserService
	wallets *MockWalletService
	sim     *MockSimulator
	prices  *MockPriceService
	userID  uuid.UUID
	token   string
}

func newFixture(t *testing.T, dbErr error) *fixture {
	t.Helper()
	log := logger.New("development", io.Discard)

	f := &fixture{
		jwt:     middleware.NewJWTService(testSecret, time.Hour),
		users:   new(MockUserService),
		wallets: new(MockWalletService),
		sim:     new(MockSimulator),
		prices:  new(MockPriceService),
		userID:  uuid.New(),
	}

	token, err := f.jwt.GenerateToken(f.userID, "user@example.com")
	require.NoError(t, err)
	f.token = token

	f.router = httpapi.NewRouter(httpapi.Config{
		Logger:            log,
		AllowedOrigins:    []string{"http://localhost:3000"},
		AuthHandler:       handler.NewAuthHandler(f.users, f.jwt, log),
		WalletHandler:     handler.NewWalletHandler(f.wallets, log),
		SimulationHandler: handler.NewSimulationHandler(f.sim, log),
		PriceHandler:      handler.NewPriceHandler(f.prices, log),
		HealthHandler:     handler.NewHealthHandler(map[string]handler.Pinger{"database": stubPinger{err: dbErr}}),
		JWTMiddleware:     middleware.JWTMiddleware(f.jwt),
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&body))
	return body
}

// =============================================================================
// Health
// =============================================================================

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health", "", false).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health/live", "", false).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health/ready", "", false).Code)
}

func TestHealth_NotReady(t *testing.T) {
	f := newFixture(t, errors.New("connection refused"))

	rec := f.do(t, http.MethodGet, "/health/ready", "", false)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_ready")
}

// =============================================================================
// Auth
// =============================================================================

func TestRegister(t *testing.T) {
	f := newFixture(t, nil)
	id := uuid.New()
	f.users.On("Register", mock.Anything, "a@b.io", "password1").
		Return(&user.User{ID: id, Email: "a@b.io"}, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/register", `{"email":"a@b.io","password":"password1"}`, false)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body handler.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, id.String(), body.ID)
	assert.Equal(t, "a@b.io", body.Email)
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		svcErr   error
		wantCode int
		wantErr  string
	}{
		{"malformed", `{"email":`, nil, http.StatusBadRequest, apperrors.ErrCodeMalformedRequest},
		{"missing password", `{"email":"a@b.io"}`, nil, http.StatusBadRequest, apperrors.ErrCodeValidation},
		{"duplicate", `{"email":"a@b.io","password":"password1"}`, user.ErrUserAlreadyExists, http.StatusConflict, apperrors.ErrCodeUserAlreadyExists},
		{"short password", `{"email":"a@b.io","password":"x"}`, user.ErrPasswordTooShort, http.StatusBadRequest, apperrors.ErrCodeValidation},
		{"internal", `{"email":"a@b.io","password":"password1"}`, errors.New("db down"), http.StatusInternalServerError, apperrors.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.users.On("Register", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.svcErr)

			rec := f.do(t, http.MethodPost, "/api/v1/auth/register", tt.body, false)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantErr, decodeError(t, rec).Error)
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t, nil)
	id := uuid.New()
	f.users.On("Login", mock.Anything, "a@b.io", "password1").
		Return(&user.User{ID: id, Email: "a@b.io"}, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"a@b.io","password":"password1"}`, false)

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	claims, err := f.jwt.ValidateToken(body.Token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
}

func TestLogin_BadCredentials(t *testing.T) {
	f := newFixture(t, nil)
	f.users.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil, user.ErrBadCredentials)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"a@b.io","password":"nope"}`, false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperrors.ErrCodeBadCredentials, decodeError(t, rec).Error)
}

// =============================================================================
// Wallet
// =============================================================================

func TestWallet_RequiresToken(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/wallet/info", "", false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, decodeError(t, rec).Error)
	f.wallets.AssertNotCalled(t, "Info", mock.Anything, mock.Anything)
}

func TestWallet_Info(t *testing.T) {
	f := newFixture(t, nil)
	ts := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	f.wallets.On("Info", mock.Anything, f.userID).Return(&wallet.Info{
		ID: f.userID,
		Original: wallet.Balance{Total: decimal.RequireFromString("100"), Assets: []asset.Valuation{
			{Symbol: "BTC", Quantity: decimal.RequireFromString("1"), Price: decimal.RequireFromString("100"), Value: decimal.RequireFromString("100")},
		}},
		Current: wallet.Balance{Total: decimal.RequireFromString("150.5"), Assets: []asset.Valuation{
			{Symbol: "BTC", Quantity: decimal.RequireFromString("1"), Price: decimal.RequireFromString("150.5"), Value: decimal.RequireFromString("150.5"), Timestamp: &ts},
		}},
	}, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/wallet/info", "", true)

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.WalletInfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, f.userID.String(), body.ID)
	assert.Equal(t, "150.5", body.Current.Total.String())
	require.Len(t, body.Current.Assets, 1)
	require.NotNil(t, body.Current.Assets[0].Timestamp)
	assert.Nil(t, body.Original.Assets[0].Timestamp)
	assert.Contains(t, rec.Body.String(), `"total":"150.5"`)
}

func TestWallet_AddAsset(t *testing.T) {
	f := newFixture(t, nil)
	now := time.Now().UTC()
	f.wallets.On("AddAsset", mock.Anything, f.userID, mock.MatchedBy(func(in wallet.AddAssetInput) bool {
		return in.Symbol == "btc" && in.Quantity.Equal(decimal.RequireFromString("0.5"))
	})).Return(&wallet.Holding{
		UserID: f.userID, AssetID: "BTC",
		Quantity: decimal.RequireFromString("0.5"), PurchasePrice: decimal.RequireFromString("50000"),
		CreatedAt: now, UpdatedAt: now,
	}, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/wallet/asset", `{"symbol":"btc","price":"50000","quantity":0.5}`, true)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body handler.HoldingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "BTC", body.Symbol)
}

func TestWallet_AddAsset_AlreadyExists(t *testing.T) {
	f := newFixture(t, nil)
	f.wallets.On("AddAsset", mock.Anything, f.userID, mock.Anything).
		Return(nil, apperrors.AssetAlreadyExists("BTC", wallet.ErrHoldingExists))

	rec := f.do(t, http.MethodPost, "/api/v1/wallet/asset", `{"symbol":"BTC","price":"1","quantity":"1"}`, true)

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, apperrors.ErrCodeAssetAlreadyExists, body.Error)
	assert.Equal(t, "BTC", body.Details["symbol"])
}

func TestWallet_MissingAmounts(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		body      string
		wantField string
	}{
		{"add without price", http.MethodPost, `{"symbol":"BTC","quantity":"1"}`, "price"},
		{"add with null price", http.MethodPost, `{"symbol":"BTC","price":null,"quantity":"1"}`, "price"},
		{"add without quantity", http.MethodPost, `{"symbol":"BTC","price":"100"}`, "quantity"},
		{"add with null quantity", http.MethodPost, `{"symbol":"BTC","price":"100","quantity":null}`, "quantity"},
		{"update without price", http.MethodPut, `{"symbol":"BTC","amount":"2"}`, "price"},
		{"update with null amount", http.MethodPut, `{"symbol":"BTC","price":"1","amount":null}`, "amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)

			rec := f.do(t, tt.method, "/api/v1/wallet/asset", tt.body, true)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, apperrors.ErrCodeValidation, body.Error)
			assert.Equal(t, tt.wantField+" is required", body.Message)
			assert.Equal(t, tt.wantField, body.Details["field"])
			f.wallets.AssertNotCalled(t, "AddAsset", mock.Anything, mock.Anything, mock.Anything)
			f.wallets.AssertNotCalled(t, "UpdateAsset", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestWallet_AddAsset_ZeroAmountsAccepted(t *testing.T) {
	f := newFixture(t, nil)
	now := time.Now().UTC()
	f.wallets.On("AddAsset", mock.Anything, f.userID, mock.MatchedBy(func(in wallet.AddAssetInput) bool {
		return in.Price.IsZero() && in.Quantity.IsZero()
	})).Return(&wallet.Holding{UserID: f.userID, AssetID: "BTC", CreatedAt: now, UpdatedAt: now}, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/wallet/asset", `{"symbol":"BTC","price":"0","quantity":0}`, true)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestWallet_UpdateAsset_NotFound(t *testing.T) {
	f := newFixture(t, nil)
	f.wallets.On("UpdateAsset", mock.Anything, f.userID, mock.Anything).
		Return(nil, apperrors.AssetNotFound("SOL", wallet.ErrHoldingNotFound))

	rec := f.do(t, http.MethodPut, "/api/v1/wallet/asset", `{"symbol":"SOL","price":"1","amount":"2"}`, true)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperrors.ErrCodeAssetNotFound, decodeError(t, rec).Error)
}

// =============================================================================
// Simulation
// =============================================================================

func TestSimulation(t *testing.T) {
	f := newFixture(t, nil)
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.sim.On("Simulate", mock.Anything, mock.MatchedBy(func(req simulation.Request) bool {
		return req.Timestamp.Equal(at) && len(req.Assets) == 1 && req.Assets[0].Symbol == "ETH"
	})).Return(&simulation.Result{
		Timestamp:        at,
		Total:            decimal.RequireFromString("2000"),
		BestAsset:        "ETH",
		BestPerformance:  decimal.RequireFromString("100"),
		WorstAsset:       "ETH",
		WorstPerformance: decimal.RequireFromString("100"),
		Assets:           []asset.Valuation{{Symbol: "ETH", Value: decimal.RequireFromString("2000")}},
	}, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/simulation",
		`{"timestamp":"2024-01-01T00:00:00Z","assets":[{"symbol":"ETH","quantity":"1","value":"1000"}]}`, true)

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.SimulationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ETH", body.BestAsset)
	assert.Equal(t, "2000", body.Total.String())
}

func TestSimulation_MissingAmounts(t *testing.T) {
	tests := []struct {
		name      string
		assets    string
		wantField string
		wantIndex string
	}{
		{"missing value", `[{"symbol":"BTC","quantity":"1"}]`, "value", "0"},
		{"null value", `[{"symbol":"BTC","quantity":"1","value":null}]`, "value", "0"},
		{"missing quantity", `[{"symbol":"BTC","value":"100"}]`, "quantity", "0"},
		{"null quantity and value", `[{"symbol":"BTC","quantity":null,"value":null}]`, "quantity", "0"},
		{"second asset incomplete", `[{"symbol":"BTC","quantity":"1","value":"1"},{"symbol":"ETH","quantity":"2"}]`, "value", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)

			rec := f.do(t, http.MethodPost, "/api/v1/simulation",
				`{"timestamp":"2024-01-01T00:00:00Z","assets":`+tt.assets+`}`, true)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, apperrors.ErrCodeValidation, body.Error)
			assert.Equal(t, tt.wantField+" is required", body.Message)
			assert.Equal(t, tt.wantIndex, body.Details["asset"])
			f.sim.AssertNotCalled(t, "Simulate", mock.Anything, mock.Anything)
		})
	}
}

func TestSimulation_PriceFetchError(t *testing.T) {
	f := newFixture(t, nil)
	f.sim.On("Simulate", mock.Anything, mock.Anything).
		Return(nil, apperrors.PriceFetch("provider unavailable", errors.New("status 502")))

	rec := f.do(t, http.MethodPost, "/api/v1/simulation",
		`{"timestamp":"2024-01-01T00:00:00Z","assets":[{"symbol":"ETH","quantity":"1","value":"1"}]}`, true)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, apperrors.ErrCodePriceFetch, decodeError(t, rec).Error)
}

// =============================================================================
// Prices
// =============================================================================

func TestPrices_Current(t *testing.T) {
	f := newFixture(t, nil)
	ts := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	f.prices.On("GetCurrentPriceBySymbol", mock.Anything, "BTC").
		Return(asset.AssetPrice{Timestamp: ts, Price: decimal.RequireFromString("94000.12")}, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/prices/btc", "", true)

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.PriceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "94000.12", body.Price.String())
	assert.True(t, ts.Equal(body.Timestamp))
}

func TestPrices_Current_RateLimited(t *testing.T) {
	f := newFixture(t, nil)
	f.prices.On("GetCurrentPriceBySymbol", mock.Anything, "BTC").Return(asset.AssetPrice{},
		apperrors.PriceFetch("price provider rate limit exceeded, retry later", asset.ErrProviderRateLimited).
			WithDetail("reason", "rate_limited"))

	rec := f.do(t, http.MethodGet, "/api/v1/prices/btc", "", true)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, apperrors.ErrCodePriceFetch, body.Error)
	assert.Equal(t, "rate_limited", body.Details["reason"])
}

func TestPrices_History(t *testing.T) {
	f := newFixture(t, nil)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	f.prices.On("GetHistoricalPrices", mock.Anything, "ETH",
		mock.MatchedBy(func(s *time.Time) bool { return s != nil && s.Equal(start) }),
		mock.MatchedBy(func(e *time.Time) bool { return e != nil && e.Equal(end) }),
	).Return([]asset.AssetPrice{
		{Timestamp: start, Price: decimal.RequireFromString("3300")},
		{Timestamp: start.Add(24 * time.Hour), Price: decimal.RequireFromString("3400")},
	}, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/prices/eth/history?start=2025-01-01T00:00:00Z&end=2025-01-03T00:00:00Z", "", true)

	require.Equal(t, http.StatusOK, rec.Code)
	var body []handler.PriceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 2)
}

func TestPrices_History_BadTimestamp(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/prices/eth/history?start=yesterday", "", true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, decodeError(t, rec).Error)
	f.prices.AssertNotCalled(t, "GetHistoricalPrices", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
