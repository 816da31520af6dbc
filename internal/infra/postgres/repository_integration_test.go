//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/coinwallet/internal/platform/asset"
	"github.com/kislikjeka/coinwallet/internal/platform/user"
	"github.com/kislikjeka/coinwallet/internal/platform/wallet"
	"github.com/kislikjeka/coinwallet/testutil/testdb"
)

var testDB *testdb.TestDB

func TestMain(m *testing.M) {
	ctx := context.Background()

	var err error
	testDB, err = testdb.NewTestDB(ctx)
	if err != nil {
		panic("failed to create test database: " + err.Error())
	}

	code := m.Run()

	_ = testDB.Close(ctx)
	if code != 0 {
		panic("tests failed")
	}
}

func setupTest(t *testing.T) context.Context {
	ctx := context.Background()
	require.NoError(t, testDB.Reset(ctx))
	return ctx
}

func createTestUser(t *testing.T, ctx context.Context) *user.User {
	u := &user.User{
		ID:        uuid.New(),
		Email:     "test-" + uuid.NewString()[:8] + "@example.com",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, u.SetPassword("SecureP@ssw0rd"))
	require.NoError(t, NewUserRepository(testDB.Pool).Create(ctx, u))
	return u
}

func createTestAsset(t *testing.T, ctx context.Context, id, price string) *asset.Asset {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &asset.Asset{ID: id, USDPrice: decimal.RequireFromString(price), CreatedAt: ts, UpdatedAt: ts}
	require.NoError(t, NewAssetRepository(testDB.Pool).Create(ctx, a))
	return a
}

// =============================================================================
// Users
// =============================================================================

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := setupTest(t)
	repo := NewUserRepository(testDB.Pool)
	u := createTestUser(t, ctx)

	byEmail, err := repo.GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Nil(t, byEmail.LastLoginAt)

	taken, err := repo.EmailTaken(ctx, u.Email)
	require.NoError(t, err)
	assert.True(t, taken)

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.RecordLogin(ctx, u.ID, at))

	after, err := repo.GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.NotNil(t, after.LastLoginAt)
	assert.True(t, at.Equal(*after.LastLoginAt))
	assert.True(t, at.Equal(after.UpdatedAt))
}

func TestUserRepository_RecordLogin_Unknown(t *testing.T) {
	ctx := setupTest(t)

	err := NewUserRepository(testDB.Pool).RecordLogin(ctx, uuid.New(), time.Now().UTC())

	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := setupTest(t)
	repo := NewUserRepository(testDB.Pool)
	u := createTestUser(t, ctx)

	dup := &user.User{ID: uuid.New(), Email: u.Email, PasswordHash: u.PasswordHash}
	err := repo.Create(ctx, dup)

	assert.ErrorIs(t, err, user.ErrUserAlreadyExists)
}

func TestUserRepository_NotFound(t *testing.T) {
	ctx := setupTest(t)

	_, err := NewUserRepository(testDB.Pool).GetByEmail(ctx, "nobody@example.com")

	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

// =============================================================================
// Assets
// =============================================================================

func TestAssetRepository_CreateGetSave(t *testing.T) {
	ctx := setupTest(t)
	repo := NewAssetRepository(testDB.Pool)
	createTestAsset(t, ctx, "BTC", "94012.12345678")

	got, err := repo.GetByID(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, "94012.12345678", got.USDPrice.String())

	got.USDPrice = decimal.RequireFromString("95000.5")
	got.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.Save(ctx, got))

	saved, err := repo.GetByID(ctx, "BTC")
	require.NoError(t, err)
	assert.True(t, saved.USDPrice.Equal(decimal.RequireFromString("95000.5")))
	assert.True(t, saved.UpdatedAt.Equal(got.UpdatedAt))
}

func TestAssetRepository_Duplicate(t *testing.T) {
	ctx := setupTest(t)
	a := createTestAsset(t, ctx, "ETH", "3000")

	err := NewAssetRepository(testDB.Pool).Create(ctx, a)

	assert.ErrorIs(t, err, asset.ErrDuplicateAsset)
}

func TestAssetRepository_GetByIDs(t *testing.T) {
	ctx := setupTest(t)
	repo := NewAssetRepository(testDB.Pool)
	createTestAsset(t, ctx, "BTC", "1")
	createTestAsset(t, ctx, "ETH", "2")

	assets, err := repo.GetByIDs(ctx, []string{"ETH", "BTC", "MISSING"})

	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "BTC", assets[0].ID)
	assert.Equal(t, "ETH", assets[1].ID)
}

func TestAssetRepository_StreamAll(t *testing.T) {
	ctx := setupTest(t)
	repo := NewAssetRepository(testDB.Pool)
	for _, id := range []string{"SOL", "ADA", "BTC"} {
		createTestAsset(t, ctx, id, "1")
	}

	var ids []string
	for a, err := range repo.StreamAll(ctx) {
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"ADA", "BTC", "SOL"}, ids)

	count := 0
	for range repo.StreamAll(ctx) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

// =============================================================================
// Holdings
// =============================================================================

func TestHoldingRepository_Lifecycle(t *testing.T) {
	ctx := setupTest(t)
	repo := NewHoldingRepository(testDB.Pool)
	u := createTestUser(t, ctx)
	createTestAsset(t, ctx, "BTC", "100000")

	now := time.Now().UTC().Truncate(time.Microsecond)
	h := &wallet.Holding{
		UserID:        u.ID,
		AssetID:       "BTC",
		Quantity:      decimal.RequireFromString("0.12345678"),
		PurchasePrice: decimal.RequireFromString("50000"),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, repo.Create(ctx, h))
	assert.ErrorIs(t, repo.Create(ctx, h), wallet.ErrHoldingExists)

	got, err := repo.GetHolding(ctx, u.ID, "BTC")
	require.NoError(t, err)
	assert.Equal(t, "0.12345678", got.Quantity.String())

	got.Quantity = decimal.RequireFromString("2")
	require.NoError(t, repo.Update(ctx, got))

	list, err := repo.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2", list[0].Quantity.String())
}

func TestHoldingRepository_NotFound(t *testing.T) {
	ctx := setupTest(t)
	repo := NewHoldingRepository(testDB.Pool)
	u := createTestUser(t, ctx)

	_, err := repo.GetHolding(ctx, u.ID, "BTC")
	assert.ErrorIs(t, err, wallet.ErrHoldingNotFound)

	createTestAsset(t, ctx, "BTC", "1")
	err = repo.Update(ctx, &wallet.Holding{UserID: u.ID, AssetID: "BTC"})
	assert.ErrorIs(t, err, wallet.ErrHoldingNotFound)

	list, err := repo.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
