package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/RoshaanShahid/AudioX-sub000/internal/model"
	"github.com/RoshaanShahid/AudioX-sub000/internal/repository"
	"github.com/RoshaanShahid/AudioX-sub000/internal/testutil"
)

func setupCoinService(t *testing.T, db *gorm.DB) *CoinService {
	t.Helper()
	return NewCoinService(db, repository.NewUserRepository(db), repository.NewCoinRepository(db))
}

func userCoins(t *testing.T, db *gorm.DB, userID int64) int64 {
	t.Helper()
	var user model.User
	require.NoError(t, db.First(&user, userID).Error)
	return user.Coins
}

func TestCoinService_Spend(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := setupCoinService(t, db)

	user := testutil.TestUser(t, db, testutil.WithCoins(100))
	require.NoError(t, svc.SpendCoins(user.ID, 30, "解锁章节"))

	assert.Equal(t, int64(70), userCoins(t, db, user.ID))

	var txn model.CoinTransaction
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&txn).Error)
	assert.Equal(t, model.CoinSpent, txn.Type)
	assert.Equal(t, int64(-30), txn.Amount)
}

func TestCoinService_Spend_Insufficient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := setupCoinService(t, db)

	user := testutil.TestUser(t, db, testutil.WithCoins(10))
	err := svc.SpendCoins(user.ID, 30, "解锁章节")
	assert.ErrorIs(t, err, ErrInsufficientCoins)
	assert.Equal(t, int64(10), userCoins(t, db, user.ID))
}

func TestCoinService_Spend_InvalidAmount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := setupCoinService(t, db)

	assert.ErrorIs(t, svc.SpendCoins(1, 0, ""), ErrInsufficientCoins)
	assert.ErrorIs(t, svc.SpendCoins(1, -5, ""), ErrInsufficientCoins)
}

func TestCoinService_Gift(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := setupCoinService(t, db)

	sender := testutil.TestUser(t, db, testutil.WithCoins(100))
	recipient := testutil.TestUser(t, db)

	require.NoError(t, svc.GiftCoins(sender.ID, recipient.ID, 40))

	assert.Equal(t, int64(60), userCoins(t, db, sender.ID))
	assert.Equal(t, int64(40), userCoins(t, db, recipient.ID))

	// 成对流水
	var sent, received model.CoinTransaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", sender.ID, model.CoinGiftSent).First(&sent).Error)
	require.NoError(t, db.Where("user_id = ? AND type = ?", recipient.ID, model.CoinGiftReceived).First(&received).Error)
	assert.Equal(t, int64(-40), sent.Amount)
	assert.Equal(t, int64(40), received.Amount)
}

func TestCoinService_Gift_Insufficient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := setupCoinService(t, db)

	sender := testutil.TestUser(t, db, testutil.WithCoins(10))
	recipient := testutil.TestUser(t, db)

	assert.ErrorIs(t, svc.GiftCoins(sender.ID, recipient.ID, 40), ErrInsufficientCoins)
	assert.Equal(t, int64(10), userCoins(t, db, sender.ID))
	assert.Equal(t, int64(0), userCoins(t, db, recipient.ID))
}

func TestCoinService_Gift_ToSelf(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := setupCoinService(t, db)

	user := testutil.TestUser(t, db, testutil.WithCoins(100))
	assert.ErrorIs(t, svc.GiftCoins(user.ID, user.ID, 10), ErrGiftToSelf)
}

func TestCoinService_Gift_RecipientMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := setupCoinService(t, db)

	sender := testutil.TestUser(t, db, testutil.WithCoins(100))
	err := svc.GiftCoins(sender.ID, 99999, 10)
	assert.ErrorIs(t, err, ErrRecipientNotFound)
	assert.Equal(t, int64(100), userCoins(t, db, sender.ID))
}

func TestCoinService_ListTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := setupCoinService(t, db)

	user := testutil.TestUser(t, db, testutil.WithCoins(100))
	require.NoError(t, svc.SpendCoins(user.ID, 10, "a"))
	require.NoError(t, svc.SpendCoins(user.ID, 20, "b"))

	items, total, err := svc.ListTransactions(user.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)
}
