package repository

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoshaanShahid/AudioX-sub000/internal/model"
	"github.com/RoshaanShahid/AudioX-sub000/internal/testutil"
)

func TestCreatorRepository_AddEarnings(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewCreatorRepository(db)

	user := testutil.TestUser(t, db)
	creator := testutil.TestCreator(t, db, user.ID)

	require.NoError(t, repo.AddEarnings(creator.ID, decimal.NewFromInt(100), decimal.NewFromInt(90)))
	require.NoError(t, repo.AddEarnings(creator.ID, decimal.RequireFromString("9.99"), decimal.RequireFromString("8.99")))

	got, err := repo.GetByID(creator.ID)
	require.NoError(t, err)
	assert.Equal(t, "109.99", got.TotalEarning.StringFixed(2))
	assert.Equal(t, "98.99", got.AvailableBalance.StringFixed(2))
}

func TestCreatorRepository_AddAvailableBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewCreatorRepository(db)

	user := testutil.TestUser(t, db)
	creator := testutil.TestCreator(t, db, user.ID, testutil.WithBalance(decimal.NewFromInt(500)))

	require.NoError(t, repo.AddAvailableBalance(creator.ID, decimal.NewFromInt(200).Neg()))

	got, err := repo.GetByID(creator.ID)
	require.NoError(t, err)
	assert.Equal(t, "300.00", got.AvailableBalance.StringFixed(2))
	// 毛收入不随托管变动
	assert.True(t, got.TotalEarning.IsZero())
}

func TestCreatorRepository_ClearWithdrawalDate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewCreatorRepository(db)

	user := testutil.TestUser(t, db)
	creator := testutil.TestCreator(t, db, user.ID)

	first := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, repo.StampWithdrawalDate(creator.ID, first))

	// 时间戳已被更新的申请覆盖时，旧申请的撤销不清除
	second := time.Now().Truncate(time.Second)
	require.NoError(t, repo.StampWithdrawalDate(creator.ID, second))
	require.NoError(t, repo.ClearWithdrawalDate(creator.ID, first))

	got, err := repo.GetByID(creator.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastWithdrawalRequestDate)

	require.NoError(t, repo.ClearWithdrawalDate(creator.ID, second))
	got, err = repo.GetByID(creator.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastWithdrawalRequestDate)
}

func TestCreatorRepository_GetByUserID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewCreatorRepository(db)

	user := testutil.TestUser(t, db)
	creator := testutil.TestCreator(t, db, user.ID)

	got, err := repo.GetByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, creator.ID, got.ID)

	_, err = repo.GetByUserID(99999)
	assert.True(t, IsNotFound(err))
}

func TestUniqueEventKey(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewCoinRepository(db)

	user := testutil.TestUser(t, db)
	key := "stripe_checkout_session_cs_1"

	require.NoError(t, repo.Create(&model.CoinTransaction{
		UserID: user.ID, Type: model.CoinPurchase, Amount: 500,
		Status: "completed", Description: key, ExternalEventKey: &key,
	}))

	// 相同事件键的第二条流水被唯一索引拒绝
	err := repo.Create(&model.CoinTransaction{
		UserID: user.ID, Type: model.CoinPurchase, Amount: 500,
		Status: "completed", Description: key, ExternalEventKey: &key,
	})
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))

	exists, err := repo.ExistsByEventKey(key)
	require.NoError(t, err)
	assert.True(t, exists)

	// 无外部键的本地流水可以任意多条
	require.NoError(t, repo.Create(&model.CoinTransaction{
		UserID: user.ID, Type: model.CoinSpent, Amount: -10, Status: "completed",
	}))
	require.NoError(t, repo.Create(&model.CoinTransaction{
		UserID: user.ID, Type: model.CoinSpent, Amount: -10, Status: "completed",
	}))
}

func TestUniqueSessionID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewPurchaseRepository(db)

	user := testutil.TestUser(t, db)
	creatorUser := testutil.TestUser(t, db)
	creator := testutil.TestCreator(t, db, creatorUser.ID)
	audiobook := testutil.TestAudiobook(t, db, creator.ID)

	sessionID := "cs_unique"
	purchase := func() *model.AudiobookPurchase {
		return &model.AudiobookPurchase{
			UserID: user.ID, AudiobookID: audiobook.ID,
			AmountPaid:            decimal.NewFromInt(100),
			PlatformFeePercentage: decimal.NewFromInt(10),
			PlatformFeeAmount:     decimal.NewFromInt(10),
			CreatorShareAmount:    decimal.NewFromInt(90),
			ExternalSessionID:     &sessionID,
			Status:                model.PurchaseCompleted,
		}
	}

	require.NoError(t, repo.Create(purchase()))
	err := repo.Create(purchase())
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))

	exists, err := repo.ExistsBySessionID(sessionID)
	require.NoError(t, err)
	assert.True(t, exists)
}
