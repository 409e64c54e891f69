package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/RoshaanShahid/AudioX-sub000/internal/model"
	"github.com/RoshaanShahid/AudioX-sub000/internal/repository"
	"github.com/RoshaanShahid/AudioX-sub000/internal/testutil"
)

func setupCreatorService(t *testing.T, db *gorm.DB) *CreatorService {
	t.Helper()
	return NewCreatorService(
		db,
		repository.NewCreatorRepository(db),
		repository.NewEarningRepository(db),
		repository.NewWithdrawalRepository(db),
	)
}

func TestCreatorService_GetByUserID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := setupCreatorService(t, db)

	user := testutil.TestUser(t, db)
	creator := testutil.TestCreator(t, db, user.ID)

	got, err := svc.GetByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, creator.ID, got.ID)

	nonCreator := testutil.TestUser(t, db)
	_, err = svc.GetByUserID(nonCreator.ID)
	assert.ErrorIs(t, err, ErrNotACreator)
}

func TestCreatorService_AddAccount_FirstIsPrimary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := setupCreatorService(t, db)

	user := testutil.TestUser(t, db)
	creator := testutil.TestCreator(t, db, user.ID)

	// 第一个账户即使未指定也自动成为主账户
	account, err := svc.AddAccount(creator.ID, model.AccountBank, "Ali Raza", "PK36SCBL0000001123456702", false)
	require.NoError(t, err)
	assert.True(t, account.IsPrimary)
}

func TestCreatorService_AddAccount_SwitchesPrimary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := setupCreatorService(t, db)

	user := testutil.TestUser(t, db)
	creator := testutil.TestCreator(t, db, user.ID)

	first, err := svc.AddAccount(creator.ID, model.AccountBank, "Ali Raza", "PK36SCBL0000001123456702", true)
	require.NoError(t, err)
	second, err := svc.AddAccount(creator.ID, model.AccountJazzCash, "Ali Raza", "03001234567", true)
	require.NoError(t, err)

	var gotFirst, gotSecond model.WithdrawalAccount
	require.NoError(t, db.First(&gotFirst, first.ID).Error)
	require.NoError(t, db.First(&gotSecond, second.ID).Error)
	assert.False(t, gotFirst.IsPrimary)
	assert.True(t, gotSecond.IsPrimary)
}

func TestCreatorService_AddAccount_InvalidIdentifier(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := setupCreatorService(t, db)

	user := testutil.TestUser(t, db)
	creator := testutil.TestCreator(t, db, user.ID)

	// 银行账户必须是合法 IBAN
	_, err := svc.AddAccount(creator.ID, model.AccountBank, "Ali Raza", "12345", false)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	// 移动钱包必须是本地手机号
	_, err = svc.AddAccount(creator.ID, model.AccountEasyPaisa, "Ali Raza", "0123", false)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = svc.AddAccount(creator.ID, model.AccountEasyPaisa, "Ali Raza", "03459876543", false)
	assert.NoError(t, err)
}

func TestCreatorService_SetPrimaryAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := setupCreatorService(t, db)

	user := testutil.TestUser(t, db)
	creator := testutil.TestCreator(t, db, user.ID)

	first, err := svc.AddAccount(creator.ID, model.AccountBank, "Ali Raza", "PK36SCBL0000001123456702", true)
	require.NoError(t, err)
	second, err := svc.AddAccount(creator.ID, model.AccountNayaPay, "Ali Raza", "03001234567", false)
	require.NoError(t, err)

	require.NoError(t, svc.SetPrimaryAccount(creator.ID, second.ID))

	var gotFirst, gotSecond model.WithdrawalAccount
	require.NoError(t, db.First(&gotFirst, first.ID).Error)
	require.NoError(t, db.First(&gotSecond, second.ID).Error)
	assert.False(t, gotFirst.IsPrimary)
	assert.True(t, gotSecond.IsPrimary)
}

func TestCreatorService_SetPrimaryAccount_Foreign(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := setupCreatorService(t, db)

	user := testutil.TestUser(t, db)
	creator := testutil.TestCreator(t, db, user.ID)
	otherUser := testutil.TestUser(t, db)
	other := testutil.TestCreator(t, db, otherUser.ID)
	foreign := testutil.TestWithdrawalAccount(t, db, other.ID)

	assert.ErrorIs(t, svc.SetPrimaryAccount(creator.ID, foreign.ID), ErrAccountNotFound)
}

func TestCreatorService_DeleteAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := setupCreatorService(t, db)

	user := testutil.TestUser(t, db)
	creator := testutil.TestCreator(t, db, user.ID)
	account := testutil.TestWithdrawalAccount(t, db, creator.ID)

	require.NoError(t, svc.DeleteAccount(creator.ID, account.ID))

	var count int64
	db.Model(&model.WithdrawalAccount{}).Where("id = ?", account.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreatorService_DeleteAccount_InUse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := setupCreatorService(t, db)

	user := testutil.TestUser(t, db)
	creator := testutil.TestCreator(t, db, user.ID)
	account := testutil.TestWithdrawalAccount(t, db, creator.ID)
	testutil.TestWithdrawalRequest(t, db, creator.ID, account.ID, decimal.NewFromInt(100))

	assert.ErrorIs(t, svc.DeleteAccount(creator.ID, account.ID), ErrAccountInUse)

	// 终态申请不阻止删除
	require.NoError(t, db.Model(&model.WithdrawalRequest{}).
		Where("account_id = ?", account.ID).
		Update("status", model.WithdrawalRejected).Error)
	assert.NoError(t, svc.DeleteAccount(creator.ID, account.ID))
}

func TestCreatorService_ListEarnings(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	svc := setupCreatorService(t, db)

	user := testutil.TestUser(t, db)
	creator := testutil.TestCreator(t, db, user.ID)

	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&model.CreatorEarning{
			CreatorID:    creator.ID,
			AmountEarned: decimal.NewFromInt(int64(10 + i)),
			Type:         model.EarningSale,
			EarnedAt:     time.Now(),
		}).Error)
	}

	items, total, err := svc.ListEarnings(creator.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 2)
}
