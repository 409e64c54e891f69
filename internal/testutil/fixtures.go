package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/RoshaanShahid/AudioX-sub000/internal/model"
)

var fixtureSeq int64

func nextSeq() int64 {
	return atomic.AddInt64(&fixtureSeq, 1)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	seq := nextSeq()
	email := fmt.Sprintf("test_%d@example.com", seq)
	user := &model.User{
		Username:         fmt.Sprintf("testuser_%d", seq),
		Email:            &email,
		Coins:            0,
		SubscriptionTier: model.TierFree,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithCoins 设置金币余额
func WithCoins(coins int64) func(*model.User) {
	return func(u *model.User) {
		u.Coins = coins
	}
}

// WithTier 设置订阅等级
func WithTier(tier string) func(*model.User) {
	return func(u *model.User) {
		u.SubscriptionTier = tier
	}
}

// AsAdmin 标记为管理员
func AsAdmin() func(*model.User) {
	return func(u *model.User) {
		u.IsAdmin = true
	}
}

// TestCreator 创建测试创作者（默认已审核通过）
func TestCreator(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Creator)) *model.Creator {
	t.Helper()

	creator := &model.Creator{
		UserID:           userID,
		Handle:           fmt.Sprintf("creator_%d", nextSeq()),
		Status:           model.CreatorApproved,
		TotalEarning:     decimal.Zero,
		AvailableBalance: decimal.Zero,
	}

	for _, opt := range opts {
		opt(creator)
	}

	if err := db.Create(creator).Error; err != nil {
		t.Fatalf("Failed to create test creator: %v", err)
	}

	return creator
}

// WithCreatorStatus 设置审核状态
func WithCreatorStatus(status string) func(*model.Creator) {
	return func(c *model.Creator) {
		c.Status = status
	}
}

// WithBalance 设置可提现余额
func WithBalance(balance decimal.Decimal) func(*model.Creator) {
	return func(c *model.Creator) {
		c.AvailableBalance = balance
	}
}

// TestAudiobook 创建测试有声书（默认付费）
func TestAudiobook(t *testing.T, db *gorm.DB, creatorID int64, opts ...func(*model.Audiobook)) *model.Audiobook {
	t.Helper()

	seq := nextSeq()
	audiobook := &model.Audiobook{
		CreatorID:   creatorID,
		Title:       fmt.Sprintf("Test Audiobook %d", seq),
		Slug:        fmt.Sprintf("test-audiobook-%d", seq),
		PricingMode: model.PricingPaid,
		Price:       decimal.NewFromInt(100),
		Published:   true,
	}

	for _, opt := range opts {
		opt(audiobook)
	}

	if err := db.Create(audiobook).Error; err != nil {
		t.Fatalf("Failed to create test audiobook: %v", err)
	}

	return audiobook
}

// WithPrice 设置价格
func WithPrice(price decimal.Decimal) func(*model.Audiobook) {
	return func(a *model.Audiobook) {
		a.Price = price
	}
}

// AsFree 设置为免费定价
func AsFree() func(*model.Audiobook) {
	return func(a *model.Audiobook) {
		a.PricingMode = model.PricingFree
		a.Price = decimal.Zero
	}
}

// TestWithdrawalAccount 创建测试提现账户
func TestWithdrawalAccount(t *testing.T, db *gorm.DB, creatorID int64, opts ...func(*model.WithdrawalAccount)) *model.WithdrawalAccount {
	t.Helper()

	account := &model.WithdrawalAccount{
		CreatorID:    creatorID,
		Type:         model.AccountBank,
		AccountTitle: "Test Account",
		Identifier:   "PK36SCBL0000001123456702",
		IsPrimary:    true,
	}

	for _, opt := range opts {
		opt(account)
	}

	if err := db.Create(account).Error; err != nil {
		t.Fatalf("Failed to create test withdrawal account: %v", err)
	}

	return account
}

// WithAccountType 设置账户类型与标识
func WithAccountType(accountType, identifier string) func(*model.WithdrawalAccount) {
	return func(a *model.WithdrawalAccount) {
		a.Type = accountType
		a.Identifier = identifier
	}
}

// TestWithdrawalRequest 创建测试提现申请（默认 pending）
func TestWithdrawalRequest(t *testing.T, db *gorm.DB, creatorID, accountID int64, amount decimal.Decimal, opts ...func(*model.WithdrawalRequest)) *model.WithdrawalRequest {
	t.Helper()

	request := &model.WithdrawalRequest{
		CreatorID:   creatorID,
		AccountID:   accountID,
		Amount:      amount,
		Status:      model.WithdrawalPending,
		RequestDate: time.Now(),
	}

	for _, opt := range opts {
		opt(request)
	}

	if err := db.Create(request).Error; err != nil {
		t.Fatalf("Failed to create test withdrawal request: %v", err)
	}

	return request
}

// WithRequestStatus 设置申请状态
func WithRequestStatus(status string) func(*model.WithdrawalRequest) {
	return func(r *model.WithdrawalRequest) {
		r.Status = status
	}
}

// WithRequestDate 设置申请时间
func WithRequestDate(at time.Time) func(*model.WithdrawalRequest) {
	return func(r *model.WithdrawalRequest) {
		r.RequestDate = at
	}
}
