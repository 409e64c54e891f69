package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 金币流水类型
const (
	CoinPurchase      = "purchase"
	CoinSpent         = "spent"
	CoinReward        = "reward"
	CoinGiftSent      = "gift_sent"
	CoinGiftReceived  = "gift_received"
	CoinRefund        = "refund"
	CoinWithdrawal    = "withdrawal"
	CoinWithdrawalFee = "withdrawal_fee"
)

// CoinTransaction 金币流水。Amount 有符号，支出为负。
// 由支付处理器驱动的流水以 ExternalEventKey 做幂等去重，
// Description 仍保留 stripe_checkout_session_<id> 文本供历史查询。
type CoinTransaction struct {
	ID     int64  `gorm:"primaryKey" json:"id"`
	UserID int64  `gorm:"not null;index" json:"user_id"`
	Type   string `gorm:"size:20;not null;index" json:"type"`
	Amount int64  `gorm:"not null" json:"amount"`
	// 实付金额（订阅/金币包价格），非金币数
	Price            decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	PackName         string          `gorm:"size:100" json:"pack_name,omitempty"`
	Status           string          `gorm:"size:20;default:completed" json:"status"`
	Description      string          `gorm:"size:255" json:"description"`
	ExternalEventKey *string         `gorm:"size:255;uniqueIndex" json:"-"`
	CreatedAt        time.Time       `json:"created_at"`
}

func (CoinTransaction) TableName() string {
	return "coin_transactions"
}
