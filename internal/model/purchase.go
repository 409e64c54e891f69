package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 购买状态
const (
	PurchasePending   = "pending"
	PurchaseCompleted = "completed"
	PurchaseFailed    = "failed"
	PurchaseRefunded  = "refunded"
)

// AudiobookPurchase 有声书购买记录。完成后只追加不修改，
// 费率与分成金额在购买时刻快照，后续调价不改写历史。
type AudiobookPurchase struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	UserID      int64           `gorm:"not null;index:idx_purchase_user_book" json:"user_id"`
	AudiobookID int64           `gorm:"not null;index:idx_purchase_user_book;index" json:"audiobook_id"`
	AmountPaid  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount_paid"`
	// 购买时刻的平台费率快照
	PlatformFeePercentage decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"platform_fee_percentage"`
	PlatformFeeAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"platform_fee_amount"`
	CreatorShareAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"creator_share_amount"`
	// 外部会话 ID 即幂等键，非空时唯一
	ExternalSessionID       *string   `gorm:"size:255;uniqueIndex" json:"external_session_id,omitempty"`
	ExternalPaymentIntentID *string   `gorm:"size:255" json:"external_payment_intent_id,omitempty"`
	Status                  string    `gorm:"size:20;default:pending;index" json:"status"` // pending, completed, failed, refunded
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

func (AudiobookPurchase) TableName() string {
	return "audiobook_purchases"
}
