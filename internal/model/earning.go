package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 收益类型
const (
	EarningSale       = "sale"
	EarningView       = "view"
	EarningBonus      = "bonus"
	EarningAdjustment = "adjustment"
)

// CreatorEarning 创作者收益流水。销售类收益与购买记录一一对应。
// 冗余保存当时的书名，有声书删除后历史账目不失引用。
type CreatorEarning struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	CreatorID   int64  `gorm:"not null;index" json:"creator_id"`
	AudiobookID *int64 `gorm:"index" json:"audiobook_id,omitempty"`
	// 类型为 sale 时指向购买记录，唯一约束保证一购买一收益
	PurchaseID                  *int64          `gorm:"uniqueIndex" json:"purchase_id,omitempty"`
	AmountEarned                decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount_earned"`
	Type                        string          `gorm:"size:20;not null;index" json:"type"` // sale, view, bonus, adjustment
	AudiobookTitleAtTransaction string          `gorm:"size:255" json:"audiobook_title_at_transaction"`
	EarnedAt                    time.Time       `gorm:"not null;index" json:"earned_at"`
	CreatedAt                   time.Time       `json:"created_at"`
}

func (CreatorEarning) TableName() string {
	return "creator_earnings"
}
