package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 创作者审核状态
const (
	CreatorPending  = "pending"
	CreatorApproved = "approved"
	CreatorRejected = "rejected"
	CreatorBanned   = "banned"
)

type Creator struct {
	ID     int64  `gorm:"primaryKey" json:"id"`
	UserID int64  `gorm:"not null;uniqueIndex" json:"user_id"`
	Handle string `gorm:"size:50;uniqueIndex;not null" json:"handle"`
	Status string `gorm:"size:20;default:pending;index" json:"status"` // pending, approved, rejected, banned
	// TotalEarning 为毛收入（购买全额），只增不减
	TotalEarning decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_earning"`
	// AvailableBalance 为可提现净额，提现申请创建时即扣减
	AvailableBalance          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"available_balance"`
	LastWithdrawalRequestDate *time.Time      `json:"last_withdrawal_request_date,omitempty"`
	CreatedAt                 time.Time       `json:"created_at"`
	UpdatedAt                 time.Time       `json:"updated_at"`
}

func (Creator) TableName() string {
	return "creators"
}

// CanReceiveEarnings 是否可以入账（审核通过且未封禁）
func (c *Creator) CanReceiveEarnings() bool {
	return c.Status == CreatorApproved
}
