package model

import (
	"time"
)

// 订阅套餐
const (
	PlanMonthly = "monthly"
	PlanAnnual  = "annual"
)

// 订阅状态
const (
	SubActive   = "active"
	SubCanceled = "canceled"
	SubExpired  = "expired"
	SubPastDue  = "past_due"
	SubPending  = "pending"
)

type Subscription struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	Plan      string    `gorm:"size:20;not null" json:"plan"` // monthly, annual
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null;index" json:"end_date"`
	Status    string    `gorm:"size:20;default:pending;index" json:"status"`
	// 外部订阅 ID 即订阅类履约的幂等键，非空时唯一
	ExternalSubscriptionID *string   `gorm:"size:255;uniqueIndex" json:"-"`
	ExternalCustomerID     *string   `gorm:"size:255" json:"-"`
	CardBrand              string    `gorm:"size:20" json:"card_brand,omitempty"`
	CardLast4              string    `gorm:"size:4" json:"card_last4,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// GrantsPremium 有效订阅：激活中，或已取消但尚未到期
func (s *Subscription) GrantsPremium(now time.Time) bool {
	if s.Status == SubActive {
		return true
	}
	return s.Status == SubCanceled && s.EndDate.After(now)
}
