package model

import (
	"time"
)

// 订阅等级
const (
	TierFree    = "free"
	TierPremium = "premium"
)

type User struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	Username         string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email            *string   `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	Coins            int64     `gorm:"not null;default:0" json:"coins"`
	SubscriptionTier string    `gorm:"size:20;default:free" json:"subscription_tier"` // free, premium
	IsAdmin          bool      `gorm:"default:false" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
