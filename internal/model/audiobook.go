package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 定价模式
const (
	PricingFree = "free"
	PricingPaid = "paid"
)

type Audiobook struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	CreatorID   int64           `gorm:"not null;index" json:"creator_id"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	Slug        string          `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	PricingMode string          `gorm:"size:10;default:free" json:"pricing_mode"` // free, paid
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	// 冗余统计字段，仅在履约事务内以增量方式更新
	TotalSales            int64           `gorm:"not null;default:0" json:"total_sales"`
	TotalRevenueGenerated decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_revenue_generated"`
	Published             bool            `gorm:"default:false;index" json:"published"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

func (Audiobook) TableName() string {
	return "audiobooks"
}

// IsPurchasable 付费且价格大于 0 才可购买
func (a *Audiobook) IsPurchasable() bool {
	return a.PricingMode == PricingPaid && a.Price.IsPositive()
}
