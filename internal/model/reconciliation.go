package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reconciliation 对账义务。创作者缺失或未过审时买方购买照常完成，
// 欠付的分成在此登记，待创作者恢复后由管理员补发 adjustment 收益。
type Reconciliation struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	PurchaseID  int64           `gorm:"not null;uniqueIndex" json:"purchase_id"`
	AudiobookID int64           `gorm:"not null;index" json:"audiobook_id"`
	CreatorID   *int64          `gorm:"index" json:"creator_id,omitempty"`
	OwedShare   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"owed_share"`
	Reason      string          `gorm:"size:255" json:"reason"`
	Resolved    bool            `gorm:"default:false;index" json:"resolved"`
	// 补发后指向对应的 adjustment 收益记录
	ResolvedEarningID *int64     `json:"resolved_earning_id,omitempty"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func (Reconciliation) TableName() string {
	return "reconciliations"
}
