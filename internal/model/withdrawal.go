package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 提现账户类型
const (
	AccountBank      = "bank"
	AccountJazzCash  = "jazzcash"
	AccountEasyPaisa = "easypaisa"
	AccountNayaPay   = "nayapay"
	AccountUPaisa    = "upaisa"
)

// 提现申请状态
const (
	WithdrawalPending    = "pending"
	WithdrawalProcessing = "processing"
	WithdrawalCompleted  = "completed"
	WithdrawalRejected   = "rejected"
	WithdrawalCancelled  = "cancelled"
)

type WithdrawalAccount struct {
	ID           int64  `gorm:"primaryKey" json:"id"`
	CreatorID    int64  `gorm:"not null;index" json:"creator_id"`
	Type         string `gorm:"size:20;not null" json:"type"` // bank, jazzcash, easypaisa, nayapay, upaisa
	AccountTitle string `gorm:"size:100;not null" json:"account_title"`
	// 银行账户为 IBAN，移动钱包为手机号
	Identifier string    `gorm:"size:50;not null" json:"identifier"`
	IsPrimary  bool      `gorm:"default:false" json:"is_primary"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (WithdrawalAccount) TableName() string {
	return "withdrawal_accounts"
}

// WithdrawalRequest 提现申请。创建时即从可提现余额中扣款（托管），
// 拒绝或撤销时原额退回，完成时不再动余额。
type WithdrawalRequest struct {
	ID               int64           `gorm:"primaryKey" json:"id"`
	CreatorID        int64           `gorm:"not null;index" json:"creator_id"`
	AccountID        int64           `gorm:"not null;index" json:"account_id"`
	Amount           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status           string          `gorm:"size:20;default:pending;index" json:"status"`
	RequestDate      time.Time       `gorm:"not null" json:"request_date"`
	ProcessedDate    *time.Time      `json:"processed_date,omitempty"`
	ProcessedBy      *int64          `json:"processed_by,omitempty"` // 操作的管理员用户 ID
	AdminNotes       string          `gorm:"size:500" json:"admin_notes,omitempty"`
	RejectionReason  string          `gorm:"size:500" json:"rejection_reason,omitempty"`
	PaymentReference string          `gorm:"size:255" json:"payment_reference,omitempty"`
	PaymentSlipURL   string          `gorm:"size:500" json:"payment_slip_url,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}

// IsTerminal 终态后不再允许任何转移
func (w *WithdrawalRequest) IsTerminal() bool {
	switch w.Status {
	case WithdrawalCompleted, WithdrawalRejected, WithdrawalCancelled:
		return true
	}
	return false
}
