package dto

// CreateWithdrawalRequest 创作者发起提现
type CreateWithdrawalRequest struct {
	AccountID int64  `json:"account_id" binding:"required"`
	Amount    string `json:"amount" binding:"required"` // 定点小数字符串，避免浮点
}

// AddWithdrawalAccountRequest 新增提现账户
type AddWithdrawalAccountRequest struct {
	Type         string `json:"type" binding:"required,oneof=bank jazzcash easypaisa nayapay upaisa"`
	AccountTitle string `json:"account_title" binding:"required"`
	Identifier   string `json:"identifier" binding:"required"`
	IsPrimary    bool   `json:"is_primary"`
}

// AdminProcessingRequest 管理员标记处理中
type AdminProcessingRequest struct {
	Notes string `json:"notes"`
}

// AdminRejectRequest 管理员拒绝，理由必填
type AdminRejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AdminCompleteRequest 管理员完成，需支付凭证
type AdminCompleteRequest struct {
	PaymentReference string `json:"payment_reference"`
	PaymentSlipURL   string `json:"payment_slip_url"`
}

// ResolveReconciliationRequest 管理员补发欠付分成
type ResolveReconciliationRequest struct {
	Notes string `json:"notes"`
}

// EarningItem 收益流水列表项
type EarningItem struct {
	ID             int64  `json:"id"`
	Type           string `json:"type"`
	AmountEarned   string `json:"amount_earned"`
	AudiobookTitle string `json:"audiobook_title"`
	EarnedAt       string `json:"earned_at"`
}
