package dto

// 购买项目类型
const (
	ItemTypeCoins        = "coins"
	ItemTypeSubscription = "subscription"
	ItemTypeAudiobook    = "audiobook"
)

// CreateCheckoutRequest 创建支付会话请求
type CreateCheckoutRequest struct {
	ItemType string `json:"item_type" binding:"required,oneof=coins subscription audiobook"`
	ItemID   string `json:"item_id" binding:"required"`
}

// CheckoutSessionResponse 支付会话响应
type CheckoutSessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url,omitempty"`
}

// CheckoutShortCircuitResponse 无需调用处理器的短路响应
type CheckoutShortCircuitResponse struct {
	Status      string `json:"status"` // already_subscribed, already_purchased
	RedirectURL string `json:"redirect_url"`
}

// CoinTransactionItem 金币流水列表项
type CoinTransactionItem struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Amount      int64  `json:"amount"`
	Price       string `json:"price"`
	PackName    string `json:"pack_name,omitempty"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// SpendCoinsRequest 消费金币请求
type SpendCoinsRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description"`
}

// GiftCoinsRequest 赠送金币请求
type GiftCoinsRequest struct {
	ToUserID int64 `json:"to_user_id" binding:"required"`
	Amount   int64 `json:"amount" binding:"required,gt=0"`
}
