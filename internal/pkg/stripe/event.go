// Package stripe 封装支付处理器的事件解析、签名校验与出站 API 调用。
package stripe

import (
	"encoding/json"
	"errors"
)

// 关心的事件类型，其余类型在入口处直接确认
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventInvoicePaid         = "invoice.paid"
	EventInvoiceFailed       = "invoice.payment_failed"
)

// 账单原因
const (
	BillingReasonCreate = "subscription_create"
	BillingReasonCycle  = "subscription_cycle"
)

var ErrMalformedEvent = errors.New("事件载荷格式错误")

// Event 事件信封
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

type EventData struct {
	Object json.RawMessage `json:"object"`
}

// CheckoutSession checkout.session.completed 的 data.object
type CheckoutSession struct {
	ID            string            `json:"id"`
	AmountTotal   int64             `json:"amount_total"` // 最小货币单位
	Currency      string            `json:"currency"`
	PaymentStatus string            `json:"payment_status"`
	Customer      string            `json:"customer"`
	Subscription  string            `json:"subscription"`
	PaymentIntent string            `json:"payment_intent"`
	Metadata      map[string]string `json:"metadata"`
}

// SubscriptionObject customer.subscription.* 的 data.object
type SubscriptionObject struct {
	ID                string `json:"id"`
	Customer          string `json:"customer"`
	Status            string `json:"status"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
	CurrentPeriodEnd  int64  `json:"current_period_end"` // unix 秒
}

// Invoice invoice.* 的 data.object
type Invoice struct {
	ID            string `json:"id"`
	Customer      string `json:"customer"`
	Subscription  string `json:"subscription"`
	BillingReason string `json:"billing_reason"`
	AmountPaid    int64  `json:"amount_paid"` // 最小货币单位
	PeriodStart   int64  `json:"period_start"`
	PeriodEnd     int64  `json:"period_end"`
	Charge        string `json:"charge"`
	PaymentIntent string `json:"payment_intent"`
	Lines         struct {
		Data []struct {
			Period struct {
				Start int64 `json:"start"`
				End   int64 `json:"end"`
			} `json:"period"`
		} `json:"data"`
	} `json:"lines"`
}

// ParseEvent 解析事件信封。信封本身解析失败属于不可重试错误。
func ParseEvent(payload []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, ErrMalformedEvent
	}
	if event.Type == "" {
		return nil, ErrMalformedEvent
	}
	return &event, nil
}

// Session 解出 checkout session 对象
func (e *Event) Session() (*CheckoutSession, error) {
	var s CheckoutSession
	if err := json.Unmarshal(e.Data.Object, &s); err != nil {
		return nil, ErrMalformedEvent
	}
	return &s, nil
}

// Subscription 解出订阅对象
func (e *Event) Subscription() (*SubscriptionObject, error) {
	var s SubscriptionObject
	if err := json.Unmarshal(e.Data.Object, &s); err != nil {
		return nil, ErrMalformedEvent
	}
	return &s, nil
}

// Invoice 解出账单对象
func (e *Event) Invoice() (*Invoice, error) {
	var inv Invoice
	if err := json.Unmarshal(e.Data.Object, &inv); err != nil {
		return nil, ErrMalformedEvent
	}
	return &inv, nil
}

// PeriodRange 账单周期；lines 里的周期比顶层字段更准（代理续费场景）
func (inv *Invoice) PeriodRange() (start, end int64) {
	start, end = inv.PeriodStart, inv.PeriodEnd
	if len(inv.Lines.Data) > 0 {
		start = inv.Lines.Data[0].Period.Start
		end = inv.Lines.Data[0].Period.End
	}
	return start, end
}
