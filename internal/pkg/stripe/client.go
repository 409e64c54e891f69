package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAPIBase = "https://api.stripe.com"

// Client 处理器出站 API 客户端，表单编码调用
type Client struct {
	secretKey  string
	apiBase    string
	httpClient *http.Client
}

func NewClient(secretKey, apiBase string) *Client {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	// 路径统一带 /v1 前缀，配置里只填主机
	apiBase = strings.TrimSuffix(strings.TrimSuffix(apiBase, "/"), "/v1")
	return &Client{
		secretKey: secretKey,
		apiBase:   apiBase,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SessionParams 创建支付会话参数
type SessionParams struct {
	Mode          string // payment | subscription
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Currency      string
	// 行项目，金额为最小货币单位
	ProductName string
	UnitAmount  int64
	// 订阅模式下的计费周期：month / year
	RecurringInterval string
	Metadata          map[string]string
}

// Session 创建结果中需要的字段
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// PaymentIntent 支付意向，取卡信息用
type PaymentIntent struct {
	ID            string `json:"id"`
	PaymentMethod string `json:"payment_method"`
	LatestCharge  string `json:"latest_charge"`
}

// PaymentMethod 支付方式
type PaymentMethod struct {
	ID   string `json:"id"`
	Card struct {
		Brand string `json:"brand"`
		Last4 string `json:"last4"`
	} `json:"card"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateCheckoutSession 调用处理器创建托管结账会话
func (c *Client) CreateCheckoutSession(ctx context.Context, params *SessionParams) (*Session, error) {
	form := url.Values{}
	form.Set("mode", params.Mode)
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	if params.CustomerEmail != "" {
		form.Set("customer_email", params.CustomerEmail)
	}

	form.Set("line_items[0][price_data][currency]", params.Currency)
	form.Set("line_items[0][price_data][product_data][name]", params.ProductName)
	form.Set("line_items[0][price_data][unit_amount]", fmt.Sprintf("%d", params.UnitAmount))
	form.Set("line_items[0][quantity]", "1")
	if params.Mode == "subscription" {
		form.Set("line_items[0][price_data][recurring][interval]", params.RecurringInterval)
	}

	// metadata 会在 webhook 中原样回传，履约据此定位用户和商品
	for k, v := range params.Metadata {
		form.Set("metadata["+k+"]", v)
	}
	if params.Mode == "subscription" {
		for k, v := range params.Metadata {
			form.Set("subscription_data[metadata]["+k+"]", v)
		}
	}

	var session Session
	if err := c.post(ctx, "/v1/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetPaymentCard 懒加载卡品牌和后四位。任何一步失败都返回错误，
// 由调用方记录日志后忽略，不影响履约事务。
func (c *Client) GetPaymentCard(ctx context.Context, paymentIntentID string) (brand, last4 string, err error) {
	if paymentIntentID == "" {
		return "", "", errors.New("payment intent ID 为空")
	}

	var intent PaymentIntent
	if err := c.get(ctx, "/v1/payment_intents/"+paymentIntentID, &intent); err != nil {
		return "", "", err
	}
	if intent.PaymentMethod == "" {
		return "", "", errors.New("payment intent 未携带支付方式")
	}

	var method PaymentMethod
	if err := c.get(ctx, "/v1/payment_methods/"+intent.PaymentMethod, &method); err != nil {
		return "", "", err
	}
	return method.Card.Brand, method.Card.Last4, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("stripe api %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("stripe api %d", resp.StatusCode)
	}

	return json.Unmarshal(body, out)
}
