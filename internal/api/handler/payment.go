package handler

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/RoshaanShahid/AudioX-sub000/config"
	"github.com/RoshaanShahid/AudioX-sub000/internal/api/middleware"
	"github.com/RoshaanShahid/AudioX-sub000/internal/model/dto"
	"github.com/RoshaanShahid/AudioX-sub000/internal/pkg/response"
	"github.com/RoshaanShahid/AudioX-sub000/internal/pkg/stripe"
	"github.com/RoshaanShahid/AudioX-sub000/internal/service"
)

// 已处理事件在 Redis 的去重标记保留时长
const processedEventTTL = 24 * time.Hour

type PaymentHandler struct {
	checkoutService    *service.CheckoutService
	fulfillmentService *service.FulfillmentService
	rdb                *redis.Client // 可为 nil，降级为纯数据库去重
	cfg                *config.Config
}

func NewPaymentHandler(
	checkoutService *service.CheckoutService,
	fulfillmentService *service.FulfillmentService,
	rdb *redis.Client,
	cfg *config.Config,
) *PaymentHandler {
	return &PaymentHandler{
		checkoutService:    checkoutService,
		fulfillmentService: fulfillmentService,
		rdb:                rdb,
		cfg:                cfg,
	}
}

// CreateCheckoutSession 创建支付会话
// POST /api/v1/payments/checkout-session
func (h *PaymentHandler) CreateCheckoutSession(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.checkoutService.CreateSession(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadySubscribed):
			response.Success(c, dto.CheckoutShortCircuitResponse{
				Status:      "already_subscribed",
				RedirectURL: h.cfg.Stripe.CancelURL,
			})
		case errors.Is(err, service.ErrAlreadyPurchased):
			response.Success(c, dto.CheckoutShortCircuitResponse{
				Status:      "already_purchased",
				RedirectURL: h.cfg.Stripe.CancelURL,
			})
		case errors.Is(err, service.ErrUnknownItemType),
			errors.Is(err, service.ErrUnknownCoinPack),
			errors.Is(err, service.ErrUnknownPlan),
			errors.Is(err, service.ErrNotForSale):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrAudiobookNotFound),
			errors.Is(err, service.ErrUserNotFound):
			response.NotFoundError(c, err.Error())
		default:
			log.Printf("Checkout session creation failed: %v", err)
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, result)
}

// Webhook 支付处理器回调入口
// POST /api/v1/payments/webhook
//
// 响应约定：签名或载荷非法回 400；重复、用户/商品不存在、
// 元数据缺失等重试无意义的情况回 200 确认；只有瞬时故障回 5xx
// 让处理器按自己的退避策略重投。
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "读取请求体失败"})
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	if err := stripe.VerifySignature(payload, sigHeader, h.cfg.Stripe.WebhookSecret,
		stripe.DefaultTolerance, time.Now()); err != nil {
		log.Printf("Webhook signature verification failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "签名校验失败"})
		return
	}

	event, err := stripe.ParseEvent(payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "载荷解析失败"})
		return
	}

	// Redis 快速去重：数据库唯一索引兜底，这里只省一次事务
	if h.rdb != nil && event.ID != "" {
		set, err := h.rdb.SetNX(c.Request.Context(), "stripe:event:"+event.ID, 1, processedEventTTL).Result()
		if err != nil {
			log.Printf("Webhook dedup cache unavailable: %v", err)
		} else if !set {
			c.JSON(http.StatusOK, gin.H{"status": "already_processed"})
			return
		}
	}

	if err := h.fulfillmentService.HandleEvent(c.Request.Context(), event); err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyProcessed):
			c.JSON(http.StatusOK, gin.H{"status": "already_processed"})
		case errors.Is(err, service.ErrNotProcessable):
			// 已在服务层记录原因，确认让处理器停止重投
			c.JSON(http.StatusOK, gin.H{"status": "success"})
		default:
			log.Printf("Webhook fulfillment failed for %s (%s): %v", event.ID, event.Type, err)
			// 失败后允许重投，清掉快速去重标记
			if h.rdb != nil && event.ID != "" {
				h.rdb.Del(c.Request.Context(), "stripe:event:"+event.ID)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "内部错误"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
