package api

import (
	"github.com/gin-gonic/gin"

	"github.com/RoshaanShahid/AudioX-sub000/config"
	"github.com/RoshaanShahid/AudioX-sub000/internal/api/handler"
	"github.com/RoshaanShahid/AudioX-sub000/internal/api/middleware"
)

type Router struct {
	paymentHandler *handler.PaymentHandler
	coinHandler    *handler.CoinHandler
	creatorHandler *handler.CreatorHandler
	adminHandler   *handler.AdminHandler
	cfg            *config.Config
}

func NewRouter(
	paymentHandler *handler.PaymentHandler,
	coinHandler *handler.CoinHandler,
	creatorHandler *handler.CreatorHandler,
	adminHandler *handler.AdminHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		paymentHandler: paymentHandler,
		coinHandler:    coinHandler,
		creatorHandler: creatorHandler,
		adminHandler:   adminHandler,
		cfg:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")
	{
		// 公开接口 - 支付回调，签名自校验，不走 JWT
		api.POST("/payments/webhook", r.paymentHandler.Webhook)

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 下单
			authenticated.POST("/payments/checkout-session", r.paymentHandler.CreateCheckoutSession)

			// 金币
			coins := authenticated.Group("/coins")
			{
				coins.GET("/transactions", r.coinHandler.ListTransactions)
				coins.POST("/spend", r.coinHandler.Spend)
				coins.POST("/gift", r.coinHandler.Gift)
			}

			// 创作者收益与提现
			creator := authenticated.Group("/creator")
			{
				creator.GET("/earnings", r.creatorHandler.ListEarnings)
				creator.GET("/withdrawals", r.creatorHandler.ListWithdrawals)
				creator.POST("/withdrawals", r.creatorHandler.CreateWithdrawal)
				creator.POST("/withdrawals/:id/cancel", r.creatorHandler.CancelWithdrawal)
				creator.GET("/withdrawal-accounts", r.creatorHandler.ListAccounts)
				creator.POST("/withdrawal-accounts", r.creatorHandler.AddAccount)
				creator.PUT("/withdrawal-accounts/:id/primary", r.creatorHandler.SetPrimaryAccount)
				creator.DELETE("/withdrawal-accounts/:id", r.creatorHandler.DeleteAccount)
			}
		}

		// 后台接口
		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuth(r.cfg.JWT.Secret))
		{
			admin.GET("/withdrawals", r.adminHandler.ListWithdrawals)
			admin.POST("/withdrawals/:id/processing", r.adminHandler.MarkProcessing)
			admin.POST("/withdrawals/:id/complete", r.adminHandler.Complete)
			admin.POST("/withdrawals/:id/reject", r.adminHandler.Reject)
			admin.GET("/reconciliations", r.adminHandler.ListReconciliations)
			admin.POST("/reconciliations/:id/resolve", r.adminHandler.ResolveReconciliation)
		}
	}

	return engine
}
