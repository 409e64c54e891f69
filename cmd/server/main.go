package main

import (
	"fmt"
	"log"

	"github.com/RoshaanShahid/AudioX-sub000/config"
	"github.com/RoshaanShahid/AudioX-sub000/internal/api"
	"github.com/RoshaanShahid/AudioX-sub000/internal/api/handler"
	"github.com/RoshaanShahid/AudioX-sub000/internal/database"
	"github.com/RoshaanShahid/AudioX-sub000/internal/pkg/stripe"
	"github.com/RoshaanShahid/AudioX-sub000/internal/repository"
	"github.com/RoshaanShahid/AudioX-sub000/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化支付处理器客户端
	stripeClient := stripe.NewClient(cfg.Stripe.SecretKey, cfg.Stripe.APIBase)

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	creatorRepo := repository.NewCreatorRepository(db)
	audiobookRepo := repository.NewAudiobookRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	coinRepo := repository.NewCoinRepository(db)
	earningRepo := repository.NewEarningRepository(db)
	reconciliationRepo := repository.NewReconciliationRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)

	// 初始化 Service
	checkoutService := service.NewCheckoutService(userRepo, audiobookRepo, purchaseRepo, subscriptionRepo, stripeClient, cfg)
	fulfillmentService := service.NewFulfillmentService(
		db, userRepo, creatorRepo, audiobookRepo, purchaseRepo,
		subscriptionRepo, coinRepo, earningRepo, reconciliationRepo,
		stripeClient, cfg,
	)
	coinService := service.NewCoinService(db, userRepo, coinRepo)
	creatorService := service.NewCreatorService(db, creatorRepo, earningRepo, withdrawalRepo)
	withdrawalService := service.NewWithdrawalService(db, creatorRepo, withdrawalRepo, nil, cfg)
	reconciliationService := service.NewReconciliationService(db, creatorRepo, audiobookRepo, purchaseRepo, earningRepo, reconciliationRepo)

	// 初始化 Handler
	paymentHandler := handler.NewPaymentHandler(checkoutService, fulfillmentService, rdb, cfg)
	coinHandler := handler.NewCoinHandler(coinService)
	creatorHandler := handler.NewCreatorHandler(creatorService, withdrawalService)
	adminHandler := handler.NewAdminHandler(withdrawalService, reconciliationService)

	// 初始化 Router
	router := api.NewRouter(
		paymentHandler,
		coinHandler,
		creatorHandler,
		adminHandler,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
