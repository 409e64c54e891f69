package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RoshaanShahid/AudioX-sub000/config"
	"github.com/RoshaanShahid/AudioX-sub000/internal/model"
	"github.com/RoshaanShahid/AudioX-sub000/internal/model/dto"
	"github.com/RoshaanShahid/AudioX-sub000/internal/pkg/stripe"
	"github.com/RoshaanShahid/AudioX-sub000/internal/repository"
)

var (
	ErrUserNotFound      = errors.New("用户不存在")
	ErrUnknownItemType   = errors.New("未知的商品类型")
	ErrUnknownCoinPack   = errors.New("未配置的金币包")
	ErrUnknownPlan       = errors.New("未配置的订阅套餐")
	ErrAudiobookNotFound = errors.New("有声书不存在")
	ErrNotForSale        = errors.New("该有声书不可购买")
	ErrAlreadySubscribed = errors.New("已有生效中的订阅")
	ErrAlreadyPurchased  = errors.New("已购买过该有声书")
)

// SessionCreator 处理器会话创建接口，测试注入假实现
type SessionCreator interface {
	CreateCheckoutSession(ctx context.Context, params *stripe.SessionParams) (*stripe.Session, error)
}

// CheckoutService 结账会话工厂：校验购买意图后调用处理器，
// 把 {user_id, item_type, item_id} 写入 metadata 供 webhook 回传。
type CheckoutService struct {
	userRepo         *repository.UserRepository
	audiobookRepo    *repository.AudiobookRepository
	purchaseRepo     *repository.PurchaseRepository
	subscriptionRepo *repository.SubscriptionRepository
	processor        SessionCreator
	cfg              *config.Config
	now              func() time.Time
}

func NewCheckoutService(
	userRepo *repository.UserRepository,
	audiobookRepo *repository.AudiobookRepository,
	purchaseRepo *repository.PurchaseRepository,
	subscriptionRepo *repository.SubscriptionRepository,
	processor SessionCreator,
	cfg *config.Config,
) *CheckoutService {
	return &CheckoutService{
		userRepo:         userRepo,
		audiobookRepo:    audiobookRepo,
		purchaseRepo:     purchaseRepo,
		subscriptionRepo: subscriptionRepo,
		processor:        processor,
		cfg:              cfg,
		now:              time.Now,
	}
}

// CreateSession 校验并创建支付会话。
// 已订阅 / 已购买返回 ErrAlreadySubscribed / ErrAlreadyPurchased，
// 由 handler 映射为短路响应，不调用处理器。
func (s *CheckoutService) CreateSession(ctx context.Context, userID int64, req *dto.CreateCheckoutRequest) (*dto.CheckoutSessionResponse, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	params := &stripe.SessionParams{
		SuccessURL: s.cfg.Stripe.SuccessURL,
		CancelURL:  s.cfg.Stripe.CancelURL,
		Currency:   s.currency(),
		Metadata: map[string]string{
			"user_id":   strconv.FormatInt(userID, 10),
			"item_type": req.ItemType,
			"item_id":   req.ItemID,
		},
	}
	if user.Email != nil {
		params.CustomerEmail = *user.Email
	}

	switch req.ItemType {
	case dto.ItemTypeCoins:
		if err := s.prepareCoinSession(req.ItemID, params); err != nil {
			return nil, err
		}
	case dto.ItemTypeSubscription:
		if err := s.prepareSubscriptionSession(userID, req.ItemID, params); err != nil {
			return nil, err
		}
	case dto.ItemTypeAudiobook:
		if err := s.prepareAudiobookSession(userID, req.ItemID, params); err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnknownItemType
	}

	session, err := s.processor.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, err
	}

	return &dto.CheckoutSessionResponse{
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}

func (s *CheckoutService) currency() string {
	if s.cfg.Platform.Currency != "" {
		return s.cfg.Platform.Currency
	}
	return "pkr"
}

// prepareCoinSession 金币包：item_id 必须是已配置的包
func (s *CheckoutService) prepareCoinSession(itemID string, params *stripe.SessionParams) error {
	pack, ok := s.cfg.Platform.CoinPacks[itemID]
	if !ok {
		return ErrUnknownCoinPack
	}

	params.Mode = "payment"
	params.ProductName = pack.Name
	params.UnitAmount = toCents(pack.Price)
	return nil
}

// prepareSubscriptionSession 订阅：不允许重复订阅
// （激活中，或已取消但尚未到期）
func (s *CheckoutService) prepareSubscriptionSession(userID int64, itemID string, params *stripe.SessionParams) error {
	plan, ok := s.cfg.Platform.SubscriptionPlans[itemID]
	if !ok {
		return ErrUnknownPlan
	}

	sub, err := s.subscriptionRepo.GetByUserID(userID)
	if err != nil && !repository.IsNotFound(err) {
		return err
	}
	if sub != nil && sub.GrantsPremium(s.now()) {
		return ErrAlreadySubscribed
	}

	params.Mode = "subscription"
	params.ProductName = plan.Name
	params.UnitAmount = toCents(plan.Price)
	if itemID == model.PlanAnnual {
		params.RecurringInterval = "year"
	} else {
		params.RecurringInterval = "month"
	}
	return nil
}

// prepareAudiobookSession 有声书：必须付费且价格为正，未购买过
func (s *CheckoutService) prepareAudiobookSession(userID int64, itemID string, params *stripe.SessionParams) error {
	audiobookID, err := strconv.ParseInt(itemID, 10, 64)
	if err != nil {
		return ErrAudiobookNotFound
	}

	audiobook, err := s.audiobookRepo.GetByID(audiobookID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrAudiobookNotFound
		}
		return err
	}
	if !audiobook.IsPurchasable() {
		return ErrNotForSale
	}

	purchased, err := s.purchaseRepo.HasCompletedPurchase(userID, audiobookID)
	if err != nil {
		return err
	}
	if purchased {
		return ErrAlreadyPurchased
	}

	params.Mode = "payment"
	params.ProductName = audiobook.Title
	// 两位小数精确转最小货币单位
	params.UnitAmount = audiobook.Price.Shift(2).IntPart()
	return nil
}

func toCents(price decimal.Decimal) int64 {
	return price.Shift(2).Round(0).IntPart()
}
