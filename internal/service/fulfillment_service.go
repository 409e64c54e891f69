package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/RoshaanShahid/AudioX-sub000/config"
	"github.com/RoshaanShahid/AudioX-sub000/internal/model"
	"github.com/RoshaanShahid/AudioX-sub000/internal/model/dto"
	"github.com/RoshaanShahid/AudioX-sub000/internal/pkg/money"
	"github.com/RoshaanShahid/AudioX-sub000/internal/pkg/stripe"
	"github.com/RoshaanShahid/AudioX-sub000/internal/repository"
)

var (
	// ErrAlreadyProcessed 重复投递，向处理器回成功确认
	ErrAlreadyProcessed = errors.New("事件已处理")
	// ErrNotProcessable 用户/商品不存在或元数据缺失，重试不会成功，确认后丢弃
	ErrNotProcessable = errors.New("事件无法履约")
)

// CardFetcher 懒加载卡信息，失败仅记日志不影响履约
type CardFetcher interface {
	GetPaymentCard(ctx context.Context, paymentIntentID string) (brand, last4 string, err error)
}

// FulfillmentService 消费已验签的支付事件，按 (事件类型, 商品类型)
// 选择履约配方。每个配方一个数据库事务，行锁按
// User → Creator → Audiobook → Subscription 固定顺序获取。
type FulfillmentService struct {
	db                 *gorm.DB
	userRepo           *repository.UserRepository
	creatorRepo        *repository.CreatorRepository
	audiobookRepo      *repository.AudiobookRepository
	purchaseRepo       *repository.PurchaseRepository
	subscriptionRepo   *repository.SubscriptionRepository
	coinRepo           *repository.CoinRepository
	earningRepo        *repository.EarningRepository
	reconciliationRepo *repository.ReconciliationRepository
	cards              CardFetcher // 可为 nil
	cfg                *config.Config
	now                func() time.Time
}

func NewFulfillmentService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	creatorRepo *repository.CreatorRepository,
	audiobookRepo *repository.AudiobookRepository,
	purchaseRepo *repository.PurchaseRepository,
	subscriptionRepo *repository.SubscriptionRepository,
	coinRepo *repository.CoinRepository,
	earningRepo *repository.EarningRepository,
	reconciliationRepo *repository.ReconciliationRepository,
	cards CardFetcher,
	cfg *config.Config,
) *FulfillmentService {
	return &FulfillmentService{
		db:                 db,
		userRepo:           userRepo,
		creatorRepo:        creatorRepo,
		audiobookRepo:      audiobookRepo,
		purchaseRepo:       purchaseRepo,
		subscriptionRepo:   subscriptionRepo,
		coinRepo:           coinRepo,
		earningRepo:        earningRepo,
		reconciliationRepo: reconciliationRepo,
		cards:              cards,
		cfg:                cfg,
		now:                time.Now,
	}
}

// HandleEvent 按事件类型分发。返回 nil 表示已履约或无需处理；
// ErrAlreadyProcessed / ErrNotProcessable 由入口映射为 200 确认；
// 其余错误视为瞬时故障，入口回 5xx 让处理器重试。
func (s *FulfillmentService) HandleEvent(ctx context.Context, event *stripe.Event) error {
	switch event.Type {
	case stripe.EventCheckoutCompleted:
		return s.handleCheckoutCompleted(ctx, event)
	case stripe.EventSubscriptionUpdated:
		return s.handleSubscriptionUpdated(event)
	case stripe.EventSubscriptionDeleted:
		return s.handleSubscriptionDeleted(event)
	case stripe.EventInvoicePaid:
		return s.handleInvoicePaid(ctx, event)
	case stripe.EventInvoiceFailed:
		return s.handleInvoiceFailed(event)
	default:
		// 未订阅的事件类型，确认后丢弃
		log.Printf("Ignoring event type %s (%s)", event.Type, event.ID)
		return nil
	}
}

// sessionKey 供金币/订阅流水去重，Description 保留同样文本
func sessionKey(sessionID string) string {
	return "stripe_checkout_session_" + sessionID
}

func invoiceKey(invoiceID string) string {
	return "stripe_invoice_" + invoiceID
}

func (s *FulfillmentService) handleCheckoutCompleted(ctx context.Context, event *stripe.Event) error {
	session, err := event.Session()
	if err != nil {
		return ErrNotProcessable
	}
	if session.PaymentStatus != "paid" && session.PaymentStatus != "no_payment_required" {
		log.Printf("Checkout session %s not paid (%s), skipping", session.ID, session.PaymentStatus)
		return ErrNotProcessable
	}

	userID, itemType, itemID, err := parseMetadata(session.Metadata)
	if err != nil {
		log.Printf("Checkout session %s metadata invalid: %v", session.ID, err)
		return ErrNotProcessable
	}

	switch itemType {
	case dto.ItemTypeCoins:
		return s.fulfillCoins(session, userID, itemID)
	case dto.ItemTypeSubscription:
		return s.fulfillSubscription(ctx, session, userID, itemID)
	case dto.ItemTypeAudiobook:
		return s.fulfillAudiobook(ctx, session, userID, itemID)
	default:
		log.Printf("Checkout session %s unknown item_type %q", session.ID, itemType)
		return ErrNotProcessable
	}
}

func parseMetadata(metadata map[string]string) (userID int64, itemType, itemID string, err error) {
	rawUser, ok := metadata["user_id"]
	if !ok {
		return 0, "", "", fmt.Errorf("metadata 缺少 user_id")
	}
	userID, err = strconv.ParseInt(rawUser, 10, 64)
	if err != nil {
		return 0, "", "", fmt.Errorf("metadata user_id 非法: %q", rawUser)
	}
	itemType, ok = metadata["item_type"]
	if !ok {
		return 0, "", "", fmt.Errorf("metadata 缺少 item_type")
	}
	itemID, ok = metadata["item_id"]
	if !ok {
		return 0, "", "", fmt.Errorf("metadata 缺少 item_id")
	}
	return userID, itemType, itemID, nil
}

// fulfillCoins 金币包履约：加余额、记流水，外部事件键幂等
func (s *FulfillmentService) fulfillCoins(session *stripe.CheckoutSession, userID int64, itemID string) error {
	coins, err := strconv.ParseInt(itemID, 10, 64)
	if err != nil || coins <= 0 {
		log.Printf("Coin fulfillment %s: invalid coin amount %q", session.ID, itemID)
		return ErrNotProcessable
	}

	packName := fmt.Sprintf("%d 金币", coins)
	if pack, ok := s.cfg.Platform.CoinPacks[itemID]; ok {
		packName = pack.Name
	}

	key := sessionKey(session.ID)

	return s.db.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)
		coinRepo := s.coinRepo.WithTx(tx)

		if _, err := userRepo.GetByIDForUpdate(userID); err != nil {
			if repository.IsNotFound(err) {
				log.Printf("Coin fulfillment %s: user %d not found", session.ID, userID)
				return ErrNotProcessable
			}
			return err
		}

		exists, err := coinRepo.ExistsByEventKey(key)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyProcessed
		}

		if err := userRepo.AddCoins(userID, coins); err != nil {
			return err
		}

		txn := &model.CoinTransaction{
			UserID:           userID,
			Type:             model.CoinPurchase,
			Amount:           coins,
			Price:            money.FromCents(session.AmountTotal),
			PackName:         packName,
			Status:           "completed",
			Description:      key,
			ExternalEventKey: &key,
		}
		if err := coinRepo.Create(txn); err != nil {
			// 并发投递输掉唯一键竞争，整个事务回滚并确认
			if repository.IsDuplicateKey(err) {
				return ErrAlreadyProcessed
			}
			return err
		}
		return nil
	})
}

// fulfillSubscription 订阅开通履约：建档、升级等级、记零币流水
func (s *FulfillmentService) fulfillSubscription(ctx context.Context, session *stripe.CheckoutSession, userID int64, itemID string) error {
	if session.Subscription == "" {
		log.Printf("Subscription fulfillment %s: no subscription ID on session", session.ID)
		return ErrNotProcessable
	}

	plan, ok := s.cfg.Platform.SubscriptionPlans[itemID]
	if !ok {
		log.Printf("Subscription fulfillment %s: unknown plan %q", session.ID, itemID)
		return ErrNotProcessable
	}
	durationDays := plan.DurationDays
	if durationDays <= 0 {
		if itemID == model.PlanAnnual {
			durationDays = 365
		} else {
			durationDays = 30
		}
	}

	// 卡信息在事务外懒加载，失败只记日志
	var cardBrand, cardLast4 string
	if s.cards != nil && session.PaymentIntent != "" {
		brand, last4, err := s.cards.GetPaymentCard(ctx, session.PaymentIntent)
		if err != nil {
			log.Printf("Subscription fulfillment %s: card lookup failed: %v", session.ID, err)
		} else {
			cardBrand, cardLast4 = brand, last4
		}
	}

	key := sessionKey(session.ID)
	now := s.now()

	return s.db.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)
		subRepo := s.subscriptionRepo.WithTx(tx)
		coinRepo := s.coinRepo.WithTx(tx)

		user, err := userRepo.GetByIDForUpdate(userID)
		if err != nil {
			if repository.IsNotFound(err) {
				log.Printf("Subscription fulfillment %s: user %d not found", session.ID, userID)
				return ErrNotProcessable
			}
			return err
		}

		exists, err := subRepo.ExistsByExternalID(session.Subscription)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyProcessed
		}

		externalSubID := session.Subscription
		externalCustomerID := session.Customer

		// 一户一订阅：有旧档就地覆盖，没有则新建
		sub, err := subRepo.GetByUserIDForUpdate(userID)
		if err != nil && !repository.IsNotFound(err) {
			return err
		}
		if sub == nil || repository.IsNotFound(err) {
			sub = &model.Subscription{UserID: userID}
		}
		sub.Plan = itemID
		sub.StartDate = now
		sub.EndDate = now.AddDate(0, 0, durationDays)
		sub.Status = model.SubActive
		sub.ExternalSubscriptionID = &externalSubID
		sub.ExternalCustomerID = &externalCustomerID
		if cardBrand != "" {
			sub.CardBrand = cardBrand
			sub.CardLast4 = cardLast4
		}
		if err := subRepo.Save(sub); err != nil {
			if repository.IsDuplicateKey(err) {
				return ErrAlreadyProcessed
			}
			return err
		}

		if user.SubscriptionTier != model.TierPremium {
			if err := userRepo.UpdateTier(userID, model.TierPremium); err != nil {
				return err
			}
		}

		txn := &model.CoinTransaction{
			UserID:           userID,
			Type:             model.CoinPurchase,
			Amount:           0,
			Price:            money.FromCents(session.AmountTotal),
			PackName:         plan.Name,
			Status:           "completed",
			Description:      key,
			ExternalEventKey: &key,
		}
		if err := coinRepo.Create(txn); err != nil {
			if repository.IsDuplicateKey(err) {
				return ErrAlreadyProcessed
			}
			return err
		}
		return nil
	})
}

// fulfillAudiobook 有声书购买履约：落购买记录、创作者分账、
// 冗余计数更新。创作者不可用时买方照常完成，欠付分成登记对账。
func (s *FulfillmentService) fulfillAudiobook(ctx context.Context, session *stripe.CheckoutSession, userID int64, itemID string) error {
	audiobookID, err := strconv.ParseInt(itemID, 10, 64)
	if err != nil {
		log.Printf("Audiobook fulfillment %s: invalid audiobook id %q", session.ID, itemID)
		return ErrNotProcessable
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)
		creatorRepo := s.creatorRepo.WithTx(tx)
		audiobookRepo := s.audiobookRepo.WithTx(tx)
		purchaseRepo := s.purchaseRepo.WithTx(tx)
		earningRepo := s.earningRepo.WithTx(tx)
		reconciliationRepo := s.reconciliationRepo.WithTx(tx)

		if _, err := userRepo.GetByIDForUpdate(userID); err != nil {
			if repository.IsNotFound(err) {
				log.Printf("Audiobook fulfillment %s: user %d not found", session.ID, userID)
				return ErrNotProcessable
			}
			return err
		}

		exists, err := purchaseRepo.ExistsBySessionID(session.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyProcessed
		}

		// 同一本书只允许一条已完成购买。两个会话并发下单时
		// 后到的回调在这里拦下，不再重复记账。
		purchased, err := purchaseRepo.HasCompletedPurchase(userID, audiobookID)
		if err != nil {
			return err
		}
		if purchased {
			log.Printf("Audiobook fulfillment %s: user %d already owns audiobook %d, skipping", session.ID, userID, audiobookID)
			return ErrAlreadyProcessed
		}

		audiobook, err := audiobookRepo.GetByID(audiobookID)
		if err != nil {
			if repository.IsNotFound(err) {
				log.Printf("Audiobook fulfillment %s: audiobook %d not found", session.ID, audiobookID)
				return ErrNotProcessable
			}
			return err
		}
		if !audiobook.IsPurchasable() {
			log.Printf("Audiobook fulfillment %s: audiobook %d not purchasable", session.ID, audiobookID)
			return ErrNotProcessable
		}

		amountPaid := money.FromCents(session.AmountTotal)
		pct := s.cfg.Platform.AudiobookFeePct()
		fee, share := money.Split(amountPaid, pct)

		externalSessionID := session.ID
		purchase := &model.AudiobookPurchase{
			UserID:                userID,
			AudiobookID:           audiobookID,
			AmountPaid:            amountPaid,
			PlatformFeePercentage: pct,
			PlatformFeeAmount:     fee,
			CreatorShareAmount:    share,
			ExternalSessionID:     &externalSessionID,
			Status:                model.PurchaseCompleted,
		}
		if session.PaymentIntent != "" {
			pi := session.PaymentIntent
			purchase.ExternalPaymentIntentID = &pi
		}
		if err := purchaseRepo.Create(purchase); err != nil {
			if repository.IsDuplicateKey(err) {
				return ErrAlreadyProcessed
			}
			return err
		}

		// 创作者分账：先锁创作者行，再锁有声书行
		creator, err := creatorRepo.GetByIDForUpdate(audiobook.CreatorID)
		creatorUnavailable := false
		var reason string
		switch {
		case err != nil && repository.IsNotFound(err):
			creatorUnavailable = true
			reason = "创作者不存在"
		case err != nil:
			return err
		case !creator.CanReceiveEarnings():
			creatorUnavailable = true
			reason = "创作者状态为 " + creator.Status
		}

		if creatorUnavailable {
			rec := &model.Reconciliation{
				PurchaseID:  purchase.ID,
				AudiobookID: audiobookID,
				OwedShare:   share,
				Reason:      reason,
			}
			if creator != nil {
				rec.CreatorID = &creator.ID
			}
			if err := reconciliationRepo.Create(rec); err != nil {
				return err
			}
			log.Printf("Audiobook fulfillment %s: creator unavailable (%s), reconciliation recorded", session.ID, reason)
		} else {
			if err := creatorRepo.AddEarnings(creator.ID, amountPaid, share); err != nil {
				return err
			}
			earning := &model.CreatorEarning{
				CreatorID:                   creator.ID,
				AudiobookID:                 &audiobookID,
				PurchaseID:                  &purchase.ID,
				AmountEarned:                share,
				Type:                        model.EarningSale,
				AudiobookTitleAtTransaction: audiobook.Title,
				EarnedAt:                    s.now(),
			}
			if err := earningRepo.Create(earning); err != nil {
				return err
			}
		}

		if _, err := audiobookRepo.GetByIDForUpdate(audiobookID); err != nil {
			return err
		}
		return audiobookRepo.AddSale(audiobookID, amountPaid)
	})
}

// mapProcessorStatus 处理器订阅状态 → 本地状态
func mapProcessorStatus(status string) string {
	switch status {
	case "active", "trialing":
		return model.SubActive
	case "canceled":
		return model.SubCanceled
	case "past_due", "unpaid":
		return model.SubPastDue
	default:
		return model.SubExpired
	}
}

func (s *FulfillmentService) handleSubscriptionUpdated(event *stripe.Event) error {
	obj, err := event.Subscription()
	if err != nil {
		return ErrNotProcessable
	}

	now := s.now()

	return s.db.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)
		subRepo := s.subscriptionRepo.WithTx(tx)

		// 先无锁定位用户，再按 User → Subscription 锁序加锁
		probe, err := subRepo.GetByExternalID(obj.ID)
		if err != nil {
			if repository.IsNotFound(err) {
				log.Printf("Subscription update %s: no local subscription", obj.ID)
				return ErrNotProcessable
			}
			return err
		}

		user, err := userRepo.GetByIDForUpdate(probe.UserID)
		if err != nil {
			return err
		}
		sub, err := subRepo.GetByExternalIDForUpdate(obj.ID)
		if err != nil {
			return err
		}

		sub.Status = mapProcessorStatus(obj.Status)
		if obj.CurrentPeriodEnd > 0 {
			sub.EndDate = time.Unix(obj.CurrentPeriodEnd, 0)
		}
		if obj.CancelAtPeriodEnd && !now.Before(sub.EndDate) {
			sub.Status = model.SubExpired
		}
		if err := subRepo.Save(sub); err != nil {
			return err
		}

		switch {
		case sub.Status == model.SubExpired && user.SubscriptionTier == model.TierPremium:
			return userRepo.UpdateTier(user.ID, model.TierFree)
		case sub.Status == model.SubActive && user.SubscriptionTier != model.TierPremium:
			return userRepo.UpdateTier(user.ID, model.TierPremium)
		}
		return nil
	})
}

func (s *FulfillmentService) handleSubscriptionDeleted(event *stripe.Event) error {
	obj, err := event.Subscription()
	if err != nil {
		return ErrNotProcessable
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)
		subRepo := s.subscriptionRepo.WithTx(tx)

		probe, err := subRepo.GetByExternalID(obj.ID)
		if err != nil {
			if repository.IsNotFound(err) {
				log.Printf("Subscription delete %s: no local subscription", obj.ID)
				return ErrNotProcessable
			}
			return err
		}

		user, err := userRepo.GetByIDForUpdate(probe.UserID)
		if err != nil {
			return err
		}
		sub, err := subRepo.GetByExternalIDForUpdate(obj.ID)
		if err != nil {
			return err
		}

		sub.Status = model.SubExpired
		sub.EndDate = s.now()
		if err := subRepo.Save(sub); err != nil {
			return err
		}

		if user.SubscriptionTier == model.TierPremium {
			return userRepo.UpdateTier(user.ID, model.TierFree)
		}
		return nil
	})
}

func (s *FulfillmentService) handleInvoicePaid(ctx context.Context, event *stripe.Event) error {
	inv, err := event.Invoice()
	if err != nil {
		return ErrNotProcessable
	}

	// 首期账单由 CheckoutCompleted 履约，这里无事可做
	if inv.BillingReason == stripe.BillingReasonCreate {
		return nil
	}
	if inv.BillingReason != stripe.BillingReasonCycle {
		log.Printf("Invoice %s: billing reason %q ignored", inv.ID, inv.BillingReason)
		return nil
	}
	if inv.Subscription == "" {
		return ErrNotProcessable
	}

	// 续费也懒加载最新卡信息
	var cardBrand, cardLast4 string
	if s.cards != nil && inv.PaymentIntent != "" {
		brand, last4, err := s.cards.GetPaymentCard(ctx, inv.PaymentIntent)
		if err != nil {
			log.Printf("Invoice %s: card lookup failed: %v", inv.ID, err)
		} else {
			cardBrand, cardLast4 = brand, last4
		}
	}

	key := invoiceKey(inv.ID)

	return s.db.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)
		subRepo := s.subscriptionRepo.WithTx(tx)
		coinRepo := s.coinRepo.WithTx(tx)

		probe, err := subRepo.GetByExternalID(inv.Subscription)
		if err != nil {
			if repository.IsNotFound(err) {
				log.Printf("Invoice %s: no local subscription %s", inv.ID, inv.Subscription)
				return ErrNotProcessable
			}
			return err
		}

		exists, err := coinRepo.ExistsByEventKey(key)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyProcessed
		}

		user, err := userRepo.GetByIDForUpdate(probe.UserID)
		if err != nil {
			return err
		}
		sub, err := subRepo.GetByExternalIDForUpdate(inv.Subscription)
		if err != nil {
			return err
		}

		sub.Status = model.SubActive
		start, end := inv.PeriodRange()
		if start > 0 {
			sub.StartDate = time.Unix(start, 0)
		}
		if end > 0 {
			sub.EndDate = time.Unix(end, 0)
		}
		if cardBrand != "" {
			sub.CardBrand = cardBrand
			sub.CardLast4 = cardLast4
		}
		if err := subRepo.Save(sub); err != nil {
			return err
		}

		if user.SubscriptionTier != model.TierPremium {
			if err := userRepo.UpdateTier(user.ID, model.TierPremium); err != nil {
				return err
			}
		}

		planName := sub.Plan + " 续费"
		if plan, ok := s.cfg.Platform.SubscriptionPlans[sub.Plan]; ok {
			planName = plan.Name + " 续费"
		}
		txn := &model.CoinTransaction{
			UserID:           probe.UserID,
			Type:             model.CoinPurchase,
			Amount:           0,
			Price:            money.FromCents(inv.AmountPaid),
			PackName:         planName,
			Status:           "completed",
			Description:      key,
			ExternalEventKey: &key,
		}
		if err := coinRepo.Create(txn); err != nil {
			if repository.IsDuplicateKey(err) {
				return ErrAlreadyProcessed
			}
			return err
		}
		return nil
	})
}

func (s *FulfillmentService) handleInvoiceFailed(event *stripe.Event) error {
	inv, err := event.Invoice()
	if err != nil {
		return ErrNotProcessable
	}
	if inv.Subscription == "" {
		return ErrNotProcessable
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		subRepo := s.subscriptionRepo.WithTx(tx)

		sub, err := subRepo.GetByExternalIDForUpdate(inv.Subscription)
		if err != nil {
			if repository.IsNotFound(err) {
				log.Printf("Invoice failed %s: no local subscription %s", inv.ID, inv.Subscription)
				return ErrNotProcessable
			}
			return err
		}

		// 降级交给后续的 subscription.updated / deleted，这里只标记欠费
		if sub.Status != model.SubPastDue {
			sub.Status = model.SubPastDue
			return subRepo.Save(sub)
		}
		return nil
	})
}
