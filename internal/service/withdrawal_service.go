package service

import (
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/RoshaanShahid/AudioX-sub000/config"
	"github.com/RoshaanShahid/AudioX-sub000/internal/model"
	"github.com/RoshaanShahid/AudioX-sub000/internal/repository"
)

var (
	ErrCreatorNotFound       = errors.New("创作者不存在")
	ErrCreatorNotEligible    = errors.New("创作者当前不可提现")
	ErrAccountNotFound       = errors.New("提现账户不存在")
	ErrAccountInUse          = errors.New("提现账户被未完结的申请引用，无法删除")
	ErrAmountBelowMinimum    = errors.New("提现金额低于平台最低限额")
	ErrInsufficientBalance   = errors.New("可提现余额不足")
	ErrRequestNotFound       = errors.New("提现申请不存在")
	ErrInvalidTransition     = errors.New("当前状态不允许该操作")
	ErrCancelWindowExpired   = errors.New("已超出可撤销时间窗口")
	ErrRejectionReasonNeeded = errors.New("拒绝必须填写理由")
	ErrPaymentProofNeeded    = errors.New("完成必须提供支付凭证")
)

// EligibilityCheck 提现资格策略钩子，余额与最低限额之外的
// 约束（冷却期、认证状态等）由调用方注入
type EligibilityCheck func(creator *model.Creator) error

// DefaultEligibility 默认策略：审核通过才可提现
func DefaultEligibility(creator *model.Creator) error {
	if creator.Status != model.CreatorApproved {
		return ErrCreatorNotEligible
	}
	return nil
}

// WithdrawalService 提现状态机。
// Pending -> Processing -> Completed / Rejected，
// Pending 可被创作者在时间窗口内撤销，或被管理员直接拒绝。
// 资金在 Pending 创建时即从可提现余额托管扣减。
type WithdrawalService struct {
	db             *gorm.DB
	creatorRepo    *repository.CreatorRepository
	withdrawalRepo *repository.WithdrawalRepository
	eligibility    EligibilityCheck
	cfg            *config.Config
	now            func() time.Time
}

func NewWithdrawalService(
	db *gorm.DB,
	creatorRepo *repository.CreatorRepository,
	withdrawalRepo *repository.WithdrawalRepository,
	eligibility EligibilityCheck,
	cfg *config.Config,
) *WithdrawalService {
	if eligibility == nil {
		eligibility = DefaultEligibility
	}
	return &WithdrawalService{
		db:             db,
		creatorRepo:    creatorRepo,
		withdrawalRepo: withdrawalRepo,
		eligibility:    eligibility,
		cfg:            cfg,
		now:            time.Now,
	}
}

// cancelWindow 申请创建后的可撤销窗口
func (s *WithdrawalService) cancelWindow() time.Duration {
	minutes := s.cfg.Platform.WithdrawalCancelWindowMinutes
	if minutes <= 0 {
		minutes = 30
	}
	return time.Duration(minutes) * time.Minute
}

// CreateRequest 创作者发起提现。锁定创作者行后检查资格、
// 最低限额与余额，扣减托管并落申请，一个事务完成。
func (s *WithdrawalService) CreateRequest(creatorID, accountID int64, amount decimal.Decimal) (*model.WithdrawalRequest, error) {
	if amount.LessThan(s.cfg.Platform.MinWithdrawal()) {
		return nil, ErrAmountBelowMinimum
	}

	var request *model.WithdrawalRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		creatorRepo := s.creatorRepo.WithTx(tx)
		withdrawalRepo := s.withdrawalRepo.WithTx(tx)

		creator, err := creatorRepo.GetByIDForUpdate(creatorID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrCreatorNotFound
			}
			return err
		}
		if err := s.eligibility(creator); err != nil {
			return err
		}

		account, err := withdrawalRepo.GetAccountByID(accountID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrAccountNotFound
			}
			return err
		}
		if account.CreatorID != creatorID {
			return ErrAccountNotFound
		}

		if creator.AvailableBalance.LessThan(amount) {
			return ErrInsufficientBalance
		}

		now := s.now()
		request = &model.WithdrawalRequest{
			CreatorID:   creatorID,
			AccountID:   accountID,
			Amount:      amount,
			Status:      model.WithdrawalPending,
			RequestDate: now,
		}
		if err := withdrawalRepo.CreateRequest(request); err != nil {
			return err
		}

		// 托管扣减与时间戳同事务落库
		if err := creatorRepo.AddAvailableBalance(creatorID, amount.Neg()); err != nil {
			return err
		}
		return creatorRepo.StampWithdrawalDate(creatorID, now)
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// CancelRequest 创作者撤销。仅 Pending 且在窗口内允许；
// 窗口边界取闭区间，恰好等于窗口时仍可撤销。
func (s *WithdrawalService) CancelRequest(creatorID, requestID int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		creatorRepo := s.creatorRepo.WithTx(tx)
		withdrawalRepo := s.withdrawalRepo.WithTx(tx)

		// 锁序：Creator 行先于 WithdrawalRequest 行
		if _, err := creatorRepo.GetByIDForUpdate(creatorID); err != nil {
			if repository.IsNotFound(err) {
				return ErrCreatorNotFound
			}
			return err
		}

		request, err := withdrawalRepo.GetRequestByIDForUpdate(requestID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrRequestNotFound
			}
			return err
		}
		if request.CreatorID != creatorID {
			return ErrRequestNotFound
		}
		if request.Status != model.WithdrawalPending {
			return ErrInvalidTransition
		}
		if s.now().Sub(request.RequestDate) > s.cancelWindow() {
			return ErrCancelWindowExpired
		}

		request.Status = model.WithdrawalCancelled
		if err := withdrawalRepo.SaveRequest(request); err != nil {
			return err
		}

		if err := creatorRepo.AddAvailableBalance(creatorID, request.Amount); err != nil {
			return err
		}
		// 只有时间戳仍指向本申请时才清除
		return creatorRepo.ClearWithdrawalDate(creatorID, request.RequestDate)
	})
}

// MarkProcessing 管理员标记处理中，资金已在 Pending 托管，不动余额
func (s *WithdrawalService) MarkProcessing(requestID, adminID int64, notes string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		withdrawalRepo := s.withdrawalRepo.WithTx(tx)

		request, err := withdrawalRepo.GetRequestByIDForUpdate(requestID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrRequestNotFound
			}
			return err
		}
		if request.Status != model.WithdrawalPending {
			return ErrInvalidTransition
		}

		request.Status = model.WithdrawalProcessing
		request.ProcessedBy = &adminID
		if notes != "" {
			request.AdminNotes = notes
		}
		return withdrawalRepo.SaveRequest(request)
	})
}

// Reject 管理员拒绝，Pending 与 Processing 均可，余额原额退回
func (s *WithdrawalService) Reject(requestID, adminID int64, reason string) error {
	if reason == "" {
		return ErrRejectionReasonNeeded
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		creatorRepo := s.creatorRepo.WithTx(tx)
		withdrawalRepo := s.withdrawalRepo.WithTx(tx)

		// 无锁探查拿到归属创作者，锁序与撤销一致：
		// Creator 行先于 WithdrawalRequest 行
		existing, err := withdrawalRepo.GetRequestByID(requestID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrRequestNotFound
			}
			return err
		}
		if _, err := creatorRepo.GetByIDForUpdate(existing.CreatorID); err != nil {
			if repository.IsNotFound(err) {
				return ErrCreatorNotFound
			}
			return err
		}

		request, err := withdrawalRepo.GetRequestByIDForUpdate(requestID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrRequestNotFound
			}
			return err
		}
		if request.Status != model.WithdrawalPending && request.Status != model.WithdrawalProcessing {
			return ErrInvalidTransition
		}

		now := s.now()
		request.Status = model.WithdrawalRejected
		request.RejectionReason = reason
		request.ProcessedBy = &adminID
		request.ProcessedDate = &now
		if err := withdrawalRepo.SaveRequest(request); err != nil {
			return err
		}

		return creatorRepo.AddAvailableBalance(request.CreatorID, request.Amount)
	})
}

// Complete 管理员完成，仅 Processing 允许，需支付凭证，不再动余额
func (s *WithdrawalService) Complete(requestID, adminID int64, paymentReference, slipURL string) error {
	if paymentReference == "" && slipURL == "" {
		return ErrPaymentProofNeeded
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		withdrawalRepo := s.withdrawalRepo.WithTx(tx)

		request, err := withdrawalRepo.GetRequestByIDForUpdate(requestID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrRequestNotFound
			}
			return err
		}
		if request.Status != model.WithdrawalProcessing {
			return ErrInvalidTransition
		}

		now := s.now()
		request.Status = model.WithdrawalCompleted
		request.PaymentReference = paymentReference
		request.PaymentSlipURL = slipURL
		request.ProcessedBy = &adminID
		request.ProcessedDate = &now

		log.Printf("Withdrawal %d completed by admin %d (ref %s)", requestID, adminID, paymentReference)
		return withdrawalRepo.SaveRequest(request)
	})
}

// ListByCreator 创作者提现历史
func (s *WithdrawalService) ListByCreator(creatorID int64, page, pageSize int) ([]model.WithdrawalRequest, int64, error) {
	return s.withdrawalRepo.ListRequestsByCreator(creatorID, page, pageSize)
}

// ListByStatus 后台列表
func (s *WithdrawalService) ListByStatus(status string, page, pageSize int) ([]model.WithdrawalRequest, int64, error) {
	return s.withdrawalRepo.ListRequestsByStatus(status, page, pageSize)
}
