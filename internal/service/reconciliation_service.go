package service

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/RoshaanShahid/AudioX-sub000/internal/model"
	"github.com/RoshaanShahid/AudioX-sub000/internal/repository"
)

var (
	ErrReconciliationNotFound = errors.New("对账记录不存在")
	ErrAlreadyResolved        = errors.New("对账记录已处理")
	ErrCreatorStillBlocked    = errors.New("创作者尚未恢复，无法补发")
)

// ReconciliationService 管理员补发欠付分成：创作者恢复后
// 以 adjustment 收益入账并关闭对账记录。
type ReconciliationService struct {
	db                 *gorm.DB
	creatorRepo        *repository.CreatorRepository
	audiobookRepo      *repository.AudiobookRepository
	purchaseRepo       *repository.PurchaseRepository
	earningRepo        *repository.EarningRepository
	reconciliationRepo *repository.ReconciliationRepository
	now                func() time.Time
}

func NewReconciliationService(
	db *gorm.DB,
	creatorRepo *repository.CreatorRepository,
	audiobookRepo *repository.AudiobookRepository,
	purchaseRepo *repository.PurchaseRepository,
	earningRepo *repository.EarningRepository,
	reconciliationRepo *repository.ReconciliationRepository,
) *ReconciliationService {
	return &ReconciliationService{
		db:                 db,
		creatorRepo:        creatorRepo,
		audiobookRepo:      audiobookRepo,
		purchaseRepo:       purchaseRepo,
		earningRepo:        earningRepo,
		reconciliationRepo: reconciliationRepo,
		now:                time.Now,
	}
}

// ListUnresolved 待处理对账列表
func (s *ReconciliationService) ListUnresolved(page, pageSize int) ([]model.Reconciliation, int64, error) {
	return s.reconciliationRepo.ListUnresolved(page, pageSize)
}

// Resolve 补发欠付分成。创作者必须已恢复为 approved；
// 入账金额为登记时快照的 owed_share，不按当前费率重算。
func (s *ReconciliationService) Resolve(recID, adminID int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		creatorRepo := s.creatorRepo.WithTx(tx)
		audiobookRepo := s.audiobookRepo.WithTx(tx)
		earningRepo := s.earningRepo.WithTx(tx)
		reconciliationRepo := s.reconciliationRepo.WithTx(tx)

		rec, err := reconciliationRepo.GetByIDForUpdate(recID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrReconciliationNotFound
			}
			return err
		}
		if rec.Resolved {
			return ErrAlreadyResolved
		}

		// 登记时创作者可能不存在，此时从有声书反查
		creatorID := int64(0)
		if rec.CreatorID != nil {
			creatorID = *rec.CreatorID
		} else {
			audiobook, err := audiobookRepo.GetByID(rec.AudiobookID)
			if err != nil {
				if repository.IsNotFound(err) {
					return ErrCreatorStillBlocked
				}
				return err
			}
			creatorID = audiobook.CreatorID
		}

		creator, err := creatorRepo.GetByIDForUpdate(creatorID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrCreatorStillBlocked
			}
			return err
		}
		if !creator.CanReceiveEarnings() {
			return ErrCreatorStillBlocked
		}

		title := ""
		if audiobook, err := audiobookRepo.GetByID(rec.AudiobookID); err == nil {
			title = audiobook.Title
		}

		earning := &model.CreatorEarning{
			CreatorID:                   creator.ID,
			AudiobookID:                 &rec.AudiobookID,
			AmountEarned:                rec.OwedShare,
			Type:                        model.EarningAdjustment,
			AudiobookTitleAtTransaction: title,
			EarnedAt:                    s.now(),
		}
		if err := earningRepo.Create(earning); err != nil {
			return err
		}

		// 购买履约时创作者不可用，毛收入与分成都未入账，这里一并补
		gross := rec.OwedShare
		if purchase, err := s.purchaseRepo.WithTx(tx).GetByID(rec.PurchaseID); err == nil {
			gross = purchase.AmountPaid
		}
		if err := creatorRepo.AddEarnings(creator.ID, gross, rec.OwedShare); err != nil {
			return err
		}

		log.Printf("Reconciliation %d resolved by admin %d, creator %d credited %s",
			recID, adminID, creator.ID, rec.OwedShare.String())
		return reconciliationRepo.MarkResolved(recID, earning.ID, s.now())
	})
}
