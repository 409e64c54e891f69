package service

import (
	"errors"
	"regexp"

	"gorm.io/gorm"

	"github.com/RoshaanShahid/AudioX-sub000/internal/model"
	"github.com/RoshaanShahid/AudioX-sub000/internal/repository"
)

var (
	ErrNotACreator       = errors.New("当前用户不是创作者")
	ErrInvalidIdentifier = errors.New("账户标识格式错误")
)

// 巴基斯坦 IBAN：PK + 2 位校验 + 4 位银行码 + 16 位账号
var ibanPattern = regexp.MustCompile(`^PK\d{2}[A-Z]{4}[A-Z0-9]{16}$`)

// 本地手机号：03 开头共 11 位
var mobilePattern = regexp.MustCompile(`^03\d{9}$`)

// CreatorService 创作者侧操作：提现账户管理、收益流水
type CreatorService struct {
	db             *gorm.DB
	creatorRepo    *repository.CreatorRepository
	earningRepo    *repository.EarningRepository
	withdrawalRepo *repository.WithdrawalRepository
}

func NewCreatorService(
	db *gorm.DB,
	creatorRepo *repository.CreatorRepository,
	earningRepo *repository.EarningRepository,
	withdrawalRepo *repository.WithdrawalRepository,
) *CreatorService {
	return &CreatorService{
		db:             db,
		creatorRepo:    creatorRepo,
		earningRepo:    earningRepo,
		withdrawalRepo: withdrawalRepo,
	}
}

// GetByUserID 按用户定位创作者档案
func (s *CreatorService) GetByUserID(userID int64) (*model.Creator, error) {
	creator, err := s.creatorRepo.GetByUserID(userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotACreator
		}
		return nil, err
	}
	return creator, nil
}

// validateIdentifier 银行账户校验 IBAN，移动钱包校验手机号
func validateIdentifier(accountType, identifier string) error {
	if accountType == model.AccountBank {
		if !ibanPattern.MatchString(identifier) {
			return ErrInvalidIdentifier
		}
		return nil
	}
	if !mobilePattern.MatchString(identifier) {
		return ErrInvalidIdentifier
	}
	return nil
}

// AddAccount 新增提现账户。设为主账户时先清掉旧的主标记，
// 每个创作者至多一个主账户。
func (s *CreatorService) AddAccount(creatorID int64, accountType, title, identifier string, isPrimary bool) (*model.WithdrawalAccount, error) {
	if err := validateIdentifier(accountType, identifier); err != nil {
		return nil, err
	}

	account := &model.WithdrawalAccount{
		CreatorID:    creatorID,
		Type:         accountType,
		AccountTitle: title,
		Identifier:   identifier,
		IsPrimary:    isPrimary,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		withdrawalRepo := s.withdrawalRepo.WithTx(tx)

		existing, err := withdrawalRepo.ListAccountsByCreator(creatorID)
		if err != nil {
			return err
		}
		// 第一个账户自动成为主账户
		if len(existing) == 0 {
			account.IsPrimary = true
		} else if isPrimary {
			if err := withdrawalRepo.ClearPrimary(creatorID); err != nil {
				return err
			}
		}
		return withdrawalRepo.CreateAccount(account)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// SetPrimaryAccount 切换主账户
func (s *CreatorService) SetPrimaryAccount(creatorID, accountID int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		withdrawalRepo := s.withdrawalRepo.WithTx(tx)

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

		if err := withdrawalRepo.ClearPrimary(creatorID); err != nil {
			return err
		}
		return withdrawalRepo.SetPrimary(accountID)
	})
}

// DeleteAccount 删除提现账户，被未完结申请引用时拒绝
func (s *CreatorService) DeleteAccount(creatorID, accountID int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		withdrawalRepo := s.withdrawalRepo.WithTx(tx)

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

		inUse, err := withdrawalRepo.HasOpenRequestForAccount(accountID)
		if err != nil {
			return err
		}
		if inUse {
			return ErrAccountInUse
		}
		return withdrawalRepo.DeleteAccount(accountID)
	})
}

// ListAccounts 创作者提现账户列表
func (s *CreatorService) ListAccounts(creatorID int64) ([]model.WithdrawalAccount, error) {
	return s.withdrawalRepo.ListAccountsByCreator(creatorID)
}

// ListEarnings 收益流水分页
func (s *CreatorService) ListEarnings(creatorID int64, page, pageSize int) ([]model.CreatorEarning, int64, error) {
	return s.earningRepo.ListByCreator(creatorID, page, pageSize)
}
