package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/RoshaanShahid/AudioX-sub000/internal/model"
	"github.com/RoshaanShahid/AudioX-sub000/internal/repository"
)

var (
	ErrInsufficientCoins = errors.New("金币余额不足")
	ErrGiftToSelf        = errors.New("不能赠送给自己")
	ErrRecipientNotFound = errors.New("受赠用户不存在")
)

// CoinService 金币消费与赠送。余额只增不减到负数，
// 扣减前在行锁下校验。
type CoinService struct {
	db       *gorm.DB
	userRepo *repository.UserRepository
	coinRepo *repository.CoinRepository
}

func NewCoinService(db *gorm.DB, userRepo *repository.UserRepository, coinRepo *repository.CoinRepository) *CoinService {
	return &CoinService{db: db, userRepo: userRepo, coinRepo: coinRepo}
}

// SpendCoins 消费金币，记负数流水
func (s *CoinService) SpendCoins(userID, amount int64, description string) error {
	if amount <= 0 {
		return ErrInsufficientCoins
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)
		coinRepo := s.coinRepo.WithTx(tx)

		user, err := userRepo.GetByIDForUpdate(userID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrUserNotFound
			}
			return err
		}
		if user.Coins < amount {
			return ErrInsufficientCoins
		}

		if err := userRepo.AddCoins(userID, -amount); err != nil {
			return err
		}
		return coinRepo.Create(&model.CoinTransaction{
			UserID:      userID,
			Type:        model.CoinSpent,
			Amount:      -amount,
			Status:      "completed",
			Description: description,
		})
	})
}

// GiftCoins 用户间赠送。两个用户行按 ID 升序加锁避免死锁，
// 成对记 gift_sent / gift_received 流水。
func (s *CoinService) GiftCoins(fromUserID, toUserID, amount int64) error {
	if amount <= 0 {
		return ErrInsufficientCoins
	}
	if fromUserID == toUserID {
		return ErrGiftToSelf
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)
		coinRepo := s.coinRepo.WithTx(tx)

		first, second := fromUserID, toUserID
		if second < first {
			first, second = second, first
		}
		var sender *model.User
		for _, id := range []int64{first, second} {
			u, err := userRepo.GetByIDForUpdate(id)
			if err != nil {
				if repository.IsNotFound(err) {
					if id == toUserID {
						return ErrRecipientNotFound
					}
					return ErrUserNotFound
				}
				return err
			}
			if id == fromUserID {
				sender = u
			}
		}

		if sender.Coins < amount {
			return ErrInsufficientCoins
		}

		if err := userRepo.AddCoins(fromUserID, -amount); err != nil {
			return err
		}
		if err := userRepo.AddCoins(toUserID, amount); err != nil {
			return err
		}

		if err := coinRepo.Create(&model.CoinTransaction{
			UserID: fromUserID,
			Type:   model.CoinGiftSent,
			Amount: -amount,
			Status: "completed",
		}); err != nil {
			return err
		}
		return coinRepo.Create(&model.CoinTransaction{
			UserID: toUserID,
			Type:   model.CoinGiftReceived,
			Amount: amount,
			Status: "completed",
		})
	})
}

// ListTransactions 用户金币流水分页
func (s *CoinService) ListTransactions(userID int64, page, pageSize int) ([]model.CoinTransaction, int64, error) {
	return s.coinRepo.ListByUser(userID, page, pageSize)
}
