package repository

import (
	"gorm.io/gorm"

	"github.com/RoshaanShahid/AudioX-sub000/internal/model"
)

type CoinRepository struct {
	db *gorm.DB
}

func NewCoinRepository(db *gorm.DB) *CoinRepository {
	return &CoinRepository{db: db}
}

func (r *CoinRepository) WithTx(tx *gorm.DB) *CoinRepository {
	return &CoinRepository{db: tx}
}

func (r *CoinRepository) Create(txn *model.CoinTransaction) error {
	return r.db.Create(txn).Error
}

// ExistsByEventKey 幂等判断：该外部事件键是否已有流水
func (r *CoinRepository) ExistsByEventKey(key string) (bool, error) {
	var count int64
	err := r.db.Model(&model.CoinTransaction{}).
		Where("external_event_key = ?", key).Count(&count).Error
	return count > 0, err
}

// ListByUser 用户流水分页，新的在前
func (r *CoinRepository) ListByUser(userID int64, page, pageSize int) ([]model.CoinTransaction, int64, error) {
	var txns []model.CoinTransaction
	var total int64

	query := r.db.Model(&model.CoinTransaction{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&txns).Error
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
