package repository

import (
	"gorm.io/gorm"

	"github.com/RoshaanShahid/AudioX-sub000/internal/model"
)

type EarningRepository struct {
	db *gorm.DB
}

func NewEarningRepository(db *gorm.DB) *EarningRepository {
	return &EarningRepository{db: db}
}

func (r *EarningRepository) WithTx(tx *gorm.DB) *EarningRepository {
	return &EarningRepository{db: tx}
}

func (r *EarningRepository) Create(earning *model.CreatorEarning) error {
	return r.db.Create(earning).Error
}

func (r *EarningRepository) GetByPurchaseID(purchaseID int64) (*model.CreatorEarning, error) {
	var earning model.CreatorEarning
	err := r.db.Where("purchase_id = ?", purchaseID).First(&earning).Error
	if err != nil {
		return nil, err
	}
	return &earning, nil
}

// ListByCreator 创作者收益流水分页
func (r *EarningRepository) ListByCreator(creatorID int64, page, pageSize int) ([]model.CreatorEarning, int64, error) {
	var earnings []model.CreatorEarning
	var total int64

	query := r.db.Model(&model.CreatorEarning{}).Where("creator_id = ?", creatorID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("earned_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&earnings).Error
	if err != nil {
		return nil, 0, err
	}
	return earnings, total, nil
}
