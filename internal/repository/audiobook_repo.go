package repository

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/RoshaanShahid/AudioX-sub000/internal/model"
)

type AudiobookRepository struct {
	db *gorm.DB
}

func NewAudiobookRepository(db *gorm.DB) *AudiobookRepository {
	return &AudiobookRepository{db: db}
}

func (r *AudiobookRepository) WithTx(tx *gorm.DB) *AudiobookRepository {
	return &AudiobookRepository{db: tx}
}

func (r *AudiobookRepository) Create(audiobook *model.Audiobook) error {
	return r.db.Create(audiobook).Error
}

func (r *AudiobookRepository) GetByID(id int64) (*model.Audiobook, error) {
	var audiobook model.Audiobook
	err := r.db.Where("id = ?", id).First(&audiobook).Error
	if err != nil {
		return nil, err
	}
	return &audiobook, nil
}

func (r *AudiobookRepository) GetBySlug(slug string) (*model.Audiobook, error) {
	var audiobook model.Audiobook
	err := r.db.Where("slug = ?", slug).First(&audiobook).Error
	if err != nil {
		return nil, err
	}
	return &audiobook, nil
}

// GetByIDForUpdate 锁定有声书行后读取。锁序：Creator 之后。
func (r *AudiobookRepository) GetByIDForUpdate(id int64) (*model.Audiobook, error) {
	var audiobook model.Audiobook
	err := forUpdate(r.db).Where("id = ?", id).First(&audiobook).Error
	if err != nil {
		return nil, err
	}
	return &audiobook, nil
}

// AddSale 销量加一、累计流水加购买全额，持锁事务内调用
func (r *AudiobookRepository) AddSale(id int64, amountPaid decimal.Decimal) error {
	return r.db.Model(&model.Audiobook{}).Where("id = ?", id).Updates(map[string]interface{}{
		"total_sales":             gorm.Expr("total_sales + 1"),
		"total_revenue_generated": gorm.Expr("total_revenue_generated + ?", amountPaid),
	}).Error
}
