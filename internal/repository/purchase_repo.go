package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/RoshaanShahid/AudioX-sub000/internal/model"
)

type PurchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) WithTx(tx *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{db: tx}
}

func (r *PurchaseRepository) Create(purchase *model.AudiobookPurchase) error {
	return r.db.Create(purchase).Error
}

func (r *PurchaseRepository) GetByID(id int64) (*model.AudiobookPurchase, error) {
	var purchase model.AudiobookPurchase
	err := r.db.Where("id = ?", id).First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// ExistsBySessionID 幂等判断：该外部会话是否已有购买记录
func (r *PurchaseRepository) ExistsBySessionID(sessionID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.AudiobookPurchase{}).
		Where("external_session_id = ?", sessionID).Count(&count).Error
	return count > 0, err
}

// HasCompletedPurchase 用户是否已完成购买该有声书
func (r *PurchaseRepository) HasCompletedPurchase(userID, audiobookID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.AudiobookPurchase{}).
		Where("user_id = ? AND audiobook_id = ? AND status = ?", userID, audiobookID, model.PurchaseCompleted).
		Count(&count).Error
	return count > 0, err
}

// CountCompletedByAudiobook 核对冗余计数用
func (r *PurchaseRepository) CountCompletedByAudiobook(audiobookID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.AudiobookPurchase{}).
		Where("audiobook_id = ? AND status = ?", audiobookID, model.PurchaseCompleted).
		Count(&count).Error
	return count, err
}

// ListByUser 用户购买记录分页
func (r *PurchaseRepository) ListByUser(userID int64, page, pageSize int) ([]model.AudiobookPurchase, int64, error) {
	var purchases []model.AudiobookPurchase
	var total int64

	query := r.db.Model(&model.AudiobookPurchase{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&purchases).Error
	if err != nil {
		return nil, 0, err
	}
	return purchases, total, nil
}

// ErrNotFound 暴露给服务层做 errors.Is 判断
var ErrNotFound = gorm.ErrRecordNotFound

// IsNotFound 记录不存在判断
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
