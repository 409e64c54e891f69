package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/RoshaanShahid/AudioX-sub000/internal/model"
)

type CreatorRepository struct {
	db *gorm.DB
}

func NewCreatorRepository(db *gorm.DB) *CreatorRepository {
	return &CreatorRepository{db: db}
}

func (r *CreatorRepository) WithTx(tx *gorm.DB) *CreatorRepository {
	return &CreatorRepository{db: tx}
}

func (r *CreatorRepository) Create(creator *model.Creator) error {
	return r.db.Create(creator).Error
}

func (r *CreatorRepository) GetByID(id int64) (*model.Creator, error) {
	var creator model.Creator
	err := r.db.Where("id = ?", id).First(&creator).Error
	if err != nil {
		return nil, err
	}
	return &creator, nil
}

func (r *CreatorRepository) GetByUserID(userID int64) (*model.Creator, error) {
	var creator model.Creator
	err := r.db.Where("user_id = ?", userID).First(&creator).Error
	if err != nil {
		return nil, err
	}
	return &creator, nil
}

// GetByIDForUpdate 锁定创作者行后读取。锁序：User 之后、Audiobook 之前。
func (r *CreatorRepository) GetByIDForUpdate(id int64) (*model.Creator, error) {
	var creator model.Creator
	err := forUpdate(r.db).Where("id = ?", id).First(&creator).Error
	if err != nil {
		return nil, err
	}
	return &creator, nil
}

// AddEarnings 毛收入与可提现余额的增量更新，持锁事务内调用。
// gross 计入 total_earning，share 计入 available_balance。
func (r *CreatorRepository) AddEarnings(id int64, gross, share decimal.Decimal) error {
	return r.db.Model(&model.Creator{}).Where("id = ?", id).Updates(map[string]interface{}{
		"total_earning":     gorm.Expr("total_earning + ?", gross),
		"available_balance": gorm.Expr("available_balance + ?", share),
	}).Error
}

// AddAvailableBalance 可提现余额增量（提现退回为正、托管扣减为负）
func (r *CreatorRepository) AddAvailableBalance(id int64, delta decimal.Decimal) error {
	return r.db.Model(&model.Creator{}).Where("id = ?", id).
		Update("available_balance", gorm.Expr("available_balance + ?", delta)).Error
}

// StampWithdrawalDate 记录最近一次提现申请时间
func (r *CreatorRepository) StampWithdrawalDate(id int64, at time.Time) error {
	return r.db.Model(&model.Creator{}).Where("id = ?", id).
		Update("last_withdrawal_request_date", at).Error
}

// ClearWithdrawalDate 仅当记录的时间等于 at 时清除（撤销语义）
func (r *CreatorRepository) ClearWithdrawalDate(id int64, at time.Time) error {
	return r.db.Model(&model.Creator{}).
		Where("id = ? AND last_withdrawal_request_date = ?", id, at).
		Update("last_withdrawal_request_date", nil).Error
}

func (r *CreatorRepository) UpdateStatus(id int64, status string) error {
	return r.db.Model(&model.Creator{}).Where("id = ?", id).
		Update("status", status).Error
}
