package repository

import (
	"gorm.io/gorm"

	"github.com/RoshaanShahid/AudioX-sub000/internal/model"
)

type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) WithTx(tx *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: tx}
}

// ---- 提现申请 ----

func (r *WithdrawalRepository) CreateRequest(req *model.WithdrawalRequest) error {
	return r.db.Create(req).Error
}

func (r *WithdrawalRepository) GetRequestByID(id int64) (*model.WithdrawalRequest, error) {
	var req model.WithdrawalRequest
	err := r.db.Where("id = ?", id).First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetRequestByIDForUpdate 锁定申请行，状态转移一次只能有一个赢家。
// 锁序：Subscription 之后、WithdrawalAccount 之前。
func (r *WithdrawalRepository) GetRequestByIDForUpdate(id int64) (*model.WithdrawalRequest, error) {
	var req model.WithdrawalRequest
	err := forUpdate(r.db).Where("id = ?", id).First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *WithdrawalRepository) SaveRequest(req *model.WithdrawalRequest) error {
	return r.db.Save(req).Error
}

// ListRequestsByCreator 创作者提现历史
func (r *WithdrawalRepository) ListRequestsByCreator(creatorID int64, page, pageSize int) ([]model.WithdrawalRequest, int64, error) {
	var reqs []model.WithdrawalRequest
	var total int64

	query := r.db.Model(&model.WithdrawalRequest{}).Where("creator_id = ?", creatorID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("request_date DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&reqs).Error
	if err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

// ListRequestsByStatus 后台按状态筛选，空状态返回全部
func (r *WithdrawalRepository) ListRequestsByStatus(status string, page, pageSize int) ([]model.WithdrawalRequest, int64, error) {
	var reqs []model.WithdrawalRequest
	var total int64

	query := r.db.Model(&model.WithdrawalRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("request_date ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&reqs).Error
	if err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

// HasOpenRequestForAccount 账户是否被未终态申请引用（引用中禁止删除）
func (r *WithdrawalRepository) HasOpenRequestForAccount(accountID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.WithdrawalRequest{}).
		Where("account_id = ? AND status IN ?", accountID,
			[]string{model.WithdrawalPending, model.WithdrawalProcessing}).
		Count(&count).Error
	return count > 0, err
}

// ---- 提现账户 ----

func (r *WithdrawalRepository) CreateAccount(account *model.WithdrawalAccount) error {
	return r.db.Create(account).Error
}

func (r *WithdrawalRepository) GetAccountByID(id int64) (*model.WithdrawalAccount, error) {
	var account model.WithdrawalAccount
	err := r.db.Where("id = ?", id).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *WithdrawalRepository) ListAccountsByCreator(creatorID int64) ([]model.WithdrawalAccount, error) {
	var accounts []model.WithdrawalAccount
	err := r.db.Where("creator_id = ?", creatorID).
		Order("is_primary DESC, created_at ASC").Find(&accounts).Error
	return accounts, err
}

// ClearPrimary 取消该创作者现有主账户标记
func (r *WithdrawalRepository) ClearPrimary(creatorID int64) error {
	return r.db.Model(&model.WithdrawalAccount{}).
		Where("creator_id = ? AND is_primary = ?", creatorID, true).
		Update("is_primary", false).Error
}

func (r *WithdrawalRepository) SetPrimary(id int64) error {
	return r.db.Model(&model.WithdrawalAccount{}).Where("id = ?", id).
		Update("is_primary", true).Error
}

func (r *WithdrawalRepository) DeleteAccount(id int64) error {
	return r.db.Delete(&model.WithdrawalAccount{}, id).Error
}
