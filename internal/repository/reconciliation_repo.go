package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/RoshaanShahid/AudioX-sub000/internal/model"
)

type ReconciliationRepository struct {
	db *gorm.DB
}

func NewReconciliationRepository(db *gorm.DB) *ReconciliationRepository {
	return &ReconciliationRepository{db: db}
}

func (r *ReconciliationRepository) WithTx(tx *gorm.DB) *ReconciliationRepository {
	return &ReconciliationRepository{db: tx}
}

func (r *ReconciliationRepository) Create(rec *model.Reconciliation) error {
	return r.db.Create(rec).Error
}

func (r *ReconciliationRepository) GetByID(id int64) (*model.Reconciliation, error) {
	var rec model.Reconciliation
	err := r.db.Where("id = ?", id).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetByIDForUpdate 锁定对账行，防止并发补发
func (r *ReconciliationRepository) GetByIDForUpdate(id int64) (*model.Reconciliation, error) {
	var rec model.Reconciliation
	err := forUpdate(r.db).Where("id = ?", id).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListUnresolved 未处理的对账义务
func (r *ReconciliationRepository) ListUnresolved(page, pageSize int) ([]model.Reconciliation, int64, error) {
	var recs []model.Reconciliation
	var total int64

	query := r.db.Model(&model.Reconciliation{}).Where("resolved = ?", false)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&recs).Error
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// MarkResolved 标记已补发并关联 adjustment 收益
func (r *ReconciliationRepository) MarkResolved(id, earningID int64, at time.Time) error {
	return r.db.Model(&model.Reconciliation{}).Where("id = ?", id).Updates(map[string]interface{}{
		"resolved":            true,
		"resolved_earning_id": earningID,
		"resolved_at":         at,
	}).Error
}
