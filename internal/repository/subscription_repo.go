package repository

import (
	"gorm.io/gorm"

	"github.com/RoshaanShahid/AudioX-sub000/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) WithTx(tx *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: tx}
}

func (r *SubscriptionRepository) Create(sub *model.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *SubscriptionRepository) GetByUserID(userID int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) GetByExternalID(externalID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("external_subscription_id = ?", externalID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByUserIDForUpdate 锁定订阅行后读取。锁序：Audiobook 之后。
func (r *SubscriptionRepository) GetByUserIDForUpdate(userID int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := forUpdate(r.db).Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByExternalIDForUpdate 按外部订阅 ID 锁定读取
func (r *SubscriptionRepository) GetByExternalIDForUpdate(externalID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := forUpdate(r.db).Where("external_subscription_id = ?", externalID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ExistsByExternalID 幂等判断：该外部订阅是否已落库
func (r *SubscriptionRepository) ExistsByExternalID(externalID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Subscription{}).
		Where("external_subscription_id = ?", externalID).Count(&count).Error
	return count > 0, err
}

func (r *SubscriptionRepository) Save(sub *model.Subscription) error {
	return r.db.Save(sub).Error
}
