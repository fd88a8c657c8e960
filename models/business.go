package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/shumbadigital/lodgebooks_backend/config"
	"bitbucket.org/shumbadigital/lodgebooks_backend/utils"
	"github.com/google/uuid"
)

type Business struct {
	ID        uuid.UUID `gorm:"primary_key;type:char(36)" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name" validate:"required"`
	Email     string    `gorm:"size:255" json:"email"`
	Timezone  string    `gorm:"size:100;default:'Africa/Harare'" json:"timezone"`
	Currency  string    `gorm:"size:10;default:'USD'" json:"currency"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetBusiness(ctx context.Context) (*Business, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	var business Business
	exists, err := config.GetRedisObject("Business:"+businessId, &business)
	if err != nil {
		return nil, err
	}
	if !exists {
		businessUuid, err := uuid.Parse(businessId)
		if err != nil {
			return nil, err
		}
		db := config.GetDB()
		if err := db.WithContext(ctx).Where("id = ?", businessUuid.String()).First(&business).Error; err != nil {
			return nil, utils.ErrorRecordNotFound
		}
		if err := config.SetRedisObject("Business:"+businessId, &business, 0); err != nil {
			return nil, err
		}
	}
	return &business, nil
}
