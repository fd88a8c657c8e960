package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/shumbadigital/lodgebooks_backend/config"
	"bitbucket.org/shumbadigital/lodgebooks_backend/utils"
)

type Residence struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"index;not null" json:"business_id"`
	Name       string    `gorm:"index;size:255;not null" json:"name" validate:"required"`
	Address    string    `gorm:"size:500" json:"address"`
	IsActive   *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetResidences(ctx context.Context) ([]*Residence, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	db := config.GetDB()
	var results []*Residence
	err := db.WithContext(ctx).Where("business_id = ?", businessId).Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func GetResidence(ctx context.Context, id int) (*Residence, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if err := utils.ValidateResourceId[Residence](ctx, businessId, id); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var result Residence
	if err := db.WithContext(ctx).Where("business_id = ?", businessId).First(&result, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &result, nil
}
