package repository

import (
	"context"

	"wellness_shop/internal/domain/catalog/model"

	"gorm.io/gorm"
)

type PromotionRepository interface {
	Create(ctx context.Context, promo *model.Promotion) error
	Update(ctx context.Context, promo *model.Promotion) error
	Delete(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*model.Promotion, error)
	GetByCode(ctx context.Context, code string) (*model.Promotion, error)
	List(ctx context.Context) ([]model.Promotion, error)
	ListEnabled(ctx context.Context) ([]model.Promotion, error)
	SetActive(ctx context.Context, id string, active bool) (bool, error)
}

type promotionRepository struct {
	db *gorm.DB
}

func NewPromotionRepository(db *gorm.DB) PromotionRepository {
	return &promotionRepository{db: db}
}

func (r *promotionRepository) Create(ctx context.Context, promo *model.Promotion) error {
	return r.db.WithContext(ctx).Create(promo).Error
}

func (r *promotionRepository) Update(ctx context.Context, promo *model.Promotion) error {
	return r.db.WithContext(ctx).Save(promo).Error
}

func (r *promotionRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Promotion{})
	return result.RowsAffected > 0, result.Error
}

func (r *promotionRepository) GetByID(ctx context.Context, id string) (*model.Promotion, error) {
	var promo model.Promotion
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&promo).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *promotionRepository) GetByCode(ctx context.Context, code string) (*model.Promotion, error) {
	var promo model.Promotion
	if err := r.db.WithContext(ctx).Where("promo_code = ?", code).First(&promo).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *promotionRepository) List(ctx context.Context) ([]model.Promotion, error) {
	var promos []model.Promotion
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&promos).Error
	return promos, err
}

// ListEnabled is_active 为 true 的促销，有效期由调用方过滤
func (r *promotionRepository) ListEnabled(ctx context.Context) ([]model.Promotion, error) {
	var promos []model.Promotion
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("created_at DESC").Find(&promos).Error
	return promos, err
}

func (r *promotionRepository) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Promotion{}).Where("id = ?", id).Update("is_active", active)
	return result.RowsAffected > 0, result.Error
}
