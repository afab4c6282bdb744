package repository

import (
	"context"

	"wellness_shop/internal/domain/catalog/model"

	"gorm.io/gorm"
)

type ImageRepository interface {
	Create(ctx context.Context, image *model.Image) error
	Update(ctx context.Context, image *model.Image) error
	Delete(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*model.Image, error)
	GetByKey(ctx context.Context, key string) (*model.Image, error)
	List(ctx context.Context) ([]model.Image, error)
}

type imageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *model.Image) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *imageRepository) Update(ctx context.Context, image *model.Image) error {
	return r.db.WithContext(ctx).Save(image).Error
}

func (r *imageRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Image{})
	return result.RowsAffected > 0, result.Error
}

func (r *imageRepository) GetByID(ctx context.Context, id string) (*model.Image, error) {
	var image model.Image
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *imageRepository) GetByKey(ctx context.Context, key string) (*model.Image, error) {
	var image model.Image
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *imageRepository) List(ctx context.Context) ([]model.Image, error) {
	var images []model.Image
	err := r.db.WithContext(ctx).Order("key ASC").Find(&images).Error
	return images, err
}

type VideoRepository interface {
	Create(ctx context.Context, video *model.Video) error
	Update(ctx context.Context, video *model.Video) error
	Delete(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*model.Video, error)
	List(ctx context.Context, activeOnly bool) ([]model.Video, error)
	SetActive(ctx context.Context, id string, active bool) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type videoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) Create(ctx context.Context, video *model.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

func (r *videoRepository) Update(ctx context.Context, video *model.Video) error {
	return r.db.WithContext(ctx).Save(video).Error
}

func (r *videoRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Video{})
	return result.RowsAffected > 0, result.Error
}

func (r *videoRepository) GetByID(ctx context.Context, id string) (*model.Video, error) {
	var video model.Video
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&video).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

// List 按 display_order 升序
func (r *videoRepository) List(ctx context.Context, activeOnly bool) ([]model.Video, error) {
	var videos []model.Video
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("display_order ASC, created_at ASC").Find(&videos).Error
	return videos, err
}

func (r *videoRepository) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Video{}).Where("id = ?", id).Update("is_active", active)
	return result.RowsAffected > 0, result.Error
}

func (r *videoRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Video{}).Count(&count).Error
	return count, err
}
