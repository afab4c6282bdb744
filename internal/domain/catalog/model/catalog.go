package model

import (
	"time"

	baseModel "wellness_shop/pkg/model"
)

// Promotion 促销活动，promo_code 可用于下单
// IsActive 不加 gorm default，否则 false 会被默认值覆盖
type Promotion struct {
	baseModel.BaseModel
	Title              string     `gorm:"type:varchar(200);not null" json:"title"`
	Description        string     `gorm:"type:text" json:"description,omitempty"`
	DiscountPercentage *int       `json:"discountPercentage,omitempty"`
	PromoCode          *string    `gorm:"type:varchar(64);uniqueIndex" json:"promoCode,omitempty"`
	PromoPrice         *int64     `json:"promoPrice,omitempty"` // 每盒促销价 FCFA
	ImageURL           string     `gorm:"type:text" json:"imageUrl,omitempty"`
	IsActive           bool       `gorm:"not null" json:"isActive"`
	StartDate          *time.Time `json:"startDate,omitempty"`
	EndDate            *time.Time `json:"endDate,omitempty"`
}

func (Promotion) TableName() string {
	return "promotions"
}

// ActiveAt 已启用且在有效期内
func (p *Promotion) ActiveAt(t time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.StartDate != nil && p.StartDate.After(t) {
		return false
	}
	if p.EndDate != nil && p.EndDate.Before(t) {
		return false
	}
	return true
}

// Image 页面图片，前端按 key 取用
type Image struct {
	baseModel.BaseModel
	Key         string `gorm:"type:varchar(100);uniqueIndex;not null" json:"key"`
	URL         string `gorm:"type:text;not null" json:"url"`
	AltText     string `gorm:"type:varchar(255)" json:"altText,omitempty"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

func (Image) TableName() string {
	return "images"
}

// Video 见证视频轮播
type Video struct {
	baseModel.BaseModel
	Title        string `gorm:"type:varchar(200);not null" json:"title"`
	Description  string `gorm:"type:text" json:"description,omitempty"`
	VideoURL     string `gorm:"type:text;not null" json:"videoUrl"`
	ThumbnailURL string `gorm:"type:text" json:"thumbnailUrl,omitempty"`
	IsActive     bool   `gorm:"not null" json:"isActive"`
	DisplayOrder int    `gorm:"not null;index" json:"displayOrder"`
}

func (Video) TableName() string {
	return "videos"
}
