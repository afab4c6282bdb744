package model

import (
	baseModel "wellness_shop/pkg/model"
)

// PaymentMethod 支付方式
type PaymentMethod string

const (
	MethodOrange PaymentMethod = "orange"
	MethodWave   PaymentMethod = "wave"
)

// Valid 只接受 orange 和 wave
func (m PaymentMethod) Valid() bool {
	return m == MethodOrange || m == MethodWave
}

// Order 订单模型，订单不可删除
type Order struct {
	baseModel.BaseModel
	FullName        string        `gorm:"type:varchar(120);not null" json:"fullName"`
	Email           string        `gorm:"type:varchar(255)" json:"email,omitempty"`
	Address         string        `gorm:"type:text" json:"address,omitempty"`
	Phone           string        `gorm:"type:varchar(32);not null" json:"phone"`
	Quantity        int           `gorm:"not null" json:"quantity"`
	PaymentMethod   PaymentMethod `gorm:"type:varchar(16);not null" json:"paymentMethod"`
	TotalPrice      int64         `gorm:"not null" json:"totalPrice"` // FCFA，无小数
	PromoCode       string        `gorm:"type:varchar(64)" json:"promoCode,omitempty"`
	Status          Status        `gorm:"type:varchar(40);not null;default:'pending';index" json:"status"`
	PaymentProofURL *string       `gorm:"type:text" json:"paymentProofUrl,omitempty"`
	Version         int           `gorm:"not null;default:1" json:"version"`
}

func (Order) TableName() string {
	return "orders"
}

// StatusCount 按状态统计
type StatusCount struct {
	Status Status `db:"status" json:"status"`
	Count  int64  `db:"count" json:"count"`
}
