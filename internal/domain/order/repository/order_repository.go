package repository

import (
	"context"
	"time"

	"wellness_shop/internal/domain/order/model"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// OrderRepository 订单持久化，没有删除操作
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, status model.Status, offset, limit int) ([]model.Order, int64, error)
	CountByStatus(ctx context.Context) ([]model.StatusCount, error)
	// UpdateStatus 条件更新：只有 status 和 version 都与预期一致时才写入，返回是否命中
	UpdateStatus(ctx context.Context, id string, from model.Status, version int, to model.Status, proofURL *string) (bool, error)
	ListStalePending(ctx context.Context, before time.Time, limit int) ([]model.Order, error)
}

type orderRepository struct {
	db     *gorm.DB
	report *sqlx.DB
}

// NewOrderRepository report 用于统计查询，与 gorm 共用同一个连接池
func NewOrderRepository(db *gorm.DB, report *sqlx.DB) OrderRepository {
	return &orderRepository{db: db, report: report}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// List 按创建时间倒序，status 为空时不过滤
func (r *orderRepository) List(ctx context.Context, status model.Status, offset, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	filter := func(db *gorm.DB) *gorm.DB {
		if status != "" {
			return db.Where("status = ?", status)
		}
		return db
	}

	if err := r.db.WithContext(ctx).Model(&model.Order{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).Scopes(filter).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

const countByStatusSQL = `SELECT status, COUNT(*) AS count FROM orders GROUP BY status`

func (r *orderRepository) CountByStatus(ctx context.Context) ([]model.StatusCount, error) {
	var rows []model.StatusCount
	if err := r.report.SelectContext(ctx, &rows, countByStatusSQL); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, from model.Status, version int, to model.Status, proofURL *string) (bool, error) {
	updates := map[string]interface{}{
		"status":  to,
		"version": gorm.Expr("version + 1"),
	}
	if proofURL != nil {
		updates["payment_proof_url"] = *proofURL
	}

	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ? AND version = ?", id, from, version).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListStalePending 超时仍未上传凭证的 pending 订单，最早的优先
func (r *orderRepository) ListStalePending(ctx context.Context, before time.Time, limit int) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND payment_proof_url IS NULL AND created_at < ?", model.StatusPending, before).
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
