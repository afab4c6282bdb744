package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"wellness_shop/internal/domain/order/model"
	"wellness_shop/internal/domain/order/presenter"
	"wellness_shop/internal/domain/order/pricing"
	"wellness_shop/internal/domain/order/repository"
	"wellness_shop/internal/pkg/realtime"
	"wellness_shop/internal/pkg/uploader"
	"wellness_shop/pkg/logger"
	"wellness_shop/pkg/metrics"
	"wellness_shop/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrVersionConflict   = errors.New("order was modified concurrently")
	ErrPromoInvalid      = errors.New("promo code is unknown or inactive")
	ErrUploadFailed      = errors.New("proof upload failed")
)

// PromotionLookup 按促销码查有效促销，找不到或未生效时返回 nil, nil
type PromotionLookup interface {
	PromoTerms(ctx context.Context, code string) (*pricing.PromoTerms, error)
}

// Notifier 运营提醒
type Notifier interface {
	Notify(ctx context.Context, title, body string, ext map[string]string) error
}

// Settings 订单相关配置
type Settings struct {
	UnitPrice   int64
	ProofBucket string
	ProofRule   uploader.Rule
}

// Dependencies 订单服务依赖，Publisher/Notifier/Metrics 可为空
type Dependencies struct {
	Repo       repository.OrderRepository
	Promotions PromotionLookup
	Presenters *presenter.Registry
	Uploader   uploader.Uploader
	Publisher  realtime.Publisher
	Notifier   Notifier
	Metrics    *metrics.MetricsCollector
}

// ProofFile 上传的支付凭证
type ProofFile struct {
	Filename    string
	Size        int64
	ContentType string
	Reader      io.Reader
}

type CreateOrderResult struct {
	Order        *model.Order            `json:"order"`
	Instructions *presenter.Instructions `json:"instructions"`
}

type OrderSummary struct {
	Total  int64               `json:"total"`
	Counts []model.StatusCount `json:"counts"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error)
	GetInstructions(ctx context.Context, id string) (*presenter.Instructions, error)
	AttachProof(ctx context.Context, id string, file ProofFile) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context, status string, p utils.Pagination) (*utils.PageResult, error)
	Summary(ctx context.Context) (*OrderSummary, error)
	UpdateStatus(ctx context.Context, id string, to model.Status, expectedVersion int) (*model.Order, error)
	ReconcileStale(ctx context.Context, olderThan time.Duration, limit int, autoCancel bool) (int, error)
}

type orderService struct {
	Dependencies
	settings Settings
	now      func() time.Time
}

func NewOrderService(deps Dependencies, settings Settings) OrderService {
	if deps.Publisher == nil {
		deps.Publisher = realtime.NopPublisher{}
	}
	return &orderService{
		Dependencies: deps,
		settings:     settings,
		now:          time.Now,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	in.normalize()
	if err := validateOrderInput(&in); err != nil {
		return nil, err
	}

	quantity := int64(in.Quantity)
	override, err := s.resolvePromo(ctx, in.PromoCode, quantity)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		FullName:      in.FullName,
		Email:         in.Email,
		Address:       in.Address,
		Phone:         in.Phone,
		Quantity:      in.Quantity,
		PaymentMethod: model.PaymentMethod(in.PaymentMethod),
		TotalPrice:    pricing.ComputeTotal(quantity, s.settings.UnitPrice, override),
		PromoCode:     in.PromoCode,
		Status:        model.StatusPending,
		Version:       1,
	}

	if err := s.Repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	instructions, err := s.Presenters.Present(order.PaymentMethod, order.TotalPrice)
	if err != nil {
		return nil, err
	}

	s.Metrics.RecordOrderCreated(string(order.PaymentMethod), order.TotalPrice, override != nil)
	s.publish(ctx, realtime.NewEvent(realtime.TableOrders, realtime.ActionInsert, order.ID, *order))

	return &CreateOrderResult{Order: order, Instructions: instructions}, nil
}

// resolvePromo 促销价只在服务端计算，客户端只能提交促销码
func (s *orderService) resolvePromo(ctx context.Context, code string, quantity int64) (*int64, error) {
	if code == "" {
		return nil, nil
	}
	if s.Promotions == nil {
		return nil, ErrPromoInvalid
	}

	terms, err := s.Promotions.PromoTerms(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("lookup promo %q: %w", code, err)
	}
	if terms == nil {
		return nil, ErrPromoInvalid
	}

	override := terms.Override(quantity, s.settings.UnitPrice)
	if override == nil {
		return nil, ErrPromoInvalid
	}
	return override, nil
}

// GetOrder id 不是合法 UUID 时直接返回不存在，不打到数据库
func (s *orderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrOrderNotFound
	}
	order, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func (s *orderService) GetInstructions(ctx context.Context, id string) (*presenter.Instructions, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Presenters.Present(order.PaymentMethod, order.TotalPrice)
}

// AttachProof 先做本地校验，再上传，最后条件更新订单
// 上传成功但更新失败时对象会留在桶里，订单保持原状
func (s *orderService) AttachProof(ctx context.Context, id string, file ProofFile) (*model.Order, error) {
	rule := s.settings.ProofRule
	if err := rule.CheckSize(file.Size); err != nil {
		s.Metrics.RecordProofUpload("rejected")
		return nil, err
	}
	contentType, body, err := rule.Inspect(file.Reader, file.ContentType)
	if err != nil {
		s.Metrics.RecordProofUpload("rejected")
		return nil, err
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	target := model.StatusPaymentPendingVerification
	if !model.CanTransition(order.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, target)
	}

	objectName := fmt.Sprintf("%s_%d%s", order.ID, s.now().UnixMilli(), uploader.Extension(file.Filename, contentType))
	url, err := s.Uploader.Upload(ctx, s.settings.ProofBucket, objectName, body, contentType)
	if err != nil {
		s.Metrics.RecordProofUpload("failed")
		logger.Log.Error("proof upload failed", zap.String("order_id", order.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	s.Metrics.RecordUpload(s.settings.ProofBucket, file.Size)

	ok, err := s.Repo.UpdateStatus(ctx, order.ID, order.Status, order.Version, target, &url)
	if err != nil {
		s.Metrics.RecordProofUpload("failed")
		return nil, fmt.Errorf("attach proof: %w", err)
	}
	if !ok {
		s.Metrics.RecordProofUpload("failed")
		return nil, ErrVersionConflict
	}

	from := order.Status
	order.Status = target
	order.PaymentProofURL = &url
	order.Version++

	s.Metrics.RecordProofUpload("accepted")
	s.Metrics.RecordStatusChange(string(from), string(target))
	s.publish(ctx, realtime.NewEvent(realtime.TableOrders, realtime.ActionUpdate, order.ID, *order))
	go s.notifyOperator(order)

	return order, nil
}

func (s *orderService) notifyOperator(order *model.Order) {
	if s.Notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	title := "Nouvelle preuve de paiement"
	body := fmt.Sprintf("%s - %s (%s)", order.FullName, presenter.FormatAmount(order.TotalPrice, "FCFA"), order.PaymentMethod)
	if err := s.Notifier.Notify(ctx, title, body, map[string]string{"order_id": order.ID}); err != nil {
		logger.Log.Warn("operator push failed", zap.String("order_id", order.ID), zap.Error(err))
	}
}

func (s *orderService) ListOrders(ctx context.Context, status string, p utils.Pagination) (*utils.PageResult, error) {
	filter := model.Status(status)
	if filter != "" && !filter.Valid() {
		return nil, ErrInvalidStatus
	}

	offset, limit := p.GetPageOffset()
	orders, total, err := s.Repo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []model.Order{}
	}

	result := utils.NewPageResult(orders, total, p)
	return &result, nil
}

// Summary 每个状态都返回，没有订单的状态计数为 0
func (s *orderService) Summary(ctx context.Context) (*OrderSummary, error) {
	rows, err := s.Repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	byStatus := make(map[model.Status]int64, len(rows))
	for _, r := range rows {
		byStatus[r.Status] = r.Count
	}

	summary := &OrderSummary{Counts: make([]model.StatusCount, 0, len(model.AllStatuses))}
	for _, st := range model.AllStatuses {
		summary.Counts = append(summary.Counts, model.StatusCount{Status: st, Count: byStatus[st]})
		summary.Total += byStatus[st]
	}
	return summary, nil
}

// UpdateStatus 管理员修改状态，expectedVersion 与当前版本不一致时返回冲突
func (s *orderService) UpdateStatus(ctx context.Context, id string, to model.Status, expectedVersion int) (*model.Order, error) {
	if !to.Valid() {
		return nil, ErrInvalidStatus
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Version != expectedVersion {
		return nil, ErrVersionConflict
	}
	if !model.CanTransition(order.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, to)
	}

	ok, err := s.Repo.UpdateStatus(ctx, order.ID, order.Status, expectedVersion, to, nil)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if !ok {
		return nil, ErrVersionConflict
	}

	from := order.Status
	order.Status = to
	order.Version++

	s.Metrics.RecordStatusChange(string(from), string(to))
	s.publish(ctx, realtime.NewEvent(realtime.TableOrders, realtime.ActionUpdate, order.ID, *order))
	logger.Log.Info("order status changed",
		zap.String("order_id", order.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.Int("version", order.Version),
	)
	return order, nil
}

// ReconcileStale 找出超时未付款的 pending 订单并发布 stale 事件，autoCancel 时顺带取消
func (s *orderService) ReconcileStale(ctx context.Context, olderThan time.Duration, limit int, autoCancel bool) (int, error) {
	orders, err := s.Repo.ListStalePending(ctx, s.now().Add(-olderThan), limit)
	if err != nil {
		return 0, fmt.Errorf("list stale orders: %w", err)
	}

	for i := range orders {
		order := &orders[i]
		logger.Log.Warn("stale pending order",
			zap.String("order_id", order.ID),
			zap.Time("created_at", order.CreatedAt),
			zap.String("payment_method", string(order.PaymentMethod)),
		)
		s.publish(ctx, realtime.NewEvent(realtime.TableOrders, realtime.ActionStale, order.ID, *order))

		if !autoCancel {
			continue
		}
		ok, err := s.Repo.UpdateStatus(ctx, order.ID, model.StatusPending, order.Version, model.StatusCancelled, nil)
		if err != nil {
			return 0, fmt.Errorf("cancel stale order %s: %w", order.ID, err)
		}
		if !ok {
			// 期间客户上传了凭证或管理员已处理
			continue
		}
		order.Status = model.StatusCancelled
		order.Version++
		s.Metrics.RecordStatusChange(string(model.StatusPending), string(model.StatusCancelled))
		s.publish(ctx, realtime.NewEvent(realtime.TableOrders, realtime.ActionUpdate, order.ID, *order))
	}

	s.Metrics.RecordStaleOrders(len(orders))
	return len(orders), nil
}

// publish 通知失败只记日志，不影响主流程
func (s *orderService) publish(ctx context.Context, evt realtime.Event) {
	if err := s.Publisher.Publish(ctx, evt); err != nil {
		logger.Log.Warn("publish change event failed",
			zap.String("table", evt.Table),
			zap.String("action", evt.Action),
			zap.Error(err),
		)
	}
}
