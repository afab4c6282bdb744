package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wellness_shop/internal/domain/catalog/model"
	"wellness_shop/internal/domain/catalog/repository"
	"wellness_shop/internal/domain/order/pricing"
	"wellness_shop/internal/pkg/realtime"
	"wellness_shop/pkg/cache"
	"wellness_shop/pkg/logger"
	"wellness_shop/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	activePromotionsKey = "promotions:active"
	activePromotionsTTL = 5 * time.Minute
	promoCodeKeyPrefix  = "promotions:code:"
	promotionsPattern   = "promotions:*"
)

// PromotionInput 创建/更新促销
type PromotionInput struct {
	Title              string     `json:"title" binding:"required"`
	Description        string     `json:"description"`
	DiscountPercentage *int       `json:"discountPercentage"`
	PromoCode          string     `json:"promoCode"`
	PromoPrice         *int64     `json:"promoPrice"`
	ImageURL           string     `json:"imageUrl"`
	IsActive           *bool      `json:"isActive"`
	StartDate          *time.Time `json:"startDate"`
	EndDate            *time.Time `json:"endDate"`
}

func (in *PromotionInput) check() error {
	fields := map[string]string{}
	in.Title = strings.TrimSpace(in.Title)
	in.PromoCode = strings.ToUpper(strings.TrimSpace(in.PromoCode))

	if in.Title == "" {
		fields["title"] = "Le titre est requis"
	}
	if d := in.DiscountPercentage; d != nil && (*d < 0 || *d > 100) {
		fields["discountPercentage"] = "La réduction doit être comprise entre 0 et 100"
	}
	if p := in.PromoPrice; p != nil && *p <= 0 {
		fields["promoPrice"] = "Le prix promotionnel doit être positif"
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		fields["endDate"] = "La date de fin doit suivre la date de début"
	}
	return invalid(fields)
}

func (in *PromotionInput) apply(p *model.Promotion) {
	p.Title = in.Title
	p.Description = in.Description
	p.DiscountPercentage = in.DiscountPercentage
	p.PromoCode = nil
	if in.PromoCode != "" {
		code := in.PromoCode
		p.PromoCode = &code
	}
	p.PromoPrice = in.PromoPrice
	p.ImageURL = in.ImageURL
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	p.StartDate = in.StartDate
	p.EndDate = in.EndDate
}

type PromotionService interface {
	ListActive(ctx context.Context) ([]model.Promotion, error)
	List(ctx context.Context) ([]model.Promotion, error)
	Create(ctx context.Context, in PromotionInput) (*model.Promotion, error)
	Update(ctx context.Context, id string, in PromotionInput) (*model.Promotion, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	// PromoTerms 供下单计价使用，未知或未生效的促销码返回 nil, nil
	PromoTerms(ctx context.Context, code string) (*pricing.PromoTerms, error)
}

type promotionService struct {
	repo      repository.PromotionRepository
	cache     cache.CacheService
	publisher realtime.Publisher
	metrics   *metrics.MetricsCollector
	now       func() time.Time
}

// NewPromotionService cache 与 publisher 可为空
func NewPromotionService(repo repository.PromotionRepository, c cache.CacheService, publisher realtime.Publisher, m *metrics.MetricsCollector) PromotionService {
	if publisher == nil {
		publisher = realtime.NopPublisher{}
	}
	return &promotionService{
		repo:      repo,
		cache:     c,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
	}
}

// ListActive 缓存 is_active 的列表，有效期每次读取时过滤
func (s *promotionService) ListActive(ctx context.Context) ([]model.Promotion, error) {
	enabled, err := s.enabled(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	active := make([]model.Promotion, 0, len(enabled))
	for i := range enabled {
		if enabled[i].ActiveAt(now) {
			active = append(active, enabled[i])
		}
	}
	return active, nil
}

func (s *promotionService) enabled(ctx context.Context) ([]model.Promotion, error) {
	if s.cache != nil {
		var cached []model.Promotion
		err := s.cache.Get(ctx, activePromotionsKey, &cached)
		if err == nil {
			s.metrics.RecordCacheLookup("promotions", true)
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Log.Warn("promotions cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheLookup("promotions", false)
	}

	promos, err := s.repo.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, activePromotionsKey, promos, activePromotionsTTL); err != nil {
			logger.Log.Warn("promotions cache write failed", zap.Error(err))
		}
	}
	return promos, nil
}

func (s *promotionService) List(ctx context.Context) ([]model.Promotion, error) {
	promos, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	if promos == nil {
		promos = []model.Promotion{}
	}
	return promos, nil
}

func (s *promotionService) Create(ctx context.Context, in PromotionInput) (*model.Promotion, error) {
	if err := in.check(); err != nil {
		return nil, err
	}

	promo := &model.Promotion{IsActive: true}
	in.apply(promo)
	if err := s.repo.Create(ctx, promo); err != nil {
		return nil, mapWriteError(err, "create promotion")
	}

	s.changed(ctx, realtime.ActionInsert, promo.ID)
	return promo, nil
}

func (s *promotionService) Update(ctx context.Context, id string, in PromotionInput) (*model.Promotion, error) {
	if err := in.check(); err != nil {
		return nil, err
	}

	promo, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(promo)
	if err := s.repo.Update(ctx, promo); err != nil {
		return nil, mapWriteError(err, "update promotion")
	}

	s.changed(ctx, realtime.ActionUpdate, promo.ID)
	return promo, nil
}

func (s *promotionService) SetActive(ctx context.Context, id string, active bool) error {
	if !validID(id) {
		return ErrPromotionNotFound
	}
	ok, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return fmt.Errorf("toggle promotion: %w", err)
	}
	if !ok {
		return ErrPromotionNotFound
	}
	s.changed(ctx, realtime.ActionUpdate, id)
	return nil
}

func (s *promotionService) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrPromotionNotFound
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete promotion: %w", err)
	}
	if !ok {
		return ErrPromotionNotFound
	}
	s.changed(ctx, realtime.ActionDelete, id)
	return nil
}

func (s *promotionService) PromoTerms(ctx context.Context, code string) (*pricing.PromoTerms, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil
	}

	promo, err := s.byCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !promo.ActiveAt(s.now()) {
		return nil, nil
	}

	terms := &pricing.PromoTerms{PromoPrice: promo.PromoPrice}
	if promo.DiscountPercentage != nil {
		terms.DiscountPercentage = *promo.DiscountPercentage
	}
	return terms, nil
}

// byCode 按促销码读缓存，未命中查库，不存在的码不缓存
func (s *promotionService) byCode(ctx context.Context, code string) (*model.Promotion, error) {
	key := promoCodeKeyPrefix + code
	if s.cache != nil {
		var cached model.Promotion
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			s.metrics.RecordCacheLookup("promo_code", true)
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Log.Warn("promo code cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheLookup("promo_code", false)
	}

	promo, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, promo, activePromotionsTTL); err != nil {
			logger.Log.Warn("promo code cache write failed", zap.Error(err))
		}
	}
	return promo, nil
}

func (s *promotionService) get(ctx context.Context, id string) (*model.Promotion, error) {
	if !validID(id) {
		return nil, ErrPromotionNotFound
	}
	promo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromotionNotFound
		}
		return nil, fmt.Errorf("get promotion: %w", err)
	}
	return promo, nil
}

// changed 先失效缓存再通知，客户端收到事件后重新拉取
func (s *promotionService) changed(ctx context.Context, action, id string) {
	if s.cache != nil {
		if err := s.cache.InvalidatePattern(ctx, promotionsPattern); err != nil {
			logger.Log.Warn("promotions cache invalidation failed", zap.Error(err))
		}
	}
	publish(ctx, s.publisher, realtime.NewEvent(realtime.TablePromotions, action, id, nil))
}

func publish(ctx context.Context, p realtime.Publisher, evt realtime.Event) {
	if err := p.Publish(ctx, evt); err != nil {
		logger.Log.Warn("publish change event failed",
			zap.String("table", evt.Table),
			zap.String("action", evt.Action),
			zap.Error(err),
		)
	}
}

func mapWriteError(err error, op string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateKey
	}
	return fmt.Errorf("%s: %w", op, err)
}
