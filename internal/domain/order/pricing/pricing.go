package pricing

// ComputeTotal 计算订单总价（FCFA）
// promoOverride 非空且为正时直接作为总价，否则为 quantity * unitPrice
func ComputeTotal(quantity, unitPrice int64, promoOverride *int64) int64 {
	if promoOverride != nil && *promoOverride > 0 {
		return *promoOverride
	}
	return quantity * unitPrice
}

// PromoTerms 促销条款，由服务端根据促销码查出
type PromoTerms struct {
	// PromoPrice 每盒促销价，优先于折扣
	PromoPrice         *int64
	DiscountPercentage int
}

// Override 根据促销条款计算覆盖总价，条款无效时返回 nil
func (t PromoTerms) Override(quantity, unitPrice int64) *int64 {
	var total int64
	switch {
	case t.PromoPrice != nil && *t.PromoPrice > 0:
		total = quantity * *t.PromoPrice
	case t.DiscountPercentage > 0 && t.DiscountPercentage <= 100:
		total = quantity * unitPrice * int64(100-t.DiscountPercentage) / 100
	default:
		return nil
	}
	return &total
}
