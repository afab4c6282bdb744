package presenter

import (
	"errors"
	"strconv"
	"strings"

	"wellness_shop/internal/domain/order/model"
)

var ErrUnsupportedMethod = errors.New("unsupported payment method")

// Instructions 支付指引，前端直接展示
type Instructions struct {
	Method      model.PaymentMethod `json:"method"`
	Amount      int64               `json:"amount"`
	Currency    string              `json:"currency"`
	Display     string              `json:"display"` // "51 600 FCFA"
	PhoneNumber string              `json:"phoneNumber,omitempty"`
	PaymentURL  string              `json:"paymentUrl,omitempty"`
	QRCodeURL   string              `json:"qrCodeUrl,omitempty"`
	// 不方便在线上传凭证时，可以通过 WhatsApp 发送
	WhatsAppNumber string   `json:"whatsappNumber,omitempty"`
	WhatsAppURL    string   `json:"whatsappUrl,omitempty"`
	Summary        string   `json:"summary"`
	Steps          []string `json:"steps"`
}

// Presenter 每种支付方式一个实现，纯计算，无网络调用
type Presenter interface {
	Method() model.PaymentMethod
	Present(totalPrice int64) Instructions
}

// Registry 按支付方式分发
type Registry struct {
	presenters map[model.PaymentMethod]Presenter
	whatsApp   string
}

func NewRegistry(presenters ...Presenter) *Registry {
	r := &Registry{presenters: make(map[model.PaymentMethod]Presenter, len(presenters))}
	for _, p := range presenters {
		r.presenters[p.Method()] = p
	}
	return r
}

// Present 根据订单的支付方式和总价生成指引
func (r *Registry) Present(method model.PaymentMethod, totalPrice int64) (*Instructions, error) {
	p, ok := r.presenters[method]
	if !ok {
		return nil, ErrUnsupportedMethod
	}
	in := p.Present(totalPrice)
	if r.whatsApp != "" {
		in.WhatsAppNumber = FormatPhone(r.whatsApp)
		in.WhatsAppURL = "https://wa.me/" + strings.TrimPrefix(strings.ReplaceAll(r.whatsApp, " ", ""), "+")
	}
	return &in, nil
}

// WithWhatsApp 设置凭证的 WhatsApp 备用渠道，为空时不展示
func (r *Registry) WithWhatsApp(number string) *Registry {
	r.whatsApp = strings.TrimSpace(number)
	return r
}

// FormatAmount 按法语习惯每三位加空格
func FormatAmount(amount int64, currency string) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}
	if currency != "" {
		b.WriteByte(' ')
		b.WriteString(currency)
	}
	return b.String()
}

// FormatPhone 塞内加尔号码 +221XXXXXXXXX 显示为 +221 77 634 42 86，其他原样返回
func FormatPhone(number string) string {
	compact := strings.ReplaceAll(number, " ", "")
	if !strings.HasPrefix(compact, "+221") || len(compact) != 13 {
		return number
	}
	n := compact[4:]
	return "+221 " + n[0:2] + " " + n[2:5] + " " + n[5:7] + " " + n[7:9]
}
