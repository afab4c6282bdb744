package service

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CreateOrderInput 下单表单，total_price 不由客户端提交
type CreateOrderInput struct {
	FullName      string `json:"fullName" validate:"min=2"`
	Email         string `json:"email" validate:"omitempty,email"`
	Address       string `json:"address"`
	Phone         string `json:"phone" validate:"phone_digits"`
	Quantity      int    `json:"quantity" validate:"min=1,max=100"`
	PaymentMethod string `json:"paymentMethod" validate:"oneof=orange wave"`
	PromoCode     string `json:"promoCode"`
}

func (in *CreateOrderInput) normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.Address = strings.TrimSpace(in.Address)
	in.Phone = strings.TrimSpace(in.Phone)
	in.PaymentMethod = strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	in.PromoCode = strings.TrimSpace(in.PromoCode)
}

// ValidationError 字段级错误，key 为 JSON 字段名
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

const minPhoneDigits = 9

var fieldMessages = map[string]string{
	"fullName.min":        "Le nom doit contenir au moins 2 caractères",
	"email.email":         "Email invalide",
	"phone.phone_digits":  "Le numéro de téléphone doit contenir au moins 9 chiffres",
	"quantity.min":        "La quantité minimum est de 1",
	"quantity.max":        "La quantité maximum est de 100",
	"paymentMethod.oneof": "Veuillez choisir une méthode de paiement",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone_digits", func(fl validator.FieldLevel) bool {
		return countDigits(fl.Field().String()) >= minPhoneDigits
	})
	return v
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// validateOrderInput 纯本地校验，不访问任何外部资源
func validateOrderInput(in *CreateOrderInput) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = "Valeur invalide"
		}
		fields[fe.Field()] = msg
	}
	return &ValidationError{Fields: fields}
}
