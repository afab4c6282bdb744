package presenter

import (
	"fmt"

	"wellness_shop/internal/domain/order/model"
)

type OrangePresenter struct {
	Number   string
	Currency string
}

func NewOrangePresenter(number, currency string) *OrangePresenter {
	return &OrangePresenter{Number: number, Currency: currency}
}

func (p *OrangePresenter) Method() model.PaymentMethod {
	return model.MethodOrange
}

func (p *OrangePresenter) Present(totalPrice int64) Instructions {
	amount := FormatAmount(totalPrice, p.Currency)
	phone := FormatPhone(p.Number)

	return Instructions{
		Method:      model.MethodOrange,
		Amount:      totalPrice,
		Currency:    p.Currency,
		Display:     amount,
		PhoneNumber: phone,
		Summary:     fmt.Sprintf("Veuillez effectuer le paiement de %s via Orange Money au %s", amount, phone),
		Steps: []string{
			"Ouvrez votre application Orange Money",
			"Envoyez " + amount,
			"Au numéro : " + phone,
			"Prenez une capture d'écran de la confirmation",
		},
	}
}
