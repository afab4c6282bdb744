package presenter

import (
	"fmt"

	"wellness_shop/internal/domain/order/model"
)

type WavePresenter struct {
	PaymentURL string
	QRCodeURL  string
	Currency   string
}

func NewWavePresenter(paymentURL, qrCodeURL, currency string) *WavePresenter {
	return &WavePresenter{PaymentURL: paymentURL, QRCodeURL: qrCodeURL, Currency: currency}
}

func (p *WavePresenter) Method() model.PaymentMethod {
	return model.MethodWave
}

func (p *WavePresenter) Present(totalPrice int64) Instructions {
	amount := FormatAmount(totalPrice, p.Currency)

	return Instructions{
		Method:     model.MethodWave,
		Amount:     totalPrice,
		Currency:   p.Currency,
		Display:    amount,
		PaymentURL: p.PaymentURL,
		QRCodeURL:  p.QRCodeURL,
		Summary: fmt.Sprintf("Veuillez effectuer le paiement de %s via Wave en cliquant sur le lien de paiement ou en scannant le QR code.",
			amount),
		Steps: []string{
			"Cliquez sur le lien pour payer via Wave ou scannez le QR code",
			"Payez " + amount,
			"Après paiement, prenez une capture d'écran",
		},
	}
}
