package models

// PaymentSettings holds how a user wants to be paid for activations.
// All fields are free-form, filled in by the user and shown to their
// referrals; no processing happens on our side.
type PaymentSettings struct {
	ID                  string `json:"id"`
	UserID              string `json:"userId"`
	PaypalEmail         string `json:"paypalEmail"`
	BinanceID           string `json:"binanceId"`
	BinancePayLink      string `json:"binancePayLink"`
	WesternUnionName    string `json:"westernUnionName"`
	BankTransferDetails string `json:"bankTransferDetails"`
	CurrencyCode        string `json:"currencyCode"`
}
