package orderdto

type CreateOrderOutput struct {
	MerchantOrderID  string
	PaymentSessionID string
	PaymentURL       string
	Vendor           string
}
