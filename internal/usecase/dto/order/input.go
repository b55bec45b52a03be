package orderdto

type CreateOrderInput struct {
	MerchantOrderID string
	Amount          int64
	CustomerName    string
	Email           string
	Phone           string
	CourseReference string
	ReturnURL       string
}
