package posadmin

import "github.com/nlstn/go-posadmin/internal/models"

// OrderStatus is the fulfilment state of an order.
type OrderStatus = models.OrderStatus

// PaymentMethod is how an order is paid.
type PaymentMethod = models.PaymentMethod

// Order statuses. New orders start as StatusNew; shipped and cancelled are terminal.
const (
	StatusNew        = models.StatusNew
	StatusProcessing = models.StatusProcessing
	StatusShipped    = models.StatusShipped
	StatusCancelled  = models.StatusCancelled
)

// Payment methods.
const (
	PaymentCash   = models.PaymentCash
	PaymentCard   = models.PaymentCard
	PaymentOnline = models.PaymentOnline
)

// ParseOrderStatus normalizes s and checks it against the known statuses.
func ParseOrderStatus(s string) (OrderStatus, error) {
	return models.ParseOrderStatus(s)
}

// ParsePaymentMethod normalizes s and checks it against the known payment methods.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	return models.ParsePaymentMethod(s)
}
