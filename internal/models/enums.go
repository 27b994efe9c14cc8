package models

import (
	"fmt"
	"sort"
	"strings"
)

// PaymentMethod is how the customer pays for an order.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentOnline PaymentMethod = "online"
)

// EnumMembers returns the member values mapped to their display labels.
func (PaymentMethod) EnumMembers() map[string]string {
	return map[string]string{
		string(PaymentCash):   "Cash",
		string(PaymentCard):   "Card",
		string(PaymentOnline): "Online",
	}
}

// Valid reports whether p is a known payment method.
func (p PaymentMethod) Valid() bool {
	_, ok := p.EnumMembers()[string(p)]
	return ok
}

// ParsePaymentMethod normalizes s and checks it against the known methods.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	p := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown payment method %q (want one of %s)", s, memberList(p.EnumMembers()))
	}
	return p, nil
}

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	StatusNew        OrderStatus = "new"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusCancelled  OrderStatus = "cancelled"
)

// EnumMembers returns the member values mapped to their display labels.
func (OrderStatus) EnumMembers() map[string]string {
	return map[string]string{
		string(StatusNew):        "New",
		string(StatusProcessing): "Processing",
		string(StatusShipped):    "Shipped",
		string(StatusCancelled):  "Cancelled",
	}
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := s.EnumMembers()[string(s)]
	return ok
}

// ParseOrderStatus normalizes s and checks it against the known statuses.
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown order status %q (want one of %s)", s, memberList(st.EnumMembers()))
	}
	return st, nil
}

func memberList(members map[string]string) string {
	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
