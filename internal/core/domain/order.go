package domain

import (
	"encoding/json"
	"time"
)

// OrderStatus is the order lifecycle name normalised from the order-service,
// which reports it either as an enum number or as a PascalCase string.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderStatusByCode = map[int]OrderStatus{
	0: OrderPending,
	1: OrderProcessing,
	2: OrderShipped,
	3: OrderCompleted,
	4: OrderCancelled,
}

var orderStatusByName = map[string]OrderStatus{
	"Created":    OrderPending,
	"Processing": OrderProcessing,
	"Shipped":    OrderShipped,
	"Delivered":  OrderCompleted,
	"Cancelled":  OrderCancelled,
}

// UnmarshalJSON maps numeric and named upstream statuses; unknown values become pending.
func (s *OrderStatus) UnmarshalJSON(b []byte) error {
	var code int
	if err := json.Unmarshal(b, &code); err == nil {
		if st, ok := orderStatusByCode[code]; ok {
			*s = st
			return nil
		}
		*s = OrderPending
		return nil
	}
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		*s = OrderPending
		return nil
	}
	if st, ok := orderStatusByName[name]; ok {
		*s = st
		return nil
	}
	*s = OrderPending
	return nil
}

// Order is the order-service record used by the dashboard.
type Order struct {
	ID            string      `json:"id"`
	OrderNumber   string      `json:"orderNumber"`
	CustomerName  string      `json:"customerName"`
	CustomerEmail string      `json:"customerEmail"`
	TotalAmount   float64     `json:"totalAmount"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// Product is the product-service record used by the dashboard.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  *bool     `json:"isActive,omitempty"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
}

// Active treats a missing isActive flag as active.
func (p Product) Active() bool {
	return p.IsActive == nil || *p.IsActive
}

// Review is the review-service record used by the dashboard.
type Review struct {
	ID        string    `json:"id"`
	Rating    float64   `json:"rating"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
