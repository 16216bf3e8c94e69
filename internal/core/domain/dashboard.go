package domain

import "time"

// UserStats summarises the user-service population.
type UserStats struct {
	Total        int     `json:"total"`
	Active       int     `json:"active"`
	NewThisMonth int     `json:"newThisMonth"`
	Growth       float64 `json:"growth"`
}

// OrderStats summarises orders and revenue.
type OrderStats struct {
	Total      int     `json:"total"`
	Pending    int     `json:"pending"`
	Processing int     `json:"processing"`
	Completed  int     `json:"completed"`
	Revenue    float64 `json:"revenue"`
	Growth     float64 `json:"growth"`
}

// ProductStats summarises the catalogue.
type ProductStats struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	LowStock   int `json:"lowStock"`
	OutOfStock int `json:"outOfStock"`
}

// ReviewStats summarises customer reviews.
type ReviewStats struct {
	Total         int     `json:"total"`
	Pending       int     `json:"pending"`
	AverageRating float64 `json:"averageRating"`
	Growth        float64 `json:"growth"`
}

// DashboardStats is assembled per request and never cached. A section whose
// upstream call failed stays at its zero value.
type DashboardStats struct {
	Users    UserStats    `json:"users"`
	Orders   OrderStats   `json:"orders"`
	Products ProductStats `json:"products"`
	Reviews  ReviewStats  `json:"reviews"`
}

// RecentOrder is one row of the recent-orders widget.
type RecentOrder struct {
	ID            string      `json:"id"`
	OrderNumber   string      `json:"orderNumber"`
	Customer      string      `json:"customer"`
	CustomerEmail string      `json:"customerEmail"`
	Total         float64     `json:"total"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// RecentUser is one row of the recent-users widget.
type RecentUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
