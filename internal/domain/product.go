package domain

// Product is a point-in-time copy of what the product service returned.
// The product service owns the authoritative record; stock and price here
// may be stale by the time an order is submitted.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}
