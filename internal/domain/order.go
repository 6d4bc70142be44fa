package domain

type OrderItem struct {
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice,omitempty"`
	LineTotal float64 `json:"lineTotal,omitempty"`
}

type Order struct {
	ID          int64       `json:"id"`
	OrderDate   string      `json:"orderDate"`
	Status      string      `json:"status"`
	TotalAmount float64     `json:"totalAmount"`
	Items       []OrderItem `json:"items"`
	UserID      string      `json:"userId,omitempty"`
}

// SubmissionItem carries no price on purpose: totals are computed by the
// order service, the client-side total is a display preview only.
type SubmissionItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// OrderSubmission is the payload sent to the order service on checkout.
type OrderSubmission struct {
	Items []SubmissionItem `json:"items"`
}
