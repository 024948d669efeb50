package notify

// OrderCreated is the payload published to the order_events topic when an
// order is placed. Delivery is at-least-once; handlers must tolerate
// redelivery of the same order id.
type OrderCreated struct {
	Type        string `json:"type"`
	OrderID     uint   `json:"order_id"`
	UserID      uint   `json:"user_id"`
	FinalAmount string `json:"final_amount"`
}

const TypeOrderCreated = "order_created"
