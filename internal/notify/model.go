package notify

import "time"

const TypeOrderPlaced = "order.placed"

// Notification is an append-only in-app message row.
type Notification struct {
	ID        string    `json:"notificationId"`
	Recipient string    `json:"recipient"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Email is an outbound email-send request. Delivery is handled by the mailer
// worker; from the marketplace side this is fire-and-forget.
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
