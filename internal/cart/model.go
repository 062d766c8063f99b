package cart

import "time"

// Item is one cart row. Carts are ephemeral: rows live from add-to-cart until
// removal or checkout, which deletes them inside the order transaction.
type Item struct {
	UserID   string    `json:"userId"`
	CourseID string    `json:"courseId"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"addedAt"`
}
