package wishlist

import "time"

type Item struct {
	UserID   string    `json:"userId"`
	CourseID string    `json:"courseId"`
	AddedAt  time.Time `json:"addedAt"`
}
