package domain

import "time"

// Notification is a message stored for a user.
type Notification struct {
	ID         int64     `json:"id"`
	TargetUser string    `json:"-"`
	Originator string    `json:"originator"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	ContentID  int64     `json:"content_id"`
	Type       string    `json:"type"`
	CreatedAt  time.Time `json:"created_at"`
}
