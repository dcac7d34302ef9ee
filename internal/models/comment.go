package models

import "time"

// Comment is a chat message attached to an activity.
type Comment struct {
	ID          string    `db:"id" json:"id"`
	Username    string    `db:"username" json:"username"`
	DisplayName string    `db:"display_name" json:"displayName"`
	Image       string    `db:"image" json:"image"`
	Body        string    `db:"body" json:"body"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Event names carried on the comment channel.
const (
	EventReceiveComment = "ReceiveComment"
	EventSendComment    = "SendComment"
)

// CommentEvent is exchanged over activity websocket connections. Inbound
// ReceiveComment events carry Comment; outbound SendComment events carry
// ActivityID and Body.
type CommentEvent struct {
	Type       string   `json:"type"`
	Comment    *Comment `json:"comment,omitempty"`
	ActivityID string   `json:"activityId,omitempty"`
	Body       string   `json:"body,omitempty"`
}
