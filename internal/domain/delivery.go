package domain

import "time"

// SendStatus enumerates delivery attempt states. Every attempt starts as
// pending; ready means no channel was configured and the message is queued
// for manual handling.
type SendStatus string

const (
	SendPending SendStatus = "pending"
	SendSent    SendStatus = "sent"
	SendFailed  SendStatus = "failed"
	SendReady   SendStatus = "ready"
)

// SendLog is one row of the delivery audit trail. Rows are inserted before
// the external call and updated after; never deleted.
type SendLog struct {
	ID           string     `json:"id" db:"id"`
	SubscriberID string     `json:"subscriber_id" db:"subscriber_id"`
	MessageID    int64      `json:"message_id" db:"message_id"`
	Status       SendStatus `json:"status" db:"status"`
	ProviderID   string     `json:"provider_id,omitempty" db:"provider_id"`
	ErrorMessage string     `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
