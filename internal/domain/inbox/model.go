// Package inbox covers the two in-app delivery channels: persistent
// notifications and direct chat messages. Both are mirrored over WebSocket
// for connected clients.
package inbox

import (
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	TypeAppointment = "appointment"
	TypeBilling     = "billing"
	TypeLab         = "lab"
	TypeLeave       = "leave"
	TypeSystem      = "system"
)

// Notification maps to the notifications table.
type Notification struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Type      string    `db:"type" json:"type"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Link      *string   `db:"link" json:"link,omitempty"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Message maps to the messages table.
type Message struct {
	ID          uuid.UUID `db:"id" json:"id"`
	SenderID    uuid.UUID `db:"sender_id" json:"sender_id"`
	RecipientID uuid.UUID `db:"recipient_id" json:"recipient_id"`
	Content     string    `db:"content" json:"content"`
	Read        bool      `db:"read" json:"read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Conversation summarizes the latest exchange with one peer.
type Conversation struct {
	PeerID      uuid.UUID `json:"peer_id"`
	LastMessage string    `json:"last_message"`
	LastAt      time.Time `json:"last_at"`
	UnreadCount int       `json:"unread_count"`
}
