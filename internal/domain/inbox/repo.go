package inbox

import (
	"context"

	"github.com/google/uuid"
)

// NotificationRepository persists notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

// MessageRepository persists chat messages.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	Conversation(ctx context.Context, a, b uuid.UUID, limit, offset int) ([]*Message, int, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]*Conversation, error)
	MarkConversationRead(ctx context.Context, userID, peerID uuid.UUID) error
}
