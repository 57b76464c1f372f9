package inbox

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medicore/hms/internal/platform/metrics"
	"github.com/medicore/hms/internal/platform/websocket"
)

// Notifier delivers notifications: it persists them and mirrors them to
// connected clients. Delivery is fire and forget; failures are logged and
// counted but never surface to the caller, so a broken notification channel
// cannot fail the operation that triggered it.
type Notifier struct {
	repo   NotificationRepository
	hub    websocket.Publisher
	logger zerolog.Logger
}

func NewNotifier(repo NotificationRepository, hub websocket.Publisher, logger zerolog.Logger) *Notifier {
	return &Notifier{repo: repo, hub: hub, logger: logger}
}

// Notify persists a notification for the user and pushes a new_notification
// event to their connections.
func (n *Notifier) Notify(ctx context.Context, userID uuid.UUID, typ, title, message string) {
	notif := &Notification{UserID: userID, Type: typ, Title: title, Message: message}
	if err := n.repo.Create(ctx, notif); err != nil {
		n.logger.Error().Err(err).
			Str("user_id", userID.String()).
			Str("type", typ).
			Msg("notification persist failed")
		metrics.RecordSideEffectFailure("notification")
		return
	}
	n.hub.EmitToUser(ctx, userID, websocket.NewEvent(websocket.EventNewNotification, notif))
}

type Service struct {
	notifications NotificationRepository
	messages      MessageRepository
	hub           websocket.Publisher
}

func NewService(notifications NotificationRepository, messages MessageRepository, hub websocket.Publisher) *Service {
	return &Service{notifications: notifications, messages: messages, hub: hub}
}

// -- Notifications --

func (s *Service) ListNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	return s.notifications.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.notifications.UnreadCount(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.notifications.MarkRead(ctx, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.notifications.MarkAllRead(ctx, userID)
}

// Broadcast pushes a system announcement to every connected client. It is
// not persisted per user.
func (s *Service) Broadcast(ctx context.Context, title, message string) error {
	if title == "" {
		return fmt.Errorf("title is required")
	}
	s.hub.BroadcastAll(ctx, websocket.NewEvent(websocket.EventNotification, map[string]string{
		"title":   title,
		"message": message,
	}))
	return nil
}

// -- Messages --

// SendMessage persists a chat message and pushes a receive_message event to
// the recipient.
func (s *Service) SendMessage(ctx context.Context, senderID, recipientID uuid.UUID, content string) (*Message, error) {
	if content == "" {
		return nil, fmt.Errorf("content is required")
	}
	if recipientID == uuid.Nil {
		return nil, fmt.Errorf("recipient_id is required")
	}
	if senderID == recipientID {
		return nil, fmt.Errorf("cannot send a message to yourself")
	}

	m := &Message{SenderID: senderID, RecipientID: recipientID, Content: content}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	s.hub.EmitToUser(ctx, recipientID, websocket.NewEvent(websocket.EventReceiveMessage, m))
	return m, nil
}

// Conversation returns the message history between the user and a peer, and
// marks the peer's messages as read.
func (s *Service) Conversation(ctx context.Context, userID, peerID uuid.UUID, limit, offset int) ([]*Message, int, error) {
	items, total, err := s.messages.Conversation(ctx, userID, peerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if err := s.messages.MarkConversationRead(ctx, userID, peerID); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) ListConversations(ctx context.Context, userID uuid.UUID) ([]*Conversation, error) {
	return s.messages.ListConversations(ctx, userID)
}
