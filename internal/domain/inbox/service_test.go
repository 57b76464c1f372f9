package inbox

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/medicore/hms/internal/platform/auth"
	"github.com/medicore/hms/internal/platform/websocket"
)

type mockNotificationRepo struct {
	notifications map[uuid.UUID]*Notification
	failCreate    bool
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{notifications: make(map[uuid.UUID]*Notification)}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *Notification) error {
	if m.failCreate {
		return errors.New("db down")
	}
	n.ID = uuid.New()
	m.notifications[n.ID] = n
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	var items []*Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			items = append(items, n)
		}
	}
	return items, len(items), nil
}

func (m *mockNotificationRepo) UnreadCount(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, userID, id uuid.UUID) error {
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return pgx.ErrNoRows
	}
	n.Read = true
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	for _, n := range m.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

type mockMessageRepo struct {
	messages []*Message
}

func (m *mockMessageRepo) Create(_ context.Context, msg *Message) error {
	msg.ID = uuid.New()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockMessageRepo) Conversation(_ context.Context, a, b uuid.UUID, limit, offset int) ([]*Message, int, error) {
	var items []*Message
	for _, msg := range m.messages {
		if (msg.SenderID == a && msg.RecipientID == b) || (msg.SenderID == b && msg.RecipientID == a) {
			items = append(items, msg)
		}
	}
	return items, len(items), nil
}

func (m *mockMessageRepo) ListConversations(_ context.Context, userID uuid.UUID) ([]*Conversation, error) {
	return nil, nil
}

func (m *mockMessageRepo) MarkConversationRead(_ context.Context, userID, peerID uuid.UUID) error {
	for _, msg := range m.messages {
		if msg.RecipientID == userID && msg.SenderID == peerID {
			msg.Read = true
		}
	}
	return nil
}

// recordingHub captures emitted events without real connections.
type recordingHub struct {
	userEvents map[uuid.UUID][]websocket.Event
	roleEvents map[auth.Role][]websocket.Event
	broadcasts []websocket.Event
}

func newRecordingHub() *recordingHub {
	return &recordingHub{
		userEvents: make(map[uuid.UUID][]websocket.Event),
		roleEvents: make(map[auth.Role][]websocket.Event),
	}
}

func (h *recordingHub) EmitToUser(_ context.Context, userID uuid.UUID, event websocket.Event) {
	h.userEvents[userID] = append(h.userEvents[userID], event)
}

func (h *recordingHub) EmitToRole(_ context.Context, role auth.Role, event websocket.Event) {
	h.roleEvents[role] = append(h.roleEvents[role], event)
}

func (h *recordingHub) BroadcastAll(_ context.Context, event websocket.Event) {
	h.broadcasts = append(h.broadcasts, event)
}

func TestNotifierPersistsAndEmits(t *testing.T) {
	repo := newMockNotificationRepo()
	hub := newRecordingHub()
	notifier := NewNotifier(repo, hub, zerolog.Nop())
	userID := uuid.New()

	notifier.Notify(context.Background(), userID, TypeAppointment, "Appointment confirmed", "See you at 10:00")

	if len(repo.notifications) != 1 {
		t.Fatalf("expected 1 persisted notification, got %d", len(repo.notifications))
	}
	events := hub.userEvents[userID]
	if len(events) != 1 {
		t.Fatalf("expected 1 emitted event, got %d", len(events))
	}
	if events[0].Event != websocket.EventNewNotification {
		t.Errorf("expected %s event, got %s", websocket.EventNewNotification, events[0].Event)
	}
}

func TestNotifierSwallowsPersistFailure(t *testing.T) {
	repo := newMockNotificationRepo()
	repo.failCreate = true
	hub := newRecordingHub()
	notifier := NewNotifier(repo, hub, zerolog.Nop())
	userID := uuid.New()

	// Must not panic or emit when persistence fails.
	notifier.Notify(context.Background(), userID, TypeBilling, "Invoice", "x")

	if len(hub.userEvents[userID]) != 0 {
		t.Error("expected no emit after persist failure")
	}
}

func TestSendMessage(t *testing.T) {
	msgs := &mockMessageRepo{}
	hub := newRecordingHub()
	svc := NewService(newMockNotificationRepo(), msgs, hub)

	sender, recipient := uuid.New(), uuid.New()
	m, err := svc.SendMessage(context.Background(), sender, recipient, "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if m.ID == uuid.Nil {
		t.Error("expected message id to be assigned")
	}
	events := hub.userEvents[recipient]
	if len(events) != 1 || events[0].Event != websocket.EventReceiveMessage {
		t.Errorf("expected one receive_message event for recipient, got %v", events)
	}
	if len(hub.userEvents[sender]) != 0 {
		t.Error("sender should not receive their own message event")
	}
}

func TestSendMessageValidation(t *testing.T) {
	svc := NewService(newMockNotificationRepo(), &mockMessageRepo{}, newRecordingHub())
	ctx := context.Background()
	sender := uuid.New()

	if _, err := svc.SendMessage(ctx, sender, uuid.New(), ""); err == nil {
		t.Error("expected error for empty content")
	}
	if _, err := svc.SendMessage(ctx, sender, uuid.Nil, "hi"); err == nil {
		t.Error("expected error for missing recipient")
	}
	if _, err := svc.SendMessage(ctx, sender, sender, "hi"); err == nil {
		t.Error("expected error for self-message")
	}
}

func TestConversationMarksPeerMessagesRead(t *testing.T) {
	msgs := &mockMessageRepo{}
	svc := NewService(newMockNotificationRepo(), msgs, newRecordingHub())
	ctx := context.Background()

	a, b := uuid.New(), uuid.New()
	if _, err := svc.SendMessage(ctx, b, a, "hi"); err != nil {
		t.Fatalf("send: %v", err)
	}

	items, total, err := svc.Conversation(ctx, a, b, 20, 0)
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected 1 message, got %d", total)
	}
	if !msgs.messages[0].Read {
		t.Error("expected peer message to be marked read")
	}
}

func TestBroadcast(t *testing.T) {
	hub := newRecordingHub()
	svc := NewService(newMockNotificationRepo(), &mockMessageRepo{}, hub)

	if err := svc.Broadcast(context.Background(), "", "x"); err == nil {
		t.Error("expected error for missing title")
	}
	if err := svc.Broadcast(context.Background(), "Maintenance", "tonight"); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if len(hub.broadcasts) != 1 || hub.broadcasts[0].Event != websocket.EventNotification {
		t.Errorf("expected one notification broadcast, got %v", hub.broadcasts)
	}
}

func TestMarkReadScopedToOwner(t *testing.T) {
	repo := newMockNotificationRepo()
	svc := NewService(repo, &mockMessageRepo{}, newRecordingHub())
	ctx := context.Background()

	owner := uuid.New()
	n := &Notification{UserID: owner, Type: TypeSystem, Title: "t", Message: "m"}
	if err := repo.Create(ctx, n); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.MarkRead(ctx, uuid.New(), n.ID); err == nil {
		t.Error("expected error when marking another user's notification")
	}
	if err := svc.MarkRead(ctx, owner, n.ID); err != nil {
		t.Errorf("owner mark read: %v", err)
	}
}
