package websocket

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medicore/hms/internal/platform/auth"
)

func newTestClient(role auth.Role) *Client {
	return &Client{
		UserID: uuid.New(),
		Role:   role,
		Send:   make(chan []byte, 8),
	}
}

func TestRegisterSubscribesUserAndRoleTopics(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := newTestClient(auth.RoleDoctor)

	hub.Register(client)

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client, got %d", got)
	}
	if got := hub.TopicCount(UserTopic(client.UserID)); got != 1 {
		t.Errorf("expected client on user topic, got %d", got)
	}
	if got := hub.TopicCount(RoleTopic(auth.RoleDoctor)); got != 1 {
		t.Errorf("expected client on role topic, got %d", got)
	}
}

func TestUnregisterRemovesAllSubscriptions(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := newTestClient(auth.RolePatient)

	hub.Register(client)
	hub.Unregister(client)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
	if got := hub.TopicCount(UserTopic(client.UserID)); got != 0 {
		t.Errorf("expected empty user topic, got %d", got)
	}

	// Channel must be closed so the write pump exits.
	if _, open := <-client.Send; open {
		t.Error("expected send channel to be closed")
	}

	// A second unregister must not panic or double-close.
	hub.Unregister(client)
}

func TestEmitToUserTargetsOnlyThatUser(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	target := newTestClient(auth.RolePatient)
	other := newTestClient(auth.RolePatient)
	hub.Register(target)
	hub.Register(other)

	hub.EmitToUser(context.Background(), target.UserID, NewEvent(EventNewNotification, map[string]string{"title": "hello"}))

	select {
	case raw := <-target.Send:
		var evt Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if evt.Event != EventNewNotification {
			t.Errorf("expected event %q, got %q", EventNewNotification, evt.Event)
		}
	default:
		t.Fatal("target received no event")
	}

	select {
	case <-other.Send:
		t.Fatal("other user should not receive the event")
	default:
	}
}

func TestEmitToRoleReachesAllRoleMembers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	doc1 := newTestClient(auth.RoleDoctor)
	doc2 := newTestClient(auth.RoleDoctor)
	nurse := newTestClient(auth.RoleReceptionist)
	hub.Register(doc1)
	hub.Register(doc2)
	hub.Register(nurse)

	hub.EmitToRole(context.Background(), auth.RoleDoctor, NewEvent(EventLeaveUpdated, nil))

	for _, c := range []*Client{doc1, doc2} {
		select {
		case <-c.Send:
		default:
			t.Fatal("doctor client received no event")
		}
	}
	select {
	case <-nurse.Send:
		t.Fatal("receptionist should not receive doctor role event")
	default:
	}
}

func TestBroadcastAllReachesEveryClient(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	clients := []*Client{
		newTestClient(auth.RolePatient),
		newTestClient(auth.RoleDoctor),
		newTestClient(auth.RoleAdmin),
	}
	for _, c := range clients {
		hub.Register(c)
	}

	hub.BroadcastAll(context.Background(), NewEvent(EventNotification, map[string]string{"title": "maintenance"}))

	for i, c := range clients {
		select {
		case <-c.Send:
		default:
			t.Fatalf("client %d received no broadcast", i)
		}
	}
}

func TestEmitSkipsClientsWithFullBuffers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	client := &Client{UserID: uuid.New(), Role: auth.RolePatient, Send: make(chan []byte)}
	hub.Register(client)

	// Unbuffered channel with no reader: emit must not block.
	done := make(chan struct{})
	go func() {
		hub.EmitToUser(context.Background(), client.UserID, NewEvent(EventNewNotification, nil))
		close(done)
	}()
	<-done
}
