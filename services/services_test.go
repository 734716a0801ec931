package services

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"chat-rooms/repositories"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (p *recordingPublisher) Publish(evt event.DomainEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, evt := range p.events {
		out = append(out, evt.Topic())
	}
	return out
}

func (p *recordingPublisher) last() event.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return nil
	}
	return p.events[len(p.events)-1]
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

type fixture struct {
	users       repositories.IUserRepository
	rooms       repositories.IRoomRepository
	invitations repositories.IInvitationRepository
	messages    repositories.MessageRepository
	publisher   *recordingPublisher
	roomService *RoomService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	publisher := &recordingPublisher{}
	users := repositories.NewUserRepository(db)
	rooms := repositories.NewRoomRepository(db)
	return &fixture{
		users:       users,
		rooms:       rooms,
		invitations: repositories.NewInvitationRepository(db),
		messages:    repositories.NewMessageRepository(db, testLogger(), nil),
		publisher:   publisher,
		roomService: NewRoomService(rooms, users, publisher, testLogger()),
	}
}

func (f *fixture) registerUser(t *testing.T, email, first string) domain.Principal {
	t.Helper()
	id, err := f.users.CreateUser(email, "hash", first, "Test")
	require.NoError(t, err)
	return domain.Principal{UserID: id, Email: email}
}

func testMessage(sender domain.Principal, roomID, content string) domain.Message {
	return domain.Message{
		ID:        uuid.New(),
		RoomID:    roomID,
		SenderID:  sender.UserID,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}
