package services

import (
	"context"
	"log/slog"
	"time"

	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"chat-rooms/errors"
	"chat-rooms/moderation"
	"chat-rooms/repositories"
	"chat-rooms/search"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
)

type IMessageService interface {
	CreateMessage(ctx context.Context, principal domain.Principal, roomID, content string) (domain.Message, error)
	GetMessages(principal domain.Principal, roomID string, cursor *string) ([]domain.Message, *string, error)
	Search(ctx context.Context, principal domain.Principal, roomID, terms string, limit int) ([]search.Result, error)
}

// MessageService creates and reads room messages. Content passes moderation
// before anything is stored or broadcast, the timestamp is always assigned
// here, and stored messages are fed to the search index.
type MessageService struct {
	messages  repositories.IMessageRepository
	users     repositories.IUserRepository
	rooms     *RoomService
	moderator *moderation.Moderator
	index     *search.MessageIndex
	hub       Publisher
	log       *slog.Logger
}

func NewMessageService(messages repositories.IMessageRepository, users repositories.IUserRepository,
	rooms *RoomService, moderator *moderation.Moderator, index *search.MessageIndex,
	hub Publisher, log *slog.Logger) *MessageService {
	return &MessageService{
		messages:  messages,
		users:     users,
		rooms:     rooms,
		moderator: moderator,
		index:     index,
		hub:       hub,
		log:       log,
	}
}

// CreateMessage stores and broadcasts a message sent by the principal.
// Non-members are refused before anything happens; the refusal is explicit,
// never a silent drop.
func (s *MessageService) CreateMessage(ctx context.Context, principal domain.Principal, roomID, content string) (domain.Message, error) {
	if !s.rooms.IsMember(roomID, principal.Email) {
		return domain.Message{}, errors.ErrNotMember
	}

	sender, err := s.users.GetUserByID(principal.UserID)
	if err != nil {
		return domain.Message{}, err
	}

	if s.moderator != nil {
		content = s.moderator.Censor(content)
	}

	message := domain.Message{
		ID:              uuid.New(),
		RoomID:          roomID,
		SenderID:        sender.ID,
		SenderEmail:     sender.Email,
		SenderFirstName: sender.FirstName,
		Content:         content,
		Lang:            whatlanggo.LangToString(whatlanggo.DetectLang(content)),
		Timestamp:       time.Now().UTC(),
	}

	if err := s.messages.StoreMessage(message); err != nil {
		return domain.Message{}, err
	}

	// The snapshot write follows the durable message create; the search
	// index is best-effort and never fails the send.
	if err := s.rooms.RecordLastMessage(roomID, message); err != nil {
		s.log.Warn("Last-message snapshot update failed", "room", roomID, "error", err)
	}
	if s.index != nil {
		if err := s.index.Index(message); err != nil {
			s.log.Warn("Message indexing failed", "message", message.ID, "error", err)
		}
	}

	s.hub.Publish(event.MessagePosted{Message: message})
	return message, nil
}

// GetMessages returns a page of the room's history, newest first.
// Member-only.
func (s *MessageService) GetMessages(principal domain.Principal, roomID string, cursor *string) ([]domain.Message, *string, error) {
	if !s.rooms.IsMember(roomID, principal.Email) {
		return nil, nil, errors.ErrNotMember
	}
	return s.messages.GetMessages(roomID, cursor)
}

// Search runs a full-text query over the room's messages. Member-only.
func (s *MessageService) Search(ctx context.Context, principal domain.Principal, roomID, terms string, limit int) ([]search.Result, error) {
	if !s.rooms.IsMember(roomID, principal.Email) {
		return nil, errors.ErrNotMember
	}
	if s.index == nil {
		return nil, nil
	}
	return s.index.Search(ctx, roomID, terms, limit)
}
