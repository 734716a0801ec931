package services

import (
	"log/slog"

	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"chat-rooms/errors"
	"chat-rooms/repositories"

	"github.com/samber/lo"
)

// Publisher is the fanout seam. Mutating services push events through it at
// commit time; the hub delivers them to subscribed sessions.
type Publisher interface {
	Publish(evt event.DomainEvent)
}

type IRoomService interface {
	CreateRoom(principal domain.Principal, name string) (domain.Room, error)
	GetRoom(principal domain.Principal, roomID string) (domain.Room, error)
	IsMember(roomID, email string) bool
	LeaveRoom(principal domain.Principal, roomID string) error
	DeleteRoom(principal domain.Principal, roomID string) (domain.RoomSummary, error)
	RenameRoom(principal domain.Principal, roomID, newName string) (domain.RoomSummary, error)
	UpdateLastMessage(principal domain.Principal, roomID string, message domain.Message) (domain.RoomSummary, error)
	ListMembers(principal domain.Principal, roomID string) ([]domain.MemberSummary, error)
	ListAllMembers(principal domain.Principal, roomID string) ([]domain.MemberSummary, error)
	ListUserRooms(userID string) ([]domain.RoomSummary, error)
	RoomSummary(roomID string) (domain.RoomSummary, error)
	MemberSnapshot(roomID string) ([]domain.MemberSummary, error)
	AllMemberSnapshot(roomID string) ([]domain.MemberSummary, error)
}

// RoomService owns the room membership state machine. Every mutation goes
// through the repository's transactional operations; this layer adds
// authorization and fanout.
type RoomService struct {
	rooms repositories.IRoomRepository
	users repositories.IUserRepository
	hub   Publisher
	log   *slog.Logger
}

func NewRoomService(rooms repositories.IRoomRepository, users repositories.IUserRepository,
	hub Publisher, log *slog.Logger) *RoomService {
	return &RoomService{rooms: rooms, users: users, hub: hub, log: log}
}

func (s *RoomService) CreateRoom(principal domain.Principal, name string) (domain.Room, error) {
	return s.rooms.CreateRoom(name, principal.Email, principal.UserID)
}

// GetRoom is member-only.
func (s *RoomService) GetRoom(principal domain.Principal, roomID string) (domain.Room, error) {
	if !s.IsMember(roomID, principal.Email) {
		return domain.Room{}, errors.ErrNotMember
	}
	return s.rooms.GetRoom(roomID)
}

// IsMember checks current membership from the caller's user record.
func (s *RoomService) IsMember(roomID, email string) bool {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		return false
	}
	return user.HasRoom(roomID)
}

// LeaveRoom removes the caller from the room. The owner cannot leave; the
// repository enforces that and the refusal surfaces to the caller.
func (s *RoomService) LeaveRoom(principal domain.Principal, roomID string) error {
	room, err := s.rooms.RemoveMember(roomID, principal.UserID)
	if err != nil {
		return err
	}
	s.AnnounceMembershipChange(room.ID)
	return nil
}

// DeleteRoom is owner-only. On success the cascade has already removed the
// room from every member's room set, and the deletion event carries the
// summary the room had before it disappeared.
func (s *RoomService) DeleteRoom(principal domain.Principal, roomID string) (domain.RoomSummary, error) {
	room, err := s.rooms.GetRoom(roomID)
	if err != nil {
		return domain.RoomSummary{}, err
	}
	if room.Owner != principal.Email {
		return domain.RoomSummary{}, errors.ErrNotOwner
	}

	summary := s.summarize(room)
	summary.Type = "userRoomDelete"

	if _, err := s.rooms.DeleteRoom(roomID); err != nil {
		return domain.RoomSummary{}, err
	}
	s.hub.Publish(event.RoomDeleted{Room: summary})
	return summary, nil
}

// RenameRoom is owner-only.
func (s *RoomService) RenameRoom(principal domain.Principal, roomID, newName string) (domain.RoomSummary, error) {
	room, err := s.rooms.GetRoom(roomID)
	if err != nil {
		return domain.RoomSummary{}, err
	}
	if room.Owner != principal.Email {
		return domain.RoomSummary{}, errors.ErrNotOwner
	}

	renamed, err := s.rooms.Rename(roomID, newName)
	if err != nil {
		return domain.RoomSummary{}, err
	}
	summary := s.summarize(renamed)
	s.hub.Publish(event.RoomUpdated{Room: summary})
	return summary, nil
}

// UpdateLastMessage refreshes the denormalized snapshot on the room record
// and announces it on the global room-list stream. Member-only.
func (s *RoomService) UpdateLastMessage(principal domain.Principal, roomID string, message domain.Message) (domain.RoomSummary, error) {
	if !s.IsMember(roomID, principal.Email) {
		return domain.RoomSummary{}, errors.ErrNotMember
	}

	room, err := s.rooms.UpdateLastMessage(roomID, message.Content, message.SenderID, message.SenderFirstName)
	if err != nil {
		return domain.RoomSummary{}, err
	}
	summary := s.summarize(room)
	s.hub.Publish(event.RoomUpdated{Room: summary})
	return summary, nil
}

// RecordLastMessage writes the snapshot without publishing; the message
// send path announces the message itself on the room's message stream, and
// the room-list stream is refreshed by the client-driven update operation.
func (s *RoomService) RecordLastMessage(roomID string, message domain.Message) error {
	_, err := s.rooms.UpdateLastMessage(roomID, message.Content, message.SenderID, message.SenderFirstName)
	return err
}

// ListMembers returns the current member projection. Member-only.
func (s *RoomService) ListMembers(principal domain.Principal, roomID string) ([]domain.MemberSummary, error) {
	if !s.IsMember(roomID, principal.Email) {
		return nil, errors.ErrNotMember
	}
	return s.MemberSnapshot(roomID)
}

// ListAllMembers returns everyone who ever joined. Member-only.
func (s *RoomService) ListAllMembers(principal domain.Principal, roomID string) ([]domain.MemberSummary, error) {
	if !s.IsMember(roomID, principal.Email) {
		return nil, errors.ErrNotMember
	}
	return s.AllMemberSnapshot(roomID)
}

// ListUserRooms projects the rooms a user currently belongs to, with the
// last-message snapshot and the resolved first name of its sender.
func (s *RoomService) ListUserRooms(userID string) ([]domain.RoomSummary, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.RoomSummary, 0, len(user.Rooms))
	for _, roomID := range user.Rooms {
		summary, err := s.RoomSummary(roomID)
		if err == errors.ErrRoomNotFound {
			s.log.Warn("User references a missing room", "user", userID, "room", roomID)
			continue
		}
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// RoomSummary builds the per-user view of one room.
func (s *RoomService) RoomSummary(roomID string) (domain.RoomSummary, error) {
	room, err := s.rooms.GetRoom(roomID)
	if err != nil {
		return domain.RoomSummary{}, err
	}
	return s.summarize(room), nil
}

// MemberSnapshot joins current member ids against profile fields.
func (s *RoomService) MemberSnapshot(roomID string) ([]domain.MemberSummary, error) {
	room, err := s.rooms.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	return s.memberSummaries(room.Members), nil
}

// AllMemberSnapshot joins historical member ids against profile fields.
func (s *RoomService) AllMemberSnapshot(roomID string) ([]domain.MemberSummary, error) {
	room, err := s.rooms.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	return s.memberSummaries(room.AllMembers), nil
}

func (s *RoomService) memberSummaries(ids []string) []domain.MemberSummary {
	users := lo.FilterMap(ids, func(id string, _ int) (domain.User, bool) {
		user, err := s.users.GetUserByID(id)
		if err != nil {
			s.log.Warn("Member id does not resolve to a user", "user", id)
			return domain.User{}, false
		}
		return user, true
	})
	return lo.Map(users, func(user domain.User, _ int) domain.MemberSummary {
		return domain.MemberSummary{
			ID:                user.ID,
			FirstName:         user.FirstName,
			LastName:          user.LastName,
			ProfilePictureURL: user.ProfilePictureURL,
		}
	})
}

func (s *RoomService) summarize(room domain.Room) domain.RoomSummary {
	summary := domain.RoomSummary{
		ID:                         room.ID,
		Name:                       room.Name,
		Owner:                      room.Owner,
		LastMessage:                room.LastMessage,
		LastMessageSenderID:        room.LastMessageSenderID,
		LastMessageSenderFirstName: room.LastMessageSenderFirstName,
	}
	if summary.LastMessageSenderFirstName == "" && room.LastMessageSenderID != "" {
		if sender, err := s.users.GetUserByID(room.LastMessageSenderID); err == nil {
			summary.LastMessageSenderFirstName = sender.FirstName
		}
	}
	return summary
}

// AnnounceMembershipChange pushes fresh current and historical member lists to
// the room's member streams after a membership mutation committed.
func (s *RoomService) AnnounceMembershipChange(roomID string) {
	if members, err := s.MemberSnapshot(roomID); err == nil {
		s.hub.Publish(event.MembersChanged{RoomID: roomID, Members: members})
	}
	if all, err := s.AllMemberSnapshot(roomID); err == nil {
		s.hub.Publish(event.AllMembersChanged{RoomID: roomID, Members: all})
	}
}
