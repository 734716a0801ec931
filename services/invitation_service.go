package services

import (
	"log/slog"

	"chat-rooms/domain"
	"chat-rooms/repositories"
)

type IInvitationService interface {
	GenerateInvitationLink(principal domain.Principal, roomID string) (string, error)
	AcceptInvitation(principal domain.Principal, token string) (domain.Room, error)
}

// InvitationService issues single-use invitation links and redeems them into
// membership grants. The exactly-once property lives in the repository's
// transaction; this layer resolves the principal and announces the result.
type InvitationService struct {
	invitations repositories.IInvitationRepository
	users       repositories.IUserRepository
	rooms       *RoomService
	baseURL     string
	log         *slog.Logger
}

func NewInvitationService(invitations repositories.IInvitationRepository,
	users repositories.IUserRepository, rooms *RoomService,
	baseURL string, log *slog.Logger) *InvitationService {
	return &InvitationService{
		invitations: invitations,
		users:       users,
		rooms:       rooms,
		baseURL:     baseURL,
		log:         log,
	}
}

// GenerateInvitationLink creates an invitation for the room and returns a
// shareable link embedding the token.
func (s *InvitationService) GenerateInvitationLink(principal domain.Principal, roomID string) (string, error) {
	invitation, err := s.invitations.Create(roomID)
	if err != nil {
		return "", err
	}
	s.log.Info("Invitation issued", "room", roomID, "by", principal.UserID)
	return s.baseURL + "/join?token=" + invitation.Token, nil
}

// AcceptInvitation redeems a token for the calling principal. On success the
// membership grant has committed and the room's member streams get fresh
// snapshots.
func (s *InvitationService) AcceptInvitation(principal domain.Principal, token string) (domain.Room, error) {
	room, err := s.invitations.Redeem(token, principal.UserID)
	if err != nil {
		return domain.Room{}, err
	}
	s.log.Info("Invitation redeemed", "room", room.ID, "user", principal.UserID)
	s.rooms.AnnounceMembershipChange(room.ID)
	return room, nil
}
