package services

import (
	"net/url"
	"strings"
	"testing"

	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"chat-rooms/errors"
	"chat-rooms/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func (f *fixture) invitationService(t *testing.T, baseURL string) *InvitationService {
	t.Helper()
	return NewInvitationService(f.invitations, f.users, f.roomService, baseURL, testLogger())
}

func TestGenerateInvitationLink(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	owner := f.registerUser(t, "owner@example.com", "Owner")
	service := f.invitationService(t, "https://chat.example.com")

	room, err := f.roomService.CreateRoom(owner, "general")
	req.NoError(err)

	link, err := service.GenerateInvitationLink(owner, room.ID)
	req.NoError(err)
	req.True(strings.HasPrefix(link, "https://chat.example.com/join?token="))

	parsed, err := url.Parse(link)
	req.NoError(err)
	req.NotEmpty(parsed.Query().Get("token"))
}

func TestGenerateInvitationLinkRoomMissing(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	owner := f.registerUser(t, "owner@example.com", "Owner")
	service := f.invitationService(t, "https://chat.example.com")

	_, err := service.GenerateInvitationLink(owner, "missing")
	req.ErrorIs(err, errors.ErrRoomNotFound)
}

func TestAcceptInvitation(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	owner := f.registerUser(t, "owner@example.com", "Owner")
	guest := f.registerUser(t, "guest@example.com", "Guest")
	service := f.invitationService(t, "https://chat.example.com")

	room, err := f.roomService.CreateRoom(owner, "general")
	req.NoError(err)
	invitation, err := f.invitations.Create(room.ID)
	req.NoError(err)
	f.publisher.reset()

	joined, err := service.AcceptInvitation(guest, invitation.Token)
	req.NoError(err)
	req.Contains(joined.Members, guest.UserID)
	req.Equal([]string{
		event.TopicRoomMembers(room.ID),
		event.TopicRoomAllMembers(room.ID),
	}, f.publisher.topics())

	// Single use: a second redemption is refused and announces nothing.
	other := f.registerUser(t, "other@example.com", "Other")
	f.publisher.reset()
	_, err = service.AcceptInvitation(other, invitation.Token)
	req.ErrorIs(err, errors.ErrInvalidInvitation)
	req.Empty(f.publisher.topics())
}

func TestAcceptInvitationRedeemFailure(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	ctrl := gomock.NewController(t)
	invitations := mocks.NewMockIInvitationRepository(ctrl)
	service := NewInvitationService(invitations, f.users, f.roomService, "https://chat.example.com", testLogger())

	guest := f.registerUser(t, "guest@example.com", "Guest")
	invitations.EXPECT().Redeem("expired-token", guest.UserID).
		Return(domain.Room{}, errors.ErrInvalidInvitation)

	_, err := service.AcceptInvitation(guest, "expired-token")
	req.ErrorIs(err, errors.ErrInvalidInvitation)
	req.Empty(f.publisher.topics())
}
