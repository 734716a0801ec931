//go:generate go run go.uber.org/mock/mockgen -source=invitation.go -destination=../mocks/mock_invitation_repository.go -package=mocks
package repositories

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"chat-rooms/domain"
	"chat-rooms/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const inviteKeyPrefix = "invite:token:"

// inviteTokenBytes gives 192 bits of entropy, comfortably above the 128-bit
// floor required for the token space.
const inviteTokenBytes = 24

type IInvitationRepository interface {
	Create(roomID string) (domain.Invitation, error)
	Redeem(token, userID string) (domain.Room, error)
}

type InvitationRepository struct {
	db *badger.DB
}

func NewInvitationRepository(db *badger.DB) IInvitationRepository {
	return &InvitationRepository{db: db}
}

// Create persists a fresh unused invitation bound to a room.
func (r InvitationRepository) Create(roomID string) (domain.Invitation, error) {
	token, err := newInviteToken()
	if err != nil {
		return domain.Invitation{}, err
	}
	invitation := domain.Invitation{
		ID:        uuid.New().String(),
		Token:     token,
		RoomID:    roomID,
		Used:      false,
		CreatedAt: time.Now().UTC(),
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if _, err := getRoom(txn, roomID); err != nil {
			return err
		}
		return setInvitation(txn, invitation)
	})
	if err != nil {
		return domain.Invitation{}, err
	}
	return invitation, nil
}

// Redeem converts an unused invitation into a membership grant. The used
// flag, the room's member lists and the user's room set are all written in
// one transaction: either every effect lands or none does. Under concurrent
// redemption of the same token, Badger's conflict detection aborts all but
// one commit; the losers retry, observe used=true and fail. Exactly one
// caller ever wins.
func (r InvitationRepository) Redeem(token, userID string) (domain.Room, error) {
	var joined domain.Room
	err := withConflictRetry(r.db, func(txn *badger.Txn) error {
		invitation, err := getInvitation(txn, token)
		if err != nil {
			return err
		}
		if invitation.Used {
			return errors.ErrInvalidInvitation
		}

		room, err := getRoom(txn, invitation.RoomID)
		if err == errors.ErrRoomNotFound {
			// The room was deleted after the invitation was issued.
			return errors.ErrInvalidInvitation
		}
		if err != nil {
			return err
		}
		user, err := getUser(txn, userID)
		if err != nil {
			return err
		}
		if room.HasMember(userID) || user.HasRoom(room.ID) {
			return errors.ErrInvalidInvitation
		}
		if !room.AddMember(userID) {
			return errors.ErrRoomFull
		}

		invitation.Used = true
		user.Rooms = append(user.Rooms, room.ID)

		if err := setInvitation(txn, invitation); err != nil {
			return err
		}
		if err := setUser(txn, user); err != nil {
			return err
		}
		joined = room
		return setRoom(txn, room)
	})
	if err != nil {
		return domain.Room{}, err
	}
	return joined, nil
}

func getInvitation(txn *badger.Txn, token string) (domain.Invitation, error) {
	item, err := txn.Get([]byte(inviteKeyPrefix + token))
	if err == badger.ErrKeyNotFound {
		return domain.Invitation{}, errors.ErrInvalidInvitation
	}
	if err != nil {
		return domain.Invitation{}, err
	}
	var invitation domain.Invitation
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &invitation)
	})
	return invitation, err
}

func setInvitation(txn *badger.Txn, invitation domain.Invitation) error {
	data, err := json.Marshal(invitation)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return txn.Set([]byte(inviteKeyPrefix+invitation.Token), data)
}

func newInviteToken() (string, error) {
	buf := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
