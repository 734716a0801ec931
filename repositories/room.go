//go:generate go run go.uber.org/mock/mockgen -source=room.go -destination=../mocks/mock_room_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"

	"chat-rooms/domain"
	"chat-rooms/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const roomKeyPrefix = "room:"

// conflictRetries bounds optimistic transaction retries. Badger detects
// write conflicts at commit; a retry re-reads the records and either
// succeeds or reports a real failure.
const conflictRetries = 5

type IRoomRepository interface {
	CreateRoom(name, ownerEmail, ownerID string) (domain.Room, error)
	GetRoom(id string) (domain.Room, error)
	AddMember(roomID, userID string) (domain.Room, error)
	RemoveMember(roomID, userID string) (domain.Room, error)
	DeleteRoom(roomID string) (domain.Room, error)
	Rename(roomID, newName string) (domain.Room, error)
	UpdateLastMessage(roomID, content, senderID, senderFirstName string) (domain.Room, error)
}

type RoomRepository struct {
	db *badger.DB
}

func NewRoomRepository(db *badger.DB) IRoomRepository {
	return &RoomRepository{db: db}
}

// CreateRoom allocates a room owned by its creator, who is also its first
// member, and records the room on the creator's user record in the same
// transaction.
func (r RoomRepository) CreateRoom(name, ownerEmail, ownerID string) (domain.Room, error) {
	room := domain.Room{
		ID:         uuid.New().String(),
		Name:       name,
		Owner:      ownerEmail,
		Members:    []string{ownerID},
		AllMembers: []string{ownerID},
	}

	err := withConflictRetry(r.db, func(txn *badger.Txn) error {
		user, err := getUser(txn, ownerID)
		if err != nil {
			return err
		}
		user.Rooms = append(user.Rooms, room.ID)
		if err := setUser(txn, user); err != nil {
			return err
		}
		return setRoom(txn, room)
	})
	if err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

func (r RoomRepository) GetRoom(id string) (domain.Room, error) {
	var room domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		room, err = getRoom(txn, id)
		return err
	})
	return room, err
}

// AddMember grants membership: the member list, the historical member list
// and the user's room set all change inside one transaction, so a crash or
// conflict can never leave them disagreeing.
func (r RoomRepository) AddMember(roomID, userID string) (domain.Room, error) {
	var updated domain.Room
	err := withConflictRetry(r.db, func(txn *badger.Txn) error {
		room, err := getRoom(txn, roomID)
		if err != nil {
			return err
		}
		user, err := getUser(txn, userID)
		if err != nil {
			return err
		}
		if room.HasMember(userID) {
			return errors.ErrAlreadyMember
		}
		if !room.AddMember(userID) {
			return errors.ErrRoomFull
		}
		user.Rooms = append(user.Rooms, roomID)
		if err := setUser(txn, user); err != nil {
			return err
		}
		updated = room
		return setRoom(txn, room)
	})
	if err != nil {
		return domain.Room{}, err
	}
	return updated, nil
}

// RemoveMember revokes membership. The owner can never leave their own room;
// deletion is the only way out for them.
func (r RoomRepository) RemoveMember(roomID, userID string) (domain.Room, error) {
	var updated domain.Room
	err := withConflictRetry(r.db, func(txn *badger.Txn) error {
		room, err := getRoom(txn, roomID)
		if err != nil {
			return err
		}
		user, err := getUser(txn, userID)
		if err != nil {
			return err
		}
		if room.Owner == user.Email {
			return errors.ErrOwnerCannotLeave
		}
		if !room.RemoveMember(userID) {
			return errors.ErrNotMember
		}
		user.Rooms = removeString(user.Rooms, roomID)
		if err := setUser(txn, user); err != nil {
			return err
		}
		updated = room
		return setRoom(txn, room)
	})
	if err != nil {
		return domain.Room{}, err
	}
	return updated, nil
}

// DeleteRoom removes the room record and strips the room id from every
// current member's room set. The room's own member list is the reverse
// index, so only member records are touched.
func (r RoomRepository) DeleteRoom(roomID string) (domain.Room, error) {
	var deleted domain.Room
	err := withConflictRetry(r.db, func(txn *badger.Txn) error {
		room, err := getRoom(txn, roomID)
		if err != nil {
			return err
		}
		for _, memberID := range room.Members {
			user, err := getUser(txn, memberID)
			if err == errors.ErrUserNotFound {
				continue
			}
			if err != nil {
				return err
			}
			user.Rooms = removeString(user.Rooms, roomID)
			if err := setUser(txn, user); err != nil {
				return err
			}
		}
		deleted = room
		return txn.Delete([]byte(roomKeyPrefix + roomID))
	})
	if err != nil {
		return domain.Room{}, err
	}
	return deleted, nil
}

func (r RoomRepository) Rename(roomID, newName string) (domain.Room, error) {
	return r.mutate(roomID, func(room *domain.Room) {
		room.Name = newName
	})
}

// UpdateLastMessage overwrites the denormalized snapshot of the most recent
// message on the room record.
func (r RoomRepository) UpdateLastMessage(roomID, content, senderID, senderFirstName string) (domain.Room, error) {
	return r.mutate(roomID, func(room *domain.Room) {
		room.LastMessage = content
		room.LastMessageSenderID = senderID
		room.LastMessageSenderFirstName = senderFirstName
	})
}

func (r RoomRepository) mutate(roomID string, fn func(*domain.Room)) (domain.Room, error) {
	var updated domain.Room
	err := withConflictRetry(r.db, func(txn *badger.Txn) error {
		room, err := getRoom(txn, roomID)
		if err != nil {
			return err
		}
		fn(&room)
		updated = room
		return setRoom(txn, room)
	})
	if err != nil {
		return domain.Room{}, err
	}
	return updated, nil
}

func getRoom(txn *badger.Txn, id string) (domain.Room, error) {
	item, err := txn.Get([]byte(roomKeyPrefix + id))
	if err == badger.ErrKeyNotFound {
		return domain.Room{}, errors.ErrRoomNotFound
	}
	if err != nil {
		return domain.Room{}, err
	}
	var room domain.Room
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &room)
	})
	return room, err
}

func setRoom(txn *badger.Txn, room domain.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return txn.Set([]byte(roomKeyPrefix+room.ID), data)
}

// withConflictRetry runs fn in an update transaction and retries on
// optimistic commit conflicts. Concurrent mutations of the same room
// serialize here without any global lock.
func withConflictRetry(db *badger.DB, fn func(*badger.Txn) error) error {
	var err error
	for i := 0; i < conflictRetries; i++ {
		err = db.Update(fn)
		if err != badger.ErrConflict {
			return err
		}
	}
	return err
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
