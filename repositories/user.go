//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"chat-rooms/domain"
	"chat-rooms/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Key layout:
//
//	user:id:{id}       -> JSON user record
//	user:email:{email} -> user id (index for login and principal resolution)
const (
	userKeyPrefix      = "user:id:"
	userEmailKeyPrefix = "user:email:"
)

type IUserRepository interface {
	CreateUser(email, hashedPassword, firstName, lastName string) (string, error)
	GetUserByEmail(email string) (domain.User, error)
	GetUserByID(id string) (domain.User, error)
	UpdateProfile(id string, update ProfileUpdate) (domain.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// ProfileUpdate carries the mutable profile fields. Empty strings leave the
// stored value unchanged.
type ProfileUpdate struct {
	Email             string
	FirstName         string
	LastName          string
	ProfilePictureURL string
	PasswordHash      string
}

// CreateUser persists a new account. The email index key doubles as the
// uniqueness guard: both writes share one transaction.
func (u UserRepository) CreateUser(email, hashedPassword, firstName, lastName string) (string, error) {
	newID := uuid.New().String()
	user := domain.User{
		ID:           newID,
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    firstName,
		LastName:     lastName,
		Roles:        []string{"user"},
		CreatedAt:    time.Now().UTC(),
	}

	err := u.db.Update(func(txn *badger.Txn) error {
		emailKey := []byte(userEmailKeyPrefix + email)
		if _, err := txn.Get(emailKey); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := setUser(txn, user); err != nil {
			return err
		}
		return txn.Set(emailKey, []byte(newID))
	})
	if err != nil {
		return "", err
	}
	return newID, nil
}

func (u UserRepository) GetUserByEmail(email string) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUserByEmail(txn, email)
		return err
	})
	return user, err
}

func (u UserRepository) GetUserByID(id string) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, id)
		return err
	})
	return user, err
}

// UpdateProfile rewrites the stored profile fields and, when the email
// changes, atomically moves the email index entry.
func (u UserRepository) UpdateProfile(id string, update ProfileUpdate) (domain.User, error) {
	var updated domain.User
	err := withConflictRetry(u.db, func(txn *badger.Txn) error {
		user, err := getUser(txn, id)
		if err != nil {
			return err
		}

		if update.Email != "" && update.Email != user.Email {
			newKey := []byte(userEmailKeyPrefix + update.Email)
			if _, err := txn.Get(newKey); err == nil {
				return errors.ErrUserAlreadyExists
			}
			if err := txn.Delete([]byte(userEmailKeyPrefix + user.Email)); err != nil {
				return err
			}
			if err := txn.Set(newKey, []byte(id)); err != nil {
				return err
			}
			user.Email = update.Email
		}
		if update.FirstName != "" {
			user.FirstName = update.FirstName
		}
		if update.LastName != "" {
			user.LastName = update.LastName
		}
		if update.ProfilePictureURL != "" {
			user.ProfilePictureURL = update.ProfilePictureURL
		}
		if update.PasswordHash != "" {
			user.PasswordHash = update.PasswordHash
		}

		updated = user
		return setUser(txn, user)
	})
	return updated, err
}

// Transaction-scoped helpers shared with the room and invitation
// repositories, which mutate user records inside their own transactions.

func getUser(txn *badger.Txn, id string) (domain.User, error) {
	item, err := txn.Get([]byte(userKeyPrefix + id))
	if err == badger.ErrKeyNotFound {
		return domain.User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	var stored userStored
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &stored)
	})
	return domain.User(stored), err
}

func getUserByEmail(txn *badger.Txn, email string) (domain.User, error) {
	item, err := txn.Get([]byte(userEmailKeyPrefix + email))
	if err == badger.ErrKeyNotFound {
		return domain.User{}, errors.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	var id string
	if err = item.Value(func(val []byte) error {
		id = string(val)
		return nil
	}); err != nil {
		return domain.User{}, err
	}
	return getUser(txn, id)
}

func setUser(txn *badger.Txn, user domain.User) error {
	data, err := json.Marshal(userStored(user))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return txn.Set([]byte(userKeyPrefix+user.ID), data)
}

// userStored mirrors domain.User field for field but re-exposes the password
// hash, which the public JSON shape deliberately hides.
type userStored struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"passwordHash"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	ProfilePictureURL string    `json:"profilePictureUrl"`
	Roles             []string  `json:"roles"`
	Rooms             []string  `json:"rooms"`
	CreatedAt         time.Time `json:"createdAt"`
}
