package services

import (
	"testing"

	"chat-rooms/auth"
	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"chat-rooms/errors"

	"github.com/stretchr/testify/require"
)

func (f *fixture) userService(t *testing.T) *UserService {
	t.Helper()
	return NewUserService(f.users, f.publisher, testLogger())
}

func (f *fixture) registerUserWithPassword(t *testing.T, email, password string) domain.Principal {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	id, err := f.users.CreateUser(email, hash, "Ada", "Lovelace")
	require.NoError(t, err)
	return domain.Principal{UserID: id, Email: email}
}

func TestGetProfile(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	principal := f.registerUser(t, "ada@example.com", "Ada")
	service := f.userService(t)

	profile, err := service.GetProfile(principal)
	req.NoError(err)
	req.Equal("ada@example.com", profile.Email)
	req.Equal("Ada", profile.FirstName)
}

func TestSaveProfileBroadcasts(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	principal := f.registerUser(t, "ada@example.com", "Ada")
	service := f.userService(t)
	f.publisher.reset()

	profile, err := service.SaveProfile(principal, ProfileRequest{FirstName: "Augusta"})
	req.NoError(err)
	req.Equal("Augusta", profile.FirstName)

	last := f.publisher.last()
	req.NotNil(last)
	req.Equal(event.TopicUserUpdate, last.Topic())
}

func TestSaveProfilePasswordChange(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	principal := f.registerUserWithPassword(t, "ada@example.com", "OldPassword123!")
	service := f.userService(t)

	// Wrong current password: refused, nothing stored.
	_, err := service.SaveProfile(principal, ProfileRequest{
		CurrentPassword: "WrongPassword1!",
		NewPassword:     "NewPassword456!",
	})
	req.ErrorIs(err, errors.ErrInvalidCredentials)

	// Weak new password: refused even with the right current password.
	_, err = service.SaveProfile(principal, ProfileRequest{
		CurrentPassword: "OldPassword123!",
		NewPassword:     "short",
	})
	req.ErrorIs(err, errors.ErrInvalidPassword)

	_, err = service.SaveProfile(principal, ProfileRequest{
		CurrentPassword: "OldPassword123!",
		NewPassword:     "NewPassword456!",
	})
	req.NoError(err)

	user, err := f.users.GetUserByID(principal.UserID)
	req.NoError(err)
	match, err := auth.ComparePassword("NewPassword456!", user.PasswordHash)
	req.NoError(err)
	req.True(match)
}
