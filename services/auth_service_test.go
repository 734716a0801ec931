package services

import (
	"testing"
	"time"

	"chat-rooms/auth"
	"chat-rooms/domain"
	"chat-rooms/errors"
	"chat-rooms/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testSecret = "unit_test_signing_secret"

func validRegisterRequest() auth.RegisterRequest {
	return auth.RegisterRequest{
		Email:     "ada@example.com",
		Password:  "ComplexPass123!",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}
}

func TestRegisterHashesBeforeStoring(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	service := NewAuthService(users, tokens)

	request := validRegisterRequest()
	users.EXPECT().
		CreateUser(request.Email, gomock.Not(request.Password), request.FirstName, request.LastName).
		DoAndReturn(func(_, hashedPassword, _, _ string) (string, error) {
			match, err := auth.ComparePassword(request.Password, hashedPassword)
			require.NoError(t, err)
			require.True(t, match)
			return "user-1", nil
		})

	token, err := service.Register(request)
	req.NoError(err)

	claims, err := tokens.Verify(string(token))
	req.NoError(err)
	req.Equal("user-1", claims.UserID)
	req.Equal(request.Email, claims.Email)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	service := NewAuthService(users, auth.NewTokenManager(testSecret, time.Hour))

	request := validRegisterRequest()
	request.Password = "weak"

	_, err := service.Register(request)
	req.ErrorIs(err, errors.ErrInvalidPassword)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	service := NewAuthService(users, auth.NewTokenManager(testSecret, time.Hour))

	users.EXPECT().
		CreateUser(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.ErrUserAlreadyExists)

	_, err := service.Register(validRegisterRequest())
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestLogin(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	service := NewAuthService(users, tokens)

	hash, err := auth.HashPassword("ComplexPass123!")
	req.NoError(err)
	users.EXPECT().GetUserByEmail("ada@example.com").Return(domain.User{
		ID:           "user-1",
		Email:        "ada@example.com",
		PasswordHash: hash,
		Roles:        []string{"user"},
	}, nil)

	token, err := service.Login("ada@example.com", "ComplexPass123!")
	req.NoError(err)

	claims, err := tokens.Verify(string(token))
	req.NoError(err)
	req.Equal("user-1", claims.UserID)
}

func TestLoginGenericErrors(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	service := NewAuthService(users, auth.NewTokenManager(testSecret, time.Hour))

	hash, err := auth.HashPassword("ComplexPass123!")
	req.NoError(err)

	// Unknown email and wrong password yield the same error, so a caller
	// cannot tell which accounts exist.
	users.EXPECT().GetUserByEmail("nobody@example.com").Return(domain.User{}, errors.ErrUserNotFound)
	_, err = service.Login("nobody@example.com", "ComplexPass123!")
	req.ErrorIs(err, errors.ErrInvalidCredentials)

	users.EXPECT().GetUserByEmail("ada@example.com").Return(domain.User{
		ID:           "user-1",
		Email:        "ada@example.com",
		PasswordHash: hash,
	}, nil)
	_, err = service.Login("ada@example.com", "WrongPassword1!")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}
