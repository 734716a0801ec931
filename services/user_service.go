package services

import (
	"log/slog"

	"chat-rooms/auth"
	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"chat-rooms/errors"
	"chat-rooms/repositories"
)

type IUserService interface {
	GetProfile(principal domain.Principal) (domain.Profile, error)
	SaveProfile(principal domain.Principal, update ProfileRequest) (domain.Profile, error)
}

// ProfileRequest carries a profile save. A password change requires the
// current password to verify first.
type ProfileRequest struct {
	Email             string `json:"email"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	ProfilePictureURL string `json:"profilePictureUrl"`
	CurrentPassword   string `json:"currentPassword"`
	NewPassword       string `json:"newPassword"`
}

// UserService serves profile reads and updates. Updates are broadcast on the
// global user stream so open dashboards refresh participant names.
type UserService struct {
	users repositories.IUserRepository
	hub   Publisher
	log   *slog.Logger
}

func NewUserService(users repositories.IUserRepository, hub Publisher, log *slog.Logger) *UserService {
	return &UserService{users: users, hub: hub, log: log}
}

func (s *UserService) GetProfile(principal domain.Principal) (domain.Profile, error) {
	user, err := s.users.GetUserByID(principal.UserID)
	if err != nil {
		return domain.Profile{}, err
	}
	return user.Profile(), nil
}

// SaveProfile applies the update. When a new password is supplied, the
// current one must match the stored hash; otherwise nothing is mutated.
func (s *UserService) SaveProfile(principal domain.Principal, update ProfileRequest) (domain.Profile, error) {
	repoUpdate := repositories.ProfileUpdate{
		Email:             update.Email,
		FirstName:         update.FirstName,
		LastName:          update.LastName,
		ProfilePictureURL: update.ProfilePictureURL,
	}

	if update.NewPassword != "" {
		user, err := s.users.GetUserByID(principal.UserID)
		if err != nil {
			return domain.Profile{}, err
		}
		match, err := auth.ComparePassword(update.CurrentPassword, user.PasswordHash)
		if err != nil || !match {
			return domain.Profile{}, errors.ErrInvalidCredentials
		}
		if err := auth.ValidatePassword(update.NewPassword); err != nil {
			return domain.Profile{}, err
		}
		hash, err := auth.HashPassword(update.NewPassword)
		if err != nil {
			return domain.Profile{}, err
		}
		repoUpdate.PasswordHash = hash
	}

	user, err := s.users.UpdateProfile(principal.UserID, repoUpdate)
	if err != nil {
		return domain.Profile{}, err
	}

	profile := user.Profile()
	s.hub.Publish(event.ProfileUpdated{Profile: profile})
	return profile, nil
}
