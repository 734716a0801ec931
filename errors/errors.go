package errors

import (
	stderrors "errors"
	"fmt"
)

// Is re-exports the standard library matcher so call sites importing this
// package do not need a second errors import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

var (
	// Authentication
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrInvalidToken       = fmt.Errorf("invalid or expired token")

	// Authorization
	ErrNotMember        = fmt.Errorf("user is not a member of the room")
	ErrNotOwner         = fmt.Errorf("user is not the owner of the room")
	ErrOwnerCannotLeave = fmt.Errorf("room owner cannot leave the room")

	// Membership
	ErrRoomFull      = fmt.Errorf("room member limit reached")
	ErrAlreadyMember = fmt.Errorf("user is already a member of the room")

	// Invitations
	ErrInvalidInvitation = fmt.Errorf("invalid or expired invitation token")

	// Lookups
	ErrRoomNotFound = fmt.Errorf("room not found")
	ErrUserNotFound = fmt.Errorf("user not found")
)
