package domain

import "time"

// User is an account holder. Rooms holds the ids of the rooms the user is
// currently joined to, in join order.
type User struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	ProfilePictureURL string    `json:"profilePictureUrl"`
	Roles             []string  `json:"roles"`
	Rooms             []string  `json:"rooms"`
	CreatedAt         time.Time `json:"createdAt"`
}

// HasRoom reports whether the user is currently joined to the room.
func (u User) HasRoom(roomID string) bool {
	for _, id := range u.Rooms {
		if id == roomID {
			return true
		}
	}
	return false
}

// Profile is the public projection of a user, broadcast on profile updates
// and returned by the profile endpoint.
type Profile struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	ProfilePictureURL string `json:"profilePictureUrl"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:                u.ID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}
