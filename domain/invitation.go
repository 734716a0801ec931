package domain

import "time"

// Invitation is a single-use grant of membership in one room. Token is
// opaque and unguessable. Once Used flips to true it never flips back;
// invitations are kept forever as an audit record.
type Invitation struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	RoomID    string    `json:"roomId"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"createdAt"`
}
