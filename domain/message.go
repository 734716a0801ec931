package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is an immutable chat event. Timestamp is assigned by the server at
// receipt, never taken from the client.
type Message struct {
	ID              uuid.UUID `json:"id"`
	RoomID          string    `json:"roomId"`
	SenderID        string    `json:"senderId"`
	SenderEmail     string    `json:"senderEmail"`
	SenderFirstName string    `json:"senderFirstName"`
	Content         string    `json:"content"`
	Lang            string    `json:"lang"`
	Timestamp       time.Time `json:"timestamp"`
}
