// Package domain contains the core entities of the chat system.
// No transport, storage, or UI logic belongs here.
package domain

// MaxRoomMembers bounds the size of a room's current member list.
const MaxRoomMembers = 50

// Room is a named conversation space. Owner is the email of the creator and
// never changes. Members lists current member ids in join order; AllMembers
// is the append-only, deduplicated set of everyone who ever joined.
//
// Invariants, held at every observable point until deletion:
//   - the owner's user id is in Members
//   - Members is a subset of AllMembers
//   - len(Members) <= MaxRoomMembers
type Room struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Owner      string   `json:"owner"`
	Members    []string `json:"users"`
	AllMembers []string `json:"allUsers"`

	// Denormalized snapshot of the most recent message.
	LastMessage                string `json:"lastMessage"`
	LastMessageSenderID        string `json:"lastMessageSenderId"`
	LastMessageSenderFirstName string `json:"lastMessageSenderFirstName"`
}

// HasMember reports whether userID is a current member.
func (r Room) HasMember(userID string) bool {
	for _, id := range r.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// AddMember appends userID to the current member list and, if unseen,
// to the historical one. Returns false when the user is already a member
// or the room is full.
func (r *Room) AddMember(userID string) bool {
	if r.HasMember(userID) || len(r.Members) >= MaxRoomMembers {
		return false
	}
	r.Members = append(r.Members, userID)

	for _, id := range r.AllMembers {
		if id == userID {
			return true
		}
	}
	r.AllMembers = append(r.AllMembers, userID)
	return true
}

// RemoveMember drops userID from the current member list. AllMembers is
// untouched; it is a historical record.
func (r *Room) RemoveMember(userID string) bool {
	for i, id := range r.Members {
		if id == userID {
			r.Members = append(r.Members[:i], r.Members[i+1:]...)
			return true
		}
	}
	return false
}

// MemberSummary is the projection of a member joined against profile fields.
type MemberSummary struct {
	ID                string `json:"id"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	ProfilePictureURL string `json:"profilePictureUrl"`
}

// RoomSummary is the per-user view of a room, including the last-message
// snapshot and the resolved first name of its sender.
type RoomSummary struct {
	ID                         string `json:"id"`
	Name                       string `json:"name"`
	Owner                      string `json:"owner"`
	LastMessage                string `json:"lastMessage"`
	LastMessageSenderID        string `json:"lastMessageSenderId"`
	LastMessageSenderFirstName string `json:"lastMessageSenderFirstName"`
	Type                       string `json:"type,omitempty"`
}
