// Package event defines the domain events fanned out to subscribed sessions
// and the topic namespace they are addressed to.
package event

import "chat-rooms/domain"

// Topic addressing. The namespace mirrors the subscription destinations the
// frontend uses: per-room streams plus three global streams.
const (
	TopicRooms      = "/topic/rooms"
	TopicRoomDelete = "/topic/room/delete"
	TopicUserUpdate = "/topic/user/update"
)

func TopicRoomMessages(roomID string) string   { return "/topic/room/" + roomID }
func TopicRoomMembers(roomID string) string    { return "/topic/room/" + roomID + "/users" }
func TopicRoomAllMembers(roomID string) string { return "/topic/room/" + roomID + "/users/all" }

// DomainEvent is anything the fanout hub can deliver. Topic names the
// stream; Body is what subscribers receive on the wire.
type DomainEvent interface {
	Topic() string
	Body() any
}

// MessagePosted is published on the room's message stream after the message
// has been durably stored.
type MessagePosted struct {
	Message domain.Message
}

func (e MessagePosted) Topic() string { return TopicRoomMessages(e.Message.RoomID) }
func (e MessagePosted) Body() any     { return e.Message }

// MembersChanged carries the fresh current-member snapshot after a join or
// leave committed.
type MembersChanged struct {
	RoomID  string
	Members []domain.MemberSummary
}

func (e MembersChanged) Topic() string { return TopicRoomMembers(e.RoomID) }
func (e MembersChanged) Body() any     { return e.Members }

// AllMembersChanged carries the historical member snapshot after it grew.
type AllMembersChanged struct {
	RoomID  string
	Members []domain.MemberSummary
}

func (e AllMembersChanged) Topic() string { return TopicRoomAllMembers(e.RoomID) }
func (e AllMembersChanged) Body() any     { return e.Members }

// RoomUpdated is published on the global room-list stream after a rename or
// a last-message snapshot change.
type RoomUpdated struct {
	Room domain.RoomSummary
}

func (e RoomUpdated) Topic() string { return TopicRooms }
func (e RoomUpdated) Body() any     { return e.Room }

// RoomDeleted is published on the global deletion stream once the cascade
// committed.
type RoomDeleted struct {
	Room domain.RoomSummary
}

func (e RoomDeleted) Topic() string { return TopicRoomDelete }
func (e RoomDeleted) Body() any     { return e.Room }

// ProfileUpdated is published on the global user stream after a profile save.
type ProfileUpdated struct {
	Profile domain.Profile
}

func (e ProfileUpdated) Topic() string { return TopicUserUpdate }
func (e ProfileUpdated) Body() any     { return e.Profile }
