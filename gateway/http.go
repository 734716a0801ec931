package gateway

import (
	"net/http"
	"strconv"

	"chat-rooms/auth"
	"chat-rooms/domain"
	"chat-rooms/errors"
	"chat-rooms/services"

	"github.com/gin-gonic/gin"
)

// Register creates an account and returns a session token.
func (g *Gateway) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	token, err := g.authService.Register(req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"token": token})
	case errors.Is(err, errors.ErrUserAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"message": "user already exists"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	}
}

// Login exchanges credentials for a session token.
func (g *Gateway) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	token, err := g.authService.Login(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (g *Gateway) GetProfile(c *gin.Context) {
	principal := mustPrincipal(c)
	profile, err := g.userService.GetProfile(principal)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// SaveProfile updates the caller's profile; the service broadcasts the
// change on the global user stream.
func (g *Gateway) SaveProfile(c *gin.Context) {
	principal := mustPrincipal(c)
	var req services.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	profile, err := g.userService.SaveProfile(principal, req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, profile)
	case errors.Is(err, errors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "current password does not match"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to save profile"})
	}
}

// ListUserRooms returns the rooms the caller currently belongs to.
func (g *Gateway) ListUserRooms(c *gin.Context) {
	principal := mustPrincipal(c)
	rooms, err := g.roomService.ListUserRooms(principal.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to get rooms"})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// HasRoom reports whether the caller is a member of the room.
func (g *Gateway) HasRoom(c *gin.Context) {
	principal := mustPrincipal(c)
	c.JSON(http.StatusOK, g.roomService.IsMember(c.Param("roomId"), principal.Email))
}

func (g *Gateway) CreateRoom(c *gin.Context) {
	principal := mustPrincipal(c)
	var req struct {
		RoomName string `json:"roomName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to create room"})
		return
	}

	room, err := g.roomService.CreateRoom(principal, req.RoomName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to create room"})
		return
	}
	c.JSON(http.StatusOK, room)
}

// GetRoom is member-only; non-members get an explicit 401.
func (g *Gateway) GetRoom(c *gin.Context) {
	principal := mustPrincipal(c)
	room, err := g.roomService.GetRoom(principal, c.Param("roomId"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, room)
	case errors.Is(err, errors.ErrNotMember):
		c.Status(http.StatusUnauthorized)
	default:
		c.JSON(http.StatusNotFound, gin.H{"message": "room not found"})
	}
}

func (g *Gateway) GetRoomUsers(c *gin.Context) {
	principal := mustPrincipal(c)
	members, err := g.roomService.ListMembers(principal, c.Param("roomId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to get users"})
		return
	}
	c.JSON(http.StatusOK, members)
}

func (g *Gateway) GetAllRoomUsers(c *gin.Context) {
	principal := mustPrincipal(c)
	members, err := g.roomService.ListAllMembers(principal, c.Param("roomId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to get all users"})
		return
	}
	c.JSON(http.StatusOK, members)
}

// CreateInvitation issues a single-use invitation link for the room.
func (g *Gateway) CreateInvitation(c *gin.Context) {
	principal := mustPrincipal(c)
	roomID := c.Param("roomId")
	if roomID == "" || roomID == "undefined" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to create invitation"})
		return
	}

	link, err := g.invitationService.GenerateInvitationLink(principal, roomID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to create invitation"})
		return
	}
	c.JSON(http.StatusOK, link)
}

// JoinRoom redeems an invitation token for the caller.
func (g *Gateway) JoinRoom(c *gin.Context) {
	principal := mustPrincipal(c)
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "token doesn't exist"})
		return
	}

	room, err := g.invitationService.AcceptInvitation(principal, token)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid or expired token"})
		return
	}
	c.JSON(http.StatusOK, room)
}

// LeaveRoom removes the caller from the room; the owner is refused.
func (g *Gateway) LeaveRoom(c *gin.Context) {
	principal := mustPrincipal(c)
	err := g.roomService.LeaveRoom(principal, c.Param("roomId"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, "Room left")
	case errors.Is(err, errors.ErrOwnerCannotLeave):
		c.JSON(http.StatusForbidden, gin.H{"message": "owner cannot leave the room"})
	default:
		c.JSON(http.StatusNotFound, gin.H{"message": "failed to leave room"})
	}
}

// DeleteRoom is owner-only; success broadcasts on the global deletion
// stream from the service.
func (g *Gateway) DeleteRoom(c *gin.Context) {
	principal := mustPrincipal(c)
	_, err := g.roomService.DeleteRoom(principal, c.Param("roomId"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, "Room deleted")
	case errors.Is(err, errors.ErrNotOwner):
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to delete room"})
	default:
		c.JSON(http.StatusNotFound, gin.H{"message": "failed to delete room"})
	}
}

// RenameRoom is owner-only.
func (g *Gateway) RenameRoom(c *gin.Context) {
	principal := mustPrincipal(c)
	newName := c.Query("newName")
	if newName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to change room name"})
		return
	}

	_, err := g.roomService.RenameRoom(principal, c.Param("roomId"), newName)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, "Room name changed")
	case errors.Is(err, errors.ErrNotOwner):
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to change room name"})
	default:
		c.JSON(http.StatusNotFound, gin.H{"message": "failed to change room name"})
	}
}

// GetMessages returns a page of room history, newest first, with a cursor
// for the next page.
func (g *Gateway) GetMessages(c *gin.Context) {
	principal := mustPrincipal(c)

	var cursor *string
	if v := c.Query("cursor"); v != "" {
		cursor = &v
	}

	messages, next, err := g.messageService.GetMessages(principal, c.Param("roomId"), cursor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to get messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages, "cursor": next})
}

// SearchMessages runs a member-only full-text query over a room's history.
func (g *Gateway) SearchMessages(c *gin.Context) {
	principal := mustPrincipal(c)
	terms := c.Query("q")
	if terms == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing query"})
		return
	}
	limit := 20
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}

	results, err := g.messageService.Search(c.Request.Context(), principal, c.Param("roomId"), terms, limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "search failed"})
		return
	}
	c.JSON(http.StatusOK, results)
}

// mustPrincipal is only called behind the auth middleware, which guarantees
// a bound principal.
func mustPrincipal(c *gin.Context) domain.Principal {
	principal, _ := auth.PrincipalFrom(c)
	return principal
}
