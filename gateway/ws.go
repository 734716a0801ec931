package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"chat-rooms/domain"
	"chat-rooms/domain/event"
	"chat-rooms/fanout"

	"github.com/gin-gonic/gin"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// HandleWS is the connection gatekeeper and session loop.
//
// Admission happens in two stages, both verifying the full token (signature
// and expiry, not mere presence):
//  1. the upgrade request must carry ?token=, checked before the WebSocket
//     handshake completes;
//  2. the first frame must be a connect frame with an Authorization header,
//     checked before any other frame is processed. The resolved Principal is
//     bound to the session for its lifetime; no later frame re-verifies.
//
// A connection that does not authenticate within the handshake timeout is
// closed.
func (g *Gateway) HandleWS(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "missing token"})
		return
	}
	if _, err := g.tokens.Verify(tokenStr); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid or expired token"})
		return
	}

	opts := &websocket.AcceptOptions{}
	// Origin verification is bypassed only for local development setups
	// where the frontend runs on a different port.
	if g.wsInsecureSkipVerify {
		opts.InsecureSkipVerify = true
	}
	conn, err := websocket.Accept(c.Writer, c.Request, opts)
	if err != nil {
		return // Accept already wrote the error response.
	}
	defer conn.Close(websocket.StatusInternalError, "session ended")

	ctx := c.Request.Context()

	principal, ok := g.awaitConnect(ctx, conn)
	if !ok {
		conn.Close(websocket.StatusPolicyViolation, "authentication required")
		return
	}
	g.log.Info("Session authenticated", "user", principal.UserID)

	g.runSession(ctx, conn, principal)
	conn.Close(websocket.StatusNormalClosure, "session ended")
}

// awaitConnect enforces the protocol-level handshake: exactly one connect
// frame, within the timeout, with a verifiable bearer token whose subject
// resolves to a known user.
func (g *Gateway) awaitConnect(ctx context.Context, conn *websocket.Conn) (domain.Principal, bool) {
	handshakeCtx, cancel := context.WithTimeout(ctx, g.handshakeTimeout)
	defer cancel()

	var frame Frame
	if err := wsjson.Read(handshakeCtx, conn, &frame); err != nil {
		g.log.Debug("Handshake frame not received", "error", err)
		return domain.Principal{}, false
	}
	if frame.Type != FrameConnect {
		return domain.Principal{}, false
	}

	bearer := strings.TrimPrefix(frame.Headers["Authorization"], "Bearer ")
	claims, err := g.tokens.Verify(bearer)
	if err != nil {
		g.log.Debug("Handshake token rejected", "error", err)
		return domain.Principal{}, false
	}
	user, err := g.users.GetUserByID(claims.UserID)
	if err != nil {
		g.log.Debug("Handshake subject does not resolve", "user", claims.UserID)
		return domain.Principal{}, false
	}

	principal := domain.Principal{UserID: user.ID, Email: user.Email}
	if err := wsjson.Write(handshakeCtx, conn, Frame{Type: FrameConnected}); err != nil {
		return domain.Principal{}, false
	}
	return principal, true
}

// runSession owns the authenticated phase: a writer goroutine drains the
// session's fanout subscriber while this goroutine reads inbound frames.
func (g *Gateway) runSession(ctx context.Context, conn *websocket.Conn, principal domain.Principal) {
	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sub := g.hub.NewSubscriber()
	defer g.hub.Drop(sub)

	go func() {
		for {
			select {
			case <-sessionCtx.Done():
				return
			case evt := <-sub.C:
				frame, err := messageFrame(evt.Topic(), evt.Body())
				if err != nil {
					g.log.Warn("Event marshal failed", "topic", evt.Topic(), "error", err)
					continue
				}
				writeCtx, cancelWrite := context.WithTimeout(sessionCtx, 10*time.Second)
				err = wsjson.Write(writeCtx, conn, frame)
				cancelWrite()
				if err != nil {
					cancel()
					return
				}
			}
		}
	}()

	for {
		var frame Frame
		if err := wsjson.Read(sessionCtx, conn, &frame); err != nil {
			return
		}

		switch frame.Type {
		case FrameSubscribe:
			g.handleSubscribe(sessionCtx, conn, sub, principal, frame.Destination)
		case FrameUnsubscribe:
			g.hub.Unsubscribe(frame.Destination, sub)
		case FrameSend:
			g.handleSend(sessionCtx, conn, principal, frame)
		default:
			g.writeControl(sessionCtx, conn, errorFrame(frame.Destination, "unsupported frame type"))
		}
	}
}

// handleSubscribe attaches the session to a topic. Room-scoped topics are
// member-only; a refusal is an explicit error frame, never a silent no-op.
func (g *Gateway) handleSubscribe(ctx context.Context, conn *websocket.Conn,
	sub *fanout.Subscriber, principal domain.Principal, topic string) {
	if roomID, scoped := roomTopic(topic); scoped {
		if !g.roomService.IsMember(roomID, principal.Email) {
			g.writeControl(ctx, conn, errorFrame(topic, "not a member of this room"))
			return
		}
	}
	g.hub.Subscribe(topic, sub)
}

// handleSend dispatches an application destination. Unauthorized operations
// never execute and never broadcast; the caller always gets an error frame
// back.
func (g *Gateway) handleSend(ctx context.Context, conn *websocket.Conn,
	principal domain.Principal, frame Frame) {
	op, roomID, ok := parseSendDestination(frame.Destination)
	if !ok {
		g.writeControl(ctx, conn, errorFrame(frame.Destination, "unknown destination"))
		return
	}

	var err error
	switch op {
	case opSendMessage:
		var payload sendMessagePayload
		if err = json.Unmarshal(frame.Payload, &payload); err == nil {
			_, err = g.messageService.CreateMessage(ctx, principal, roomID, payload.Content)
		}

	case opUpdateUsers:
		err = g.announceMembers(principal, roomID, false)

	case opUpdateAllUsers:
		err = g.announceMembers(principal, roomID, true)

	case opUpdateLastMessage:
		var payload lastMessagePayload
		if err = json.Unmarshal(frame.Payload, &payload); err == nil {
			_, err = g.roomService.UpdateLastMessage(principal, roomID, domain.Message{
				RoomID:          roomID,
				Content:         payload.Content,
				SenderID:        payload.SenderID,
				SenderFirstName: payload.SenderFirstName,
			})
		}

	default:
		err = errors.New("unknown operation")
	}

	if err != nil {
		g.writeControl(ctx, conn, errorFrame(frame.Destination, err.Error()))
	}
}

// announceMembers publishes a fresh member snapshot on the room's member
// stream, on behalf of an authorized member.
func (g *Gateway) announceMembers(principal domain.Principal, roomID string, all bool) error {
	if all {
		members, err := g.roomService.ListAllMembers(principal, roomID)
		if err != nil {
			return err
		}
		g.hub.Publish(event.AllMembersChanged{RoomID: roomID, Members: members})
		return nil
	}
	members, err := g.roomService.ListMembers(principal, roomID)
	if err != nil {
		return err
	}
	g.hub.Publish(event.MembersChanged{RoomID: roomID, Members: members})
	return nil
}

func (g *Gateway) writeControl(ctx context.Context, conn *websocket.Conn, frame Frame) {
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := wsjson.Write(writeCtx, conn, frame); err != nil {
		g.log.Debug("Control frame write failed", "error", err)
	}
}

// roomTopic extracts the room id from a room-scoped topic. The global
// streams (/topic/rooms, /topic/room/delete, /topic/user/update) are not
// room-scoped.
func roomTopic(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, "/topic/room/")
	if !ok || rest == "delete" {
		return "", false
	}
	rest = strings.TrimSuffix(rest, "/users/all")
	rest = strings.TrimSuffix(rest, "/users")
	if rest == "" {
		return "", false
	}
	return rest, true
}

// parseSendDestination splits /app/{operation}/{roomId}.
func parseSendDestination(destination string) (op, roomID string, ok bool) {
	rest, found := strings.CutPrefix(destination, "/app/")
	if !found {
		return "", "", false
	}
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
