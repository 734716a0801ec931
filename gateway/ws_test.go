package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func TestRoomTopic(t *testing.T) {
	tests := []struct {
		topic  string
		roomID string
		scoped bool
	}{
		{"/topic/room/abc", "abc", true},
		{"/topic/room/abc/users", "abc", true},
		{"/topic/room/abc/users/all", "abc", true},
		{"/topic/room/delete", "", false},
		{"/topic/rooms", "", false},
		{"/topic/user/update", "", false},
		{"/topic/room/", "", false},
		{"nonsense", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			roomID, scoped := roomTopic(tt.topic)
			require.Equal(t, tt.scoped, scoped)
			require.Equal(t, tt.roomID, roomID)
		})
	}
}

func TestParseSendDestination(t *testing.T) {
	tests := []struct {
		destination string
		op          string
		roomID      string
		ok          bool
	}{
		{"/app/chat.sendMessage/abc", "chat.sendMessage", "abc", true},
		{"/app/updateUsers/abc", "updateUsers", "abc", true},
		{"/app/updateRoomLastMessage/abc-def", "updateRoomLastMessage", "abc-def", true},
		{"/app/chat.sendMessage/", "", "", false},
		{"/app/chat.sendMessage", "", "", false},
		{"/topic/room/abc", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.destination, func(t *testing.T) {
			op, roomID, ok := parseSendDestination(tt.destination)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.op, op)
			require.Equal(t, tt.roomID, roomID)
		})
	}
}

func (h *harness) wsURL() string {
	return strings.Replace(h.server.URL, "http://", "ws://", 1) + "/ws"
}

// dialSession upgrades and completes the connect handshake, returning an
// authenticated connection.
func (h *harness) dialSession(t *testing.T, ctx context.Context, token string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, h.wsURL()+"?token="+token, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close(websocket.StatusNormalClosure, "test done")
	})

	require.NoError(t, wsjson.Write(ctx, conn, Frame{
		Type:    FrameConnect,
		Headers: map[string]string{"Authorization": "Bearer " + token},
	}))

	var reply Frame
	require.NoError(t, wsjson.Read(ctx, conn, &reply))
	require.Equal(t, FrameConnected, reply.Type)
	return conn
}

func TestWSUpgradeRequiresValidToken(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := websocket.Dial(ctx, h.wsURL(), nil)
	req.Error(err)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.Dial(ctx, h.wsURL()+"?token=not-a-jwt", nil)
	req.Error(err)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestWSConnectFrameRequired(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	token := h.registerUser(t, "ada@example.com", "Ada")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, h.wsURL()+"?token="+token, nil)
	req.NoError(err)
	defer conn.Close(websocket.StatusNormalClosure, "test done")

	// A subscribe before connect hangs up the session.
	req.NoError(wsjson.Write(ctx, conn, Frame{Type: FrameSubscribe, Destination: "/topic/rooms"}))

	var reply Frame
	err = wsjson.Read(ctx, conn, &reply)
	req.Error(err)
	req.Equal(websocket.StatusPolicyViolation, websocket.CloseStatus(err))
}

func TestWSHandshakeTimeout(t *testing.T) {
	req := require.New(t)
	h := newHarnessWithTimeout(t, 100*time.Millisecond)
	token := h.registerUser(t, "ada@example.com", "Ada")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, h.wsURL()+"?token="+token, nil)
	req.NoError(err)
	defer conn.Close(websocket.StatusNormalClosure, "test done")

	// No connect frame at all: the session must be hung up once the
	// handshake window elapses.
	var reply Frame
	err = wsjson.Read(ctx, conn, &reply)
	req.Error(err)
	req.Equal(websocket.StatusPolicyViolation, websocket.CloseStatus(err))
}

func TestWSSendAndReceive(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	token := h.registerUser(t, "ada@example.com", "Ada")
	room := h.createRoom(t, token, "general")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := h.dialSession(t, ctx, token)
	topic := "/topic/room/" + room.ID

	req.NoError(wsjson.Write(ctx, conn, Frame{Type: FrameSubscribe, Destination: topic}))
	// Subscription has no ack; the next read observes its effect.

	payload, err := json.Marshal(sendMessagePayload{Content: "hello over the wire"})
	req.NoError(err)
	req.NoError(wsjson.Write(ctx, conn, Frame{
		Type:        FrameSend,
		Destination: "/app/chat.sendMessage/" + room.ID,
		Payload:     payload,
	}))

	var frame Frame
	req.NoError(wsjson.Read(ctx, conn, &frame))
	req.Equal(FrameMessage, frame.Type)
	req.Equal(topic, frame.Destination)

	var message struct {
		Content         string `json:"content"`
		SenderFirstName string `json:"senderFirstName"`
	}
	req.NoError(json.Unmarshal(frame.Payload, &message))
	req.Equal("hello over the wire", message.Content)
	req.Equal("Ada", message.SenderFirstName)
}

func TestWSSubscribeRefusedForNonMember(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	ownerToken := h.registerUser(t, "owner@example.com", "Owner")
	strangerToken := h.registerUser(t, "stranger@example.com", "Stranger")
	room := h.createRoom(t, ownerToken, "general")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := h.dialSession(t, ctx, strangerToken)
	topic := "/topic/room/" + room.ID

	req.NoError(wsjson.Write(ctx, conn, Frame{Type: FrameSubscribe, Destination: topic}))

	var frame Frame
	req.NoError(wsjson.Read(ctx, conn, &frame))
	req.Equal(FrameError, frame.Type)
	req.Equal(topic, frame.Destination)
}

func TestWSSendRefusedForNonMember(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	ownerToken := h.registerUser(t, "owner@example.com", "Owner")
	strangerToken := h.registerUser(t, "stranger@example.com", "Stranger")
	room := h.createRoom(t, ownerToken, "general")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	owner := h.dialSession(t, ctx, ownerToken)
	stranger := h.dialSession(t, ctx, strangerToken)
	topic := "/topic/room/" + room.ID

	req.NoError(wsjson.Write(ctx, owner, Frame{Type: FrameSubscribe, Destination: topic}))

	payload, err := json.Marshal(sendMessagePayload{Content: "should never land"})
	req.NoError(err)
	destination := "/app/chat.sendMessage/" + room.ID
	req.NoError(wsjson.Write(ctx, stranger, Frame{
		Type:        FrameSend,
		Destination: destination,
		Payload:     payload,
	}))

	// The unauthorized sender gets an explicit error frame back.
	var frame Frame
	req.NoError(wsjson.Read(ctx, stranger, &frame))
	req.Equal(FrameError, frame.Type)
	req.Equal(destination, frame.Destination)

	// And the member sees nothing broadcast on the room stream.
	readCtx, cancelRead := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancelRead()
	var leaked Frame
	req.Error(wsjson.Read(readCtx, owner, &leaked))
}

func TestWSClientCloseClean(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	token := h.registerUser(t, "ada@example.com", "Ada")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := h.dialSession(t, ctx, token)

	// A normal client close completes the handshake without the peer
	// escalating to an abnormal status.
	req.NoError(conn.Close(websocket.StatusNormalClosure, "done"))
}

func TestWSUnknownDestination(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	token := h.registerUser(t, "ada@example.com", "Ada")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn := h.dialSession(t, ctx, token)

	req.NoError(wsjson.Write(ctx, conn, Frame{Type: FrameSend, Destination: "/nowhere"}))

	var frame Frame
	req.NoError(wsjson.Read(ctx, conn, &frame))
	req.Equal(FrameError, frame.Type)
}
