package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chat-rooms/auth"
	"chat-rooms/fanout"
	"chat-rooms/repositories"
	"chat-rooms/services"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const testPassword = "ComplexPass123!"

type harness struct {
	server *httptest.Server
	hub    *fanout.Hub
	tokens *auth.TokenManager
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithTimeout(t, 5*time.Second)
}

func newHarnessWithTimeout(t *testing.T, handshakeTimeout time.Duration) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenManager("gateway_test_secret", time.Hour)
	hub := fanout.NewHub(log, 16)

	users := repositories.NewUserRepository(db)
	rooms := repositories.NewRoomRepository(db)
	invitations := repositories.NewInvitationRepository(db)
	messages := repositories.NewMessageRepository(db, log, nil)

	roomService := services.NewRoomService(rooms, users, hub, log)
	gw := New(log, tokens, hub, users,
		services.NewAuthService(users, tokens),
		services.NewUserService(users, hub, log),
		roomService,
		services.NewInvitationService(invitations, users, roomService, "http://localhost", log),
		services.NewMessageService(messages, users, roomService, nil, nil, hub, log),
		Options{HandshakeTimeout: handshakeTimeout, WSInsecureSkipVerify: true})

	server := httptest.NewServer(gw.Router())
	t.Cleanup(server.Close)
	return &harness{server: server, hub: hub, tokens: tokens}
}

// do sends a JSON request, optionally authenticated, and decodes the reply
// into out when it is non-nil.
func (h *harness) do(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, h.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// registerUser creates an account through the API and returns its token.
func (h *harness) registerUser(t *testing.T, email, firstName string) string {
	t.Helper()
	var reply struct {
		Token string `json:"token"`
	}
	status := h.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"email":     email,
		"password":  testPassword,
		"firstName": firstName,
		"lastName":  "Test",
	}, &reply)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, reply.Token)
	return reply.Token
}

type roomReply struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

func (h *harness) createRoom(t *testing.T, token, name string) roomReply {
	t.Helper()
	var room roomReply
	status := h.do(t, http.MethodPost, "/api/rooms/create", token,
		map[string]string{"roomName": name}, &room)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, room.ID)
	return room
}
