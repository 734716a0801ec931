package gateway

import "encoding/json"

// Frame is the unit of the WebSocket protocol. The client opens with a
// connect frame carrying its bearer token, then subscribes to topics and
// sends to application destinations; the server pushes message frames for
// subscribed topics and error frames for refused operations.
type FrameType string

const (
	FrameConnect     FrameType = "connect"
	FrameConnected   FrameType = "connected"
	FrameSubscribe   FrameType = "subscribe"
	FrameUnsubscribe FrameType = "unsubscribe"
	FrameSend        FrameType = "send"
	FrameMessage     FrameType = "message"
	FrameError       FrameType = "error"
)

type Frame struct {
	Type        FrameType         `json:"type"`
	Headers     map[string]string `json:"headers,omitempty"`
	Destination string            `json:"destination,omitempty"`
	Payload     json.RawMessage   `json:"payload,omitempty"`
}

// Application send destinations, addressed as /app/{operation}/{roomId}.
const (
	opSendMessage       = "chat.sendMessage"
	opUpdateUsers       = "updateUsers"
	opUpdateAllUsers    = "updateAllUsers"
	opUpdateLastMessage = "updateRoomLastMessage"
)

// sendMessagePayload is the body of a chat.sendMessage frame.
type sendMessagePayload struct {
	Content string `json:"content"`
}

// lastMessagePayload is the body of an updateRoomLastMessage frame.
type lastMessagePayload struct {
	Content         string `json:"content"`
	SenderID        string `json:"senderId"`
	SenderFirstName string `json:"senderFirstName"`
}

func messageFrame(destination string, body any) (Frame, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Type: FrameMessage, Destination: destination, Payload: payload}, nil
}

func errorFrame(destination, message string) Frame {
	return Frame{
		Type:        FrameError,
		Destination: destination,
		Headers:     map[string]string{"message": message},
	}
}
