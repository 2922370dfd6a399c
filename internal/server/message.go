package server

import (
	"encoding/json"
	"time"

	"github.com/elemental-arena/server/internal/game"
)

// MessageType identifies a wire message
type MessageType string

// String returns the message type as a string
func (t MessageType) String() string { return string(t) }

// Client → server message types
const (
	MessageTypeHello      MessageType = "hello"
	MessageTypeCreateRoom MessageType = "create_room"
	MessageTypeJoinRoom   MessageType = "join_room"
	MessageTypeLeaveRoom  MessageType = "leave_room"
	MessageTypeStartGame  MessageType = "start_game"
	MessageTypePlayCard   MessageType = "play_card"
	MessageTypeRoomState  MessageType = "room_state"
	MessageTypeListRooms  MessageType = "list_rooms"
)

// Server → client message types
const (
	MessageTypeWelcome     MessageType = "welcome"
	MessageTypeRoomCreated MessageType = "room_created"
	MessageTypeRoomJoined  MessageType = "room_joined"
	MessageTypeRoomLeft    MessageType = "room_left"
	MessageTypeGameStarted MessageType = "game_started"
	MessageTypeCardPlayed  MessageType = "card_played"
	MessageTypeRoomUpdate  MessageType = "room_update"
	MessageTypeRoomList    MessageType = "room_list"
	MessageTypeError       MessageType = "error"
)

// Message is the JSON envelope every frame travels in
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → server payloads

type HelloData struct {
	PlayerID   string `json:"playerId,omitempty"`
	PlayerName string `json:"playerName"`
}

type CreateRoomData struct {
	MaxPlayers int `json:"maxPlayers,omitempty"`
}

type JoinRoomData struct {
	RoomID string `json:"roomId"`
}

type LeaveRoomData struct {
	RoomID string `json:"roomId"`
}

type StartGameData struct {
	RoomID string `json:"roomId"`
}

type PlayCardData struct {
	RoomID    string `json:"roomId"`
	CardIndex int    `json:"cardIndex"`
}

type RoomStateData struct {
	RoomID string `json:"roomId"`
}

// Server → client payloads

type WelcomeData struct {
	PlayerID string `json:"playerId"`
}

type RoomCreatedData struct {
	RoomID string `json:"roomId"`
}

type RoomJoinedData struct {
	RoomID string            `json:"roomId"`
	State  game.RoomSnapshot `json:"state"`
}

type RoomLeftData struct {
	RoomID string `json:"roomId"`
}

type GameStartedData struct {
	RoomID string            `json:"roomId"`
	State  game.RoomSnapshot `json:"state"`
}

type CardPlayedData struct {
	RoomID string            `json:"roomId"`
	State  game.RoomSnapshot `json:"state"`
}

type RoomUpdateData struct {
	RoomID string            `json:"roomId"`
	State  game.RoomSnapshot `json:"state"`
}

type RoomStateResponseData struct {
	RoomID string            `json:"roomId"`
	State  game.RoomSnapshot `json:"state"`
}

type RoomListData struct {
	Rooms []RoomInfo `json:"rooms"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
