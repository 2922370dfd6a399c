package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/elemental-arena/server/internal/game"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

// ErrConnectionClosed is returned when sending on a closed connection
var ErrConnectionClosed = websocket.ErrCloseSent

// Connection wraps one client WebSocket. Each connection reads one
// command at a time and invokes exactly one service operation for it,
// so no per-connection queueing is needed.
type Connection struct {
	conn       *websocket.Conn
	send       chan *Message
	playerID   string
	playerName string
	roomID     string
	logger     *log.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	mu         sync.RWMutex
	closeOnce  sync.Once
	server     *Server
	service    *GameService
}

// NewConnection creates a connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, server *Server, service *GameService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:    conn,
		send:    make(chan *Message, 256),
		logger:  logger.WithPrefix("conn"),
		ctx:     ctx,
		cancel:  cancel,
		server:  server,
		service: service,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed during shutdown
			c.logger.Debug("Attempted to send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetPlayer associates this connection with a player id
func (c *Connection) SetPlayer(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
}

// Player returns the associated player id
func (c *Connection) Player() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// SetRoom associates this connection with a room
func (c *Connection) SetRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
}

// Room returns the associated room id
func (c *Connection) Room() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage decodes and dispatches one client command. A malformed
// or inapplicable request always resolves to an error frame, never a
// dropped connection or a panic.
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.Player())

	switch msg.Type {
	case MessageTypeHello:
		var data HelloData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse hello data")
			return
		}
		c.handleHello(data)

	case MessageTypeCreateRoom:
		var data CreateRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse create room data")
			return
		}
		c.handleCreateRoom(data)

	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join room data")
			return
		}
		c.handleJoinRoom(data)

	case MessageTypeLeaveRoom:
		var data LeaveRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse leave room data")
			return
		}
		c.handleLeaveRoom(data)

	case MessageTypeStartGame:
		var data StartGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse start game data")
			return
		}
		c.handleStartGame(data)

	case MessageTypePlayCard:
		var data PlayCardData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse play card data")
			return
		}
		c.handlePlayCard(data)

	case MessageTypeRoomState:
		var data RoomStateData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse room state data")
			return
		}
		c.handleRoomState(data)

	case MessageTypeListRooms:
		c.handleListRooms()

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleHello(data HelloData) {
	if data.PlayerName == "" {
		c.sendError("invalid_hello", "Player name required")
		return
	}

	playerID := data.PlayerID
	if playerID == "" {
		playerID = uuid.NewString()
	}
	c.SetPlayer(playerID)
	c.mu.Lock()
	c.playerName = data.PlayerName
	c.mu.Unlock()

	c.logger.Info("Player registered", "player", playerID, "name", data.PlayerName)

	response, _ := NewMessage(MessageTypeWelcome, WelcomeData{PlayerID: playerID})
	_ = c.SendMessage(response)
}

func (c *Connection) handleCreateRoom(data CreateRoomData) {
	roomID, err := c.service.CreateRoom(data.MaxPlayers)
	if err != nil {
		c.sendGameError("create_failed", err)
		return
	}

	response, _ := NewMessage(MessageTypeRoomCreated, RoomCreatedData{RoomID: roomID})
	_ = c.SendMessage(response)
}

func (c *Connection) handleJoinRoom(data JoinRoomData) {
	playerID := c.Player()
	if playerID == "" {
		c.sendError("not_registered", "Send hello first")
		return
	}

	c.mu.RLock()
	playerName := c.playerName
	c.mu.RUnlock()

	if err := c.service.JoinRoom(data.RoomID, playerID, playerName); err != nil {
		c.sendGameError("join_failed", err)
		return
	}
	c.SetRoom(data.RoomID)

	state, err := c.service.RoomState(data.RoomID, playerID)
	if err != nil {
		c.sendGameError("join_failed", err)
		return
	}

	response, _ := NewMessage(MessageTypeRoomJoined, RoomJoinedData{RoomID: data.RoomID, State: state})
	_ = c.SendMessage(response)
	c.server.BroadcastRoomUpdate(data.RoomID, c)
}

func (c *Connection) handleLeaveRoom(data LeaveRoomData) {
	playerID := c.Player()
	if playerID == "" {
		c.sendError("not_registered", "Send hello first")
		return
	}

	if err := c.service.LeaveRoom(data.RoomID, playerID); err != nil {
		c.sendGameError("leave_failed", err)
		return
	}
	c.SetRoom("")

	response, _ := NewMessage(MessageTypeRoomLeft, RoomLeftData{RoomID: data.RoomID})
	_ = c.SendMessage(response)
	c.server.BroadcastRoomUpdate(data.RoomID, nil)
}

func (c *Connection) handleStartGame(data StartGameData) {
	if err := c.service.StartGame(data.RoomID); err != nil {
		c.sendGameError("start_failed", err)
		return
	}

	state, err := c.service.RoomState(data.RoomID, c.Player())
	if err != nil {
		c.sendGameError("start_failed", err)
		return
	}

	response, _ := NewMessage(MessageTypeGameStarted, GameStartedData{RoomID: data.RoomID, State: state})
	_ = c.SendMessage(response)
	c.server.BroadcastRoomUpdate(data.RoomID, c)
}

func (c *Connection) handlePlayCard(data PlayCardData) {
	playerID := c.Player()
	if playerID == "" {
		c.sendError("not_registered", "Send hello first")
		return
	}

	if err := c.service.PlayCard(data.RoomID, playerID, data.CardIndex); err != nil {
		c.sendGameError("play_failed", err)
		return
	}

	state, err := c.service.RoomState(data.RoomID, playerID)
	if err != nil {
		c.sendGameError("play_failed", err)
		return
	}

	response, _ := NewMessage(MessageTypeCardPlayed, CardPlayedData{RoomID: data.RoomID, State: state})
	_ = c.SendMessage(response)
	c.server.BroadcastRoomUpdate(data.RoomID, c)
}

func (c *Connection) handleRoomState(data RoomStateData) {
	state, err := c.service.RoomState(data.RoomID, c.Player())
	if err != nil {
		c.sendGameError("state_failed", err)
		return
	}

	response, _ := NewMessage(MessageTypeRoomState, RoomStateResponseData{RoomID: data.RoomID, State: state})
	_ = c.SendMessage(response)
}

func (c *Connection) handleListRooms() {
	response, _ := NewMessage(MessageTypeRoomList, RoomListData{Rooms: c.service.AvailableRooms()})
	_ = c.SendMessage(response)
}

// sendError sends an error frame to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}
	_ = c.SendMessage(errorMsg)
}

// sendGameError maps a service error to a wire error code, keeping the
// taxonomy distinctions (not found vs illegal state vs bad input)
func (c *Connection) sendGameError(fallback string, err error) {
	c.sendError(errorCode(err, fallback), err.Error())
}

func errorCode(err error, fallback string) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, game.ErrPlayerNotFound):
		return "player_not_found"
	case errors.Is(err, game.ErrInvalidCardIndex):
		return "invalid_card_index"
	case errors.Is(err, game.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, game.ErrRoomFull),
		errors.Is(err, game.ErrGameStarted),
		errors.Is(err, game.ErrGameNotStarted),
		errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrNotEnoughPlayers),
		errors.Is(err, game.ErrDuplicatePlayer):
		return "invalid_state"
	default:
		return fallback
	}
}
