package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/elemental-arena/server/internal/game"
	"github.com/elemental-arena/server/internal/server"
)

// requestTimeout bounds how long a request waits for its response frame
const requestTimeout = 10 * time.Second

// Client is a WebSocket client for the game server. Requests are
// synchronous (send a frame, wait for the matching response type);
// unsolicited room updates arrive on the Updates channel.
type Client struct {
	serverURL string
	conn      *websocket.Conn
	responses chan *server.Message
	updates   chan game.RoomSnapshot
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
	writeMu   sync.Mutex
	connected bool
	playerID  string
	closeOnce sync.Once
}

// New creates a client for the given server URL
func New(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		serverURL: serverURL,
		responses: make(chan *server.Message, 64),
		updates:   make(chan game.RoomSnapshot, 64),
		logger:    logger.WithPrefix("client"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Connect establishes the WebSocket connection
func (c *Client) Connect() error {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws"

	c.logger.Info("Connecting to server", "url", u.String())
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	return nil
}

// Close tears down the connection
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		c.mu.Lock()
		if c.conn != nil {
			err = c.conn.Close()
		}
		c.connected = false
		c.mu.Unlock()
	})
	return err
}

// PlayerID returns the server-assigned player id, set by Hello
func (c *Client) PlayerID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID
}

// Updates delivers pushed room snapshots (other players' moves,
// forfeits, game over)
func (c *Client) Updates() <-chan game.RoomSnapshot {
	return c.updates
}

// readPump routes incoming frames: room updates go to the Updates
// channel, everything else is a response to the request in flight
func (c *Client) readPump() {
	defer func() { _ = c.Close() }()

	for {
		var msg server.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		if msg.Type == server.MessageTypeRoomUpdate {
			var data server.RoomUpdateData
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				c.logger.Error("Bad room update", "error", err)
				continue
			}
			select {
			case c.updates <- data.State:
			default:
				c.logger.Warn("Dropping room update, channel full")
			}
			continue
		}

		select {
		case c.responses <- &msg:
		case <-c.ctx.Done():
			return
		}
	}
}

// request sends one frame and waits for a frame of wantType. An error
// frame arriving instead is surfaced as an error.
func (c *Client) request(msgType server.MessageType, data interface{}, wantType server.MessageType) (*server.Message, error) {
	msg, err := server.NewMessage(msgType, data)
	if err != nil {
		return nil, err
	}

	c.writeMu.Lock()
	err = c.conn.WriteJSON(msg)
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", msgType, err)
	}

	timeout := time.NewTimer(requestTimeout)
	defer timeout.Stop()

	for {
		select {
		case resp := <-c.responses:
			switch resp.Type {
			case wantType:
				return resp, nil
			case server.MessageTypeError:
				var errData server.ErrorData
				if err := json.Unmarshal(resp.Data, &errData); err != nil {
					return nil, fmt.Errorf("server error (unreadable)")
				}
				return nil, fmt.Errorf("%s: %s", errData.Code, errData.Message)
			default:
				// Stale response from an earlier timed-out request
				c.logger.Debug("Discarding unexpected response", "type", resp.Type)
			}
		case <-timeout.C:
			return nil, fmt.Errorf("timed out waiting for %s", wantType)
		case <-c.ctx.Done():
			return nil, c.ctx.Err()
		}
	}
}

// Hello registers the player identity and stores the assigned id
func (c *Client) Hello(playerName string) error {
	resp, err := c.request(server.MessageTypeHello, server.HelloData{PlayerName: playerName}, server.MessageTypeWelcome)
	if err != nil {
		return err
	}
	var data server.WelcomeData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return err
	}
	c.mu.Lock()
	c.playerID = data.PlayerID
	c.mu.Unlock()
	return nil
}

// CreateRoom creates a room and returns its id
func (c *Client) CreateRoom(maxPlayers int) (string, error) {
	resp, err := c.request(server.MessageTypeCreateRoom, server.CreateRoomData{MaxPlayers: maxPlayers}, server.MessageTypeRoomCreated)
	if err != nil {
		return "", err
	}
	var data server.RoomCreatedData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return "", err
	}
	return data.RoomID, nil
}

// JoinRoom joins a room and returns the post-join state
func (c *Client) JoinRoom(roomID string) (game.RoomSnapshot, error) {
	resp, err := c.request(server.MessageTypeJoinRoom, server.JoinRoomData{RoomID: roomID}, server.MessageTypeRoomJoined)
	if err != nil {
		return game.RoomSnapshot{}, err
	}
	var data server.RoomJoinedData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return game.RoomSnapshot{}, err
	}
	return data.State, nil
}

// LeaveRoom leaves the room
func (c *Client) LeaveRoom(roomID string) error {
	_, err := c.request(server.MessageTypeLeaveRoom, server.LeaveRoomData{RoomID: roomID}, server.MessageTypeRoomLeft)
	return err
}

// StartGame starts the game and returns the post-deal state
func (c *Client) StartGame(roomID string) (game.RoomSnapshot, error) {
	resp, err := c.request(server.MessageTypeStartGame, server.StartGameData{RoomID: roomID}, server.MessageTypeGameStarted)
	if err != nil {
		return game.RoomSnapshot{}, err
	}
	var data server.GameStartedData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return game.RoomSnapshot{}, err
	}
	return data.State, nil
}

// PlayCard commits the card at index and returns the resulting state,
// which may already include the computer's reply and the round result
func (c *Client) PlayCard(roomID string, index int) (game.RoomSnapshot, error) {
	resp, err := c.request(server.MessageTypePlayCard, server.PlayCardData{RoomID: roomID, CardIndex: index}, server.MessageTypeCardPlayed)
	if err != nil {
		return game.RoomSnapshot{}, err
	}
	var data server.CardPlayedData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return game.RoomSnapshot{}, err
	}
	return data.State, nil
}

// RoomState fetches the current state of a room
func (c *Client) RoomState(roomID string) (game.RoomSnapshot, error) {
	resp, err := c.request(server.MessageTypeRoomState, server.RoomStateData{RoomID: roomID}, server.MessageTypeRoomState)
	if err != nil {
		return game.RoomSnapshot{}, err
	}
	var data server.RoomStateResponseData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return game.RoomSnapshot{}, err
	}
	return data.State, nil
}

// ListRooms fetches the joinable rooms
func (c *Client) ListRooms() ([]server.RoomInfo, error) {
	resp, err := c.request(server.MessageTypeListRooms, struct{}{}, server.MessageTypeRoomList)
	if err != nil {
		return nil, err
	}
	var data server.RoomListData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, err
	}
	return data.Rooms, nil
}
