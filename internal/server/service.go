package server

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/elemental-arena/server/internal/game"
	"github.com/elemental-arena/server/internal/randutil"
)

// ErrRoomNotFound is returned when a room id does not resolve. It is
// distinct from every in-room failure so clients can tell a bad address
// from a bad move.
var ErrRoomNotFound = errors.New("room not found")

// GameService owns the room registry and routes operations to the
// addressed room. Registry mutation serializes on the service lock;
// state transitions inside a room serialize on that room's own lock, so
// unrelated rooms proceed independently.
type GameService struct {
	mu         sync.RWMutex
	rooms      map[string]*game.Room
	nextRoomID int
	rules      game.Rules
	rng        *rand.Rand
	clock      quartz.Clock
	reapGrace  time.Duration
	finished   map[string]time.Time // room id -> first seen game-over
	logger     *log.Logger
}

// ServiceOption customises a GameService
type ServiceOption func(*GameService)

// WithRules overrides the default game rules for new rooms
func WithRules(rules game.Rules) ServiceOption {
	return func(s *GameService) { s.rules = rules }
}

// WithClock injects the clock used by the finished-room reaper
func WithClock(clock quartz.Clock) ServiceOption {
	return func(s *GameService) { s.clock = clock }
}

// WithReapGrace sets how long a finished room lingers before the
// reaper removes it
func WithReapGrace(grace time.Duration) ServiceOption {
	return func(s *GameService) { s.reapGrace = grace }
}

// NewGameService creates a game service. The rng seeds each room's
// independent source; pass a deterministic one in tests.
func NewGameService(logger *log.Logger, rng *rand.Rand, opts ...ServiceOption) *GameService {
	if rng == nil {
		rng = randutil.New(time.Now().UnixNano())
	}
	s := &GameService{
		rooms:      make(map[string]*game.Room),
		nextRoomID: 1,
		rules:      game.DefaultRules(),
		rng:        rng,
		clock:      quartz.NewReal(),
		reapGrace:  5 * time.Minute,
		finished:   make(map[string]time.Time),
		logger:     logger.WithPrefix("game-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRoom allocates a room with a fresh sequential id. maxPlayers
// below 2 falls back to a two-seat room.
func (s *GameService) CreateRoom(maxPlayers int) (string, error) {
	if maxPlayers < 2 {
		maxPlayers = 2
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	roomID := fmt.Sprintf("room_%d", s.nextRoomID)
	s.nextRoomID++

	roomRNG := randutil.New(s.rng.Int64())
	s.rooms[roomID] = game.NewRoom(roomID, maxPlayers, s.rules, roomRNG, s.logger)
	s.logger.Info("Created room", "room", roomID, "maxPlayers", maxPlayers)
	return roomID, nil
}

// JoinRoom seats a player in the addressed room
func (s *GameService) JoinRoom(roomID, playerID, playerName string) error {
	room, err := s.room(roomID)
	if err != nil {
		return err
	}
	return room.AddPlayer(game.NewPlayer(playerID, playerName))
}

// LeaveRoom removes a player from the addressed room. Leaving a
// started game forfeits it to the opponent.
func (s *GameService) LeaveRoom(roomID, playerID string) error {
	room, err := s.room(roomID)
	if err != nil {
		return err
	}
	return room.RemovePlayer(playerID)
}

// StartGame starts the addressed room and deals the opening hands
func (s *GameService) StartGame(roomID string) error {
	room, err := s.room(roomID)
	if err != nil {
		return err
	}
	if err := room.Start(); err != nil {
		return err
	}
	room.Deal(room.Rules().CardsPerDeal)
	return nil
}

// PlayCard commits the card at index for the given player
func (s *GameService) PlayCard(roomID, playerID string, index int) error {
	room, err := s.room(roomID)
	if err != nil {
		return err
	}
	return room.PlayCard(playerID, index)
}

// RoomState returns a snapshot of the addressed room. viewerID selects
// whose hand contents are included.
func (s *GameService) RoomState(roomID, viewerID string) (game.RoomSnapshot, error) {
	room, err := s.room(roomID)
	if err != nil {
		return game.RoomSnapshot{}, err
	}
	return room.Snapshot(viewerID), nil
}

// RoomInfo describes a joinable room for lobby listings
type RoomInfo struct {
	ID          string `json:"id"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
}

// AvailableRooms lists rooms that have not yet started, in id order
func (s *GameService) AvailableRooms() []RoomInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var available []RoomInfo
	for _, room := range s.rooms {
		if room.Started() {
			continue
		}
		snap := room.Snapshot("")
		available = append(available, RoomInfo{
			ID:          room.ID(),
			PlayerCount: len(snap.Players),
			MaxPlayers:  snap.MaxPlayers,
		})
	}
	sort.Slice(available, func(i, j int) bool { return available[i].ID < available[j].ID })
	return available
}

// RemoveRoom discards a room and everything it owns
func (s *GameService) RemoveRoom(roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[roomID]; !ok {
		return ErrRoomNotFound
	}
	delete(s.rooms, roomID)
	delete(s.finished, roomID)
	s.logger.Info("Removed room", "room", roomID)
	return nil
}

// RoomCount returns the number of registered rooms
func (s *GameService) RoomCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// RunReaper periodically removes rooms that have been finished for
// longer than the grace period. Blocks until ctx is cancelled.
func (s *GameService) RunReaper(ctx context.Context, interval time.Duration) error {
	ticker := s.clock.TickerFunc(ctx, interval, func() error {
		s.reap()
		return nil
	}, "reaper")
	err := ticker.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// reap performs one sweep. A finished room is timestamped on first
// sight and removed once the grace period has elapsed, so clients get
// a window to fetch the final state.
func (s *GameService) reap() {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, room := range s.rooms {
		if !room.Over() {
			continue
		}
		seen, ok := s.finished[id]
		if !ok {
			s.finished[id] = now
			continue
		}
		if now.Sub(seen) >= s.reapGrace {
			delete(s.rooms, id)
			delete(s.finished, id)
			s.logger.Info("Reaped finished room", "room", id)
		}
	}
}

func (s *GameService) room(roomID string) (*game.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	return room, nil
}
