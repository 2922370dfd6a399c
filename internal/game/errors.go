package game

import "errors"

// Sentinel errors for every way a room operation can be refused. None
// of these are fatal; the service layer reports them to the caller and
// keeps serving other rooms.
var (
	ErrRoomFull         = errors.New("room is full")
	ErrGameStarted      = errors.New("game already started")
	ErrGameNotStarted   = errors.New("game not started")
	ErrGameOver         = errors.New("game is over")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrDuplicatePlayer  = errors.New("player already in room")
	ErrNotYourTurn      = errors.New("not this player's turn")
	ErrInvalidCardIndex = errors.New("card index out of range")
)
