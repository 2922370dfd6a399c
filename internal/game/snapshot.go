package game

import "github.com/elemental-arena/server/internal/deck"

// PlayerSnapshot is the render-ready view of one seat. Hand contents
// are only filled in for the viewer; everyone else sees hand size.
type PlayerSnapshot struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	HandSize   int         `json:"handSize"`
	Score      int         `json:"score"`
	Active     bool        `json:"active"`
	AI         bool        `json:"isAI"`
	Hand       []deck.Card `json:"hand,omitempty"`
	ChosenCard *deck.Card  `json:"chosenCard,omitempty"`
}

// RoomSnapshot is a lossless, point-in-time view of a room for clients
type RoomSnapshot struct {
	RoomID      string           `json:"roomId"`
	MaxPlayers  int              `json:"maxPlayers"`
	Started     bool             `json:"gameStarted"`
	Over        bool             `json:"gameOver"`
	Rounds      int              `json:"roundsPlayed"`
	RoundLimit  int              `json:"roundLimit"`
	CurrentTurn string           `json:"currentTurn,omitempty"`
	Winner      string           `json:"winner,omitempty"`
	Tie         bool             `json:"tie,omitempty"`
	Players     []PlayerSnapshot `json:"players"`
}

// Snapshot captures the room's state. viewerID selects which seat gets
// its hand contents included; pass "" for a spectator view.
func (r *Room) Snapshot(viewerID string) RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := RoomSnapshot{
		RoomID:     r.id,
		MaxPlayers: r.maxPlayers,
		Started:    r.started,
		Over:       r.over,
		Rounds:     r.rounds,
		RoundLimit: r.rules.Rounds,
	}
	if r.started && !r.over && r.current < len(r.players) {
		snap.CurrentTurn = r.players[r.current].ID()
	}
	if r.over {
		if winnerID, ok := r.winnerLocked(); ok {
			if winner := r.playerByID(winnerID); winner != nil {
				snap.Winner = winner.Name()
			} else {
				snap.Winner = winnerID
			}
		} else {
			snap.Tie = true
		}
	}

	snap.Players = make([]PlayerSnapshot, len(r.players))
	for i, p := range r.players {
		ps := PlayerSnapshot{
			ID:       p.ID(),
			Name:     p.Name(),
			HandSize: p.HandSize(),
			Score:    p.Score(),
			Active:   p.Active(),
			AI:       p.IsAI(),
		}
		if p.ID() == viewerID {
			ps.Hand = p.Hand()
		}
		if chosen, ok := p.Chosen(); ok {
			ps.ChosenCard = &chosen
		}
		snap.Players[i] = ps
	}
	return snap
}
