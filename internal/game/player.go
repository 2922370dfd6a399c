package game

import (
	rand "math/rand/v2"

	"github.com/elemental-arena/server/internal/deck"
)

// Player is one seat in a room. The room owns its players exclusively;
// callers outside this package only ever see snapshots, never a live
// hand they could mutate.
type Player struct {
	id     string
	name   string
	ai     bool
	hand   []deck.Card
	played []deck.Card
	score  int
	active bool
	chosen *deck.Card
}

// NewPlayer creates a human-controlled player
func NewPlayer(id, name string) *Player {
	return &Player{id: id, name: name}
}

// NewAIPlayer creates a computer-controlled player
func NewAIPlayer(id, name string) *Player {
	return &Player{id: id, name: name, ai: true}
}

// ID returns the player's room-unique identifier
func (p *Player) ID() string { return p.id }

// Name returns the player's display name
func (p *Player) Name() string { return p.name }

// IsAI returns true for computer-controlled players
func (p *Player) IsAI() bool { return p.ai }

// Score returns the player's round wins so far
func (p *Player) Score() int { return p.score }

// Active returns true when it is this player's turn to commit
func (p *Player) Active() bool { return p.active }

func (p *Player) setActive(active bool) { p.active = active }

// AddCard appends a card to the hand
func (p *Player) AddCard(card deck.Card) {
	p.hand = append(p.hand, card)
}

// RemoveCard removes the card at index. Returns false for an
// out-of-range index; the hand length changes between validation and
// removal during power cascades, so callers re-check rather than trust
// a stale index.
func (p *Player) RemoveCard(index int) bool {
	if index < 0 || index >= len(p.hand) {
		return false
	}
	p.hand = append(p.hand[:index], p.hand[index+1:]...)
	return true
}

// Hand returns a copy of the player's current hand
func (p *Player) Hand() []deck.Card {
	hand := make([]deck.Card, len(p.hand))
	copy(hand, p.hand)
	return hand
}

// HandSize returns the number of cards held
func (p *Player) HandSize() int { return len(p.hand) }

// ClearHand discards all held cards
func (p *Player) ClearHand() { p.hand = p.hand[:0] }

// SetChosen snapshots the card at index as this round's primary
// commitment. The value is copied out of the hand before any
// cascade-induced removal so it always names the card that actually
// moved to the played pile.
func (p *Player) SetChosen(index int) bool {
	if index < 0 || index >= len(p.hand) {
		return false
	}
	card := p.hand[index]
	p.chosen = &card
	return true
}

// Chosen returns the primary committed card, if one is set
func (p *Player) Chosen() (deck.Card, bool) {
	if p.chosen == nil {
		return deck.Card{}, false
	}
	return *p.chosen, true
}

// ClearChosen forgets the round's primary commitment
func (p *Player) ClearChosen() { p.chosen = nil }

// AddPlayed appends a card to this round's played accumulator
func (p *Player) AddPlayed(card deck.Card) {
	p.played = append(p.played, card)
}

// Played returns a copy of this round's played cards
func (p *Player) Played() []deck.Card {
	played := make([]deck.Card, len(p.played))
	copy(played, p.played)
	return played
}

// PlayedStrength sums the strengths of every card played this round.
// The cascade card counts here, which is what makes power cards matter.
func (p *Player) PlayedStrength() int {
	total := 0
	for _, card := range p.played {
		total += card.Strength
	}
	return total
}

// ClearPlayed empties the played accumulator at the round boundary
func (p *Player) ClearPlayed() { p.played = p.played[:0] }

// AddScore increments the score. Scores only ever go up.
func (p *Player) AddScore(points int) { p.score += points }

// AIChoice returns a uniformly random valid hand index, or -1 when the
// hand is empty. This is the entire AI strategy.
func (p *Player) AIChoice(rng *rand.Rand) int {
	if len(p.hand) == 0 {
		return -1
	}
	return rng.IntN(len(p.hand))
}
