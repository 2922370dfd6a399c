package game

import (
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/elemental-arena/server/internal/deck"
	"github.com/elemental-arena/server/internal/randutil"
)

// Rules are the tunable constants of a game. Round resolution is
// two-party regardless of how many seats a room declares.
type Rules struct {
	Rounds       int // rounds until the game ends
	CardsPerDeal int // cards dealt to each player on start
}

// DefaultRules returns the standard 5-round, 5-card game
func DefaultRules() Rules {
	return Rules{Rounds: 5, CardsPerDeal: 5}
}

// aiPlayerID is the id of the auto-filled computer opponent
const aiPlayerID = "ai_player"

// Room is an isolated game instance: its own deck, players and round
// counter. All mutating operations serialize on the room's lock, so a
// human's commit, the inline AI reply and the round resolution are one
// atomic transition as seen from other connections.
type Room struct {
	mu         sync.Mutex
	id         string
	players    []*Player
	deck       *deck.Deck
	rng        *rand.Rand
	current    int
	maxPlayers int
	rules      Rules
	started    bool
	over       bool
	rounds     int
	winnerID   string // set on forfeit, otherwise derived from scores
	logger     *log.Logger
}

// NewRoom creates a room. A nil rng gets a time-seeded source so each
// room shuffles independently.
func NewRoom(id string, maxPlayers int, rules Rules, rng *rand.Rand, logger *log.Logger) *Room {
	if rng == nil {
		rng = randutil.New(time.Now().UnixNano())
	}
	if logger == nil {
		logger = log.New(nil)
	}
	return &Room{
		id:         id,
		maxPlayers: maxPlayers,
		rules:      rules,
		rng:        rng,
		deck:       deck.New(rng),
		logger:     logger.WithPrefix("room").With("room", id),
	}
}

// ID returns the room identifier
func (r *Room) ID() string { return r.id }

// AddPlayer seats a player. Fails once the room is full or the game has
// started. The first successful join into a 2-seat room auto-fills the
// second seat with a computer opponent, exactly once.
func (r *Room) AddPlayer(p *Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return ErrGameStarted
	}
	if len(r.players) >= r.maxPlayers {
		return ErrRoomFull
	}
	if r.playerByID(p.ID()) != nil {
		return ErrDuplicatePlayer
	}
	r.players = append(r.players, p)
	r.logger.Info("Player joined", "player", p.ID(), "name", p.Name(), "seats", len(r.players))

	if len(r.players) == 1 && r.maxPlayers == 2 {
		r.players = append(r.players, NewAIPlayer(aiPlayerID, "Computer"))
		r.logger.Info("Auto-filled second seat with computer opponent")
	}
	return nil
}

// RemovePlayer removes a player by id. Removing a seat from a started,
// unfinished game ends it immediately by forfeit: the remaining
// opponent is recorded as winner.
func (r *Room) RemovePlayer(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, p := range r.players {
		if p.ID() == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrPlayerNotFound
	}
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	r.logger.Info("Player left", "player", playerID, "seats", len(r.players))

	if r.started && !r.over {
		r.over = true
		if len(r.players) > 0 {
			r.winnerID = r.players[0].ID()
			r.logger.Info("Game forfeited", "winner", r.winnerID)
		}
	}
	return nil
}

// Start begins the game: reset and shuffle the deck, zero the round
// counter and activate seat 0. Dealing is a separate explicit step.
func (r *Room) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return ErrGameStarted
	}
	if len(r.players) < 2 {
		return ErrNotEnoughPlayers
	}

	r.started = true
	r.deck.Reset()
	r.deck.Shuffle()
	r.rounds = 0
	r.current = 0
	for i, p := range r.players {
		p.setActive(i == 0)
	}
	r.logger.Info("Game started", "players", len(r.players))
	return nil
}

// Deal clears every hand and deals up to n cards per player, stopping
// early for a player if the deck runs dry rather than failing the deal
func (r *Room) Deal(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.players {
		p.ClearHand()
		for i := 0; i < n && !r.deck.IsEmpty(); i++ {
			card, err := r.deck.Draw()
			if err != nil {
				break
			}
			p.AddCard(card)
		}
	}
}

// Rules returns the room's game rules
func (r *Room) Rules() Rules { return r.rules }

// PlayCard commits the card at index for the given player. The commit
// may cascade an extra power card, hand the turn to the next seat, run
// the computer opponent's reply inline and resolve the round, all
// before returning.
func (r *Room) PlayCard(playerID string, index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return ErrGameNotStarted
	}
	if r.over {
		return ErrGameOver
	}
	player := r.playerByID(playerID)
	if player == nil {
		return ErrPlayerNotFound
	}
	if !player.Active() {
		return ErrNotYourTurn
	}
	if err := r.commit(player, index); err != nil {
		return err
	}

	r.advanceTurn()
	if r.bothChosen() {
		r.resolveRound()
		return nil
	}

	// A computer opponent answers inside the same call, so the caller
	// observes "commit in, round result out" for human-vs-AI rooms.
	next := r.players[r.current]
	if next.IsAI() {
		if choice := next.AIChoice(r.rng); choice >= 0 {
			// index came from the AI against its own live hand
			_ = r.commit(next, choice)
		}
		if r.bothChosen() {
			r.resolveRound()
		}
	}
	return nil
}

// commit moves the card at index to the player's played pile, records
// it as the chosen card, then applies the power cascade: if the card
// was POWER and any POWER cards remain in hand, exactly one of them
// (picked uniformly) is also played. The cascade inspects the hand
// after the first removal only, so it never chains.
func (r *Room) commit(player *Player, index int) error {
	hand := player.Hand()
	if index < 0 || index >= len(hand) {
		return ErrInvalidCardIndex
	}
	card := hand[index]
	player.AddPlayed(card)
	player.SetChosen(index)
	player.RemoveCard(index)
	r.logger.Debug("Card committed", "player", player.ID(), "card", card)

	if !card.IsPower() {
		return nil
	}
	remaining := player.Hand()
	var powerIndices []int
	for i, c := range remaining {
		if c.IsPower() {
			powerIndices = append(powerIndices, i)
		}
	}
	if len(powerIndices) == 0 {
		return nil
	}
	pick := powerIndices[r.rng.IntN(len(powerIndices))]
	player.AddPlayed(remaining[pick])
	player.RemoveCard(pick)
	r.logger.Debug("Power cascade", "player", player.ID(), "card", remaining[pick])
	return nil
}

// advanceTurn deactivates the current seat and activates the next in
// seating order, wrapping around
func (r *Room) advanceTurn() {
	if len(r.players) == 0 {
		return
	}
	r.players[r.current].setActive(false)
	r.current = (r.current + 1) % len(r.players)
	r.players[r.current].setActive(true)
}

// bothChosen reports whether seats 0 and 1 both hold a commitment
func (r *Room) bothChosen() bool {
	if len(r.players) < 2 {
		return false
	}
	_, ok0 := r.players[0].Chosen()
	_, ok1 := r.players[1].Chosen()
	return ok0 && ok1
}

// resolveRound compares the summed strength of everything each of the
// two scoring seats played this round. A strictly greater sum wins the
// round; equal sums score nothing. Seat 0 leads every round.
func (r *Room) resolveRound() {
	if len(r.players) < 2 {
		return
	}
	p0, p1 := r.players[0], r.players[1]

	total0 := p0.PlayedStrength()
	total1 := p1.PlayedStrength()
	switch {
	case total0 > total1:
		p0.AddScore(1)
	case total1 > total0:
		p1.AddScore(1)
	}
	r.logger.Info("Round resolved",
		"round", r.rounds+1,
		p0.ID(), total0,
		p1.ID(), total1,
		"score", []int{p0.Score(), p1.Score()})

	p0.ClearChosen()
	p1.ClearChosen()
	p0.ClearPlayed()
	p1.ClearPlayed()
	r.rounds++

	if r.rounds >= r.rules.Rounds {
		r.over = true
		r.logger.Info("Game over", "rounds", r.rounds)
		return
	}
	r.current = 0
	p0.setActive(true)
	p1.setActive(false)
}

// Winner returns the id of the winning player once the room is over.
// ok is false while the game is running and on an even-score tie.
func (r *Room) Winner() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.winnerLocked()
}

func (r *Room) winnerLocked() (string, bool) {
	if !r.over {
		return "", false
	}
	if r.winnerID != "" {
		return r.winnerID, true
	}
	if len(r.players) != 2 {
		return "", false
	}
	p0, p1 := r.players[0], r.players[1]
	switch {
	case p0.Score() > p1.Score():
		return p0.ID(), true
	case p1.Score() > p0.Score():
		return p1.ID(), true
	default:
		return "", false
	}
}

// PlayerCount returns the number of seated players
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Started reports whether the game has begun
func (r *Room) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// Over reports whether the game has reached its terminal state
func (r *Room) Over() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.over
}

// RoundsPlayed returns the number of resolved rounds
func (r *Room) RoundsPlayed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rounds
}

// HasPlayer reports whether a player with the given id is seated
func (r *Room) HasPlayer(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playerByID(playerID) != nil
}

func (r *Room) playerByID(playerID string) *Player {
	for _, p := range r.players {
		if p.ID() == playerID {
			return p
		}
	}
	return nil
}
