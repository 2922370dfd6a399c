package deck

import (
	"errors"
	rand "math/rand/v2"
	"time"

	"github.com/elemental-arena/server/internal/randutil"
)

// MaxStrength is the highest strength printed on a card
const MaxStrength = 10

// FullSize is the number of cards in a full deck: one card per
// (element, strength) pair across the 6 elements
const FullSize = 6 * MaxStrength

// ErrEmpty is returned when drawing from an exhausted deck
var ErrEmpty = errors.New("deck is empty")

// Deck is an ordered collection of elemental cards. The RNG is injected
// so shuffles are reproducible under test; each deck owns its source,
// so rooms shuffle independently of one another.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates a full deck in canonical order using the provided RNG.
// A nil rng gets a time-seeded source.
func New(rng *rand.Rand) *Deck {
	if rng == nil {
		rng = randutil.New(time.Now().UnixNano())
	}
	d := &Deck{rng: rng}
	d.Reset()
	return d
}

// Reset rebuilds the canonical card set in (element, strength ascending)
// order, discarding whatever the deck held before
func (d *Deck) Reset() {
	d.cards = d.cards[:0]
	for _, element := range Elements {
		for strength := 1; strength <= MaxStrength; strength++ {
			d.cards = append(d.cards, NewCard(element, strength))
		}
	}
}

// Shuffle reorders all cards uniformly at random. Callers must shuffle
// after Reset and before dealing; no ordering is guaranteed otherwise.
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the last card. Dealing loops must check
// IsEmpty before each draw rather than relying on ErrEmpty.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmpty
	}
	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, nil
}

// Size returns the number of cards remaining
func (d *Deck) Size() int {
	return len(d.cards)
}

// IsEmpty returns true if no cards remain
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}
