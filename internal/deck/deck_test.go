package deck

import (
	"errors"
	"testing"

	"github.com/elemental-arena/server/internal/randutil"
)

func TestNewDeckFull(t *testing.T) {
	d := New(randutil.New(0))

	if d.Size() != FullSize {
		t.Fatalf("Expected %d cards, got %d", FullSize, d.Size())
	}

	// Every (element, strength) pair must appear exactly once
	seen := make(map[Card]int)
	for !d.IsEmpty() {
		card, err := d.Draw()
		if err != nil {
			t.Fatalf("Draw() error = %v", err)
		}
		seen[card]++
	}
	for _, element := range Elements {
		for strength := 1; strength <= MaxStrength; strength++ {
			card := NewCard(element, strength)
			if seen[card] != 1 {
				t.Errorf("Expected exactly one %s, got %d", card, seen[card])
			}
		}
	}
}

func TestDrawEmpty(t *testing.T) {
	d := New(randutil.New(0))
	for i := 0; i < FullSize; i++ {
		if _, err := d.Draw(); err != nil {
			t.Fatalf("Draw %d error = %v", i, err)
		}
	}
	if !d.IsEmpty() {
		t.Error("deck should be empty after drawing every card")
	}
	if _, err := d.Draw(); !errors.Is(err, ErrEmpty) {
		t.Errorf("Draw() on empty deck error = %v, want ErrEmpty", err)
	}
}

func TestShufflePreservesCards(t *testing.T) {
	d := New(randutil.New(42))
	d.Shuffle()

	if d.Size() != FullSize {
		t.Fatalf("Expected %d cards after shuffle, got %d", FullSize, d.Size())
	}

	seen := make(map[Card]bool)
	for !d.IsEmpty() {
		card, _ := d.Draw()
		if seen[card] {
			t.Errorf("Duplicate card %s after shuffle", card)
		}
		seen[card] = true
	}
	if len(seen) != FullSize {
		t.Errorf("Expected %d distinct cards, got %d", FullSize, len(seen))
	}
}

func TestShuffleDeterministic(t *testing.T) {
	d1 := New(randutil.New(7))
	d2 := New(randutil.New(7))
	d1.Shuffle()
	d2.Shuffle()

	for !d1.IsEmpty() {
		c1, _ := d1.Draw()
		c2, _ := d2.Draw()
		if c1 != c2 {
			t.Fatalf("Same seed produced different orders: %s vs %s", c1, c2)
		}
	}
}

func TestShuffleChangesOrder(t *testing.T) {
	shuffled := New(randutil.New(1))
	shuffled.Shuffle()
	canonical := New(nil)

	moved := false
	for !canonical.IsEmpty() {
		c1, _ := canonical.Draw()
		c2, _ := shuffled.Draw()
		if c1 != c2 {
			moved = true
			break
		}
	}
	if !moved {
		t.Error("Shuffle left the deck in canonical order")
	}
}

func TestReset(t *testing.T) {
	d := New(randutil.New(3))
	d.Shuffle()
	for i := 0; i < 10; i++ {
		d.Draw()
	}

	d.Reset()
	if d.Size() != FullSize {
		t.Errorf("Expected %d cards after Reset, got %d", FullSize, d.Size())
	}
}
