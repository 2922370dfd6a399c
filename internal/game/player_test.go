package game

import (
	"testing"

	"github.com/elemental-arena/server/internal/deck"
	"github.com/elemental-arena/server/internal/randutil"
)

func TestHandOperations(t *testing.T) {
	p := NewPlayer("p1", "Alice")

	p.AddCard(deck.NewCard(deck.Fire, 3))
	p.AddCard(deck.NewCard(deck.Ice, 7))
	if p.HandSize() != 2 {
		t.Fatalf("Expected hand size 2, got %d", p.HandSize())
	}

	// The returned hand is a copy; mutating it must not touch the player
	hand := p.Hand()
	hand[0] = deck.NewCard(deck.Power, 10)
	if p.Hand()[0] != deck.NewCard(deck.Fire, 3) {
		t.Error("Hand() should return a copy")
	}

	if !p.RemoveCard(0) {
		t.Error("RemoveCard(0) should succeed")
	}
	if p.RemoveCard(5) {
		t.Error("RemoveCard out of range should fail")
	}
	if p.HandSize() != 1 || p.Hand()[0] != deck.NewCard(deck.Ice, 7) {
		t.Errorf("Unexpected hand after removal: %v", p.Hand())
	}

	p.ClearHand()
	if p.HandSize() != 0 {
		t.Errorf("Expected empty hand after ClearHand, got %d", p.HandSize())
	}
}

func TestChosenSnapshot(t *testing.T) {
	p := NewPlayer("p1", "Alice")
	p.AddCard(deck.NewCard(deck.Earth, 5))
	p.AddCard(deck.NewCard(deck.Water, 9))

	if _, ok := p.Chosen(); ok {
		t.Error("Chosen() should be unset initially")
	}
	if !p.SetChosen(1) {
		t.Fatal("SetChosen(1) should succeed")
	}
	if p.SetChosen(2) {
		t.Error("SetChosen out of range should fail")
	}

	// The snapshot survives later hand mutation
	p.RemoveCard(1)
	p.ClearHand()
	chosen, ok := p.Chosen()
	if !ok || chosen != deck.NewCard(deck.Water, 9) {
		t.Errorf("Chosen() = %v, %v; want WATER_9, true", chosen, ok)
	}

	p.ClearChosen()
	if _, ok := p.Chosen(); ok {
		t.Error("Chosen() should be unset after ClearChosen")
	}
}

func TestPlayedStrength(t *testing.T) {
	p := NewPlayer("p1", "Alice")
	if p.PlayedStrength() != 0 {
		t.Errorf("Expected 0 played strength, got %d", p.PlayedStrength())
	}

	p.AddPlayed(deck.NewCard(deck.Power, 4))
	p.AddPlayed(deck.NewCard(deck.Power, 8))
	if p.PlayedStrength() != 12 {
		t.Errorf("Expected played strength 12, got %d", p.PlayedStrength())
	}
	if len(p.Played()) != 2 {
		t.Errorf("Expected 2 played cards, got %d", len(p.Played()))
	}

	p.ClearPlayed()
	if p.PlayedStrength() != 0 {
		t.Errorf("Expected 0 played strength after clear, got %d", p.PlayedStrength())
	}
}

func TestAIChoice(t *testing.T) {
	rng := randutil.New(1)
	p := NewAIPlayer("ai", "Computer")
	if !p.IsAI() {
		t.Error("NewAIPlayer should report IsAI")
	}

	if choice := p.AIChoice(rng); choice != -1 {
		t.Errorf("Empty hand AIChoice = %d, want -1", choice)
	}

	for i := 1; i <= 5; i++ {
		p.AddCard(deck.NewCard(deck.Fire, i))
	}
	for i := 0; i < 100; i++ {
		choice := p.AIChoice(rng)
		if choice < 0 || choice >= p.HandSize() {
			t.Fatalf("AIChoice = %d, out of range [0,%d)", choice, p.HandSize())
		}
	}
}
