package tui

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elemental-arena/server/internal/client"
	"github.com/elemental-arena/server/internal/deck"
	"github.com/elemental-arena/server/internal/game"
)

func testModel(t *testing.T) *Model {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	return NewModel(client.New("http://localhost:0", logger), "Alice", logger)
}

func card(element deck.Element, strength int) *deck.Card {
	c := deck.NewCard(element, strength)
	return &c
}

func TestDescribeSnapshot(t *testing.T) {
	t.Run("waiting room", func(t *testing.T) {
		snap := game.RoomSnapshot{
			RoomID:     "room_1",
			MaxPlayers: 2,
			Players:    []game.PlayerSnapshot{{ID: "p1", Name: "Alice"}},
		}
		lines := describeSnapshot(snap, "p1")
		require.NotEmpty(t, lines)
		assert.Contains(t, lines[0], "waiting in room_1 (1/2 players)")
	})

	t.Run("running round shows turn marker and viewer hand", func(t *testing.T) {
		snap := game.RoomSnapshot{
			RoomID:      "room_1",
			MaxPlayers:  2,
			Started:     true,
			Rounds:      1,
			RoundLimit:  5,
			CurrentTurn: "p1",
			Players: []game.PlayerSnapshot{
				{
					ID: "p1", Name: "Alice", Active: true, Score: 1, HandSize: 2,
					Hand: []deck.Card{deck.NewCard(deck.Fire, 3), deck.NewCard(deck.Power, 8)},
				},
				{ID: "ai_player", Name: "Computer", AI: true, HandSize: 4, ChosenCard: card(deck.Ice, 6)},
			},
		}

		lines := describeSnapshot(snap, "p1")
		text := strings.Join(lines, "\n")

		assert.Contains(t, lines[0], "round 2 of 5")
		assert.Contains(t, text, "* Alice")
		assert.Contains(t, text, "  Computer")
		assert.Contains(t, text, "[0] ")
		assert.Contains(t, text, "FIRE_3")
		assert.Contains(t, text, "POWER_8")
		assert.Contains(t, text, "ICE_6")
	})

	t.Run("opponent hand stays hidden", func(t *testing.T) {
		snap := game.RoomSnapshot{
			RoomID:  "room_1",
			Started: true,
			Players: []game.PlayerSnapshot{
				{ID: "p1", Name: "Alice", Hand: []deck.Card{deck.NewCard(deck.Earth, 9)}},
				{ID: "p2", Name: "Bob", HandSize: 1},
			},
		}
		lines := describeSnapshot(snap, "p2")
		text := strings.Join(lines, "\n")
		assert.NotContains(t, text, "EARTH_9")
	})

	t.Run("game over with winner", func(t *testing.T) {
		snap := game.RoomSnapshot{RoomID: "room_1", Started: true, Over: true, Winner: "Alice"}
		lines := describeSnapshot(snap, "p1")
		assert.Contains(t, lines[0], "game over: Alice wins")
	})

	t.Run("tie", func(t *testing.T) {
		snap := game.RoomSnapshot{RoomID: "room_1", Started: true, Over: true, Tie: true}
		lines := describeSnapshot(snap, "p1")
		assert.Contains(t, lines[0], "tie")
	})
}

func TestModelQuitKeys(t *testing.T) {
	m := testModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Equal(t, "thanks for playing\n", m.View())
}

func TestModelAppliesResult(t *testing.T) {
	m := testModel(t)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	roomID := "room_7"
	m.Update(resultMsg{lines: []string{"joined room_7"}, roomID: &roomID})
	assert.Equal(t, "room_7", m.roomID)
	assert.Contains(t, strings.Join(m.gameLog, "\n"), "joined room_7")

	none := ""
	m.Update(resultMsg{lines: []string{"left room_7"}, roomID: &none})
	assert.Empty(t, m.roomID)
}

func TestModelLogsErrors(t *testing.T) {
	m := testModel(t)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	m.Update(resultMsg{err: assert.AnError})
	require.NotEmpty(t, m.gameLog)
	assert.Contains(t, m.gameLog[len(m.gameLog)-1], "error")
}
