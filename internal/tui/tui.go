package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/elemental-arena/server/internal/client"
	"github.com/elemental-arena/server/internal/deck"
	"github.com/elemental-arena/server/internal/game"
)

// Model is the Bubble Tea model for the interactive client
type Model struct {
	client *client.Client
	logger *log.Logger

	logViewport  viewport.Model
	commandInput textinput.Model

	playerName string
	roomID     string
	state      *game.RoomSnapshot
	gameLog    []string

	width       int
	height      int
	initialized bool
	quitting    bool
}

// snapshotMsg delivers a pushed room update into the Bubble Tea loop
type snapshotMsg game.RoomSnapshot

// resultMsg reports the outcome of a command run against the server
type resultMsg struct {
	lines  []string
	state  *game.RoomSnapshot
	roomID *string // non-nil when the command changed room membership
	err    error
}

// NewModel creates a TUI model around a connected client
func NewModel(c *client.Client, playerName string, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)

	ti := textinput.New()
	ti.Placeholder = "rooms | create | join <room> | start | play <n> | leave | quit"
	ti.Focus()
	ti.CharLimit = 100
	ti.Prompt = "> "

	return &Model{
		client:       c,
		logger:       logger.WithPrefix("tui"),
		logViewport:  vp,
		commandInput: ti,
		playerName:   playerName,
	}
}

// Init starts listening for pushed updates
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listenForUpdates())
}

func (m *Model) listenForUpdates() tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-m.client.Updates()
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

// Update handles Bubble Tea messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logViewport.Width = msg.Width - 4
		m.logViewport.Height = msg.Height - 8
		m.initialized = true
		m.refreshLog()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			command := strings.TrimSpace(m.commandInput.Value())
			m.commandInput.SetValue("")
			if command == "" {
				return m, nil
			}
			if command == "quit" || command == "exit" {
				m.quitting = true
				return m, tea.Quit
			}
			return m, m.runCommand(command)
		}

	case snapshotMsg:
		snap := game.RoomSnapshot(msg)
		m.state = &snap
		m.appendLog(describeSnapshot(snap, m.client.PlayerID())...)
		return m, m.listenForUpdates()

	case resultMsg:
		if msg.err != nil {
			m.appendLog(ErrorStyle.Render("error: " + msg.err.Error()))
		} else {
			if msg.roomID != nil {
				m.roomID = *msg.roomID
			}
			if msg.state != nil {
				m.state = msg.state
			}
			m.appendLog(msg.lines...)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	return m, cmd
}

// runCommand executes one user command against the server off the UI
// goroutine
func (m *Model) runCommand(input string) tea.Cmd {
	currentRoom := m.roomID
	return func() tea.Msg {
		fields := strings.Fields(input)
		verb, args := fields[0], fields[1:]

		switch verb {
		case "help":
			return resultMsg{lines: []string{
				"rooms            list joinable rooms",
				"create [seats]   create a room",
				"join <room>      join a room (a computer opponent fills seat 2)",
				"start            start the game in your room",
				"play <n>         play the card at index n",
				"state            refresh the room state",
				"leave            leave your room",
				"quit             exit",
			}}

		case "rooms":
			rooms, err := m.client.ListRooms()
			if err != nil {
				return resultMsg{err: err}
			}
			if len(rooms) == 0 {
				return resultMsg{lines: []string{InfoStyle.Render("no rooms waiting; use create")}}
			}
			lines := make([]string, 0, len(rooms))
			for _, r := range rooms {
				lines = append(lines, fmt.Sprintf("%s (%d/%d players)", r.ID, r.PlayerCount, r.MaxPlayers))
			}
			return resultMsg{lines: lines}

		case "create":
			maxPlayers := 2
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return resultMsg{err: fmt.Errorf("seats must be a number")}
				}
				maxPlayers = n
			}
			roomID, err := m.client.CreateRoom(maxPlayers)
			if err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{lines: []string{SuccessStyle.Render("created " + roomID)}}

		case "join":
			if len(args) != 1 {
				return resultMsg{err: fmt.Errorf("usage: join <room>")}
			}
			state, err := m.client.JoinRoom(args[0])
			if err != nil {
				return resultMsg{err: err}
			}
			roomID := args[0]
			lines := append([]string{SuccessStyle.Render("joined " + roomID)},
				describeSnapshot(state, m.client.PlayerID())...)
			return resultMsg{lines: lines, state: &state, roomID: &roomID}

		case "start":
			if currentRoom == "" {
				return resultMsg{err: fmt.Errorf("join a room first")}
			}
			state, err := m.client.StartGame(currentRoom)
			if err != nil {
				return resultMsg{err: err}
			}
			lines := append([]string{SuccessStyle.Render("game on!")},
				describeSnapshot(state, m.client.PlayerID())...)
			return resultMsg{lines: lines, state: &state}

		case "play":
			if currentRoom == "" {
				return resultMsg{err: fmt.Errorf("join a room first")}
			}
			if len(args) != 1 {
				return resultMsg{err: fmt.Errorf("usage: play <n>")}
			}
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return resultMsg{err: fmt.Errorf("card index must be a number")}
			}
			state, err := m.client.PlayCard(currentRoom, index)
			if err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{lines: describeSnapshot(state, m.client.PlayerID()), state: &state}

		case "state":
			if currentRoom == "" {
				return resultMsg{err: fmt.Errorf("join a room first")}
			}
			state, err := m.client.RoomState(currentRoom)
			if err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{lines: describeSnapshot(state, m.client.PlayerID()), state: &state}

		case "leave":
			if currentRoom == "" {
				return resultMsg{err: fmt.Errorf("not in a room")}
			}
			if err := m.client.LeaveRoom(currentRoom); err != nil {
				return resultMsg{err: err}
			}
			none := ""
			return resultMsg{lines: []string{InfoStyle.Render("left " + currentRoom)}, roomID: &none}

		default:
			return resultMsg{err: fmt.Errorf("unknown command %q, try help", verb)}
		}
	}
}

// describeSnapshot renders a room snapshot as log lines
func describeSnapshot(snap game.RoomSnapshot, viewerID string) []string {
	var lines []string

	switch {
	case snap.Over && snap.Tie:
		lines = append(lines, ScoreStyle.Render("game over: it's a tie"))
	case snap.Over:
		lines = append(lines, ScoreStyle.Render("game over: "+snap.Winner+" wins"))
	case !snap.Started:
		lines = append(lines, InfoStyle.Render(fmt.Sprintf("waiting in %s (%d/%d players)",
			snap.RoomID, len(snap.Players), snap.MaxPlayers)))
	default:
		lines = append(lines, InfoStyle.Render(fmt.Sprintf("round %d of %d", snap.Rounds+1, snap.RoundLimit)))
	}

	for _, p := range snap.Players {
		marker := " "
		if p.Active {
			marker = "*"
		}
		line := fmt.Sprintf("%s %s  score %s  cards %d", marker, p.Name,
			ScoreStyle.Render(strconv.Itoa(p.Score)), p.HandSize)
		if p.ChosenCard != nil {
			line += "  played " + renderCard(*p.ChosenCard)
		}
		lines = append(lines, line)

		if p.ID == viewerID && len(p.Hand) > 0 {
			hand := make([]string, len(p.Hand))
			for i, card := range p.Hand {
				hand[i] = fmt.Sprintf("[%d] %s", i, renderCard(card))
			}
			lines = append(lines, HandStyle.Render("your hand: ")+strings.Join(hand, "  "))
		}
	}
	return lines
}

func renderCard(card deck.Card) string {
	return CardStyle(card.Element).Render(card.String())
}

func (m *Model) appendLog(lines ...string) {
	m.gameLog = append(m.gameLog, lines...)
	m.refreshLog()
}

func (m *Model) refreshLog() {
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.GotoBottom()
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return "thanks for playing\n"
	}
	if !m.initialized {
		return "loading..."
	}

	header := HeaderStyle.Render(" Elemental Arena | " + m.playerName + " ")
	if m.roomID != "" {
		header += InfoStyle.Render("  " + m.roomID)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s\n", header, m.logViewport.View(), m.commandInput.View())
}
