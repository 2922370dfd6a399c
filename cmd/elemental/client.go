package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/elemental-arena/server/cmd/elemental/shared"
	"github.com/elemental-arena/server/internal/client"
	"github.com/elemental-arena/server/internal/tui"
)

// ClientCmd connects to a server as an interactive player
type ClientCmd struct {
	Server string `short:"s" default:"http://localhost:8080" help:"Server URL to connect to"`
	Name   string `short:"n" required:"" help:"Player display name"`
	Debug  bool   `help:"Enable debug logging"`
}

func (c *ClientCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	cl := client.New(c.Server, logger)
	if err := cl.Connect(); err != nil {
		return err
	}
	defer func() { _ = cl.Close() }()

	if err := cl.Hello(c.Name); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	model := tui.NewModel(cl, c.Name, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
