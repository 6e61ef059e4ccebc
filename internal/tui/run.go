package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kioskworks/kioskctl/internal/console"
)

// Run starts the interactive console and blocks until the operator quits.
func Run(controller *console.Controller, selfID uint64) error {
	p := tea.NewProgram(NewModel(controller, selfID), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run console: %w", err)
	}
	return nil
}
