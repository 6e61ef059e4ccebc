// Package tui is the interactive console screen. It renders the account
// table and fleet catalog, and drives every mutation through the action
// controller so the capability gates and self-action rules hold.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kioskworks/kioskctl/internal/console"
	"github.com/kioskworks/kioskctl/internal/domain"
	"github.com/kioskworks/kioskctl/internal/fleet"
)

type screen int

const (
	screenAccounts screen = iota
	screenFleet
)

type mode int

const (
	modeList mode = iota
	modeCreate
	modeConfirmDelete
	modeGrant
	modeRevoke
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	toastErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	toastOKStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	dialogStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type usersMsg struct {
	users []domain.UserAccount
	err   error
}

type machinesMsg struct {
	machines []fleet.Machine
	err      error
}

type grantOptionsMsg struct {
	target  uint64
	options []console.GrantOption
	err     error
}

type revokeOptionsMsg struct {
	target  uint64
	options []domain.Capability
	err     error
}

type actionDoneMsg struct {
	action console.Action
	err    error
}

// Model is the bubbletea model for the console.
type Model struct {
	controller *console.Controller
	selfID     uint64

	screen screen
	mode   mode

	users    table.Model
	rows     []domain.UserAccount
	machines []fleet.Machine

	createInput textinput.Model
	createErr   string

	dialog       *console.Dialog
	grantOptions []console.GrantOption
	revokeOpts   []domain.Capability
	cursor       int

	toast   string
	toastOK bool
	busy    bool
	width   int
}

func NewModel(controller *console.Controller, selfID uint64) Model {
	columns := []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Email", Width: 40},
	}
	t := table.New(table.WithColumns(columns), table.WithFocused(true), table.WithHeight(12))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("212"))
	t.SetStyles(styles)

	input := textinput.New()
	input.Placeholder = "email address"
	input.CharLimit = 255
	input.Width = 40

	return Model{
		controller:  controller,
		selfID:      selfID,
		users:       t,
		createInput: input,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchUsers(), fetchMachines())
}

func (m Model) fetchUsers() tea.Cmd {
	return func() tea.Msg {
		users, err := m.controller.ListUsers(context.Background())
		return usersMsg{users: users, err: err}
	}
}

func fetchMachines() tea.Cmd {
	return func() tea.Msg {
		machines, err := fleet.Load()
		return machinesMsg{machines: machines, err: err}
	}
}

func (m Model) fetchGrantOptions(target uint64) tea.Cmd {
	return func() tea.Msg {
		options, err := m.controller.GrantOptions(context.Background(), target)
		return grantOptionsMsg{target: target, options: options, err: err}
	}
}

func (m Model) fetchRevokeOptions(target uint64) tea.Cmd {
	return func() tea.Msg {
		options, err := m.controller.RevokeOptions(context.Background(), target)
		return revokeOptionsMsg{target: target, options: options, err: err}
	}
}

func (m *Model) selectedUser() (domain.UserAccount, bool) {
	idx := m.users.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return domain.UserAccount{}, false
	}
	return m.rows[idx], true
}

func (m *Model) setUsers(users []domain.UserAccount) {
	m.rows = users
	rows := make([]table.Row, len(users))
	for i, u := range users {
		rows[i] = table.Row{fmt.Sprintf("%d", u.ID), u.Email}
	}
	m.users.SetRows(rows)
}

func (m *Model) showToast(text string, ok bool) {
	m.toast = text
	m.toastOK = ok
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case usersMsg:
		m.busy = false
		if msg.err != nil {
			m.showToast("could not load accounts: "+msg.err.Error(), false)
			return m, nil
		}
		m.setUsers(msg.users)
		return m, nil

	case machinesMsg:
		if msg.err != nil {
			m.showToast("could not load fleet catalog: "+msg.err.Error(), false)
			return m, nil
		}
		m.machines = msg.machines
		return m, nil

	case grantOptionsMsg:
		m.busy = false
		if msg.err != nil {
			m.showToast("could not open grant dialog: "+msg.err.Error(), false)
			return m, nil
		}
		m.mode = modeGrant
		m.dialog = console.OpenDialog(console.ActionGrant, msg.target)
		m.grantOptions = msg.options
		m.cursor = 0
		return m, nil

	case revokeOptionsMsg:
		m.busy = false
		if msg.err != nil {
			m.showToast("could not open revoke dialog: "+msg.err.Error(), false)
			return m, nil
		}
		m.mode = modeRevoke
		m.dialog = console.OpenDialog(console.ActionRevoke, msg.target)
		m.revokeOpts = msg.options
		m.cursor = 0
		return m, nil

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.users, cmd = m.users.Update(msg)
	return m, cmd
}

func (m Model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if m.dialog != nil {
		m.dialog.Resolve(msg.err)
		if msg.err == nil {
			m.dialog = nil
			m.mode = modeList
		}
	}
	if msg.err != nil {
		var verr *console.ValidationError
		if errors.As(msg.err, &verr) {
			if m.mode == modeCreate {
				m.createErr = verr.Reason
				return m, nil
			}
			m.showToast(verr.Reason, false)
			return m, nil
		}
		m.showToast("the operation failed, please retry", false)
		return m, nil
	}

	switch msg.action {
	case console.ActionCreateUser:
		m.mode = modeList
		m.createInput.Reset()
		m.createErr = ""
		m.showToast("account created", true)
	case console.ActionDeleteUser:
		m.mode = modeList
		m.showToast("account deleted", true)
	case console.ActionGrant:
		m.showToast("capabilities granted", true)
	case console.ActionRevoke:
		m.showToast("capabilities revoked", true)
	}
	m.busy = true
	return m, m.fetchUsers()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeCreate:
		return m.handleCreateKey(msg)
	case modeConfirmDelete:
		return m.handleConfirmDeleteKey(msg)
	case modeGrant, modeRevoke:
		return m.handleDialogKey(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		if m.screen == screenAccounts {
			m.screen = screenFleet
		} else {
			m.screen = screenAccounts
		}
		return m, nil
	case "r":
		if m.screen == screenAccounts {
			m.busy = true
			return m, m.fetchUsers()
		}
		return m, fetchMachines()
	}

	if m.screen != screenAccounts {
		return m, nil
	}

	switch msg.String() {
	case "n":
		if d := m.controller.Gate(console.ActionCreateUser, 0); !d.Allowed {
			m.showToast(d.Reason, false)
			return m, nil
		}
		m.mode = modeCreate
		m.createErr = ""
		m.createInput.Focus()
		return m, textinput.Blink
	case "d":
		user, ok := m.selectedUser()
		if !ok {
			return m, nil
		}
		if d := m.controller.Gate(console.ActionDeleteUser, user.ID); !d.Allowed {
			m.showToast(d.Reason, false)
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.dialog = console.OpenDialog(console.ActionDeleteUser, user.ID)
		return m, nil
	case "g":
		user, ok := m.selectedUser()
		if !ok {
			return m, nil
		}
		if d := m.controller.Gate(console.ActionGrant, user.ID); !d.Allowed {
			m.showToast(d.Reason, false)
			return m, nil
		}
		m.busy = true
		return m, m.fetchGrantOptions(user.ID)
	case "v":
		user, ok := m.selectedUser()
		if !ok {
			return m, nil
		}
		if d := m.controller.Gate(console.ActionRevoke, user.ID); !d.Allowed {
			m.showToast(d.Reason, false)
			return m, nil
		}
		m.busy = true
		return m, m.fetchRevokeOptions(user.ID)
	}

	var cmd tea.Cmd
	m.users, cmd = m.users.Update(msg)
	return m, cmd
}

func (m Model) handleCreateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.busy {
			return m, nil
		}
		m.mode = modeList
		m.createInput.Reset()
		m.createErr = ""
		return m, nil
	case "enter":
		if m.busy {
			return m, nil
		}
		email := strings.TrimSpace(m.createInput.Value())
		m.busy = true
		return m, func() tea.Msg {
			_, err := m.controller.CreateUser(context.Background(), email)
			return actionDoneMsg{action: console.ActionCreateUser, err: err}
		}
	}
	var cmd tea.Cmd
	m.createInput, cmd = m.createInput.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "n":
		if m.dialog != nil && m.dialog.Close() {
			m.dialog = nil
			m.mode = modeList
		}
		return m, nil
	case "y", "enter":
		if m.dialog == nil {
			return m, nil
		}
		if _, err := m.dialog.BeginSubmit(); err != nil {
			return m, nil
		}
		target := m.dialog.TargetID
		m.busy = true
		return m, func() tea.Msg {
			err := m.controller.DeleteUser(context.Background(), target)
			return actionDoneMsg{action: console.ActionDeleteUser, err: err}
		}
	}
	return m, nil
}

func (m Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.dialog == nil {
		m.mode = modeList
		return m, nil
	}
	options := m.dialogCapabilities()

	switch msg.String() {
	case "esc":
		if m.dialog.Close() {
			m.dialog = nil
			m.mode = modeList
		}
		return m, nil
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(options)-1 {
			m.cursor++
		}
		return m, nil
	case " ":
		if m.cursor < len(options) && m.selectable(m.cursor) {
			m.dialog.Toggle(options[m.cursor])
		}
		return m, nil
	case "enter":
		caps, err := m.dialog.BeginSubmit()
		if err != nil {
			return m, nil
		}
		if len(caps) == 0 {
			m.dialog.Resolve(&console.ValidationError{Reason: "select at least one capability"})
			return m, nil
		}
		action := m.dialog.Action
		target := m.dialog.TargetID
		m.busy = true
		return m, func() tea.Msg {
			var err error
			if action == console.ActionGrant {
				err = m.controller.Grant(context.Background(), target, caps)
			} else {
				err = m.controller.Revoke(context.Background(), target, caps)
			}
			return actionDoneMsg{action: action, err: err}
		}
	}
	return m, nil
}

func (m *Model) dialogCapabilities() []domain.Capability {
	if m.mode == modeGrant {
		caps := make([]domain.Capability, len(m.grantOptions))
		for i, opt := range m.grantOptions {
			caps[i] = opt.Capability
		}
		return caps
	}
	return m.revokeOpts
}

// selectable reports whether the dialog row at idx can be toggled;
// already-granted rows in the grant dialog stay visible but inert.
func (m *Model) selectable(idx int) bool {
	if m.mode == modeGrant {
		return !m.grantOptions[idx].AlreadyGranted
	}
	return true
}
