package tui

import (
	"fmt"
	"strings"

	"github.com/kioskworks/kioskctl/internal/console"
	"github.com/kioskworks/kioskctl/internal/domain"
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("kioskctl console"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  operator #%d", m.selfID)))
	b.WriteString("  ")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.screen {
	case screenFleet:
		b.WriteString(m.renderFleet())
	default:
		b.WriteString(m.renderAccounts())
	}

	if m.toast != "" {
		b.WriteString("\n")
		if m.toastOK {
			b.WriteString(toastOKStyle.Render(m.toast))
		} else {
			b.WriteString(toastErrStyle.Render(m.toast))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderTabs() string {
	accounts := "accounts"
	machines := "machines"
	if m.screen == screenAccounts {
		accounts = selectedStyle.Render("[" + accounts + "]")
		machines = dimStyle.Render(machines)
	} else {
		machines = selectedStyle.Render("[" + machines + "]")
		accounts = dimStyle.Render(accounts)
	}
	return accounts + " " + machines
}

func (m Model) renderAccounts() string {
	switch m.mode {
	case modeCreate:
		return m.renderCreateDialog()
	case modeConfirmDelete:
		return m.renderConfirmDelete()
	case modeGrant, modeRevoke:
		return m.renderCapabilityDialog()
	}
	if d := m.controller.Gate(console.ActionListUsers, 0); !d.Allowed {
		// Rendered in the list area so it persists while the gate is
		// closed; a toast would fade on the next keypress.
		return toastErrStyle.Render("not permitted: " + d.Reason)
	}
	if len(m.rows) == 0 {
		if m.busy {
			return dimStyle.Render("loading accounts...")
		}
		return dimStyle.Render("no accounts")
	}
	return m.users.View()
}

func (m Model) renderFleet() string {
	if len(m.machines) == 0 {
		return dimStyle.Render("no machines in catalog")
	}
	var b strings.Builder
	for _, machine := range m.machines {
		fmt.Fprintf(&b, "%-8s  %-45s  %s\n", machine.ID, machine.Address(), machine.Status)
	}
	return b.String()
}

func (m Model) renderCreateDialog() string {
	var b strings.Builder
	b.WriteString("New account\n\n")
	b.WriteString(m.createInput.View())
	b.WriteString("\n")
	if m.createErr != "" {
		b.WriteString(toastErrStyle.Render(m.createErr))
		b.WriteString("\n")
	}
	if m.busy {
		b.WriteString(dimStyle.Render("creating..."))
	} else {
		b.WriteString(dimStyle.Render("enter to create, esc to cancel"))
	}
	return dialogStyle.Render(b.String())
}

func (m Model) renderConfirmDelete() string {
	if m.dialog == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Delete account %d?\n\n", m.dialog.TargetID)
	if msg := m.dialog.Err(); msg != "" {
		b.WriteString(toastErrStyle.Render(msg))
		b.WriteString("\n")
	}
	if m.busy {
		b.WriteString(dimStyle.Render("deleting..."))
	} else {
		b.WriteString(dimStyle.Render("y to confirm, esc to cancel"))
	}
	return dialogStyle.Render(b.String())
}

func (m Model) renderCapabilityDialog() string {
	if m.dialog == nil {
		return ""
	}
	var b strings.Builder
	if m.mode == modeGrant {
		fmt.Fprintf(&b, "Grant capabilities to account %d\n\n", m.dialog.TargetID)
		for i, opt := range m.grantOptions {
			b.WriteString(m.renderDialogRow(i, string(opt.Capability), opt.AlreadyGranted))
		}
	} else {
		fmt.Fprintf(&b, "Revoke capabilities from account %d\n\n", m.dialog.TargetID)
		if len(m.revokeOpts) == 0 {
			b.WriteString(dimStyle.Render("nothing you can revoke from this account"))
			b.WriteString("\n")
		}
		for i, capability := range m.revokeOpts {
			b.WriteString(m.renderDialogRow(i, string(capability), false))
		}
	}
	if msg := m.dialog.Err(); msg != "" {
		b.WriteString("\n")
		b.WriteString(toastErrStyle.Render(msg))
		b.WriteString("\n")
	}
	if m.busy {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("applying..."))
	} else {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("space to select, enter to apply, esc to cancel"))
	}
	return dialogStyle.Render(b.String())
}

func (m Model) renderDialogRow(idx int, label string, inert bool) string {
	cursor := "  "
	if idx == m.cursor {
		cursor = "> "
	}
	mark := "[ ]"
	if m.dialog.IsSelected(domain.Capability(label)) {
		mark = "[x]"
	}
	line := fmt.Sprintf("%s%s %s", cursor, mark, label)
	if inert {
		return dimStyle.Render(line+" (already granted)") + "\n"
	}
	if idx == m.cursor {
		return selectedStyle.Render(line) + "\n"
	}
	return line + "\n"
}

func (m Model) renderFooter() string {
	if m.screen == screenFleet {
		return dimStyle.Render("tab: accounts  r: refresh  q: quit")
	}
	parts := []string{"tab: machines", "r: refresh"}
	if m.controller.Gate(console.ActionCreateUser, 0).Allowed {
		parts = append(parts, "n: new")
	}
	if user, ok := m.selectedUser(); ok {
		if m.controller.Gate(console.ActionDeleteUser, user.ID).Allowed {
			parts = append(parts, "d: delete")
		}
		if m.controller.Gate(console.ActionGrant, user.ID).Allowed {
			parts = append(parts, "g: grant")
		}
		if m.controller.Gate(console.ActionRevoke, user.ID).Allowed {
			parts = append(parts, "v: revoke")
		}
	}
	parts = append(parts, "q: quit")
	return dimStyle.Render(strings.Join(parts, "  "))
}
