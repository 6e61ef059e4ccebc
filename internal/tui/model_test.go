package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/mock/gomock"

	apigomock "github.com/kioskworks/kioskctl/internal/api/gomock"
	"github.com/kioskworks/kioskctl/internal/console"
	"github.com/kioskworks/kioskctl/internal/domain"
)

type staticView struct {
	userID uint64
	caps   domain.CapabilitySet
}

func (v *staticView) HasCapability(c domain.Capability) bool { return v.caps.Has(c) }
func (v *staticView) Capabilities() domain.CapabilitySet     { return v.caps.Clone() }
func (v *staticView) CurrentUserID() (uint64, bool)          { return v.userID, v.userID != 0 }

func newTestModel(t *testing.T, caps ...domain.Capability) Model {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := apigomock.NewMockAccountService(ctrl)
	view := &staticView{userID: 1, caps: domain.NewCapabilitySet(caps...)}
	return NewModel(console.NewController(client, view, nil), 1)
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestGatedKeyShowsToastInsteadOfDialog(t *testing.T) {
	m := newTestModel(t, domain.CapabilityListUsers)

	updated, _ := m.Update(key("n"))
	m = updated.(Model)
	if m.mode != modeList {
		t.Fatal("create dialog must not open without the capability")
	}
	if m.toast == "" || !strings.Contains(m.toast, string(domain.CapabilityCreateUser)) {
		t.Fatalf("toast = %q", m.toast)
	}
}

func TestUsersMsgPopulatesTable(t *testing.T) {
	m := newTestModel(t, domain.CapabilityListUsers)

	updated, _ := m.Update(usersMsg{users: []domain.UserAccount{
		{ID: 1, Email: "admin@kioskworks.dev"},
		{ID: 2, Email: "maria@kioskworks.dev"},
	}})
	m = updated.(Model)
	if len(m.rows) != 2 {
		t.Fatalf("rows = %d", len(m.rows))
	}
	view := m.View()
	if !strings.Contains(view, "maria@kioskworks.dev") {
		t.Fatal("expected account in view")
	}
}

func TestUsersMsgErrorShowsToastAndKeepsNothing(t *testing.T) {
	m := newTestModel(t, domain.CapabilityListUsers)

	updated, _ := m.Update(usersMsg{err: errors.New("service unavailable")})
	m = updated.(Model)
	if len(m.rows) != 0 {
		t.Fatal("no rows on failure")
	}
	if m.toast == "" || m.toastOK {
		t.Fatalf("toast = %q ok=%v", m.toast, m.toastOK)
	}
}

func TestGrantDialogSkipsAlreadyGrantedRows(t *testing.T) {
	m := newTestModel(t, domain.KnownCapabilities()...)

	updated, _ := m.Update(grantOptionsMsg{
		target: 2,
		options: []console.GrantOption{
			{Capability: domain.CapabilityCreateUser, AlreadyGranted: true},
			{Capability: domain.CapabilityDeleteUser},
		},
	})
	m = updated.(Model)
	if m.mode != modeGrant || m.dialog == nil {
		t.Fatal("expected grant dialog open")
	}

	// Cursor starts on the already-granted row; space must be inert.
	updated, _ = m.Update(key(" "))
	m = updated.(Model)
	if len(m.dialog.Selected()) != 0 {
		t.Fatal("already-granted row must not be selectable")
	}

	updated, _ = m.Update(key("j"))
	m = updated.(Model)
	updated, _ = m.Update(key(" "))
	m = updated.(Model)
	selected := m.dialog.Selected()
	if len(selected) != 1 || selected[0] != domain.CapabilityDeleteUser {
		t.Fatalf("selected = %v", selected)
	}
}

func TestDialogFailureKeepsSelectionForRetry(t *testing.T) {
	m := newTestModel(t, domain.KnownCapabilities()...)

	updated, _ := m.Update(revokeOptionsMsg{
		target:  2,
		options: []domain.Capability{domain.CapabilityListUsers},
	})
	m = updated.(Model)
	updated, _ = m.Update(key(" "))
	m = updated.(Model)

	// Simulate a submit that came back with a remote failure.
	if _, err := m.dialog.BeginSubmit(); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	updated, _ = m.Update(actionDoneMsg{action: console.ActionRevoke, err: errors.New("service unavailable")})
	m = updated.(Model)

	if m.mode != modeRevoke || m.dialog == nil {
		t.Fatal("dialog must stay open after a failed submit")
	}
	if !m.dialog.IsSelected(domain.CapabilityListUsers) {
		t.Fatal("selection must survive the failure")
	}
	if m.toast == "" || m.toastOK {
		t.Fatalf("toast = %q ok=%v", m.toast, m.toastOK)
	}
}

func TestAccountsShowPersistentPlaceholderWithoutListCapability(t *testing.T) {
	m := newTestModel(t, domain.CapabilityCreateUser)

	view := m.View()
	if !strings.Contains(view, "not permitted") || !strings.Contains(view, string(domain.CapabilityListUsers)) {
		t.Fatalf("expected not-permitted placeholder in list area, got %q", view)
	}
	if strings.Contains(view, "no accounts") {
		t.Fatalf("denied gate must not render as an empty list: %q", view)
	}

	// The placeholder lives in the list area, not the toast, so it
	// survives the keypresses that clear a toast.
	updated, _ := m.Update(key("r"))
	m = updated.(Model)
	view = m.View()
	if !strings.Contains(view, "not permitted") {
		t.Fatalf("placeholder must persist across keypresses, got %q", view)
	}
}

func TestFooterHidesGatedActions(t *testing.T) {
	m := newTestModel(t, domain.CapabilityListUsers)
	updated, _ := m.Update(usersMsg{users: []domain.UserAccount{{ID: 2, Email: "maria@kioskworks.dev"}}})
	m = updated.(Model)

	footer := m.renderFooter()
	if strings.Contains(footer, "n: new") || strings.Contains(footer, "d: delete") {
		t.Fatalf("footer exposes gated actions: %q", footer)
	}
}

func TestFooterHidesSelfTargetedActions(t *testing.T) {
	m := newTestModel(t, domain.KnownCapabilities()...)
	updated, _ := m.Update(usersMsg{users: []domain.UserAccount{{ID: 1, Email: "self@kioskworks.dev"}}})
	m = updated.(Model)

	footer := m.renderFooter()
	if strings.Contains(footer, "d: delete") || strings.Contains(footer, "g: grant") {
		t.Fatalf("footer exposes self-targeted actions: %q", footer)
	}
	if !strings.Contains(footer, "n: new") {
		t.Fatalf("create must stay available: %q", footer)
	}
}
