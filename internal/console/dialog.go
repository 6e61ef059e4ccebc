package console

import (
	"errors"

	"github.com/kioskworks/kioskctl/internal/domain"
)

// DialogPhase is the lifecycle state of a modal action dialog.
type DialogPhase int

const (
	DialogClosed DialogPhase = iota
	DialogOpen
	DialogSubmitting
)

// ErrDialogBusy is returned when a submit is requested while a previous
// submit for the same dialog is still in flight.
var ErrDialogBusy = errors.New("console: dialog submit already in flight")

// Dialog tracks one modal action (delete confirm, grant, revoke) against
// one target user. At most one submit is in flight at a time; a failed
// submit reopens the dialog with the selection retained so the operator
// can retry or adjust.
type Dialog struct {
	Action   Action
	TargetID uint64

	phase    DialogPhase
	selected domain.CapabilitySet
	errMsg   string
}

// OpenDialog starts a fresh dialog with an empty selection.
func OpenDialog(action Action, targetID uint64) *Dialog {
	return &Dialog{
		Action:   action,
		TargetID: targetID,
		phase:    DialogOpen,
		selected: domain.NewCapabilitySet(),
	}
}

func (d *Dialog) Phase() DialogPhase { return d.phase }

// Err returns the message from the last failed submit, if any.
func (d *Dialog) Err() string { return d.errMsg }

// Selected returns a copy of the current selection.
func (d *Dialog) Selected() []domain.Capability {
	return d.selected.Sorted()
}

// IsSelected reports whether the capability is currently selected.
func (d *Dialog) IsSelected(c domain.Capability) bool {
	return d.selected.Has(c)
}

// Toggle flips the selection state of one capability. Toggling is ignored
// while a submit is in flight.
func (d *Dialog) Toggle(c domain.Capability) {
	if d.phase != DialogOpen {
		return
	}
	if d.selected.Has(c) {
		d.selected.Remove(c)
	} else {
		d.selected.Add(c)
	}
}

// BeginSubmit transitions to the submitting phase and returns the
// selection to send. It fails if the dialog is closed or a submit is
// already running; the caller performs the remote call and reports the
// outcome through Resolve.
func (d *Dialog) BeginSubmit() ([]domain.Capability, error) {
	switch d.phase {
	case DialogSubmitting:
		return nil, ErrDialogBusy
	case DialogClosed:
		return nil, errors.New("console: dialog is closed")
	}
	d.phase = DialogSubmitting
	d.errMsg = ""
	return d.selected.Sorted(), nil
}

// Resolve records the submit outcome. Success closes the dialog; failure
// reopens it with the error message and the selection intact.
func (d *Dialog) Resolve(err error) {
	if d.phase != DialogSubmitting {
		return
	}
	if err == nil {
		d.phase = DialogClosed
		return
	}
	d.phase = DialogOpen
	d.errMsg = err.Error()
}

// Close dismisses the dialog. A dialog with a submit in flight stays open
// until the submit resolves.
func (d *Dialog) Close() bool {
	if d.phase == DialogSubmitting {
		return false
	}
	d.phase = DialogClosed
	return true
}
