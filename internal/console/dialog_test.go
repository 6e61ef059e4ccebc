package console

import (
	"errors"
	"testing"

	"github.com/kioskworks/kioskctl/internal/domain"
)

func TestDialogOpensWithEmptySelection(t *testing.T) {
	d := OpenDialog(ActionGrant, 2)
	if d.Phase() != DialogOpen {
		t.Fatalf("phase = %v", d.Phase())
	}
	if len(d.Selected()) != 0 {
		t.Fatal("expected empty selection")
	}
}

func TestDialogToggleAndSubmit(t *testing.T) {
	d := OpenDialog(ActionGrant, 2)
	d.Toggle(domain.CapabilityListUsers)
	d.Toggle(domain.CapabilityDeleteUser)
	d.Toggle(domain.CapabilityDeleteUser) // deselect again

	caps, err := d.BeginSubmit()
	if err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	if len(caps) != 1 || caps[0] != domain.CapabilityListUsers {
		t.Fatalf("selection = %v", caps)
	}
	if d.Phase() != DialogSubmitting {
		t.Fatalf("phase = %v", d.Phase())
	}

	d.Resolve(nil)
	if d.Phase() != DialogClosed {
		t.Fatal("success must close the dialog")
	}
}

func TestDialogSecondSubmitBlockedWhileInFlight(t *testing.T) {
	d := OpenDialog(ActionRevoke, 2)
	d.Toggle(domain.CapabilityListUsers)
	if _, err := d.BeginSubmit(); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	if _, err := d.BeginSubmit(); !errors.Is(err, ErrDialogBusy) {
		t.Fatalf("expected ErrDialogBusy, got %v", err)
	}
}

func TestDialogFailureRetainsSelection(t *testing.T) {
	d := OpenDialog(ActionGrant, 2)
	d.Toggle(domain.CapabilityListUsers)
	if _, err := d.BeginSubmit(); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	d.Resolve(errors.New("service unavailable"))

	if d.Phase() != DialogOpen {
		t.Fatal("failure must reopen the dialog")
	}
	if d.Err() == "" {
		t.Fatal("expected error message")
	}
	if !d.IsSelected(domain.CapabilityListUsers) {
		t.Fatal("selection must survive a failed submit")
	}

	// A retry from the retained selection must be possible.
	caps, err := d.BeginSubmit()
	if err != nil {
		t.Fatalf("retry BeginSubmit: %v", err)
	}
	if len(caps) != 1 {
		t.Fatalf("retry selection = %v", caps)
	}
}

func TestDialogCannotCloseWhileSubmitting(t *testing.T) {
	d := OpenDialog(ActionGrant, 2)
	d.Toggle(domain.CapabilityListUsers)
	if _, err := d.BeginSubmit(); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	if d.Close() {
		t.Fatal("close must be refused while submitting")
	}
	d.Resolve(errors.New("boom"))
	if !d.Close() {
		t.Fatal("close must succeed once resolved")
	}
}

func TestDialogToggleIgnoredWhileSubmitting(t *testing.T) {
	d := OpenDialog(ActionGrant, 2)
	d.Toggle(domain.CapabilityListUsers)
	if _, err := d.BeginSubmit(); err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	d.Toggle(domain.CapabilityDeleteUser)
	d.Resolve(errors.New("boom"))
	if d.IsSelected(domain.CapabilityDeleteUser) {
		t.Fatal("toggle during submit must be ignored")
	}
}
