package usecase

import (
	"errors"
	"testing"

	"github.com/aalvaropc/glimpse/internal/domain"
)

type fakeInitializer struct {
	got   domain.WorkspaceSpec
	force bool
	err   error
}

func (f *fakeInitializer) Init(spec domain.WorkspaceSpec, force bool) error {
	f.got = spec
	f.force = force
	return f.err
}

func TestInitWorkspace_DefaultsRoot(t *testing.T) {
	fi := &fakeInitializer{}
	if err := NewInitWorkspace(fi).Execute("  ", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fi.got.Root != "." || !fi.force {
		t.Fatalf("unexpected call: %+v force=%v", fi.got, fi.force)
	}
}

func TestInitWorkspace_PropagatesError(t *testing.T) {
	want := errors.New("exists")
	fi := &fakeInitializer{err: want}
	if err := NewInitWorkspace(fi).Execute("demo", false); !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
	if fi.got.Root != "demo" {
		t.Fatalf("expected root=demo, got %q", fi.got.Root)
	}
}
