package grabber

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-hclog"
)

// stubGrabber is a minimal grabber implementation for registry tests.
type stubGrabber struct {
	name string
}

func (s *stubGrabber) Name() string { return s.name }
func (s *stubGrabber) Query(ctx context.Context, q Query) (*Artwork, error) {
	return nil, ErrNotFound
}

func stubFactory(caps CapabilitySet) Factory {
	return Factory{
		Capabilities: caps,
		Description:  "stub",
		Source:       "builtin",
		New: func(args map[string]string) (Grabber, error) {
			return &stubGrabber{name: "stub"}, nil
		},
	}
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	err := registry.Register("tv_meta_stub", stubFactory(CapabilitySet{CapabilityMovie: true}))
	if err != nil {
		t.Errorf("Register() error = %v, want nil", err)
	}

	err = registry.Register("tv_meta_stub", stubFactory(CapabilitySet{CapabilityMovie: true}))
	if err == nil {
		t.Error("Register() expected error for duplicate, got nil")
	}
}

func TestRegistry_Register_Invalid(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register("tv_meta_nocaps", stubFactory(nil)); err == nil {
		t.Error("Register() with no capabilities expected error, got nil")
	}

	factory := stubFactory(CapabilitySet{CapabilityMovie: true})
	factory.New = nil
	if err := registry.Register("tv_meta_noctor", factory); err == nil {
		t.Error("Register() with no constructor expected error, got nil")
	}
}

func TestRegistry_Identifiers_Sorted(t *testing.T) {
	registry := NewRegistry()
	for _, id := range []string{"tv_meta_zeta", "tv_meta_alpha", "tv_meta_mid"} {
		if err := registry.Register(id, stubFactory(CapabilitySet{CapabilityTV: true})); err != nil {
			t.Fatalf("Register(%q) error = %v", id, err)
		}
	}

	got := registry.Identifiers()
	want := []string{"tv_meta_alpha", "tv_meta_mid", "tv_meta_zeta"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Identifiers() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_Capabilities(t *testing.T) {
	registry := NewRegistry()
	caps := CapabilitySet{CapabilityMovie: true, CapabilityTV: false}
	if err := registry.Register("tv_meta_stub", stubFactory(caps)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := registry.Capabilities("tv_meta_stub")
	if err != nil {
		t.Fatalf("Capabilities() error = %v, want nil", err)
	}
	if !got.Has(CapabilityMovie) || got.Has(CapabilityTV) {
		t.Errorf("Capabilities() = %v, want movie only", got)
	}

	if _, err := registry.Capabilities("tv_meta_missing"); err == nil {
		t.Error("Capabilities() for unknown grabber expected error, got nil")
	}
}

func TestRegistry_FilterByCapability(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register("tv_meta_both", stubFactory(CapabilitySet{CapabilityMovie: true, CapabilityTV: true})); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := registry.Register("tv_meta_tvonly", stubFactory(CapabilitySet{CapabilityTV: true})); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Input order survives; unknown identifiers are dropped, not fatal.
	ids := []string{"tv_meta_tvonly", "tv_meta_missing", "tv_meta_both"}

	gotTV := registry.FilterByCapability(hclog.NewNullLogger(), ids, CapabilityTV)
	wantTV := []string{"tv_meta_tvonly", "tv_meta_both"}
	if diff := cmp.Diff(wantTV, gotTV); diff != "" {
		t.Errorf("FilterByCapability(tv) mismatch (-want +got):\n%s", diff)
	}

	gotMovie := registry.FilterByCapability(hclog.NewNullLogger(), ids, CapabilityMovie)
	wantMovie := []string{"tv_meta_both"}
	if diff := cmp.Diff(wantMovie, gotMovie); diff != "" {
		t.Errorf("FilterByCapability(movie) mismatch (-want +got):\n%s", diff)
	}
}
