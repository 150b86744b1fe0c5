package county

import (
	"context"
	"errors"
	"testing"

	"countysales/internal/domain"
)

type stubAdapter struct{ name string }

func (s stubAdapter) Name() string { return s.name }

func (s stubAdapter) FetchSales(context.Context, domain.DateRange) ([]domain.SaleRecord, error) {
	return nil, nil
}

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(stubAdapter{name: "hamilton"})
	reg.Register(stubAdapter{name: "butler"})
	reg.Register(stubAdapter{name: "hamilton"})

	names := reg.Names()
	if len(names) != 2 || names[0] != "hamilton" || names[1] != "butler" {
		t.Fatalf("unexpected order: %v", names)
	}
	if got := len(reg.All()); got != 2 {
		t.Fatalf("expected 2 adapters, got %d", got)
	}
}

func TestRegistryResolveUnknown(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry().Resolve("warren")
	if !errors.Is(err, ErrUnknownAdapter) {
		t.Fatalf("expected ErrUnknownAdapter, got %v", err)
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"butler":       "Butler",
		"HAMILTON":     "Hamilton",
		"clark_county": "Clark County",
	}
	for in, want := range cases {
		if got := DisplayName(in); got != want {
			t.Fatalf("DisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRegistrySuggest(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(stubAdapter{name: "butler"})
	reg.Register(stubAdapter{name: "hamilton"})

	if got, ok := reg.Suggest("Hamliton"); !ok || got != "hamilton" {
		t.Fatalf("Suggest(Hamliton) = %q, %v", got, ok)
	}
	if got, ok := reg.Suggest("atlantis"); ok {
		t.Fatalf("Suggest(atlantis) matched %q", got)
	}
}
