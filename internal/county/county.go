package county

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"

	"countysales/internal/domain"
)

// ErrUnknownAdapter is returned by Resolve for names nobody registered.
var ErrUnknownAdapter = errors.New("county adapter is not registered")

// Adapter scrapes one county portal and returns its normalized sales.
type Adapter interface {
	Name() string
	FetchSales(ctx context.Context, window domain.DateRange) ([]domain.SaleRecord, error)
}

// Registry keeps adapters in registration order so every run visits them
// in the same sequence.
type Registry struct {
	adapters map[string]Adapter
	order    []string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: map[string]Adapter{}}
}

// Register adds or replaces an adapter implementation.
func (r *Registry) Register(adapter Adapter) {
	if r.adapters == nil {
		r.adapters = map[string]Adapter{}
	}
	name := adapter.Name()
	if _, ok := r.adapters[name]; !ok {
		r.order = append(r.order, name)
	}
	r.adapters[name] = adapter
}

// Resolve returns an adapter by name or ErrUnknownAdapter.
func (r *Registry) Resolve(name string) (Adapter, error) {
	if adapter, ok := r.adapters[name]; ok {
		return adapter, nil
	}
	return nil, fmt.Errorf("%s: %w", name, ErrUnknownAdapter)
}

// Names lists registered adapters in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// suggestThreshold is the Jaro-Winkler similarity above which a misspelt
// county name is matched to a registered adapter.
const suggestThreshold = 0.85

// Suggest returns the registered name closest to name, if any is similar
// enough to be a likely typo.
func (r *Registry) Suggest(name string) (string, bool) {
	best, bestScore := "", 0.0
	for _, candidate := range r.order {
		score := matchr.JaroWinkler(strings.ToLower(name), candidate, false)
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}
	return best, bestScore >= suggestThreshold
}

// All returns every registered adapter in registration order.
func (r *Registry) All() []Adapter {
	out := make([]Adapter, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.adapters[name])
	}
	return out
}

// DisplayName turns an adapter name like "butler" or "clark_county" into the
// label used in reports ("Butler", "Clark County").
func DisplayName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
