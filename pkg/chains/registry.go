package chains

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownChain is returned when a chain name is not part of the registry
var ErrUnknownChain = errors.New("unknown chain")

// Registry is a read-only set of chain descriptors keyed by lower-case name
type Registry struct {
	chains map[string]Descriptor
}

// NewRegistry builds a registry from descriptors, rejecting duplicate names
func NewRegistry(descriptors []Descriptor) (*Registry, error) {
	chains := make(map[string]Descriptor, len(descriptors))
	for _, d := range descriptors {
		key := strings.ToLower(d.Name)
		if key == "" {
			return nil, fmt.Errorf("chain descriptor without a name")
		}
		if _, exists := chains[key]; exists {
			return nil, fmt.Errorf("duplicate chain %q", d.Name)
		}
		d.Name = key
		chains[key] = d
	}
	return &Registry{chains: chains}, nil
}

// DefaultRegistry builds a registry from DefaultTable with the public RPC endpoints
func DefaultRegistry() *Registry {
	descriptors := make([]Descriptor, 0, len(DefaultTable))
	for _, entry := range DefaultTable {
		descriptors = append(descriptors, entry.Descriptor(""))
	}
	registry, err := NewRegistry(descriptors)
	if err != nil {
		panic(err)
	}
	return registry
}

// Resolve returns the descriptor for a chain name
func (r *Registry) Resolve(name string) (Descriptor, error) {
	d, ok := r.chains[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownChain, name)
	}
	return d, nil
}

// Names returns the registered chain names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.chains))
	for name := range r.chains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
