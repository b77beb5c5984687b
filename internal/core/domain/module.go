package domain

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// ContractFuture declares a contract instance to be created when its module
// is deployed.
type ContractFuture struct {
	ID           string
	ContractName string
	Args         []any
	From         *common.Address
}

// Module is a named, ordered set of contract futures plus the handles it
// exposes to callers.
type Module struct {
	ID      string
	Futures []*ContractFuture
	Results map[string]*ContractFuture
}

// ResultKeys returns the exposed handle names in a stable order.
func (m *Module) ResultKeys() []string {
	keys := make([]string, 0, len(m.Results))
	for k := range m.Results {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type ModuleBuilder struct {
	id      string
	futures []*ContractFuture
	seen    map[string]bool
	errs    []error
}

// Contract declares an instance of the named artifact deployed with args.
func (b *ModuleBuilder) Contract(name string, args ...any) *ContractFuture {
	f := &ContractFuture{
		ID:           b.id + "#" + name,
		ContractName: name,
		Args:         args,
	}
	if name == "" {
		b.errs = append(b.errs, errors.New("contract name is required"))
	}
	if b.seen[f.ID] {
		b.errs = append(b.errs, fmt.Errorf("duplicate future id %q", f.ID))
	}
	b.seen[f.ID] = true
	b.futures = append(b.futures, f)
	return f
}

func BuildModule(id string, fn func(m *ModuleBuilder) map[string]*ContractFuture) (*Module, error) {
	if id == "" {
		return nil, errors.New("module id is required")
	}

	b := &ModuleBuilder{id: id, seen: make(map[string]bool)}
	results := fn(b)
	if err := errors.Join(b.errs...); err != nil {
		return nil, fmt.Errorf("module %s: %w", id, err)
	}

	for key, f := range results {
		if f == nil || !b.seen[f.ID] {
			return nil, fmt.Errorf("module %s: result %q is not a future of this module", id, key)
		}
	}

	return &Module{
		ID:      id,
		Futures: b.futures,
		Results: results,
	}, nil
}

func MustBuildModule(id string, fn func(m *ModuleBuilder) map[string]*ContractFuture) *Module {
	m, err := BuildModule(id, fn)
	if err != nil {
		panic(err)
	}
	return m
}
