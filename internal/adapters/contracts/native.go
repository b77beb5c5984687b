// Package contracts implements the project's contract artifacts natively so
// the development node can execute them without an EVM. Calldata, return
// values, events and reverts use the standard ABI encoding, so callers
// cannot tell the difference.
package contracts

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
)

type selector [4]byte

type nativeMethod[T any] struct {
	method abi.Method
	run    func(c T, e *env) ([]any, error)
}

type dispatcher[T any] struct {
	abi     abi.ABI
	methods map[selector]*nativeMethod[T]
}

// newDispatcher binds every ABI method to its native implementation.
func newDispatcher[T any](contract abi.ABI, runs map[string]func(c T, e *env) ([]any, error)) (*dispatcher[T], error) {
	d := &dispatcher[T]{
		abi:     contract,
		methods: make(map[selector]*nativeMethod[T], len(runs)),
	}
	for name, run := range runs {
		m, ok := contract.Methods[name]
		if !ok {
			return nil, fmt.Errorf("method %s is not part of the abi", name)
		}
		var id selector
		copy(id[:], m.ID)
		d.methods[id] = &nativeMethod[T]{method: m, run: run}
	}
	for name := range contract.Methods {
		if _, ok := runs[name]; !ok {
			return nil, fmt.Errorf("method %s has no native implementation", name)
		}
	}
	return d, nil
}

func (d *dispatcher[T]) invoke(c T, ctx ports.CallContext, input []byte) (output []byte, logs []*types.Log, err error) {
	if len(input) < 4 {
		return nil, nil, domain.ErrReverted
	}
	var id selector
	copy(id[:], input[:4])

	m, ok := d.methods[id]
	if !ok {
		return nil, nil, domain.ErrReverted
	}

	args, err := m.method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, nil, domain.ErrReverted
	}

	defer func() {
		// a bad type assertion in a method body
		if e := recover(); e != nil {
			output, logs, err = nil, nil, fmt.Errorf("native %s: %v", m.method.Name, e)
		}
	}()

	e := &env{CallContext: ctx, args: args, abi: &d.abi}
	out, err := m.run(c, e)
	if err != nil {
		return nil, nil, err
	}

	output, err = m.method.Outputs.Pack(out...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode %s output: %w", m.method.Name, err)
	}
	return output, e.logs, nil
}

// env is what a native method sees of its invocation.
type env struct {
	ports.CallContext

	args []any
	abi  *abi.ABI
	logs []*types.Log
}

func (e *env) emit(event string, indexed ...common.Hash) {
	ev, ok := e.abi.Events[event]
	if !ok {
		panic("unknown event " + event)
	}
	e.logs = append(e.logs, &types.Log{
		Address:     e.Address,
		Topics:      append([]common.Hash{ev.ID}, indexed...),
		Data:        []byte{},
		BlockNumber: e.BlockNumber,
	})
}
