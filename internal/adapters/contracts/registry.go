package contracts

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/devchain/internal/core/domain"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
)

// nativeMarker starts the creation code of natively executed artifacts. It
// is the INVALID opcode, so the code cannot run on a real EVM.
const nativeMarker = 0xfe

var errUnsupportedCode = errors.New("unsupported creation code: only native artifacts can be deployed")

// NativeBytecode is the creation code of a native artifact:
// 0xfe || len(name) || name. Constructor arguments follow it.
func NativeBytecode(name string) []byte {
	code := make([]byte, 0, 2+len(name))
	code = append(code, nativeMarker, byte(len(name)))
	return append(code, name...)
}

type registry struct {
	factories map[string]ports.ContractFactory
}

// NewRegistry loads the artifacts of every native contract from store.
func NewRegistry(store ports.ArtifactStore) (ports.ContractRegistry, error) {
	constructors := map[string]func(*domain.Artifact) (ports.ContractFactory, error){
		domain.VotingContract:       newVotingFactory,
		domain.ComputationsContract: newComputationsFactory,
	}

	r := &registry{factories: make(map[string]ports.ContractFactory, len(constructors))}
	for name, newFactory := range constructors {
		artifact, err := store.Artifact(name)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(artifact.Bytecode, NativeBytecode(name)) {
			return nil, fmt.Errorf("artifact %s is not a native artifact", name)
		}
		f, err := newFactory(artifact)
		if err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", name, err)
		}
		r.factories[name] = f
	}
	return r, nil
}

func (r *registry) Lookup(code []byte) (ports.ContractFactory, []byte, error) {
	if len(code) < 2 || code[0] != nativeMarker {
		return nil, nil, errUnsupportedCode
	}
	n := int(code[1])
	if len(code) < 2+n {
		return nil, nil, errUnsupportedCode
	}

	f, ok := r.factories[string(code[2:2+n])]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrArtifactNotFound, code[2:2+n])
	}
	return f, code[2+n:], nil
}

func (r *registry) Code(c ports.Contract) []byte {
	return NativeBytecode(c.Name())
}
