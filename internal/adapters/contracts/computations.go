package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
)

type computationsFactory struct {
	dispatcher *dispatcher[*computations]
}

func newComputationsFactory(artifact *domain.Artifact) (ports.ContractFactory, error) {
	d, err := newDispatcher(artifact.ABI, map[string]func(*computations, *env) ([]any, error){
		"sum": (*computations).sum,
	})
	if err != nil {
		return nil, err
	}
	return &computationsFactory{dispatcher: d}, nil
}

func (f *computationsFactory) Name() string {
	return domain.ComputationsContract
}

func (f *computationsFactory) Deploy(ports.CallContext, []byte) (ports.Contract, []*types.Log, error) {
	return &computations{dispatcher: f.dispatcher}, nil, nil
}

// computations is stateless.
type computations struct {
	dispatcher *dispatcher[*computations]
}

func (c *computations) Name() string {
	return domain.ComputationsContract
}

func (c *computations) Invoke(ctx ports.CallContext, input []byte) ([]byte, []*types.Log, error) {
	return c.dispatcher.invoke(c, ctx, input)
}

func (c *computations) Clone() ports.Contract {
	return c
}

func (c *computations) sum(e *env) ([]any, error) {
	total, err := domain.Sum(e.args[0].(*big.Int), e.args[1].(*big.Int))
	if err != nil {
		return nil, err
	}
	return []any{total}, nil
}
