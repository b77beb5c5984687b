// Package modules declares the deployment modules of the project.
package modules

import (
	"fmt"
	"math/big"

	"github.com/vncsmyrnk/devchain/internal/core/domain"
)

// ComputationsModule deploys a single Computations contract with no
// constructor arguments and exposes it as "computations".
var ComputationsModule = domain.MustBuildModule("ComputationsModule", func(m *domain.ModuleBuilder) map[string]*domain.ContractFuture {
	computations := m.Contract(domain.ComputationsContract)
	return map[string]*domain.ContractFuture{
		"computations": computations,
	}
})

const VotingModuleID = "VotingModule"

// NewVotingModule deploys a Voting contract for the given candidates, open
// until timeLimit.
func NewVotingModule(candidates []string, timeLimit uint64) (*domain.Module, error) {
	names, err := domain.EncodeBytes32Strings(candidates...)
	if err != nil {
		return nil, err
	}
	return domain.BuildModule(VotingModuleID, func(m *domain.ModuleBuilder) map[string]*domain.ContractFuture {
		voting := m.Contract(domain.VotingContract, names, new(big.Int).SetUint64(timeLimit))
		return map[string]*domain.ContractFuture{
			"voting": voting,
		}
	})
}

var registered = map[string]*domain.Module{
	ComputationsModule.ID: ComputationsModule,
}

// Lookup returns a module that needs no parameters.
func Lookup(id string) (*domain.Module, error) {
	m, ok := registered[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrModuleNotFound, id)
	}
	return m, nil
}
