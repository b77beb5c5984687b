package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
)

// BoundContract is a deployed contract reachable through its ABI.
type BoundContract struct {
	address common.Address
	abi     abi.ABI
	chain   ports.Chain
}

func NewBoundContract(address common.Address, contractABI abi.ABI, chain ports.Chain) *BoundContract {
	return &BoundContract{
		address: address,
		abi:     contractABI,
		chain:   chain,
	}
}

func (c *BoundContract) Address() common.Address {
	return c.address
}

// Call runs a read-only invocation and returns the decoded outputs.
func (c *BoundContract) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}

	out, err := c.chain.Call(ctx, common.Address{}, c.address, data)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 && len(c.abi.Methods[method].Outputs) > 0 {
		return nil, fmt.Errorf("%w: no code at %s", domain.ErrContractNotFound, c.address)
	}

	values, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}
	return values, nil
}

// Output returns the i-th decoded output of method as T.
func Output[T any](out []any, method string, i int) (T, error) {
	var zero T
	if i >= len(out) {
		return zero, fmt.Errorf("%s returned %d outputs, want at least %d", method, len(out), i+1)
	}
	v, ok := out[i].(T)
	if !ok {
		return zero, fmt.Errorf("unexpected %s output %d: %T", method, i, out[i])
	}
	return v, nil
}

// Transact sends a state changing invocation from the given account.
func (c *BoundContract) Transact(ctx context.Context, from common.Address, method string, args ...any) (*domain.Receipt, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}
	return c.chain.Transact(ctx, from, &c.address, data)
}

// DeployContract creates an instance of the artifact and returns its address.
func DeployContract(ctx context.Context, chain ports.Chain, from common.Address, artifact *domain.Artifact, args ...any) (common.Address, *domain.Receipt, error) {
	input, err := artifact.ABI.Pack("", args...)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("failed to pack %s constructor: %w", artifact.ContractName, err)
	}
	data := append(slices.Clone(artifact.Bytecode), input...)

	receipt, err := chain.Transact(ctx, from, nil, data)
	if err != nil {
		return common.Address{}, receipt, err
	}
	if receipt.ContractAddress == nil {
		return common.Address{}, receipt, errors.New("receipt carries no contract address")
	}
	return *receipt.ContractAddress, receipt, nil
}
