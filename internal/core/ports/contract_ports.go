package ports

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// CallContext is the execution environment of a single contract call.
type CallContext struct {
	Caller      common.Address
	Address     common.Address
	BlockNumber uint64
	Timestamp   uint64
}

// Contract is a deployed contract instance executed natively by the node.
type Contract interface {
	Name() string
	Invoke(ctx CallContext, input []byte) ([]byte, []*types.Log, error)
	Clone() Contract
}

// ContractFactory creates instances of one artifact.
type ContractFactory interface {
	Name() string
	Deploy(ctx CallContext, args []byte) (Contract, []*types.Log, error)
}

type ContractRegistry interface {
	// Lookup resolves creation code into the factory and its constructor
	// arguments.
	Lookup(code []byte) (ContractFactory, []byte, error)
	// Code returns the runtime code reported for a deployed instance.
	Code(c Contract) []byte
}
