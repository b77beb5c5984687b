package domain

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Artifact is a compiled contract as emitted by the build toolchain.
type Artifact struct {
	ContractName string
	SourceName   string
	ABI          abi.ABI
	Bytecode     []byte
}

// Contracts shipped with the project.
const (
	VotingContract       = "Voting"
	ComputationsContract = "Computations"

	VotedEvent = "Voted"
)
