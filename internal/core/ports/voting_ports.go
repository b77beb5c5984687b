package ports

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
)

type DeployVotingInput struct {
	From       common.Address
	Candidates [][32]byte
	TimeLimit  uint64
}

type VoteInput struct {
	Contract common.Address
	Voter    common.Address
	Index    *big.Int
}

type VotingService interface {
	Deploy(ctx context.Context, input DeployVotingInput) (common.Address, error)
	Vote(ctx context.Context, input VoteInput) error
	Winner(ctx context.Context, contract common.Address) ([32]byte, error)
	Status(ctx context.Context, contract common.Address) (*domain.VotingStatus, error)
	HasVoted(ctx context.Context, contract, voter common.Address) (bool, error)
}
