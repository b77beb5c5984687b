package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
)

type votingService struct {
	chain     ports.Chain
	artifacts ports.ArtifactStore
}

func NewVotingService(chain ports.Chain, artifacts ports.ArtifactStore) ports.VotingService {
	return &votingService{
		chain:     chain,
		artifacts: artifacts,
	}
}

func (s *votingService) Deploy(ctx context.Context, input ports.DeployVotingInput) (common.Address, error) {
	artifact, err := s.artifacts.Artifact(domain.VotingContract)
	if err != nil {
		return common.Address{}, err
	}

	addr, _, err := DeployContract(ctx, s.chain, input.From, artifact, input.Candidates, new(big.Int).SetUint64(input.TimeLimit))
	return addr, err
}

func (s *votingService) Vote(ctx context.Context, input ports.VoteInput) error {
	c, err := s.bind(input.Contract)
	if err != nil {
		return err
	}
	// indexes that do not fit a uint256 can never name a candidate
	if input.Index == nil || input.Index.Sign() < 0 || input.Index.BitLen() > 256 {
		return domain.ErrInvalidCandidate
	}

	_, err = c.Transact(ctx, input.Voter, "vote", input.Index)
	return err
}

func (s *votingService) Winner(ctx context.Context, contract common.Address) ([32]byte, error) {
	c, err := s.bind(contract)
	if err != nil {
		return [32]byte{}, err
	}

	out, err := c.Call(ctx, "winner")
	if err != nil {
		return [32]byte{}, err
	}
	return Output[[32]byte](out, "winner", 0)
}

func (s *votingService) Status(ctx context.Context, contract common.Address) (*domain.VotingStatus, error) {
	c, err := s.bind(contract)
	if err != nil {
		return nil, err
	}

	out, err := c.Call(ctx, "candidatesCount")
	if err != nil {
		return nil, err
	}
	count, err := Output[*big.Int](out, "candidatesCount", 0)
	if err != nil {
		return nil, err
	}

	status := &domain.VotingStatus{Address: contract}
	for i := int64(0); i < count.Int64(); i++ {
		out, err := c.Call(ctx, "candidates", big.NewInt(i))
		if err != nil {
			return nil, fmt.Errorf("failed to read candidate %d: %w", i, err)
		}
		name, err := Output[[32]byte](out, "candidates", 0)
		if err != nil {
			return nil, err
		}
		votes, err := Output[*big.Int](out, "candidates", 1)
		if err != nil {
			return nil, err
		}
		status.Candidates = append(status.Candidates, domain.Candidate{
			Name:      name,
			VoteCount: votes.Uint64(),
		})
	}

	out, err = c.Call(ctx, "timeLimit")
	if err != nil {
		return nil, err
	}
	limit, err := Output[*big.Int](out, "timeLimit", 0)
	if err != nil {
		return nil, err
	}
	status.TimeLimit = limit.Uint64()

	latest, err := s.chain.LatestBlock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest block: %w", err)
	}
	status.Ended = latest.Timestamp >= status.TimeLimit

	return status, nil
}

func (s *votingService) HasVoted(ctx context.Context, contract, voter common.Address) (bool, error) {
	c, err := s.bind(contract)
	if err != nil {
		return false, err
	}

	out, err := c.Call(ctx, "voters", voter)
	if err != nil {
		return false, err
	}
	return Output[bool](out, "voters", 0)
}

func (s *votingService) bind(contract common.Address) (*BoundContract, error) {
	artifact, err := s.artifacts.Artifact(domain.VotingContract)
	if err != nil {
		return nil, err
	}
	return NewBoundContract(contract, artifact.ABI, s.chain), nil
}
