package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
)

type computationsService struct {
	chain     ports.Chain
	artifacts ports.ArtifactStore
}

func NewComputationsService(chain ports.Chain, artifacts ports.ArtifactStore) ports.ComputationsService {
	return &computationsService{
		chain:     chain,
		artifacts: artifacts,
	}
}

func (s *computationsService) Sum(ctx context.Context, contract common.Address, a, b *big.Int) (*big.Int, error) {
	artifact, err := s.artifacts.Artifact(domain.ComputationsContract)
	if err != nil {
		return nil, err
	}

	out, err := NewBoundContract(contract, artifact.ABI, s.chain).Call(ctx, "sum", a, b)
	if err != nil {
		return nil, err
	}

	total, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected sum output %T", out[0])
	}
	return total, nil
}
