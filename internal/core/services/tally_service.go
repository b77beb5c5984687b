package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentTallies = 8

type tallyService struct {
	chain          ports.Chain
	artifacts      ports.ArtifactStore
	deploymentRepo ports.DeploymentRepository
	tallyRepo      ports.TallyRepository
}

func NewTallyService(chain ports.Chain, artifacts ports.ArtifactStore, deploymentRepo ports.DeploymentRepository, tallyRepo ports.TallyRepository) ports.TallyService {
	return &tallyService{
		chain:          chain,
		artifacts:      artifacts,
		deploymentRepo: deploymentRepo,
		tallyRepo:      tallyRepo,
	}
}

// TallyAll recounts every Voting contract in the deployment journal of the
// connected chain.
func (s *tallyService) TallyAll(ctx context.Context) error {
	chainID, err := s.chain.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain id: %w", err)
	}

	deployments, err := s.deploymentRepo.ListByContract(ctx, chainID.Uint64(), domain.VotingContract)
	if err != nil {
		return fmt.Errorf("failed to fetch voting deployments: %w", err)
	}

	contracts := make([]common.Address, 0, len(deployments))
	for _, d := range deployments {
		contracts = append(contracts, d.Address)
	}
	return s.Tally(ctx, contracts...)
}

func (s *tallyService) Tally(ctx context.Context, contracts ...common.Address) error {
	chainID, err := s.chain.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain id: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentTallies)
	for _, contract := range contracts {
		contract := contract
		g.Go(func() error {
			if err := s.tally(ctx, chainID.Uint64(), contract); err != nil {
				return fmt.Errorf("failed to tally %s: %w", contract, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *tallyService) tally(ctx context.Context, chainID uint64, contract common.Address) error {
	artifact, err := s.artifacts.Artifact(domain.VotingContract)
	if err != nil {
		return err
	}
	voting := NewBoundContract(contract, artifact.ABI, s.chain)

	out, err := voting.Call(ctx, "candidatesCount")
	if err != nil {
		return err
	}
	total, err := Output[*big.Int](out, "candidatesCount", 0)
	if err != nil {
		return err
	}
	count := total.Uint64()

	latest, err := s.chain.LatestBlock(ctx)
	if err != nil {
		return err
	}

	tallies := make([]domain.VoteTally, count)
	for i := range tallies {
		tallies[i] = domain.VoteTally{
			ChainID:        chainID,
			Contract:       contract,
			CandidateIndex: uint64(i),
			LastBlock:      latest.Number,
		}
	}

	topic := artifact.ABI.Events[domain.VotedEvent].ID
	to := latest.Number
	logs, err := s.chain.FilterLogs(ctx, domain.LogFilter{
		ToBlock:   &to,
		Addresses: []common.Address{contract},
		Topic:     &topic,
	})
	if err != nil {
		return fmt.Errorf("failed to filter logs: %w", err)
	}

	for _, l := range logs {
		if len(l.Topics) < 3 {
			continue
		}
		index := l.Topics[2].Big()
		if !index.IsUint64() || index.Uint64() >= count {
			log.Warn("Ignoring vote for unknown candidate", "contract", contract, "index", index)
			continue
		}
		tallies[index.Uint64()].VoteCount++
	}

	return s.tallyRepo.SaveTallies(ctx, tallies)
}
