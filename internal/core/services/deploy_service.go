package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
)

type deployService struct {
	chain     ports.Chain
	artifacts ports.ArtifactStore
	repo      ports.DeploymentRepository
}

func NewDeployService(chain ports.Chain, artifacts ports.ArtifactStore, repo ports.DeploymentRepository) ports.DeployService {
	return &deployService{
		chain:     chain,
		artifacts: artifacts,
		repo:      repo,
	}
}

// Deploy runs the module's futures in declaration order. Futures already in
// the journal are reused as long as their address still holds the code of
// their artifact.
func (s *deployService) Deploy(ctx context.Context, input ports.DeployInput) (*ports.DeploymentResult, error) {
	module := input.Module
	if module == nil {
		return nil, domain.ErrModuleNotFound
	}

	chainID, err := s.chainID(ctx)
	if err != nil {
		return nil, err
	}

	from, err := s.sender(ctx, input.From)
	if err != nil {
		return nil, err
	}

	journal, err := s.repo.ListByModule(ctx, chainID, module.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read deployment journal: %w", err)
	}
	existing := make(map[string]*domain.DeployedContract, len(journal))
	for _, d := range journal {
		existing[d.FutureID] = d
	}

	result := &ports.DeploymentResult{
		ChainID:   chainID,
		ModuleID:  module.ID,
		Contracts: make(map[string]*domain.DeployedContract, len(module.Futures)),
		Reused:    make(map[string]bool),
	}

	for _, f := range module.Futures {
		if d, ok := existing[f.ID]; ok {
			code, err := s.chain.CodeAt(ctx, d.Address)
			if err != nil {
				return nil, fmt.Errorf("failed to check code of %s: %w", f.ID, err)
			}
			artifact, err := s.artifacts.Artifact(f.ContractName)
			if err != nil {
				return nil, fmt.Errorf("failed to load artifact for %s: %w", f.ID, err)
			}
			if bytes.Equal(code, artifact.Bytecode) {
				log.Info("Reusing deployed contract", "future", f.ID, "address", d.Address)
				result.Contracts[f.ID] = d
				result.Reused[f.ID] = true
				continue
			}
			log.Warn("Journaled contract code does not match its artifact, deploying again", "future", f.ID, "address", d.Address, "code", len(code))
		}

		d, err := s.deployFuture(ctx, chainID, module.ID, f, from)
		if err != nil {
			return nil, err
		}
		result.Contracts[f.ID] = d
	}

	return result, nil
}

func (s *deployService) Deployments(ctx context.Context, moduleID string) ([]*domain.DeployedContract, error) {
	chainID, err := s.chainID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByModule(ctx, chainID, moduleID)
}

func (s *deployService) deployFuture(ctx context.Context, chainID uint64, moduleID string, f *domain.ContractFuture, from common.Address) (*domain.DeployedContract, error) {
	artifact, err := s.artifacts.Artifact(f.ContractName)
	if err != nil {
		return nil, fmt.Errorf("failed to load artifact for %s: %w", f.ID, err)
	}

	sender := from
	if f.From != nil {
		sender = *f.From
	}

	addr, receipt, err := DeployContract(ctx, s.chain, sender, artifact, f.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy %s: %w", f.ID, err)
	}

	d := &domain.DeployedContract{
		ID:           uuid.New(),
		ChainID:      chainID,
		ModuleID:     moduleID,
		FutureID:     f.ID,
		ContractName: f.ContractName,
		Address:      addr,
		TxHash:       receipt.TxHash,
		DeployedAt:   time.Now().UTC(),
	}
	if err := s.repo.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to journal %s: %w", f.ID, err)
	}

	log.Info("Deployed contract", "future", f.ID, "address", addr, "tx", receipt.TxHash)
	return d, nil
}

func (s *deployService) chainID(ctx context.Context) (uint64, error) {
	id, err := s.chain.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get chain id: %w", err)
	}
	return id.Uint64(), nil
}

func (s *deployService) sender(ctx context.Context, from *common.Address) (common.Address, error) {
	if from != nil {
		return *from, nil
	}
	accounts, err := s.chain.Accounts(ctx)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to list accounts: %w", err)
	}
	if len(accounts) == 0 {
		return common.Address{}, errors.New("node exposes no accounts and no sender was given")
	}
	return accounts[0], nil
}
