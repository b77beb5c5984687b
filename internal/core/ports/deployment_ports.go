package ports

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
)

type DeploymentRepository interface {
	Save(ctx context.Context, d *domain.DeployedContract) error
	ListByModule(ctx context.Context, chainID uint64, moduleID string) ([]*domain.DeployedContract, error)
	ListByContract(ctx context.Context, chainID uint64, contractName string) ([]*domain.DeployedContract, error)
}

type DeployInput struct {
	Module *domain.Module
	// From defaults to the first node account.
	From *common.Address
}

type DeploymentResult struct {
	ChainID   uint64
	ModuleID  string
	Contracts map[string]*domain.DeployedContract
	Reused    map[string]bool
}

type DeployService interface {
	Deploy(ctx context.Context, input DeployInput) (*DeploymentResult, error)
	Deployments(ctx context.Context, moduleID string) ([]*domain.DeployedContract, error)
}
