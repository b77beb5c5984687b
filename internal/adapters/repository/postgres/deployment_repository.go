package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
)

type deploymentRepository struct {
	db *sql.DB
}

func NewDeploymentRepository(db *sql.DB) ports.DeploymentRepository {
	return &deploymentRepository{
		db: db,
	}
}

// Save journals a deployment. A future deployed again on the same chain
// replaces its previous entry.
func (r *deploymentRepository) Save(ctx context.Context, d *domain.DeployedContract) error {
	query := `
		INSERT INTO deployments (id, chain_id, module_id, future_id, contract_name, address, tx_hash, deployed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (chain_id, future_id) DO UPDATE
		SET module_id = EXCLUDED.module_id,
		    contract_name = EXCLUDED.contract_name,
		    address = EXCLUDED.address,
		    tx_hash = EXCLUDED.tx_hash,
		    deployed_at = EXCLUDED.deployed_at;
	`

	_, err := r.db.ExecContext(ctx, query,
		d.ID, int64(d.ChainID), d.ModuleID, d.FutureID, d.ContractName,
		d.Address.Hex(), d.TxHash.Hex(), d.DeployedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save deployment %s: %w", d.FutureID, err)
	}

	return nil
}

func (r *deploymentRepository) ListByModule(ctx context.Context, chainID uint64, moduleID string) ([]*domain.DeployedContract, error) {
	query := `
		SELECT id, chain_id, module_id, future_id, contract_name, address, tx_hash, deployed_at
		FROM deployments
		WHERE chain_id = $1 AND module_id = $2
		ORDER BY deployed_at, future_id
	`
	return r.list(ctx, query, int64(chainID), moduleID)
}

func (r *deploymentRepository) ListByContract(ctx context.Context, chainID uint64, contractName string) ([]*domain.DeployedContract, error) {
	query := `
		SELECT id, chain_id, module_id, future_id, contract_name, address, tx_hash, deployed_at
		FROM deployments
		WHERE chain_id = $1 AND contract_name = $2
		ORDER BY deployed_at, future_id
	`
	return r.list(ctx, query, int64(chainID), contractName)
}

func (r *deploymentRepository) list(ctx context.Context, query string, args ...any) ([]*domain.DeployedContract, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deployments: %w", err)
	}
	defer rows.Close()

	var deployments []*domain.DeployedContract
	for rows.Next() {
		var (
			d               domain.DeployedContract
			chainID         int64
			address, txHash string
		)
		if err := rows.Scan(&d.ID, &chainID, &d.ModuleID, &d.FutureID, &d.ContractName, &address, &txHash, &d.DeployedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deployment: %w", err)
		}
		d.ChainID = uint64(chainID)
		d.Address = common.HexToAddress(address)
		d.TxHash = common.HexToHash(txHash)
		deployments = append(deployments, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deployments: %w", err)
	}

	return deployments, nil
}
