package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// DeployedContract is one journal entry of a module deployment.
type DeployedContract struct {
	ID           uuid.UUID      `json:"id"`
	ChainID      uint64         `json:"chain_id"`
	ModuleID     string         `json:"module_id"`
	FutureID     string         `json:"future_id"`
	ContractName string         `json:"contract_name"`
	Address      common.Address `json:"address"`
	TxHash       common.Hash    `json:"tx_hash"`
	DeployedAt   time.Time      `json:"deployed_at"`
}
