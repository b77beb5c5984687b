package ports

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
)

// Chain is the node surface the services run against. Every transaction is
// mined immediately; a rejected execution is returned as *domain.RevertError.
type Chain interface {
	ChainID(ctx context.Context) (*big.Int, error)
	Accounts(ctx context.Context) ([]common.Address, error)
	LatestBlock(ctx context.Context) (*domain.Block, error)
	CodeAt(ctx context.Context, address common.Address) ([]byte, error)

	Call(ctx context.Context, from, to common.Address, data []byte) ([]byte, error)
	// Transact sends data from the account. A nil to deploys a contract.
	Transact(ctx context.Context, from common.Address, to *common.Address, data []byte) (*domain.Receipt, error)
	FilterLogs(ctx context.Context, filter domain.LogFilter) ([]types.Log, error)

	IncreaseTime(ctx context.Context, seconds uint64) error
	SetNextBlockTimestamp(ctx context.Context, timestamp uint64) error
	Mine(ctx context.Context) error
	Snapshot(ctx context.Context) (uint64, error)
	Revert(ctx context.Context, id uint64) (bool, error)
}
