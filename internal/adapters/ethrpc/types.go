package ethrpc

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
)

type rpcBlock struct {
	Number       hexutil.Uint64 `json:"number"`
	Hash         common.Hash    `json:"hash"`
	ParentHash   common.Hash    `json:"parentHash"`
	Timestamp    hexutil.Uint64 `json:"timestamp"`
	Transactions []common.Hash  `json:"transactions"`
}

func (b *rpcBlock) toDomain() *domain.Block {
	return &domain.Block{
		Number:       uint64(b.Number),
		Hash:         b.Hash,
		ParentHash:   b.ParentHash,
		Timestamp:    uint64(b.Timestamp),
		Transactions: b.Transactions,
	}
}

type rpcReceipt struct {
	TxHash          common.Hash     `json:"transactionHash"`
	From            common.Address  `json:"from"`
	To              *common.Address `json:"to"`
	BlockNumber     hexutil.Uint64  `json:"blockNumber"`
	BlockHash       common.Hash     `json:"blockHash"`
	Status          hexutil.Uint64  `json:"status"`
	ContractAddress *common.Address `json:"contractAddress"`
	Logs            []*types.Log    `json:"logs"`
}

func (r *rpcReceipt) toDomain() *domain.Receipt {
	return &domain.Receipt{
		TxHash:          r.TxHash,
		From:            r.From,
		To:              r.To,
		BlockNumber:     uint64(r.BlockNumber),
		BlockHash:       r.BlockHash,
		Status:          uint64(r.Status),
		ContractAddress: r.ContractAddress,
		Logs:            r.Logs,
	}
}
