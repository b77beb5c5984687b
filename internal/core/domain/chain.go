package domain

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

type Account struct {
	Address    common.Address
	PrivateKey *ecdsa.PrivateKey
}

type Block struct {
	Number       uint64        `json:"number"`
	Hash         common.Hash   `json:"hash"`
	ParentHash   common.Hash   `json:"parent_hash"`
	Timestamp    uint64        `json:"timestamp"`
	Transactions []common.Hash `json:"transactions"`
}

const (
	ReceiptStatusFailed     uint64 = 0
	ReceiptStatusSuccessful uint64 = 1
)

type Receipt struct {
	TxHash          common.Hash     `json:"transaction_hash"`
	From            common.Address  `json:"from"`
	To              *common.Address `json:"to,omitempty"`
	BlockNumber     uint64          `json:"block_number"`
	BlockHash       common.Hash     `json:"block_hash"`
	Status          uint64          `json:"status"`
	ContractAddress *common.Address `json:"contract_address,omitempty"`
	Logs            []*types.Log    `json:"logs"`
	RevertData      []byte          `json:"-"`
}

// LogFilter selects logs by emitting contract and first topic. Zero values
// match everything.
type LogFilter struct {
	FromBlock uint64
	ToBlock   *uint64
	Addresses []common.Address
	Topic     *common.Hash
}
