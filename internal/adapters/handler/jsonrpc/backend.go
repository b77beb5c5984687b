// Package jsonrpc exposes a development chain over the Ethereum JSON-RPC
// protocol, including the evm_* test methods.
package jsonrpc

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
)

// Backend is the chain the server answers for.
type Backend interface {
	ports.Chain
	BlockByNumber(ctx context.Context, number uint64) (*domain.Block, error)
	NonceAt(ctx context.Context, address common.Address) (uint64, error)
	SendRawTransaction(ctx context.Context, raw []byte) (*domain.Receipt, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*domain.Receipt, error)
}

// ClientVersion is reported by web3_clientVersion.
const ClientVersion = "devchain/v1.0.0"

// NewServer registers the eth, net, web3 and evm namespaces. The returned
// server is an http.Handler.
func NewServer(backend Backend) (*rpc.Server, error) {
	server := rpc.NewServer()
	apis := []struct {
		namespace string
		service   any
	}{
		{"eth", &ethAPI{b: backend}},
		{"net", &netAPI{b: backend}},
		{"web3", &web3API{}},
		{"evm", &evmAPI{b: backend}},
	}
	for _, api := range apis {
		if err := server.RegisterName(api.namespace, api.service); err != nil {
			server.Stop()
			return nil, err
		}
	}
	return server, nil
}
