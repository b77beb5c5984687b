package jsonrpc

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

// blockGasLimit is reported to clients estimating gas. Execution is not
// metered.
const blockGasLimit = 30_000_000

type ethAPI struct {
	b Backend
}

func (api *ethAPI) ChainId(ctx context.Context) (*hexutil.Big, error) {
	id, err := api.b.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	return (*hexutil.Big)(id), nil
}

func (api *ethAPI) BlockNumber(ctx context.Context) (hexutil.Uint64, error) {
	b, err := api.b.LatestBlock(ctx)
	if err != nil {
		return 0, err
	}
	return hexutil.Uint64(b.Number), nil
}

func (api *ethAPI) Accounts(ctx context.Context) ([]common.Address, error) {
	return api.b.Accounts(ctx)
}

func (api *ethAPI) GasPrice(context.Context) (*hexutil.Big, error) {
	return (*hexutil.Big)(new(big.Int)), nil
}

func (api *ethAPI) MaxPriorityFeePerGas(context.Context) (*hexutil.Big, error) {
	return (*hexutil.Big)(new(big.Int)), nil
}

func (api *ethAPI) EstimateGas(context.Context, TransactionArgs, *rpc.BlockNumberOrHash) (hexutil.Uint64, error) {
	return hexutil.Uint64(blockGasLimit), nil
}

// GetBlockByNumber returns null for blocks past the head. Transactions are
// always returned as hashes.
func (api *ethAPI) GetBlockByNumber(ctx context.Context, number rpc.BlockNumber, fullTx bool) (map[string]any, error) {
	latest, err := api.b.LatestBlock(ctx)
	if err != nil {
		return nil, err
	}
	b, err := api.b.BlockByNumber(ctx, resolveBlockNumber(number, latest.Number))
	if err != nil || b == nil {
		return nil, err
	}
	return marshalBlock(b), nil
}

// GetTransactionCount ignores the block and always reports the current
// nonce.
func (api *ethAPI) GetTransactionCount(ctx context.Context, address common.Address, _ *rpc.BlockNumberOrHash) (hexutil.Uint64, error) {
	nonce, err := api.b.NonceAt(ctx, address)
	return hexutil.Uint64(nonce), err
}

func (api *ethAPI) GetCode(ctx context.Context, address common.Address, _ *rpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	code, err := api.b.CodeAt(ctx, address)
	if err != nil {
		return nil, err
	}
	return code, nil
}

// Call executes against the latest state whatever block is requested.
func (api *ethAPI) Call(ctx context.Context, args TransactionArgs, _ *rpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	if args.To == nil {
		return nil, &invalidParamsError{msg: "contract creation is not supported in eth_call"}
	}
	data, err := args.data()
	if err != nil {
		return nil, err
	}
	out, err := api.b.Call(ctx, args.from(), *args.To, data)
	if err != nil {
		return nil, toRPCError(err)
	}
	return out, nil
}

// SendTransaction mines a transaction from one of the node accounts. A
// reverted transaction is mined and reported as an error.
func (api *ethAPI) SendTransaction(ctx context.Context, args TransactionArgs) (common.Hash, error) {
	if args.From == nil {
		return common.Hash{}, &invalidParamsError{msg: `missing "from"`}
	}
	data, err := args.data()
	if err != nil {
		return common.Hash{}, err
	}
	receipt, err := api.b.Transact(ctx, *args.From, args.To, data)
	if err != nil {
		return common.Hash{}, toRPCError(err)
	}
	return receipt.TxHash, nil
}

func (api *ethAPI) SendRawTransaction(ctx context.Context, raw hexutil.Bytes) (common.Hash, error) {
	receipt, err := api.b.SendRawTransaction(ctx, raw)
	if err != nil {
		return common.Hash{}, toRPCError(err)
	}
	return receipt.TxHash, nil
}

func (api *ethAPI) GetTransactionReceipt(ctx context.Context, hash common.Hash) (map[string]any, error) {
	r, err := api.b.TransactionReceipt(ctx, hash)
	if err != nil || r == nil {
		return nil, err
	}
	return marshalReceipt(r), nil
}

func (api *ethAPI) GetLogs(ctx context.Context, args FilterArgs) ([]types.Log, error) {
	latest, err := api.b.LatestBlock(ctx)
	if err != nil {
		return nil, err
	}
	filter, err := args.toFilter(latest.Number)
	if err != nil {
		return nil, err
	}
	logs, err := api.b.FilterLogs(ctx, filter)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []types.Log{}
	}
	return logs, nil
}

type netAPI struct {
	b Backend
}

func (api *netAPI) Version(ctx context.Context) (string, error) {
	id, err := api.b.ChainID(ctx)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

type web3API struct{}

func (api *web3API) ClientVersion() string {
	return ClientVersion
}

// evmAPI holds the test-only methods that control time and state.
type evmAPI struct {
	b Backend
}

func (api *evmAPI) IncreaseTime(ctx context.Context, seconds quantity) (hexutil.Uint64, error) {
	if err := api.b.IncreaseTime(ctx, uint64(seconds)); err != nil {
		return 0, toRPCError(err)
	}
	return hexutil.Uint64(seconds), nil
}

func (api *evmAPI) SetNextBlockTimestamp(ctx context.Context, timestamp quantity) error {
	return toRPCError(api.b.SetNextBlockTimestamp(ctx, uint64(timestamp)))
}

// Mine mines one empty block, stamped with timestamp when given.
func (api *evmAPI) Mine(ctx context.Context, timestamp *quantity) (string, error) {
	if timestamp != nil {
		if err := api.b.SetNextBlockTimestamp(ctx, uint64(*timestamp)); err != nil {
			return "", toRPCError(err)
		}
	}
	if err := api.b.Mine(ctx); err != nil {
		return "", err
	}
	return "0x0", nil
}

func (api *evmAPI) Snapshot(ctx context.Context) (hexutil.Uint64, error) {
	id, err := api.b.Snapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to take snapshot: %w", err)
	}
	return hexutil.Uint64(id), nil
}

func (api *evmAPI) Revert(ctx context.Context, id quantity) (bool, error) {
	return api.b.Revert(ctx, uint64(id))
}
