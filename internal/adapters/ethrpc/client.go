// Package ethrpc connects the services to a node over JSON-RPC.
package ethrpc

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
)

// DefaultURL is the address local development nodes listen on.
const DefaultURL = "http://localhost:8545"

const (
	gasLimit             = 30_000_000
	errCodeInvalidParams = -32602
)

type Option func(*Client)

// WithKeys signs transactions from these accounts locally and sends them raw.
// Other senders go through eth_sendTransaction.
func WithKeys(keys ...*ecdsa.PrivateKey) Option {
	return func(c *Client) {
		for _, k := range keys {
			c.keys[crypto.PubkeyToAddress(k.PublicKey)] = k
		}
	}
}

type Client struct {
	rpc *rpc.Client
	eth *ethclient.Client

	keys map[common.Address]*ecdsa.PrivateKey
}

var _ ports.Chain = (*Client)(nil)

func Dial(ctx context.Context, url string, opts ...Option) (*Client, error) {
	rc, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	return NewClient(rc, opts...), nil
}

func NewClient(rc *rpc.Client, opts ...Option) *Client {
	c := &Client{
		rpc:  rc,
		eth:  ethclient.NewClient(rc),
		keys: make(map[common.Address]*ecdsa.PrivateKey),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Close() {
	c.rpc.Close()
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	return c.eth.ChainID(ctx)
}

func (c *Client) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := c.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c *Client) LatestBlock(ctx context.Context) (*domain.Block, error) {
	var b rpcBlock
	if err := c.rpc.CallContext(ctx, &b, "eth_getBlockByNumber", "latest", false); err != nil {
		return nil, err
	}
	return b.toDomain(), nil
}

func (c *Client) CodeAt(ctx context.Context, address common.Address) ([]byte, error) {
	return c.eth.CodeAt(ctx, address, nil)
}

func (c *Client) Call(ctx context.Context, from, to common.Address, data []byte) ([]byte, error) {
	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{From: from, To: &to, Data: data}, nil)
	if err != nil {
		return nil, decodeError(err)
	}
	return out, nil
}

// Transact signs locally when the sender's key is known, otherwise the node
// signs. The receipt of a reverted signed transaction is returned alongside
// the revert.
func (c *Client) Transact(ctx context.Context, from common.Address, to *common.Address, data []byte) (*domain.Receipt, error) {
	key, ok := c.keys[from]
	if !ok {
		return c.sendUnsigned(ctx, from, to, data)
	}

	chainID, err := c.eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	nonce, err := c.eth.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	tx, err := types.SignTx(types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       to,
		Gas:      gasLimit,
		GasPrice: new(big.Int),
		Data:     data,
	}), types.LatestSignerForChainID(chainID), key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.eth.SendTransaction(ctx, tx); err != nil {
		sendErr := decodeError(err)
		var revert *domain.RevertError
		if !errors.As(sendErr, &revert) {
			return nil, sendErr
		}
		receipt, rerr := c.receipt(ctx, tx.Hash())
		if rerr != nil {
			log.Debug("No receipt for reverted transaction", "hash", tx.Hash(), "err", rerr)
		}
		return receipt, revert
	}
	return c.receipt(ctx, tx.Hash())
}

func (c *Client) sendUnsigned(ctx context.Context, from common.Address, to *common.Address, data []byte) (*domain.Receipt, error) {
	args := map[string]any{
		"from":  from,
		"input": hexutil.Bytes(data),
	}
	if to != nil {
		args["to"] = to
	}

	var hash common.Hash
	if err := c.rpc.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return nil, decodeError(err)
	}
	return c.receipt(ctx, hash)
}

func (c *Client) receipt(ctx context.Context, hash common.Hash) (*domain.Receipt, error) {
	var r *rpcReceipt
	if err := c.rpc.CallContext(ctx, &r, "eth_getTransactionReceipt", hash); err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	if r == nil {
		return nil, fmt.Errorf("transaction %s was not mined", hash)
	}
	return r.toDomain(), nil
}

func (c *Client) FilterLogs(ctx context.Context, filter domain.LogFilter) ([]types.Log, error) {
	q := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(filter.FromBlock),
		Addresses: filter.Addresses,
	}
	if filter.ToBlock != nil {
		q.ToBlock = new(big.Int).SetUint64(*filter.ToBlock)
	}
	if filter.Topic != nil {
		q.Topics = [][]common.Hash{{*filter.Topic}}
	}
	return c.eth.FilterLogs(ctx, q)
}

func (c *Client) IncreaseTime(ctx context.Context, seconds uint64) error {
	return timeError(c.rpc.CallContext(ctx, nil, "evm_increaseTime", seconds))
}

func (c *Client) SetNextBlockTimestamp(ctx context.Context, timestamp uint64) error {
	return timeError(c.rpc.CallContext(ctx, nil, "evm_setNextBlockTimestamp", timestamp))
}

// timeError maps rejected clock changes back to domain.ErrInvalidTimestamp.
func timeError(err error) error {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == errCodeInvalidParams {
		return fmt.Errorf("%w: %v", domain.ErrInvalidTimestamp, err)
	}
	return err
}

func (c *Client) Mine(ctx context.Context) error {
	return c.rpc.CallContext(ctx, nil, "evm_mine")
}

func (c *Client) Snapshot(ctx context.Context) (uint64, error) {
	var id hexutil.Uint64
	if err := c.rpc.CallContext(ctx, &id, "evm_snapshot"); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (c *Client) Revert(ctx context.Context, id uint64) (bool, error) {
	var ok bool
	if err := c.rpc.CallContext(ctx, &ok, "evm_revert", hexutil.Uint64(id)); err != nil {
		return false, err
	}
	return ok, nil
}

// decodeError turns a JSON-RPC revert into *domain.RevertError. Other errors
// are returned unchanged.
func decodeError(err error) error {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return err
	}
	hex, ok := dataErr.ErrorData().(string)
	if !ok {
		return err
	}
	data, derr := hexutil.Decode(hex)
	if derr != nil {
		return err
	}
	revert, derr := domain.DecodeRevert(data)
	if derr != nil {
		return err
	}
	return revert
}
