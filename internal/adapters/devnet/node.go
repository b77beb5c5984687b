// Package devnet is an in-process development chain. It mines one block per
// transaction, executes the native contracts of a registry and lets tests
// move time and roll state back.
package devnet

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"math/big"
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
)

type Option func(*Node)

// WithClock replaces the wall clock used for block timestamps.
func WithClock(now func() time.Time) Option {
	return func(n *Node) {
		n.now = now
	}
}

func WithChainID(id uint64) Option {
	return func(n *Node) {
		n.chainID = new(big.Int).SetUint64(id)
	}
}

// state is everything a snapshot captures.
type state struct {
	blocks    []*domain.Block
	nonces    map[common.Address]uint64
	contracts map[common.Address]ports.Contract
	receipts  map[common.Hash]*domain.Receipt
	logs      []*types.Log
}

func (s *state) clone() *state {
	contracts := make(map[common.Address]ports.Contract, len(s.contracts))
	for addr, c := range s.contracts {
		contracts[addr] = c.Clone()
	}
	return &state{
		blocks:    slices.Clone(s.blocks),
		nonces:    maps.Clone(s.nonces),
		contracts: contracts,
		receipts:  maps.Clone(s.receipts),
		logs:      slices.Clone(s.logs),
	}
}

func (s *state) latest() *domain.Block {
	return s.blocks[len(s.blocks)-1]
}

type snapshot struct {
	id      uint64
	st      *state
	offset  int64
	pending *uint64
}

type Node struct {
	mu sync.RWMutex

	chainID  *big.Int
	signer   types.Signer
	registry ports.ContractRegistry
	accounts []domain.Account
	known    map[common.Address]bool
	now      func() time.Time

	st *state
	// offset is added to the wall clock when stamping blocks.
	offset int64
	// pending is the timestamp forced on the next block.
	pending *uint64

	snapshots    []snapshot
	lastSnapshot uint64
}

var _ ports.Chain = (*Node)(nil)

func New(registry ports.ContractRegistry, opts ...Option) (*Node, error) {
	accounts, err := DevAccounts()
	if err != nil {
		return nil, err
	}

	n := &Node{
		chainID:  big.NewInt(DefaultChainID),
		registry: registry,
		accounts: accounts,
		known:    make(map[common.Address]bool, len(accounts)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	n.signer = types.LatestSignerForChainID(n.chainID)
	for _, a := range accounts {
		n.known[a.Address] = true
	}

	genesis := &domain.Block{
		Number:    0,
		Timestamp: uint64(n.now().Unix()),
	}
	genesis.Hash = blockHash(genesis)
	n.st = &state{
		blocks:    []*domain.Block{genesis},
		nonces:    make(map[common.Address]uint64),
		contracts: make(map[common.Address]ports.Contract),
		receipts:  make(map[common.Hash]*domain.Receipt),
	}

	log.Info("Initialized development chain", "chainid", n.chainID, "genesis", genesis.Hash, "timestamp", genesis.Timestamp)
	return n, nil
}

func (n *Node) ChainID(context.Context) (*big.Int, error) {
	return new(big.Int).Set(n.chainID), nil
}

// DevAccounts returns the unlocked accounts with their keys.
func (n *Node) DevAccounts() []domain.Account {
	return slices.Clone(n.accounts)
}

func (n *Node) Accounts(context.Context) ([]common.Address, error) {
	addrs := make([]common.Address, 0, len(n.accounts))
	for _, a := range n.accounts {
		addrs = append(addrs, a.Address)
	}
	return addrs, nil
}

func (n *Node) LatestBlock(context.Context) (*domain.Block, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	b := *n.st.latest()
	return &b, nil
}

// BlockByNumber returns nil when the block does not exist.
func (n *Node) BlockByNumber(_ context.Context, number uint64) (*domain.Block, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if number >= uint64(len(n.st.blocks)) {
		return nil, nil
	}
	b := *n.st.blocks[number]
	return &b, nil
}

func (n *Node) NonceAt(_ context.Context, address common.Address) (uint64, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.st.nonces[address], nil
}

func (n *Node) CodeAt(_ context.Context, address common.Address) ([]byte, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	c, ok := n.st.contracts[address]
	if !ok {
		return nil, nil
	}
	return n.registry.Code(c), nil
}

// Call executes data against a copy of the contract in the context of the
// latest block. Calls to addresses without code return nothing.
func (n *Node) Call(_ context.Context, from, to common.Address, data []byte) ([]byte, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	c, ok := n.st.contracts[to]
	if !ok {
		return nil, nil
	}

	latest := n.st.latest()
	out, _, err := c.Clone().Invoke(ports.CallContext{
		Caller:      from,
		Address:     to,
		BlockNumber: latest.Number,
		Timestamp:   latest.Timestamp,
	}, data)
	if err != nil {
		metricCalls.WithLabelValues("reverted").Inc()
		log.Debug("Call reverted", "to", to, "err", err)
		return nil, err
	}
	metricCalls.WithLabelValues("success").Inc()
	return out, nil
}

// Transact sends a transaction from one of the unlocked accounts.
func (n *Node) Transact(_ context.Context, from common.Address, to *common.Address, data []byte) (*domain.Receipt, error) {
	if !n.known[from] {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownAccount, from)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	nonce := n.st.nonces[from]
	hash := unsignedTxHash(from, nonce, to, data)
	return n.execute(from, nonce, to, data, hash)
}

// SendRawTransaction executes a signed transaction from any account.
func (n *Node) SendRawTransaction(_ context.Context, raw []byte) (*domain.Receipt, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}
	from, err := types.Sender(n.signer, tx)
	if err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if nonce := n.st.nonces[from]; tx.Nonce() != nonce {
		return nil, fmt.Errorf("%w: account %s expects %d, got %d", domain.ErrNonceMismatch, from, nonce, tx.Nonce())
	}
	return n.execute(from, tx.Nonce(), tx.To(), tx.Data(), tx.Hash())
}

// TransactionReceipt returns nil for unknown transactions.
func (n *Node) TransactionReceipt(_ context.Context, hash common.Hash) (*domain.Receipt, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.st.receipts[hash], nil
}

func (n *Node) FilterLogs(_ context.Context, filter domain.LogFilter) ([]types.Log, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	var out []types.Log
	for _, l := range n.st.logs {
		if l.BlockNumber < filter.FromBlock {
			continue
		}
		if filter.ToBlock != nil && l.BlockNumber > *filter.ToBlock {
			continue
		}
		if len(filter.Addresses) > 0 && !slices.Contains(filter.Addresses, l.Address) {
			continue
		}
		if filter.Topic != nil && (len(l.Topics) == 0 || l.Topics[0] != *filter.Topic) {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

// IncreaseTime moves the clock used for the following blocks forward.
func (n *Node) IncreaseTime(_ context.Context, seconds uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	// the shifted clock must stay representable as a unix timestamp
	if limit := math.MaxInt64 - n.now().Unix() - n.offset; seconds > uint64(limit) {
		return fmt.Errorf("%w: cannot increase time by %d seconds", domain.ErrInvalidTimestamp, seconds)
	}
	n.offset += int64(seconds)
	log.Debug("Increased time", "seconds", seconds, "offset", n.offset)
	return nil
}

func (n *Node) SetNextBlockTimestamp(_ context.Context, timestamp uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if timestamp > math.MaxInt64 {
		return fmt.Errorf("%w: %d is out of range", domain.ErrInvalidTimestamp, timestamp)
	}
	if latest := n.st.latest().Timestamp; timestamp <= latest {
		return fmt.Errorf("%w: %d is lower than or equal to %d", domain.ErrInvalidTimestamp, timestamp, latest)
	}
	n.pending = &timestamp
	return nil
}

// Mine mines an empty block.
func (n *Node) Mine(context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.mine(n.nextTimestamp(), nil)
	return nil
}

func (n *Node) Snapshot(context.Context) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.lastSnapshot++
	s := snapshot{
		id:     n.lastSnapshot,
		st:     n.st.clone(),
		offset: n.offset,
	}
	if n.pending != nil {
		ts := *n.pending
		s.pending = &ts
	}
	n.snapshots = append(n.snapshots, s)

	log.Debug("Took snapshot", "id", s.id, "block", n.st.latest().Number)
	return s.id, nil
}

// Revert restores the snapshot and discards it together with every snapshot
// taken after it. It reports false for unknown ids.
func (n *Node) Revert(_ context.Context, id uint64) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	i := slices.IndexFunc(n.snapshots, func(s snapshot) bool { return s.id == id })
	if i < 0 {
		return false, nil
	}

	s := n.snapshots[i]
	n.st = s.st
	n.offset = s.offset
	n.pending = s.pending
	n.snapshots = n.snapshots[:i]
	metricChainHeight.Set(float64(n.st.latest().Number))

	log.Debug("Reverted to snapshot", "id", id, "block", n.st.latest().Number)
	return true, nil
}

// execute runs and mines one transaction. The caller holds the write lock.
// A reverted execution is still mined, consumes the nonce and is returned
// together with its receipt.
func (n *Node) execute(from common.Address, nonce uint64, to *common.Address, data []byte, hash common.Hash) (*domain.Receipt, error) {
	if _, dup := n.st.receipts[hash]; dup {
		return nil, fmt.Errorf("transaction %s already known", hash)
	}

	var (
		factory ports.ContractFactory
		args    []byte
	)
	if to == nil {
		var err error
		if factory, args, err = n.registry.Lookup(data); err != nil {
			return nil, err
		}
	}

	parent := n.st.latest()
	timestamp := n.nextTimestamp()
	ctx := ports.CallContext{
		Caller:      from,
		BlockNumber: parent.Number + 1,
		Timestamp:   timestamp,
	}

	receipt := &domain.Receipt{
		TxHash:      hash,
		From:        from,
		To:          to,
		BlockNumber: ctx.BlockNumber,
		Status:      domain.ReceiptStatusSuccessful,
	}

	var (
		logs    []*types.Log
		execErr error
	)
	switch {
	case to == nil:
		addr := crypto.CreateAddress(from, nonce)
		ctx.Address = addr

		var c ports.Contract
		c, logs, execErr = factory.Deploy(ctx, args)
		if execErr == nil {
			n.st.contracts[addr] = c
			receipt.ContractAddress = &addr
		}
	default:
		ctx.Address = *to
		if c, ok := n.st.contracts[*to]; ok {
			next := c.Clone()
			_, logs, execErr = next.Invoke(ctx, data)
			if execErr == nil {
				n.st.contracts[*to] = next
			}
		}
	}

	var revert *domain.RevertError
	if execErr != nil {
		if !errors.As(execErr, &revert) {
			return nil, execErr
		}
		receipt.Status = domain.ReceiptStatusFailed
		receipt.RevertData = revert.Data()
		logs = nil
	}

	n.st.nonces[from] = nonce + 1
	block := n.mine(timestamp, []common.Hash{hash})

	receipt.BlockHash = block.Hash
	for i, l := range logs {
		l.BlockNumber = block.Number
		l.BlockHash = block.Hash
		l.TxHash = hash
		l.Index = uint(len(n.st.logs) + i)
	}
	receipt.Logs = logs
	n.st.logs = append(n.st.logs, logs...)
	n.st.receipts[hash] = receipt

	metricTransactions.WithLabelValues(statusLabel(receipt.Status)).Inc()
	if revert != nil {
		log.Warn("Transaction reverted", "hash", hash, "from", from, "reason", revert.Reason)
		return receipt, revert
	}
	return receipt, nil
}

func (n *Node) mine(timestamp uint64, txs []common.Hash) *domain.Block {
	parent := n.st.latest()
	b := &domain.Block{
		Number:       parent.Number + 1,
		ParentHash:   parent.Hash,
		Timestamp:    timestamp,
		Transactions: txs,
	}
	b.Hash = blockHash(b)
	n.st.blocks = append(n.st.blocks, b)

	metricBlocksMined.Inc()
	metricChainHeight.Set(float64(b.Number))
	log.Info("Mined block", "number", b.Number, "hash", b.Hash, "timestamp", b.Timestamp, "txs", len(txs))
	return b
}

// nextTimestamp stamps the block about to be mined: the pending timestamp if
// one was set, otherwise the shifted wall clock, and always past the parent.
func (n *Node) nextTimestamp() uint64 {
	now := n.now().Unix()
	if n.pending != nil {
		ts := *n.pending
		n.pending = nil
		n.offset = int64(ts) - now
		return ts
	}

	parent := n.st.latest().Timestamp
	ts := uint64(now + n.offset)
	if ts <= parent {
		ts = parent + 1
	}
	return ts
}

func blockHash(b *domain.Block) common.Hash {
	enc, err := rlp.EncodeToBytes([]any{b.ParentHash, b.Number, b.Timestamp, b.Transactions})
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(enc)
}

func unsignedTxHash(from common.Address, nonce uint64, to *common.Address, data []byte) common.Hash {
	var recipient []byte
	if to != nil {
		recipient = to.Bytes()
	}
	enc, err := rlp.EncodeToBytes([]any{from, nonce, recipient, data})
	if err != nil {
		panic(err)
	}
	return crypto.Keccak256Hash(enc)
}
