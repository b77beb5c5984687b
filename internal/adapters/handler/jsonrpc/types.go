package jsonrpc

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
)

// TransactionArgs are the arguments of eth_call and eth_sendTransaction.
// Gas and value fields are accepted and ignored.
type TransactionArgs struct {
	From     *common.Address `json:"from"`
	To       *common.Address `json:"to"`
	Gas      *hexutil.Uint64 `json:"gas"`
	GasPrice *hexutil.Big    `json:"gasPrice"`
	Value    *hexutil.Big    `json:"value"`
	Data     *hexutil.Bytes  `json:"data"`
	Input    *hexutil.Bytes  `json:"input"`
}

func (args *TransactionArgs) data() ([]byte, error) {
	if args.Input != nil && args.Data != nil && string(*args.Input) != string(*args.Data) {
		return nil, &invalidParamsError{msg: `both "data" and "input" are set and not equal`}
	}
	if args.Input != nil {
		return *args.Input, nil
	}
	if args.Data != nil {
		return *args.Data, nil
	}
	return nil, nil
}

func (args *TransactionArgs) from() common.Address {
	if args.From == nil {
		return common.Address{}
	}
	return *args.From
}

// FilterArgs is the eth_getLogs filter. Only the first topic position can be
// constrained, to a single hash.
type FilterArgs struct {
	FromBlock *rpc.BlockNumber `json:"fromBlock"`
	ToBlock   *rpc.BlockNumber `json:"toBlock"`
	Address   addressList      `json:"address"`
	Topics    []topicList      `json:"topics"`
}

type addressList []common.Address

func (l *addressList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if strings.HasPrefix(strings.TrimSpace(string(data)), "[") {
		var addrs []common.Address
		if err := json.Unmarshal(data, &addrs); err != nil {
			return err
		}
		*l = addrs
		return nil
	}
	var addr common.Address
	if err := json.Unmarshal(data, &addr); err != nil {
		return err
	}
	*l = addressList{addr}
	return nil
}

type topicList []common.Hash

func (l *topicList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if strings.HasPrefix(strings.TrimSpace(string(data)), "[") {
		var hashes []common.Hash
		if err := json.Unmarshal(data, &hashes); err != nil {
			return err
		}
		*l = hashes
		return nil
	}
	var h common.Hash
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}
	*l = topicList{h}
	return nil
}

func (args *FilterArgs) toFilter(latest uint64) (domain.LogFilter, error) {
	filter := domain.LogFilter{Addresses: args.Address}
	if args.FromBlock != nil {
		filter.FromBlock = resolveBlockNumber(*args.FromBlock, latest)
	}
	if args.ToBlock != nil {
		to := resolveBlockNumber(*args.ToBlock, latest)
		filter.ToBlock = &to
	}
	for i, topics := range args.Topics {
		switch {
		case len(topics) == 0:
		case i == 0 && len(topics) == 1:
			filter.Topic = &topics[0]
		default:
			return domain.LogFilter{}, &invalidParamsError{msg: "only a single event signature topic is supported"}
		}
	}
	return filter, nil
}

// resolveBlockNumber maps the latest, pending, safe and finalized tags to
// the head of the chain.
func resolveBlockNumber(n rpc.BlockNumber, latest uint64) uint64 {
	switch {
	case n == rpc.EarliestBlockNumber:
		return 0
	case n < 0:
		return latest
	}
	return uint64(n)
}

// quantity accepts both JSON numbers and hex strings.
type quantity uint64

func (q *quantity) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			v, err := hexutil.DecodeUint64(s)
			if err != nil {
				return err
			}
			*q = quantity(v)
			return nil
		}
		data = []byte(s)
	}
	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid quantity %s: %w", data, err)
	}
	*q = quantity(v)
	return nil
}

func marshalBlock(b *domain.Block) map[string]any {
	txs := b.Transactions
	if txs == nil {
		txs = []common.Hash{}
	}
	return map[string]any{
		"number":       hexutil.Uint64(b.Number),
		"hash":         b.Hash,
		"parentHash":   b.ParentHash,
		"timestamp":    hexutil.Uint64(b.Timestamp),
		"transactions": txs,
		"miner":        common.Address{},
		"gasLimit":     hexutil.Uint64(blockGasLimit),
		"gasUsed":      hexutil.Uint64(0),
		"difficulty":   (*hexutil.Big)(common.Big0),
		"extraData":    hexutil.Bytes{},
		"logsBloom":    types.Bloom{},
	}
}

func marshalReceipt(r *domain.Receipt) map[string]any {
	logs := r.Logs
	if logs == nil {
		logs = []*types.Log{}
	}
	var bloom types.Bloom
	for _, l := range logs {
		bloom.Add(l.Address.Bytes())
		for _, t := range l.Topics {
			bloom.Add(t.Bytes())
		}
	}

	return map[string]any{
		"transactionHash":   r.TxHash,
		"transactionIndex":  hexutil.Uint64(0),
		"from":              r.From,
		"to":                r.To,
		"blockNumber":       hexutil.Uint64(r.BlockNumber),
		"blockHash":         r.BlockHash,
		"status":            hexutil.Uint64(r.Status),
		"contractAddress":   r.ContractAddress,
		"logs":              logs,
		"logsBloom":         bloom,
		"type":              hexutil.Uint64(types.LegacyTxType),
		"gasUsed":           hexutil.Uint64(0),
		"cumulativeGasUsed": hexutil.Uint64(0),
		"effectiveGasPrice": (*hexutil.Big)(common.Big0),
	}
}
