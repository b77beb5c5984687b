package ethrpc

import (
	"context"
	"math/big"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/devchain/internal/adapters/artifacts"
	"github.com/vncsmyrnk/devchain/internal/adapters/contracts"
	"github.com/vncsmyrnk/devchain/internal/adapters/devnet"
	"github.com/vncsmyrnk/devchain/internal/adapters/handler/jsonrpc"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
	"github.com/vncsmyrnk/devchain/internal/core/services"
)

type testNode struct {
	node   *devnet.Node
	client *Client
	store  ports.ArtifactStore
}

func setup(t *testing.T, opts ...Option) *testNode {
	t.Helper()

	store := artifacts.NewEmbeddedStore()
	registry, err := contracts.NewRegistry(store)
	require.NoError(t, err)
	node, err := devnet.New(registry)
	require.NoError(t, err)

	server, err := jsonrpc.NewServer(node)
	require.NoError(t, err)
	t.Cleanup(server.Stop)
	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)

	client, err := Dial(context.Background(), ts.URL, opts...)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return &testNode{node: node, client: client, store: store}
}

func TestInvokeComputations(t *testing.T) {
	ctx := context.Background()
	tn := setup(t)

	id, err := tn.client.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(31337), id.Int64())

	accounts, err := tn.client.Accounts(ctx)
	require.NoError(t, err)

	comp, err := tn.store.Artifact(domain.ComputationsContract)
	require.NoError(t, err)
	addr, receipt, err := services.DeployContract(ctx, tn.client, accounts[0], comp)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"), addr)
	assert.Equal(t, domain.ReceiptStatusSuccessful, receipt.Status)

	sum, err := services.NewComputationsService(tn.client, tn.store).Sum(ctx, addr, big.NewInt(90), big.NewInt(32))
	require.NoError(t, err)
	assert.Equal(t, "122", sum.String())

	code, err := tn.client.CodeAt(ctx, addr)
	require.NoError(t, err)
	assert.NotEmpty(t, code)
}

func TestSignedTransactions(t *testing.T) {
	ctx := context.Background()
	key := mustDevKey(t, 5)
	tn := setup(t, WithKeys(key.PrivateKey))

	comp, err := tn.store.Artifact(domain.ComputationsContract)
	require.NoError(t, err)

	addr, receipt, err := services.DeployContract(ctx, tn.client, key.Address, comp)
	require.NoError(t, err)
	assert.Equal(t, key.Address, receipt.From)

	nonce, err := tn.node.NonceAt(ctx, key.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)

	code, err := tn.client.CodeAt(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, contracts.NativeBytecode("Computations"), code)
}

func TestRevertsAreDecoded(t *testing.T) {
	ctx := context.Background()
	key := mustDevKey(t, 5)
	tn := setup(t, WithKeys(key.PrivateKey))
	accounts, err := tn.client.Accounts(ctx)
	require.NoError(t, err)

	voting := services.NewVotingService(tn.client, tn.store)
	names, err := domain.EncodeBytes32Strings("John Doe", "Martin Luther")
	require.NoError(t, err)

	latest, err := tn.client.LatestBlock(ctx)
	require.NoError(t, err)

	_, err = voting.Deploy(ctx, ports.DeployVotingInput{From: accounts[0], Candidates: names[:1], TimeLimit: latest.Timestamp + 100})
	assert.ErrorIs(t, err, domain.ErrTooFewCandidates)

	addr, err := voting.Deploy(ctx, ports.DeployVotingInput{From: accounts[0], Candidates: names, TimeLimit: latest.Timestamp + 100})
	require.NoError(t, err)

	require.NoError(t, voting.Vote(ctx, ports.VoteInput{Contract: addr, Voter: key.Address, Index: big.NewInt(1)}))
	err = voting.Vote(ctx, ports.VoteInput{Contract: addr, Voter: key.Address, Index: big.NewInt(0)})
	assert.ErrorIs(t, err, domain.ErrAlreadyVoted)

	// signed reverts still come back with their receipt
	abi, err := tn.store.Artifact(domain.VotingContract)
	require.NoError(t, err)
	input, err := abi.ABI.Pack("vote", big.NewInt(7))
	require.NoError(t, err)
	receipt, err := tn.client.Transact(ctx, key.Address, &addr, input)
	assert.ErrorIs(t, err, domain.ErrInvalidCandidate)
	require.NotNil(t, receipt)
	assert.Equal(t, domain.ReceiptStatusFailed, receipt.Status)

	_, err = voting.Winner(ctx, addr)
	assert.ErrorIs(t, err, domain.ErrVotingNotEnded)
}

func TestTimeAndSnapshots(t *testing.T) {
	ctx := context.Background()
	tn := setup(t)

	start, err := tn.client.LatestBlock(ctx)
	require.NoError(t, err)

	id, err := tn.client.Snapshot(ctx)
	require.NoError(t, err)

	clock := services.NewTimeHelper(tn.client)
	ts, err := clock.Increase(ctx, 7200)
	require.NoError(t, err)
	assert.Equal(t, start.Timestamp+7200, ts)

	assert.ErrorIs(t, clock.IncreaseTo(ctx, ts), domain.ErrInvalidTimestamp)

	require.NoError(t, tn.client.IncreaseTime(ctx, 60))
	require.NoError(t, tn.client.Mine(ctx))
	latest, err := tn.client.LatestBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), latest.Number)
	assert.GreaterOrEqual(t, latest.Timestamp, ts+60)

	ok, err := tn.client.Revert(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	latest, err = tn.client.LatestBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, start.Hash, latest.Hash)
}

func TestFilterLogsOverRPC(t *testing.T) {
	ctx := context.Background()
	tn := setup(t)
	accounts, err := tn.client.Accounts(ctx)
	require.NoError(t, err)

	voting := services.NewVotingService(tn.client, tn.store)
	names, err := domain.EncodeBytes32Strings("a", "b")
	require.NoError(t, err)
	latest, err := tn.client.LatestBlock(ctx)
	require.NoError(t, err)
	addr, err := voting.Deploy(ctx, ports.DeployVotingInput{From: accounts[0], Candidates: names, TimeLimit: latest.Timestamp + 100})
	require.NoError(t, err)

	require.NoError(t, voting.Vote(ctx, ports.VoteInput{Contract: addr, Voter: accounts[1], Index: big.NewInt(1)}))

	artifact, err := tn.store.Artifact(domain.VotingContract)
	require.NoError(t, err)
	topic := artifact.ABI.Events[domain.VotedEvent].ID
	logs, err := tn.client.FilterLogs(ctx, domain.LogFilter{Addresses: []common.Address{addr}, Topic: &topic})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, common.BytesToHash(accounts[1].Bytes()), logs[0].Topics[1])
	assert.Equal(t, common.BigToHash(big.NewInt(1)), logs[0].Topics[2])
}

func mustDevKey(t *testing.T, i int) domain.Account {
	t.Helper()

	accounts, err := devnet.DevAccounts()
	require.NoError(t, err)
	return accounts[i]
}
