package services

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/devchain/internal/adapters/repository/sqlite"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
	"github.com/vncsmyrnk/devchain/internal/modules"
)

func newJournal(t *testing.T) ports.DeploymentRepository {
	t.Helper()

	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlite.NewDeploymentRepository(db)
}

func TestDeployComputationsModule(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	service := NewDeployService(env.node, env.artifacts, newJournal(t))

	result, err := service.Deploy(ctx, ports.DeployInput{Module: modules.ComputationsModule})
	require.NoError(t, err)
	assert.Equal(t, uint64(31337), result.ChainID)

	d := result.Contracts["ComputationsModule#Computations"]
	require.NotNil(t, d)
	assert.Equal(t, common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"), d.Address)
	assert.Equal(t, "Computations", d.ContractName)
	assert.False(t, result.Reused[d.FutureID])

	t.Run("journaled contracts are reused", func(t *testing.T) {
		again, err := service.Deploy(ctx, ports.DeployInput{Module: modules.ComputationsModule})
		require.NoError(t, err)
		assert.True(t, again.Reused[d.FutureID])
		assert.Equal(t, d.Address, again.Contracts[d.FutureID].Address)

		latest, err := env.node.LatestBlock(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), latest.Number)
	})

	t.Run("deployments are listed", func(t *testing.T) {
		list, err := service.Deployments(ctx, "ComputationsModule")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, d.ID, list[0].ID)
	})
}

func TestDeployRedeploysWhenCodeIsGone(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	service := NewDeployService(env.node, env.artifacts, newJournal(t))

	snapshot, err := env.node.Snapshot(ctx)
	require.NoError(t, err)

	first, err := service.Deploy(ctx, ports.DeployInput{Module: modules.ComputationsModule})
	require.NoError(t, err)

	ok, err := env.node.Revert(ctx, snapshot)
	require.NoError(t, err)
	require.True(t, ok)

	// a different sender so the address differs from the journaled one
	from := env.accounts[1]
	second, err := service.Deploy(ctx, ports.DeployInput{Module: modules.ComputationsModule, From: &from})
	require.NoError(t, err)

	id := "ComputationsModule#Computations"
	assert.False(t, second.Reused[id])
	assert.NotEqual(t, first.Contracts[id].Address, second.Contracts[id].Address)

	list, err := service.Deployments(ctx, "ComputationsModule")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, second.Contracts[id].Address, list[0].Address)
}

func TestDeployRedeploysWhenAnotherContractTookTheAddress(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	service := NewDeployService(env.node, env.artifacts, newJournal(t))

	snapshot, err := env.node.Snapshot(ctx)
	require.NoError(t, err)

	first, err := service.Deploy(ctx, ports.DeployInput{Module: modules.ComputationsModule})
	require.NoError(t, err)

	ok, err := env.node.Revert(ctx, snapshot)
	require.NoError(t, err)
	require.True(t, ok)

	// same sender and nonce, so the Voting lands on the journaled address
	latest, err := env.node.LatestBlock(ctx)
	require.NoError(t, err)
	names, err := domain.EncodeBytes32Strings("Alice", "Bob")
	require.NoError(t, err)
	voting, err := NewVotingService(env.node, env.artifacts).Deploy(ctx, ports.DeployVotingInput{
		From:       env.accounts[0],
		Candidates: names,
		TimeLimit:  latest.Timestamp + 3600,
	})
	require.NoError(t, err)

	id := "ComputationsModule#Computations"
	require.Equal(t, first.Contracts[id].Address, voting)

	second, err := service.Deploy(ctx, ports.DeployInput{Module: modules.ComputationsModule})
	require.NoError(t, err)
	assert.False(t, second.Reused[id])
	assert.NotEqual(t, voting, second.Contracts[id].Address)

	sum, err := NewComputationsService(env.node, env.artifacts).Sum(ctx, second.Contracts[id].Address, big.NewInt(90), big.NewInt(32))
	require.NoError(t, err)
	assert.Equal(t, "122", sum.String())
}

func TestDeployVotingModule(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	service := NewDeployService(env.node, env.artifacts, newJournal(t))

	latest, err := env.node.LatestBlock(ctx)
	require.NoError(t, err)

	module, err := modules.NewVotingModule([]string{"Alice", "Bob"}, latest.Timestamp+3600)
	require.NoError(t, err)
	result, err := service.Deploy(ctx, ports.DeployInput{Module: module})
	require.NoError(t, err)

	status, err := NewVotingService(env.node, env.artifacts).Status(ctx, result.Contracts["VotingModule#Voting"].Address)
	require.NoError(t, err)
	assert.Len(t, status.Candidates, 2)

	expired, err := modules.NewVotingModule([]string{"Alice", "Bob"}, 1)
	require.NoError(t, err)
	_, err = NewDeployService(env.node, env.artifacts, newJournal(t)).Deploy(ctx, ports.DeployInput{Module: expired})
	assert.ErrorIs(t, err, domain.ErrTimeLimitInPast)
}

func TestDeployRequiresModule(t *testing.T) {
	env := newTestEnv(t)
	service := NewDeployService(env.node, env.artifacts, newJournal(t))

	_, err := service.Deploy(context.Background(), ports.DeployInput{})
	assert.ErrorIs(t, err, domain.ErrModuleNotFound)
}
