package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newDeployment(chainID uint64, module, name string, addr common.Address) *domain.DeployedContract {
	return &domain.DeployedContract{
		ID:           uuid.New(),
		ChainID:      chainID,
		ModuleID:     module,
		FutureID:     module + "#" + name,
		ContractName: name,
		Address:      addr,
		TxHash:       common.HexToHash("0x01"),
		DeployedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

func TestDeploymentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewDeploymentRepository(openTestDB(t))

	addr := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	d := newDeployment(31337, "ComputationsModule", "Computations", addr)
	require.NoError(t, repo.Save(ctx, d))
	require.NoError(t, repo.Save(ctx, newDeployment(1, "ComputationsModule", "Computations", addr)))

	t.Run("list by module is scoped to the chain", func(t *testing.T) {
		got, err := repo.ListByModule(ctx, 31337, "ComputationsModule")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, d.ID, got[0].ID)
		assert.Equal(t, addr, got[0].Address)
		assert.Equal(t, d.FutureID, got[0].FutureID)
		assert.Equal(t, d.TxHash, got[0].TxHash)
		assert.True(t, d.DeployedAt.Equal(got[0].DeployedAt))
	})

	t.Run("list by contract", func(t *testing.T) {
		got, err := repo.ListByContract(ctx, 31337, "Computations")
		require.NoError(t, err)
		assert.Len(t, got, 1)

		got, err = repo.ListByContract(ctx, 31337, "Voting")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("redeploying a future replaces its entry", func(t *testing.T) {
		other := common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
		require.NoError(t, repo.Save(ctx, newDeployment(31337, "ComputationsModule", "Computations", other)))

		got, err := repo.ListByModule(ctx, 31337, "ComputationsModule")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, other, got[0].Address)
	})
}

func TestTallyRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewTallyRepository(openTestDB(t))
	contract := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

	tallies := []domain.VoteTally{
		{ChainID: 31337, Contract: contract, CandidateIndex: 0, VoteCount: 2, LastBlock: 5},
		{ChainID: 31337, Contract: contract, CandidateIndex: 1, VoteCount: 1, LastBlock: 5},
	}
	require.NoError(t, repo.SaveTallies(ctx, tallies))

	got, err := repo.GetTallies(ctx, 31337, contract)
	require.NoError(t, err)
	assert.Equal(t, tallies, got)

	tallies[1].VoteCount = 3
	tallies[0].LastBlock, tallies[1].LastBlock = 9, 9
	require.NoError(t, repo.SaveTallies(ctx, tallies))

	got, err = repo.GetTallies(ctx, 31337, contract)
	require.NoError(t, err)
	assert.Equal(t, tallies, got)

	got, err = repo.GetTallies(ctx, 1, contract)
	require.NoError(t, err)
	assert.Empty(t, got)
}
