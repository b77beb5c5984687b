package services

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/devchain/internal/adapters/artifacts"
	"github.com/vncsmyrnk/devchain/internal/adapters/contracts"
	"github.com/vncsmyrnk/devchain/internal/adapters/devnet"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
)

type testEnv struct {
	node      *devnet.Node
	artifacts ports.ArtifactStore
	accounts  []common.Address
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := artifacts.NewEmbeddedStore()
	registry, err := contracts.NewRegistry(store)
	require.NoError(t, err)
	node, err := devnet.New(registry)
	require.NoError(t, err)

	accounts, err := node.Accounts(context.Background())
	require.NoError(t, err)

	return &testEnv{node: node, artifacts: store, accounts: accounts}
}
