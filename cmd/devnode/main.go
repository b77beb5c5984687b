// devnode runs a local development chain with the native contracts and
// serves it over JSON-RPC.
package main

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vncsmyrnk/devchain/internal/adapters/artifacts"
	"github.com/vncsmyrnk/devchain/internal/adapters/contracts"
	"github.com/vncsmyrnk/devchain/internal/adapters/devnet"
	"github.com/vncsmyrnk/devchain/internal/adapters/handler/http"
	"github.com/vncsmyrnk/devchain/internal/adapters/handler/jsonrpc"
	"github.com/vncsmyrnk/devchain/internal/adapters/repository/sqlite"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
	"github.com/vncsmyrnk/devchain/internal/core/services"
	"github.com/vncsmyrnk/devchain/internal/logging"
	"github.com/vncsmyrnk/devchain/internal/modules"
)

func main() {
	app := cli.NewApp()
	app.Name = "devnode"
	app.Usage = "local development chain"
	app.Version = jsonrpc.ClientVersion
	app.Flags = []cli.Flag{
		addrFlag,
		chainIDFlag,
		artifactsFlag,
		journalFlag,
		verbosityFlag,
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	logging.Init(ctx.Int(verbosityFlag.Name))

	var store ports.ArtifactStore
	if dir := ctx.String(artifactsFlag.Name); dir != "" {
		store = artifacts.NewDirStore(dir)
	} else {
		store = artifacts.NewEmbeddedStore()
	}

	registry, err := contracts.NewRegistry(store)
	if err != nil {
		return fmt.Errorf("failed to load contracts: %w", err)
	}
	node, err := devnet.New(registry, devnet.WithChainID(ctx.Uint64(chainIDFlag.Name)))
	if err != nil {
		return err
	}

	rpcServer, err := jsonrpc.NewServer(node)
	if err != nil {
		return fmt.Errorf("failed to start rpc server: %w", err)
	}
	defer rpcServer.Stop()

	signalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(signalCtx, ctx.String(journalFlag.Name))
	if err != nil {
		return err
	}
	defer db.Close()

	votingService := services.NewVotingService(node, store)
	deployService := services.NewDeployService(node, store, sqlite.NewDeploymentRepository(db))

	handler := http.NewHandler(
		rpcServer,
		http.NewVotingHandler(votingService),
		http.NewDeploymentHandler(deployService, modules.Lookup),
	)
	server := &stdhttp.Server{Addr: ctx.String(addrFlag.Name), Handler: handler}

	printAccounts(node)

	errc := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errc <- err
		}
	}()
	log.Info("Started JSON-RPC server", "addr", server.Addr, "chainid", ctx.Uint64(chainIDFlag.Name))

	select {
	case err := <-errc:
		return err
	case <-signalCtx.Done():
	}
	fmt.Println("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func printAccounts(node *devnet.Node) {
	fmt.Println("Accounts")
	fmt.Println("========")
	fmt.Println()
	fmt.Println("WARNING: These accounts, and their private keys, are publicly known.")
	fmt.Println("Any funds sent to them on a live network WILL BE LOST.")
	fmt.Println()
	for i, a := range node.DevAccounts() {
		fmt.Printf("Account #%d: %s\n", i, a.Address)
		fmt.Printf("Private Key: 0x%x\n\n", crypto.FromECDSA(a.PrivateKey))
	}
}
