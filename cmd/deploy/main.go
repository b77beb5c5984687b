// deploy runs a deployment module against a node and journals the created
// contracts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/joho/godotenv"

	"github.com/vncsmyrnk/devchain/internal/adapters/artifacts"
	"github.com/vncsmyrnk/devchain/internal/adapters/ethrpc"
	"github.com/vncsmyrnk/devchain/internal/adapters/repository"
	"github.com/vncsmyrnk/devchain/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
	"github.com/vncsmyrnk/devchain/internal/core/services"
	"github.com/vncsmyrnk/devchain/internal/logging"
	"github.com/vncsmyrnk/devchain/internal/modules"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found")
	}

	var (
		moduleID, url, journal, keyHex string
		verbosity                      int
	)
	flag.StringVar(&moduleID, "module", "ComputationsModule", "deployment module to run")
	flag.StringVar(&url, "url", envOr("DEVCHAIN_RPC_URL", ethrpc.DefaultURL), "JSON-RPC endpoint")
	flag.StringVar(&journal, "journal", envOr("DEVCHAIN_JOURNAL", repository.DefaultJournal), "SQLite journal, used when POSTGRES_HOST is unset")
	flag.StringVar(&keyHex, "key", os.Getenv("DEVCHAIN_DEPLOYER_KEY"), "hex private key signing the deployments (default: first node account)")
	flag.IntVar(&verbosity, "verbosity", logging.DefaultVerbosity, "log verbosity (0-5)")
	flag.Parse()

	logging.Init(verbosity)

	module, err := modules.Lookup(moduleID)
	if err != nil {
		log.Crit("Unknown module", "module", moduleID, "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var (
		opts []ethrpc.Option
		from *common.Address
	)
	if keyHex != "" {
		key, err := crypto.HexToECDSA(trimHexPrefix(keyHex))
		if err != nil {
			log.Crit("Invalid deployer key", "err", err)
		}
		addr := crypto.PubkeyToAddress(key.PublicKey)
		opts = append(opts, ethrpc.WithKeys(key))
		from = &addr
	}

	client, err := ethrpc.Dial(ctx, url, opts...)
	if err != nil {
		log.Crit("Failed to connect", "url", url, "err", err)
	}
	defer client.Close()

	store, err := repository.Open(ctx, postgres.ConfigFromEnv(), journal)
	if err != nil {
		log.Crit("Failed to open journal", "err", err)
	}
	defer store.Close()

	deployService := services.NewDeployService(client, artifacts.NewEmbeddedStore(), store.Deployments)
	result, err := deployService.Deploy(ctx, ports.DeployInput{Module: module, From: from})
	if err != nil {
		log.Crit("Deployment failed", "module", moduleID, "err", err)
	}

	fmt.Printf("Deployed Addresses\n\n")
	for _, f := range module.Futures {
		fmt.Printf("%s - %s\n", f.ID, result.Contracts[f.ID].Address)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
