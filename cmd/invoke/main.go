// invoke calls Computations.sum on a deployed contract and prints the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/joho/godotenv"

	"github.com/vncsmyrnk/devchain/internal/adapters/artifacts"
	"github.com/vncsmyrnk/devchain/internal/adapters/ethrpc"
	"github.com/vncsmyrnk/devchain/internal/core/services"
	"github.com/vncsmyrnk/devchain/internal/logging"
)

// DefaultContract is where the first deployment from the first development
// account lands.
const DefaultContract = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found")
	}

	var (
		url, address, artifactsDir string
		a, b                       int64
		verbosity                  int
	)
	flag.StringVar(&url, "url", envOr("DEVCHAIN_RPC_URL", ethrpc.DefaultURL), "JSON-RPC endpoint")
	flag.StringVar(&address, "address", envOr("COMPUTATIONS_ADDRESS", DefaultContract), "Computations contract address")
	flag.StringVar(&artifactsDir, "artifacts", os.Getenv("DEVCHAIN_ARTIFACTS"), "artifacts directory (default: built-in)")
	flag.Int64Var(&a, "a", 90, "first operand")
	flag.Int64Var(&b, "b", 32, "second operand")
	flag.IntVar(&verbosity, "verbosity", 2, "log verbosity (0-5)")
	flag.Parse()

	logging.Init(verbosity)

	if !common.IsHexAddress(address) {
		log.Crit("Invalid contract address", "address", address)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := ethrpc.Dial(ctx, url)
	if err != nil {
		log.Crit("Failed to connect", "url", url, "err", err)
	}
	defer client.Close()

	store := artifacts.NewEmbeddedStore()
	if artifactsDir != "" {
		store = artifacts.NewDirStore(artifactsDir)
	}

	computations := services.NewComputationsService(client, store)
	sum, err := computations.Sum(ctx, common.HexToAddress(address), big.NewInt(a), big.NewInt(b))
	if err != nil {
		log.Crit("Failed to call sum", "err", err)
	}

	fmt.Printf("The sum of %d and %d is: %s\n", a, b, sum)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
