package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/vncsmyrnk/devchain/internal/adapters/artifacts"
	"github.com/vncsmyrnk/devchain/internal/adapters/ethrpc"
	"github.com/vncsmyrnk/devchain/internal/adapters/repository"
	"github.com/vncsmyrnk/devchain/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/devchain/internal/core/services"
	"github.com/vncsmyrnk/devchain/internal/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	pg := postgres.ConfigFromEnv()
	var url, journal, contract string

	flag.StringVar(&url, "url", envOr("DEVCHAIN_RPC_URL", ethrpc.DefaultURL), "JSON-RPC endpoint")
	flag.StringVar(&journal, "journal", envOr("DEVCHAIN_JOURNAL", repository.DefaultJournal), "SQLite journal, used when -db-host is empty")
	flag.StringVar(&contract, "contract", "", "tally a single Voting contract instead of every journaled one")
	flag.StringVar(&pg.Host, "db-host", pg.Host, "Database host")
	flag.StringVar(&pg.Port, "db-port", pg.Port, "Database port")
	flag.StringVar(&pg.User, "db-user", pg.User, "Database user")
	flag.StringVar(&pg.Password, "db-pass", pg.Password, "Database password")
	flag.StringVar(&pg.Name, "db-name", pg.Name, "Database name")
	flag.Parse()

	logging.Init(logging.DefaultVerbosity)

	// Use a timeout for the job execution to prevent it from hanging indefinitely
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, err := ethrpc.Dial(ctx, url)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	store, err := repository.Open(ctx, pg, journal)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	tallyService := services.NewTallyService(client, artifacts.NewEmbeddedStore(), store.Deployments, store.Tallies)

	log.Println("Starting vote tally job...")

	if contract != "" {
		if !common.IsHexAddress(contract) {
			log.Fatalf("Invalid contract address %q", contract)
		}
		err = tallyService.Tally(ctx, common.HexToAddress(contract))
	} else {
		err = tallyService.TallyAll(ctx)
	}
	if err != nil {
		log.Fatalf("Error tallying votes: %v", err)
	}

	log.Println("Vote tally completed successfully.")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
