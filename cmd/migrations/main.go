package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/vncsmyrnk/devchain/internal/adapters/repository/postgres"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("a migration name is required, or \"up\" to apply every migration.")
	}
	migrationName := os.Args[1]

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	ctx := context.Background()
	db, err := postgres.Open(ctx, postgres.ConfigFromEnv().ConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if migrationName == "up" {
		if err := postgres.MigrateUp(ctx, db); err != nil {
			log.Fatal(err)
		}
		fmt.Println("Migrations executed successfully.")
		return
	}

	fileContent, err := postgres.Migration(migrationName)
	if err != nil {
		log.Fatal(err)
	}

	if _, err := db.ExecContext(ctx, string(fileContent)); err != nil {
		log.Fatalf("Failed to execute SQL file: %v", err)
	}

	fmt.Println("Migration file executed successfully.")
}
