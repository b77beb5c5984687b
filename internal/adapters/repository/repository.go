// Package repository picks the journal backend for the commands.
package repository

import (
	"context"
	"database/sql"

	"github.com/ethereum/go-ethereum/log"
	"github.com/vncsmyrnk/devchain/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/devchain/internal/adapters/repository/sqlite"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
)

// DefaultJournal is the SQLite file used when postgres is not configured.
const DefaultJournal = "devchain.db"

type Store struct {
	Deployments ports.DeploymentRepository
	Tallies     ports.TallyRepository

	db *sql.DB
}

// Open connects to postgres when pg names a host, otherwise to the SQLite
// journal at path.
func Open(ctx context.Context, pg postgres.Config, path string) (*Store, error) {
	if pg.Host != "" {
		db, err := postgres.Open(ctx, pg.ConnString())
		if err != nil {
			return nil, err
		}
		log.Info("Using postgres journal", "host", pg.Host, "db", pg.Name)
		return &Store{
			Deployments: postgres.NewDeploymentRepository(db),
			Tallies:     postgres.NewTallyRepository(db),
			db:          db,
		}, nil
	}

	db, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	log.Info("Using sqlite journal", "path", path)
	return &Store{
		Deployments: sqlite.NewDeploymentRepository(db),
		Tallies:     sqlite.NewTallyRepository(db),
		db:          db,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
