package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
)

type tallyRepository struct {
	db *sql.DB
}

func NewTallyRepository(db *sql.DB) ports.TallyRepository {
	return &tallyRepository{
		db: db,
	}
}

func (r *tallyRepository) SaveTallies(ctx context.Context, tallies []domain.VoteTally) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO vote_tallies (chain_id, contract, candidate_index, vote_count, last_block, last_updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (chain_id, contract, candidate_index) DO UPDATE
		SET vote_count = excluded.vote_count,
		    last_block = excluded.last_block,
		    last_updated_at = CURRENT_TIMESTAMP;
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare tally upsert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tallies {
		_, err := stmt.ExecContext(ctx, int64(t.ChainID), t.Contract.Hex(), int64(t.CandidateIndex), int64(t.VoteCount), int64(t.LastBlock))
		if err != nil {
			return fmt.Errorf("failed to save tally of %s #%d: %w", t.Contract, t.CandidateIndex, err)
		}
	}

	return tx.Commit()
}

func (r *tallyRepository) GetTallies(ctx context.Context, chainID uint64, contract common.Address) ([]domain.VoteTally, error) {
	query := `
		SELECT candidate_index, vote_count, last_block
		FROM vote_tallies
		WHERE chain_id = ? AND contract = ?
		ORDER BY candidate_index
	`

	rows, err := r.db.QueryContext(ctx, query, int64(chainID), contract.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tallies: %w", err)
	}
	defer rows.Close()

	var tallies []domain.VoteTally
	for rows.Next() {
		var index, count, lastBlock int64
		if err := rows.Scan(&index, &count, &lastBlock); err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}
		tallies = append(tallies, domain.VoteTally{
			ChainID:        chainID,
			Contract:       contract,
			CandidateIndex: uint64(index),
			VoteCount:      uint64(count),
			LastBlock:      uint64(lastBlock),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tallies: %w", err)
	}

	return tallies, nil
}
