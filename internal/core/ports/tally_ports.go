package ports

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
)

type TallyRepository interface {
	SaveTallies(ctx context.Context, tallies []domain.VoteTally) error
	GetTallies(ctx context.Context, chainID uint64, contract common.Address) ([]domain.VoteTally, error)
}

type TallyService interface {
	TallyAll(ctx context.Context) error
	Tally(ctx context.Context, contracts ...common.Address) error
}
