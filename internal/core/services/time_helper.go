package services

import (
	"context"
	"fmt"

	"github.com/vncsmyrnk/devchain/internal/core/ports"
)

// TimeHelper moves the chain clock the way tests need it.
type TimeHelper struct {
	chain ports.Chain
}

func NewTimeHelper(chain ports.Chain) *TimeHelper {
	return &TimeHelper{chain: chain}
}

// Latest returns the timestamp of the latest block.
func (h *TimeHelper) Latest(ctx context.Context) (uint64, error) {
	b, err := h.chain.LatestBlock(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return b.Timestamp, nil
}

// Increase mines a block seconds after the latest one and returns its
// timestamp.
func (h *TimeHelper) Increase(ctx context.Context, seconds uint64) (uint64, error) {
	latest, err := h.Latest(ctx)
	if err != nil {
		return 0, err
	}
	if err := h.IncreaseTo(ctx, latest+seconds); err != nil {
		return 0, err
	}
	return latest + seconds, nil
}

// IncreaseTo mines a block with the given timestamp.
func (h *TimeHelper) IncreaseTo(ctx context.Context, timestamp uint64) error {
	if err := h.chain.SetNextBlockTimestamp(ctx, timestamp); err != nil {
		return err
	}
	return h.chain.Mine(ctx)
}
