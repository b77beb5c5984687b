package ports

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type ComputationsService interface {
	Sum(ctx context.Context, contract common.Address, a, b *big.Int) (*big.Int, error)
}
