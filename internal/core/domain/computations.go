package domain

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Sum adds two uint256 values with checked arithmetic.
func Sum(a, b *big.Int) (*big.Int, error) {
	x, overflow := uint256.FromBig(a)
	if overflow || a.Sign() < 0 {
		return nil, ErrArithmeticOverflow
	}
	y, overflow := uint256.FromBig(b)
	if overflow || b.Sign() < 0 {
		return nil, ErrArithmeticOverflow
	}

	var z uint256.Int
	if _, overflow := z.AddOverflow(x, y); overflow {
		return nil, ErrArithmeticOverflow
	}
	return z.ToBig(), nil
}
