package post

import (
	"math"

	"github.com/holiman/uint256"
)

// Checked arithmetic helpers. Every counter or money mutation goes through
// one of these; an out-of-range result fails the call with ErrOverflow
// instead of wrapping.

func zeroAmount() *uint256.Int {
	return uint256.NewInt(0)
}

func addU64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

func addU16(a, b uint16) (uint16, error) {
	if a > math.MaxUint16-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

func addAmount(a, b *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return sum, nil
}

func subAmount(a, b *uint256.Int) (*uint256.Int, error) {
	diff, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, ErrOverflow
	}
	return diff, nil
}

func mulAmount(a *uint256.Int, n uint64) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(a, uint256.NewInt(n))
	if overflow {
		return nil, ErrOverflow
	}
	return product, nil
}

// mulRatio computes a*num/den without losing precision to an early division.
// The 512-bit intermediate guards the multiply.
func mulRatio(a, num *uint256.Int, den uint64) (*uint256.Int, error) {
	result, overflow := new(uint256.Int).MulDivOverflow(a, num, uint256.NewInt(den))
	if overflow {
		return nil, ErrOverflow
	}
	return result, nil
}
