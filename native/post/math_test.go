package post

import (
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestAddU64Overflow(t *testing.T) {
	sum, err := addU64(math.MaxUint64-1, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), sum)

	_, err = addU64(math.MaxUint64, 1)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestAddU16Overflow(t *testing.T) {
	sum, err := addU16(math.MaxUint16-1, 1)
	require.NoError(t, err)
	require.Equal(t, uint16(math.MaxUint16), sum)

	_, err = addU16(math.MaxUint16, 1)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestAmountArithmetic(t *testing.T) {
	max := new(uint256.Int).Not(uint256.NewInt(0))

	sum, err := addAmount(uint256.NewInt(2), uint256.NewInt(3))
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(5), sum)
	_, err = addAmount(max, uint256.NewInt(1))
	require.ErrorIs(t, err, ErrOverflow)

	diff, err := subAmount(uint256.NewInt(5), uint256.NewInt(3))
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(2), diff)
	_, err = subAmount(uint256.NewInt(3), uint256.NewInt(5))
	require.ErrorIs(t, err, ErrOverflow)

	product, err := mulAmount(uint256.NewInt(7), 6)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(42), product)
	_, err = mulAmount(max, 2)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestMulRatioPrecision(t *testing.T) {
	// (max * 500_000) / 1_000_000 would overflow with a naive 256-bit
	// multiply; the 512-bit intermediate keeps it exact.
	max := new(uint256.Int).Not(uint256.NewInt(0))
	half, err := mulRatio(max, uint256.NewInt(500_000), ppmDenominator)
	require.NoError(t, err)
	require.Equal(t, new(uint256.Int).Rsh(max, 1), half)

	// A ratio above one overflows once the quotient exceeds 256 bits.
	_, err = mulRatio(max, uint256.NewInt(2_000_000), ppmDenominator)
	require.ErrorIs(t, err, ErrOverflow)

	small, err := mulRatio(uint256.NewInt(1), uint256.NewInt(1), ppmDenominator)
	require.NoError(t, err)
	require.True(t, small.IsZero())
}
