package contract

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFeeExample(t *testing.T) {
	fee, escrowed, err := SplitFee(uint256.NewInt(1000), 100, 10_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), fee.Uint64())
	assert.Equal(t, uint64(990), escrowed.Uint64())
}

func TestSplitFeeSumsToCapacity(t *testing.T) {
	huge, err := uint256.FromDecimal("11579208923731619542357098500868790785326998466564056403945758400791312963")
	require.NoError(t, err)
	capacities := []*uint256.Int{
		uint256.NewInt(0),
		uint256.NewInt(1),
		uint256.NewInt(999),
		uint256.NewInt(1000),
		uint256.NewInt(123_456_789_012_345),
		huge,
	}
	const den = DefaultFeeDenominator
	for _, capacity := range capacities {
		for num := uint64(0); num <= den; num++ {
			fee, escrowed, err := SplitFee(capacity, num, den)
			require.NoError(t, err, "cap=%s num=%d", capacity.Dec(), num)
			sum, overflow := new(uint256.Int).AddOverflow(fee, escrowed)
			require.False(t, overflow)
			require.True(t, sum.Eq(capacity), "cap=%s num=%d fee=%s escrowed=%s", capacity.Dec(), num, fee.Dec(), escrowed.Dec())
		}
	}
}

func TestSplitFeeRejects(t *testing.T) {
	_, _, err := SplitFee(uint256.NewInt(10), 10_001, 10_000)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = SplitFee(uint256.NewInt(10), 0, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	max := new(uint256.Int).SetAllOne()
	_, _, err = SplitFee(max, 2, 10_000)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestClaimAmount(t *testing.T) {
	// 40 pricing units at 50% is 20; at 20 units per whole token with two
	// decimals that is 1.00 token, i.e. 100 base units
	got, err := ClaimAmount(uint256.NewInt(40), 5_000, 2, uint256.NewInt(20))
	require.NoError(t, err)
	assert.Equal(t, uint64(100), got.Uint64())

	got, err = ClaimAmount(uint256.NewInt(3), 3_333, 0, uint256.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got.Uint64(), "truncates toward zero")

	_, err = ClaimAmount(uint256.NewInt(40), 5_000, 2, new(uint256.Int))
	assert.ErrorIs(t, err, ErrOverflow, "zero price")

	_, err = ClaimAmount(uint256.NewInt(40), 5_000, 78, uint256.NewInt(1))
	assert.ErrorIs(t, err, ErrOverflow, "decimals beyond 256 bits")

	_, err = ClaimAmount(new(uint256.Int).SetAllOne(), 5_000, 0, uint256.NewInt(1))
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestCheckedMath(t *testing.T) {
	max := new(uint256.Int).SetAllOne()
	_, err := checkedAdd(max, uint256.NewInt(1))
	assert.ErrorIs(t, err, ErrOverflow)
	_, err = checkedSub(uint256.NewInt(1), uint256.NewInt(2))
	assert.ErrorIs(t, err, ErrOverflow)
	_, err = checkedMul(max, uint256.NewInt(2))
	assert.ErrorIs(t, err, ErrOverflow)
	_, err = checkedDiv(max, new(uint256.Int))
	assert.ErrorIs(t, err, ErrOverflow)

	p, err := pow10(77)
	require.NoError(t, err)
	assert.Equal(t, 78, len(p.Dec()))
}
