package contract

import "github.com/holiman/uint256"

// All amount math goes through these helpers. Any overflow, underflow or
// division by zero aborts the call.

func checkedAdd(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, ErrOverflow.With("%s + %s", x.Dec(), y.Dec())
	}
	return z, nil
}

func checkedSub(x, y *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, ErrOverflow.With("%s - %s", x.Dec(), y.Dec())
	}
	return z, nil
}

func checkedMul(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, ErrOverflow.With("%s * %s", x.Dec(), y.Dec())
	}
	return z, nil
}

func checkedDiv(x, y *uint256.Int) (*uint256.Int, error) {
	if y.IsZero() {
		return nil, ErrOverflow.With("division by zero")
	}
	return new(uint256.Int).Div(x, y), nil
}

// mulDiv computes x * num / den, truncating.
func mulDiv(x, num, den *uint256.Int) (*uint256.Int, error) {
	p, err := checkedMul(x, num)
	if err != nil {
		return nil, err
	}
	return checkedDiv(p, den)
}

// pow10 returns 10^d for token decimal scaling.
func pow10(d uint8) (*uint256.Int, error) {
	if d > maxDecimals {
		return nil, ErrOverflow.With("10^%d", d)
	}
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(d))), nil
}

func u64(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

func zeroIfNil(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}
