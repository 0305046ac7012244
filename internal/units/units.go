// Package units converts user-entered decimal amounts into on-chain base units.
package units

import (
	"fmt"
	"math/big"
	"strings"
)

// Decimals is the number of base-unit decimal places for the native asset.
const Decimals = 18

// weiPerEther is 10^18, the scaling factor between display units and wei.
var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil)

// ToWei converts a decimal string amount (e.g. "0.01") into its integer
// base-unit representation scaled by 10^18.
//
// The whole part is required: ".5" and "" are errors, not zero-filled.
// The fractional part is right-padded with zeros to 18 digits and truncated
// at 18 digits; no rounding is performed. Negative amounts are out of
// contract and rejected.
func ToWei(amount string) (*big.Int, error) {
	parts := strings.SplitN(amount, ".", 3)
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid amount %q: more than one decimal point", amount)
	}

	whole := parts[0]
	if whole == "" {
		return nil, fmt.Errorf("invalid amount %q: missing whole part", amount)
	}
	if !isDigits(whole) {
		return nil, fmt.Errorf("invalid amount %q: whole part is not a positive integer", amount)
	}

	wholeInt, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q: cannot parse whole part", amount)
	}
	result := new(big.Int).Mul(wholeInt, weiPerEther)

	if len(parts) == 2 && parts[1] != "" {
		frac := parts[1]
		if !isDigits(frac) {
			return nil, fmt.Errorf("invalid amount %q: fractional part is not numeric", amount)
		}
		// Pad right to 18 digits, then truncate to 18.
		if len(frac) < Decimals {
			frac += strings.Repeat("0", Decimals-len(frac))
		}
		frac = frac[:Decimals]

		fracInt, ok := new(big.Int).SetString(frac, 10)
		if !ok {
			return nil, fmt.Errorf("invalid amount %q: cannot parse fractional part", amount)
		}
		result.Add(result, fracInt)
	}

	return result, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
