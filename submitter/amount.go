package submitter

import (
	"fmt"
	"math/big"
	"strings"

	"snap-vault/vaulterr"
)

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// ParseAmount convert a decimal ether string ("0.05") to wei. Empty
// input means no value attached. Validation happens here, before any
// network traffic, so a bad amount never reaches the wallet.
func ParseAmount(amount string) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return big.NewInt(0), nil
	}
	if strings.HasPrefix(amount, "-") {
		return nil, vaulterr.New(vaulterr.KindInvalidAmount, fmt.Sprintf("amount must not be negative: %q", amount))
	}

	intPart := amount
	fracPart := ""
	if idx := strings.IndexByte(amount, '.'); idx >= 0 {
		intPart, fracPart = amount[:idx], amount[idx+1:]
	}
	if intPart == "" && fracPart == "" {
		return nil, vaulterr.New(vaulterr.KindInvalidAmount, fmt.Sprintf("amount is not a number: %q", amount))
	}
	if len(fracPart) > 18 {
		return nil, vaulterr.New(vaulterr.KindInvalidAmount, fmt.Sprintf("amount has more than 18 decimal places: %q", amount))
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return nil, vaulterr.New(vaulterr.KindInvalidAmount, fmt.Sprintf("amount is not a number: %q", amount))
	}

	wei := new(big.Int)
	if intPart != "" {
		n, ok := new(big.Int).SetString(intPart, 10)
		if !ok {
			return nil, vaulterr.New(vaulterr.KindInvalidAmount, fmt.Sprintf("amount is not a number: %q", amount))
		}
		wei.Mul(n, weiPerEther)
	}
	if fracPart != "" {
		// Right-pad the fraction to 18 digits
		padded := fracPart + strings.Repeat("0", 18-len(fracPart))
		frac, ok := new(big.Int).SetString(padded, 10)
		if !ok {
			return nil, vaulterr.New(vaulterr.KindInvalidAmount, fmt.Sprintf("amount is not a number: %q", amount))
		}
		wei.Add(wei, frac)
	}
	return wei, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
