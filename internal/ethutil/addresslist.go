// Package ethutil provides helpers for working with hex account addresses.
package ethutil

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ParseAddressList parses and normalizes a list of hex addresses. Duplicates
// are ignored (first occurrence wins). Returns an error on the first invalid
// entry.
func ParseAddressList(raw []string) ([]common.Address, error) {
	out := make([]common.Address, 0, len(raw))
	seen := make(map[common.Address]struct{}, len(raw))
	for _, part := range raw {
		s := strings.TrimSpace(part)
		if s == "" {
			continue
		}
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("ethutil: invalid hex address %q", s)
		}

		addr := common.HexToAddress(s)
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	return out, nil
}

// Normalize returns the canonical lowercase form of a hex address, or the
// input unchanged when it is not a valid address. The exchange reports maker
// and taker fields in inconsistent casing, so comparisons run on this form.
func Normalize(addr string) string {
	if !common.IsHexAddress(addr) {
		return strings.ToLower(addr)
	}
	return strings.ToLower(common.HexToAddress(addr).Hex())
}

// Equal reports whether two hex addresses refer to the same account,
// ignoring case.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
