package graph

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ErrAddressNotHex indicates the raw value is not a 20-byte hex address
var ErrAddressNotHex = errors.New("address must be a valid hex address")

// Address is a validated indexer address in its canonical lowercase hex form,
// matching the ID format the ingestion pipeline stores
type Address string

// ParseAddress validates a raw address string and canonicalizes it
func ParseAddress(raw string) (Address, error) {
	if !common.IsHexAddress(raw) {
		return "", ErrAddressNotHex
	}

	return Address(strings.ToLower(common.HexToAddress(raw).Hex())), nil
}

// String returns the canonical lowercase hex form
func (a Address) String() string {
	return string(a)
}
