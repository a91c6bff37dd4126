package chain

import (
	"errors"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// 0x followed by 40 hex chars, any case
	addressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	txHashRegex  = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

	ErrInvalidAddress = errors.New("invalid address")
	ErrInvalidTxHash  = errors.New("invalid transaction hash")
)

// ValidateAddress reports whether address is a 0x-prefixed 20-byte hex string.
// Mixed case is accepted without checksum validation.
func ValidateAddress(address string) bool {
	return addressRegex.MatchString(address)
}

// NormalizeAddress returns the lower-cased form used as canonical user id.
func NormalizeAddress(address string) (string, error) {
	if !ValidateAddress(address) {
		return "", ErrInvalidAddress
	}
	return strings.ToLower(address), nil
}

// ParseAddress validates and converts address.
func ParseAddress(address string) (common.Address, error) {
	if !ValidateAddress(address) {
		return common.Address{}, ErrInvalidAddress
	}
	return common.HexToAddress(address), nil
}

// ParseTxHash validates and converts a 32-byte transaction hash.
func ParseTxHash(hash string) (common.Hash, error) {
	if !txHashRegex.MatchString(hash) {
		return common.Hash{}, ErrInvalidTxHash
	}
	return common.HexToHash(hash), nil
}

// SameAddress compares two hex addresses case-insensitively.
func SameAddress(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}
