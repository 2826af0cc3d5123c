// Package felt handles Starknet field elements as they travel over JSON-RPC:
// hex strings, canonical 32-byte addresses, short strings and entrypoint selectors.
package felt

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// maxShortStringLen is the number of ASCII characters that fit into a single felt.
const maxShortStringLen = 31

var (
	// Prime is the Stark field modulus 2^251 + 17*2^192 + 1.
	Prime = func() *big.Int {
		p := new(big.Int).Lsh(big.NewInt(1), 251)
		p.Add(p, new(big.Int).Mul(big.NewInt(17), new(big.Int).Lsh(big.NewInt(1), 192)))
		return p.Add(p, big.NewInt(1))
	}()

	// addressBound is the exclusive upper bound of a valid contract address (2^251 - 256).
	addressBound = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 251), big.NewInt(256))

	// selectorMask keeps the lower 250 bits of a keccak digest.
	selectorMask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 250), big.NewInt(1))

	ErrInvalidFelt    = errors.New("invalid felt")
	ErrInvalidAddress = errors.New("invalid starknet address")
)

// Parse converts a 0x-prefixed hex or a decimal string into a field element.
func Parse(s string) (common.Hash, error) {
	v, err := ParseBig(s)
	if err != nil {
		return common.Hash{}, err
	}
	return common.BigToHash(v), nil
}

// ParseBig converts a 0x-prefixed hex or a decimal string into an integer in [0, Prime).
func ParseBig(s string) (*big.Int, error) {
	str := strings.TrimSpace(s)
	if str == "" {
		return nil, fmt.Errorf("%w: empty value", ErrInvalidFelt)
	}

	base := 10
	if strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "0X") {
		str = str[2:]
		base = 16
		if str == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidFelt, s)
		}
	}

	v, ok := new(big.Int).SetString(str, base)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFelt, s)
	}
	if v.Sign() < 0 || v.Cmp(Prime) >= 0 {
		return nil, fmt.Errorf("%w: %q out of field range", ErrInvalidFelt, s)
	}

	return v, nil
}

// ParseUint64 converts a felt string into a uint64, failing when it does not fit.
func ParseUint64(s string) (uint64, error) {
	v, err := ParseBig(s)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("%w: %q does not fit into uint64", ErrInvalidFelt, s)
	}
	return v.Uint64(), nil
}

// ParseAddress validates a contract address and returns it in its 32-byte form.
// Addresses with and without leading zero padding map to the same value.
func ParseAddress(s string) (common.Hash, error) {
	v, err := ParseBig(s)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if v.Cmp(addressBound) >= 0 {
		return common.Hash{}, fmt.Errorf("%w: %q out of range", ErrInvalidAddress, s)
	}
	return common.BigToHash(v), nil
}

// NormalizeAddress returns the canonical 0x-prefixed, 64 hex digit lowercase form of an address.
func NormalizeAddress(s string) (string, error) {
	addr, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	return addr.Hex(), nil
}

// EqualAddress reports whether two address strings denote the same contract.
// Malformed input never matches.
func EqualAddress(a, b string) bool {
	addrA, err := ParseAddress(a)
	if err != nil {
		return false
	}
	addrB, err := ParseAddress(b)
	if err != nil {
		return false
	}
	return addrA == addrB
}

// Equal reports whether two felt strings hold the same value regardless of padding.
func Equal(a, b string) bool {
	va, err := ParseBig(a)
	if err != nil {
		return false
	}
	vb, err := ParseBig(b)
	if err != nil {
		return false
	}
	return va.Cmp(vb) == 0
}

// ToHex renders a felt without leading zeros, the form used by Starknet JSON-RPC.
func ToHex(h common.Hash) string {
	return "0x" + h.Big().Text(16)
}

// Selector computes the starknet_keccak of an entrypoint or event name.
func Selector(name string) common.Hash {
	digest := new(big.Int).SetBytes(crypto.Keccak256([]byte(name)))
	return common.BigToHash(digest.And(digest, selectorMask))
}

// DecodeShortString interprets a felt as a Cairo short string (up to 31 ASCII characters).
func DecodeShortString(h common.Hash) string {
	return string(trimLeadingZeros(h.Bytes()))
}

// EncodeShortString packs an ASCII string of at most 31 characters into a felt.
func EncodeShortString(s string) (common.Hash, error) {
	if len(s) > maxShortStringLen {
		return common.Hash{}, fmt.Errorf("short string %q is longer than %d characters", s, maxShortStringLen)
	}
	for _, c := range []byte(s) {
		if c > 0x7f {
			return common.Hash{}, fmt.Errorf("short string %q is not ASCII", s)
		}
	}
	return common.BytesToHash([]byte(s)), nil
}

func trimLeadingZeros(b []byte) []byte {
	for len(b) > 0 && b[0] == 0 {
		b = b[1:]
	}
	return b
}
