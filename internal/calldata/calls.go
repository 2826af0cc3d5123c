// Package calldata decodes Starknet account multicall payloads into individual calls,
// token transfers and named parameter records.
package calldata

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/StarkIndexor/internal/felt"
)

// callHeaderLen is the number of felts preceding the calldata of a call: to, selector, calldata_len.
const callHeaderLen = 3

// ErrDecode is matched by every error returned from this package's decoders.
var ErrDecode = errors.New("calldata decode error")

// DecodeError describes where and why a payload could not be decoded.
type DecodeError struct {
	Offset int
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("calldata decode error at offset %d: %s: %v", e.Offset, e.Reason, e.Err)
	}
	return fmt.Sprintf("calldata decode error at offset %d: %s", e.Offset, e.Reason)
}

// Is makes errors.Is(err, ErrDecode) hold for every DecodeError.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeErr(offset int, reason string, err error) *DecodeError {
	return &DecodeError{Offset: offset, Reason: reason, Err: err}
}

// ParsedCall is one call of a multicall payload.
type ParsedCall struct {
	// ContractAddress is the canonical form of the call target.
	ContractAddress common.Hash
	// RawAddress and Entrypoint hold the felts exactly as they appeared in the payload.
	RawAddress string
	Entrypoint string
	Calldata   []string
}

// Targets reports whether the call is addressed to the given contract.
func (c ParsedCall) Targets(contract common.Hash) bool {
	return c.ContractAddress == contract
}

// HasEntrypoint compares the call selector to the given one regardless of zero padding.
func (c ParsedCall) HasEntrypoint(selector common.Hash) bool {
	v, err := felt.Parse(c.Entrypoint)
	if err != nil {
		return false
	}
	return v == selector
}

// ExtractAllCalls splits a multicall payload
// [n_calls, (to, selector, calldata_len, ...calldata) * n_calls] into its calls.
// Any malformed element or length overrun fails the whole payload.
func ExtractAllCalls(data []string) ([]ParsedCall, error) {
	if len(data) == 0 {
		return nil, decodeErr(0, "empty payload", nil)
	}

	nCalls, err := readLength(data, 0, "call count")
	if err != nil {
		return nil, err
	}
	// every call needs at least a header
	if nCalls > (len(data)-1)/callHeaderLen {
		return nil, decodeErr(0, fmt.Sprintf("call count %d exceeds payload of %d felts", nCalls, len(data)), nil)
	}

	calls := make([]ParsedCall, 0, nCalls)
	offset := 1
	for i := 0; i < nCalls; i++ {
		if offset+callHeaderLen > len(data) {
			return nil, decodeErr(offset, fmt.Sprintf("call %d header overruns payload", i), nil)
		}

		address, err := felt.ParseAddress(data[offset])
		if err != nil {
			return nil, decodeErr(offset, fmt.Sprintf("call %d target", i), err)
		}
		if _, err := felt.Parse(data[offset+1]); err != nil {
			return nil, decodeErr(offset+1, fmt.Sprintf("call %d entrypoint", i), err)
		}
		calldataLen, err := readLength(data, offset+2, fmt.Sprintf("call %d calldata length", i))
		if err != nil {
			return nil, err
		}

		start := offset + callHeaderLen
		if calldataLen > len(data)-start {
			return nil, decodeErr(offset+2,
				fmt.Sprintf("call %d calldata length %d overruns payload of %d felts", i, calldataLen, len(data)), nil)
		}

		calldata := make([]string, calldataLen)
		for j := 0; j < calldataLen; j++ {
			if _, err := felt.Parse(data[start+j]); err != nil {
				return nil, decodeErr(start+j, fmt.Sprintf("call %d calldata element %d", i, j), err)
			}
			calldata[j] = data[start+j]
		}

		calls = append(calls, ParsedCall{
			ContractAddress: address,
			RawAddress:      data[offset],
			Entrypoint:      data[offset+1],
			Calldata:        calldata,
		})
		offset = start + calldataLen
	}

	return calls, nil
}

// Flatten rebuilds a multicall payload from its calls. Targets, entrypoints
// and calldata are written as they were parsed, while the call count and the
// calldata lengths are always written as unpadded lowercase hex. A payload
// that encoded them as "0x02" or "0x0A" therefore comes back as "0x2" and
// "0xa"; the felt values are unchanged.
func Flatten(calls []ParsedCall) []string {
	out := []string{lengthToHex(len(calls))}
	for _, call := range calls {
		raw := call.RawAddress
		if raw == "" {
			raw = call.ContractAddress.Hex()
		}
		out = append(out, raw, call.Entrypoint, lengthToHex(len(call.Calldata)))
		out = append(out, call.Calldata...)
	}
	return out
}

// FindCalls returns the calls addressed to contract, preserving payload order.
func FindCalls(calls []ParsedCall, contract common.Hash) []ParsedCall {
	var matched []ParsedCall
	for _, call := range calls {
		if call.Targets(contract) {
			matched = append(matched, call)
		}
	}
	return matched
}

func readLength(data []string, offset int, what string) (int, error) {
	v, err := felt.ParseBig(data[offset])
	if err != nil {
		return 0, decodeErr(offset, what, err)
	}
	if !v.IsInt64() || v.Int64() > int64(len(data)) {
		return 0, decodeErr(offset, fmt.Sprintf("%s %s is out of range", what, v.String()), nil)
	}
	return int(v.Int64()), nil
}

func lengthToHex(n int) string {
	return "0x" + big.NewInt(int64(n)).Text(16)
}
