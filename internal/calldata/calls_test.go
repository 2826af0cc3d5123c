package calldata

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const (
	contractA = "0x4a1"
	contractB = "0x0000000000000000000000000000000000000000000000000000000000000b2"
)

func TestExtractAllCalls(t *testing.T) {
	payload := []string{
		"0x2",
		contractA, "0xaa", "0x2", "0x10", "0x11",
		contractB, "0xbb", "0x0",
	}

	calls, err := ExtractAllCalls(payload)
	require.NoError(t, err)
	require.Len(t, calls, 2)

	require.Equal(t, common.HexToHash(contractA), calls[0].ContractAddress)
	require.Equal(t, "0xaa", calls[0].Entrypoint)
	require.Equal(t, []string{"0x10", "0x11"}, calls[0].Calldata)

	require.Equal(t, common.HexToHash("0xb2"), calls[1].ContractAddress)
	require.True(t, calls[1].Targets(common.HexToHash("0xb2")))
	require.Empty(t, calls[1].Calldata)
}

func TestExtractAllCallsRoundTrip(t *testing.T) {
	payloads := [][]string{
		{"0x0"},
		{"0x1", contractA, "0x83afd3f4caedc6eebf44246fe54e38c95e3179a5ec9ea81740eca5b482d12e", "0x3", "0x1", "0x2", "0x0"},
		{
			"0x3",
			contractA, "0x1", "0x0",
			contractB, "0x2", "0x1", "0xdead",
			STRKAddress, TransferSelector, "0x3", contractA, "0x64", "0x0",
		},
	}

	for _, payload := range payloads {
		calls, err := ExtractAllCalls(payload)
		require.NoError(t, err)
		require.Equal(t, payload, Flatten(calls))
	}
}

func TestFlattenNormalizesLengths(t *testing.T) {
	padded := []string{
		"0x02",
		contractA, "0x1", "0x02", "0x0a", "0x0b",
		contractB, "0x2", "0x0000000000000000000000000000000000000000000000000000000000000001", "0xdead",
	}
	canonical := []string{
		"0x2",
		contractA, "0x1", "0x2", "0x0a", "0x0b",
		contractB, "0x2", "0x1", "0xdead",
	}

	calls, err := ExtractAllCalls(padded)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	require.Equal(t, []string{"0x0a", "0x0b"}, calls[0].Calldata)

	flat := Flatten(calls)
	require.Equal(t, canonical, flat)

	again, err := ExtractAllCalls(flat)
	require.NoError(t, err)
	require.Equal(t, calls, again)
}

func TestExtractAllCallsErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload []string
	}{
		{name: "empty", payload: nil},
		{name: "count not hex", payload: []string{"0xzz"}},
		{name: "count larger than payload", payload: []string{"0x5", contractA, "0x1", "0x0"}},
		{name: "calldata overrun", payload: []string{"0x1", contractA, "0x1", "0x5", "0x1", "0x2"}},
		{name: "second header overrun", payload: []string{"0x2", contractA, "0x1", "0x0", contractB}},
		{name: "bad address", payload: []string{"0x1", "not-an-address", "0x1", "0x0"}},
		{name: "bad calldata element", payload: []string{"0x1", contractA, "0x1", "0x1", "0xgg"}},
		{name: "huge length", payload: []string{"0x1", contractA, "0x1", "0xffffffffffffffffffff"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				calls, err := ExtractAllCalls(tt.payload)
				require.ErrorIs(t, err, ErrDecode)
				require.Nil(t, calls)

				var de *DecodeError
				require.ErrorAs(t, err, &de)
			})
		})
	}
}

func TestFindCalls(t *testing.T) {
	calls, err := ExtractAllCalls([]string{
		"0x3",
		contractA, "0x1", "0x0",
		contractB, "0x2", "0x0",
		"0x00000000000000000000000000000000000000000000000000000000000004a1", "0x3", "0x0",
	})
	require.NoError(t, err)

	matched := FindCalls(calls, common.HexToHash(contractA))
	require.Len(t, matched, 2)
	require.Equal(t, "0x1", matched[0].Entrypoint)
	require.Equal(t, "0x3", matched[1].Entrypoint)

	require.Empty(t, FindCalls(calls, common.HexToHash("0x999")))
}
