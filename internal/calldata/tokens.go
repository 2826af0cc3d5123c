package calldata

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/StarkIndexor/internal/felt"
	"github.com/shopspring/decimal"
)

const (
	ETHAddress  = "0x049d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7"
	STRKAddress = "0x04718f5a0fc34cc1af16a1cdee98ffb20c31f5cd61d6ab07201858f4287c938d"

	// TransferSelector is starknet_keccak("transfer").
	TransferSelector = "0x83afd3f4caedc6eebf44246fe54e38c95e3179a5ec9ea81740eca5b482d12e"

	defaultTokenDecimals = 18
)

var u128Shift = new(big.Int).Lsh(big.NewInt(1), 128)

// Token describes an ERC-20 style contract whose transfers are recognized inside multicalls.
type Token struct {
	Name             string
	Address          common.Hash
	Decimals         int32
	TransferSelector common.Hash
}

// NewToken builds a Token from its string form. An empty selector means "transfer".
func NewToken(name, address string, decimals int32, selector string) (Token, error) {
	addr, err := felt.ParseAddress(address)
	if err != nil {
		return Token{}, fmt.Errorf("token %s: %w", name, err)
	}
	if decimals < 0 {
		return Token{}, fmt.Errorf("token %s: negative decimals %d", name, decimals)
	}

	sel := felt.Selector("transfer")
	if selector != "" {
		if sel, err = felt.Parse(selector); err != nil {
			return Token{}, fmt.Errorf("token %s: transfer selector: %w", name, err)
		}
	}

	return Token{Name: name, Address: addr, Decimals: decimals, TransferSelector: sel}, nil
}

// DefaultTokens returns the native Starknet fee tokens.
func DefaultTokens() []Token {
	selector := common.HexToHash(TransferSelector)
	return []Token{
		{Name: "ETH", Address: common.HexToHash(ETHAddress), Decimals: defaultTokenDecimals, TransferSelector: selector},
		{Name: "STRK", Address: common.HexToHash(STRKAddress), Decimals: defaultTokenDecimals, TransferSelector: selector},
	}
}

// TokenRegistry maps canonical token addresses to their metadata.
type TokenRegistry struct {
	mu     sync.RWMutex
	tokens map[common.Hash]Token
}

// NewTokenRegistry creates a registry seeded with the default tokens plus any extra ones.
// Extra tokens override defaults with the same address.
func NewTokenRegistry(extra ...Token) *TokenRegistry {
	r := &TokenRegistry{tokens: make(map[common.Hash]Token)}
	for _, t := range DefaultTokens() {
		r.tokens[t.Address] = t
	}
	for _, t := range extra {
		r.tokens[t.Address] = t
	}
	return r
}

func (r *TokenRegistry) Add(t Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[t.Address] = t
}

func (r *TokenRegistry) Lookup(address common.Hash) (Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tokens[address]
	return t, ok
}

func (r *TokenRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}

// TokenTransfer is a recognized token transfer call found inside a multicall.
type TokenTransfer struct {
	Token     string
	Address   common.Hash
	Recipient common.Hash
	RawAmount *big.Int
	Amount    decimal.Decimal
	Decimals  int32
}

// Text renders the transfer as "<amount> <token>".
func (t TokenTransfer) Text() string {
	return fmt.Sprintf("%s %s", t.Amount.String(), t.Token)
}

// ParseTokenTransfers picks the calls that transfer a registered token and decodes
// recipient and amount. The amount is a u256 (low, high) when both limbs are present.
// Calls that do not match or carry malformed arguments are skipped.
func ParseTokenTransfers(calls []ParsedCall, registry *TokenRegistry) []TokenTransfer {
	if registry == nil {
		registry = NewTokenRegistry()
	}

	var transfers []TokenTransfer
	for _, call := range calls {
		token, ok := registry.Lookup(call.ContractAddress)
		if !ok || !call.HasEntrypoint(token.TransferSelector) {
			continue
		}
		if len(call.Calldata) < 2 {
			continue
		}

		recipient, err := felt.ParseAddress(call.Calldata[0])
		if err != nil {
			continue
		}
		raw, err := felt.ParseBig(call.Calldata[1])
		if err != nil {
			continue
		}
		if len(call.Calldata) >= 3 {
			high, err := felt.ParseBig(call.Calldata[2])
			if err != nil {
				continue
			}
			raw = new(big.Int).Add(raw, new(big.Int).Mul(high, u128Shift))
		}

		transfers = append(transfers, TokenTransfer{
			Token:     token.Name,
			Address:   token.Address,
			Recipient: recipient,
			RawAmount: raw,
			Amount:    decimal.NewFromBigInt(raw, -token.Decimals),
			Decimals:  token.Decimals,
		})
	}

	return transfers
}
