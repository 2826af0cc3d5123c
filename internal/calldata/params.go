package calldata

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goran-ethernal/StarkIndexor/internal/felt"
)

// ParamType is a Cairo type the decoder understands.
type ParamType string

const (
	TypeFelt            ParamType = "felt252"
	TypeContractAddress ParamType = "contract_address"
	TypeBool            ParamType = "bool"
	TypeU8              ParamType = "u8"
	TypeU16             ParamType = "u16"
	TypeU32             ParamType = "u32"
	TypeU64             ParamType = "u64"
	TypeU128            ParamType = "u128"
	TypeU256            ParamType = "u256"
	TypeShortString     ParamType = "short_string"
	TypeByteArray       ParamType = "byte_array"
)

const (
	byteArrayWordLen = 31
	// maxByteArrayWords bounds the declared word count before any allocation.
	maxByteArrayWords = 1 << 16
)

var (
	intBits = map[ParamType]uint{
		TypeU8:   8,
		TypeU16:  16,
		TypeU32:  32,
		TypeU64:  64,
		TypeU128: 128,
	}

	// cairoTypeAliases maps fully qualified Cairo type paths to their short names.
	cairoTypeAliases = map[string]ParamType{
		"core::felt252":                                     TypeFelt,
		"core::starknet::contract_address::ContractAddress": TypeContractAddress,
		"core::bool":                                        TypeBool,
		"core::integer::u8":                                 TypeU8,
		"core::integer::u16":                                TypeU16,
		"core::integer::u32":                                TypeU32,
		"core::integer::u64":                                TypeU64,
		"core::integer::u128":                               TypeU128,
		"core::integer::u256":                               TypeU256,
		"core::byte_array::ByteArray":                       TypeByteArray,
	}

	ErrUnknownParamType = errors.New("unknown parameter type")
	ErrMissingParam     = errors.New("missing parameter")
)

// ParseParamType accepts a short type name or a fully qualified Cairo type path.
func ParseParamType(s string) (ParamType, error) {
	name := strings.TrimSpace(s)
	if t, ok := cairoTypeAliases[name]; ok {
		return t, nil
	}

	switch t := ParamType(strings.ToLower(name)); t {
	case TypeFelt, TypeContractAddress, TypeBool, TypeU8, TypeU16, TypeU32,
		TypeU64, TypeU128, TypeU256, TypeShortString, TypeByteArray:
		return t, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownParamType, s)
}

// Param is one named entry of a call's parameter list.
type Param struct {
	Name string
	Type ParamType
}

// Schema is the ordered parameter list of a contract entrypoint.
type Schema []Param

// NewSchema builds a Schema from name/type pairs and validates it.
func NewSchema(names, types []string) (Schema, error) {
	if len(names) != len(types) {
		return nil, fmt.Errorf("schema has %d names and %d types", len(names), len(types))
	}

	schema := make(Schema, 0, len(names))
	for i := range names {
		t, err := ParseParamType(types[i])
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", names[i], err)
		}
		schema = append(schema, Param{Name: names[i], Type: t})
	}

	return schema, schema.Validate()
}

// Validate checks that every parameter has a unique non-empty name and a known type.
func (s Schema) Validate() error {
	seen := make(map[string]struct{}, len(s))
	for i, p := range s {
		if p.Name == "" {
			return fmt.Errorf("parameter %d has no name", i)
		}
		if _, err := ParseParamType(string(p.Type)); err != nil {
			return fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		if _, ok := seen[p.Name]; ok {
			return fmt.Errorf("duplicate parameter name %q", p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

// Require fails when any of the given names is absent from the schema.
func (s Schema) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if !s.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingParam, strings.Join(missing, ", "))
	}
	return nil
}

func (s Schema) Has(name string) bool {
	for _, p := range s {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Value is a single decoded parameter.
type Value struct {
	Type ParamType
	// Raw holds the felts the value was decoded from.
	Raw []string
	// Int is set for felt, address, bool and integer types.
	Int *big.Int
	// Text is set for short_string and byte_array.
	Text string
}

// String renders the value in the form it is persisted in.
func (v Value) String() string {
	switch v.Type {
	case TypeShortString, TypeByteArray:
		return v.Text
	case TypeFelt, TypeContractAddress:
		return common.BigToHash(v.Int).Hex()
	case TypeBool:
		return fmt.Sprintf("%t", v.Int.Sign() != 0)
	default:
		return v.Int.String()
	}
}

// Record is a decoded parameter list addressable by name.
type Record struct {
	names  []string
	values map[string]Value
}

func (r Record) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// String returns the rendered value of a parameter, or "" when it is absent.
func (r Record) String(name string) string {
	v, ok := r.values[name]
	if !ok {
		return ""
	}
	return v.String()
}

// Address returns a parameter as a canonical contract address.
func (r Record) Address(name string) (common.Hash, error) {
	v, ok := r.values[name]
	if !ok {
		return common.Hash{}, fmt.Errorf("%w: %s", ErrMissingParam, name)
	}
	if v.Int != nil {
		return felt.ParseAddress("0x" + v.Int.Text(16))
	}
	return felt.ParseAddress(v.Text)
}

// Names returns parameter names in schema order.
func (r Record) Names() []string {
	return append([]string(nil), r.names...)
}

// Map renders every parameter, keyed by name.
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for name, v := range r.values {
		out[name] = v.String()
	}
	return out
}

func (r Record) Len() int {
	return len(r.names)
}

// Decode walks felts according to the schema and returns the named values.
// Felts left over after the last parameter are ignored.
func Decode(schema Schema, felts []string) (Record, error) {
	rec := Record{
		names:  make([]string, 0, len(schema)),
		values: make(map[string]Value, len(schema)),
	}

	offset := 0
	for _, p := range schema {
		v, next, err := decodeValue(p.Type, felts, offset)
		if err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				de.Reason = fmt.Sprintf("parameter %q: %s", p.Name, de.Reason)
				return Record{}, de
			}
			return Record{}, decodeErr(offset, fmt.Sprintf("parameter %q", p.Name), err)
		}

		rec.names = append(rec.names, p.Name)
		rec.values[p.Name] = v
		offset = next
	}

	return rec, nil
}

func decodeValue(t ParamType, felts []string, offset int) (Value, int, error) {
	switch t {
	case TypeByteArray:
		text, next, err := decodeByteArray(felts, offset)
		if err != nil {
			return Value{}, 0, err
		}
		return Value{Type: t, Raw: felts[offset:next], Text: text}, next, nil

	case TypeU256:
		if offset+2 > len(felts) {
			return Value{}, 0, decodeErr(offset, "u256 overruns payload", nil)
		}
		low, err := boundedInt(felts[offset], 128)
		if err != nil {
			return Value{}, 0, decodeErr(offset, "u256 low", err)
		}
		high, err := boundedInt(felts[offset+1], 128)
		if err != nil {
			return Value{}, 0, decodeErr(offset+1, "u256 high", err)
		}
		v := new(big.Int).Add(low, new(big.Int).Lsh(high, 128))
		return Value{Type: t, Raw: felts[offset : offset+2], Int: v}, offset + 2, nil
	}

	if offset >= len(felts) {
		return Value{}, 0, decodeErr(offset, fmt.Sprintf("%s overruns payload", t), nil)
	}
	raw := felts[offset : offset+1]

	switch t {
	case TypeFelt:
		v, err := felt.ParseBig(raw[0])
		if err != nil {
			return Value{}, 0, decodeErr(offset, string(t), err)
		}
		return Value{Type: t, Raw: raw, Int: v}, offset + 1, nil

	case TypeContractAddress:
		addr, err := felt.ParseAddress(raw[0])
		if err != nil {
			return Value{}, 0, decodeErr(offset, string(t), err)
		}
		return Value{Type: t, Raw: raw, Int: addr.Big()}, offset + 1, nil

	case TypeBool:
		v, err := boundedInt(raw[0], 1)
		if err != nil {
			return Value{}, 0, decodeErr(offset, string(t), err)
		}
		return Value{Type: t, Raw: raw, Int: v}, offset + 1, nil

	case TypeShortString:
		h, err := felt.Parse(raw[0])
		if err != nil {
			return Value{}, 0, decodeErr(offset, string(t), err)
		}
		return Value{Type: t, Raw: raw, Text: felt.DecodeShortString(h)}, offset + 1, nil
	}

	bits, ok := intBits[t]
	if !ok {
		return Value{}, 0, decodeErr(offset, string(t), ErrUnknownParamType)
	}
	v, err := boundedInt(raw[0], bits)
	if err != nil {
		return Value{}, 0, decodeErr(offset, string(t), err)
	}
	return Value{Type: t, Raw: raw, Int: v}, offset + 1, nil
}

// decodeByteArray reads [n_full_words, ...words, pending_word, pending_word_len].
func decodeByteArray(felts []string, offset int) (string, int, error) {
	if offset >= len(felts) {
		return "", 0, decodeErr(offset, "byte array overruns payload", nil)
	}

	nWords, err := felt.ParseBig(felts[offset])
	if err != nil {
		return "", 0, decodeErr(offset, "byte array word count", err)
	}
	if !nWords.IsInt64() || nWords.Int64() > maxByteArrayWords {
		return "", 0, decodeErr(offset, "byte array word count out of range", nil)
	}
	words := int(nWords.Int64())

	end := offset + 1 + words + 2
	if end > len(felts) {
		return "", 0, decodeErr(offset, fmt.Sprintf("byte array of %d words overruns payload", words), nil)
	}

	buf := make([]byte, 0, words*byteArrayWordLen+byteArrayWordLen)
	for i := 0; i < words; i++ {
		word, err := wordBytes(felts[offset+1+i], byteArrayWordLen)
		if err != nil {
			return "", 0, decodeErr(offset+1+i, "byte array word", err)
		}
		buf = append(buf, word...)
	}

	pendingLen, err := felt.ParseBig(felts[end-1])
	if err != nil {
		return "", 0, decodeErr(end-1, "byte array pending length", err)
	}
	if !pendingLen.IsInt64() || pendingLen.Int64() >= byteArrayWordLen {
		return "", 0, decodeErr(end-1, "byte array pending length out of range", nil)
	}
	pending, err := wordBytes(felts[end-2], int(pendingLen.Int64()))
	if err != nil {
		return "", 0, decodeErr(end-2, "byte array pending word", err)
	}

	return string(append(buf, pending...)), end, nil
}

// wordBytes renders a felt as exactly size big-endian bytes.
func wordBytes(s string, size int) ([]byte, error) {
	v, err := felt.ParseBig(s)
	if err != nil {
		return nil, err
	}
	if v.BitLen() > size*8 {
		return nil, fmt.Errorf("value %s does not fit into %d bytes", s, size)
	}
	out := make([]byte, size)
	return v.FillBytes(out), nil
}

func boundedInt(s string, bits uint) (*big.Int, error) {
	v, err := felt.ParseBig(s)
	if err != nil {
		return nil, err
	}
	if uint(v.BitLen()) > bits {
		return nil, fmt.Errorf("value %s does not fit into %d bits", s, bits)
	}
	return v, nil
}

// EncodeByteArray serializes a string the way Cairo serializes a ByteArray.
func EncodeByteArray(s string) []string {
	data := []byte(s)
	full := len(data) / byteArrayWordLen

	out := []string{lengthToHex(full)}
	for i := 0; i < full; i++ {
		word := data[i*byteArrayWordLen : (i+1)*byteArrayWordLen]
		out = append(out, "0x"+new(big.Int).SetBytes(word).Text(16))
	}

	pending := data[full*byteArrayWordLen:]
	out = append(out, "0x"+new(big.Int).SetBytes(pending).Text(16), lengthToHex(len(pending)))
	return out
}
