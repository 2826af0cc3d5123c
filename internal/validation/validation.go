// Package validation checks the public keys carried by stealth announcements
// and meta address registrations.
//
// Points are written as "X.Y", the decimal affine coordinates of the point.
package validation

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/crypto/bn256"
)

// Curve identifies an elliptic curve a point is checked against.
type Curve string

const (
	CurveSecp256k1 Curve = "secp256k1"
	CurveBN254     Curve = "bn254"

	// MetaAddressSeparator joins the spending and viewing keys of a meta address.
	MetaAddressSeparator = ":::"

	coordinateSize = 32
	viewTagLength  = 2
)

// CurveValidator reports whether a point string lies on a curve.
// Implementations must be safe for concurrent use.
type CurveValidator interface {
	IsValidPoint(curve Curve, point string) bool
}

// Validator is the default CurveValidator. It holds no state.
type Validator struct{}

var _ CurveValidator = Validator{}

// NewValidator returns the default CurveValidator.
func NewValidator() Validator {
	return Validator{}
}

// IsValidPoint reports whether point is a valid, non-infinity point of curve.
func (Validator) IsValidPoint(curve Curve, point string) bool {
	x, y, ok := parsePoint(point)
	if !ok {
		return false
	}

	switch curve {
	case CurveSecp256k1:
		return onSecp256k1(x, y)
	case CurveBN254:
		return onBN254(x, y)
	default:
		return false
	}
}

// parsePoint splits "X.Y" into its coordinates. Only decimal digits are accepted.
func parsePoint(point string) (*big.Int, *big.Int, bool) {
	xs, ys, found := strings.Cut(point, ".")
	if !found || !isDigits(xs) || !isDigits(ys) {
		return nil, nil, false
	}

	x, ok := new(big.Int).SetString(xs, 10)
	if !ok || x.BitLen() > coordinateSize*8 {
		return nil, nil, false
	}
	y, ok := new(big.Int).SetString(ys, 10)
	if !ok || y.BitLen() > coordinateSize*8 {
		return nil, nil, false
	}

	return x, y, true
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

func onSecp256k1(x, y *big.Int) bool {
	curve := crypto.S256()
	p := curve.Params().P
	if x.Cmp(p) >= 0 || y.Cmp(p) >= 0 {
		return false
	}
	return curve.IsOnCurve(x, y)
}

func onBN254(x, y *big.Int) bool {
	// (0, 0) encodes the point at infinity
	if x.Sign() == 0 && y.Sign() == 0 {
		return false
	}

	buf := make([]byte, 2*coordinateSize)
	x.FillBytes(buf[:coordinateSize])
	y.FillBytes(buf[coordinateSize:])

	_, err := new(bn256.G1).Unmarshal(buf)
	return err == nil
}

// IsValidViewTag reports whether tag is exactly one byte written as two hex characters.
func IsValidViewTag(tag string) bool {
	if len(tag) != viewTagLength {
		return false
	}
	for _, r := range tag {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// SplitMetaAddress splits "SPENDING:::VIEWING" into its halves.
// ok is false when the separator is missing or either half is empty.
func SplitMetaAddress(metaAddress string) (spending, viewing string, ok bool) {
	spending, viewing, found := strings.Cut(metaAddress, MetaAddressSeparator)
	if !found || spending == "" || viewing == "" {
		return "", "", false
	}
	return spending, viewing, true
}

// ValidAnnouncement reports whether the ephemeral key is on BN254, the view tag
// is one byte and the stealth account key is on secp256k1.
func ValidAnnouncement(v CurveValidator, ephemeralPublicKey, viewTag, stealthAccountPublicKey string) bool {
	return v.IsValidPoint(CurveBN254, ephemeralPublicKey) &&
		IsValidViewTag(viewTag) &&
		v.IsValidPoint(CurveSecp256k1, stealthAccountPublicKey)
}

// ValidMetaAddress reports whether the spending key is on secp256k1 and the
// viewing key is on BN254.
func ValidMetaAddress(v CurveValidator, spending, viewing string) bool {
	return v.IsValidPoint(CurveSecp256k1, spending) && v.IsValidPoint(CurveBN254, viewing)
}
