// Package interop converts signatures produced by other tooling (go-ethereum,
// decred, AWS KMS and other HSMs) into the Ethereum Signature of the parent
// package. Nothing in the recovery core depends on it.
package interop

import (
	"encoding/asn1"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	sigrecover "eth-sig-recover"
)

const (
	electrumOffset = 27
	scalarLength   = 32
)

var (
	secp256k1N     = crypto.S256().Params().N
	secp256k1HalfN = new(big.Int).Div(secp256k1N, big.NewInt(2))
)

// FromRaw converts the fixed 65-byte layout used by go-ethereum (crypto.Sign)
// and most platform signature types: r || s || recovery indicator.
func FromRaw(raw [sigrecover.SignatureLength]byte) sigrecover.Signature {
	sig, _ := sigrecover.SignatureFromBytes(raw[:])
	return sig
}

// compact signature header: 27 + recovery id, plus 4 for a compressed key.
const (
	compactHeaderMin        = electrumOffset
	compactHeaderMax        = electrumOffset + 7
	compactCompressedOffset = 4
)

// FromCompact converts a Bitcoin style compact signature (header || r || s),
// as produced by decred's ecdsa.SignCompact. The returned signature carries an
// Electrum V (27 or 28).
func FromCompact(compact []byte) (sigrecover.Signature, error) {
	if len(compact) != sigrecover.SignatureLength {
		return sigrecover.Signature{}, &sigrecover.InvalidLengthError{Got: len(compact)}
	}

	header := compact[0]
	if header < compactHeaderMin || header > compactHeaderMax {
		return sigrecover.Signature{}, &sigrecover.RecoveryError{Reason: fmt.Sprintf("invalid compact signature header %d", header)}
	}
	id := (header - compactHeaderMin) % compactCompressedOffset
	if id > 1 {
		// ids 2 and 3 encode an r overflow that Ethereum cannot express.
		return sigrecover.Signature{}, &sigrecover.RecoveryError{Reason: fmt.Sprintf("unsupported compact recovery id %d", id)}
	}

	var sig sigrecover.Signature
	sig.R.SetBytes32(compact[1 : 1+scalarLength])
	sig.S.SetBytes32(compact[1+scalarLength:])
	sig.V = uint64(electrumOffset + id)
	return sig, nil
}

// asn1EcSig represents the ASN.1 structure of an ECDSA signature.
type asn1EcSig struct {
	R, S *big.Int
}

// FromDER converts an ASN.1 DER encoded ECDSA signature, the form returned by
// AWS KMS and most HSMs, into an Ethereum signature.
//
// DER carries no recovery id, so it is found by trial recovery:
//  1. Parse the ASN.1 SEQUENCE { R, S } and require 0 < R, S < N.
//  2. Move S into the lower half of the curve order (EIP-2).
//  3. Recover with V = 27, then V = 28, and keep the one that yields expected.
//
// Parameters:
//   - der: The DER encoded signature.
//   - msg: The message the signature was produced over.
//   - expected: The address of the signing key.
//
// Returns:
//   - The signature with an Electrum V.
//   - A *DecodingError for malformed DER or out of range scalars, or a
//     *VerificationError if neither recovery id yields expected.
func FromDER(der []byte, msg sigrecover.RecoveryMessage, expected common.Address) (sigrecover.Signature, error) {
	var parsed asn1EcSig
	rest, err := asn1.Unmarshal(der, &parsed)
	if err != nil {
		return sigrecover.Signature{}, &sigrecover.DecodingError{Err: fmt.Errorf("asn1.Unmarshal failed: %w", err)}
	}
	if len(rest) != 0 {
		return sigrecover.Signature{}, &sigrecover.DecodingError{Err: errors.New("trailing data after ASN.1 signature")}
	}
	if parsed.R == nil || parsed.S == nil || parsed.R.Sign() <= 0 || parsed.S.Sign() <= 0 {
		return sigrecover.Signature{}, &sigrecover.DecodingError{Err: errors.New("signature scalars must be positive")}
	}
	if parsed.R.Cmp(secp256k1N) >= 0 || parsed.S.Cmp(secp256k1N) >= 0 {
		return sigrecover.Signature{}, &sigrecover.DecodingError{Err: errors.New("signature scalars must be below the curve order")}
	}

	s := new(big.Int).Set(parsed.S)
	if s.Cmp(secp256k1HalfN) > 0 {
		s.Sub(secp256k1N, s)
	}

	// both scalars are below N, so neither conversion can overflow
	r, _ := uint256.FromBig(parsed.R)
	lowS, _ := uint256.FromBig(s)

	var lastErr error
	for _, v := range []uint64{electrumOffset, electrumOffset + 1} {
		candidate := sigrecover.Signature{R: *r, S: *lowS, V: v}
		err := candidate.Verify(msg, expected)
		if err == nil {
			return candidate, nil
		}
		lastErr = err
	}
	return sigrecover.Signature{}, lastErr
}
