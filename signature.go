package eth_sig_recover

import (
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// SignatureLength is the size of a serialized signature: r (32) || s (32) || v (1).
const SignatureLength = 65

const scalarLength = 32

// Signature is a secp256k1 ECDSA signature in Ethereum layout.
//
// V is kept as received and may hold a raw recovery id (0/1), an Electrum
// value (27/28) or an EIP-155 value (>= 35). It is interpreted only when the
// signature is recovered. Signature is a comparable value type and is safe
// for concurrent use.
type Signature struct {
	R uint256.Int
	S uint256.Int
	V uint64
}

// NewSignature builds a signature from big-endian r and s scalars and v.
func NewSignature(r, s [32]byte, v uint64) Signature {
	var sig Signature
	sig.R.SetBytes32(r[:])
	sig.S.SetBytes32(s[:])
	sig.V = v
	return sig
}

// SignatureFromBytes parses a raw 65-byte signature where the first 32 bytes
// are r, the next 32 bytes are s and the final byte is v.
//
// Returns:
//   - The parsed Signature.
//   - An *InvalidLengthError if the input is not exactly 65 bytes.
func SignatureFromBytes(b []byte) (Signature, error) {
	if len(b) != SignatureLength {
		return Signature{}, &InvalidLengthError{Got: len(b)}
	}

	var sig Signature
	sig.R.SetBytes32(b[:scalarLength])
	sig.S.SetBytes32(b[scalarLength : 2*scalarLength])
	sig.V = uint64(b[2*scalarLength])
	return sig, nil
}

// ParseSignature decodes a hex encoded 65-byte signature. The 0x prefix is optional.
func ParseSignature(s string) (Signature, error) {
	s = strings.TrimPrefix(s, "0x")
	b, err := hexutil.Decode("0x" + s)
	if err != nil {
		return Signature{}, &DecodingError{Err: err}
	}
	return SignatureFromBytes(b)
}

// Bytes serializes the signature into its 65-byte form.
//
// V is truncated to its low byte. This is lossless for 0/1 and 27/28, but an
// EIP-155 v (>= 35) loses its chain id and may wrap above 255.
func (sig Signature) Bytes() [SignatureLength]byte {
	var out [SignatureLength]byte
	r := sig.R.Bytes32()
	s := sig.S.Bytes32()
	copy(out[:scalarLength], r[:])
	copy(out[scalarLength:2*scalarLength], s[:])
	out[2*scalarLength] = byte(sig.V)
	return out
}

// ToSlice returns the 65-byte form as a newly allocated slice.
func (sig Signature) ToSlice() []byte {
	b := sig.Bytes()
	return b[:]
}

// String returns the 0x prefixed lowercase hex encoding of the 65-byte form.
func (sig Signature) String() string {
	return hexutil.Encode(sig.ToSlice())
}

// MarshalText implements encoding.TextMarshaler.
func (sig Signature) MarshalText() ([]byte, error) {
	return []byte(sig.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (sig *Signature) UnmarshalText(text []byte) error {
	parsed, err := ParseSignature(string(text))
	if err != nil {
		return err
	}
	*sig = parsed
	return nil
}
