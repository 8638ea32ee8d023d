package eth_sig_recover

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ErrSignature is matched by every error returned from this package's
// signature operations, so callers can use errors.Is(err, ErrSignature).
var ErrSignature = errors.New("signature error")

// InvalidLengthError is returned when a byte-form signature is not exactly 65 bytes long.
type InvalidLengthError struct {
	Got int
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("invalid signature length, got %d, expected %d", e.Got, SignatureLength)
}

func (e *InvalidLengthError) Is(target error) bool { return target == ErrSignature }

// DecodingError wraps a failure to decode the textual (hex) or DER form of a signature.
type DecodingError struct {
	Err error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("failed to decode signature: %v", e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

func (e *DecodingError) Is(target error) bool { return target == ErrSignature }

// VerificationError is returned when the address recovered from a signature
// does not match the address it was expected to come from.
type VerificationError struct {
	Expected  common.Address
	Recovered common.Address
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("signature verification failed, expected %s, got %s", e.Expected.Hex(), e.Recovered.Hex())
}

func (e *VerificationError) Is(target error) bool { return target == ErrSignature }

// CurveError wraps an error reported by the secp256k1 library while
// recovering a public key (invalid scalars, point not on curve, ...).
type CurveError struct {
	Err error
}

func (e *CurveError) Error() string {
	return fmt.Sprintf("secp256k1 recovery failed: %v", e.Err)
}

func (e *CurveError) Unwrap() error { return e.Err }

func (e *CurveError) Is(target error) bool { return target == ErrSignature }

// RecoveryError is returned when public key recovery cannot proceed, e.g.
// because the recovery id could not be normalized.
type RecoveryError struct {
	Reason string
}

func (e *RecoveryError) Error() string {
	if e.Reason == "" {
		return "public key recovery error"
	}
	return "public key recovery error: " + e.Reason
}

func (e *RecoveryError) Is(target error) bool { return target == ErrSignature }
