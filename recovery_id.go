package eth_sig_recover

import "fmt"

// InvalidRecoveryID is returned by NormalizeRecoveryID for v values that do not
// belong to any known encoding. It lies outside {0, 1} so that recovery fails.
const InvalidRecoveryID uint8 = 4

const (
	electrumOffset = 27
	eip155Offset   = 35
)

// NormalizeRecoveryID maps v to the raw recovery bit (0 or 1).
//
// Accepted encodings:
//   - 0, 1: raw recovery id
//   - 27, 28: Electrum notation
//   - 35 and above: EIP-155, v = chainID*2 + 35 + recoveryBit
//
// Any other value yields InvalidRecoveryID.
func NormalizeRecoveryID(v uint64) uint8 {
	switch {
	case v == 0 || v == 1:
		return uint8(v)
	case v == electrumOffset || v == electrumOffset+1:
		return uint8(v - electrumOffset)
	case v >= eip155Offset:
		return uint8((v - 1) % 2)
	default:
		return InvalidRecoveryID
	}
}

// RecoveryID returns the normalized recovery id of the signature.
func (sig Signature) RecoveryID() (uint8, error) {
	id := NormalizeRecoveryID(sig.V)
	if id > 1 {
		return 0, &RecoveryError{Reason: fmt.Sprintf("unsupported v value %d", sig.V)}
	}
	return id, nil
}
