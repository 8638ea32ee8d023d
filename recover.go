package eth_sig_recover

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	uncompressedPubKeyLength = 65
	uncompressedPubKeyPrefix = 0x04
)

// Recover returns the Ethereum address whose key produced the signature over msg.
//
// The recovery process:
//  1. Resolve msg to a 32-byte digest (personal-sign hash for data messages).
//  2. Normalize V to a recovery id.
//  3. Recover the public key with secp256k1.
//  4. Hash the 64 coordinate bytes of the uncompressed key with Keccak256.
//  5. Take the last 20 bytes of the hash as the address.
//
// Returns:
//   - The recovered address.
//   - A *RecoveryError if V is not a recognized encoding or the recovered key
//     is not in uncompressed form, or a *CurveError if the curve library
//     rejects the signature.
func (sig Signature) Recover(msg RecoveryMessage) (common.Address, error) {
	digest := msg.Digest()

	id, err := sig.RecoveryID()
	if err != nil {
		return common.Address{}, err
	}

	// decred expects the compact layout: header (27 + id) || r || s.
	var compact [SignatureLength]byte
	r := sig.R.Bytes32()
	s := sig.S.Bytes32()
	compact[0] = electrumOffset + id
	copy(compact[1:1+scalarLength], r[:])
	copy(compact[1+scalarLength:], s[:])

	pub, _, err := ecdsa.RecoverCompact(compact[:], digest[:])
	if err != nil {
		return common.Address{}, &CurveError{Err: err}
	}

	return addressFromUncompressed(pub.SerializeUncompressed())
}

// Verify checks that the signature over msg was produced by expected.
// Errors from Recover are returned unchanged; a mismatch yields a *VerificationError.
func (sig Signature) Verify(msg RecoveryMessage, expected common.Address) error {
	recovered, err := sig.Recover(msg)
	if err != nil {
		return err
	}
	if recovered != expected {
		return &VerificationError{Expected: expected, Recovered: recovered}
	}
	return nil
}

func addressFromUncompressed(pub []byte) (common.Address, error) {
	if len(pub) != uncompressedPubKeyLength || pub[0] != uncompressedPubKeyPrefix {
		return common.Address{}, &RecoveryError{Reason: "public key is not in uncompressed format"}
	}
	hash := crypto.Keccak256(pub[1:])
	return common.BytesToAddress(hash[len(hash)-common.AddressLength:]), nil
}
