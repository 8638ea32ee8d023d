package eth_sig_recover

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const personalMessagePrefix = "\x19Ethereum Signed Message:\n"

// RecoveryMessage is the input a signature is recovered against: either raw
// message data, which is hashed with the personal-sign (EIP-191) framing at
// recovery time, or a precomputed 32-byte digest used as-is.
type RecoveryMessage struct {
	isHash bool
	data   []byte
	hash   common.Hash
}

// MessageFromBytes returns a data message. The input is copied.
func MessageFromBytes(data []byte) RecoveryMessage {
	return RecoveryMessage{data: common.CopyBytes(data)}
}

// MessageFromString returns a data message holding the bytes of s.
func MessageFromString(s string) RecoveryMessage {
	return RecoveryMessage{data: []byte(s)}
}

// MessageFromHash returns a message wrapping an already computed digest.
func MessageFromHash(hash common.Hash) RecoveryMessage {
	return RecoveryMessage{isHash: true, hash: hash}
}

// MessageFromDigest is MessageFromHash for a bare 32-byte array.
func MessageFromDigest(digest [32]byte) RecoveryMessage {
	return MessageFromHash(common.Hash(digest))
}

// IsHash reports whether the message is a precomputed digest.
func (m RecoveryMessage) IsHash() bool { return m.isHash }

// Data returns a copy of the message bytes, or nil for a hash message.
func (m RecoveryMessage) Data() []byte {
	if m.isHash {
		return nil
	}
	return common.CopyBytes(m.data)
}

// Digest returns the 32-byte value the signature is recovered against.
func (m RecoveryMessage) Digest() common.Hash {
	if m.isHash {
		return m.hash
	}
	return HashPersonalMessage(m.data)
}

// HashPersonalMessage computes
//
//	keccak256("\x19Ethereum Signed Message:\n" + len(data) + data)
//
// with the length written in decimal.
func HashPersonalMessage(data []byte) common.Hash {
	prefix := personalMessagePrefix + strconv.Itoa(len(data))
	return crypto.Keccak256Hash([]byte(prefix), data)
}
