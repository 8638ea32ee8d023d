package eth_sig_recover

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
)

func TestHashPersonalMessage(t *testing.T) {
	data := []byte("Some data")
	expected := crypto.Keccak256Hash([]byte("\x19Ethereum Signed Message:\n9Some data"))
	assert.Equal(t, expected, HashPersonalMessage(data))

	empty := crypto.Keccak256Hash([]byte("\x19Ethereum Signed Message:\n0"))
	assert.Equal(t, empty, HashPersonalMessage(nil))

	long := make([]byte, 1234)
	assert.Equal(t, crypto.Keccak256Hash(append([]byte("\x19Ethereum Signed Message:\n1234"), long...)), HashPersonalMessage(long))
}

func TestRecoveryMessage(t *testing.T) {
	data := []byte("Some data")

	fromBytes := MessageFromBytes(data)
	fromString := MessageFromString("Some data")
	assert.False(t, fromBytes.IsHash())
	assert.Equal(t, fromBytes, fromString)
	assert.Equal(t, data, fromBytes.Data())
	assert.Equal(t, HashPersonalMessage(data), fromBytes.Digest())

	// construction copies its input
	data[0] = 'X'
	assert.Equal(t, []byte("Some data"), fromBytes.Data())

	hash := common.HexToHash("0x1c8aff950685c2ed4bc3174f3472287b56d9517b9c948127319a09a7a36deac8")
	fromHash := MessageFromHash(hash)
	assert.True(t, fromHash.IsHash())
	assert.Nil(t, fromHash.Data())
	assert.Equal(t, hash, fromHash.Digest())
	assert.Equal(t, fromHash, MessageFromDigest([32]byte(hash)))
}
