package interop

import (
	"crypto/ecdsa"
	"encoding/asn1"
	"errors"
	"math/big"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	decredecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sigrecover "eth-sig-recover"
)

const web3SignatureHex = "0xb91467e570a6466aa9e9876cbcd013baba02900b8979d43fe208a4a4f339f5fd6007e74cd82e037b800186422fc2da167c747ef045e5d18a5f5d4300f8e1a0291c"

func signPersonal(t testing.TB, key *ecdsa.PrivateKey, data []byte) [sigrecover.SignatureLength]byte {
	t.Helper()
	digest := sigrecover.HashPersonalMessage(data)
	sig, err := crypto.Sign(digest[:], key)
	require.NoError(t, err)

	var raw [sigrecover.SignatureLength]byte
	copy(raw[:], sig)
	return raw
}

func TestFromRaw(t *testing.T) {
	expected, err := sigrecover.ParseSignature(web3SignatureHex)
	require.NoError(t, err)

	assert.Equal(t, expected, FromRaw(expected.Bytes()))
}

func TestFromCompact(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	pub := priv.PubKey().SerializeUncompressed()
	expected := common.BytesToAddress(crypto.Keccak256(pub[1:])[12:])

	data := []byte("compact")
	digest := sigrecover.HashPersonalMessage(data)

	for _, compressed := range []bool{false, true} {
		compact := decredecdsa.SignCompact(priv, digest[:], compressed)

		sig, err := FromCompact(compact)
		require.NoError(t, err)
		assert.True(t, sig.V == 27 || sig.V == 28, "unexpected v %d", sig.V)

		address, err := sig.Recover(sigrecover.MessageFromBytes(data))
		require.NoError(t, err)
		assert.Equal(t, expected, address)
	}
}

func TestFromCompact_Errors(t *testing.T) {
	_, err := FromCompact(make([]byte, 64))
	var lerr *sigrecover.InvalidLengthError
	assert.True(t, errors.As(err, &lerr))

	for _, header := range []byte{0, 26, 29, 30, 33, 34, 35, 255} {
		compact := make([]byte, sigrecover.SignatureLength)
		compact[0] = header
		_, err := FromCompact(compact)
		var rerr *sigrecover.RecoveryError
		assert.Truef(t, errors.As(err, &rerr), "header %d: expected RecoveryError, got %v", header, err)
	}

	for _, header := range []byte{27, 28, 31, 32} {
		compact := make([]byte, sigrecover.SignatureLength)
		compact[0] = header
		sig, err := FromCompact(compact)
		require.NoErrorf(t, err, "header %d", header)
		assert.Equal(t, uint64(27+(header-27)%4), sig.V)
	}
}

func TestFromDER(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	expected := crypto.PubkeyToAddress(key.PublicKey)

	data := []byte("signed by an HSM")
	msg := sigrecover.MessageFromBytes(data)
	raw := signPersonal(t, key, data)

	r := new(big.Int).SetBytes(raw[:32])
	s := new(big.Int).SetBytes(raw[32:64])
	highS := new(big.Int).Sub(secp256k1N, s)

	for name, scalar := range map[string]*big.Int{"low s": s, "high s": highS} {
		t.Run(name, func(t *testing.T) {
			der, err := asn1.Marshal(asn1EcSig{R: r, S: scalar})
			require.NoError(t, err)

			sig, err := FromDER(der, msg, expected)
			require.NoError(t, err)

			out := sig.Bytes()
			assert.Equal(t, raw[:64], out[:64])
			assert.Equal(t, uint64(raw[64])+27, sig.V)
			assert.NoError(t, sig.Verify(msg, expected))
		})
	}
}

func TestFromDER_Errors(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	expected := crypto.PubkeyToAddress(key.PublicKey)
	data := []byte("signed by an HSM")
	msg := sigrecover.MessageFromBytes(data)
	raw := signPersonal(t, key, data)

	r := new(big.Int).SetBytes(raw[:32])
	s := new(big.Int).SetBytes(raw[32:64])

	marshal := func(r, s *big.Int) []byte {
		der, err := asn1.Marshal(asn1EcSig{R: r, S: s})
		require.NoError(t, err)
		return der
	}
	der := marshal(r, s)

	decodingTests := []struct {
		name string
		der  []byte
	}{
		{name: "malformed", der: []byte{0x30, 0x44, 0x02, 0x20}},
		{name: "trailing data", der: append(append([]byte(nil), der...), 0x00)},
		{name: "zero r", der: marshal(big.NewInt(0), big.NewInt(1))},
		{name: "negative s", der: marshal(r, big.NewInt(-1))},
		{name: "r at curve order", der: marshal(new(big.Int).Set(secp256k1N), s)},
		{name: "r above curve order", der: marshal(new(big.Int).Add(r, secp256k1N), s)},
		{name: "s at curve order", der: marshal(r, new(big.Int).Set(secp256k1N))},
		{name: "s above curve order", der: marshal(r, new(big.Int).Add(s, secp256k1N))},
		{name: "oversized scalar", der: marshal(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))},
	}

	for _, tt := range decodingTests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromDER(tt.der, msg, expected)
			var derr *sigrecover.DecodingError
			require.True(t, errors.As(err, &derr), "expected DecodingError, got %v", err)
			assert.ErrorIs(t, err, sigrecover.ErrSignature)
		})
	}

	t.Run("other signer", func(t *testing.T) {
		other := common.HexToAddress("0x0000000000000000000000000000000000000001")
		_, err := FromDER(der, msg, other)
		var verr *sigrecover.VerificationError
		require.True(t, errors.As(err, &verr), "expected VerificationError, got %v", err)
		assert.Equal(t, other, verr.Expected)
	})
}
