package eth_sig_recover

import (
	"encoding/asn1"
	"encoding/pem"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ECPrivateKey represents an ASN.1 encoded EC private key
type ECPrivateKey struct {
	Version    int
	PrivateKey []byte
	Parameters asn1.ObjectIdentifier `asn1:"optional,explicit,tag:0"`
	PublicKey  asn1.BitString        `asn1:"optional,explicit,tag:1"`
}

// AddressFromPEM derives the Ethereum address of a PEM encoded secp256k1 key.
//
// Supported blocks:
//   - "PUBLIC KEY": SubjectPublicKeyInfo, the format KMS exports public keys in.
//   - "EC PRIVATE KEY": only the embedded public key is read.
func AddressFromPEM(pemData []byte) (common.Address, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return common.Address{}, fmt.Errorf("failed to decode PEM block")
	}

	var pubKeyBytes []byte
	switch block.Type {
	case "PUBLIC KEY":
		_, spki, err := parseSubjectPublicKeyInfo(block.Bytes)
		if err != nil {
			return common.Address{}, err
		}
		pubKeyBytes = spki.PublicKey.Bytes
	case "EC PRIVATE KEY":
		var privKey ECPrivateKey
		if _, err := asn1.Unmarshal(block.Bytes, &privKey); err != nil {
			return common.Address{}, fmt.Errorf("failed to parse ASN.1 structure: %v", err)
		}
		if _, err := crypto.UnmarshalPubkey(privKey.PublicKey.Bytes); err != nil {
			return common.Address{}, fmt.Errorf("failed to unmarshal public key: %w", err)
		}
		pubKeyBytes = privKey.PublicKey.Bytes
	default:
		return common.Address{}, fmt.Errorf("unsupported PEM block type %q", block.Type)
	}

	return addressFromUncompressed(pubKeyBytes)
}
