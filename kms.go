package eth_sig_recover

import (
	"context"
	"crypto/ecdsa"
	"encoding/asn1"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
)

// KMSClient defines the subset of AWS KMS client functionalities required by KMSAddressResolver.
// Only read access to the public key is needed; the private key never leaves KMS.
type KMSClient interface {
	// GetPublicKey retrieves the public key associated with the specified KMS key.
	GetPublicKey(ctx context.Context, input *kms.GetPublicKeyInput, optFns ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error)
}

var _ KMSClient = (*kms.Client)(nil)

// ECDSAPublicKey represents the ASN.1 structure of an ECDSA public key (SubjectPublicKeyInfo).
// It includes the algorithm identifiers and the public key bit string.
type ECDSAPublicKey struct {
	Algorithm struct {
		Algorithm  asn1.ObjectIdentifier
		Parameters asn1.ObjectIdentifier
	}
	PublicKey asn1.BitString
}

// KMSAddressResolver resolves the Ethereum address of a secp256k1 key held in
// AWS KMS, so that signatures produced by that key can be verified.
// The address is fetched from KMS once and cached; it is safe for concurrent use.
type KMSAddressResolver struct {
	kmsClient KMSClient  // AWS KMS client interface
	keyID     string     // Identifier of the KMS key
	logger    log.Logger // Structured logger

	mu      sync.Mutex
	address *common.Address // set after the first successful resolution
}

// ResolverOption configures a KMSAddressResolver.
type ResolverOption func(*KMSAddressResolver)

// WithLogger sets the logger used by the resolver. Defaults to log.Root().
func WithLogger(logger log.Logger) ResolverOption {
	return func(r *KMSAddressResolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewKMSAddressResolver creates a new instance of KMSAddressResolver.
//
// Parameters:
//   - kmsClient: An implementation of the KMSClient interface.
//   - keyID: The identifier of the KMS key.
//   - opts: Optional resolver settings.
//
// Returns:
//   - A pointer to a KMSAddressResolver instance.
//   - An error if the kmsClient is nil or the keyID is empty.
func NewKMSAddressResolver(kmsClient KMSClient, keyID string, opts ...ResolverOption) (*KMSAddressResolver, error) {
	if kmsClient == nil {
		return nil, errors.New("kms client is nil")
	}

	if keyID == "" {
		return nil, errors.New("keyID is empty")
	}

	resolver := &KMSAddressResolver{
		kmsClient: kmsClient,
		keyID:     keyID,
		logger:    log.Root(),
	}
	for _, opt := range opts {
		opt(resolver)
	}
	resolver.logger = resolver.logger.With("kmsKey", keyID)

	return resolver, nil
}

// KeyID returns the identifier of the KMS key.
func (r *KMSAddressResolver) KeyID() string {
	return r.keyID
}

// PublicKey retrieves the public key associated with the KMS key.
// It returns both the ECDSA public key and its ASN.1 structured representation.
//
// The process involves:
//  1. Calling KMS's GetPublicKey API to fetch the public key bytes.
//  2. Decoding the ASN.1 public key structure.
//  3. Unmarshalling the public key into an ECDSA public key.
func (r *KMSAddressResolver) PublicKey(ctx context.Context) (*ecdsa.PublicKey, *ECDSAPublicKey, error) {
	input := &kms.GetPublicKeyInput{
		KeyId: &r.keyID,
	}

	output, err := r.kmsClient.GetPublicKey(ctx, input)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get public key from KMS: %w", err)
	}
	if output == nil {
		return nil, nil, errors.New("empty GetPublicKey response from KMS")
	}

	return parseSubjectPublicKeyInfo(output.PublicKey)
}

// Address derives the Ethereum address associated with the KMS-managed public key.
//
// The Ethereum address is obtained by:
//  1. Retrieving the public key from KMS.
//  2. Ensuring the public key is in the uncompressed format.
//  3. Hashing the 64 coordinate bytes using Keccak256.
//  4. Taking the last 20 bytes of the hash as the Ethereum address.
//
// Only the first successful call reaches KMS; later calls return the cached
// address. Failed lookups are not cached.
func (r *KMSAddressResolver) Address(ctx context.Context) (common.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.address != nil {
		return *r.address, nil
	}

	_, asn1PubKey, err := r.PublicKey(ctx)
	if err != nil {
		return common.Address{}, err
	}

	address, err := addressFromUncompressed(asn1PubKey.PublicKey.Bytes)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid public key format: %w", err)
	}

	r.logger.Debug("Resolved KMS key address", "address", address)
	r.address = &address
	return address, nil
}

// Verify checks that sig over msg was produced by the KMS key. The key's
// address is resolved through Address, so only the first call costs a KMS
// round-trip.
func (r *KMSAddressResolver) Verify(ctx context.Context, sig Signature, msg RecoveryMessage) error {
	address, err := r.Address(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve address: %w", err)
	}

	err = sig.Verify(msg, address)
	var verr *VerificationError
	if errors.As(err, &verr) {
		r.logger.Warn("Signature does not match KMS key", "expected", verr.Expected, "recovered", verr.Recovered)
	}
	return err
}

// parseSubjectPublicKeyInfo decodes a DER SubjectPublicKeyInfo holding a secp256k1 key.
func parseSubjectPublicKeyInfo(der []byte) (*ecdsa.PublicKey, *ECDSAPublicKey, error) {
	var pubKey ECDSAPublicKey
	_, err := asn1.Unmarshal(der, &pubKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode public key ASN1: %w", err)
	}

	pubKeyECDSA, err := crypto.UnmarshalPubkey(pubKey.PublicKey.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal public key: %w", err)
	}

	// Verify that the public key lies on the secp256k1 curve
	if !pubKeyECDSA.IsOnCurve(pubKeyECDSA.X, pubKeyECDSA.Y) {
		return nil, nil, errors.New("public key is not on curve")
	}

	return pubKeyECDSA, &pubKey, nil
}
