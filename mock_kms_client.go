package eth_sig_recover

import (
	"context"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/service/kms"
)

type MockKMSClient struct {
	MockGetPublicKey func(ctx context.Context, input *kms.GetPublicKeyInput) (*kms.GetPublicKeyOutput, error)
	Calls            atomic.Int32
}

func (m *MockKMSClient) GetPublicKey(ctx context.Context, input *kms.GetPublicKeyInput, _ ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error) {
	m.Calls.Add(1)
	if m.MockGetPublicKey != nil {
		return m.MockGetPublicKey(ctx, input)
	}
	return nil, nil
}
