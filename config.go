package eth_sig_recover

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Environment variables read by LoadKMSConfigFromEnv.
const (
	EnvRegion          = "AWS_REGION"
	EnvKMSEndpoint     = "KMS_ENDPOINT"
	EnvKMSKeyID        = "KMS_KEY_ID"
	EnvAccessKeyID     = "AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	EnvSessionToken    = "AWS_SESSION_TOKEN"
)

const defaultRegion = "us-east-1"

// KMSConfig holds the settings needed to reach an AWS KMS key.
// Endpoint is only set for KMS compatible services such as Localstack.
// When AccessKeyID is empty the default AWS credential chain is used.
type KMSConfig struct {
	Region          string `env:"AWS_REGION" env-default:"us-east-1"`
	Endpoint        string `env:"KMS_ENDPOINT"`
	KeyID           string `env:"KMS_KEY_ID" env-required:"true"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	SessionToken    string `env:"AWS_SESSION_TOKEN"`
}

// LoadKMSConfigFromEnv reads a KMSConfig from the environment. The given
// dotenv files, if any, are loaded first; variables already set in the
// environment take precedence over them.
func LoadKMSConfigFromEnv(envFiles ...string) (KMSConfig, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return KMSConfig{}, fmt.Errorf("failed to load env files: %w", err)
		}
	}

	var cfg KMSConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return KMSConfig{}, fmt.Errorf("failed to read env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that the configuration is usable.
func (c KMSConfig) Validate() error {
	if c.KeyID == "" {
		return errors.New("kms key id is required")
	}
	if c.AccessKeyID != "" && c.SecretAccessKey == "" {
		return errors.New("secret access key is required when access key id is set")
	}
	return nil
}

// NewKMSClient builds an AWS KMS client from cfg.
func NewKMSClient(ctx context.Context, cfg KMSConfig) (*kms.Client, error) {
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return kms.NewFromConfig(awsCfg, func(o *kms.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// NewKMSAddressResolverFromConfig builds the KMS client and the resolver for cfg.KeyID.
func NewKMSAddressResolverFromConfig(ctx context.Context, cfg KMSConfig, opts ...ResolverOption) (*KMSAddressResolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := NewKMSClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewKMSAddressResolver(client, cfg.KeyID, opts...)
}
