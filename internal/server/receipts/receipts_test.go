package receipts

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	in  *s3.PutObjectInput
	err error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func stubAWS(t *testing.T, putter objectPutter) *s3.Options {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		return aws.Config{Region: lo.Region}, nil
	}

	opts := &s3.Options{}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		for _, fn := range optFns {
			fn(opts)
		}
		return putter
	}
	return opts
}

func TestNew_NoBucketIsNop(t *testing.T) {
	a, err := New(context.Background(), Config{})
	require.NoError(t, err)
	assert.IsType(t, Nop{}, a)
	assert.NoError(t, a.Put(context.Background(), &Receipt{}))
}

func TestNew_AppliesEndpoint(t *testing.T) {
	opts := stubAWS(t, &fakePutter{})

	a, err := New(context.Background(), Config{
		Region: "us-east-1", AccessKey: "ak", SecretKey: "sk",
		Bucket: "receipts", BaseEndpoint: "http://127.0.0.1:9000",
	})
	require.NoError(t, err)
	assert.IsType(t, &S3Archive{}, a)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestNew_ConfigError(t *testing.T) {
	stubAWS(t, &fakePutter{})
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no creds")
	}

	_, err := New(context.Background(), Config{Bucket: "receipts"})
	require.Error(t, err)
}

func TestS3Archive_Put(t *testing.T) {
	p := &fakePutter{}
	a := &S3Archive{client: p, bucket: "receipts"}

	r := &Receipt{
		UserID: "u1", WalletAddress: "0xAbC", WalletType: "evm", SessionID: "s1",
		Nonce: "n", Message: "m", Signature: "0xsig",
		LinkedAt: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, a.Put(context.Background(), r))

	require.NotNil(t, p.in)
	assert.Equal(t, "receipts", *p.in.Bucket)
	assert.Equal(t, "wallet-links/u1/s1.json", *p.in.Key)
	assert.Equal(t, "application/json", *p.in.ContentType)

	body, err := io.ReadAll(p.in.Body)
	require.NoError(t, err)
	var got Receipt
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, *r, got)
}

func TestS3Archive_PutError(t *testing.T) {
	a := &S3Archive{client: &fakePutter{err: errors.New("denied")}, bucket: "receipts"}

	err := a.Put(context.Background(), &Receipt{UserID: "u1", SessionID: "s1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "denied")
}
