// Package receipts archives a JSON record of every completed wallet link in
// S3-compatible object storage.
package receipts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Receipt is the archived proof of a completed link.
type Receipt struct {
	UserID        string    `json:"userId"`
	WalletAddress string    `json:"walletAddress"`
	WalletType    string    `json:"walletType"`
	SessionID     string    `json:"sessionId"`
	Nonce         string    `json:"nonce"`
	Message       string    `json:"message"`
	Signature     string    `json:"signature"`
	LinkedAt      time.Time `json:"linkedAt"`
}

// Archive stores receipts.
type Archive interface {
	Put(ctx context.Context, r *Receipt) error
}

// Nop drops receipts. It is used when no bucket is configured.
type Nop struct{}

func (Nop) Put(context.Context, *Receipt) error { return nil }

// Config selects the bucket and the endpoint to write to.
type Config struct {
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	BaseEndpoint string // e.g. a MinIO URL; empty means AWS
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Archive writes receipts with PutObject.
type S3Archive struct {
	client objectPutter
	bucket string
}

// New returns an S3Archive for cfg, or Nop when cfg.Bucket is empty.
func New(ctx context.Context, cfg Config) (Archive, error) {
	if cfg.Bucket == "" {
		return Nop{}, nil
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("aws config error: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Archive{client: client, bucket: cfg.Bucket}, nil
}

// Key is the object key of the receipt for a session.
func Key(userID, sessionID string) string {
	return fmt.Sprintf("wallet-links/%s/%s.json", userID, sessionID)
}

func (a *S3Archive) Put(ctx context.Context, r *Receipt) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("receipt encode error: %w", err)
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(Key(r.UserID, r.SessionID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3 put error: %w", err)
	}
	return nil
}
