package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3Client is the subset of the S3 API the store uses. *s3.Client
// satisfies it; tests substitute a fake.
type s3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store stores the snapshot as a single JSON object in AWS S3.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	store := persist.NewS3Store(s3.NewFromConfig(cfg), "my-bucket", "state/properties.json")
type S3Store struct {
	client s3Client
	bucket string
	key    string
}

// NewS3Store creates a snapshot store writing to key in bucket.
//
// Parameters:
//   - client: AWS S3 client from aws-sdk-go-v2
//   - bucket: S3 bucket name
//   - key: Object key for the snapshot (e.g. "state/properties.json")
func NewS3Store(client *s3.Client, bucket, key string) *S3Store {
	return &S3Store{client: client, bucket: bucket, key: key}
}

// Save uploads the snapshot, replacing the previous object.
func (s *S3Store) Save(ctx context.Context, snap map[string]json.RawMessage) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("persist: encode snapshot: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        strings.NewReader(string(data)),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"saved-at": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("persist: s3 upload failed: %w", err)
	}
	return nil
}

// Load downloads and decodes the snapshot object.
func (s *S3Store) Load(ctx context.Context) (map[string]json.RawMessage, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("persist: s3 download failed: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("persist: read snapshot body: %w", err)
	}

	var snap map[string]json.RawMessage
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("persist: decode snapshot: %w", err)
	}
	return snap, nil
}
