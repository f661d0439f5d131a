// Package avatar validates profile picture data URLs and stores them either
// inline on the user record or in an S3 bucket.
package avatar

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"learnstudio/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/samber/oops"
)

var (
	ErrInvalidAvatar  = errors.New("avatar must be a base64 image data URL (png, jpeg, gif or webp)")
	ErrAvatarTooLarge = errors.New("avatar image is too large")
)

var extensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Image is a decoded data URL
type Image struct {
	ContentType string
	Data        []byte
}

// Parse decodes data:image/<type>;base64,<payload> and enforces maxBytes on the decoded size
func Parse(dataURL string, maxBytes int) (*Image, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return nil, ErrInvalidAvatar
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrInvalidAvatar
	}
	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return nil, ErrInvalidAvatar
	}
	contentType = strings.ToLower(contentType)
	if _, known := extensions[contentType]; !known {
		return nil, ErrInvalidAvatar
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > maxBytes+2 {
		return nil, ErrAvatarTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidAvatar
	}
	if len(data) > maxBytes {
		return nil, ErrAvatarTooLarge
	}
	return &Image{ContentType: contentType, Data: data}, nil
}

// Storage turns an uploaded data URL into the value saved on the user
type Storage interface {
	Store(ctx context.Context, userID, dataURL string) (string, error)
}

// InlineStorage keeps the validated data URL itself
type InlineStorage struct {
	maxBytes int
}

func NewInlineStorage(maxBytes int) *InlineStorage {
	return &InlineStorage{maxBytes: maxBytes}
}

func (s *InlineStorage) Store(_ context.Context, _ string, dataURL string) (string, error) {
	if _, err := Parse(dataURL, s.maxBytes); err != nil {
		return "", err
	}
	return dataURL, nil
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage uploads the decoded image and returns its public URL
type S3Storage struct {
	client    objectPutter
	bucket    string
	publicURL string
	maxBytes  int
}

// NewS3Storage builds an S3 client from static credentials. A custom endpoint
// (MinIO and friends) switches to path-style addressing.
func NewS3Storage(ctx context.Context, cfg config.AvatarConfig) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, oops.Code("S3_CONFIG_INVALID").Wrap(err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		if cfg.Endpoint != "" {
			publicURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return newS3Storage(client, cfg.Bucket, publicURL, cfg.MaxBytes), nil
}

func newS3Storage(client objectPutter, bucket, publicURL string, maxBytes int) *S3Storage {
	return &S3Storage{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/"), maxBytes: maxBytes}
}

func (s *S3Storage) Store(ctx context.Context, userID, dataURL string) (string, error) {
	img, err := Parse(dataURL, s.maxBytes)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("avatars/%s/%s.%s", userID, uuid.NewString(), extensions[img.ContentType])
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType),
	})
	if err != nil {
		return "", oops.Code("AVATAR_UPLOAD_FAILED").With("bucket", s.bucket).With("key", key).Wrap(err)
	}
	return s.publicURL + "/" + key, nil
}
