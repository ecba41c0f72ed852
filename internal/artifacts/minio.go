// Package artifacts uploads rendered exports to S3-compatible object storage
// and hands out time-limited download links.
package artifacts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const defaultLinkTTL = 15 * time.Minute

// ErrDisabled is returned by NewMinioStore when no endpoint is configured.
var ErrDisabled = errors.New("artifact storage is not configured")

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	LinkTTL   time.Duration
}

// Artifact describes an uploaded export.
type Artifact struct {
	Key         string    `json:"key"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType"`
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type MinioStore struct {
	client  *minio.Client
	bucket  string
	linkTTL time.Duration
}

func NewMinioStore(ctx context.Context, cfg Config) (*MinioStore, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, ErrDisabled
	}
	if cfg.Bucket == "" {
		return nil, errors.New("artifact bucket is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	s := &MinioStore{client: client, bucket: cfg.Bucket, linkTTL: cfg.LinkTTL}
	if s.linkTTL <= 0 {
		s.linkTTL = defaultLinkTTL
	}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MinioStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

// Upload stores data under projects/<projectID>/<timestamp>-<filename> and
// returns a presigned GET link.
func (s *MinioStore) Upload(ctx context.Context, projectID, filename, contentType string, data []byte) (Artifact, error) {
	key := ObjectKey(projectID, filename, time.Now().UTC())
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return Artifact{}, fmt.Errorf("put object: %w", err)
	}

	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", filename))
	link, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.linkTTL, params)
	if err != nil {
		return Artifact{}, fmt.Errorf("presign object: %w", err)
	}
	return Artifact{
		Key:         key,
		Size:        int64(len(data)),
		ContentType: contentType,
		URL:         link.String(),
		ExpiresAt:   time.Now().UTC().Add(s.linkTTL),
	}, nil
}

// ObjectKey builds the storage key for an export made at ts.
func ObjectKey(projectID, filename string, ts time.Time) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "export"
	}
	return path.Join("projects", projectID, ts.Format("20060102T150405Z")+"-"+name)
}
