// Package thumbstore captures a representative video frame and publishes it to
// S3-compatible object storage.
package thumbstore

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"reelforge/internal/pipeline"
	"reelforge/internal/services"
)

// Config captures the object storage settings.
type Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

// FrameCapturer produces a local JPEG frame from a video file.
type FrameCapturer interface {
	CaptureFrame(ctx context.Context, videoPath, destDir string) (string, error)
}

// objectUploader is the slice of the minio client the publisher needs.
type objectUploader interface {
	FPutObject(ctx context.Context, bucket, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Publisher implements pipeline.ThumbnailPublisher.
type Publisher struct {
	cfg      Config
	capturer FrameCapturer
	uploader objectUploader
}

// Option customizes the publisher.
type Option func(*Publisher)

// WithUploader overrides the object storage client (for testing).
func WithUploader(uploader objectUploader) Option {
	return func(p *Publisher) {
		if uploader != nil {
			p.uploader = uploader
		}
	}
}

// NewPublisher constructs a thumbnail publisher backed by S3-compatible
// storage at cfg.Endpoint.
func NewPublisher(cfg Config, capturer FrameCapturer, opts ...Option) (*Publisher, error) {
	if capturer == nil {
		return nil, fmt.Errorf("thumbstore: frame capturer required")
	}
	p := &Publisher{cfg: cfg, capturer: capturer}
	for _, opt := range opts {
		opt(p)
	}
	if p.uploader == nil {
		client, err := minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("thumbstore: connect %s: %w", cfg.Endpoint, err)
		}
		p.uploader = client
	}
	return p, nil
}

// PublishThumbnail captures one frame from videoPath and uploads it. The
// local frame is returned so the caller can register it for cleanup; the
// hosted copy is deliberately left alone, it is a product, not a byproduct.
func (p *Publisher) PublishThumbnail(ctx context.Context, videoPath, destDir string) (pipeline.HostedThumbnail, error) {
	var empty pipeline.HostedThumbnail
	framePath, err := p.capturer.CaptureFrame(ctx, videoPath, destDir)
	if err != nil {
		return empty, err
	}

	objectKey := fmt.Sprintf("thumbnails/%s.jpg", uuid.NewString())
	_, err = p.uploader.FPutObject(ctx, p.cfg.Bucket, objectKey, framePath, minio.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		_ = os.Remove(framePath)
		return empty, services.Wrap(services.ErrTransient, "thumbnail", "upload_frame", "object storage upload", err)
	}

	return pipeline.HostedThumbnail{
		URL:            p.publicURL(objectKey),
		ObjectKey:      objectKey,
		LocalFramePath: framePath,
	}, nil
}

func (p *Publisher) publicURL(objectKey string) string {
	base := strings.TrimSpace(p.cfg.PublicBaseURL)
	if base == "" {
		scheme := "http"
		if p.cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, p.cfg.Endpoint, p.cfg.Bucket)
	}
	joined, err := url.JoinPath(base, objectKey)
	if err != nil {
		return strings.TrimRight(base, "/") + "/" + objectKey
	}
	return joined
}
