package thumbstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"

	"reelforge/internal/services"
)

type stubCapturer struct {
	err error
}

func (s *stubCapturer) CaptureFrame(_ context.Context, _, destDir string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	path := filepath.Join(destDir, "frame.jpg")
	if err := os.WriteFile(path, []byte("jpeg"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type stubUploader struct {
	err    error
	bucket string
	key    string
}

func (s *stubUploader) FPutObject(_ context.Context, bucket, objectName, _ string, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	s.bucket = bucket
	s.key = objectName
	if s.err != nil {
		return minio.UploadInfo{}, s.err
	}
	return minio.UploadInfo{Bucket: bucket, Key: objectName}, nil
}

func TestPublishThumbnailUploadsAndBuildsURL(t *testing.T) {
	uploader := &stubUploader{}
	publisher, err := NewPublisher(Config{
		Endpoint:      "minio.internal:9000",
		Bucket:        "reelforge",
		PublicBaseURL: "https://cdn.example.com/reelforge",
	}, &stubCapturer{}, WithUploader(uploader))
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}

	thumb, err := publisher.PublishThumbnail(context.Background(), "/staging/media.mp4", t.TempDir())
	if err != nil {
		t.Fatalf("PublishThumbnail: %v", err)
	}
	if uploader.bucket != "reelforge" {
		t.Errorf("bucket = %q", uploader.bucket)
	}
	if !strings.HasPrefix(thumb.ObjectKey, "thumbnails/") || !strings.HasSuffix(thumb.ObjectKey, ".jpg") {
		t.Errorf("object key = %q", thumb.ObjectKey)
	}
	if want := "https://cdn.example.com/reelforge/" + thumb.ObjectKey; thumb.URL != want {
		t.Errorf("url = %q, want %q", thumb.URL, want)
	}
	if _, err := os.Stat(thumb.LocalFramePath); err != nil {
		t.Errorf("local frame missing: %v", err)
	}
}

func TestPublishThumbnailDerivesURLFromEndpoint(t *testing.T) {
	publisher, err := NewPublisher(Config{
		Endpoint: "minio.internal:9000",
		Bucket:   "reelforge",
		UseSSL:   true,
	}, &stubCapturer{}, WithUploader(&stubUploader{}))
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}

	thumb, err := publisher.PublishThumbnail(context.Background(), "/staging/media.mp4", t.TempDir())
	if err != nil {
		t.Fatalf("PublishThumbnail: %v", err)
	}
	if !strings.HasPrefix(thumb.URL, "https://minio.internal:9000/reelforge/thumbnails/") {
		t.Errorf("url = %q", thumb.URL)
	}
}

func TestPublishThumbnailUploadFailureRemovesFrame(t *testing.T) {
	capturer := &stubCapturer{}
	publisher, err := NewPublisher(Config{Bucket: "reelforge"}, capturer,
		WithUploader(&stubUploader{err: errors.New("connection refused")}))
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}

	dest := t.TempDir()
	_, pubErr := publisher.PublishThumbnail(context.Background(), "/staging/media.mp4", dest)
	if !errors.Is(pubErr, services.ErrTransient) {
		t.Fatalf("err = %v, want transient error", pubErr)
	}
	if _, statErr := os.Stat(filepath.Join(dest, "frame.jpg")); !os.IsNotExist(statErr) {
		t.Error("frame should have been removed after a failed upload")
	}
}

func TestPublishThumbnailPropagatesCaptureFailure(t *testing.T) {
	captureErr := services.Wrap(services.ErrContent, "thumbnail", "capture_frame", "no frame produced", nil)
	publisher, err := NewPublisher(Config{Bucket: "reelforge"},
		&stubCapturer{err: captureErr}, WithUploader(&stubUploader{}))
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}

	if _, pubErr := publisher.PublishThumbnail(context.Background(), "/staging/media.mp4", t.TempDir()); !errors.Is(pubErr, services.ErrContent) {
		t.Fatalf("err = %v, want capture error passthrough", pubErr)
	}
}
