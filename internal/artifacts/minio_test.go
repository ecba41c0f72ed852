package artifacts

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func TestObjectKey(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	cases := []struct {
		filename string
		want     string
	}{
		{filename: "course.csv", want: "projects/prj_1/20260304T050607Z-course.csv"},
		{filename: "../../etc/passwd", want: "projects/prj_1/20260304T050607Z-passwd"},
		{filename: `dir\course.pdf`, want: "projects/prj_1/20260304T050607Z-course.pdf"},
		{filename: "", want: "projects/prj_1/20260304T050607Z-export"},
	}
	for _, tc := range cases {
		if got := ObjectKey("prj_1", tc.filename, ts); got != tc.want {
			t.Errorf("ObjectKey(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}

func TestNewMinioStoreDisabled(t *testing.T) {
	if _, err := NewMinioStore(context.Background(), Config{}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("NewMinioStore() error = %v, want ErrDisabled", err)
	}
	if _, err := NewMinioStore(context.Background(), Config{Endpoint: "localhost:9000"}); err == nil {
		t.Fatal("missing bucket should fail")
	}
}

func TestUploadIntegration(t *testing.T) {
	endpoint := os.Getenv("CURRICULUM_TEST_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("CURRICULUM_TEST_MINIO_ENDPOINT not set")
	}
	ctx := context.Background()
	store, err := NewMinioStore(ctx, Config{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("CURRICULUM_TEST_MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("CURRICULUM_TEST_MINIO_SECRET_KEY"),
		Bucket:    "curriculum-test",
		LinkTTL:   time.Minute,
	})
	if err != nil {
		t.Fatalf("NewMinioStore() error = %v", err)
	}
	artifact, err := store.Upload(ctx, "prj_it", "course.csv", "text/csv", []byte("a,b\n"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.HasPrefix(artifact.Key, "projects/prj_it/") || artifact.Size != 4 {
		t.Fatalf("unexpected artifact %+v", artifact)
	}
	resp, err := http.Get(artifact.URL)
	if err != nil {
		t.Fatalf("GET presigned url: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("presigned url status = %d", resp.StatusCode)
	}
}
