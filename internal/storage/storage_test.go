package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	puts     int
	failures int
	lastKey  string
	deleted  []string
}

func (f *fakeS3) PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts++
	if f.puts <= f.failures {
		return nil, errors.New("transient failure")
	}
	f.lastKey = *input.Key
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func testStorage(client s3Client) *PhotoStorage {
	return &PhotoStorage{
		client:  client,
		bucket:  "photos",
		baseURL: "https://cdn.example.com",
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestUpload(t *testing.T) {
	fake := &fakeS3{}
	ps := testStorage(fake)

	key, url, err := ps.Upload(context.Background(), 7, "beach.JPG", "image/jpeg", []byte("data"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(key, "groups/7/photos/") {
		t.Errorf("key = %q, want groups/7/photos/ prefix", key)
	}
	if !strings.HasSuffix(key, ".jpg") {
		t.Errorf("key = %q, want lowercased .jpg extension", key)
	}
	if url != "https://cdn.example.com/"+key {
		t.Errorf("url = %q", url)
	}
	if fake.lastKey != key {
		t.Errorf("stored key = %q, want %q", fake.lastKey, key)
	}
}

func TestUploadRetriesTransientFailures(t *testing.T) {
	fake := &fakeS3{failures: 2}
	ps := testStorage(fake)

	if _, _, err := ps.Upload(context.Background(), 7, "a.png", "image/png", []byte("data")); err != nil {
		t.Fatalf("upload with retries: %v", err)
	}
	if fake.puts != 3 {
		t.Errorf("put attempts = %d, want 3", fake.puts)
	}
}

func TestUploadGivesUpAfterRetries(t *testing.T) {
	fake := &fakeS3{failures: 10}
	ps := testStorage(fake)

	if _, _, err := ps.Upload(context.Background(), 7, "a.png", "image/png", []byte("data")); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}

func TestUploadKeysUnique(t *testing.T) {
	fake := &fakeS3{}
	ps := testStorage(fake)

	k1, _, _ := ps.Upload(context.Background(), 7, "a.png", "image/png", []byte("x"))
	k2, _, _ := ps.Upload(context.Background(), 7, "a.png", "image/png", []byte("x"))
	if k1 == k2 {
		t.Errorf("keys collide: %q", k1)
	}
}

func TestDelete(t *testing.T) {
	fake := &fakeS3{}
	ps := testStorage(fake)

	if err := ps.Delete(context.Background(), "groups/7/photos/x.jpg"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(fake.deleted) != 1 || fake.deleted[0] != "groups/7/photos/x.jpg" {
		t.Errorf("deleted = %v", fake.deleted)
	}
}
