package storage

import (
	"context"
	"errors"
	"testing"

	benchErrors "github.com/arkilian/readbench/internal/errors"
)

// stubStorage records calls and returns canned Exists results.
type stubStorage struct {
	exists    bool
	existsErr error
	uploads   []string
}

func (s *stubStorage) Upload(ctx context.Context, localPath, objectPath string) error {
	s.uploads = append(s.uploads, objectPath)
	return nil
}

func (s *stubStorage) Exists(ctx context.Context, objectPath string) (bool, error) {
	return s.exists, s.existsErr
}

func TestPublish_ExistsErrorSkipsUpload(t *testing.T) {
	errUnreachable := errors.New("endpoint unreachable")
	store := &stubStorage{existsErr: errUnreachable}

	err := Publish(context.Background(), store, "report.json", "reports/run.json")
	if benchErrors.GetCategory(err) != benchErrors.ErrCategoryStorage {
		t.Errorf("expected storage error, got %v", err)
	}
	if benchErrors.GetCode(err) != benchErrors.CodeUploadFailed {
		t.Errorf("expected code %s, got %q", benchErrors.CodeUploadFailed, benchErrors.GetCode(err))
	}
	if !errors.Is(err, errUnreachable) {
		t.Errorf("expected cause in chain, got %v", err)
	}
	if len(store.uploads) != 0 {
		t.Errorf("expected no upload, got %v", store.uploads)
	}
}

func TestPublish_ExistingObjectSkipsUpload(t *testing.T) {
	store := &stubStorage{exists: true}

	err := Publish(context.Background(), store, "report.json", "reports/run.json")
	if !errors.Is(err, ErrObjectExists) {
		t.Errorf("expected ErrObjectExists, got %v", err)
	}
	if len(store.uploads) != 0 {
		t.Errorf("expected no upload, got %v", store.uploads)
	}
}

func TestPublish_UploadsNewObject(t *testing.T) {
	store := &stubStorage{}

	if err := Publish(context.Background(), store, "report.json", "reports/run.json"); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(store.uploads) != 1 || store.uploads[0] != "reports/run.json" {
		t.Errorf("expected one upload of reports/run.json, got %v", store.uploads)
	}
}
