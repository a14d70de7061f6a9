package submissions_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/intake/internal/pipeline"
	"github.com/JaimeStill/intake/internal/submissions"
	"github.com/JaimeStill/intake/pkg/lifecycle"
	"github.com/JaimeStill/intake/pkg/pagination"
	"github.com/JaimeStill/intake/pkg/storage"
)

type recordingStore struct {
	mu        sync.Mutex
	uploaded  []string
	deleted   []string
	deleteErr []error
}

func (s *recordingStore) Start(*lifecycle.Coordinator) error { return nil }

func (s *recordingStore) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.Copy(io.Discard, r)
	s.uploaded = append(s.uploaded, key)
	return nil
}

func (s *recordingStore) Download(context.Context, string) (io.ReadCloser, error) {
	return nil, storage.ErrNotFound
}

func (s *recordingStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	s.deleteErr = append(s.deleteErr, ctx.Err())
	return nil
}

func (s *recordingStore) Exists(context.Context, string) (bool, error) { return false, nil }

func TestCreateCompensatesAfterCancellation(t *testing.T) {
	db, err := sql.Open("pgx", "postgres://intake@127.0.0.1:1/intake?sslmode=disable&connect_timeout=1")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	store := &recordingStore{}
	sys := submissions.New(
		db,
		store,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)

	// The upload succeeds, then the client goes away before the insert.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = sys.Create(ctx, submissions.CreateCommand{
		Image:       pngScan,
		Filename:    "pension.png",
		ContentType: "image/png",
		Modality:    pipeline.ModalityImage,
		Result:      pipeline.ProcessedForm{FormType: "Pension", SuggestedRoute: "Department of Social Welfare"},
	})
	if err == nil {
		t.Fatal("Create() succeeded without a database")
	}

	if len(store.uploaded) != 1 {
		t.Fatalf("uploads = %v, want one", store.uploaded)
	}
	if len(store.deleted) != 1 || store.deleted[0] != store.uploaded[0] {
		t.Fatalf("deleted = %v, want the uploaded key %v", store.deleted, store.uploaded)
	}
	if store.deleteErr[0] != nil {
		t.Errorf("compensating delete ran on a cancelled context: %v", store.deleteErr[0])
	}
}

var pngScan = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
