package storage_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/JaimeStill/intake/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=intakestore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/intakestore;"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newBackends(t *testing.T) map[string]storage.System {
	t.Helper()

	azure, err := storage.New(&storage.Config{
		Provider:         storage.ProviderAzure,
		ContainerName:    "submissions",
		ConnectionString: azuriteConnString,
	}, discardLogger())
	if err != nil {
		t.Fatalf("New(azure) error = %v", err)
	}

	s3, err := storage.New(&storage.Config{
		Provider:      storage.ProviderS3,
		ContainerName: "submissions",
		Region:        "us-east-1",
		Endpoint:      "http://127.0.0.1:9000",
		AccessKey:     "minio",
		SecretKey:     "minio-secret",
	}, discardLogger())
	if err != nil {
		t.Fatalf("New(s3) error = %v", err)
	}

	return map[string]storage.System{"azure": azure, "s3": s3}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	if _, err := storage.New(&storage.Config{Provider: "ftp"}, discardLogger()); err == nil {
		t.Error("New() error = nil, want error")
	}
}

func TestNewInvalidConnectionString(t *testing.T) {
	cfg := &storage.Config{
		Provider:         storage.ProviderAzure,
		ContainerName:    "submissions",
		ConnectionString: "not-a-connection-string",
	}
	if _, err := storage.New(cfg, discardLogger()); err == nil {
		t.Error("New() error = nil, want error")
	}
}

func TestKeyValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		key     string
		wantErr error
	}{
		{"", storage.ErrEmptyKey},
		{"../etc/passwd", storage.ErrInvalidKey},
		{"submissions/../../secret", storage.ErrInvalidKey},
		{"/abs/key", storage.ErrInvalidKey},
		{"submissions/./x", storage.ErrInvalidKey},
	}

	for name, sys := range newBackends(t) {
		for _, tt := range tests {
			t.Run(fmt.Sprintf("%s/%q", name, tt.key), func(t *testing.T) {
				if err := sys.Upload(ctx, tt.key, strings.NewReader("x"), "image/png"); !errors.Is(err, tt.wantErr) {
					t.Errorf("Upload() err = %v, want %v", err, tt.wantErr)
				}
				if _, err := sys.Download(ctx, tt.key); !errors.Is(err, tt.wantErr) {
					t.Errorf("Download() err = %v, want %v", err, tt.wantErr)
				}
				if err := sys.Delete(ctx, tt.key); !errors.Is(err, tt.wantErr) {
					t.Errorf("Delete() err = %v, want %v", err, tt.wantErr)
				}
				if _, err := sys.Exists(ctx, tt.key); !errors.Is(err, tt.wantErr) {
					t.Errorf("Exists() err = %v, want %v", err, tt.wantErr)
				}
			})
		}
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", storage.ErrEmptyKey), http.StatusBadRequest},
		{storage.ErrInvalidKey, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := storage.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
