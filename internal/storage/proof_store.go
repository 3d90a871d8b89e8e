package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	storage_go "github.com/supabase-community/storage-go"
	"go.uber.org/zap"
)

// ProofStore persists payment proof files and returns the stored object path.
type ProofStore interface {
	Store(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// SupabaseProofStore stores proofs in a Supabase storage bucket.
type SupabaseProofStore struct {
	client *storage_go.Client
	bucket string
	logger *zap.Logger
}

// NewSupabaseProofStore creates a ProofStore backed by the given Supabase
// project. url is the project storage endpoint, serviceKey the service-role
// key.
func NewSupabaseProofStore(url, serviceKey, bucket string, logger *zap.Logger) *SupabaseProofStore {
	client := storage_go.NewClient(url, serviceKey, nil)
	return &SupabaseProofStore{client: client, bucket: bucket, logger: logger}
}

// Store uploads the proof under objectPath and returns the bucket-relative
// path recorded on the payment row.
func (s *SupabaseProofStore) Store(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	_ = ctx

	_, err := s.client.UploadFile(s.bucket, objectPath, r, storage_go.FileOptions{
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload proof %s: %w", objectPath, err)
	}

	stored := path.Join(s.bucket, objectPath)
	s.logger.Debug("proof stored", zap.String("path", stored))
	return stored, nil
}
