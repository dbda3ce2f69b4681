package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	storage_go "github.com/supabase-community/storage-go"

	"github.com/illegalcall/codeshell/internal/models"
)

// SupabaseStorage keeps snapshots in a Supabase Storage bucket.
type SupabaseStorage struct {
	client *storage_go.Client
	bucket string
	now    func() time.Time
}

func NewSupabaseStorage(client *storage_go.Client, bucket string) *SupabaseStorage {
	return &SupabaseStorage{client: client, bucket: bucket, now: time.Now}
}

func (s *SupabaseStorage) StoreSnapshot(ctx context.Context, appName string, files models.FileMap) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := json.Marshal(files)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	path := fmt.Sprintf("%s/%d.json", safeName(appName), s.now().UnixMilli())
	contentType := "application/json"
	upsert := false
	_, err = s.client.UploadFile(s.bucket, path, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot: %w", err)
	}
	return path, nil
}

func (s *SupabaseStorage) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(s.bucket, []string{path}); err != nil {
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	return nil
}
