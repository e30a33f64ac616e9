package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalAttachmentStore stores attachments on the local filesystem.
// Used in development and tests where no S3 bucket is configured.
type LocalAttachmentStore struct {
	Dir string
}

// NewLocalAttachmentStore creates the upload directory if needed
func NewLocalAttachmentStore(dir string) (*LocalAttachmentStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalAttachmentStore{Dir: dir}, nil
}

// Save writes the uploaded file under a unique name and returns the
// relative path used as the attachment key.
func (s *LocalAttachmentStore) Save(fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	ext := filepath.Ext(fileHeader.Filename)
	name := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	path := filepath.Join(s.Dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return path, nil
}

// GetPresignedURL returns the local path as-is; there is nothing to sign
func (s *LocalAttachmentStore) GetPresignedURL(key string) (string, error) {
	return key, nil
}

// Delete removes a stored attachment
func (s *LocalAttachmentStore) Delete(key string) error {
	if key == "" {
		return nil
	}
	if err := os.Remove(key); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
