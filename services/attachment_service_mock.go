package services

import (
	"fmt"
	"mime/multipart"
	"sync"
)

// MockAttachmentStore is an in-memory AttachmentStore for testing
type MockAttachmentStore struct {
	savedFiles map[string][]byte // map of key to file content
	mu         sync.RWMutex
}

// NewMockAttachmentStore creates a new mock attachment store
func NewMockAttachmentStore() *MockAttachmentStore {
	return &MockAttachmentStore{
		savedFiles: make(map[string][]byte),
	}
}

// Save simulates storing an attachment
func (m *MockAttachmentStore) Save(fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content := make([]byte, fileHeader.Size)
	if _, err := file.Read(content); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := fmt.Sprintf("uploads/mock_%s", fileHeader.Filename)

	m.mu.Lock()
	m.savedFiles[key] = content
	m.mu.Unlock()

	return key, nil
}

// GetPresignedURL simulates generating a download URL
func (m *MockAttachmentStore) GetPresignedURL(key string) (string, error) {
	if key == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.savedFiles[key]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("file not found in mock store: %s", key)
	}

	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", key), nil
}

// Delete simulates removing an attachment
func (m *MockAttachmentStore) Delete(key string) error {
	if key == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.savedFiles, key)
	m.mu.Unlock()

	return nil
}

// FileExists checks if a file exists in mock storage
func (m *MockAttachmentStore) FileExists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.savedFiles[key]
	return exists
}

// Clear removes all files from mock storage
func (m *MockAttachmentStore) Clear() {
	m.mu.Lock()
	m.savedFiles = make(map[string][]byte)
	m.mu.Unlock()
}
