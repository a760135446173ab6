package testutils

import (
	"context"
	"fmt"
	"mime/multipart"

	"registro-accidentes/backend/storage"
)

// MockStorage is a recording storage.Provider for service tests. Uploads
// return deterministic results; Delete failures can be injected per call.
type MockStorage struct {
	ProviderMode storage.Mode
	UploadErr    error
	DeleteErr    error

	Uploaded []string // original filenames, in call order
	Deleted  []string // public ids passed to Delete, in call order

	uploadCount int
}

func NewMockStorage() *MockStorage {
	return &MockStorage{ProviderMode: storage.ModeRemote}
}

func (m *MockStorage) Mode() storage.Mode {
	return m.ProviderMode
}

func (m *MockStorage) Upload(ctx context.Context, file *multipart.FileHeader) (storage.UploadResult, error) {
	if m.UploadErr != nil {
		return storage.UploadResult{}, m.UploadErr
	}
	m.uploadCount++
	m.Uploaded = append(m.Uploaded, file.Filename)
	return storage.UploadResult{
		URL:      fmt.Sprintf("https://assets.example.com/eventos/img-%d.jpg", m.uploadCount),
		PublicID: fmt.Sprintf("eventos/img-%d", m.uploadCount),
	}, nil
}

func (m *MockStorage) Delete(ctx context.Context, publicID string) error {
	m.Deleted = append(m.Deleted, publicID)
	return m.DeleteErr
}

func (m *MockStorage) OptimizedURL(publicID, storedURL string) string {
	if m.ProviderMode == storage.ModeLocalFallback {
		return storedURL
	}
	return "https://assets.example.com/t_optimizada/" + publicID
}
