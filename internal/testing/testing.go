// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/yto/internal/models"
	"github.com/desertthunder/yto/internal/services"
)

// MockProvider is a configurable test double for [services.Provider].
type MockProvider struct {
	ProviderName     string
	Pages            []*services.PlaylistPage
	ItemPages        map[string][]*services.VideoPage
	AuthenticateErr  error
	PlaylistsErr     error
	PlaylistItemsErr error

	mu             sync.Mutex
	playlistCalls  int
	itemCallCounts map[string]int
}

func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

func (m *MockProvider) Namespace() string { return models.NamespaceDefault }

func (m *MockProvider) Authenticate(ctx context.Context, credentials map[string]string) error {
	return m.AuthenticateErr
}

func (m *MockProvider) Playlists(ctx context.Context, pageToken string) (*services.PlaylistPage, error) {
	if m.PlaylistsErr != nil {
		return nil, m.PlaylistsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.playlistCalls >= len(m.Pages) {
		return &services.PlaylistPage{}, nil
	}
	page := m.Pages[m.playlistCalls]
	m.playlistCalls++
	return page, nil
}

func (m *MockProvider) PlaylistItems(ctx context.Context, playlistID, pageToken string) (*services.VideoPage, error) {
	if m.PlaylistItemsErr != nil {
		return nil, m.PlaylistItemsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.itemCallCounts == nil {
		m.itemCallCounts = make(map[string]int)
	}
	call := m.itemCallCounts[playlistID]
	m.itemCallCounts[playlistID]++

	pages := m.ItemPages[playlistID]
	if call >= len(pages) {
		return &services.VideoPage{}, nil
	}
	return pages[call], nil
}

// ItemCalls reports how many item fetches ran for playlistID.
func (m *MockProvider) ItemCalls(playlistID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.itemCallCounts[playlistID]
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(data)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if err == nil && !info.IsDir() {
		t.Errorf("Expected a directory at %s", path)
	}
}
