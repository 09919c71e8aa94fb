package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/localloop/classifieds-service/internal/classified/domain"
)

type mockVerifier struct {
	identity *domain.Identity
	err      error
	calls    int
}

func (m *mockVerifier) Verify(ctx context.Context, credential string) (*domain.Identity, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.identity, nil
}

type mockListingRepo struct {
	mu        sync.Mutex
	listings  map[string]*domain.Listing
	createErr error
	updateErr error
	deleteErr error
	findErr   error
	degraded  bool

	createCalls int
	updateCalls int
	deleteCalls int
	nextID      int
}

func newMockListingRepo(seed ...*domain.Listing) *mockListingRepo {
	repo := &mockListingRepo{listings: make(map[string]*domain.Listing)}
	for _, l := range seed {
		repo.listings[l.ID] = l
	}
	return repo
}

func (m *mockListingRepo) Create(ctx context.Context, listing *domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	listing.ID = fmt.Sprintf("listing-%d", m.nextID)
	stored := *listing
	m.listings[listing.ID] = &stored
	return nil
}

func (m *mockListingRepo) Update(ctx context.Context, listing *domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.listings[listing.ID]; !ok {
		return domain.ErrListingNotFound
	}
	stored := *listing
	m.listings[listing.ID] = &stored
	return nil
}

func (m *mockListingRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.listings[id]; !ok {
		return domain.ErrListingNotFound
	}
	delete(m.listings, id)
	return nil
}

func (m *mockListingRepo) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	listing, ok := m.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	copied := *listing
	return &copied, nil
}

func (m *mockListingRepo) FindByAuthor(ctx context.Context, authorID string) ([]*domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []*domain.Listing
	for _, l := range m.listings {
		if l.AuthorID == authorID {
			copied := *l
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockListingRepo) FindAll(ctx context.Context) ([]*domain.Listing, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, false, m.findErr
	}
	var out []*domain.Listing
	for _, l := range m.listings {
		copied := *l
		out = append(out, &copied)
	}
	return out, m.degraded, nil
}

type mockBlobStorage struct {
	mu          sync.Mutex
	uploadCalls int
	uploaded    []string
	deleted     []string
	failUploads map[string]error // keyed by file name
	failDeletes map[string]error // keyed by url
}

func newMockBlobStorage() *mockBlobStorage {
	return &mockBlobStorage{
		failUploads: make(map[string]error),
		failDeletes: make(map[string]error),
	}
}

func (m *mockBlobStorage) Upload(ctx context.Context, authorID, fileName string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadCalls++
	if err, ok := m.failUploads[fileName]; ok {
		return "", err
	}
	url := fmt.Sprintf("https://blobs.test/%s/%s", authorID, fileName)
	m.uploaded = append(m.uploaded, url)
	return url, nil
}

func (m *mockBlobStorage) Delete(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, url)
	if err, ok := m.failDeletes[url]; ok {
		return err
	}
	return nil
}

type mockSuggester struct {
	tags  []string
	err   error
	calls int
}

func (m *mockSuggester) SuggestTags(ctx context.Context, title, description string) ([]string, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.tags, nil
}

type mockPublisher struct {
	subjects []string
	err      error
}

func (m *mockPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	m.subjects = append(m.subjects, subject)
	return m.err
}

type mockProfileRepo struct {
	profiles  map[string]*domain.UserProfile
	upserts   []*domain.UserProfile
	findErr   error
	upsertErr error
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]*domain.UserProfile)}
}

func (m *mockProfileRepo) FindByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	profile, ok := m.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func (m *mockProfileRepo) Upsert(ctx context.Context, profile *domain.UserProfile) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	copied := *profile
	m.upserts = append(m.upserts, &copied)
	m.profiles[profile.ID] = &copied
	return nil
}
