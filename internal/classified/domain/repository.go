package domain

import "context"

type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	Update(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	FindByAuthor(ctx context.Context, authorID string) ([]*Listing, error)
	// FindAll returns listings ordered by creation time descending. When the
	// store cannot honor the ordering it falls back to an unordered read and
	// reports degraded=true instead of failing.
	FindAll(ctx context.Context) (listings []*Listing, degraded bool, err error)
}

type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*UserProfile, error)
	// Upsert merges the given profile into the stored document, creating it
	// if absent. Fields not present in the update are preserved.
	Upsert(ctx context.Context, profile *UserProfile) error
}

// BlobStorage stores image payloads and addresses them by fetchable URL.
type BlobStorage interface {
	Upload(ctx context.Context, authorID, fileName string, data []byte, contentType string) (string, error)
	// Delete is idempotent: removing an object that is already gone is a
	// success, not an error.
	Delete(ctx context.Context, url string) error
}

// IdentityVerifier turns an opaque bearer credential into a verified identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (*Identity, error)
}

type TagSuggester interface {
	SuggestTags(ctx context.Context, title, description string) ([]string, error)
}

type ImageGenerator interface {
	GenerateImage(ctx context.Context, title string) (string, error)
}

// EventPublisher emits lifecycle events. Callers treat publish failures as
// warnings only.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}
