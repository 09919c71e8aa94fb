package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/localloop/classifieds-service/internal/classified/domain"
	"github.com/localloop/classifieds-service/internal/platform/logger"
)

// QueryUsecase serves read paths: the public browse view and the caller's own
// listings.
type QueryUsecase struct {
	verifier domain.IdentityVerifier
	repo     domain.ListingRepository
	logger   *logger.Logger
}

func NewQueryUsecase(verifier domain.IdentityVerifier, repo domain.ListingRepository, log *logger.Logger) (*QueryUsecase, error) {
	if verifier == nil || repo == nil || log == nil {
		return nil, fmt.Errorf("%w: query usecase requires verifier, repository and logger", domain.ErrNotConfigured)
	}
	return &QueryUsecase{verifier: verifier, repo: repo, logger: log}, nil
}

// ListAll returns every listing, newest first when the store can honor the
// ordering. degraded=true means the store fell back to an unordered read;
// callers must tolerate arbitrary order in that case.
func (uc *QueryUsecase) ListAll(ctx context.Context) ([]*domain.Listing, bool, error) {
	listings, degraded, err := uc.repo.FindAll(ctx)
	if err != nil {
		uc.logger.Error("QueryUsecase.ListAll: failed to fetch listings", "error", err.Error())
		return nil, false, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if degraded {
		uc.logger.Warn("QueryUsecase.ListAll: store could not order by creation time, returning unordered listings")
	}
	return listings, degraded, nil
}

// GetByID is the public detail read; it needs no credential.
func (uc *QueryUsecase) GetByID(ctx context.Context, listingID string) (*domain.Listing, error) {
	listing, err := uc.repo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return listing, nil
}

// ListByAuthor returns the verified caller's own listings for the dashboard.
func (uc *QueryUsecase) ListByAuthor(ctx context.Context, credential string) ([]*domain.Listing, error) {
	identity, err := uc.verifier.Verify(ctx, credential)
	if err != nil {
		return nil, err
	}
	listings, err := uc.repo.FindByAuthor(ctx, identity.UID)
	if err != nil {
		uc.logger.Error("QueryUsecase.ListByAuthor: failed to fetch listings",
			"user_id", identity.UID, "error", err.Error())
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return listings, nil
}

// Filter applies the browse-view predicates in memory: category matches on
// "all" or exact equality, location on case-insensitive substring, search
// text on case-insensitive substring of the title or any tag. All three are
// ANDed and the input order is preserved. Pure function, no I/O.
func Filter(listings []*domain.Listing, category domain.Category, location, search string) []*domain.Listing {
	location = strings.ToLower(strings.TrimSpace(location))
	search = strings.ToLower(strings.TrimSpace(search))

	out := make([]*domain.Listing, 0, len(listings))
	for _, l := range listings {
		if category != "" && category != domain.CategoryAll && l.Category != category {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(l.Location), location) {
			continue
		}
		if search != "" && !matchesSearch(l, search) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func matchesSearch(l *domain.Listing, search string) bool {
	if strings.Contains(strings.ToLower(l.Title), search) {
		return true
	}
	for _, tag := range l.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}
