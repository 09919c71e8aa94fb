package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/localloop/classifieds-service/internal/classified/domain"
	"github.com/localloop/classifieds-service/internal/platform/logger"
)

const (
	EventListingCreated = "listings.created"
	EventListingUpdated = "listings.updated"
	EventListingDeleted = "listings.deleted"
)

// ImagePayload is a raw, not-yet-hosted image submitted with a create or
// update call.
type ImagePayload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ListingInput carries the user-editable fields of a listing. ImageURLs holds
// already-hosted URLs: on create these are pre-hosted images, on update the
// subset of existing images the caller wants to keep. AuthorID is never part
// of the input.
type ListingInput struct {
	Title       string
	Description string
	Price       *float64
	Category    domain.Category
	Location    string
	Tags        []string
	ImageHint   string
	ImageURLs   []string
}

// LifecycleUsecase orchestrates listing create/update/delete: credential
// verification, ownership checks, image-set reconciliation and the final
// document write. The document record is the source of truth; blob operations
// around it are compensated best-effort, never transactionally.
type LifecycleUsecase struct {
	verifier  domain.IdentityVerifier
	repo      domain.ListingRepository
	storage   domain.BlobStorage
	suggester domain.TagSuggester   // optional
	events    domain.EventPublisher // optional
	logger    *logger.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

func NewLifecycleUsecase(
	verifier domain.IdentityVerifier,
	repo domain.ListingRepository,
	storage domain.BlobStorage,
	suggester domain.TagSuggester,
	events domain.EventPublisher,
	log *logger.Logger,
) (*LifecycleUsecase, error) {
	if verifier == nil || repo == nil || storage == nil || log == nil {
		return nil, fmt.Errorf("%w: lifecycle usecase requires verifier, repository, storage and logger", domain.ErrNotConfigured)
	}
	return &LifecycleUsecase{
		verifier:  verifier,
		repo:      repo,
		storage:   storage,
		suggester: suggester,
		events:    events,
		logger:    log,
		tracer:    otel.Tracer("classified/usecase"),
		now:       time.Now,
	}, nil
}

// Create verifies the caller, uploads raw images and persists a new listing
// owned by the verified caller. A partial upload failure fails the whole
// create; blobs uploaded before the failure are removed best-effort so no
// document ever references a partial image set.
func (uc *LifecycleUsecase) Create(ctx context.Context, input ListingInput, images []ImagePayload, credential string) (*domain.Listing, error) {
	ctx, span := uc.tracer.Start(ctx, "LifecycleUsecase.Create")
	defer span.End()

	identity, err := uc.verifier.Verify(ctx, credential)
	if err != nil {
		return nil, err
	}

	if err := validateInput(input, len(input.ImageURLs)+len(images)); err != nil {
		return nil, err
	}
	if err := validatePayloads(images); err != nil {
		return nil, err
	}

	uploaded, err := uc.uploadImages(ctx, identity.UID, images)
	if err != nil {
		return nil, err
	}

	tags := normalizeTags(input.Tags)
	if len(tags) == 0 && uc.suggester != nil {
		suggested, serr := uc.suggester.SuggestTags(ctx, input.Title, input.Description)
		if serr != nil {
			uc.logger.Warn("LifecycleUsecase.Create: tag suggestion failed, proceeding without tags",
				"title", input.Title, "error", serr.Error())
		} else {
			tags = normalizeTags(suggested)
		}
	}

	imageHint := input.ImageHint
	if imageHint == "" {
		imageHint = input.Title
	}

	listing := &domain.Listing{
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Location:    input.Location,
		Tags:        tags,
		ImageURLs:   append(append([]string{}, input.ImageURLs...), uploaded...),
		ImageHint:   imageHint,
		AuthorID:    identity.UID,
		CreatedAt:   uc.now(),
	}

	if err := uc.repo.Create(ctx, listing); err != nil {
		uc.logger.Error("LifecycleUsecase.Create: failed to persist listing",
			"user_id", identity.UID, "error", err.Error())
		uc.cleanupBlobs(ctx, uploaded)
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	uc.logger.Info("LifecycleUsecase.Create: listing created",
		"listing_id", listing.ID, "user_id", identity.UID, "images", len(listing.ImageURLs))
	uc.publish(ctx, EventListingCreated, listing)
	return listing, nil
}

// Update verifies the caller and ownership, reconciles the image set and
// replaces the listing fields wholesale. Authorization and not-found failures
// occur before any mutation; removed-image deletes are best-effort.
func (uc *LifecycleUsecase) Update(ctx context.Context, listingID string, input ListingInput, newImages []ImagePayload, credential string) (*domain.Listing, error) {
	ctx, span := uc.tracer.Start(ctx, "LifecycleUsecase.Update")
	defer span.End()

	identity, err := uc.verifier.Verify(ctx, credential)
	if err != nil {
		return nil, err
	}

	existing, err := uc.loadOwned(ctx, listingID, identity.UID)
	if err != nil {
		return nil, err
	}

	// Bounds are enforced before any upload or delete so a bad submission
	// costs no blob I/O.
	if err := validateInput(input, len(input.ImageURLs)+len(newImages)); err != nil {
		return nil, err
	}
	if err := validatePayloads(newImages); err != nil {
		return nil, err
	}

	toDelete := diffURLs(existing.ImageURLs, input.ImageURLs)

	added, err := uc.uploadImages(ctx, identity.UID, newImages)
	if err != nil {
		return nil, err
	}

	for _, url := range toDelete {
		if derr := uc.storage.Delete(ctx, url); derr != nil {
			uc.logger.Warn("LifecycleUsecase.Update: failed to delete removed image, orphaned blob left behind",
				"listing_id", listingID, "url", url, "error", derr.Error())
		}
	}

	updatedAt := uc.now()
	imageHint := input.ImageHint
	if imageHint == "" {
		imageHint = input.Title
	}

	updated := &domain.Listing{
		ID:          existing.ID,
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Location:    input.Location,
		Tags:        normalizeTags(input.Tags),
		ImageURLs:   append(append([]string{}, input.ImageURLs...), added...),
		ImageHint:   imageHint,
		AuthorID:    existing.AuthorID,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   &updatedAt,
	}

	if err := uc.repo.Update(ctx, updated); err != nil {
		uc.logger.Error("LifecycleUsecase.Update: failed to persist listing update",
			"listing_id", listingID, "error", err.Error())
		uc.cleanupBlobs(ctx, added)
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	uc.logger.Info("LifecycleUsecase.Update: listing updated",
		"listing_id", listingID, "user_id", identity.UID,
		"images_added", len(added), "images_removed", len(toDelete))
	uc.publish(ctx, EventListingUpdated, updated)
	return updated, nil
}

// Delete verifies the caller and ownership, removes the listing's blobs
// best-effort and deletes the document. Only the document delete is fatal.
func (uc *LifecycleUsecase) Delete(ctx context.Context, listingID, credential string) error {
	ctx, span := uc.tracer.Start(ctx, "LifecycleUsecase.Delete")
	defer span.End()

	identity, err := uc.verifier.Verify(ctx, credential)
	if err != nil {
		return err
	}

	existing, err := uc.loadOwned(ctx, listingID, identity.UID)
	if err != nil {
		return err
	}

	for _, url := range existing.ImageURLs {
		if derr := uc.storage.Delete(ctx, url); derr != nil {
			uc.logger.Warn("LifecycleUsecase.Delete: failed to delete image blob",
				"listing_id", listingID, "url", url, "error", derr.Error())
		}
	}

	if err := uc.repo.Delete(ctx, listingID); err != nil {
		uc.logger.Error("LifecycleUsecase.Delete: failed to delete listing document",
			"listing_id", listingID, "error", err.Error())
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	uc.logger.Info("LifecycleUsecase.Delete: listing deleted",
		"listing_id", listingID, "user_id", identity.UID)
	uc.publish(ctx, EventListingDeleted, existing)
	return nil
}

// GetOwned loads a listing for editing. Non-owners get ErrForbidden and
// nothing else about the listing.
func (uc *LifecycleUsecase) GetOwned(ctx context.Context, listingID, credential string) (*domain.Listing, error) {
	identity, err := uc.verifier.Verify(ctx, credential)
	if err != nil {
		return nil, err
	}
	return uc.loadOwned(ctx, listingID, identity.UID)
}

func (uc *LifecycleUsecase) loadOwned(ctx context.Context, listingID, userID string) (*domain.Listing, error) {
	listing, err := uc.repo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if listing.AuthorID != userID {
		uc.logger.Warn("LifecycleUsecase: forbidden listing access",
			"listing_id", listingID, "owner_id", listing.AuthorID, "user_id", userID)
		return nil, domain.ErrForbidden
	}
	return listing, nil
}

// uploadImages uploads all payloads concurrently and preserves submission
// order. If any upload fails the successful ones are removed best-effort and
// the whole batch fails.
func (uc *LifecycleUsecase) uploadImages(ctx context.Context, authorID string, images []ImagePayload) ([]string, error) {
	if len(images) == 0 {
		return nil, nil
	}

	urls := make([]string, len(images))
	g, gctx := errgroup.WithContext(ctx)
	for i, img := range images {
		i, img := i, img
		g.Go(func() error {
			url, err := uc.storage.Upload(gctx, authorID, img.FileName, img.Data, img.ContentType)
			if err != nil {
				return fmt.Errorf("upload of %q failed: %w", img.FileName, err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var succeeded []string
		for _, url := range urls {
			if url != "" {
				succeeded = append(succeeded, url)
			}
		}
		uc.cleanupBlobs(ctx, succeeded)
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return urls, nil
}

func (uc *LifecycleUsecase) cleanupBlobs(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := uc.storage.Delete(ctx, url); err != nil {
			uc.logger.Warn("LifecycleUsecase: blob cleanup failed, orphaned blob left behind",
				"url", url, "error", err.Error())
		}
	}
}

func (uc *LifecycleUsecase) publish(ctx context.Context, subject string, listing *domain.Listing) {
	if uc.events == nil {
		return
	}
	if err := uc.events.Publish(ctx, subject, listing); err != nil {
		uc.logger.Warn("LifecycleUsecase: failed to publish lifecycle event",
			"subject", subject, "listing_id", listing.ID, "error", err.Error())
	}
}

func validateInput(input ListingInput, imageCount int) error {
	titleLen := len([]rune(input.Title))
	if titleLen < domain.MinTitleLen || titleLen > domain.MaxTitleLen {
		return fmt.Errorf("%w: title must be between %d and %d characters", domain.ErrInvalidInput, domain.MinTitleLen, domain.MaxTitleLen)
	}
	descLen := len([]rune(input.Description))
	if descLen < domain.MinDescriptionLen || descLen > domain.MaxDescriptionLen {
		return fmt.Errorf("%w: description must be between %d and %d characters", domain.ErrInvalidInput, domain.MinDescriptionLen, domain.MaxDescriptionLen)
	}
	if !input.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, input.Category)
	}
	if input.Price != nil && *input.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}
	if len(input.Tags) > domain.MaxListingTags {
		return fmt.Errorf("%w: at most %d tags allowed", domain.ErrInvalidInput, domain.MaxListingTags)
	}
	if imageCount < domain.MinListingImages || imageCount > domain.MaxListingImages {
		return fmt.Errorf("%w: listing must have between %d and %d images", domain.ErrInvalidInput, domain.MinListingImages, domain.MaxListingImages)
	}
	return nil
}

func validatePayloads(images []ImagePayload) error {
	for _, img := range images {
		if len(img.Data) == 0 {
			return fmt.Errorf("%w: image payload %q is empty", domain.ErrInvalidInput, img.FileName)
		}
	}
	return nil
}

// diffURLs returns the members of existing that are absent from kept,
// preserving their original order.
func diffURLs(existing, kept []string) []string {
	keep := make(map[string]struct{}, len(kept))
	for _, url := range kept {
		keep[url] = struct{}{}
	}
	var removed []string
	for _, url := range existing {
		if _, ok := keep[url]; !ok {
			removed = append(removed, url)
		}
	}
	return removed
}

// normalizeTags trims, drops empties, dedupes preserving order and caps the
// set at the listing tag limit.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
		if len(out) == domain.MaxListingTags {
			break
		}
	}
	return out
}
