package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/localloop/classifieds-service/internal/classified/domain"
	"github.com/localloop/classifieds-service/internal/platform/logger"
)

// ProfileUpdate carries the user-editable profile fields. Email is absent on
// purpose: it always comes from the verified identity.
type ProfileUpdate struct {
	Name        string
	Location    string
	PhoneNumber string
}

type ProfileUsecase struct {
	verifier domain.IdentityVerifier
	repo     domain.ProfileRepository
	logger   *logger.Logger
}

func NewProfileUsecase(verifier domain.IdentityVerifier, repo domain.ProfileRepository, log *logger.Logger) (*ProfileUsecase, error) {
	if verifier == nil || repo == nil || log == nil {
		return nil, fmt.Errorf("%w: profile usecase requires verifier, repository and logger", domain.ErrNotConfigured)
	}
	return &ProfileUsecase{verifier: verifier, repo: repo, logger: log}, nil
}

// GetProfile returns the caller's profile, lazily creating it from the
// identity provider's data the first time it is read.
func (uc *ProfileUsecase) GetProfile(ctx context.Context, credential string) (*domain.UserProfile, error) {
	identity, err := uc.verifier.Verify(ctx, credential)
	if err != nil {
		return nil, err
	}

	profile, err := uc.repo.FindByID(ctx, identity.UID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	profile = &domain.UserProfile{
		ID:    identity.UID,
		Email: identity.Email,
		Name:  identity.Name,
	}
	if err := uc.repo.Upsert(ctx, profile); err != nil {
		uc.logger.Error("ProfileUsecase.GetProfile: failed to create default profile",
			"user_id", identity.UID, "error", err.Error())
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	uc.logger.Info("ProfileUsecase.GetProfile: created default profile", "user_id", identity.UID)
	return profile, nil
}

// UpdateProfile merges the submitted fields into the caller's profile. The
// stored email is re-derived from the verified identity so a client can never
// rewrite it.
func (uc *ProfileUsecase) UpdateProfile(ctx context.Context, update ProfileUpdate, credential string) error {
	identity, err := uc.verifier.Verify(ctx, credential)
	if err != nil {
		return err
	}

	profile := &domain.UserProfile{
		ID:          identity.UID,
		Email:       identity.Email,
		Name:        update.Name,
		Location:    update.Location,
		PhoneNumber: update.PhoneNumber,
	}
	if err := uc.repo.Upsert(ctx, profile); err != nil {
		uc.logger.Error("ProfileUsecase.UpdateProfile: failed to upsert profile",
			"user_id", identity.UID, "error", err.Error())
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return nil
}
