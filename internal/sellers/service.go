package sellers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/refdata"
	"github.com/tradelinkhq/tradelink-backend/pkg/types"
)

type profileRepository interface {
	Create(ctx context.Context, profile *models.SellerProfile) (*models.SellerProfile, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error)
	Update(ctx context.Context, profile *models.SellerProfile) error
}

// Service exposes seller profile operations.
type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	CreateProfile(ctx context.Context, userID uuid.UUID, input CreateProfileInput) (*ProfileDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error)
}

// CreateProfileInput holds creation-time data for a new seller profile.
type CreateProfileInput struct {
	BusinessName string
	GSTNumber    string
	BusinessType string
	SellerMode   enums.SellerMode
	Address      types.Address
}

// UpdateProfileInput captures the allowed profile fields for mutation.
// SellerMode and IsVerified move through plan/verification flows, not here.
type UpdateProfileInput struct {
	BusinessName *string
	GSTNumber    *string
	BusinessType *string
	Address      *types.Address
}

type service struct {
	repo profileRepository
}

// NewService builds a seller profile service.
func NewService(repo profileRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("seller profile repository required")
	}
	return &service{repo: repo}, nil
}

// GetProfile returns the caller's seller profile.
func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	profile, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(profile), nil
}

// CreateProfile registers the caller as a seller.
func (s *service) CreateProfile(ctx context.Context, userID uuid.UUID, input CreateProfileInput) (*ProfileDTO, error) {
	if strings.TrimSpace(input.BusinessName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "business_name is required")
	}
	mode := input.SellerMode
	if mode == "" {
		mode = enums.SellerModeBasic
	}
	if !mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown seller mode")
	}
	if input.Address.Country != "" && !refdata.IsCountry(input.Address.Country) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown country code")
	}

	if _, err := s.repo.FindByUserID(ctx, userID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "seller profile already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller profile")
	}

	profile := &models.SellerProfile{
		ID:           uuid.New(),
		UserID:       userID,
		BusinessName: strings.TrimSpace(input.BusinessName),
		GSTNumber:    strings.TrimSpace(input.GSTNumber),
		BusinessType: input.BusinessType,
		SellerMode:   mode,
		Address:      input.Address,
	}
	if _, err := s.repo.Create(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create seller profile")
	}
	return FromModel(profile), nil
}

// UpdateProfile mutates the caller's profile.
func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error) {
	profile, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.BusinessName != nil {
		name := strings.TrimSpace(*input.BusinessName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "business_name cannot be empty")
		}
		profile.BusinessName = name
	}
	if input.GSTNumber != nil {
		profile.GSTNumber = strings.TrimSpace(*input.GSTNumber)
	}
	if input.BusinessType != nil {
		profile.BusinessType = *input.BusinessType
	}
	if input.Address != nil {
		if input.Address.Country != "" && !refdata.IsCountry(input.Address.Country) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown country code")
		}
		profile.Address = *input.Address
	}

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update seller profile")
	}
	return FromModel(profile), nil
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller profile")
	}
	return profile, nil
}
