package sellers

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/types"
)

func TestNewServiceRequiresRepo(t *testing.T) {
	_, err := NewService(nil)
	if err == nil {
		t.Fatal("expected error creating service without repo")
	}
}

func TestServiceGetProfileSuccess(t *testing.T) {
	profile := baseProfile()
	repo := &stubProfileRepo{profile: profile}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.GetProfile(context.Background(), profile.UserID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if dto.ID != profile.ID {
		t.Fatalf("expected id %s got %s", profile.ID, dto.ID)
	}
	if dto.BusinessName != profile.BusinessName {
		t.Fatalf("expected business name %s got %s", profile.BusinessName, dto.BusinessName)
	}
	if dto.Address.Country != "IN" {
		t.Fatalf("expected address country IN got %s", dto.Address.Country)
	}
}

func TestServiceGetProfileNotFound(t *testing.T) {
	repo := &stubProfileRepo{err: gorm.ErrRecordNotFound}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, gotErr := svc.GetProfile(context.Background(), uuid.New())
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", gotErr)
	}
}

func TestServiceCreateProfileDefaultsToBasic(t *testing.T) {
	repo := &stubProfileRepo{err: gorm.ErrRecordNotFound}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.CreateProfile(context.Background(), uuid.New(), CreateProfileInput{
		BusinessName: "Acme Exports",
		GSTNumber:    "29ABCDE1234F1Z5",
		Address:      types.Address{Line1: "14 Trade Rd", City: "Pune", Country: "IN"},
	})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if dto.SellerMode != enums.SellerModeBasic {
		t.Fatalf("expected basic mode default, got %s", dto.SellerMode)
	}
	if repo.created == nil {
		t.Fatal("expected repo create call")
	}
}

func TestServiceCreateProfileRejectsDuplicate(t *testing.T) {
	repo := &stubProfileRepo{profile: baseProfile()}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, gotErr := svc.CreateProfile(context.Background(), uuid.New(), CreateProfileInput{BusinessName: "Acme"})
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict code, got %v", gotErr)
	}
}

func TestServiceCreateProfileRejectsUnknownCountry(t *testing.T) {
	repo := &stubProfileRepo{err: gorm.ErrRecordNotFound}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, gotErr := svc.CreateProfile(context.Background(), uuid.New(), CreateProfileInput{
		BusinessName: "Acme",
		Address:      types.Address{Country: "XX"},
	})
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", gotErr)
	}
}

func TestServiceUpdateProfileSuccess(t *testing.T) {
	profile := baseProfile()
	repo := &stubProfileRepo{profile: profile}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.UpdateProfile(context.Background(), profile.UserID, UpdateProfileInput{
		BusinessName: stringPtr("Acme Global"),
		GSTNumber:    stringPtr(" 07ABCDE1234F1Z5 "),
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if dto.BusinessName != "Acme Global" {
		t.Fatalf("expected business name updated, got %s", dto.BusinessName)
	}
	if dto.GSTNumber != "07ABCDE1234F1Z5" {
		t.Fatalf("expected trimmed gst number, got %q", dto.GSTNumber)
	}
	if repo.updated == nil {
		t.Fatal("expected repo update call")
	}
}

func TestServiceUpdateProfileDependencyError(t *testing.T) {
	repo := &stubProfileRepo{err: errors.New("boom")}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, gotErr := svc.UpdateProfile(context.Background(), uuid.New(), UpdateProfileInput{})
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency code, got %v", gotErr)
	}
}

func baseProfile() *models.SellerProfile {
	return &models.SellerProfile{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		BusinessName: "Acme Exports",
		GSTNumber:    "29ABCDE1234F1Z5",
		BusinessType: "manufacturer",
		SellerMode:   enums.SellerModeBasic,
		Address: types.Address{
			Line1:      "14 Trade Rd",
			City:       "Pune",
			State:      "MH",
			PostalCode: "411001",
			Country:    "IN",
		},
	}
}

type stubProfileRepo struct {
	profile *models.SellerProfile
	err     error
	created *models.SellerProfile
	updated *models.SellerProfile
}

func (s *stubProfileRepo) Create(ctx context.Context, profile *models.SellerProfile) (*models.SellerProfile, error) {
	s.created = profile
	return profile, nil
}

func (s *stubProfileRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.SellerProfile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

func (s *stubProfileRepo) Update(ctx context.Context, profile *models.SellerProfile) error {
	s.updated = profile
	return nil
}

func stringPtr(s string) *string { return &s }
