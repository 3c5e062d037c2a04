package rfq

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db"
	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
	"github.com/tradelinkhq/tradelink-backend/pkg/refdata"
	"github.com/tradelinkhq/tradelink-backend/pkg/tier"
)

// Service exposes the RFQ workflow: buyers post sourcing requests, sellers
// quote them, and expiry is evaluated lazily against the stored deadline.
type Service interface {
	CreateRFQ(ctx context.Context, buyerID uuid.UUID, input CreateRFQInput) (*RFQDTO, error)
	UpdateRFQ(ctx context.Context, buyerID, rfqID uuid.UUID, input UpdateRFQInput) (*RFQDTO, error)
	DeleteRFQ(ctx context.Context, buyerID, rfqID uuid.UUID) error
	CloseRFQ(ctx context.Context, buyerID, rfqID uuid.UUID) (*RFQDTO, error)
	GetRFQ(ctx context.Context, rfqID uuid.UUID) (*RFQDTO, error)
	ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]RFQDTO, error)
	ListAvailable(ctx context.Context, sellerID uuid.UUID) ([]RFQDTO, error)
	RespondToRFQ(ctx context.Context, sellerID, rfqID uuid.UUID, input RespondInput) (*ResponseDTO, error)
	ListResponses(ctx context.Context, actorID, rfqID uuid.UUID) ([]ResponseDTO, error)
}

// CreateRFQInput carries the fields for posting an RFQ.
type CreateRFQInput struct {
	ProductRequirement string
	Description        string
	Quantity           int
	DeliveryCountry    string
	ExpiresAt          time.Time
}

// UpdateRFQInput carries optional edits. Only untouched RFQs accept edits:
// the first quotation or the expiry deadline locks the request.
type UpdateRFQInput struct {
	ProductRequirement *string
	Description        *string
	Quantity           *int
	DeliveryCountry    *string
	ExpiresAt          *time.Time
}

// RespondInput carries a seller quotation.
type RespondInput struct {
	OfferedPrice          decimal.Decimal
	Currency              string
	EstimatedDeliveryDays int
	Message               string
}

type service struct {
	repo *Repository
}

// NewService wires the RFQ workflow.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rfq repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateRFQ(ctx context.Context, buyerID uuid.UUID, input CreateRFQInput) (*RFQDTO, error) {
	if err := validateRFQSpec(input.ProductRequirement, input.Quantity, input.DeliveryCountry, input.ExpiresAt); err != nil {
		return nil, err
	}

	rfq := &models.RFQ{
		ID:                 uuid.New(),
		BuyerID:            buyerID,
		ProductRequirement: strings.TrimSpace(input.ProductRequirement),
		Description:        input.Description,
		Quantity:           input.Quantity,
		DeliveryCountry:    input.DeliveryCountry,
		ExpiresAt:          input.ExpiresAt,
		Status:             enums.RFQStatusOpen,
	}
	if _, err := s.repo.Create(ctx, rfq); err != nil {
		return nil, fmt.Errorf("create rfq: %w", err)
	}
	return s.loadDTO(ctx, rfq.ID)
}

func (s *service) UpdateRFQ(ctx context.Context, buyerID, rfqID uuid.UUID, input UpdateRFQInput) (*RFQDTO, error) {
	rfq, err := s.loadEditable(ctx, buyerID, rfqID)
	if err != nil {
		return nil, err
	}

	if input.ProductRequirement != nil {
		rfq.ProductRequirement = strings.TrimSpace(*input.ProductRequirement)
	}
	if input.Description != nil {
		rfq.Description = *input.Description
	}
	if input.Quantity != nil {
		rfq.Quantity = *input.Quantity
	}
	if input.DeliveryCountry != nil {
		rfq.DeliveryCountry = *input.DeliveryCountry
	}
	if input.ExpiresAt != nil {
		rfq.ExpiresAt = *input.ExpiresAt
	}
	if err := validateRFQSpec(rfq.ProductRequirement, rfq.Quantity, rfq.DeliveryCountry, rfq.ExpiresAt); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, rfq); err != nil {
		return nil, fmt.Errorf("update rfq: %w", err)
	}
	return s.loadDTO(ctx, rfq.ID)
}

func (s *service) DeleteRFQ(ctx context.Context, buyerID, rfqID uuid.UUID) error {
	if _, err := s.loadEditable(ctx, buyerID, rfqID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, rfqID); err != nil {
		return fmt.Errorf("delete rfq: %w", err)
	}
	return nil
}

func (s *service) CloseRFQ(ctx context.Context, buyerID, rfqID uuid.UUID) (*RFQDTO, error) {
	rfq, err := s.loadOwned(ctx, buyerID, rfqID)
	if err != nil {
		return nil, err
	}
	if rfq.Status != enums.RFQStatusOpen {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "rfq is already closed")
	}

	rfq.Status = enums.RFQStatusClosed
	if err := s.repo.Update(ctx, rfq); err != nil {
		return nil, fmt.Errorf("close rfq: %w", err)
	}
	return s.loadDTO(ctx, rfq.ID)
}

func (s *service) GetRFQ(ctx context.Context, rfqID uuid.UUID) (*RFQDTO, error) {
	return s.loadDTO(ctx, rfqID)
}

func (s *service) ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]RFQDTO, error) {
	records, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list rfqs: %w", err)
	}
	now := time.Now()
	dtos := make([]RFQDTO, 0, len(records))
	for i := range records {
		dtos = append(dtos, records[i].toDTO(now))
	}
	return dtos, nil
}

// ListAvailable returns open RFQs for seller browsing. Expired requests stay
// visible with their effective status so sellers see what they missed, and
// each row carries whether this seller has already quoted it.
func (s *service) ListAvailable(ctx context.Context, sellerID uuid.UUID) ([]RFQDTO, error) {
	records, err := s.repo.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rfqs: %w", err)
	}
	quoted, err := s.repo.RespondedRFQIDs(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list quoted rfqs: %w", err)
	}
	quotedSet := make(map[uuid.UUID]struct{}, len(quoted))
	for _, id := range quoted {
		quotedSet[id] = struct{}{}
	}

	now := time.Now()
	dtos := make([]RFQDTO, 0, len(records))
	for i := range records {
		dto := records[i].toDTO(now)
		_, dto.HasResponded = quotedSet[dto.ID]
		dtos = append(dtos, dto)
	}
	return dtos, nil
}

func (s *service) RespondToRFQ(ctx context.Context, sellerID, rfqID uuid.UUID, input RespondInput) (*ResponseDTO, error) {
	rfq, err := s.load(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	if rfq.BuyerID == sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot quote your own rfq")
	}
	switch effectiveStatus(rfq.Status, rfq.ExpiresAt, time.Now()) {
	case enums.RFQStatusExpired:
		return nil, pkgerrors.New(pkgerrors.CodeExpired, "rfq has expired")
	case enums.RFQStatusClosed:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "rfq is closed")
	}
	if !input.OfferedPrice.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offered price must be positive")
	}
	if input.Currency != "" && !refdata.IsCurrency(input.Currency) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown currency %q", input.Currency))
	}
	if input.EstimatedDeliveryDays < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "estimated delivery days cannot be negative")
	}

	response := &models.RFQResponse{
		ID:                    uuid.New(),
		RFQID:                 rfq.ID,
		SellerID:              sellerID,
		OfferedPrice:          input.OfferedPrice,
		Currency:              input.Currency,
		EstimatedDeliveryDays: input.EstimatedDeliveryDays,
		Message:               input.Message,
	}
	if response.Currency == "" {
		response.Currency = "USD"
	}
	if _, err := s.repo.CreateResponse(ctx, response); err != nil {
		if db.IsUniqueViolation(err, "idx_rfq_responses_rfq_seller") {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicateResponse, "seller has already quoted this rfq")
		}
		return nil, fmt.Errorf("create rfq response: %w", err)
	}

	return s.loadResponseDTO(ctx, rfq.ID, response.ID)
}

// ListResponses returns an RFQ's quotations, advanced-tier sellers first.
// Only the posting buyer may view them.
func (s *service) ListResponses(ctx context.Context, actorID, rfqID uuid.UUID) ([]ResponseDTO, error) {
	rfq, err := s.load(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	if rfq.BuyerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "rfq belongs to another buyer")
	}

	records, err := s.repo.ListResponses(ctx, rfqID)
	if err != nil {
		return nil, fmt.Errorf("list rfq responses: %w", err)
	}
	dtos := make([]ResponseDTO, 0, len(records))
	for i := range records {
		dtos = append(dtos, records[i].toDTO())
	}
	sort.SliceStable(dtos, func(i, j int) bool {
		return tier.PriorityRank(dtos[i].SellerMode) < tier.PriorityRank(dtos[j].SellerMode)
	})
	return dtos, nil
}

func (s *service) load(ctx context.Context, rfqID uuid.UUID) (*models.RFQ, error) {
	rfq, err := s.repo.FindByID(ctx, rfqID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rfq not found")
		}
		return nil, fmt.Errorf("load rfq: %w", err)
	}
	return rfq, nil
}

func (s *service) loadOwned(ctx context.Context, buyerID, rfqID uuid.UUID) (*models.RFQ, error) {
	rfq, err := s.load(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	if rfq.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "rfq belongs to another buyer")
	}
	return rfq, nil
}

// loadEditable enforces the edit window: buyer-owned, still open, not past
// expiry, and no quotations received yet.
func (s *service) loadEditable(ctx context.Context, buyerID, rfqID uuid.UUID) (*models.RFQ, error) {
	rfq, err := s.loadOwned(ctx, buyerID, rfqID)
	if err != nil {
		return nil, err
	}
	switch effectiveStatus(rfq.Status, rfq.ExpiresAt, time.Now()) {
	case enums.RFQStatusExpired:
		return nil, pkgerrors.New(pkgerrors.CodeExpired, "rfq has expired")
	case enums.RFQStatusClosed:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "rfq is closed")
	}
	count, err := s.repo.CountResponses(ctx, rfqID)
	if err != nil {
		return nil, fmt.Errorf("count rfq responses: %w", err)
	}
	if count > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "rfq already has quotations").
			WithDetails(map[string]any{"response_count": count})
	}
	return rfq, nil
}

func (s *service) loadDTO(ctx context.Context, rfqID uuid.UUID) (*RFQDTO, error) {
	record, err := s.repo.GetDetail(ctx, rfqID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rfq not found")
		}
		return nil, fmt.Errorf("load rfq: %w", err)
	}
	dto := record.toDTO(time.Now())
	return &dto, nil
}

func (s *service) loadResponseDTO(ctx context.Context, rfqID, responseID uuid.UUID) (*ResponseDTO, error) {
	records, err := s.repo.ListResponses(ctx, rfqID)
	if err != nil {
		return nil, fmt.Errorf("load rfq response: %w", err)
	}
	for i := range records {
		if records[i].ID == responseID {
			dto := records[i].toDTO()
			return &dto, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rfq response not found")
}

func validateRFQSpec(requirement string, quantity int, country string, expiresAt time.Time) error {
	if strings.TrimSpace(requirement) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product requirement is required")
	}
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if !refdata.IsCountry(country) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown delivery country %q", country))
	}
	if !expiresAt.After(time.Now()) {
		return pkgerrors.New(pkgerrors.CodeValidation, "expiry must be in the future")
	}
	return nil
}
