package rfq

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tradelinkhq/tradelink-backend/pkg/db/models"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	pkgerrors "github.com/tradelinkhq/tradelink-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:rfq_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.User{},
		&models.SellerProfile{},
		&models.RFQ{},
		&models.RFQResponse{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func mustCreateUser(t *testing.T, conn *gorm.DB, role enums.Role, mode enums.SellerMode) *models.User {
	t.Helper()
	user := &models.User{
		ID:       uuid.New(),
		Email:    fmt.Sprintf("tl_test_%s@example.com", uuid.NewString()),
		FullName: "RFQ Tester",
		Role:     role,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if role == enums.RoleSeller {
		profile := &models.SellerProfile{
			ID:           uuid.New(),
			UserID:       user.ID,
			BusinessName: fmt.Sprintf("Supplier %s", user.ID.String()[:8]),
			SellerMode:   mode,
		}
		if err := conn.Create(profile).Error; err != nil {
			t.Fatalf("create seller profile: %v", err)
		}
	}
	return user
}

func validCreateInput() CreateRFQInput {
	return CreateRFQInput{
		ProductRequirement: "Industrial valves, DN50",
		Description:        "Quarterly restock",
		Quantity:           200,
		DeliveryCountry:    "DE",
		ExpiresAt:          time.Now().Add(72 * time.Hour),
	}
}

func validRespondInput() RespondInput {
	return RespondInput{
		OfferedPrice:          decimal.NewFromInt(42),
		Currency:              "USD",
		EstimatedDeliveryDays: 14,
		Message:               "Ex stock, FOB Hamburg.",
	}
}

func mustCreateRFQ(t *testing.T, svc Service, buyerID uuid.UUID) *RFQDTO {
	t.Helper()
	dto, err := svc.CreateRFQ(context.Background(), buyerID, validCreateInput())
	if err != nil {
		t.Fatalf("create rfq: %v", err)
	}
	return dto
}

// expireRFQ rewinds the stored deadline so the next read sees it expired.
func expireRFQ(t *testing.T, conn *gorm.DB, rfqID uuid.UUID) {
	t.Helper()
	err := conn.Model(&models.RFQ{}).
		Where("id = ?", rfqID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error
	if err != nil {
		t.Fatalf("expire rfq: %v", err)
	}
}

func TestCreateRFQ(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer, "")

	dto := mustCreateRFQ(t, svc, buyer.ID)
	if dto.Status != enums.RFQStatusOpen {
		t.Fatalf("expected open status, got %s", dto.Status)
	}
	if dto.ResponseCount != 0 {
		t.Fatalf("expected zero responses, got %d", dto.ResponseCount)
	}
	if dto.BuyerName != "RFQ Tester" {
		t.Fatalf("expected joined buyer name, got %q", dto.BuyerName)
	}
}

func TestCreateRFQValidation(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer, "")
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateRFQInput)
	}{
		{"empty requirement", func(in *CreateRFQInput) { in.ProductRequirement = "  " }},
		{"zero quantity", func(in *CreateRFQInput) { in.Quantity = 0 }},
		{"unknown country", func(in *CreateRFQInput) { in.DeliveryCountry = "XX" }},
		{"past expiry", func(in *CreateRFQInput) { in.ExpiresAt = time.Now().Add(-time.Minute) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validCreateInput()
			tc.mutate(&input)
			_, err := svc.CreateRFQ(ctx, buyer.ID, input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestLazyExpiry(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer, "")

	dto := mustCreateRFQ(t, svc, buyer.ID)
	expireRFQ(t, conn, dto.ID)

	got, err := svc.GetRFQ(context.Background(), dto.ID)
	if err != nil {
		t.Fatalf("get rfq: %v", err)
	}
	if got.Status != enums.RFQStatusExpired {
		t.Fatalf("expected expired status at read time, got %s", got.Status)
	}

	// The stored row still says open; only the read view changed.
	var stored models.RFQ
	if err := conn.First(&stored, "id = ?", dto.ID).Error; err != nil {
		t.Fatalf("load stored rfq: %v", err)
	}
	if stored.Status != enums.RFQStatusOpen {
		t.Fatalf("expected stored status open, got %s", stored.Status)
	}
}

func TestUpdateRFQEditWindow(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer, "")
	seller := mustCreateUser(t, conn, enums.RoleSeller, enums.SellerModeBasic)
	ctx := context.Background()

	dto := mustCreateRFQ(t, svc, buyer.ID)

	// Untouched RFQ accepts edits.
	updated, err := svc.UpdateRFQ(ctx, buyer.ID, dto.ID, UpdateRFQInput{Quantity: intPtr(500)})
	if err != nil {
		t.Fatalf("update rfq: %v", err)
	}
	if updated.Quantity != 500 {
		t.Fatalf("expected quantity 500, got %d", updated.Quantity)
	}

	// A non-owner cannot edit.
	_, err = svc.UpdateRFQ(ctx, seller.ID, dto.ID, UpdateRFQInput{Quantity: intPtr(10)})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	// The first quotation locks the request.
	if _, err := svc.RespondToRFQ(ctx, seller.ID, dto.ID, validRespondInput()); err != nil {
		t.Fatalf("respond: %v", err)
	}
	_, err = svc.UpdateRFQ(ctx, buyer.ID, dto.ID, UpdateRFQInput{Quantity: intPtr(10)})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict after first quote, got %v", err)
	}
	if err := svc.DeleteRFQ(ctx, buyer.ID, dto.ID); err == nil {
		t.Fatal("expected delete to be blocked after first quote")
	}
}

func TestUpdateRFQExpired(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer, "")

	dto := mustCreateRFQ(t, svc, buyer.ID)
	expireRFQ(t, conn, dto.ID)

	_, err := svc.UpdateRFQ(context.Background(), buyer.ID, dto.ID, UpdateRFQInput{Quantity: intPtr(10)})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeExpired {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestRespondToRFQ(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer, "")
	seller := mustCreateUser(t, conn, enums.RoleSeller, enums.SellerModeBasic)
	ctx := context.Background()

	dto := mustCreateRFQ(t, svc, buyer.ID)

	response, err := svc.RespondToRFQ(ctx, seller.ID, dto.ID, validRespondInput())
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if !response.OfferedPrice.Equal(decimal.NewFromInt(42)) {
		t.Fatalf("expected offered price 42, got %s", response.OfferedPrice)
	}
	if response.SellerBusinessName == "" {
		t.Fatal("expected joined seller business name")
	}

	// One quote per seller per RFQ.
	_, err = svc.RespondToRFQ(ctx, seller.ID, dto.ID, validRespondInput())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDuplicateResponse {
		t.Fatalf("expected duplicate response, got %v", err)
	}

	// Buyers cannot quote their own request.
	_, err = svc.RespondToRFQ(ctx, buyer.ID, dto.ID, validRespondInput())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestRespondToExpiredRFQ(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer, "")
	seller := mustCreateUser(t, conn, enums.RoleSeller, enums.SellerModeBasic)

	dto := mustCreateRFQ(t, svc, buyer.ID)
	expireRFQ(t, conn, dto.ID)

	_, err := svc.RespondToRFQ(context.Background(), seller.ID, dto.ID, validRespondInput())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeExpired {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestRespondToClosedRFQ(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer, "")
	seller := mustCreateUser(t, conn, enums.RoleSeller, enums.SellerModeBasic)
	ctx := context.Background()

	dto := mustCreateRFQ(t, svc, buyer.ID)
	if _, err := svc.CloseRFQ(ctx, buyer.ID, dto.ID); err != nil {
		t.Fatalf("close rfq: %v", err)
	}

	_, err := svc.RespondToRFQ(ctx, seller.ID, dto.ID, validRespondInput())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestListAvailableMarksQuoted(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer, "")
	seller := mustCreateUser(t, conn, enums.RoleSeller, enums.SellerModeBasic)
	ctx := context.Background()

	first := mustCreateRFQ(t, svc, buyer.ID)
	second := mustCreateRFQ(t, svc, buyer.ID)
	expired := mustCreateRFQ(t, svc, buyer.ID)
	expireRFQ(t, conn, expired.ID)

	if _, err := svc.RespondToRFQ(ctx, seller.ID, first.ID, validRespondInput()); err != nil {
		t.Fatalf("respond: %v", err)
	}

	rows, err := svc.ListAvailable(ctx, seller.ID)
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	byID := make(map[uuid.UUID]RFQDTO, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	if !byID[first.ID].HasResponded {
		t.Fatal("expected quoted rfq flagged")
	}
	if byID[second.ID].HasResponded {
		t.Fatal("expected unquoted rfq not flagged")
	}
	if byID[expired.ID].Status != enums.RFQStatusExpired {
		t.Fatalf("expected expired rfq surfaced as expired, got %s", byID[expired.ID].Status)
	}
}

func TestListResponsesRanksAdvancedFirst(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer, "")
	basic := mustCreateUser(t, conn, enums.RoleSeller, enums.SellerModeBasic)
	advanced := mustCreateUser(t, conn, enums.RoleSeller, enums.SellerModeAdvanced)
	ctx := context.Background()

	dto := mustCreateRFQ(t, svc, buyer.ID)
	if _, err := svc.RespondToRFQ(ctx, basic.ID, dto.ID, validRespondInput()); err != nil {
		t.Fatalf("basic respond: %v", err)
	}
	if _, err := svc.RespondToRFQ(ctx, advanced.ID, dto.ID, validRespondInput()); err != nil {
		t.Fatalf("advanced respond: %v", err)
	}

	responses, err := svc.ListResponses(ctx, buyer.ID, dto.ID)
	if err != nil {
		t.Fatalf("list responses: %v", err)
	}
	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}
	if responses[0].SellerID != advanced.ID {
		t.Fatal("expected advanced seller ranked first")
	}

	// Quotations are visible to the posting buyer only.
	_, err = svc.ListResponses(ctx, basic.ID, dto.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestDeleteRFQ(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	buyer := mustCreateUser(t, conn, enums.RoleBuyer, "")
	ctx := context.Background()

	dto := mustCreateRFQ(t, svc, buyer.ID)
	if err := svc.DeleteRFQ(ctx, buyer.ID, dto.ID); err != nil {
		t.Fatalf("delete rfq: %v", err)
	}
	_, err := svc.GetRFQ(ctx, dto.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEffectiveStatusAtDeadline(t *testing.T) {
	t.Parallel()

	deadline := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		stored enums.RFQStatus
		now    time.Time
		want   enums.RFQStatus
	}{
		{"before deadline", enums.RFQStatusOpen, deadline.Add(-time.Second), enums.RFQStatusOpen},
		{"exactly at deadline", enums.RFQStatusOpen, deadline, enums.RFQStatusOpen},
		{"past deadline", enums.RFQStatusOpen, deadline.Add(time.Second), enums.RFQStatusExpired},
		{"closed stays closed", enums.RFQStatusClosed, deadline.Add(time.Hour), enums.RFQStatusClosed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := effectiveStatus(tc.stored, deadline, tc.now); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func intPtr(v int) *int { return &v }
