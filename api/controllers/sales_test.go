package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/inkshelf/inkshelf-backend/internal/sales"
	"github.com/inkshelf/inkshelf-backend/pkg/db/models"
	pkgerrors "github.com/inkshelf/inkshelf-backend/pkg/errors"
)

type testSalesService struct {
	recordFn      func(ctx context.Context, input sales.RecordSaleInput) (*models.Sale, error)
	listVendorFn  func(ctx context.Context, vendorID uuid.UUID) ([]models.Sale, error)
	listFn        func(ctx context.Context, limit, offset int) ([]models.Sale, error)
	listLibraryFn func(ctx context.Context, buyerID uuid.UUID) ([]sales.LibraryItem, error)
}

func (s *testSalesService) RecordSale(ctx context.Context, input sales.RecordSaleInput) (*models.Sale, error) {
	if s.recordFn != nil {
		return s.recordFn(ctx, input)
	}
	return nil, nil
}

func (s *testSalesService) ListVendorSales(ctx context.Context, vendorID uuid.UUID) ([]models.Sale, error) {
	if s.listVendorFn != nil {
		return s.listVendorFn(ctx, vendorID)
	}
	return nil, nil
}

func (s *testSalesService) ListSales(ctx context.Context, limit, offset int) ([]models.Sale, error) {
	if s.listFn != nil {
		return s.listFn(ctx, limit, offset)
	}
	return nil, nil
}

func (s *testSalesService) ListBuyerLibrary(ctx context.Context, buyerID uuid.UUID) ([]sales.LibraryItem, error) {
	if s.listLibraryFn != nil {
		return s.listLibraryFn(ctx, buyerID)
	}
	return nil, nil
}

func TestSaleConfirmSuccess(t *testing.T) {
	ebookID := uuid.New()
	buyerID := uuid.New()
	svc := &testSalesService{
		recordFn: func(_ context.Context, input sales.RecordSaleInput) (*models.Sale, error) {
			if input.EbookID != ebookID || input.BuyerID != buyerID || input.PaymentRef != "pi_123" {
				t.Fatalf("unexpected input %+v", input)
			}
			return &models.Sale{
				ID:            uuid.New(),
				EbookID:       input.EbookID,
				BuyerID:       input.BuyerID,
				TotalCents:    1000,
				VendorCents:   900,
				PlatformCents: 100,
				PaymentRef:    input.PaymentRef,
			}, nil
		},
	}

	payload := `{"ebook_id":"` + ebookID.String() + `","buyer_id":"` + buyerID.String() + `","payment_ref":"pi_123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales/confirm", strings.NewReader(payload))
	resp := httptest.NewRecorder()
	SaleConfirm(svc, nil)(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data saleResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.VendorCents != 900 || envelope.Data.PlatformCents != 100 {
		t.Fatalf("unexpected split %+v", envelope.Data)
	}
}

func TestSaleConfirmRejectsMissingFields(t *testing.T) {
	svc := &testSalesService{
		recordFn: func(context.Context, sales.RecordSaleInput) (*models.Sale, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales/confirm", strings.NewReader(`{"payment_ref":"pi_123"}`))
	resp := httptest.NewRecorder()
	SaleConfirm(svc, nil)(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSaleConfirmMapsDuplicateToConflict(t *testing.T) {
	svc := &testSalesService{
		recordFn: func(context.Context, sales.RecordSaleInput) (*models.Sale, error) {
			return nil, pkgerrors.New(pkgerrors.CodeAlreadyRecorded, "sale already recorded for payment ref")
		},
	}

	payload := `{"ebook_id":"` + uuid.NewString() + `","buyer_id":"` + uuid.NewString() + `","payment_ref":"pi_dup"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales/confirm", strings.NewReader(payload))
	resp := httptest.NewRecorder()
	SaleConfirm(svc, nil)(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeAlreadyRecorded) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
}

func TestAdminSalesPagination(t *testing.T) {
	var gotLimit, gotOffset int
	svc := &testSalesService{
		listFn: func(_ context.Context, limit, offset int) ([]models.Sale, error) {
			gotLimit, gotOffset = limit, offset
			return []models.Sale{{ID: uuid.New(), TotalCents: 500, PlatformCents: 500}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/sales?limit=10&offset=20", nil)
	resp := httptest.NewRecorder()
	AdminSales(svc, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if gotLimit != 10 || gotOffset != 20 {
		t.Fatalf("expected pagination forwarded, got limit=%d offset=%d", gotLimit, gotOffset)
	}
}
