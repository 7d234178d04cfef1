package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/inkshelf/inkshelf-backend/api/responses"
	"github.com/inkshelf/inkshelf-backend/api/validators"
	"github.com/inkshelf/inkshelf-backend/internal/sales"
	"github.com/inkshelf/inkshelf-backend/pkg/db/models"
	pkgerrors "github.com/inkshelf/inkshelf-backend/pkg/errors"
	"github.com/inkshelf/inkshelf-backend/pkg/logger"
)

type saleConfirmRequest struct {
	EbookID    uuid.UUID `json:"ebook_id" validate:"required"`
	BuyerID    uuid.UUID `json:"buyer_id" validate:"required"`
	PaymentRef string    `json:"payment_ref" validate:"required,max=200"`
}

type saleResponse struct {
	ID                    uuid.UUID  `json:"id"`
	EbookID               uuid.UUID  `json:"ebook_id"`
	BuyerID               uuid.UUID  `json:"buyer_id"`
	VendorID              *uuid.UUID `json:"vendor_id,omitempty"`
	TotalCents            int64      `json:"total_cents"`
	VendorCents           int64      `json:"vendor_cents"`
	PlatformCents         int64      `json:"platform_cents"`
	CommissionRatePercent int        `json:"commission_rate_percent"`
	PaymentRef            string     `json:"payment_ref"`
	CreatedAt             time.Time  `json:"created_at"`
}

func newSaleResponse(sale *models.Sale) saleResponse {
	return saleResponse{
		ID:                    sale.ID,
		EbookID:               sale.EbookID,
		BuyerID:               sale.BuyerID,
		VendorID:              sale.VendorID,
		TotalCents:            sale.TotalCents,
		VendorCents:           sale.VendorCents,
		PlatformCents:         sale.PlatformCents,
		CommissionRatePercent: sale.CommissionRatePercent,
		PaymentRef:            sale.PaymentRef,
		CreatedAt:             sale.CreatedAt,
	}
}

// SaleConfirm records a confirmed payment and settles the commission split.
func SaleConfirm(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		var body saleConfirmRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.RecordSale(r.Context(), sales.RecordSaleInput{
			EbookID:    body.EbookID,
			BuyerID:    body.BuyerID,
			PaymentRef: body.PaymentRef,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newSaleResponse(sale))
	}
}

// VendorSales lists settled sales for one vendor.
func VendorSales(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := vendorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListVendorSales(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]saleResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newSaleResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// AdminSales lists the newest settled sales across the marketplace.
func AdminSales(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListSales(r.Context(), limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]saleResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newSaleResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
