package controllers

import (
	"net/http"

	"github.com/inkshelf/inkshelf-backend/api/responses"
	"github.com/inkshelf/inkshelf-backend/internal/revenue"
	pkgerrors "github.com/inkshelf/inkshelf-backend/pkg/errors"
	"github.com/inkshelf/inkshelf-backend/pkg/logger"
)

type platformRevenueResponse struct {
	SaleCount     int64 `json:"sale_count"`
	GrossCents    int64 `json:"gross_cents"`
	PlatformCents int64 `json:"platform_cents"`
	VendorCents   int64 `json:"vendor_cents"`
}

// AdminRevenue returns platform-wide revenue totals.
func AdminRevenue(svc revenue.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "revenue service unavailable"))
			return
		}

		totals, err := svc.PlatformRevenue(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, platformRevenueResponse{
			SaleCount:     totals.SaleCount,
			GrossCents:    totals.GrossCents,
			PlatformCents: totals.PlatformCents,
			VendorCents:   totals.VendorCents,
		})
	}
}

type vendorRevenueResponse struct {
	SaleCount   int64 `json:"sale_count"`
	GrossCents  int64 `json:"gross_cents"`
	EarnedCents int64 `json:"earned_cents"`
}

// VendorRevenue returns per-vendor revenue totals.
func VendorRevenue(svc revenue.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := vendorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		totals, err := svc.VendorRevenue(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vendorRevenueResponse{
			SaleCount:   totals.SaleCount,
			GrossCents:  totals.GrossCents,
			EarnedCents: totals.EarnedCents,
		})
	}
}
