package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/inkshelf/inkshelf-backend/api/responses"
	"github.com/inkshelf/inkshelf-backend/api/validators"
	"github.com/inkshelf/inkshelf-backend/internal/vendors"
	"github.com/inkshelf/inkshelf-backend/pkg/enums"
	pkgerrors "github.com/inkshelf/inkshelf-backend/pkg/errors"
	"github.com/inkshelf/inkshelf-backend/pkg/logger"
)

type vendorWithStatsResponse struct {
	vendorResponse
	EbookCount int64 `json:"ebook_count"`
	SaleCount  int64 `json:"sale_count"`
}

// AdminVendorList returns vendors with listing counters, optionally filtered
// by status.
func AdminVendorList(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
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

		var status *enums.VendorStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			parsed := enums.VendorStatus(raw)
			switch parsed {
			case enums.VendorStatusPending, enums.VendorStatusApproved, enums.VendorStatusRejected:
				status = &parsed
			default:
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown vendor status"))
				return
			}
		}

		rows, err := svc.ListWithStats(r.Context(), status, limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]vendorWithStatsResponse, 0, len(rows))
		for i := range rows {
			out = append(out, vendorWithStatsResponse{
				vendorResponse: newVendorResponse(&rows[i].Vendor),
				EbookCount:     rows[i].Stats.EbookCount,
				SaleCount:      rows[i].Stats.SaleCount,
			})
		}
		responses.WriteSuccess(w, out)
	}
}

type vendorDecisionRequest struct {
	Action  string    `json:"action" validate:"required,oneof=approve reject"`
	ActorID uuid.UUID `json:"actor_id" validate:"required"`
	Reason  string    `json:"reason" validate:"max=500"`
}

// AdminVendorDecision approves or rejects a pending vendor.
func AdminVendorDecision(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := vendorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body vendorDecisionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.ActorID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "actor id required"))
			return
		}

		switch body.Action {
		case "approve":
			decided, err := svc.Approve(r.Context(), vendorID, body.ActorID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, newVendorResponse(decided))
		case "reject":
			decided, err := svc.Reject(r.Context(), vendorID, body.ActorID, validators.SanitizeString(body.Reason, 500))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, newVendorResponse(decided))
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "action must be approve or reject"))
		}
	}
}
