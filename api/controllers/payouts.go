package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/inkshelf/inkshelf-backend/api/responses"
	"github.com/inkshelf/inkshelf-backend/api/validators"
	"github.com/inkshelf/inkshelf-backend/internal/payouts"
	"github.com/inkshelf/inkshelf-backend/pkg/db/models"
	pkgerrors "github.com/inkshelf/inkshelf-backend/pkg/errors"
	"github.com/inkshelf/inkshelf-backend/pkg/logger"
)

type payoutRequest struct {
	AmountCents int64 `json:"amount_cents" validate:"required,gt=0"`
}

type withdrawalResponse struct {
	ID            uuid.UUID  `json:"id"`
	VendorID      uuid.UUID  `json:"vendor_id"`
	AmountCents   int64      `json:"amount_cents"`
	Status        string     `json:"status"`
	TransferRef   *string    `json:"transfer_ref,omitempty"`
	FailureReason *string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

func newWithdrawalResponse(withdrawal *models.Withdrawal) withdrawalResponse {
	return withdrawalResponse{
		ID:            withdrawal.ID,
		VendorID:      withdrawal.VendorID,
		AmountCents:   withdrawal.AmountCents,
		Status:        string(withdrawal.Status),
		TransferRef:   withdrawal.TransferRef,
		FailureReason: withdrawal.FailureReason,
		CreatedAt:     withdrawal.CreatedAt,
		CompletedAt:   withdrawal.CompletedAt,
	}
}

// VendorRequestPayout debits the vendor balance and executes the transfer.
// 201 carries the completed withdrawal; transfer failures map to the error
// envelope with the failed withdrawal id in the details.
func VendorRequestPayout(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payout service unavailable"))
			return
		}

		vendorID, err := vendorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body payoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		withdrawal, err := svc.RequestWithdrawal(r.Context(), vendorID, body.AmountCents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newWithdrawalResponse(withdrawal))
	}
}

// VendorWithdrawals lists the vendor's payout history.
func VendorWithdrawals(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := vendorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListVendorWithdrawals(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]withdrawalResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newWithdrawalResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
