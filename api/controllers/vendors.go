package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/inkshelf/inkshelf-backend/api/responses"
	"github.com/inkshelf/inkshelf-backend/api/validators"
	"github.com/inkshelf/inkshelf-backend/internal/vendors"
	"github.com/inkshelf/inkshelf-backend/pkg/db/models"
	pkgerrors "github.com/inkshelf/inkshelf-backend/pkg/errors"
	"github.com/inkshelf/inkshelf-backend/pkg/logger"
)

type vendorSignupRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	BusinessName string `json:"business_name" validate:"required,max=200"`
	Email        string `json:"email" validate:"required,email"`
}

type vendorResponse struct {
	ID                    uuid.UUID  `json:"id"`
	Name                  string     `json:"name"`
	BusinessName          string     `json:"business_name"`
	Email                 string     `json:"email"`
	Status                string     `json:"status"`
	CommissionRatePercent int        `json:"commission_rate_percent"`
	PayoutAccountID       *string    `json:"payout_account_id,omitempty"`
	BalanceCents          int64      `json:"balance_cents"`
	ApprovedAt            *time.Time `json:"approved_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

func newVendorResponse(vendor *models.Vendor) vendorResponse {
	return vendorResponse{
		ID:                    vendor.ID,
		Name:                  vendor.Name,
		BusinessName:          vendor.BusinessName,
		Email:                 vendor.Email,
		Status:                string(vendor.Status),
		CommissionRatePercent: vendor.CommissionRatePercent,
		PayoutAccountID:       vendor.PayoutAccountID,
		BalanceCents:          vendor.BalanceCents,
		ApprovedAt:            vendor.ApprovedAt,
		CreatedAt:             vendor.CreatedAt,
	}
}

// VendorSignup registers a new vendor in pending state.
func VendorSignup(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		var body vendorSignupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vendor, err := svc.Signup(r.Context(), vendors.SignupInput{
			Name:         validators.SanitizeString(body.Name, 200),
			BusinessName: validators.SanitizeString(body.BusinessName, 200),
			Email:        body.Email,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newVendorResponse(vendor))
	}
}

// VendorGet returns a vendor profile.
func VendorGet(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := vendorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vendor, err := svc.Get(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newVendorResponse(vendor))
	}
}

type onboardingResponse struct {
	AccountID string `json:"account_id"`
	URL       string `json:"url"`
}

// VendorOnboarding provisions the payout destination and returns a hosted
// onboarding link.
func VendorOnboarding(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := vendorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		link, err := svc.Onboard(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, onboardingResponse{AccountID: link.AccountID, URL: link.URL})
	}
}

type balanceResponse struct {
	BalanceCents        int64                `json:"balance_cents"`
	TotalWithdrawnCents int64                `json:"total_withdrawn_cents"`
	Withdrawals         []withdrawalResponse `json:"withdrawals"`
}

// VendorBalance returns the vendor's money position.
func VendorBalance(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := vendorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.BalanceSummary(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := balanceResponse{
			BalanceCents:        summary.BalanceCents,
			TotalWithdrawnCents: summary.TotalWithdrawnCents,
			Withdrawals:         make([]withdrawalResponse, 0, len(summary.Withdrawals)),
		}
		for i := range summary.Withdrawals {
			out.Withdrawals = append(out.Withdrawals, newWithdrawalResponse(&summary.Withdrawals[i]))
		}

		responses.WriteSuccess(w, out)
	}
}

func vendorIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "vendorId")
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid vendor id")
	}
	return id, nil
}
