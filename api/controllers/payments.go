package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/inkshelf/inkshelf-backend/api/responses"
	"github.com/inkshelf/inkshelf-backend/api/validators"
	"github.com/inkshelf/inkshelf-backend/internal/payments"
	pkgerrors "github.com/inkshelf/inkshelf-backend/pkg/errors"
	"github.com/inkshelf/inkshelf-backend/pkg/logger"
)

type paymentIntentRequest struct {
	EbookID uuid.UUID `json:"ebook_id" validate:"required"`
	BuyerID uuid.UUID `json:"buyer_id" validate:"required"`
}

type paymentIntentResponse struct {
	Ref           string `json:"ref"`
	ClientSecret  string `json:"client_secret"`
	AmountCents   int64  `json:"amount_cents"`
	VendorCents   int64  `json:"vendor_cents"`
	PlatformCents int64  `json:"platform_cents"`
}

// PaymentIntentCreate provisions the storefront capture for one ebook.
func PaymentIntentCreate(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var body paymentIntentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := svc.CreateIntent(r.Context(), payments.CreateIntentInput{
			EbookID: body.EbookID,
			BuyerID: body.BuyerID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, paymentIntentResponse{
			Ref:           intent.Ref,
			ClientSecret:  intent.ClientSecret,
			AmountCents:   intent.AmountCents,
			VendorCents:   intent.VendorCents,
			PlatformCents: intent.PlatformCents,
		})
	}
}
