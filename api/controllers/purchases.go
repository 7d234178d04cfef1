package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/inkshelf/inkshelf-backend/api/responses"
	"github.com/inkshelf/inkshelf-backend/internal/sales"
	pkgerrors "github.com/inkshelf/inkshelf-backend/pkg/errors"
	"github.com/inkshelf/inkshelf-backend/pkg/logger"
)

type purchaseResponse struct {
	PurchaseID  uuid.UUID      `json:"purchase_id"`
	SaleID      uuid.UUID      `json:"sale_id"`
	PurchasedAt time.Time      `json:"purchased_at"`
	Ebook       *ebookResponse `json:"ebook,omitempty"`
}

// BuyerPurchases returns the buyer's library with the purchased titles.
func BuyerPurchases(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "buyerId")
		buyerID, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid buyer id"))
			return
		}

		items, err := svc.ListBuyerLibrary(r.Context(), buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]purchaseResponse, 0, len(items))
		for _, item := range items {
			row := purchaseResponse{
				PurchaseID:  item.Purchase.ID,
				SaleID:      item.Purchase.SaleID,
				PurchasedAt: item.Purchase.CreatedAt,
			}
			if item.Ebook != nil {
				ebook := newEbookResponse(item.Ebook)
				row.Ebook = &ebook
			}
			out = append(out, row)
		}
		responses.WriteSuccess(w, out)
	}
}
