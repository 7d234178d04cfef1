package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inkshelf/inkshelf-backend/api/responses"
	"github.com/inkshelf/inkshelf-backend/api/validators"
	"github.com/inkshelf/inkshelf-backend/internal/ebooks"
	"github.com/inkshelf/inkshelf-backend/pkg/db/models"
	pkgerrors "github.com/inkshelf/inkshelf-backend/pkg/errors"
	"github.com/inkshelf/inkshelf-backend/pkg/logger"
)

type ebookCreateRequest struct {
	Title       string     `json:"title" validate:"required,max=300"`
	Author      string     `json:"author" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	Categories  []string   `json:"categories" validate:"max=10,dive,max=50"`
	Price       string     `json:"price" validate:"required"`
	VendorID    *uuid.UUID `json:"vendor_id"`
	CoverURL    string     `json:"cover_url" validate:"omitempty,url"`
	CreatedBy   uuid.UUID  `json:"created_by" validate:"required"`
}

type ebookResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Description *string    `json:"description,omitempty"`
	Categories  []string   `json:"categories"`
	PriceCents  int64      `json:"price_cents"`
	VendorID    *uuid.UUID `json:"vendor_id,omitempty"`
	CoverURL    *string    `json:"cover_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func newEbookResponse(ebook *models.Ebook) ebookResponse {
	return ebookResponse{
		ID:          ebook.ID,
		Title:       ebook.Title,
		Author:      ebook.Author,
		Description: ebook.Description,
		Categories:  []string(ebook.Categories),
		PriceCents:  ebook.PriceCents,
		VendorID:    ebook.VendorID,
		CoverURL:    ebook.CoverURL,
		CreatedAt:   ebook.CreatedAt,
	}
}

// EbookCreate lists a new title. Price arrives in major units ("12.99").
func EbookCreate(svc ebooks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ebook service unavailable"))
			return
		}

		var body ebookCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := decimal.NewFromString(body.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal amount"))
			return
		}

		ebook, err := svc.Create(r.Context(), ebooks.CreateInput{
			Title:       body.Title,
			Author:      body.Author,
			Description: validators.SanitizeString(body.Description, 5000),
			Categories:  body.Categories,
			Price:       price,
			VendorID:    body.VendorID,
			CoverURL:    body.CoverURL,
			CreatedBy:   body.CreatedBy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newEbookResponse(ebook))
	}
}

// EbookList returns catalog entries, optionally filtered by vendor and
// category.
func EbookList(svc ebooks.Service, logg *logger.Logger) http.HandlerFunc {
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

		filter := ebooks.ListFilter{
			Category: r.URL.Query().Get("category"),
			Limit:    limit,
			Offset:   offset,
		}
		if raw := r.URL.Query().Get("vendor_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid vendor id"))
				return
			}
			filter.VendorID = &id
		}

		rows, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]ebookResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newEbookResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// EbookGet returns one catalog entry.
func EbookGet(svc ebooks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ebookID, err := ebookIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ebook, err := svc.Get(r.Context(), ebookID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newEbookResponse(ebook))
	}
}

// EbookDelete removes an unsold listing.
func EbookDelete(svc ebooks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ebookID, err := ebookIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), ebookID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func ebookIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "ebookId")
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "ebook id required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid ebook id")
	}
	return id, nil
}
