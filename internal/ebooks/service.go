package ebooks

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/inkshelf/inkshelf-backend/internal/vendors"
	dbpkg "github.com/inkshelf/inkshelf-backend/pkg/db"
	"github.com/inkshelf/inkshelf-backend/pkg/db/models"
	"github.com/inkshelf/inkshelf-backend/pkg/enums"
	pkgerrors "github.com/inkshelf/inkshelf-backend/pkg/errors"
	"github.com/inkshelf/inkshelf-backend/pkg/logger"
)

// CreateInput is a new catalog listing. Price arrives in major units
// ("12.99") and is stored in cents.
type CreateInput struct {
	Title       string
	Author      string
	Description string
	Categories  []string
	Price       decimal.Decimal
	VendorID    *uuid.UUID
	CoverURL    string
	CreatedBy   uuid.UUID
}

// Service manages the ebook catalog.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Ebook, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Ebook, error)
	List(ctx context.Context, filter ListFilter) ([]models.Ebook, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo       Repository
	vendorRepo vendors.Repository
	logg       *logger.Logger
}

// NewService wires the catalog service.
func NewService(repo Repository, vendorRepo vendors.Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ebooks repository required")
	}
	if vendorRepo == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	return &service{repo: repo, vendorRepo: vendorRepo, logg: logg}, nil
}

var oneHundred = decimal.NewFromInt(100)

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Ebook, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Author = strings.TrimSpace(input.Author)

	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if input.Author == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "author required")
	}
	if input.CreatedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator id required")
	}
	if input.Price.Exponent() < -2 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price has sub-cent precision")
	}
	priceCents := input.Price.Mul(oneHundred).IntPart()
	if priceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}

	if input.VendorID != nil {
		vendor, err := s.vendorRepo.FindByID(ctx, *input.VendorID)
		if err != nil {
			if dbpkg.IsNotFound(err) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "loading vendor")
		}
		if vendor.Status != enums.VendorStatusApproved {
			return nil, pkgerrors.New(pkgerrors.CodeNotApproved, "vendor is not approved to list ebooks")
		}
	}

	ebook := &models.Ebook{
		ID:         uuid.New(),
		Title:      input.Title,
		Author:     input.Author,
		Categories: pq.StringArray(input.Categories),
		PriceCents: priceCents,
		VendorID:   input.VendorID,
		CreatedBy:  input.CreatedBy,
	}
	if input.Description != "" {
		ebook.Description = &input.Description
	}
	if input.CoverURL != "" {
		ebook.CoverURL = &input.CoverURL
	}

	if err := s.repo.Create(ctx, ebook); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "creating ebook")
	}

	if s.logg != nil {
		fields := map[string]any{"ebook_id": ebook.ID.String(), "price_cents": ebook.PriceCents}
		s.logg.Info(s.logg.WithFields(ctx, fields), "ebook listed")
	}
	return ebook, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Ebook, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ebook id required")
	}
	ebook, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ebook not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "loading ebook")
	}
	return ebook, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Ebook, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "listing ebooks")
	}
	return rows, nil
}

// Delete removes a listing. Titles with recorded sales stay: the sales index
// is immutable and keeps referencing them.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "ebook id required")
	}

	sold, err := s.repo.HasSales(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "checking sales")
	}
	if sold {
		return pkgerrors.New(pkgerrors.CodeValidation, "ebook has recorded sales and cannot be deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if dbpkg.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "ebook not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "deleting ebook")
	}
	return nil
}
