// Package revenue serves settlement rollups computed from the sales index.
package revenue

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/inkshelf/inkshelf-backend/pkg/errors"
)

// Service exposes platform and per-vendor revenue aggregates. Rollups are
// derived on read; an empty index yields zeros, never an error.
type Service interface {
	PlatformRevenue(ctx context.Context) (*PlatformTotals, error)
	VendorRevenue(ctx context.Context, vendorID uuid.UUID) (*VendorTotals, error)
}

type service struct {
	repo Repository
}

// NewService wires the revenue aggregator.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("revenue repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) PlatformRevenue(ctx context.Context) (*PlatformTotals, error) {
	totals, err := s.repo.PlatformTotals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "aggregating platform revenue")
	}
	return totals, nil
}

func (s *service) VendorRevenue(ctx context.Context, vendorID uuid.UUID) (*VendorTotals, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	totals, err := s.repo.VendorTotals(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "aggregating vendor revenue")
	}
	return totals, nil
}
