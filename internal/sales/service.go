package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkshelf/inkshelf-backend/internal/commission"
	dbpkg "github.com/inkshelf/inkshelf-backend/pkg/db"
	"github.com/inkshelf/inkshelf-backend/pkg/db/models"
	"github.com/inkshelf/inkshelf-backend/pkg/enums"
	pkgerrors "github.com/inkshelf/inkshelf-backend/pkg/errors"
	"github.com/inkshelf/inkshelf-backend/pkg/logger"
	"github.com/inkshelf/inkshelf-backend/pkg/metrics"
	"github.com/inkshelf/inkshelf-backend/pkg/outbox"
)

// TxRunner executes fn inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records confirmed sales and serves sale/library reads.
type Service interface {
	RecordSale(ctx context.Context, input RecordSaleInput) (*models.Sale, error)
	ListVendorSales(ctx context.Context, vendorID uuid.UUID) ([]models.Sale, error)
	ListSales(ctx context.Context, limit, offset int) ([]models.Sale, error)
	ListBuyerLibrary(ctx context.Context, buyerID uuid.UUID) ([]LibraryItem, error)
}

// RecordSaleInput is the confirmation payload for a completed payment.
type RecordSaleInput struct {
	EbookID    uuid.UUID
	BuyerID    uuid.UUID
	PaymentRef string
}

// LibraryItem pairs a purchase with the ebook it unlocked.
type LibraryItem struct {
	Purchase models.Purchase
	Ebook    *models.Ebook
}

type service struct {
	tx     TxRunner
	repo   Repository
	outbox *outbox.Service
	logg   *logger.Logger
}

// NewService wires the sale recorder.
func NewService(tx TxRunner, repo Repository, outboxSvc *outbox.Service, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	return &service{tx: tx, repo: repo, outbox: outboxSvc, logg: logg}, nil
}

// RecordSale settles one confirmed payment: it captures the commission split at
// the vendor's current rate, appends the immutable sale, indexes the purchase
// for the buyer, and credits the vendor share, all in one transaction. The
// unique payment_ref makes retried confirmations return AlreadyRecorded instead
// of double-crediting.
func (s *service) RecordSale(ctx context.Context, input RecordSaleInput) (*models.Sale, error) {
	if input.EbookID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ebook id required")
	}
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	if input.PaymentRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment ref required")
	}

	var sale *models.Sale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindSaleByPaymentRef(ctx, input.PaymentRef)
		if err != nil && !dbpkg.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "looking up payment ref")
		}
		if existing != nil {
			return pkgerrors.New(pkgerrors.CodeAlreadyRecorded, "sale already recorded for payment ref").
				WithDetails(map[string]string{"sale_id": existing.ID.String()})
		}

		ebook, err := repo.FindEbookByID(ctx, input.EbookID)
		if err != nil {
			if dbpkg.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "ebook not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "loading ebook")
		}

		var split commission.Split
		if ebook.VendorID == nil {
			split, err = commission.PlatformOnly(ebook.PriceCents)
			if err != nil {
				return err
			}
		} else {
			vendor, err := repo.FindVendorByID(ctx, *ebook.VendorID)
			if err != nil {
				if dbpkg.IsNotFound(err) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "loading vendor")
			}
			split, err = commission.Calculate(ebook.PriceCents, vendor.CommissionRatePercent)
			if err != nil {
				return err
			}
		}

		sale = &models.Sale{
			ID:                    uuid.New(),
			EbookID:               ebook.ID,
			BuyerID:               input.BuyerID,
			VendorID:              ebook.VendorID,
			TotalCents:            split.TotalCents,
			VendorCents:           split.VendorCents,
			PlatformCents:         split.PlatformCents,
			CommissionRatePercent: split.RatePercent,
			PaymentRef:            input.PaymentRef,
		}
		if err := repo.CreateSale(ctx, sale); err != nil {
			if dbpkg.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeAlreadyRecorded, "sale already recorded for payment ref")
			}
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "inserting sale")
		}

		purchase := &models.Purchase{
			ID:      uuid.New(),
			BuyerID: input.BuyerID,
			EbookID: ebook.ID,
			SaleID:  sale.ID,
		}
		if err := repo.CreatePurchase(ctx, purchase); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "indexing purchase")
		}

		if ebook.VendorID != nil && split.VendorCents > 0 {
			if err := repo.CreditVendorBalance(ctx, *ebook.VendorID, split.VendorCents); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "crediting vendor balance")
			}
		}

		return s.emitRecorded(ctx, tx, sale)
	})
	if err != nil {
		return nil, err
	}

	splitLabel := metrics.SplitPlatformOnly
	if sale.VendorID != nil {
		splitLabel = metrics.SplitVendor
	}
	metrics.SalesRecorded.WithLabelValues(splitLabel).Inc()
	metrics.SaleAmountCents.Observe(float64(sale.TotalCents))

	if s.logg != nil {
		fields := map[string]any{
			"sale_id":        sale.ID.String(),
			"payment_ref":    sale.PaymentRef,
			"total_cents":    sale.TotalCents,
			"vendor_cents":   sale.VendorCents,
			"platform_cents": sale.PlatformCents,
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "sale recorded")
	}
	return sale, nil
}

func (s *service) emitRecorded(ctx context.Context, tx *gorm.DB, sale *models.Sale) error {
	event := outbox.DomainEvent{
		EventType:     enums.EventSaleRecorded,
		AggregateType: enums.AggregateSale,
		AggregateID:   sale.ID,
		Version:       1,
		Data: map[string]any{
			"sale_id":                 sale.ID,
			"ebook_id":                sale.EbookID,
			"vendor_id":               sale.VendorID,
			"buyer_id":                sale.BuyerID,
			"payment_ref":             sale.PaymentRef,
			"total_cents":             sale.TotalCents,
			"vendor_cents":            sale.VendorCents,
			"platform_cents":          sale.PlatformCents,
			"commission_rate_percent": sale.CommissionRatePercent,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "queueing sale_recorded event")
	}
	return nil
}

func (s *service) ListVendorSales(ctx context.Context, vendorID uuid.UUID) ([]models.Sale, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	rows, err := s.repo.ListByVendorID(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "listing vendor sales")
	}
	return rows, nil
}

func (s *service) ListSales(ctx context.Context, limit, offset int) ([]models.Sale, error) {
	rows, err := s.repo.ListRecent(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "listing sales")
	}
	return rows, nil
}

func (s *service) ListBuyerLibrary(ctx context.Context, buyerID uuid.UUID) ([]LibraryItem, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	purchases, err := s.repo.ListPurchasesByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "listing purchases")
	}
	if len(purchases) == 0 {
		return []LibraryItem{}, nil
	}

	ids := make([]uuid.UUID, 0, len(purchases))
	for _, p := range purchases {
		ids = append(ids, p.EbookID)
	}
	ebooks, err := s.repo.FindEbooksByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "loading purchased ebooks")
	}
	byID := make(map[uuid.UUID]*models.Ebook, len(ebooks))
	for i := range ebooks {
		byID[ebooks[i].ID] = &ebooks[i]
	}

	items := make([]LibraryItem, 0, len(purchases))
	for _, p := range purchases {
		items = append(items, LibraryItem{Purchase: p, Ebook: byID[p.EbookID]})
	}
	return items, nil
}
