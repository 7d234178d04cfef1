package sales

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/inkshelf/inkshelf-backend/internal/payouts"
	"github.com/inkshelf/inkshelf-backend/pkg/config"
	dbpkg "github.com/inkshelf/inkshelf-backend/pkg/db"
	"github.com/inkshelf/inkshelf-backend/pkg/db/models"
	"github.com/inkshelf/inkshelf-backend/pkg/enums"
	pkgerrors "github.com/inkshelf/inkshelf-backend/pkg/errors"
	"github.com/inkshelf/inkshelf-backend/pkg/outbox"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:sales_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(
		&models.Vendor{},
		&models.Ebook{},
		&models.Sale{},
		&models.Purchase{},
		&models.OutboxEvent{},
	); err != nil {
		t.Fatalf("migrating schema: %v", err)
	}
	// sqlite allows one writer at a time, so concurrent transactions must
	// queue at the pool instead of tripping the busy handler
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrapping sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return gdb
}

func newTestService(t *testing.T, gdb *gorm.DB) Service {
	t.Helper()
	client := dbpkg.FromGorm(gdb)
	outboxSvc := outbox.NewService(outbox.NewRepository(gdb), nil)
	svc, err := NewService(client, NewRepository(gdb), outboxSvc, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func seedVendor(t *testing.T, gdb *gorm.DB, rate int) *models.Vendor {
	t.Helper()
	vendor := &models.Vendor{
		ID:                    uuid.New(),
		Name:                  "Ada",
		BusinessName:          "Ada Books",
		Email:                 uuid.NewString() + "@example.com",
		Status:                enums.VendorStatusApproved,
		CommissionRatePercent: rate,
	}
	if err := gdb.Create(vendor).Error; err != nil {
		t.Fatalf("seeding vendor: %v", err)
	}
	return vendor
}

func seedEbook(t *testing.T, gdb *gorm.DB, vendorID *uuid.UUID, priceCents int64) *models.Ebook {
	t.Helper()
	ebook := &models.Ebook{
		ID:         uuid.New(),
		Title:      "Distributed Systems",
		Author:     "A. Author",
		PriceCents: priceCents,
		VendorID:   vendorID,
		CreatedBy:  uuid.New(),
	}
	if err := gdb.Create(ebook).Error; err != nil {
		t.Fatalf("seeding ebook: %v", err)
	}
	return ebook
}

func TestRecordSaleVendorSplit(t *testing.T) {
	gdb := openTestDB(t)
	svc := newTestService(t, gdb)
	vendor := seedVendor(t, gdb, 10)
	ebook := seedEbook(t, gdb, &vendor.ID, 1000)

	sale, err := svc.RecordSale(context.Background(), RecordSaleInput{
		EbookID:    ebook.ID,
		BuyerID:    uuid.New(),
		PaymentRef: "pi_100",
	})
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}
	if sale.VendorCents != 900 || sale.PlatformCents != 100 {
		t.Fatalf("split = %d/%d, want 900/100", sale.VendorCents, sale.PlatformCents)
	}
	if sale.CommissionRatePercent != 10 {
		t.Fatalf("rate = %d, want 10", sale.CommissionRatePercent)
	}

	var reloaded models.Vendor
	if err := gdb.First(&reloaded, "id = ?", vendor.ID).Error; err != nil {
		t.Fatalf("reloading vendor: %v", err)
	}
	if reloaded.BalanceCents != 900 {
		t.Fatalf("balance = %d, want 900", reloaded.BalanceCents)
	}

	var purchases []models.Purchase
	if err := gdb.Find(&purchases, "sale_id = ?", sale.ID).Error; err != nil {
		t.Fatalf("loading purchases: %v", err)
	}
	if len(purchases) != 1 {
		t.Fatalf("purchase rows = %d, want 1", len(purchases))
	}

	var events []models.OutboxEvent
	if err := gdb.Find(&events, "aggregate_id = ?", sale.ID).Error; err != nil {
		t.Fatalf("loading outbox: %v", err)
	}
	if len(events) != 1 || events[0].EventType != enums.EventSaleRecorded {
		t.Fatalf("unexpected outbox rows: %+v", events)
	}
}

func TestRecordSalePlatformOwnedEbook(t *testing.T) {
	gdb := openTestDB(t)
	svc := newTestService(t, gdb)
	ebook := seedEbook(t, gdb, nil, 1500)

	sale, err := svc.RecordSale(context.Background(), RecordSaleInput{
		EbookID:    ebook.ID,
		BuyerID:    uuid.New(),
		PaymentRef: "pi_platform",
	})
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}
	if sale.PlatformCents != 1500 || sale.VendorCents != 0 {
		t.Fatalf("split = %d/%d, want 0/1500", sale.VendorCents, sale.PlatformCents)
	}
	if sale.VendorID != nil {
		t.Fatalf("expected nil vendor on platform sale")
	}
}

func TestRecordSaleDuplicatePaymentRef(t *testing.T) {
	gdb := openTestDB(t)
	svc := newTestService(t, gdb)
	vendor := seedVendor(t, gdb, 10)
	ebook := seedEbook(t, gdb, &vendor.ID, 1000)

	input := RecordSaleInput{EbookID: ebook.ID, BuyerID: uuid.New(), PaymentRef: "pi_dup"}
	if _, err := svc.RecordSale(context.Background(), input); err != nil {
		t.Fatalf("first RecordSale: %v", err)
	}

	_, err := svc.RecordSale(context.Background(), input)
	if !pkgerrors.IsCode(err, pkgerrors.CodeAlreadyRecorded) {
		t.Fatalf("duplicate: got %v, want CodeAlreadyRecorded", err)
	}

	var reloaded models.Vendor
	if err := gdb.First(&reloaded, "id = ?", vendor.ID).Error; err != nil {
		t.Fatalf("reloading vendor: %v", err)
	}
	if reloaded.BalanceCents != 900 {
		t.Fatalf("balance = %d after duplicate, want 900 (single credit)", reloaded.BalanceCents)
	}
}

func TestRecordSaleSequentialCredits(t *testing.T) {
	gdb := openTestDB(t)
	svc := newTestService(t, gdb)
	vendor := seedVendor(t, gdb, 10)
	ebook := seedEbook(t, gdb, &vendor.ID, 1000)

	for _, ref := range []string{"pi_a", "pi_b"} {
		if _, err := svc.RecordSale(context.Background(), RecordSaleInput{
			EbookID:    ebook.ID,
			BuyerID:    uuid.New(),
			PaymentRef: ref,
		}); err != nil {
			t.Fatalf("RecordSale(%s): %v", ref, err)
		}
	}

	var reloaded models.Vendor
	if err := gdb.First(&reloaded, "id = ?", vendor.ID).Error; err != nil {
		t.Fatalf("reloading vendor: %v", err)
	}
	if reloaded.BalanceCents != 1800 {
		t.Fatalf("balance = %d, want 1800", reloaded.BalanceCents)
	}
}

func TestRecordSaleConcurrentCredits(t *testing.T) {
	gdb := openTestDB(t)
	svc := newTestService(t, gdb)
	vendor := seedVendor(t, gdb, 10)
	ebook := seedEbook(t, gdb, &vendor.ID, 1000)

	refs := []string{"pi_conc_a", "pi_conc_b"}
	start := make(chan struct{})
	errs := make(chan error, len(refs))
	var wg sync.WaitGroup
	for _, ref := range refs {
		wg.Add(1)
		go func(ref string) {
			defer wg.Done()
			<-start
			_, err := svc.RecordSale(context.Background(), RecordSaleInput{
				EbookID:    ebook.ID,
				BuyerID:    uuid.New(),
				PaymentRef: ref,
			})
			errs <- err
		}(ref)
	}
	close(start)
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("RecordSale: %v", err)
		}
	}

	// neither credit may be lost to the other writer
	var reloaded models.Vendor
	if err := gdb.First(&reloaded, "id = ?", vendor.ID).Error; err != nil {
		t.Fatalf("reloading vendor: %v", err)
	}
	if reloaded.BalanceCents != 1800 {
		t.Fatalf("balance = %d, want 1800", reloaded.BalanceCents)
	}

	var count int64
	if err := gdb.Model(&models.Sale{}).Where("vendor_id = ?", vendor.ID).Count(&count).Error; err != nil {
		t.Fatalf("counting sales: %v", err)
	}
	if count != 2 {
		t.Fatalf("sales = %d, want 2", count)
	}
}

type stubTransferClient struct{}

func (stubTransferClient) CreateTransfer(_ context.Context, req payouts.TransferRequest) (*payouts.TransferResult, error) {
	return &payouts.TransferResult{Ref: "tr_" + req.WithdrawalID[:8]}, nil
}

// A sale followed by withdrawals must conserve money end to end: the vendor
// can take out exactly the credited share and not a cent more.
func TestSaleThenWithdrawalConservesFunds(t *testing.T) {
	gdb := openTestDB(t)
	svc := newTestService(t, gdb)
	vendor := seedVendor(t, gdb, 10)
	account := "acct_conserve"
	if err := gdb.Model(&models.Vendor{}).Where("id = ?", vendor.ID).
		UpdateColumn("payout_account_id", account).Error; err != nil {
		t.Fatalf("setting payout account: %v", err)
	}
	ebook := seedEbook(t, gdb, &vendor.ID, 1000)

	if err := gdb.AutoMigrate(&models.Withdrawal{}); err != nil {
		t.Fatalf("migrating withdrawals: %v", err)
	}
	payoutSvc, err := payouts.NewService(
		dbpkg.FromGorm(gdb),
		payouts.NewRepository(gdb),
		stubTransferClient{},
		outbox.NewService(outbox.NewRepository(gdb), nil),
		nil,
		config.SettlementConfig{CompensationMaxRetries: 2, CompensationBaseBackoff: time.Millisecond},
	)
	if err != nil {
		t.Fatalf("payouts.NewService: %v", err)
	}

	sale, err := svc.RecordSale(context.Background(), RecordSaleInput{
		EbookID:    ebook.ID,
		BuyerID:    uuid.New(),
		PaymentRef: "pi_conserve",
	})
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}
	if sale.VendorCents != 900 {
		t.Fatalf("vendor share = %d, want 900", sale.VendorCents)
	}

	withdrawal, err := payoutSvc.RequestWithdrawal(context.Background(), vendor.ID, 900)
	if err != nil {
		t.Fatalf("RequestWithdrawal: %v", err)
	}
	if withdrawal.Status != enums.WithdrawalStatusCompleted {
		t.Fatalf("status = %s, want completed", withdrawal.Status)
	}

	var reloaded models.Vendor
	if err := gdb.First(&reloaded, "id = ?", vendor.ID).Error; err != nil {
		t.Fatalf("reloading vendor: %v", err)
	}
	if reloaded.BalanceCents != 0 {
		t.Fatalf("balance = %d, want 0 after full withdrawal", reloaded.BalanceCents)
	}

	// the share is spent, one more cent must bounce without touching anything
	if _, err := payoutSvc.RequestWithdrawal(context.Background(), vendor.ID, 1); !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientBalance) {
		t.Fatalf("got %v, want CodeInsufficientBalance", err)
	}
	if err := gdb.First(&reloaded, "id = ?", vendor.ID).Error; err != nil {
		t.Fatalf("reloading vendor: %v", err)
	}
	if reloaded.BalanceCents != 0 {
		t.Fatalf("balance = %d, want 0 after rejected request", reloaded.BalanceCents)
	}
}

func TestRecordSaleMissingEbook(t *testing.T) {
	gdb := openTestDB(t)
	svc := newTestService(t, gdb)

	_, err := svc.RecordSale(context.Background(), RecordSaleInput{
		EbookID:    uuid.New(),
		BuyerID:    uuid.New(),
		PaymentRef: "pi_missing",
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("got %v, want CodeNotFound", err)
	}
}

func TestRecordSaleValidation(t *testing.T) {
	gdb := openTestDB(t)
	svc := newTestService(t, gdb)

	tests := []struct {
		name  string
		input RecordSaleInput
	}{
		{name: "missing ebook id", input: RecordSaleInput{BuyerID: uuid.New(), PaymentRef: "x"}},
		{name: "missing buyer id", input: RecordSaleInput{EbookID: uuid.New(), PaymentRef: "x"}},
		{name: "missing payment ref", input: RecordSaleInput{EbookID: uuid.New(), BuyerID: uuid.New()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.RecordSale(context.Background(), tt.input); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("got %v, want CodeValidation", err)
			}
		})
	}
}

func TestListBuyerLibrary(t *testing.T) {
	gdb := openTestDB(t)
	svc := newTestService(t, gdb)
	vendor := seedVendor(t, gdb, 10)
	ebook := seedEbook(t, gdb, &vendor.ID, 1000)
	buyerID := uuid.New()

	if _, err := svc.RecordSale(context.Background(), RecordSaleInput{
		EbookID:    ebook.ID,
		BuyerID:    buyerID,
		PaymentRef: "pi_lib",
	}); err != nil {
		t.Fatalf("RecordSale: %v", err)
	}

	items, err := svc.ListBuyerLibrary(context.Background(), buyerID)
	if err != nil {
		t.Fatalf("ListBuyerLibrary: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].Ebook == nil || items[0].Ebook.ID != ebook.ID {
		t.Fatalf("library item missing ebook: %+v", items[0])
	}

	empty, err := svc.ListBuyerLibrary(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("ListBuyerLibrary(empty): %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty library, got %d items", len(empty))
	}
}

func TestListVendorSales(t *testing.T) {
	gdb := openTestDB(t)
	svc := newTestService(t, gdb)
	vendor := seedVendor(t, gdb, 10)
	ebook := seedEbook(t, gdb, &vendor.ID, 1000)

	if _, err := svc.RecordSale(context.Background(), RecordSaleInput{
		EbookID:    ebook.ID,
		BuyerID:    uuid.New(),
		PaymentRef: "pi_vs",
	}); err != nil {
		t.Fatalf("RecordSale: %v", err)
	}

	rows, err := svc.ListVendorSales(context.Background(), vendor.ID)
	if err != nil {
		t.Fatalf("ListVendorSales: %v", err)
	}
	if len(rows) != 1 || rows[0].PaymentRef != "pi_vs" {
		t.Fatalf("unexpected sales: %+v", rows)
	}
}
