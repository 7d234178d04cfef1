package ebooks

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/inkshelf/inkshelf-backend/internal/vendors"
	"github.com/inkshelf/inkshelf-backend/pkg/db/models"
	"github.com/inkshelf/inkshelf-backend/pkg/enums"
	pkgerrors "github.com/inkshelf/inkshelf-backend/pkg/errors"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file:ebooks_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(
		&models.Vendor{},
		&models.Ebook{},
		&models.Sale{},
	); err != nil {
		t.Fatalf("migrating schema: %v", err)
	}
	return gdb
}

func newTestService(t *testing.T, gdb *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(gdb), vendors.NewRepository(gdb), nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func seedVendor(t *testing.T, gdb *gorm.DB, status enums.VendorStatus) *models.Vendor {
	t.Helper()
	vendor := &models.Vendor{
		ID:                    uuid.New(),
		Name:                  "Ada",
		BusinessName:          "Ada Books",
		Email:                 uuid.NewString() + "@example.com",
		Status:                status,
		CommissionRatePercent: 10,
	}
	if err := gdb.Create(vendor).Error; err != nil {
		t.Fatalf("seeding vendor: %v", err)
	}
	return vendor
}

func TestCreateVendorOwned(t *testing.T) {
	gdb := openTestDB(t)
	svc := newTestService(t, gdb)
	vendor := seedVendor(t, gdb, enums.VendorStatusApproved)

	ebook, err := svc.Create(context.Background(), CreateInput{
		Title:      "  Distributed Systems  ",
		Author:     "A. Author",
		Categories: []string{"technology", "education"},
		Price:      decimal.RequireFromString("12.99"),
		VendorID:   &vendor.ID,
		CreatedBy:  uuid.New(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ebook.Title != "Distributed Systems" {
		t.Fatalf("expected trimmed title, got %q", ebook.Title)
	}
	if ebook.PriceCents != 1299 {
		t.Fatalf("expected 1299 cents, got %d", ebook.PriceCents)
	}
	if ebook.VendorID == nil || *ebook.VendorID != vendor.ID {
		t.Fatalf("expected vendor %s on ebook", vendor.ID)
	}

	var stored models.Ebook
	if err := gdb.First(&stored, "id = ?", ebook.ID).Error; err != nil {
		t.Fatalf("loading stored ebook: %v", err)
	}
	if len(stored.Categories) != 2 || stored.Categories[0] != "technology" {
		t.Fatalf("unexpected categories: %v", stored.Categories)
	}
}

func TestCreatePlatformOwned(t *testing.T) {
	gdb := openTestDB(t)
	svc := newTestService(t, gdb)

	ebook, err := svc.Create(context.Background(), CreateInput{
		Title:     "Marketplace Field Guide",
		Author:    "Inkshelf",
		Price:     decimal.RequireFromString("5"),
		CreatedBy: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ebook.VendorID != nil {
		t.Fatalf("expected platform-owned ebook, got vendor %v", ebook.VendorID)
	}
	if ebook.PriceCents != 500 {
		t.Fatalf("expected 500 cents, got %d", ebook.PriceCents)
	}
}

func TestCreateValidation(t *testing.T) {
	gdb := openTestDB(t)
	svc := newTestService(t, gdb)

	valid := CreateInput{
		Title:     "Title",
		Author:    "Author",
		Price:     decimal.RequireFromString("9.99"),
		CreatedBy: uuid.New(),
	}

	cases := []struct {
		name   string
		mutate func(input *CreateInput)
	}{
		{"empty title", func(in *CreateInput) { in.Title = "   " }},
		{"empty author", func(in *CreateInput) { in.Author = "" }},
		{"missing creator", func(in *CreateInput) { in.CreatedBy = uuid.Nil }},
		{"zero price", func(in *CreateInput) { in.Price = decimal.Zero }},
		{"negative price", func(in *CreateInput) { in.Price = decimal.RequireFromString("-3.50") }},
		{"sub-cent price", func(in *CreateInput) { in.Price = decimal.RequireFromString("9.999") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := valid
			tc.mutate(&input)
			_, err := svc.Create(context.Background(), input)
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateVendorGate(t *testing.T) {
	gdb := openTestDB(t)
	svc := newTestService(t, gdb)
	pending := seedVendor(t, gdb, enums.VendorStatusPending)

	_, err := svc.Create(context.Background(), CreateInput{
		Title:     "Early Draft",
		Author:    "A. Author",
		Price:     decimal.RequireFromString("4.00"),
		VendorID:  &pending.ID,
		CreatedBy: uuid.New(),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotApproved) {
		t.Fatalf("expected not-approved error, got %v", err)
	}

	unknown := uuid.New()
	_, err = svc.Create(context.Background(), CreateInput{
		Title:     "Ghost Title",
		Author:    "A. Author",
		Price:     decimal.RequireFromString("4.00"),
		VendorID:  &unknown,
		CreatedBy: uuid.New(),
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestGet(t *testing.T) {
	gdb := openTestDB(t)
	svc := newTestService(t, gdb)

	created, err := svc.Create(context.Background(), CreateInput{
		Title:     "Title",
		Author:    "Author",
		Price:     decimal.RequireFromString("2.50"),
		CreatedBy: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("expected ebook %s, got %s", created.ID, got.ID)
	}

	if _, err := svc.Get(context.Background(), uuid.New()); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestListByVendor(t *testing.T) {
	gdb := openTestDB(t)
	svc := newTestService(t, gdb)
	vendor := seedVendor(t, gdb, enums.VendorStatusApproved)
	other := seedVendor(t, gdb, enums.VendorStatusApproved)

	for _, owner := range []*uuid.UUID{&vendor.ID, &vendor.ID, &other.ID, nil} {
		if _, err := svc.Create(context.Background(), CreateInput{
			Title:     "Title " + uuid.NewString(),
			Author:    "Author",
			Price:     decimal.RequireFromString("3.00"),
			VendorID:  owner,
			CreatedBy: uuid.New(),
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	rows, err := svc.List(context.Background(), ListFilter{VendorID: &vendor.ID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 ebooks for vendor, got %d", len(rows))
	}

	all, err := svc.List(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 ebooks, got %d", len(all))
	}
}

func TestDelete(t *testing.T) {
	gdb := openTestDB(t)
	svc := newTestService(t, gdb)

	created, err := svc.Create(context.Background(), CreateInput{
		Title:     "Ephemeral",
		Author:    "Author",
		Price:     decimal.RequireFromString("1.00"),
		CreatedBy: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), created.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected ebook gone, got %v", err)
	}

	if err := svc.Delete(context.Background(), uuid.New()); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestDeleteRejectedAfterSales(t *testing.T) {
	gdb := openTestDB(t)
	svc := newTestService(t, gdb)

	created, err := svc.Create(context.Background(), CreateInput{
		Title:     "Bestseller",
		Author:    "Author",
		Price:     decimal.RequireFromString("10.00"),
		CreatedBy: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	sale := &models.Sale{
		ID:            uuid.New(),
		EbookID:       created.ID,
		BuyerID:       uuid.New(),
		PaymentRef:    "pi_" + uuid.NewString(),
		TotalCents:    1000,
		VendorCents:   0,
		PlatformCents: 1000,
	}
	if err := gdb.Create(sale).Error; err != nil {
		t.Fatalf("seeding sale: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Get(context.Background(), created.ID); err != nil {
		t.Fatalf("expected ebook kept, got %v", err)
	}
}
