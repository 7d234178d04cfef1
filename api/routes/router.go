package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inkshelf/inkshelf-backend/api/controllers"
	"github.com/inkshelf/inkshelf-backend/api/middleware"
	"github.com/inkshelf/inkshelf-backend/internal/ebooks"
	"github.com/inkshelf/inkshelf-backend/internal/payments"
	"github.com/inkshelf/inkshelf-backend/internal/payouts"
	"github.com/inkshelf/inkshelf-backend/internal/revenue"
	"github.com/inkshelf/inkshelf-backend/internal/sales"
	"github.com/inkshelf/inkshelf-backend/internal/vendors"
	"github.com/inkshelf/inkshelf-backend/pkg/config"
	"github.com/inkshelf/inkshelf-backend/pkg/logger"
	pkgredis "github.com/inkshelf/inkshelf-backend/pkg/redis"
)

type dbPinger interface {
	Ping(ctx context.Context) error
}

// NewRouter assembles the HTTP surface: health probes, the metrics scrape
// endpoint, and the versioned API. The idempotency middleware is mounted on
// the whole /api subtree and selects guarded routes internally.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP dbPinger,
	idempotencyStore pkgredis.IdempotencyStore,
	vendorService vendors.Service,
	ebookService ebooks.Service,
	saleService sales.Service,
	payoutService payouts.Service,
	paymentService payments.Service,
	revenueService revenue.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/ping", controllers.Ping())

		r.Route("/v1/vendors", func(r chi.Router) {
			r.Post("/", controllers.VendorSignup(vendorService, logg))
			r.Route("/{vendorId}", func(r chi.Router) {
				r.Get("/", controllers.VendorGet(vendorService, logg))
				r.Post("/onboarding", controllers.VendorOnboarding(vendorService, logg))
				r.Get("/balance", controllers.VendorBalance(vendorService, logg))
				r.Get("/sales", controllers.VendorSales(saleService, logg))
				r.Get("/revenue", controllers.VendorRevenue(revenueService, logg))
				r.Post("/payouts", controllers.VendorRequestPayout(payoutService, logg))
				r.Get("/payouts", controllers.VendorWithdrawals(payoutService, logg))
			})
		})

		r.Route("/v1/ebooks", func(r chi.Router) {
			r.Post("/", controllers.EbookCreate(ebookService, logg))
			r.Get("/", controllers.EbookList(ebookService, logg))
			r.Get("/{ebookId}", controllers.EbookGet(ebookService, logg))
			r.Delete("/{ebookId}", controllers.EbookDelete(ebookService, logg))
		})

		r.Post("/v1/payments/intent", controllers.PaymentIntentCreate(paymentService, logg))
		r.Post("/v1/sales/confirm", controllers.SaleConfirm(saleService, logg))
		r.Get("/v1/buyers/{buyerId}/purchases", controllers.BuyerPurchases(saleService, logg))

		r.Route("/v1/admin", func(r chi.Router) {
			r.Get("/vendors", controllers.AdminVendorList(vendorService, logg))
			r.Post("/vendors/{vendorId}/decision", controllers.AdminVendorDecision(vendorService, logg))
			r.Get("/revenue", controllers.AdminRevenue(revenueService, logg))
			r.Get("/sales", controllers.AdminSales(saleService, logg))
		})
	})

	return r
}
