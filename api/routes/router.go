package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tradelinkhq/tradelink-backend/api/controllers"
	"github.com/tradelinkhq/tradelink-backend/api/middleware"
	"github.com/tradelinkhq/tradelink-backend/internal/catalog"
	"github.com/tradelinkhq/tradelink-backend/internal/inquiries"
	"github.com/tradelinkhq/tradelink-backend/internal/invoices"
	"github.com/tradelinkhq/tradelink-backend/internal/orders"
	"github.com/tradelinkhq/tradelink-backend/internal/rfq"
	"github.com/tradelinkhq/tradelink-backend/internal/sellers"
	"github.com/tradelinkhq/tradelink-backend/pkg/config"
	"github.com/tradelinkhq/tradelink-backend/pkg/enums"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
	"github.com/tradelinkhq/tradelink-backend/pkg/metrics"
	"github.com/tradelinkhq/tradelink-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       *redis.Client
	HTTPMetrics *metrics.HTTPMetrics
	Registry    *prometheus.Registry

	Sellers   sellers.Service
	Catalog   catalog.Service
	Inquiries inquiries.Service
	RFQs      rfq.Service
	Orders    orders.Service
	Invoices  invoices.Service
}

// NewRouter builds the full API route tree.
func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(d.HTTPMetrics),
	)

	if d.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.Liveness())
		r.Get("/ready", controllers.Readiness(d.DB, d.Redis, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public marketplace surface.
		r.Get("/products", controllers.ListProducts(d.Catalog, logg))
		r.Get("/products/{productID}", controllers.GetProduct(d.Catalog, logg))
		r.Route("/refdata", func(r chi.Router) {
			r.Get("/countries", controllers.ListCountries())
			r.Get("/currencies", controllers.ListCurrencies())
		})

		// Everything below requires an access token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(d.Redis, logg))

			sellerOnly := middleware.RequireRole(logg, enums.RoleSeller)
			buyerOnly := middleware.RequireRole(logg, enums.RoleBuyer)

			r.Route("/sellers/profile", func(r chi.Router) {
				r.Use(sellerOnly)
				r.Get("/", controllers.GetSellerProfile(d.Sellers, logg))
				r.Post("/", controllers.CreateSellerProfile(d.Sellers, logg))
				r.Patch("/", controllers.UpdateSellerProfile(d.Sellers, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(sellerOnly)
				r.Get("/seller/products", controllers.ListSellerProducts(d.Catalog, logg))
				r.Post("/products", controllers.CreateProduct(d.Catalog, logg))
				r.Patch("/products/{productID}", controllers.UpdateProduct(d.Catalog, logg))
				r.Delete("/products/{productID}", controllers.DeleteProduct(d.Catalog, logg))
				r.Post("/products/{productID}/active", controllers.SetProductActive(d.Catalog, logg))
			})

			r.Route("/inquiries", func(r chi.Router) {
				r.Get("/", controllers.ListInquiries(d.Inquiries, logg))
				r.Get("/{inquiryID}", controllers.GetInquiry(d.Inquiries, logg))
				r.Post("/{inquiryID}/close", controllers.CloseInquiry(d.Inquiries, logg))
				r.With(buyerOnly).Post("/", controllers.CreateInquiry(d.Inquiries, logg))
				r.With(buyerOnly).Patch("/{inquiryID}", controllers.UpdateInquiry(d.Inquiries, logg))
				r.With(sellerOnly).Post("/{inquiryID}/reply", controllers.ReplyInquiry(d.Inquiries, logg))
			})

			r.Route("/rfqs", func(r chi.Router) {
				r.Get("/{rfqID}", controllers.GetRFQ(d.RFQs, logg))
				r.With(buyerOnly).Get("/", controllers.ListBuyerRFQs(d.RFQs, logg))
				r.With(buyerOnly).Post("/", controllers.CreateRFQ(d.RFQs, logg))
				r.With(buyerOnly).Patch("/{rfqID}", controllers.UpdateRFQ(d.RFQs, logg))
				r.With(buyerOnly).Delete("/{rfqID}", controllers.DeleteRFQ(d.RFQs, logg))
				r.With(buyerOnly).Post("/{rfqID}/close", controllers.CloseRFQ(d.RFQs, logg))
				r.With(buyerOnly).Get("/{rfqID}/responses", controllers.ListRFQResponses(d.RFQs, logg))
				r.With(sellerOnly).Get("/available", controllers.ListAvailableRFQs(d.RFQs, logg))
				r.With(sellerOnly).Post("/{rfqID}/responses", controllers.RespondToRFQ(d.RFQs, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListOrders(d.Orders, logg))
				r.Get("/{orderID}", controllers.GetOrder(d.Orders, logg))
				r.Post("/{orderID}/transition", controllers.TransitionOrder(d.Orders, logg))
				r.With(buyerOnly).Post("/", controllers.CreateDirectOrder(d.Orders, logg))
				r.With(sellerOnly).Post("/from-inquiry", controllers.ConvertInquiryToOrder(d.Orders, logg))
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", controllers.ListInvoices(d.Invoices, logg))
				r.Get("/{invoiceID}", controllers.GetInvoice(d.Invoices, logg))
				r.Get("/{invoiceID}/pdf", controllers.DownloadInvoicePDF(d.Invoices, logg))
				r.With(sellerOnly).Post("/", controllers.GenerateInvoice(d.Invoices, logg))
				r.With(sellerOnly).Post("/{invoiceID}/confirm", controllers.ConfirmInvoice(d.Invoices, logg))
				r.With(sellerOnly).Post("/{invoiceID}/cancel", controllers.CancelInvoice(d.Invoices, logg))
			})
		})
	})

	return r
}
