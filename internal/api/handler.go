// Package api exposes the marketplace over HTTP. Handlers decode JSON, pull
// the caller identity from trusted gateway headers, delegate to the domain
// services, and map domain errors onto the response taxonomy.
package api

import (
	"net/http"

	"github.com/shubhanshu-a32/katelog/internal/domain/analytics"
	"github.com/shubhanshu-a32/katelog/internal/domain/checkout"
	"github.com/shubhanshu-a32/katelog/internal/domain/delivery"
	"github.com/shubhanshu-a32/katelog/internal/domain/order"
	"github.com/shubhanshu-a32/katelog/internal/invoice"
)

// Handler serves the order and analytics endpoints, delegating business logic
// to the injected domain services.
type Handler struct {
	checkout  *checkout.Service
	delivery  *delivery.Service
	orders    order.Repository
	analytics analytics.Recorder
	invoices  invoice.Renderer
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	checkoutSvc *checkout.Service,
	deliverySvc *delivery.Service,
	orders order.Repository,
	recorder analytics.Recorder,
	invoices invoice.Renderer,
) *Handler {
	return &Handler{
		checkout:  checkoutSvc,
		delivery:  deliverySvc,
		orders:    orders,
		analytics: recorder,
		invoices:  invoices,
	}
}

// Register mounts all API routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/orders", h.PlaceOrder)
	mux.HandleFunc("GET /api/orders", h.ListOrders)
	mux.HandleFunc("GET /api/orders/stats", h.OrderStats)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
	mux.HandleFunc("PUT /api/orders/{id}", h.UpdateOrderStatus)
	mux.HandleFunc("GET /api/orders/{id}/invoice", h.DownloadInvoice)
	mux.HandleFunc("GET /api/seller/analytics", h.ListSellerAnalytics)
	mux.HandleFunc("POST /api/admin/orders/{id}/assign", h.AssignPartner)
	mux.HandleFunc("GET /api/admin/analytics/{id}", h.GetAnalyticsRecord)
	mux.HandleFunc("PUT /api/admin/analytics/{id}/settlement", h.UpdateSettlement)
}
