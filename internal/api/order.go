package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shubhanshu-a32/katelog/internal/domain/checkout"
	"github.com/shubhanshu-a32/katelog/internal/domain/order"
	"github.com/shubhanshu-a32/katelog/internal/domain/user"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type placeOrderRequest struct {
	Items []struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
	Address     addressDTO `json:"address"`
	PaymentMode string     `json:"paymentMode"`
	CouponCode  string     `json:"couponCode"`
	Discount    float64    `json:"discount"`
}

// PlaceOrder runs a checkout for the calling buyer and returns every order it
// produced, one per distinct seller.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	if caller.Role != user.RoleBuyer {
		writeError(w, http.StatusForbidden, "Forbidden", "only buyers may place orders")
		return
	}

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "ValidationError", "malformed request body")
		return
	}

	items := make([]checkout.ItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = checkout.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	result, err := h.checkout.PlaceOrder(r.Context(), checkout.Request{
		BuyerID: caller.UserID,
		Items:   items,
		Address: order.Address{
			FullAddress: req.Address.FullAddress,
			Mobile:      req.Address.Mobile,
			City:        req.Address.City,
			State:       req.Address.State,
			Pincode:     req.Address.Pincode,
			Lat:         req.Address.Lat,
			Lng:         req.Address.Lng,
		},
		PaymentMode: order.PaymentMode(req.PaymentMode),
		CouponCode:  req.CouponCode,
		Discount:    decimal.NewFromFloat(req.Discount),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	dtos := make([]orderDTO, len(result.Orders))
	for i := range result.Orders {
		dtos[i] = domainToOrderDTO(&result.Orders[i])
	}
	writeJSON(w, http.StatusCreated, map[string]any{"orders": dtos})
}

// ListOrders returns the caller's orders: buyers see their purchases, sellers
// their sales.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	page := parsePage(r)

	var (
		orders []order.Order
		err    error
	)
	switch caller.Role {
	case user.RoleBuyer:
		orders, err = h.orders.ListByBuyer(r.Context(), caller.UserID, page)
	case user.RoleSeller:
		orders, err = h.orders.ListBySeller(r.Context(), caller.UserID, page)
	default:
		writeError(w, http.StatusForbidden, "Forbidden", "only buyers and sellers may list orders")
		return
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	dtos := make([]orderDTO, len(orders))
	for i := range orders {
		dtos[i] = domainToOrderDTO(&orders[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": dtos})
}

// OrderStats returns the calling buyer's order count and total spent.
func (h *Handler) OrderStats(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	if caller.Role != user.RoleBuyer {
		writeError(w, http.StatusForbidden, "Forbidden", "stats are available to buyers only")
		return
	}

	stats, err := h.orders.StatsByBuyer(r.Context(), caller.UserID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalOrders": stats.TotalOrders,
		"totalSpent":  stats.TotalSpent.InexactFloat64(),
	})
}

// GetOrder fetches one order the caller is allowed to see.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	o, err := h.orders.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !mayViewOrder(caller, o) {
		writeError(w, http.StatusForbidden, "Forbidden", "not your order")
		return
	}
	writeJSON(w, http.StatusOK, domainToOrderDTO(o))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus applies a role-guarded status change.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "ValidationError", "malformed request body")
		return
	}

	target, err := order.ParseStatus(req.Status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	o, err := h.orders.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	actor, allowed := statusActor(caller, o)
	if !allowed {
		writeError(w, http.StatusForbidden, "Forbidden", "not your order")
		return
	}
	if err := order.CanSet(actor, o.Status, target); err != nil {
		writeDomainError(w, r, err)
		return
	}

	updated, err := h.orders.UpdateStatus(r.Context(), o.ID, target)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, domainToOrderDTO(updated))
}

// DownloadInvoice streams the invoice document for one order.
func (h *Handler) DownloadInvoice(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	o, err := h.orders.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !mayViewOrder(caller, o) {
		writeError(w, http.StatusForbidden, "Forbidden", "not your order")
		return
	}

	w.Header().Set("Content-Type", h.invoices.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+h.invoices.Filename(o)+`"`)
	if err := h.invoices.Render(w, o); err != nil {
		// Headers are already out; nothing left to do but log.
		zctx.From(r.Context()).Error("render invoice", zap.Error(err))
	}
}

// mayViewOrder reports whether the caller is a party to the order. Admins see
// everything; delivery partners see orders assigned to them.
func mayViewOrder(caller identity, o *order.Order) bool {
	switch caller.Role {
	case user.RoleAdmin:
		return true
	case user.RoleBuyer:
		return o.BuyerID == caller.UserID
	case user.RoleSeller:
		return o.SellerID == caller.UserID
	case user.RoleDelivery:
		return o.DeliveryPartnerID != nil && *o.DeliveryPartnerID == caller.UserID
	}
	return false
}

// statusActor maps the caller onto a status-machine actor, checking ownership
// for buyers and sellers.
func statusActor(caller identity, o *order.Order) (order.Actor, bool) {
	switch caller.Role {
	case user.RoleAdmin:
		return order.ActorAdmin, true
	case user.RoleBuyer:
		return order.ActorBuyer, o.BuyerID == caller.UserID
	case user.RoleSeller:
		return order.ActorSeller, o.SellerID == caller.UserID
	}
	return "", false
}

func parsePage(r *http.Request) order.Page {
	page := order.Page{Limit: defaultPageLimit}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		page.Limit = min(v, maxPageLimit)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 1 {
		page.Offset = (v - 1) * page.Limit
	}
	return page
}
