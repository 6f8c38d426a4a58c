package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/shubhanshu-a32/katelog/internal/domain/analytics"
	"github.com/shubhanshu-a32/katelog/internal/domain/checkout"
	"github.com/shubhanshu-a32/katelog/internal/domain/delivery"
	"github.com/shubhanshu-a32/katelog/internal/domain/offer"
	"github.com/shubhanshu-a32/katelog/internal/domain/order"
)

// errorResponse is the uniform error envelope. The stock fields are only set
// for insufficient-stock failures so clients can render an exact message.
type errorResponse struct {
	Message          string `json:"message"`
	ErrorType        string `json:"errorType"`
	InvalidProductID string `json:"invalidProductId,omitempty"`
	AvailableStock   *int   `json:"availableStock,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errorType, message string) {
	writeJSON(w, status, errorResponse{Message: message, ErrorType: errorType})
}

// writeDomainError maps a domain error onto the response taxonomy. Anything
// unrecognized is logged server-side and returned as an opaque 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		stockErr    *checkout.InsufficientStockError
		notFoundErr *checkout.ProductNotFoundError
		qtyErr      *checkout.InvalidQuantityError
		statusErr   *order.InvalidStatusError
		transErr    *order.UnauthorizedTransitionError
		pinErr      *delivery.PincodeMismatchError
	)

	switch {
	case errors.As(err, &stockErr):
		avail := stockErr.Available
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message:          stockErr.Error(),
			ErrorType:        "InsufficientStock",
			InvalidProductID: stockErr.ProductID,
			AvailableStock:   &avail,
		})
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message:          notFoundErr.Error(),
			ErrorType:        "ValidationError",
			InvalidProductID: notFoundErr.ProductID,
		})
	case errors.As(err, &qtyErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message:          qtyErr.Error(),
			ErrorType:        "ValidationError",
			InvalidProductID: qtyErr.ProductID,
		})
	case errors.Is(err, checkout.ErrEmptyItems),
		errors.Is(err, checkout.ErrDiscountWithoutCoupon),
		errors.Is(err, offer.ErrMinCartNotMet),
		errors.Is(err, offer.ErrExpired),
		errors.Is(err, offer.ErrInactive),
		errors.Is(err, offer.ErrNotFound):
		writeError(w, http.StatusBadRequest, "ValidationError", err.Error())
	case errors.Is(err, offer.ErrNotApplicable):
		writeError(w, http.StatusBadRequest, "CouponNotApplicable", err.Error())
	case errors.As(err, &statusErr):
		writeError(w, http.StatusBadRequest, "ValidationError", statusErr.Error())
	case errors.As(err, &transErr):
		writeError(w, http.StatusForbidden, "Forbidden", transErr.Error())
	case errors.As(err, &pinErr):
		writeError(w, http.StatusBadRequest, "PincodeMismatch", pinErr.Error())
	case errors.Is(err, delivery.ErrInvalidPartner),
		errors.Is(err, delivery.ErrSellerPincodeUnknown),
		errors.Is(err, delivery.ErrPartnerPincodeUnknown):
		writeError(w, http.StatusBadRequest, "ValidationError", err.Error())
	case errors.Is(err, delivery.ErrPartnerNotFound):
		writeError(w, http.StatusNotFound, "NotFound", err.Error())
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "NotFound", "order not found")
	case errors.Is(err, analytics.ErrNotFound):
		writeError(w, http.StatusNotFound, "NotFound", "analytics record not found")
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "InternalError", "internal server error")
	}
}
