package checkout

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shubhanshu-a32/katelog/internal/domain/analytics"
	"github.com/shubhanshu-a32/katelog/internal/domain/offer"
	"github.com/shubhanshu-a32/katelog/internal/domain/order"
	"github.com/shubhanshu-a32/katelog/internal/domain/product"
	"github.com/shubhanshu-a32/katelog/internal/domain/shipping"
)

// sellerGroup accumulates one seller's portion of the cart.
type sellerGroup struct {
	sellerID string
	lines    []order.Line
	subtotal decimal.Decimal
}

// Service runs the fulfillment pipeline for one checkout.
type Service struct {
	products product.Repository
	offers   offer.Repository
	shipping shipping.Policy
	store    Store
	now      func() time.Time
}

// NewService creates a checkout Service with the required dependencies.
func NewService(
	products product.Repository,
	offers offer.Repository,
	policy shipping.Policy,
	store Store,
) *Service {
	return &Service{
		products: products,
		offers:   offers,
		shipping: policy,
		store:    store,
		now:      time.Now,
	}
}

// PlaceOrder validates and splits the cart, prices each seller group, and
// persists all resulting orders atomically. A failure on any single item
// aborts the entire checkout.
func (s *Service) PlaceOrder(ctx context.Context, req Request) (*Result, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if req.Discount.IsPositive() && req.CouponCode == "" {
		return nil, ErrDiscountWithoutCoupon
	}

	groups, err := s.splitCart(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	cartTotal := decimal.Zero
	for _, g := range groups {
		cartTotal = cartTotal.Add(g.subtotal)
	}

	// Shipping is priced per seller group, on line count and group subtotal.
	fees := make([]decimal.Decimal, len(groups))
	for i, g := range groups {
		fees[i] = s.shipping.Fee(len(g.lines), g.subtotal)
	}

	allocs, usedOffer, err := s.allocateDiscount(ctx, req, groups, fees, cartTotal)
	if err != nil {
		return nil, err
	}

	unit := s.buildUnit(req, groups, fees, allocs, usedOffer, cartTotal)

	if err := s.store.CreateCheckout(ctx, unit); err != nil {
		var stockErr *InsufficientStockError
		if errors.As(err, &stockErr) {
			return nil, stockErr
		}
		return nil, errors.Wrap(err, "persist checkout")
	}

	return &Result{Orders: unit.Orders, Records: unit.Records}, nil
}

// splitCart resolves every cart entry against the catalog and groups lines by
// owning seller, preserving first-seen seller order. Stock is pre-checked
// here for a fast, descriptive failure; the authoritative check is the
// conditional decrement inside the store transaction.
func (s *Service) splitCart(ctx context.Context, items []ItemRequest) ([]sellerGroup, error) {
	ids := make([]string, len(items))
	for i, it := range items {
		if it.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: it.ProductID}
		}
		ids[i] = it.ProductID
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	var groups []sellerGroup
	index := make(map[string]int)

	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, &ProductNotFoundError{ProductID: it.ProductID}
		}
		if p.Stock < it.Quantity {
			return nil, &InsufficientStockError{
				ProductID: p.ID,
				Title:     p.Title,
				Available: p.Stock,
			}
		}

		i, ok := index[p.SellerID]
		if !ok {
			i = len(groups)
			index[p.SellerID] = i
			groups = append(groups, sellerGroup{sellerID: p.SellerID, subtotal: decimal.Zero})
		}

		line := order.Line{
			ProductID:         p.ID,
			Quantity:          it.Quantity,
			Price:             p.Price,
			CommissionPercent: p.CommissionPercent,
			Category:          p.Category,
		}
		groups[i].lines = append(groups[i].lines, line)
		groups[i].subtotal = groups[i].subtotal.Add(line.Subtotal())
	}

	return groups, nil
}

// allocateDiscount resolves and validates the coupon, then distributes the
// requested discount across seller groups. With no coupon every allocation is
// zero.
func (s *Service) allocateDiscount(
	ctx context.Context,
	req Request,
	groups []sellerGroup,
	fees []decimal.Decimal,
	cartTotal decimal.Decimal,
) ([]offer.Allocation, *offer.Offer, error) {
	if req.CouponCode == "" {
		return make([]offer.Allocation, len(groups)), nil, nil
	}

	o, err := s.offers.FindByCode(ctx, req.CouponCode)
	if err != nil {
		if errors.Is(err, offer.ErrNotFound) {
			return nil, nil, offer.ErrNotFound
		}
		return nil, nil, errors.Wrap(err, "lookup offer")
	}
	if err := o.Validate(s.now(), cartTotal); err != nil {
		return nil, nil, err
	}

	total := req.Discount
	if !total.IsPositive() {
		total = o.Discount(cartTotal)
	}

	views := make([]offer.GroupView, len(groups))
	for i, g := range groups {
		lines := make([]offer.LineView, len(g.lines))
		for j, l := range g.lines {
			lines[j] = offer.LineView{Category: l.Category, Amount: l.Subtotal()}
		}
		views[i] = offer.GroupView{Subtotal: g.subtotal, Shipping: fees[i], Lines: lines}
	}

	allocs, err := offer.AllocateDiscount(o, total, views)
	if err != nil {
		return nil, nil, err
	}
	return allocs, o, nil
}

// buildUnit assembles the persistence unit: one order and one analytics
// record per seller group, the stock decrements, and the offer usage entry.
func (s *Service) buildUnit(
	req Request,
	groups []sellerGroup,
	fees []decimal.Decimal,
	allocs []offer.Allocation,
	usedOffer *offer.Offer,
	cartTotal decimal.Decimal,
) *Unit {
	now := s.now()
	mode := req.PaymentMode
	if mode == "" {
		mode = order.PaymentCOD
	}
	payStatus := order.PaymentPending
	if mode == order.PaymentOnline {
		payStatus = order.PaymentPaid
	}

	unit := &Unit{}
	totalDiscount := decimal.Zero

	for i, g := range groups {
		fin := analytics.ComputeFinancials(g.lines, fees[i], allocs[i].Amount)

		o := order.Order{
			ID:             uuid.New().String(),
			BuyerID:        req.BuyerID,
			SellerID:       g.sellerID,
			Items:          g.lines,
			TotalAmount:    fin.FinalTotal,
			ShippingCharge: fees[i],
			DiscountAmount: allocs[i].Amount,
			Status:         order.StatusPlaced,
			PaymentMode:    mode,
			PaymentStatus:  payStatus,
			Address:        req.Address,
			CreatedAt:      now,
		}
		if usedOffer != nil && allocs[i].Amount.IsPositive() {
			code := usedOffer.Code
			remark := allocs[i].Remark
			o.CouponCode = &code
			o.DiscountRemark = &remark
		}
		unit.Orders = append(unit.Orders, o)

		unit.Records = append(unit.Records, analytics.Record{
			ID:                       uuid.New().String(),
			OrderID:                  o.ID,
			SellerID:                 g.sellerID,
			Financials:               fin,
			PlatformCommissionStatus: analytics.SettlementPending,
			DeliveryPartnerFeeStatus: analytics.SettlementPending,
		})

		for _, l := range g.lines {
			unit.Decrements = append(unit.Decrements, StockDecrement{
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
			})
		}
		totalDiscount = totalDiscount.Add(allocs[i].Amount)
	}

	if usedOffer != nil && totalDiscount.IsPositive() {
		unit.Usage = &OfferUsage{
			Code: usedOffer.Code,
			Usage: offer.Usage{
				BuyerID:        req.BuyerID,
				OriginalAmount: cartTotal,
				DiscountAmount: totalDiscount,
				FinalAmount:    cartTotal.Sub(totalDiscount),
				AppliedAt:      now,
			},
		}
	}

	return unit
}
