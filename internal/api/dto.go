package api

import (
	"time"

	"github.com/shubhanshu-a32/katelog/internal/domain/analytics"
	"github.com/shubhanshu-a32/katelog/internal/domain/order"
)

// orderLineDTO mirrors one order line in responses.
type orderLineDTO struct {
	ProductID         string  `json:"productId"`
	Quantity          int     `json:"quantity"`
	Price             float64 `json:"price"`
	CommissionPercent float64 `json:"commissionPercent"`
	Category          string  `json:"category"`
}

type addressDTO struct {
	FullAddress string   `json:"fullAddress"`
	Mobile      string   `json:"mobile"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	Pincode     string   `json:"pincode"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
}

type orderDTO struct {
	ID                string         `json:"id"`
	BuyerID           string         `json:"buyerId"`
	SellerID          string         `json:"sellerId"`
	DeliveryPartnerID *string        `json:"deliveryPartnerId"`
	Items             []orderLineDTO `json:"items"`
	TotalAmount       float64        `json:"totalAmount"`
	ShippingCharge    float64        `json:"shippingCharge"`
	DiscountAmount    float64        `json:"discountAmount"`
	CouponCode        *string        `json:"couponCode,omitempty"`
	DiscountRemark    *string        `json:"discountRemark,omitempty"`
	Status            string         `json:"status"`
	PaymentMode       string         `json:"paymentMode"`
	PaymentStatus     string         `json:"paymentStatus"`
	Address           addressDTO     `json:"address"`
	CreatedAt         time.Time      `json:"createdAt"`
}

func domainToOrderDTO(o *order.Order) orderDTO {
	items := make([]orderLineDTO, len(o.Items))
	for i, l := range o.Items {
		items[i] = orderLineDTO{
			ProductID:         l.ProductID,
			Quantity:          l.Quantity,
			Price:             l.Price.InexactFloat64(),
			CommissionPercent: l.CommissionPercent.InexactFloat64(),
			Category:          l.Category,
		}
	}
	return orderDTO{
		ID:                o.ID,
		BuyerID:           o.BuyerID,
		SellerID:          o.SellerID,
		DeliveryPartnerID: o.DeliveryPartnerID,
		Items:             items,
		TotalAmount:       o.TotalAmount.InexactFloat64(),
		ShippingCharge:    o.ShippingCharge.InexactFloat64(),
		DiscountAmount:    o.DiscountAmount.InexactFloat64(),
		CouponCode:        o.CouponCode,
		DiscountRemark:    o.DiscountRemark,
		Status:            string(o.Status),
		PaymentMode:       string(o.PaymentMode),
		PaymentStatus:     string(o.PaymentStatus),
		Address: addressDTO{
			FullAddress: o.Address.FullAddress,
			Mobile:      o.Address.Mobile,
			City:        o.Address.City,
			State:       o.Address.State,
			Pincode:     o.Address.Pincode,
			Lat:         o.Address.Lat,
			Lng:         o.Address.Lng,
		},
		CreatedAt: o.CreatedAt,
	}
}

type analyticsDTO struct {
	ID                        string  `json:"id"`
	OrderID                   string  `json:"orderId"`
	SellerID                  string  `json:"sellerId"`
	PlatformCommission        float64 `json:"platformCommission"`
	TotalCommissionPercentage float64 `json:"totalCommissionPercentage"`
	DeliveryPartnerFee        float64 `json:"deliveryPartnerFee"`
	FinalTotal                float64 `json:"finalTotal"`
	SellerEarning             float64 `json:"sellerEarning"`
	PlatformCommissionStatus  string  `json:"platformCommissionStatus"`
	DeliveryPartnerFeeStatus  string  `json:"deliveryPartnerFeeStatus"`
}

func domainToAnalyticsDTO(rec *analytics.Record) analyticsDTO {
	return analyticsDTO{
		ID:                        rec.ID,
		OrderID:                   rec.OrderID,
		SellerID:                  rec.SellerID,
		PlatformCommission:        rec.PlatformCommission.InexactFloat64(),
		TotalCommissionPercentage: rec.TotalCommissionPercentage.InexactFloat64(),
		DeliveryPartnerFee:        rec.DeliveryPartnerFee.InexactFloat64(),
		FinalTotal:                rec.FinalTotal.InexactFloat64(),
		SellerEarning:             rec.SellerEarning.InexactFloat64(),
		PlatformCommissionStatus:  string(rec.PlatformCommissionStatus),
		DeliveryPartnerFeeStatus:  string(rec.DeliveryPartnerFeeStatus),
	}
}
