// Package invoice renders downloadable invoices for orders. Rich document
// formatting (PDF, spreadsheets) lives behind the Renderer interface with
// external implementations; the built-in renderer emits plain text.
package invoice

import (
	"fmt"
	"io"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/shubhanshu-a32/katelog/internal/domain/order"
)

// Renderer writes an invoice document for one order.
type Renderer interface {
	Render(w io.Writer, o *order.Order) error
	ContentType() string
	Filename(o *order.Order) string
}

// TextRenderer renders a plain-text invoice.
type TextRenderer struct{}

func (TextRenderer) ContentType() string { return "text/plain; charset=utf-8" }

func (TextRenderer) Filename(o *order.Order) string {
	return fmt.Sprintf("invoice-%s.txt", o.ID)
}

func (TextRenderer) Render(w io.Writer, o *order.Order) error {
	subtotal := decimal.Zero
	for _, l := range o.Items {
		subtotal = subtotal.Add(l.Subtotal())
	}

	lines := []string{
		"KATELOG - TAX INVOICE",
		fmt.Sprintf("Order: %s", o.ID),
		fmt.Sprintf("Date:  %s", o.CreatedAt.Format("02 Jan 2006")),
		fmt.Sprintf("Deliver to: %s, %s, %s %s", o.Address.FullAddress, o.Address.City, o.Address.State, o.Address.Pincode),
		"",
	}
	for _, s := range lines {
		if _, err := fmt.Fprintln(w, s); err != nil {
			return errors.Wrap(err, "write invoice header")
		}
	}

	for _, l := range o.Items {
		_, err := fmt.Fprintf(w, "%-36s x%-3d @ %10s = %10s\n",
			l.ProductID, l.Quantity, l.Price.StringFixed(2), l.Subtotal().StringFixed(2))
		if err != nil {
			return errors.Wrap(err, "write invoice line")
		}
	}

	_, err := fmt.Fprintf(w, "\nSubtotal: %s\nShipping: %s\nDiscount: %s\nTotal:    %s\nPayment:  %s (%s)\n",
		subtotal.StringFixed(2),
		o.ShippingCharge.StringFixed(2),
		o.DiscountAmount.StringFixed(2),
		o.TotalAmount.StringFixed(2),
		o.PaymentMode, o.PaymentStatus,
	)
	if err != nil {
		return errors.Wrap(err, "write invoice totals")
	}
	return nil
}
