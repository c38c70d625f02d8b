package domain

import "strings"

// CartLine is one priced item in a buyer's cart, tagged with the identity and
// origin of the farmer selling it. The cart itself lives client-side; the
// server only ever sees it as input to quoting and aggregation.
type CartLine struct {
	ProductRef     string         `json:"product_ref"`
	Name           string         `json:"name"`
	UnitPriceCents int64          `json:"unit_price_cents"`
	Quantity       int32          `json:"quantity"`
	Grade          string         `json:"grade"`
	ImageURL       string         `json:"image_url"`
	Seller         SellerIdentity `json:"seller"`
}

// Cart is the flat sequence of lines submitted at checkout.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// Validate rejects carts that cannot be quoted or aggregated. Malformed input
// fails here, before any external call is made.
func (c Cart) Validate() error {
	if len(c.Lines) == 0 {
		return ErrEmptyCart
	}
	for _, l := range c.Lines {
		if strings.TrimSpace(l.Seller.Email) == "" {
			return NewValidationError("cart.validate", "seller.email", "every cart line must carry a seller email")
		}
		if strings.TrimSpace(l.Seller.City) == "" {
			return NewValidationError("cart.validate", "seller.city", "every cart line must carry a seller origin city")
		}
		if l.Quantity <= 0 {
			return Invalid("cart.validate", "cart line quantity must be positive")
		}
		if l.UnitPriceCents < 0 {
			return Invalid("cart.validate", "cart line price must not be negative")
		}
	}
	return nil
}

// SubtotalCents sums unit price times quantity over all lines.
func (c Cart) SubtotalCents() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.UnitPriceCents * int64(l.Quantity)
	}
	return total
}
