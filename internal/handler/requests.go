package handler

import (
	"github.com/sahanr/harvestlink/internal/domain"
)

// sellerRequest is the denormalized seller identity carried on each cart line.
type sellerRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address"`
	City    string `json:"city" validate:"required"`
}

// cartLineRequest is one cart line as submitted by the client.
type cartLineRequest struct {
	ProductRef     string        `json:"product_ref"`
	Name           string        `json:"name" validate:"required"`
	UnitPriceCents int64         `json:"unit_price_cents" validate:"min=0"`
	Quantity       int32         `json:"quantity" validate:"required,min=1"`
	Grade          string        `json:"grade"`
	ImageURL       string        `json:"image_url"`
	Seller         sellerRequest `json:"seller" validate:"required"`
}

// buyerRequest is the purchasing business on an order submission.
type buyerRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address"`
	City    string `json:"city"`
}

func toDomainCart(lines []cartLineRequest) domain.Cart {
	cart := domain.Cart{Lines: make([]domain.CartLine, len(lines))}
	for i, l := range lines {
		cart.Lines[i] = domain.CartLine{
			ProductRef:     l.ProductRef,
			Name:           l.Name,
			UnitPriceCents: l.UnitPriceCents,
			Quantity:       l.Quantity,
			Grade:          l.Grade,
			ImageURL:       l.ImageURL,
			Seller: domain.SellerIdentity{
				Name:    l.Seller.Name,
				Email:   l.Seller.Email,
				Address: l.Seller.Address,
				City:    l.Seller.City,
			},
		}
	}
	return cart
}

func toDomainBuyer(b buyerRequest) domain.Buyer {
	return domain.Buyer{
		Name:    b.Name,
		Email:   b.Email,
		Address: b.Address,
		City:    b.City,
	}
}
