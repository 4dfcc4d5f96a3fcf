package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/whatupfoo/h2-dev-plus/internal/domain"
)

// fakeStorefront resuelve el match localmente, como haría el backend.
type fakeStorefront struct {
	shop     domain.Shop
	products map[string]domain.Product
	calls    []domain.Selection
	err      error
}

func (f *fakeStorefront) ProductByHandle(_ context.Context, handle string, sel domain.Selection) (*domain.ProductPage, error) {
	f.calls = append(f.calls, sel)
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[handle]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if v, ok := domain.MatchVariant(&p, sel); ok {
		m := *v
		p.SelectedVariant = &m
	}
	return &domain.ProductPage{Shop: f.shop, Product: &p}, nil
}

func (f *fakeStorefront) ProductVariants(_ context.Context, handle string) ([]domain.Variant, error) {
	p, ok := f.products[handle]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Variants, nil
}

func usd(s string) domain.Money {
	return domain.Money{Amount: decimal.RequireFromString(s), CurrencyCode: "USD"}
}

func oakChair() domain.Product {
	return domain.Product{
		ID:              "gid://shopify/Product/1",
		Handle:          "oak-chair",
		Title:           "Oak Chair",
		Vendor:          "Nordic Works",
		Description:     "A solid oak chair.",
		DescriptionHTML: `<p>A solid <strong>oak</strong> chair.</p><script>alert(1)</script>`,
		FeaturedImage:   &domain.Image{URL: "https://cdn.example/oak.jpg", AltText: "Oak chair"},
		Options: []domain.Option{
			{Name: "Color", Values: []string{"Natural", "Walnut"}},
			{Name: "Size", Values: []string{"Small", "Large"}},
		},
		Variants: []domain.Variant{
			{ID: "gid://shopify/ProductVariant/1", Title: "Natural / Small", AvailableForSale: true, Price: usd("120"),
				SelectedOptions: []domain.SelectedOption{{Name: "Color", Value: "Natural"}, {Name: "Size", Value: "Small"}}},
			{ID: "gid://shopify/ProductVariant/3", Title: "Walnut / Small", AvailableForSale: false, Price: usd("130"),
				SelectedOptions: []domain.SelectedOption{{Name: "Color", Value: "Walnut"}, {Name: "Size", Value: "Small"}}},
			{ID: "gid://shopify/ProductVariant/4", Title: "Walnut / Large", AvailableForSale: true, Price: usd("150"),
				Image:           &domain.Image{URL: "https://cdn.example/walnut.jpg"},
				SelectedOptions: []domain.SelectedOption{{Name: "Color", Value: "Walnut"}, {Name: "Size", Value: "Large"}}},
		},
		Metafields: []domain.Metafield{
			{Key: domain.MetafieldAdditionalFeature, Value: "Stackable up to 4"},
			{Key: domain.MetafieldManufacturerInfo, Reference: &domain.Metaobject{Fields: []domain.MetaobjectField{
				{Key: "name", Value: "Nordic Works"},
			}}},
		},
	}
}

type fakeCarts struct {
	carts   map[string]*domain.Cart
	created int
	err     error
}

func newFakeCarts() *fakeCarts { return &fakeCarts{carts: map[string]*domain.Cart{}} }

func (f *fakeCarts) CreateCart(_ context.Context, lines []domain.CartLineInput) (*domain.Cart, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created++
	c := &domain.Cart{ID: "gid://test/Cart/new"}
	f.carts[c.ID] = c
	f.apply(c, lines)
	return c, nil
}

func (f *fakeCarts) AddLines(_ context.Context, cartID string, lines []domain.CartLineInput) (*domain.Cart, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.carts[cartID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	f.apply(c, lines)
	return c, nil
}

func (f *fakeCarts) GetCart(_ context.Context, cartID string) (*domain.Cart, error) {
	c, ok := f.carts[cartID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeCarts) apply(c *domain.Cart, lines []domain.CartLineInput) {
	for _, l := range lines {
		c.Lines = append(c.Lines, domain.CartLine{MerchandiseID: l.MerchandiseID, Quantity: l.Quantity})
		c.TotalQuantity += l.Quantity
	}
}
