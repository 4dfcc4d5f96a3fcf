package domain

import "context"

// Storefront es el backend de catálogo.
type Storefront interface {
	// ProductByHandle devuelve ErrNotFound si el handle no resuelve a un producto.
	ProductByHandle(ctx context.Context, handle string, sel Selection) (*ProductPage, error)
	ProductVariants(ctx context.Context, handle string) ([]Variant, error)
}

type Carts interface {
	// CreateCart crea un carrito nuevo con las líneas dadas.
	CreateCart(ctx context.Context, lines []CartLineInput) (*Cart, error)
	// AddLines devuelve ErrNotFound si el carrito no existe.
	AddLines(ctx context.Context, cartID string, lines []CartLineInput) (*Cart, error)
	GetCart(ctx context.Context, cartID string) (*Cart, error)
}
