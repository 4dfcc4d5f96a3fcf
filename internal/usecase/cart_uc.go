package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/whatupfoo/h2-dev-plus/internal/domain"
)

type CartUC struct {
	Carts domain.Carts
}

// AddLine agrega la variante al carrito. Si no hay carrito, o el backend ya no
// lo conoce, se crea uno nuevo.
func (uc *CartUC) AddLine(ctx context.Context, cartID string, line domain.CartLineInput) (*domain.Cart, error) {
	line.MerchandiseID = strings.TrimSpace(line.MerchandiseID)
	if line.MerchandiseID == "" {
		return nil, domain.ErrInvalidLine
	}
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	lines := []domain.CartLineInput{line}

	if cartID != "" {
		cart, err := uc.Carts.AddLines(ctx, cartID, lines)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		log.Info().Str("cart", cartID).Msg("carrito inexistente, se crea uno nuevo")
	}
	return uc.Carts.CreateCart(ctx, lines)
}

// Get devuelve nil sin error si no hay carrito.
func (uc *CartUC) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	if cartID == "" {
		return nil, nil
	}
	cart, err := uc.Carts.GetCart(ctx, cartID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return cart, err
}
