package storefront

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/whatupfoo/h2-dev-plus/internal/domain"
)

type cartNode struct {
	ID            string `json:"id"`
	CheckoutURL   string `json:"checkoutUrl"`
	TotalQuantity int    `json:"totalQuantity"`
	Lines         struct {
		Nodes []struct {
			ID          string `json:"id"`
			Quantity    int    `json:"quantity"`
			Merchandise struct {
				ID      string `json:"id"`
				Title   string `json:"title"`
				Product struct {
					Title string `json:"title"`
				} `json:"product"`
			} `json:"merchandise"`
			Cost struct {
				TotalAmount *domain.Money `json:"totalAmount"`
			} `json:"cost"`
		} `json:"nodes"`
	} `json:"lines"`
}

type userErrorNode struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

type cartPayload struct {
	Cart       *cartNode       `json:"cart"`
	UserErrors []userErrorNode `json:"userErrors"`
}

func (c *Client) CreateCart(ctx context.Context, lines []domain.CartLineInput) (*domain.Cart, error) {
	var resp struct {
		CartCreate cartPayload `json:"cartCreate"`
	}
	vars := map[string]any{"input": map[string]any{"lines": lines}}
	if err := c.run(ctx, "cartCreate", CartCreateMutation, vars, &resp); err != nil {
		return nil, err
	}
	return resp.CartCreate.result("cartCreate")
}

func (c *Client) AddLines(ctx context.Context, cartID string, lines []domain.CartLineInput) (*domain.Cart, error) {
	var resp struct {
		CartLinesAdd cartPayload `json:"cartLinesAdd"`
	}
	vars := map[string]any{"cartId": cartID, "lines": lines}
	if err := c.run(ctx, "cartLinesAdd", CartLinesAddMutation, vars, &resp); err != nil {
		return nil, err
	}
	return resp.CartLinesAdd.result("cartLinesAdd")
}

func (c *Client) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	var resp struct {
		Cart *cartNode `json:"cart"`
	}
	if err := c.run(ctx, "cart", CartQuery, map[string]any{"cartId": cartID}, &resp); err != nil {
		return nil, err
	}
	if resp.Cart == nil {
		return nil, errors.Wrapf(domain.ErrNotFound, "cart %q", cartID)
	}
	return resp.Cart.toDomain(), nil
}

func (p cartPayload) result(op string) (*domain.Cart, error) {
	if len(p.UserErrors) > 0 {
		ue := p.UserErrors[0]
		// sólo "cart ... does not exist" indica un carrito vencido
		msg := strings.ToLower(ue.Message)
		if strings.Contains(msg, "cart") && strings.Contains(msg, "does not exist") {
			return nil, errors.Wrap(domain.ErrNotFound, ue.Message)
		}
		return nil, errors.Wrap(&domain.UserError{Field: ue.Field, Message: ue.Message}, op)
	}
	if p.Cart == nil {
		return nil, errors.Wrapf(domain.ErrNotFound, "%s: cart", op)
	}
	return p.Cart.toDomain(), nil
}

func (n *cartNode) toDomain() *domain.Cart {
	cart := &domain.Cart{
		ID:            n.ID,
		CheckoutURL:   n.CheckoutURL,
		TotalQuantity: n.TotalQuantity,
		Lines:         make([]domain.CartLine, 0, len(n.Lines.Nodes)),
	}
	for _, l := range n.Lines.Nodes {
		title := l.Merchandise.Product.Title
		if l.Merchandise.Title != "" && l.Merchandise.Title != "Default Title" {
			title += " - " + l.Merchandise.Title
		}
		cart.Lines = append(cart.Lines, domain.CartLine{
			ID:            l.ID,
			MerchandiseID: l.Merchandise.ID,
			Title:         title,
			Quantity:      l.Quantity,
			Cost:          l.Cost.TotalAmount,
		})
	}
	return cart
}
