package domain

import "fmt"

type Cart struct {
	ID            string     `json:"id"`
	CheckoutURL   string     `json:"checkoutUrl"`
	TotalQuantity int        `json:"totalQuantity"`
	Lines         []CartLine `json:"lines"`
}

type CartLine struct {
	ID            string `json:"id"`
	MerchandiseID string `json:"merchandiseId"`
	Title         string `json:"title,omitempty"`
	Quantity      int    `json:"quantity"`
	Cost          *Money `json:"cost,omitempty"`
}

type CartLineInput struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

// UserError es un error de negocio devuelto por una mutación del carrito.
type UserError struct {
	Field   []string
	Message string
}

func (e *UserError) Error() string {
	if len(e.Field) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%v: %s", e.Field, e.Message)
}
