package storefront

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/whatupfoo/h2-dev-plus/internal/domain"
)

const (
	variantsPageSize = 250
	maxVariantPages  = 20
)

type productResponse struct {
	Shop struct {
		PrimaryDomain struct {
			URL string `json:"url"`
		} `json:"primaryDomain"`
	} `json:"shop"`
	Product *productNode `json:"product"`
}

type productNode struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Handle          string           `json:"handle"`
	Vendor          string           `json:"vendor"`
	Description     string           `json:"description"`
	DescriptionHTML string           `json:"descriptionHtml"`
	Metafields      []*metafieldNode `json:"metafields"` // los identifiers inexistentes vienen como null
	FeaturedImage   *domain.Image    `json:"featuredImage"`
	Options         []struct {
		Name         string `json:"name"`
		OptionValues []struct {
			Name string `json:"name"`
		} `json:"optionValues"`
	} `json:"options"`
	SelectedVariant *variantNode `json:"selectedVariant"`
	Variants        struct {
		Nodes []variantNode `json:"nodes"`
	} `json:"variants"`
}

type metafieldNode struct {
	Namespace string             `json:"namespace"`
	Key       string             `json:"key"`
	Value     string             `json:"value"`
	Type      string             `json:"type"`
	Reference *domain.Metaobject `json:"reference"`
}

type variantNode struct {
	ID               string                  `json:"id"`
	Title            string                  `json:"title"`
	AvailableForSale bool                    `json:"availableForSale"`
	SKU              string                  `json:"sku"`
	SelectedOptions  []domain.SelectedOption `json:"selectedOptions"`
	Image            *domain.Image           `json:"image"`
	Price            domain.Money            `json:"price"`
	CompareAtPrice   *domain.Money           `json:"compareAtPrice"`
	UnitPrice        *domain.Money           `json:"unitPrice"`
	Product          struct {
		Title  string `json:"title"`
		Handle string `json:"handle"`
	} `json:"product"`
}

type productVariantsResponse struct {
	Product *struct {
		ID       string `json:"id"`
		Variants struct {
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
			Nodes []variantNode `json:"nodes"`
		} `json:"variants"`
	} `json:"product"`
}

// ProductByHandle trae el producto y la variante que coincide con sel.
func (c *Client) ProductByHandle(ctx context.Context, handle string, sel domain.Selection) (*domain.ProductPage, error) {
	if strings.TrimSpace(handle) == "" {
		return nil, domain.ErrInvalidHandle
	}
	selected := []domain.SelectedOption(sel)
	if selected == nil {
		selected = []domain.SelectedOption{}
	}

	var resp productResponse
	vars := map[string]any{"handle": handle, "selectedOptions": selected}
	if err := c.run(ctx, "product", ProductQuery, vars, &resp); err != nil {
		return nil, err
	}
	if resp.Product == nil || resp.Product.ID == "" {
		return nil, errors.Wrapf(domain.ErrNotFound, "product %q", handle)
	}
	return &domain.ProductPage{
		Shop:    domain.Shop{PrimaryDomainURL: resp.Shop.PrimaryDomain.URL},
		Product: resp.Product.toDomain(),
	}, nil
}

// ProductVariants pagina todas las variantes del producto.
func (c *Client) ProductVariants(ctx context.Context, handle string) ([]domain.Variant, error) {
	if strings.TrimSpace(handle) == "" {
		return nil, domain.ErrInvalidHandle
	}
	out := []domain.Variant{}
	var after any
	for page := 0; page < maxVariantPages; page++ {
		var resp productVariantsResponse
		vars := map[string]any{"handle": handle, "first": variantsPageSize, "after": after}
		if err := c.run(ctx, "productVariants", ProductVariantsQuery, vars, &resp); err != nil {
			return nil, err
		}
		if resp.Product == nil || resp.Product.ID == "" {
			return nil, errors.Wrapf(domain.ErrNotFound, "product %q", handle)
		}
		for _, n := range resp.Product.Variants.Nodes {
			out = append(out, n.toDomain())
		}
		pi := resp.Product.Variants.PageInfo
		if !pi.HasNextPage || pi.EndCursor == "" {
			break
		}
		after = pi.EndCursor
	}
	return out, nil
}

func (n *productNode) toDomain() *domain.Product {
	p := &domain.Product{
		ID:              n.ID,
		Handle:          n.Handle,
		Title:           n.Title,
		Vendor:          n.Vendor,
		Description:     n.Description,
		DescriptionHTML: n.DescriptionHTML,
		FeaturedImage:   imageOrNil(n.FeaturedImage),
		Options:         make([]domain.Option, 0, len(n.Options)),
		Variants:        make([]domain.Variant, 0, len(n.Variants.Nodes)),
		Metafields:      make([]domain.Metafield, 0, len(n.Metafields)),
	}
	for _, o := range n.Options {
		opt := domain.Option{Name: o.Name, Values: make([]string, 0, len(o.OptionValues))}
		for _, v := range o.OptionValues {
			opt.Values = append(opt.Values, v.Name)
		}
		p.Options = append(p.Options, opt)
	}
	for _, mf := range n.Metafields {
		if mf == nil {
			continue
		}
		ref := mf.Reference
		// una referencia que no es Metaobject llega como objeto vacío
		if ref != nil && ref.ID == "" && len(ref.Fields) == 0 {
			ref = nil
		}
		p.Metafields = append(p.Metafields, domain.Metafield{
			Namespace: mf.Namespace,
			Key:       mf.Key,
			Value:     mf.Value,
			Type:      mf.Type,
			Reference: ref,
		})
	}
	if n.SelectedVariant != nil && n.SelectedVariant.ID != "" {
		v := n.SelectedVariant.toDomain()
		p.SelectedVariant = &v
	}
	for _, v := range n.Variants.Nodes {
		p.Variants = append(p.Variants, v.toDomain())
	}
	return p
}

func (n variantNode) toDomain() domain.Variant {
	return domain.Variant{
		ID:               n.ID,
		Title:            n.Title,
		AvailableForSale: n.AvailableForSale,
		Price:            n.Price,
		CompareAtPrice:   n.CompareAtPrice,
		SKU:              n.SKU,
		Image:            imageOrNil(n.Image),
		SelectedOptions:  n.SelectedOptions,
		UnitPrice:        n.UnitPrice,
		ProductTitle:     n.Product.Title,
		ProductHandle:    n.Product.Handle,
	}
}

func imageOrNil(img *domain.Image) *domain.Image {
	if img == nil || img.URL == "" {
		return nil
	}
	return img
}
