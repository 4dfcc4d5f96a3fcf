package postgres

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/whatupfoo/h2-dev-plus/internal/domain"
)

type productRecord struct {
	ID              string `gorm:"primaryKey;size:140"`
	Handle          string `gorm:"uniqueIndex;size:140;not null"`
	Title           string `gorm:"size:255"`
	Vendor          string `gorm:"size:140"`
	Description     string `gorm:"type:text"`
	DescriptionHTML string `gorm:"type:text"`
	ImageURL        string `gorm:"size:255"`
	ImageAlt        string `gorm:"size:255"`
	ImageWidth      int
	ImageHeight     int
	Options         []optionRecord    `gorm:"foreignKey:ProductID"`
	Variants        []variantRecord   `gorm:"foreignKey:ProductID"`
	Metafields      []metafieldRecord `gorm:"foreignKey:ProductID"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (productRecord) TableName() string { return "products" }

type optionRecord struct {
	ID        uint     `gorm:"primaryKey"`
	ProductID string   `gorm:"size:140;index"`
	Position  int      `gorm:"not null"`
	Name      string   `gorm:"size:140"`
	Values    []string `gorm:"type:jsonb;serializer:json"`
}

func (optionRecord) TableName() string { return "product_options" }

type variantRecord struct {
	ID               string                  `gorm:"primaryKey;size:140"`
	ProductID        string                  `gorm:"size:140;index"`
	Position         int                     `gorm:"not null"`
	Title            string                  `gorm:"size:255"`
	SKU              string                  `gorm:"size:120;index"`
	AvailableForSale bool                    `gorm:"not null"`
	Price            decimal.Decimal         `gorm:"type:decimal(12,2)"`
	CompareAtPrice   decimal.NullDecimal     `gorm:"type:decimal(12,2)"`
	UnitPrice        decimal.NullDecimal     `gorm:"type:decimal(12,2)"`
	CurrencyCode     string                  `gorm:"size:3"`
	ImageURL         string                  `gorm:"size:255"`
	ImageAlt         string                  `gorm:"size:255"`
	SelectedOptions  []domain.SelectedOption `gorm:"type:jsonb;serializer:json"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (variantRecord) TableName() string { return "variants" }

type metafieldRecord struct {
	ID        uint               `gorm:"primaryKey"`
	ProductID string             `gorm:"size:140;index"`
	Position  int                `gorm:"not null"`
	Namespace string             `gorm:"size:80"`
	Key       string             `gorm:"size:80;index"`
	Value     string             `gorm:"type:text"`
	Type      string             `gorm:"size:80"`
	Reference *domain.Metaobject `gorm:"type:jsonb;serializer:json"`
}

func (metafieldRecord) TableName() string { return "metafields" }

type cartRecord struct {
	ID        string           `gorm:"primaryKey;size:140"`
	Lines     []cartLineRecord `gorm:"foreignKey:CartID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (cartRecord) TableName() string { return "carts" }

type cartLineRecord struct {
	ID            string `gorm:"primaryKey;size:140"`
	CartID        string `gorm:"size:140;index"`
	MerchandiseID string `gorm:"size:140;index"`
	Quantity      int    `gorm:"not null"`
	CreatedAt     time.Time
}

func (cartLineRecord) TableName() string { return "cart_lines" }

// Migrate crea/actualiza las tablas del catálogo y carritos.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&productRecord{}, &optionRecord{}, &variantRecord{}, &metafieldRecord{},
		&cartRecord{}, &cartLineRecord{},
	)
}

func (r *productRecord) toDomain() *domain.Product {
	p := &domain.Product{
		ID:              r.ID,
		Handle:          r.Handle,
		Title:           r.Title,
		Vendor:          r.Vendor,
		Description:     r.Description,
		DescriptionHTML: r.DescriptionHTML,
		Options:         make([]domain.Option, 0, len(r.Options)),
		Variants:        make([]domain.Variant, 0, len(r.Variants)),
		Metafields:      make([]domain.Metafield, 0, len(r.Metafields)),
	}
	if r.ImageURL != "" {
		p.FeaturedImage = &domain.Image{URL: r.ImageURL, AltText: r.ImageAlt, Width: r.ImageWidth, Height: r.ImageHeight}
	}
	for _, o := range r.Options {
		p.Options = append(p.Options, domain.Option{Name: o.Name, Values: o.Values})
	}
	for _, v := range r.Variants {
		p.Variants = append(p.Variants, v.toDomain(r.Title, r.Handle))
	}
	for _, m := range r.Metafields {
		p.Metafields = append(p.Metafields, domain.Metafield{
			Namespace: m.Namespace, Key: m.Key, Value: m.Value, Type: m.Type, Reference: m.Reference,
		})
	}
	return p
}

func (v *variantRecord) toDomain(productTitle, productHandle string) domain.Variant {
	out := domain.Variant{
		ID:               v.ID,
		Title:            v.Title,
		AvailableForSale: v.AvailableForSale,
		Price:            domain.Money{Amount: v.Price, CurrencyCode: v.CurrencyCode},
		SKU:              v.SKU,
		SelectedOptions:  v.SelectedOptions,
		ProductTitle:     productTitle,
		ProductHandle:    productHandle,
	}
	if v.CompareAtPrice.Valid {
		out.CompareAtPrice = &domain.Money{Amount: v.CompareAtPrice.Decimal, CurrencyCode: v.CurrencyCode}
	}
	if v.UnitPrice.Valid {
		out.UnitPrice = &domain.Money{Amount: v.UnitPrice.Decimal, CurrencyCode: v.CurrencyCode}
	}
	if v.ImageURL != "" {
		out.Image = &domain.Image{URL: v.ImageURL, AltText: v.ImageAlt}
	}
	return out
}

func recordFromDomain(p *domain.Product) *productRecord {
	r := &productRecord{
		ID:              p.ID,
		Handle:          p.Handle,
		Title:           p.Title,
		Vendor:          p.Vendor,
		Description:     p.Description,
		DescriptionHTML: p.DescriptionHTML,
	}
	if p.FeaturedImage != nil {
		r.ImageURL = p.FeaturedImage.URL
		r.ImageAlt = p.FeaturedImage.AltText
		r.ImageWidth = p.FeaturedImage.Width
		r.ImageHeight = p.FeaturedImage.Height
	}
	for i, o := range p.Options {
		r.Options = append(r.Options, optionRecord{ProductID: p.ID, Position: i, Name: o.Name, Values: o.Values})
	}
	for i, v := range p.Variants {
		vr := variantRecord{
			ID:               v.ID,
			ProductID:        p.ID,
			Position:         i,
			Title:            v.Title,
			SKU:              v.SKU,
			AvailableForSale: v.AvailableForSale,
			Price:            v.Price.Amount,
			CurrencyCode:     v.Price.CurrencyCode,
			SelectedOptions:  v.SelectedOptions,
		}
		if v.CompareAtPrice != nil {
			vr.CompareAtPrice = decimal.NewNullDecimal(v.CompareAtPrice.Amount)
		}
		if v.UnitPrice != nil {
			vr.UnitPrice = decimal.NewNullDecimal(v.UnitPrice.Amount)
		}
		if v.Image != nil {
			vr.ImageURL = v.Image.URL
			vr.ImageAlt = v.Image.AltText
		}
		r.Variants = append(r.Variants, vr)
	}
	for i, m := range p.Metafields {
		r.Metafields = append(r.Metafields, metafieldRecord{
			ProductID: p.ID, Position: i, Namespace: m.Namespace, Key: m.Key, Value: m.Value, Type: m.Type, Reference: m.Reference,
		})
	}
	return r
}
