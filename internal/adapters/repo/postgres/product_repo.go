package postgres

import (
	"context"
	"errors"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/whatupfoo/h2-dev-plus/internal/domain"
)

// ProductRepo es el catálogo propio sobre postgres. Implementa domain.Storefront
// resolviendo localmente la variante seleccionada.
type ProductRepo struct {
	db   *gorm.DB
	shop domain.Shop
}

func NewProductRepo(db *gorm.DB, shop domain.Shop) *ProductRepo {
	return &ProductRepo{db: db, shop: shop}
}

func byPosition(db *gorm.DB) *gorm.DB { return db.Order("position asc") }

func (r *ProductRepo) FindByHandle(ctx context.Context, handle string) (*domain.Product, error) {
	var rec productRecord
	err := r.db.WithContext(ctx).
		Preload("Options", byPosition).
		Preload("Variants", byPosition).
		Preload("Metafields", byPosition).
		First(&rec, "handle = ?", handle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrapf(domain.ErrNotFound, "product %q", handle)
		}
		return nil, pkgerrors.Wrap(err, "find product")
	}
	return rec.toDomain(), nil
}

func (r *ProductRepo) ProductByHandle(ctx context.Context, handle string, sel domain.Selection) (*domain.ProductPage, error) {
	if strings.TrimSpace(handle) == "" {
		return nil, domain.ErrInvalidHandle
	}
	p, err := r.FindByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if v, ok := domain.MatchVariant(p, sel); ok {
		matched := *v
		p.SelectedVariant = &matched
	}
	return &domain.ProductPage{Shop: r.shop, Product: p}, nil
}

func (r *ProductRepo) ProductVariants(ctx context.Context, handle string) ([]domain.Variant, error) {
	if strings.TrimSpace(handle) == "" {
		return nil, domain.ErrInvalidHandle
	}
	p, err := r.FindByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	return p.Variants, nil
}

// Save reemplaza el producto completo (opciones, variantes y metafields).
func (r *ProductRepo) Save(ctx context.Context, p *domain.Product) error {
	if p == nil || p.ID == "" || p.Handle == "" {
		return errors.New("producto sin id o handle")
	}
	rec := recordFromDomain(p)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", p.ID).Delete(&optionRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", p.ID).Delete(&variantRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", p.ID).Delete(&metafieldRecord{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(rec).Error
	})
}

func (r *ProductRepo) DeleteByHandle(ctx context.Context, handle string) error {
	var rec productRecord
	if err := r.db.WithContext(ctx).First(&rec, "handle = ?", handle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&optionRecord{}, &variantRecord{}, &metafieldRecord{}} {
			if err := tx.Where("product_id = ?", rec.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&productRecord{}, "id = ?", rec.ID).Error
	})
}

// findVariant busca una variante por id (usado por el carrito).
func findVariant(db *gorm.DB, id string) (*domain.Variant, error) {
	var v variantRecord
	if err := db.First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var p productRecord
	if err := db.Select("id", "title", "handle").First(&p, "id = ?", v.ProductID).Error; err != nil {
		return nil, err
	}
	out := v.toDomain(p.Title, p.Handle)
	return &out, nil
}
