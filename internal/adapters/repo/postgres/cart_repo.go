package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/whatupfoo/h2-dev-plus/internal/domain"
)

const (
	cartGIDPrefix     = "gid://h2/Cart/"
	cartLineGIDPrefix = "gid://h2/CartLine/"
)

// CartRepo guarda carritos para el catálogo propio.
type CartRepo struct{ db *gorm.DB }

func NewCartRepo(db *gorm.DB) *CartRepo { return &CartRepo{db: db} }

func (r *CartRepo) CreateCart(ctx context.Context, lines []domain.CartLineInput) (*domain.Cart, error) {
	rec := cartRecord{ID: cartGIDPrefix + uuid.NewString(), CreatedAt: time.Now()}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		return addLines(tx, rec.ID, lines)
	})
	if err != nil {
		return nil, err
	}
	return r.GetCart(ctx, rec.ID)
}

func (r *CartRepo) AddLines(ctx context.Context, cartID string, lines []domain.CartLineInput) (*domain.Cart, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec cartRecord
		if err := tx.First(&rec, "id = ?", cartID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrapf(domain.ErrNotFound, "cart %q", cartID)
			}
			return err
		}
		if err := addLines(tx, cartID, lines); err != nil {
			return err
		}
		return tx.Model(&rec).Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetCart(ctx, cartID)
}

// addLines suma cantidades si la variante ya está en el carrito.
func addLines(tx *gorm.DB, cartID string, lines []domain.CartLineInput) error {
	for _, l := range lines {
		if _, err := findVariant(tx, l.MerchandiseID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return &domain.UserError{Field: []string{"lines", "merchandiseId"}, Message: "Merchandise " + l.MerchandiseID + " does not exist"}
			}
			return err
		}
		var existing cartLineRecord
		err := tx.Where("cart_id = ? AND merchandise_id = ?", cartID, l.MerchandiseID).First(&existing).Error
		if err == nil {
			if err := tx.Model(&existing).UpdateColumn("quantity", gorm.Expr("quantity + ?", l.Quantity)).Error; err != nil {
				return err
			}
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		line := cartLineRecord{
			ID:            cartLineGIDPrefix + uuid.NewString(),
			CartID:        cartID,
			MerchandiseID: l.MerchandiseID,
			Quantity:      l.Quantity,
			CreatedAt:     time.Now(),
		}
		if err := tx.Create(&line).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *CartRepo) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	var rec cartRecord
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		First(&rec, "id = ?", cartID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrapf(domain.ErrNotFound, "cart %q", cartID)
		}
		return nil, err
	}
	cart := &domain.Cart{ID: rec.ID, Lines: make([]domain.CartLine, 0, len(rec.Lines))}
	for _, l := range rec.Lines {
		line := domain.CartLine{ID: l.ID, MerchandiseID: l.MerchandiseID, Quantity: l.Quantity}
		if v, err := findVariant(r.db.WithContext(ctx), l.MerchandiseID); err == nil {
			line.Title = v.ProductTitle
			if v.Title != "" && v.Title != "Default Title" {
				line.Title += " - " + v.Title
			}
			line.Cost = &domain.Money{
				Amount:       v.Price.Amount.Mul(decimal.NewFromInt(int64(l.Quantity))),
				CurrencyCode: v.Price.CurrencyCode,
			}
		}
		cart.TotalQuantity += l.Quantity
		cart.Lines = append(cart.Lines, line)
	}
	return cart, nil
}
