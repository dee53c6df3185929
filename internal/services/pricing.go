package services

import (
	"fmt"

	"cookie-corner/internal/models"
)

// PriceQuote is an authoritative unit price with its display label
type PriceQuote struct {
	UnitPrice int // cents
	Label     string
}

// ResolvePrice resolves the authoritative unit price for a product and a
// size selector. Selectors arrive in several historical shapes, so the
// resolution order is fixed: the flexible size_options list by index, then
// the legacy fixed columns by named key or legacy numeric code, then the
// first available fixed price when no selector was supplied at all. Old
// client-cached carts and stored orders rely on every branch.
//
// A missing, zero or negative price is never substituted; it fails with
// models.ErrInvalidPrice and the caller rejects the whole request.
func ResolvePrice(product *models.Product, selector models.SizeSelector) (*PriceQuote, error) {
	if product == nil {
		return nil, models.ErrProductNotFound
	}

	// (a) zero-based index into the flexible options list. Products that
	// predate the list fall through to the fixed columns, where the index
	// means the old three-tier scheme (0=small, 1=medium, 2=large).
	if selector.Index != nil {
		idx := *selector.Index
		if idx >= 0 && idx < len(product.SizeOptions) {
			option := product.SizeOptions[idx]
			if option.Price <= 0 {
				return nil, fmt.Errorf("non-positive price for product %s size %q: %w", product.ID, option.Label, models.ErrInvalidPrice)
			}
			return &PriceQuote{UnitPrice: option.Price, Label: option.Label}, nil
		}

		key, ok := legacyIndexKey(idx)
		if !ok {
			return nil, fmt.Errorf("size index %d out of range for product %s: %w", idx, product.ID, models.ErrInvalidPrice)
		}
		price := product.FixedPrice(key)
		if price == nil || *price <= 0 {
			return nil, fmt.Errorf("no valid price for product %s size %q: %w", product.ID, key, models.ErrInvalidPrice)
		}
		return &PriceQuote{UnitPrice: *price, Label: string(key)}, nil
	}

	// (b) legacy fixed columns by named key or legacy numeric code
	if selector.Key != "" {
		key := selector.LegacyKey()
		price := product.FixedPrice(key)
		if price == nil || *price <= 0 {
			return nil, fmt.Errorf("no valid price for product %s size %q: %w", product.ID, selector.Key, models.ErrInvalidPrice)
		}
		return &PriceQuote{UnitPrice: *price, Label: string(key)}, nil
	}

	// (c) no selector: first available fixed price, then the first flexible
	// option for products that only carry the newer schema
	// Legacy null-size carts carry no size label on the order line.
	if price, _ := product.FirstFixedPrice(); price != nil {
		if *price <= 0 {
			return nil, fmt.Errorf("non-positive price for product %s: %w", product.ID, models.ErrInvalidPrice)
		}
		return &PriceQuote{UnitPrice: *price}, nil
	}
	if len(product.SizeOptions) > 0 {
		option := product.SizeOptions[0]
		if option.Price <= 0 {
			return nil, fmt.Errorf("non-positive price for product %s size %q: %w", product.ID, option.Label, models.ErrInvalidPrice)
		}
		return &PriceQuote{UnitPrice: option.Price, Label: option.Label}, nil
	}

	return nil, fmt.Errorf("product %s has no price: %w", product.ID, models.ErrInvalidPrice)
}

// legacyIndexKey maps a three-tier index onto the fixed size columns
func legacyIndexKey(idx int) (models.SizeKey, bool) {
	switch idx {
	case 0:
		return models.SizeSmall, true
	case 1:
		return models.SizeMedium, true
	case 2:
		return models.SizeLarge, true
	default:
		return "", false
	}
}
