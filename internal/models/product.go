package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// SizeKey is a named size on the legacy fixed price columns
type SizeKey string

const (
	SizeSmall  SizeKey = "small"
	SizeMedium SizeKey = "medium"
	SizeLarge  SizeKey = "large"
)

// Product represents a catalog item. The price schema evolved over time:
// older rows only carry the fixed small/medium/large columns, newer rows
// carry a flexible size_options list. Both shapes must keep resolving.
type Product struct {
	ID          string       `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	Description string       `json:"description" db:"description"`
	PriceSmall  *int         `json:"price_small" db:"price_small"`   // cents
	PriceMedium *int         `json:"price_medium" db:"price_medium"` // cents
	PriceLarge  *int         `json:"price_large" db:"price_large"`   // cents
	SizeOptions []SizeOption `json:"size_options" db:"size_options"`
	ImageURL    string       `json:"image_url" db:"image_url"`
	Active      bool         `json:"active" db:"active"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// SizeOption is one entry in a product's flexible price list
type SizeOption struct {
	Label string `json:"label"`
	Price int    `json:"price"` // cents
}

// FixedPrice returns the legacy fixed-column price for a named size, or nil
func (p *Product) FixedPrice(key SizeKey) *int {
	switch key {
	case SizeSmall:
		return p.PriceSmall
	case SizeMedium:
		return p.PriceMedium
	case SizeLarge:
		return p.PriceLarge
	default:
		return nil
	}
}

// FirstFixedPrice returns the first non-nil fixed-column price with its
// label, for legacy carts that carry no size selector at all.
func (p *Product) FirstFixedPrice() (*int, string) {
	if p.PriceSmall != nil {
		return p.PriceSmall, string(SizeSmall)
	}
	if p.PriceMedium != nil {
		return p.PriceMedium, string(SizeMedium)
	}
	if p.PriceLarge != nil {
		return p.PriceLarge, string(SizeLarge)
	}
	return nil, ""
}

// SizeSelector is the client's chosen size in one of the historically valid
// encodings: a zero-based index into the flexible size_options list, a named
// key (small/medium/large), or a legacy numeric code ("6"/"8"/"10") that
// maps onto the same three-tier scheme. Absent means "no selector".
type SizeSelector struct {
	Index *int
	Key   string
}

// None reports whether no selector was supplied
func (s SizeSelector) None() bool {
	return s.Index == nil && s.Key == ""
}

// LegacyKey translates the legacy numeric codes onto the named sizes.
// Returns the selector key unchanged when it is not a legacy code.
func (s SizeSelector) LegacyKey() SizeKey {
	switch s.Key {
	case "6":
		return SizeSmall
	case "8":
		return SizeMedium
	case "10":
		return SizeLarge
	default:
		return SizeKey(s.Key)
	}
}

// UnmarshalJSON accepts a JSON number (index), a JSON string (named key or
// legacy numeric code), or null (no selector).
func (s *SizeSelector) UnmarshalJSON(data []byte) error {
	*s = SizeSelector{}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		return nil
	case float64:
		idx := int(v)
		if float64(idx) != v || idx < 0 {
			return fmt.Errorf("size selector index must be a non-negative integer")
		}
		s.Index = &idx
		return nil
	case string:
		s.Key = v
		return nil
	default:
		return fmt.Errorf("size selector must be a number, string or null")
	}
}

// MarshalJSON renders the selector back in the shape it arrived in
func (s SizeSelector) MarshalJSON() ([]byte, error) {
	if s.Index != nil {
		return []byte(strconv.Itoa(*s.Index)), nil
	}
	if s.Key != "" {
		return json.Marshal(s.Key)
	}
	return []byte("null"), nil
}

// String returns a display form for logs
func (s SizeSelector) String() string {
	if s.Index != nil {
		return fmt.Sprintf("index:%d", *s.Index)
	}
	if s.Key != "" {
		return s.Key
	}
	return "none"
}
