package domain

// Variant is a priced, stocked sub-option of a product (size, volume, color).
// A product that carries variants is sold through them; its own price and
// stock are informational only.
type Variant struct {
	ID    string  `json:"_id"`
	Name  string  `json:"name"`
	SKU   string  `json:"sku,omitempty"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

type CategoryRef struct {
	ID string `json:"_id"`
}

type Product struct {
	ID       string      `json:"_id"`
	Name     string      `json:"name"`
	SKU      string      `json:"sku"`
	Price    float64     `json:"price"`
	Stock    int         `json:"stock"`
	Unit     string      `json:"unit"`
	IsActive bool        `json:"isActive"`
	Image    string      `json:"image,omitempty"`
	Category CategoryRef `json:"category"`
	Variants []Variant   `json:"variants,omitempty"`
}

func (p Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// Variant returns the variant with the given id, if the product has one.
func (p Product) Variant(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}
