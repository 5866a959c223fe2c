package model

// MarginCategory is one named margin tier. Name is stored normalized
// (lowercase, [a-z0-9_-]); a category has no identity beyond its name.
type MarginCategory struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

// MarginSettings is a merchant's full margin configuration: the ordered
// category registry plus the meta key used to tag products. The slice keeps
// insertion order for display; names are unique within it.
type MarginSettings struct {
	MetaKey    string           `json:"meta_key"`
	Categories []MarginCategory `json:"categories"`
}

// ResolvePercentage returns the percentage for a category name, or 0 when the
// name is empty or unknown. 0 is "no margin", not an error; callers treat a
// category deliberately set to 0% the same way (matching the legacy behavior).
func (s *MarginSettings) ResolvePercentage(name string) float64 {
	if name == "" {
		return 0
	}
	for _, c := range s.Categories {
		if c.Name == name {
			return c.Percentage
		}
	}
	return 0
}

// HasCategory reports whether the registry contains the given name.
func (s *MarginSettings) HasCategory(name string) bool {
	for _, c := range s.Categories {
		if c.Name == name {
			return true
		}
	}
	return false
}

// DisplayOptions are pure presentation toggles. They never change computed
// values, only which of them get rendered and with how many decimals.
type DisplayOptions struct {
	ShowMarginPercentage       bool `json:"show_margin_percentage"`
	ShowPriceWithoutMargin     bool `json:"show_price_without_margin"`
	DecimalPlaces              int  `json:"decimal_places"`
	ShowOrderMarginColumn      bool `json:"show_order_margin_column"`
	ShowOrderAveragePercentage bool `json:"show_order_average_percentage"`
	ShowOrderProductsCount     bool `json:"show_order_products_count"`
}

// DefaultDisplayOptions mirrors the defaults the legacy admin screen used.
func DefaultDisplayOptions() DisplayOptions {
	return DisplayOptions{
		ShowMarginPercentage:       true,
		ShowPriceWithoutMargin:     true,
		DecimalPlaces:              2,
		ShowOrderMarginColumn:      true,
		ShowOrderAveragePercentage: true,
		ShowOrderProductsCount:     true,
	}
}

// FunctionalityOptions gate whole admin features on the host side. The margin
// engine itself never consults them; they are stored and served for the UI.
type FunctionalityOptions struct {
	EnableMarginManagement   bool `json:"enable_margin_management"`
	EnableLinkedProducts     bool `json:"enable_linked_products"`
	EnableProductListColumns bool `json:"enable_product_list_columns"`
	EnableOrderListColumns   bool `json:"enable_order_list_columns"`
}

func DefaultFunctionalityOptions() FunctionalityOptions {
	return FunctionalityOptions{
		EnableMarginManagement:   true,
		EnableLinkedProducts:     true,
		EnableProductListColumns: true,
		EnableOrderListColumns:   true,
	}
}
