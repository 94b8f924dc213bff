package enums

import (
	"fmt"
	"strings"
)

// ItemCategory is shared by catalog items and used items.
type ItemCategory string

const (
	ItemCategoryElectronics ItemCategory = "electronics"
	ItemCategoryClothing    ItemCategory = "clothing"
	ItemCategoryHome        ItemCategory = "home"
	ItemCategoryBooks       ItemCategory = "books"
	ItemCategoryToys        ItemCategory = "toys"
	ItemCategorySports      ItemCategory = "sports"
	ItemCategoryJewelry     ItemCategory = "jewelry"
)

var validItemCategories = []ItemCategory{
	ItemCategoryElectronics,
	ItemCategoryClothing,
	ItemCategoryHome,
	ItemCategoryBooks,
	ItemCategoryToys,
	ItemCategorySports,
	ItemCategoryJewelry,
}

// String implements fmt.Stringer.
func (c ItemCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ItemCategory.
func (c ItemCategory) IsValid() bool {
	for _, candidate := range validItemCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseItemCategory converts raw input into an ItemCategory, ignoring case.
func ParseItemCategory(value string) (ItemCategory, error) {
	normalized := ItemCategory(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid item category %q", value)
}
