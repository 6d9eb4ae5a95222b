package model

// ItemCategory is the closed set of inventory categories. Anything read from
// the backing store that is not in the set collapses to CategoryDry — the
// cache never holds a free-text category.
type ItemCategory string

const (
	CategoryFish      ItemCategory = "fish"
	CategoryProtein   ItemCategory = "protein"
	CategoryProduce   ItemCategory = "produce"
	CategoryDry       ItemCategory = "dry"
	CategoryDairyCold ItemCategory = "dairy_cold"
	CategoryFrozen    ItemCategory = "frozen"
	CategorySauces    ItemCategory = "sauces"
	CategoryPackaging ItemCategory = "packaging"
	CategoryAlcohol   ItemCategory = "alcohol"
)

// ItemCategories lists every valid category in display order.
var ItemCategories = []ItemCategory{
	CategoryFish,
	CategoryProtein,
	CategoryProduce,
	CategoryDry,
	CategoryDairyCold,
	CategoryFrozen,
	CategorySauces,
	CategoryPackaging,
	CategoryAlcohol,
}

var itemCategorySet = func() map[ItemCategory]struct{} {
	set := make(map[ItemCategory]struct{}, len(ItemCategories))
	for _, c := range ItemCategories {
		set[c] = struct{}{}
	}
	return set
}()

var itemCategoryLabels = map[ItemCategory]string{
	CategoryFish:      "Fish",
	CategoryProtein:   "Protein",
	CategoryProduce:   "Produce",
	CategoryDry:       "Dry Goods",
	CategoryDairyCold: "Dairy / Cold",
	CategoryFrozen:    "Frozen",
	CategorySauces:    "Sauces",
	CategoryPackaging: "Packaging",
	CategoryAlcohol:   "Alcohol",
}

// Valid reports membership in the closed set.
func (c ItemCategory) Valid() bool {
	_, ok := itemCategorySet[c]
	return ok
}

// Label returns the human-readable category name shown in badges.
func (c ItemCategory) Label() string {
	if label, ok := itemCategoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// SupplierCategory classifies suppliers. It is optional on both entities:
// out-of-set values normalize to nil, not to a fallback member.
type SupplierCategory string

const (
	SupplierFish            SupplierCategory = "fish_supplier"
	SupplierMainDistributor SupplierCategory = "main_distributor"
	SupplierAsianMarket     SupplierCategory = "asian_market"
)

var SupplierCategories = []SupplierCategory{
	SupplierFish,
	SupplierMainDistributor,
	SupplierAsianMarket,
}

var supplierCategorySet = map[SupplierCategory]struct{}{
	SupplierFish:            {},
	SupplierMainDistributor: {},
	SupplierAsianMarket:     {},
}

var supplierCategoryLabels = map[SupplierCategory]string{
	SupplierFish:            "Fish Supplier",
	SupplierMainDistributor: "Main Distributor",
	SupplierAsianMarket:     "Asian Market",
}

func (c SupplierCategory) Valid() bool {
	_, ok := supplierCategorySet[c]
	return ok
}

func (c SupplierCategory) Label() string {
	if label, ok := supplierCategoryLabels[c]; ok {
		return label
	}
	return string(c)
}
