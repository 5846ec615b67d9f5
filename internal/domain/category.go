package domain

// Category — внутренняя таксономия каталога.
type Category string

const (
	CategoryGeneral     Category = "general"
	CategoryApparel     Category = "apparel"
	CategoryAccessories Category = "accessories"
	CategoryHomeLiving  Category = "home_living"
	CategoryElectronics Category = "electronics"
	CategoryBeauty      Category = "beauty"
	CategoryToys        Category = "toys"
	CategorySports      Category = "sports"
	CategoryJewelry     Category = "jewelry"
	CategoryPets        Category = "pets"
)

// Categories перечисляет всю таксономию в стабильном порядке.
func Categories() []Category {
	return []Category{
		CategoryGeneral,
		CategoryApparel,
		CategoryAccessories,
		CategoryHomeLiving,
		CategoryElectronics,
		CategoryBeauty,
		CategoryToys,
		CategorySports,
		CategoryJewelry,
		CategoryPets,
	}
}

// ParseCategory возвращает категорию и признак того, что она входит в таксономию.
func ParseCategory(raw string) (Category, bool) {
	for _, c := range Categories() {
		if string(c) == raw {
			return c, true
		}
	}
	return CategoryGeneral, false
}
