package game

type Category string

const (
	Paper   Category = "paper"
	Plastic Category = "plastic"
	Glass   Category = "glass"
	Metal   Category = "metal"
	Organic Category = "organic"
	Mixed   Category = "mixed"
)

// Categories lists the bins in display order.
var Categories = []Category{Paper, Plastic, Glass, Metal, Organic, Mixed}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Item struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

var catalog = []Item{
	{ID: 1, Name: "Newspaper", Category: Paper},
	{ID: 2, Name: "Plastic bottle", Category: Plastic},
	{ID: 3, Name: "Glass jar", Category: Glass},
	{ID: 4, Name: "Tin can", Category: Metal},
	{ID: 5, Name: "Apple core", Category: Organic},
	{ID: 6, Name: "Cardboard box", Category: Paper},
	{ID: 7, Name: "Plastic packaging", Category: Plastic},
	{ID: 8, Name: "Paper bag", Category: Paper},
	{ID: 9, Name: "Glass bottle", Category: Glass},
	{ID: 10, Name: "Aluminium can", Category: Metal},
	{ID: 11, Name: "Banana peel", Category: Organic},
	{ID: 12, Name: "Used diaper", Category: Mixed},
	{ID: 13, Name: "Broken phone", Category: Mixed},
	{ID: 14, Name: "Shampoo bottle", Category: Plastic},
	{ID: 15, Name: "Eggshell", Category: Organic},
}

// Catalog returns a copy of the built-in item list.
func Catalog() []Item {
	return append([]Item(nil), catalog...)
}
