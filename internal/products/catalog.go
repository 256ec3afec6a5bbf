package products

import "github.com/shopspring/decimal"

var catalog = []Product{
	{
		Slug:     "remera-lino",
		Title:    "Remera de Lino",
		Category: CategoryTops,
		Price:    decimal.NewFromInt(10000),
		Sizes:    []string{"S", "M", "L", "XL"},
		Colors:   []string{"Blanco", "Negro", "Arena"},
		Image:    "/img/remera-lino.jpg",
	},
	{
		Slug:     "camisa-oversize",
		Title:    "Camisa Oversize",
		Category: CategoryTops,
		Price:    decimal.NewFromInt(18500),
		Sizes:    []string{"S", "M", "L"},
		Colors:   []string{"Blanco", "Celeste"},
		Image:    "/img/camisa-oversize.jpg",
	},
	{
		Slug:     "buzo-frisa",
		Title:    "Buzo de Frisa",
		Category: CategoryTops,
		Price:    decimal.NewFromInt(24000),
		Sizes:    []string{"M", "L", "XL"},
		Colors:   []string{"Gris", "Negro"},
		Image:    "/img/buzo-frisa.jpg",
	},
	{
		Slug:     "pantalon-sastrero",
		Title:    "Pantalón Sastrero",
		Category: CategoryBottoms,
		Price:    decimal.NewFromInt(28000),
		Sizes:    []string{"38", "40", "42", "44"},
		Colors:   []string{"Negro", "Beige"},
		Image:    "/img/pantalon-sastrero.jpg",
	},
	{
		Slug:     "jean-recto",
		Title:    "Jean Recto",
		Category: CategoryBottoms,
		Price:    decimal.NewFromInt(32000),
		Sizes:    []string{"38", "40", "42", "44", "46"},
		Colors:   []string{"Azul", "Celeste"},
		Image:    "/img/jean-recto.jpg",
	},
	{
		Slug:     "short-rustico",
		Title:    "Short Rústico",
		Category: CategoryBottoms,
		Price:    decimal.NewFromInt(14500),
		Sizes:    []string{"S", "M", "L"},
		Colors:   []string{"Negro", "Verde"},
		Image:    "/img/short-rustico.jpg",
	},
	{
		Slug:     "boxer-algodon",
		Title:    "Boxer de Algodón",
		Category: CategoryUnderwear,
		Price:    decimal.NewFromInt(5500),
		Sizes:    []string{"S", "M", "L", "XL"},
		Colors:   []string{"Blanco", "Negro", "Gris"},
		Image:    "/img/boxer-algodon.jpg",
	},
	{
		Slug:     "medias-lisas-x3",
		Title:    "Medias Lisas x3",
		Category: CategoryUnderwear,
		Price:    decimal.NewFromInt(4200),
		Sizes:    []string{"Único"},
		Colors:   []string{"Blanco", "Negro"},
		Image:    "/img/medias-lisas.jpg",
	},
}
