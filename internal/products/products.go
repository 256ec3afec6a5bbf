package products

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/matiascortez/vestia-backend/pkg/errors"
)

// Category values match the storefront's browsing sections.
const (
	CategoryTops      = "superiores"
	CategoryBottoms   = "inferiores"
	CategoryUnderwear = "ropa-interior"
)

// Sort orders for listings. Relevance keeps catalog order.
const (
	SortRelevance = "relevance"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)

// Product is one catalog entry. The catalog is static and in-code; there is
// no product database behind it.
type Product struct {
	Slug     string          `json:"slug"`
	Title    string          `json:"title"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Sizes    []string        `json:"sizes"`
	Colors   []string        `json:"colors"`
	Image    string          `json:"image"`
}

// Filter narrows and orders a listing. Zero values mean "no constraint".
type Filter struct {
	Categories []string
	Sizes      []string
	Colors     []string
	MinPrice   decimal.Decimal
	MaxPrice   decimal.Decimal
	Sort       string
}

type Service struct {
	catalog []Product
}

func NewService() *Service {
	return &Service{catalog: catalog}
}

// List returns the filtered, ordered catalog slice.
func (s *Service) List(filter Filter) []Product {
	matched := make([]Product, 0, len(s.catalog))
	for _, product := range s.catalog {
		if !matches(product, filter) {
			continue
		}
		matched = append(matched, product)
	}

	switch filter.Sort {
	case SortPriceAsc:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].Price.LessThan(matched[j].Price)
		})
	case SortPriceDesc:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[j].Price.LessThan(matched[i].Price)
		})
	case SortName:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].Title < matched[j].Title
		})
	}
	return matched
}

// Get looks a product up by slug.
func (s *Service) Get(slug string) (*Product, error) {
	slug = strings.TrimSpace(slug)
	for i := range s.catalog {
		if s.catalog[i].Slug == slug {
			product := s.catalog[i]
			return &product, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

// Categories returns the distinct categories in catalog order.
func (s *Service) Categories() []string {
	seen := make(map[string]bool, 4)
	categories := make([]string, 0, 4)
	for _, product := range s.catalog {
		if !seen[product.Category] {
			seen[product.Category] = true
			categories = append(categories, product.Category)
		}
	}
	return categories
}

func matches(product Product, filter Filter) bool {
	if len(filter.Categories) > 0 && !containsFold(filter.Categories, product.Category) {
		return false
	}
	if len(filter.Sizes) > 0 && !intersectsFold(filter.Sizes, product.Sizes) {
		return false
	}
	if len(filter.Colors) > 0 && !intersectsFold(filter.Colors, product.Colors) {
		return false
	}
	if filter.MinPrice.IsPositive() && product.Price.LessThan(filter.MinPrice) {
		return false
	}
	if filter.MaxPrice.IsPositive() && product.Price.GreaterThan(filter.MaxPrice) {
		return false
	}
	return true
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(value, target) {
			return true
		}
	}
	return false
}

func intersectsFold(wanted, available []string) bool {
	for _, want := range wanted {
		if containsFold(available, want) {
			return true
		}
	}
	return false
}
