package client

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/catnav/internal/catalog"
	"storefront/catnav/internal/domain"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return string(data)
}

func TestParseMenuIndex(t *testing.T) {
	p := newMenuParser("https://shop.example")

	entries, err := p.ParseMenuIndex(readFixture(t, "menu_index.html"))
	require.NoError(t, err)

	assert.Equal(t, []domain.RailEntry{
		{Name: "fashion", Label: "Fashion", Kind: domain.KindNormal, ImageRef: "/images/category/fashion.png", PageURL: "https://shop.example/category/fashion"},
		{Name: "beauty", Label: "Beauty", Kind: domain.KindNormal, PageURL: "https://shop.example/category/beauty"},
		{Name: "promotion", Label: "Promotion", Kind: domain.KindSpecial, ImageRef: "/images/category/promotion.png", PageURL: "https://cdn.shop.example/category/promotion"},
	}, entries)
}

func TestParseMenuIndexWithoutRail(t *testing.T) {
	p := newMenuParser("https://shop.example")

	_, err := p.ParseMenuIndex("<html><body><nav><a href='/x'>x</a></nav></body></html>")
	assert.Error(t, err)
}

func TestParseCategoryPage(t *testing.T) {
	p := newMenuParser("https://shop.example")
	entry := domain.RailEntry{Name: "fashion", Label: "Fashion", Kind: domain.KindNormal}

	category, err := p.ParseCategoryPage(readFixture(t, "category_fashion.html"), entry)
	require.NoError(t, err)

	assert.Equal(t, "/category/fashion", category.Path)
	require.Len(t, category.RecommendedBrands, 2)
	assert.Equal(t, "northwind", category.RecommendedBrands[0].Name)

	require.Len(t, category.Subcategories, 4)
	home, clothing, shoes, lookbook := category.Subcategories[0], category.Subcategories[1], category.Subcategories[2], category.Subcategories[3]

	assert.Equal(t, "/category/fashion", home.Path)
	assert.Same(t, home, category.Home())

	assert.Equal(t, "Clothing", clothing.Label)
	require.Len(t, clothing.Filters, 1)
	assert.Equal(t, []domain.FilterOption{{Value: "s", Label: "S"}, {Value: "m", Label: "M"}}, clothing.Filters[0].Options)
	// The cotton chip belongs to tops, not clothing.
	assert.Equal(t, []domain.QuickFilter{{Name: "new", Label: "New Arrivals", Query: "sort=new"}}, clothing.QuickFilters)

	require.Len(t, clothing.ThirdCategory, 2)
	tops := clothing.ThirdCategory[0]
	assert.Equal(t, "/category/fashion/clothing/tops", tops.Path)
	assert.Equal(t, "Tops", tops.Label)
	assert.Equal(t, "cotton", tops.QuickFilters[0].Name)
	require.Len(t, tops.FourthCategory, 2)
	assert.Equal(t, "/category/fashion/clothing/tops/sleeveless", tops.FourthCategory[1].Path)
	assert.Equal(t, "Short Sleeve", tops.FourthCategory[0].Label)
	assert.Empty(t, clothing.ThirdCategory[1].FourthCategory)

	assert.Empty(t, shoes.ThirdCategory)
	assert.Equal(t, domain.KindSpecial, lookbook.Kind)
	assert.Equal(t, "/images/banner/lookbook.png", lookbook.ImageRef)

	_, err = catalog.New([]*domain.Category{category})
	assert.NoError(t, err, "parsed category must satisfy tree invariants")
}

func TestParseSpecialCategoryForcesSpecialTiles(t *testing.T) {
	p := newMenuParser("https://shop.example")
	html := `<section data-subcategory data-name="deal"><h2>Deal</h2><ul><li data-third="x"><span>X</span></li></ul></section>`

	category, err := p.ParseCategoryPage(html, domain.RailEntry{Name: "promotion", Kind: domain.KindSpecial})
	require.NoError(t, err)

	require.Len(t, category.Subcategories, 1)
	assert.Equal(t, domain.KindSpecial, category.Subcategories[0].Kind)
	assert.Empty(t, category.Subcategories[0].ThirdCategory)
}

func TestParseCategoryPageWithoutSections(t *testing.T) {
	p := newMenuParser("https://shop.example")

	_, err := p.ParseCategoryPage("<html><body></body></html>", domain.RailEntry{Name: "fashion"})
	assert.Error(t, err)
}
